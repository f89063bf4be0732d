// Command sniff detects the dialect of delimited text: the delimiter, quote,
// and escape characters a file actually uses, regardless of what its
// extension claims.
//
// It reads a bounded prefix of the input (default 20KB), decodes it to
// UTF-8, optionally extracts embedded delimited text from HTML pages, and
// ranks candidate dialects by how consistently they tokenize the sample.
//
// Output modes
//
//   - Default mode: prints a short human-readable summary to stdout.
//   - JSON mode (-json): prints the full ranked result as JSON, suitable for
//     scripting and for feeding downstream parsers.
//
// # Result caching
//
// With -cache, results are stored in a database keyed by the SHA-256 of the
// sampled text, so repeated probes of identical inputs skip the candidate
// search. Supported backends: "sqlite", "postgres", "mssql". The DSN is
// supplied via -cache-dsn. Cached entries from older classification rule
// versions are ignored, never served.
//
// # Metrics
//
// With -metrics, detection counters and timings are buffered and submitted
// to Datadog (credentials come from the standard DD_* environment
// variables). Without it, metrics are a no-op.
//
// Exit codes are deterministic: 0 on success, 1 when detection fails or a
// source/backend error occurs, 2 on usage errors.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"sniff/internal/dialect"
	"sniff/internal/encoding"
	"sniff/internal/metrics"
	"sniff/internal/metrics/datadog"
	"sniff/internal/registry"
	_ "sniff/internal/registry/mssql"
	_ "sniff/internal/registry/postgres"
	_ "sniff/internal/registry/sqlite"
	"sniff/internal/source"
)

func main() {
	var (
		// flagURL is the URL or local filesystem path of the input.
		// Supported:
		//   - http:// and https:// URLs
		//   - file:// URLs
		//   - bare local paths (treated as file:// internally)
		flagURL = flag.String("url", "", "URL or path of the input text")

		// flagBytes controls how many bytes are sampled from the start of the
		// input. Larger values improve confidence on messy data at the cost of
		// slightly more time and memory.
		flagBytes = flag.Int("bytes", source.DefaultMaxBytes, "Number of bytes to sample from the start of the input")

		// flagRows caps how many newline-terminated rows of the sample are
		// actually scored. 0 uses the built-in default; negative disables the
		// cap.
		flagRows = flag.Int("rows", 0, "Max rows scored from the sample (0 = default, <0 = unlimited)")

		// flagDelimiters restricts the candidate delimiters to the characters
		// of this string. Escape sequences \t for tab and \\ for backslash are
		// recognized. Empty means: discover candidates from the sample.
		flagDelimiters = flag.String("delimiters", "", `Restrict candidate delimiters to these characters (e.g. ",;|" or "\t")`)

		// flagTimeout bounds the whole detection run. Zero disables the bound.
		flagTimeout = flag.Duration("timeout", 10*time.Second, "Abort detection after this long (0 = no limit)")

		// flagWorkers sets how many candidates are evaluated concurrently.
		// Results are identical for any worker count.
		flagWorkers = flag.Int("workers", 0, "Concurrent candidate evaluations (0 = GOMAXPROCS)")

		// flagJSON switches output to machine-readable JSON.
		flagJSON = flag.Bool("json", false, "Print the result as JSON")

		// flagPretty controls JSON indentation. Ignored without -json.
		flagPretty = flag.Bool("pretty", true, "Pretty-print JSON output")

		// flagHTML forces HTML extraction. Without it, extraction still runs
		// when the sample looks like an HTML document.
		flagHTML = flag.Bool("html", false, "Treat the input as HTML and extract embedded delimited text")

		// flagAllowInsecure controls TLS certificate verification for HTTP
		// sources. Prefer false in production.
		flagAllowInsecure = flag.Bool("allow-insecure", false, "Allow insecure TLS")

		// flagCache selects the result cache backend. Empty disables caching.
		flagCache = flag.String("cache", "", "Result cache backend: sqlite|postgres|mssql (empty = no cache)")

		// flagCacheDSN is the DSN for the selected cache backend.
		flagCacheDSN = flag.String("cache-dsn", "", "DSN for the cache backend")

		// flagMetrics enables the Datadog metrics backend.
		flagMetrics = flag.Bool("metrics", false, "Submit metrics to Datadog")

		// flagMetricsJob tags every metric with job:<name>.
		flagMetricsJob = flag.String("metrics-job", "sniff", "Job name for metric tags")

		// flagMetricsTags adds extra comma-separated tags, e.g.
		// "env:prod,service:sniff".
		flagMetricsTags = flag.String("metrics-tags", "", "Extra metric tags (comma-separated key:value pairs)")
	)
	flag.Parse()

	// Validate required inputs early and exit with a usage hint.
	if strings.TrimSpace(*flagURL) == "" {
		fmt.Fprintln(os.Stderr, "missing -url")
		flag.Usage()
		os.Exit(2)
	}

	delims, err := parseDelimiters(*flagDelimiters)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad -delimiters: %v\n", err)
		os.Exit(2)
	}

	// Bound the whole run, fetch included. Detection itself gets its own
	// budget via Options.Timeout.
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// Metrics backend: Datadog when requested, otherwise a no-op.
	var mb metrics.Backend = metrics.Nop{}
	if *flagMetrics {
		dd, err := datadog.NewBackend(ctx, datadog.Options{
			JobName: *flagMetricsJob,
			Tags:    datadog.ParseTagsCSV(*flagMetricsTags),
		})
		if err != nil {
			log.Fatalf("metrics: %v", err)
		}
		mb = dd
	}
	defer func() { _ = mb.Close() }()

	// Fetch the sample.
	raw, err := source.Peek(ctx, *flagURL, source.Config{
		MaxBytes:         *flagBytes,
		AllowInsecureTLS: *flagAllowInsecure,
		Metrics:          mb,
	})
	if err != nil {
		log.Fatalf("peek: %v", err)
	}

	// Decode to UTF-8.
	text, encName, err := encoding.Decode(raw)
	if err != nil {
		log.Fatalf("decode: %v", err)
	}

	// HTML extraction: forced by flag, or automatic when the sample looks
	// like a document.
	if *flagHTML || source.LooksHTML(raw) {
		extracted, err := source.ExtractHTML(text)
		if err != nil {
			log.Fatalf("extract html: %v", err)
		}
		if extracted == "" {
			log.Fatalf("extract html: no embedded delimited text found")
		}
		text = extracted
	}

	// Optional result cache.
	var repo registry.Repository
	if *flagCache != "" {
		repo, err = registry.New(ctx, registry.Config{Kind: *flagCache, DSN: *flagCacheDSN})
		if err != nil {
			log.Fatalf("cache: %v", err)
		}
		defer repo.Close()
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("cache schema: %v", err)
		}
	}

	hash := registry.HashText(text)
	out := report{Hash: hash, Encoding: string(encName)}

	if repo != nil {
		rec, ok, err := repo.Lookup(ctx, hash)
		if err != nil {
			log.Fatalf("cache lookup: %v", err)
		}
		if ok && rec.RuleVersion == dialect.TypeRuleVersion {
			out.Cached = true
			out.Delimiter = rec.Delimiter
			out.Quote = rec.Quote
			out.Escape = rec.Escape
			out.Score = rec.Score
			render(out, *flagJSON, *flagPretty)
			return
		}
	}

	// Run detection, timing it for metrics.
	start := time.Now()
	ranked, err := dialect.Rank(ctx, text, dialect.Options{
		Delimiters:   delims,
		MaxRowSample: *flagRows,
		Timeout:      *flagTimeout,
		Workers:      *flagWorkers,
	})
	elapsed := time.Since(start)

	outcome := outcomeFor(err)
	mb.IncCounter(metrics.DetectTotal, 1, metrics.Labels{"outcome": outcome})
	mb.ObserveHistogram(metrics.DetectDurationSeconds, elapsed.Seconds(), metrics.Labels{"outcome": outcome})
	mb.IncCounter(metrics.CandidatesTotal, float64(len(ranked)), nil)

	if err != nil {
		// Flush before exiting so the failure is visible in dashboards.
		_ = mb.Flush()
		log.Fatalf("detect: %v", err)
	}

	best := ranked[0]
	out.Delimiter = runeField(best.Dialect.Delimiter)
	out.Quote = runeField(best.Dialect.Quote)
	out.Escape = runeField(best.Dialect.Escape)
	out.Score = best.Combined
	out.Pattern = best.Pattern
	out.Type = best.Type
	for _, c := range ranked {
		out.Candidates = append(out.Candidates, candidate{
			Delimiter: runeField(c.Dialect.Delimiter),
			Quote:     runeField(c.Dialect.Quote),
			Escape:    runeField(c.Dialect.Escape),
			Score:     c.Combined,
		})
	}

	if repo != nil {
		rec := registry.Record{
			Hash:        hash,
			Delimiter:   out.Delimiter,
			Quote:       out.Quote,
			Escape:      out.Escape,
			Score:       out.Score,
			RuleVersion: dialect.TypeRuleVersion,
			DetectedAt:  time.Now().UTC(),
		}
		if err := repo.Save(ctx, rec); err != nil {
			log.Fatalf("cache save: %v", err)
		}
	}

	render(out, *flagJSON, *flagPretty)
}

// report is the CLI output shape for both summary and JSON modes.
type report struct {
	Hash     string `json:"hash"`
	Encoding string `json:"encoding"`

	Delimiter string  `json:"delimiter"`
	Quote     string  `json:"quote,omitempty"`
	Escape    string  `json:"escape,omitempty"`
	Score     float64 `json:"score"`

	Pattern float64 `json:"pattern_score,omitempty"`
	Type    float64 `json:"type_score,omitempty"`

	Cached     bool        `json:"cached"`
	Candidates []candidate `json:"candidates,omitempty"`
}

type candidate struct {
	Delimiter string  `json:"delimiter"`
	Quote     string  `json:"quote,omitempty"`
	Escape    string  `json:"escape,omitempty"`
	Score     float64 `json:"score"`
}

func render(out report, asJSON, pretty bool) {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		if pretty {
			enc.SetIndent("", "  ")
		}
		if err := enc.Encode(out); err != nil {
			log.Fatalf("encode result: %v", err)
		}
		return
	}
	fmt.Fprintln(os.Stdout, summarize(out))
}

// summarize renders the one-screen human-readable result.
func summarize(out report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "delimiter: %s\n", displayField(out.Delimiter))
	fmt.Fprintf(&b, "quote:     %s\n", displayField(out.Quote))
	fmt.Fprintf(&b, "escape:    %s\n", displayField(out.Escape))
	fmt.Fprintf(&b, "score:     %.4f\n", out.Score)
	fmt.Fprintf(&b, "encoding:  %s\n", out.Encoding)
	fmt.Fprintf(&b, "hash:      %s", out.Hash)
	if out.Cached {
		b.WriteString("\ncached:    true")
	}
	return b.String()
}

// displayField makes control characters readable in the summary.
func displayField(s string) string {
	switch s {
	case "":
		return "(none)"
	case "\t":
		return "\\t"
	default:
		return s
	}
}

// runeField converts a dialect character to its storage/JSON string form;
// zero means "none" and becomes the empty string.
func runeField(r rune) string {
	if r == 0 {
		return ""
	}
	return string(r)
}

// parseDelimiters interprets the -delimiters flag: each character is one
// candidate, with \t and \\ as the only escape sequences.
//
// Errors:
//   - A trailing or unknown backslash escape is rejected rather than
//     guessed at.
func parseDelimiters(s string) ([]rune, error) {
	if s == "" {
		return nil, nil
	}
	var out []rune
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '\\' {
			out = append(out, r)
			continue
		}
		if i+1 >= len(runes) {
			return nil, errors.New("trailing backslash")
		}
		i++
		switch runes[i] {
		case 't':
			out = append(out, '\t')
		case '\\':
			out = append(out, '\\')
		default:
			return nil, fmt.Errorf("unknown escape \\%c", runes[i])
		}
	}
	return out, nil
}

// outcomeFor maps a detection error to the metric outcome label.
func outcomeFor(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, dialect.ErrNoDialect):
		return "no_dialect"
	case errors.Is(err, dialect.ErrTimeout):
		return "timeout"
	case errors.Is(err, dialect.ErrInvalidInput):
		return "invalid_input"
	default:
		return "error"
	}
}
