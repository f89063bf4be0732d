package dialect

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

// serializeTable renders a rectangular table under a known dialect, quoting
// every field when a quote character is set. Used by the recoverability
// tests below.
func serializeTable(rows [][]string, d Dialect) string {
	var b strings.Builder
	for _, r := range rows {
		for i, c := range r {
			if i > 0 {
				b.WriteRune(d.Delimiter)
			}
			if d.HasQuote() {
				b.WriteRune(d.Quote)
				b.WriteString(c)
				b.WriteRune(d.Quote)
			} else {
				b.WriteString(c)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// sampleRowsData is a 6x3 table mixing words, integers, and dates, with no
// candidate delimiter characters inside any cell.
var sampleRowsData = [][]string{
	{"widget", "12", "2024-01-01"},
	{"gadget", "7", "2024-01-02"},
	{"sprocket", "30", "2024-01-03"},
	{"gizmo", "4", "2024-01-04"},
	{"doohickey", "255", "2024-01-05"},
	{"whatsit", "19", "2024-01-06"},
}

// TestDetectScenarioComma is the canonical plain-CSV case: header plus two
// numeric rows must yield a bare comma dialect.
func TestDetectScenarioComma(t *testing.T) {
	t.Parallel()

	got, err := Detect(context.Background(), "a,b,c\n1,2,3\n4,5,6\n", Options{})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	want := Dialect{Delimiter: ','}
	if got != want {
		t.Fatalf("Detect = %v, want %v", got, want)
	}
}

// TestDetectScenarioQuotedComma verifies that commas inside quoted fields do
// not outrank the real semicolon delimiter, and that the quote character is
// recovered.
func TestDetectScenarioQuotedComma(t *testing.T) {
	t.Parallel()

	text := "id;name\n1;\"Smith, John\"\n2;\"Doe, Jane\"\n"
	got, err := Detect(context.Background(), text, Options{})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	want := Dialect{Delimiter: ';', Quote: '"'}
	if got != want {
		t.Fatalf("Detect = %v, want %v", got, want)
	}
}

// TestDetectScenarioSingleColumn verifies that prose with stray punctuation
// and no repeating delimiter pattern resolves to the no-delimiter dialect
// rather than promoting a character that appears once.
func TestDetectScenarioSingleColumn(t *testing.T) {
	t.Parallel()

	text := strings.Join([]string{
		"the quick brown fox jumps",
		"hello world",
		"a longer line with several words, even a comma",
		"short",
		"one more line of plain prose here",
	}, "\n") + "\n"

	got, err := Detect(context.Background(), text, Options{})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if got != (Dialect{}) {
		t.Fatalf("Detect = %v, want the no-delimiter dialect", got)
	}
}

// TestDetectRecoverability round-trips serialized tables over the supported
// delimiter and quote grid and requires the exact dialect back.
func TestDetectRecoverability(t *testing.T) {
	t.Parallel()

	delims := []rune{',', ';', '|', '\t'}
	quotes := []rune{0, '"'}

	for _, delim := range delims {
		for _, quote := range quotes {
			want := Dialect{Delimiter: delim, Quote: quote}
			name := fmt.Sprintf("delim_%U_quote_%U", delim, quote)
			t.Run(name, func(t *testing.T) {
				t.Parallel()
				text := serializeTable(sampleRowsData, want)
				got, err := Detect(context.Background(), text, Options{})
				if err != nil {
					t.Fatalf("Detect: %v", err)
				}
				if got != want {
					t.Fatalf("Detect = %v, want %v", got, want)
				}
			})
		}
	}
}

// TestDetectDeterminism verifies identical results across repeated calls and
// across sequential vs parallel candidate evaluation.
func TestDetectDeterminism(t *testing.T) {
	t.Parallel()

	text := serializeTable(sampleRowsData, Dialect{Delimiter: ';', Quote: '"'}) +
		"stray|pipe;and;more\n"

	first, err := Detect(context.Background(), text, Options{Workers: 1})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	for _, workers := range []int{1, 2, 8} {
		for run := 0; run < 3; run++ {
			got, err := Detect(context.Background(), text, Options{Workers: workers})
			if err != nil {
				t.Fatalf("Detect(workers=%d): %v", workers, err)
			}
			if got != first {
				t.Fatalf("Detect(workers=%d) = %v, want %v", workers, got, first)
			}
		}
	}
}

// TestDetectNoQuotePreference verifies tie-break rule 1: when a quote
// character exists in the text but never changes the parse, the unquoted
// dialect wins.
func TestDetectNoQuotePreference(t *testing.T) {
	t.Parallel()

	// Mid-field quotes are literal under both candidates, so the quoted and
	// unquoted dialects score identically.
	text := "a\"b,c\nd\"e,f\ng\"h,i\n"
	got, err := Detect(context.Background(), text, Options{})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	want := Dialect{Delimiter: ','}
	if got != want {
		t.Fatalf("Detect = %v, want %v", got, want)
	}
}

// TestDetectDelimiterRestriction verifies the caller-supplied restriction
// narrows the search.
func TestDetectDelimiterRestriction(t *testing.T) {
	t.Parallel()

	text := "a,b;c\nd,e;f\ng,h;i\n"
	got, err := Detect(context.Background(), text, Options{Delimiters: []rune{';'}})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if got.Delimiter != ';' {
		t.Fatalf("restricted Detect = %v, want semicolon", got)
	}
}

// TestDetectFailures covers the terminal failure kinds: empty input,
// invalid UTF-8, and budget expiry.
func TestDetectFailures(t *testing.T) {
	t.Parallel()

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		if _, err := Detect(context.Background(), "", Options{}); !errors.Is(err, ErrNoDialect) {
			t.Fatalf("err = %v, want ErrNoDialect", err)
		}
	})

	t.Run("whitespace only", func(t *testing.T) {
		t.Parallel()
		if _, err := Detect(context.Background(), " \n \n", Options{}); !errors.Is(err, ErrNoDialect) {
			t.Fatalf("err = %v, want ErrNoDialect", err)
		}
	})

	t.Run("invalid utf8", func(t *testing.T) {
		t.Parallel()
		if _, err := Detect(context.Background(), "a,b\n\xff\xfe\n", Options{}); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("err = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()
		text := serializeTable(sampleRowsData, Dialect{Delimiter: ','})
		_, err := Detect(context.Background(), text, Options{Timeout: time.Nanosecond, Workers: 1})
		if !errors.Is(err, ErrTimeout) {
			t.Fatalf("err = %v, want ErrTimeout", err)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Detect(ctx, "a,b\nc,d\n", Options{Workers: 1})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	})
}

// TestDetectSingleColumnStability verifies that text containing no delimiter
// candidate at all yields the no-delimiter dialect.
func TestDetectSingleColumnStability(t *testing.T) {
	t.Parallel()

	got, err := Detect(context.Background(), "one\ntwo\nthree\n", Options{})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if got != (Dialect{}) {
		t.Fatalf("Detect = %v, want the no-delimiter dialect", got)
	}
}

// TestRankOrdering verifies that Rank returns the full candidate list
// best-first with finite scores.
func TestRankOrdering(t *testing.T) {
	t.Parallel()

	ranked, err := Rank(context.Background(), "a,b,c\n1,2,3\n4,5,6\n", Options{})
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(ranked) < 2 {
		t.Fatalf("Rank returned %d candidates, want at least comma and no-delimiter", len(ranked))
	}
	if ranked[0].Dialect != (Dialect{Delimiter: ','}) {
		t.Fatalf("best candidate = %v, want comma", ranked[0].Dialect)
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Combined > ranked[i-1].Combined+DefaultWeights().Epsilon {
			t.Fatalf("rank order violated at %d: %v after %v", i, ranked[i].Combined, ranked[i-1].Combined)
		}
	}
}

// TestSampleRows verifies the prefix sampling cut.
func TestSampleRows(t *testing.T) {
	t.Parallel()

	text := "1\n2\n3\n4\n"
	if got := sampleRows(text, 2); got != "1\n2\n" {
		t.Fatalf("sampleRows = %q, want %q", got, "1\n2\n")
	}
	if got := sampleRows(text, -1); got != text {
		t.Fatalf("negative cap must disable sampling, got %q", got)
	}
	if got := sampleRows(text, 100); got != text {
		t.Fatalf("large cap must keep full text, got %q", got)
	}
}
