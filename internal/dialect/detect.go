package dialect

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// Detection failure kinds. The selector is the only component in this
// package permitted to report a terminal failure; trial parsing and cell
// classification are total and express badness as low scores instead.
var (
	// ErrNoDialect means no candidate cleared the degenerate floor, or the
	// candidate set was empty (e.g. empty input). Callers can recover by
	// retrying with a restricted delimiter set or falling back to a default.
	ErrNoDialect = errors.New("dialect: no dialect found")

	// ErrTimeout means the overall detection budget was exceeded before all
	// candidates were evaluated.
	ErrTimeout = errors.New("dialect: detection timed out")

	// ErrInvalidInput means the text is not valid Unicode. Encoding
	// detection belongs to the caller; this is a defensive rejection.
	ErrInvalidInput = errors.New("dialect: input is not valid UTF-8")
)

// DefaultMaxRowSample is the row cap applied when Options.MaxRowSample is
// zero. Detection quality saturates long before this on real files; the cap
// exists so multi-megabyte inputs stay fast.
const DefaultMaxRowSample = 1000

// Options configures one detection call. The zero value is usable.
type Options struct {
	// Delimiters restricts the delimiter candidate set to the given runes.
	// Empty means no restriction.
	Delimiters []rune

	// MaxRowSample caps how many leading rows of the text are considered.
	// Zero selects DefaultMaxRowSample; negative disables sampling.
	MaxRowSample int

	// MaxCandidates bounds each alphabet candidate set (top-K by frequency).
	// Zero selects DefaultMaxCandidates.
	MaxCandidates int

	// Timeout bounds the whole detection call. Zero means no timeout.
	// On expiry Detect aborts between candidates and returns ErrTimeout.
	Timeout time.Duration

	// PreferQuotedTieBreak inverts the default tie-break that favors
	// dialects without a quote character when scores are tied within
	// epsilon. Leave false for the documented default (prefer no quote,
	// since unnecessary quoting is rare).
	PreferQuotedTieBreak bool

	// Weights overrides the scoring configuration. Nil selects
	// DefaultWeights.
	Weights *Weights

	// Workers bounds parallel candidate evaluation. Zero selects
	// min(GOMAXPROCS, 8); 1 forces sequential evaluation. The result is
	// identical either way.
	Workers int
}

// Detect searches the candidate dialect space for text and returns the
// best-scoring dialect. See Rank for the full scored candidate list.
func Detect(ctx context.Context, text string, opt Options) (Dialect, error) {
	ranked, err := Rank(ctx, text, opt)
	if err != nil {
		return Dialect{}, err
	}
	return ranked[0].Dialect, nil
}

// Rank evaluates every candidate dialect for text and returns the scored
// candidates ordered best-first under the deterministic tie-break policy:
// within epsilon, prefer no quote character, then the delimiter with the
// highest raw frequency in the text, then the smaller delimiter code point.
//
// Rank is deterministic for identical (text, opt) regardless of worker
// count: candidates are enumerated in a fixed order and the reduction runs
// over that order, so parallel evaluation cannot reorder results.
func Rank(ctx context.Context, text string, opt Options) ([]CandidateScore, error) {
	if !utf8.ValidString(text) {
		return nil, ErrInvalidInput
	}

	weights := DefaultWeights()
	if opt.Weights != nil {
		weights = *opt.Weights
	}

	sample := sampleRows(text, opt.MaxRowSample)
	if strings.TrimSpace(sample) == "" {
		return nil, ErrNoDialect
	}

	if opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opt.Timeout)
		defer cancel()
	}

	alphabet := ScanAlphabet(sample, opt.MaxCandidates, opt.Delimiters)
	candidates := enumerate(alphabet)

	scores, err := evaluate(ctx, sample, candidates, weights, opt.Workers)
	if err != nil {
		return nil, err
	}

	sortScores(scores, alphabet.Freq, weights.Epsilon, !opt.PreferQuotedTieBreak)

	if scores[0].Combined <= DegenerateScore {
		return nil, ErrNoDialect
	}
	return scores, nil
}

// enumerate expands the alphabet into the ordered candidate list. The "no
// quoting" variant of every delimiter and the "no delimiter" dialect are
// explicit members. The no-delimiter dialect is enumerated without quote or
// escape variants; single-column files have nothing for a quote to protect.
func enumerate(a Alphabet) []Dialect {
	quotes := append([]rune{0}, a.Quotes...)
	escapes := append([]rune{0}, a.Escapes...)

	out := make([]Dialect, 0, len(a.Delimiters)*len(quotes)*len(escapes)+1)
	for _, d := range a.Delimiters {
		for _, q := range quotes {
			for _, e := range escapes {
				out = append(out, Dialect{Delimiter: d, Quote: q, Escape: e})
			}
		}
	}
	out = append(out, Dialect{})
	return out
}

// evaluate scores every candidate. Each candidate's pipeline is a pure
// function of (text, dialect), so candidates are fanned out to workers and
// the results land in candidate order; ordering between workers is
// irrelevant to the final reduction.
func evaluate(ctx context.Context, text string, candidates []Dialect, w Weights, workers int) ([]CandidateScore, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
		if workers > 8 {
			workers = 8
		}
	}
	if workers > len(candidates) {
		workers = len(candidates)
	}

	scores := make([]CandidateScore, len(candidates))

	if workers <= 1 {
		for i, d := range candidates {
			if err := ctx.Err(); err != nil {
				return nil, timeoutErr(err)
			}
			scores[i] = scoreCandidate(text, d, w)
		}
		return scores, nil
	}

	idx := make(chan int)
	var wg sync.WaitGroup
	for n := 0; n < workers; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				scores[i] = scoreCandidate(text, candidates[i], w)
			}
		}()
	}

	var aborted error
feed:
	for i := range candidates {
		select {
		case idx <- i:
		case <-ctx.Done():
			aborted = ctx.Err()
			break feed
		}
	}
	close(idx)
	wg.Wait()

	if aborted != nil {
		return nil, timeoutErr(aborted)
	}
	return scores, nil
}

func scoreCandidate(text string, d Dialect, w Weights) CandidateScore {
	table := Parse(text, d)
	s := Score(&table, w)
	s.Dialect = d
	return s
}

func timeoutErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}

// sortScores orders candidates best-first. The comparator is total and
// deterministic; on equal combined scores (within epsilon) it applies the
// tie-break policy, and beyond that falls back to code-point ordering of the
// dialect characters so that no two distinct candidates ever compare equal.
func sortScores(scores []CandidateScore, freq map[rune]int, eps float64, preferNoQuote bool) {
	less := func(a, b CandidateScore) bool {
		if a.Combined > b.Combined+eps {
			return true
		}
		if b.Combined > a.Combined+eps {
			return false
		}
		if preferNoQuote && (a.Dialect.Quote == 0) != (b.Dialect.Quote == 0) {
			return a.Dialect.Quote == 0
		}
		if fa, fb := freq[a.Dialect.Delimiter], freq[b.Dialect.Delimiter]; fa != fb {
			return fa > fb
		}
		if a.Dialect.Delimiter != b.Dialect.Delimiter {
			return a.Dialect.Delimiter < b.Dialect.Delimiter
		}
		if (a.Dialect.Quote == 0) != (b.Dialect.Quote == 0) {
			return a.Dialect.Quote == 0
		}
		if a.Dialect.Quote != b.Dialect.Quote {
			return a.Dialect.Quote < b.Dialect.Quote
		}
		return a.Dialect.Escape < b.Dialect.Escape
	}

	// Insertion sort keeps the comparator application order fixed; the
	// candidate count is bounded by the alphabet caps, so this is cheap.
	for i := 1; i < len(scores); i++ {
		for j := i; j > 0 && less(scores[j], scores[j-1]); j-- {
			scores[j], scores[j-1] = scores[j-1], scores[j]
		}
	}
}

// sampleRows cuts text after the maxRows-th record separator. Zero selects
// DefaultMaxRowSample, negative disables sampling. The cut always lands
// after a newline so no half row is scored.
func sampleRows(text string, maxRows int) string {
	if maxRows < 0 {
		return text
	}
	if maxRows == 0 {
		maxRows = DefaultMaxRowSample
	}
	seen := 0
	for i := 0; i < len(text); i++ {
		if text[i] != '\n' {
			continue
		}
		seen++
		if seen >= maxRows {
			return text[:i+1]
		}
	}
	return text
}
