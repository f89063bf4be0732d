package dialect

import (
	"sort"
	"unicode"
)

// DefaultMaxCandidates bounds each candidate set produced by ScanAlphabet.
// Real-world dialects use a handful of characters; anything beyond the most
// frequent few only inflates the search space.
const DefaultMaxCandidates = 8

// universalQuotes are always considered when present in the text.
var universalQuotes = []rune{'"', '\''}

// unusualQuotes are accepted as quote candidates only when they appear an
// even number of times, a cheap symmetry check for exotic quoting styles.
var unusualQuotes = []rune{'`', '~'}

// Alphabet holds the candidate characters found in a text, each list ordered
// by descending raw frequency (code point ascending on equal frequency).
// The "none" members of the search space are not represented here; the
// selector adds them during enumeration.
type Alphabet struct {
	Delimiters []rune
	Quotes     []rune
	Escapes    []rune

	// Freq is the raw occurrence count per candidate character, used by the
	// selector's tie-break policy.
	Freq map[rune]int
}

// ScanAlphabet scans text once and returns the bounded candidate sets of
// delimiter, quote, and escape characters actually present.
//
// A character qualifies as a delimiter candidate when it is not a letter or
// digit, is not itself a quote/escape/record-separator character, and occurs
// at least once outside a naive double-quoted region. The naive region
// tracking intentionally ignores escaping; it only has to stop quoted prose
// commas from promoting themselves.
//
// maxCandidates <= 0 selects DefaultMaxCandidates. A non-empty restrict set
// limits delimiter candidates to its members (still frequency-ordered and
// still required to be present in the text).
func ScanAlphabet(text string, maxCandidates int, restrict []rune) Alphabet {
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxCandidates
	}

	total := make(map[rune]int, 32)
	outside := make(map[rune]int, 32)
	inQuote := false
	for _, r := range text {
		total[r]++
		if r == '"' {
			inQuote = !inQuote
			continue
		}
		if !inQuote {
			outside[r]++
		}
	}

	var restrictSet map[rune]bool
	if len(restrict) > 0 {
		restrictSet = make(map[rune]bool, len(restrict))
		for _, r := range restrict {
			restrictSet[r] = true
		}
	}

	delims := make([]rune, 0, len(outside))
	for r, n := range outside {
		if n == 0 || !delimiterEligible(r) {
			continue
		}
		if restrictSet != nil && !restrictSet[r] {
			continue
		}
		delims = append(delims, r)
	}
	sortByFrequency(delims, total)
	if len(delims) > maxCandidates {
		delims = delims[:maxCandidates]
	}

	quotes := make([]rune, 0, 2)
	for _, q := range universalQuotes {
		if total[q] > 0 {
			quotes = append(quotes, q)
		}
	}
	for _, q := range unusualQuotes {
		if n := total[q]; n >= 2 && n%2 == 0 {
			quotes = append(quotes, q)
		}
	}
	sortByFrequency(quotes, total)
	if len(quotes) > maxCandidates {
		quotes = quotes[:maxCandidates]
	}

	var escapes []rune
	if outside['\\'] > 0 {
		escapes = []rune{'\\'}
	}

	return Alphabet{
		Delimiters: delims,
		Quotes:     quotes,
		Escapes:    escapes,
		Freq:       total,
	}
}

// delimiterEligible reports whether a rune may serve as a delimiter
// candidate at all. Letters and digits are field content by definition;
// quote, escape, and record-separator characters already have structural
// roles in the search space.
func delimiterEligible(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return false
	}
	switch r {
	case '\n', '\r', '"', '\'', '\\':
		return false
	}
	return true
}

func sortByFrequency(rs []rune, freq map[rune]int) {
	sort.Slice(rs, func(i, j int) bool {
		if freq[rs[i]] != freq[rs[j]] {
			return freq[rs[i]] > freq[rs[j]]
		}
		return rs[i] < rs[j]
	})
}
