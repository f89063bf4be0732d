// Package dialect implements structural dialect detection for delimited text.
//
// Given raw Unicode text whose field delimiter, quote character, and escape
// character are unknown, the package searches the space of plausible dialects
// and ranks each candidate by how table-like the resulting parse is. Every
// candidate yields *some* parse, so detection is a model-selection problem,
// not a parsing problem: badness is expressed as a low score, never as a
// parse failure.
//
// The package is responsible for:
//   - Scanning the text once for candidate delimiter/quote/escape characters
//   - Trial-parsing the text under each candidate dialect (total, never fails)
//   - Classifying cell values into coarse semantic types
//   - Scoring row-length and per-column type consistency
//   - Selecting the best candidate under a deterministic tie-break policy
//
// Design constraints:
//   - Detection must be bounded in memory and time (row sampling cap).
//   - Trial parsing and cell classification must never fail on any input.
//   - A candidate's score is a pure function of (text, dialect), so candidates
//     can be evaluated on parallel workers with a deterministic reduction.
//
// This package is intentionally dependency-light and side-effect free.
// Input/output, character-set decoding, and persistence of results live in
// sibling packages.
package dialect

import (
	"strconv"
	"strings"
)

// Dialect is the triple of characters that defines how raw text is tokenized
// into rows and cells. A zero rune means "this dialect does not use the
// mechanism": Delimiter 0 is the single-column dialect, Quote 0 disables
// quoting, Escape 0 disables escaping.
//
// Dialect is an immutable value type; equality is structural (==).
type Dialect struct {
	Delimiter rune
	Quote     rune
	Escape    rune
}

// HasDelimiter reports whether the dialect splits lines into fields at all.
func (d Dialect) HasDelimiter() bool { return d.Delimiter != 0 }

// HasQuote reports whether the dialect recognizes a quote character.
func (d Dialect) HasQuote() bool { return d.Quote != 0 }

// HasEscape reports whether the dialect recognizes an escape character.
func (d Dialect) HasEscape() bool { return d.Escape != 0 }

// String renders the dialect in a compact, log-friendly form such as
// `delim=',' quote='"' escape=none`.
func (d Dialect) String() string {
	var b strings.Builder
	b.WriteString("delim=")
	b.WriteString(runeLabel(d.Delimiter))
	b.WriteString(" quote=")
	b.WriteString(runeLabel(d.Quote))
	b.WriteString(" escape=")
	b.WriteString(runeLabel(d.Escape))
	return b.String()
}

// runeLabel renders a dialect character for humans. Zero renders as "none";
// control characters (notably tab) render quoted-escaped.
func runeLabel(r rune) string {
	if r == 0 {
		return "none"
	}
	return strconv.QuoteRune(r)
}
