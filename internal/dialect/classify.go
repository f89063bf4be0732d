package dialect

import (
	"regexp"
	"strings"
	"time"
)

// CellType is the coarse semantic class of one cell value.
type CellType int

const (
	// TypeEmpty marks the empty string.
	TypeEmpty CellType = iota
	// TypeNumber covers integer and floating-point literals, including
	// thousands-separated integers.
	TypeNumber
	// TypeDate covers values matching one of the known date/time layouts.
	TypeDate
	// TypeStructured covers URL- and email-like values.
	TypeStructured
	// TypeQuoted marks a value still wrapped in matching quote characters.
	// This is an anti-signal: a correct dialect strips its own quotes, so
	// quote-wrapped cells suggest the candidate ignored the real quoting.
	TypeQuoted
	// TypeText is the fallback for everything else.
	TypeText
)

// String returns a stable lowercase label, used in reports and logs.
func (t CellType) String() string {
	switch t {
	case TypeEmpty:
		return "empty"
	case TypeNumber:
		return "number"
	case TypeDate:
		return "date"
	case TypeStructured:
		return "structured"
	case TypeQuoted:
		return "quoted"
	default:
		return "text"
	}
}

// TypeRuleVersion identifies the classification rule table below. Widening
// or reordering the rules changes scoring behavior for existing inputs and
// must bump this version. Persisted results are keyed on it so stale
// detections are not served across rule changes.
const TypeRuleVersion = 1

var (
	intPattern       = regexp.MustCompile(`^[+-]?[0-9]+$`)
	thousandsPattern = regexp.MustCompile(`^[+-]?[0-9]{1,3}(,[0-9]{3})+(\.[0-9]+)?$`)
	floatPattern     = regexp.MustCompile(`^[+-]?([0-9]+\.[0-9]*|\.[0-9]+)([eE][+-]?[0-9]+)?$|^[+-]?[0-9]+[eE][+-]?[0-9]+$`)
	urlPattern       = regexp.MustCompile(`^(https?|ftp)://[^\s]+$|^www\.[^\s]+\.[^\s]+$`)
	emailPattern     = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// dateLayouts and tsLayouts are the fixed layout tables consulted by the
// classifier, in priority order.
var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"02/01/2006",
	"01/02/2006",
}

var tsLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.000Z07:00",
	"02.01.2006 15:04:05",
	"15:04:05",
	"15:04",
}

// Classify maps a cell's text to its CellType. It is a total, side-effect
// free function: any string input yields a value, never an error.
//
// Rules are evaluated in a fixed order, first match wins:
//  1. empty string            -> TypeEmpty
//  2. integer / thousands     -> TypeNumber
//  3. float                   -> TypeNumber
//  4. known date/time layout  -> TypeDate
//  5. URL- or email-like      -> TypeStructured
//  6. quote-wrapped string    -> TypeQuoted
//  7. anything else           -> TypeText
//
// Surrounding whitespace does not change the classification.
func Classify(s string) CellType {
	if s == "" {
		return TypeEmpty
	}
	v := strings.TrimSpace(s)
	if v == "" {
		return TypeEmpty
	}

	if intPattern.MatchString(v) || thousandsPattern.MatchString(v) || floatPattern.MatchString(v) {
		return TypeNumber
	}
	if isDateLike(v) {
		return TypeDate
	}
	if urlPattern.MatchString(v) || emailPattern.MatchString(v) {
		return TypeStructured
	}
	if isQuoteWrapped(v) {
		return TypeQuoted
	}
	return TypeText
}

func isDateLike(v string) bool {
	// Cheap pre-filter: every known layout starts with a digit.
	if v[0] < '0' || v[0] > '9' {
		return false
	}
	for _, lay := range dateLayouts {
		if _, err := time.Parse(lay, v); err == nil {
			return true
		}
	}
	for _, lay := range tsLayouts {
		if _, err := time.Parse(lay, v); err == nil {
			return true
		}
	}
	return false
}

func isQuoteWrapped(v string) bool {
	if len(v) < 2 {
		return false
	}
	first, last := v[0], v[len(v)-1]
	return first == last && (first == '"' || first == '\'')
}
