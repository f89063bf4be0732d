package dialect

// DegenerateScore is the floor assigned to parses that cannot be assessed at
// all: zero rows or zero cells. It is strictly below every score a real
// table can produce, so degenerate parses never win by accident.
const DegenerateScore = -1.0

// Weights is the explicit, immutable scoring configuration. It is passed
// into the selector rather than read from ambient state so that the
// constants are testable and versionable independently of the algorithm.
type Weights struct {
	// Pattern and Type weight the two sub-scores in the combined score.
	Pattern float64
	Type    float64

	// LengthPenalty is subtracted from the pattern score once per distinct
	// row length beyond the first. Fragmented parses go negative quickly.
	LengthPenalty float64

	// MixedPenalty is subtracted from a column's score when the column mixes
	// numbers and plain text. Mixing usually means the delimiter split real
	// data mid-field, which is a strong anti-signal.
	MixedPenalty float64

	// QuotedPenalty scales the penalty for cells still wrapped in quote
	// characters. A correct dialect strips its own quotes.
	QuotedPenalty float64

	// Epsilon is the score distance within which two candidates count as
	// tied for tie-break purposes.
	Epsilon float64
}

// DefaultWeights returns the calibrated default configuration.
func DefaultWeights() Weights {
	return Weights{
		Pattern:       0.5,
		Type:          0.5,
		LengthPenalty: 0.05,
		MixedPenalty:  0.25,
		QuotedPenalty: 0.5,
		Epsilon:       1e-6,
	}
}

// CandidateScore is the scored outcome of one candidate dialect.
type CandidateScore struct {
	Dialect  Dialect
	Pattern  float64
	Type     float64
	Combined float64
}

// Score rates how table-like a trial parse is. The result is a pure,
// deterministic function of the table and weights, and is always a real
// number (never NaN): degenerate tables receive DegenerateScore on every
// component.
//
// The pattern component measures row-length regularity from the length
// histogram: the share of rows at the most common length, minus a penalty
// per extra distinct length. Tables with fewer than two rows score a fixed
// neutral 0 (one row carries no repetition signal).
//
// The type component measures per-column type regularity across the rows at
// the modal length. Each column is rated by the share of its dominant
// non-empty type blended with the share of recognized (non-text) types, with
// penalties for number/text mixing and unstripped quotes. The column average
// is scaled by cols/(cols+1) so a wide consistent table outranks a trivially
// consistent single-column one.
func Score(t *Table, w Weights) CandidateScore {
	if len(t.Rows) == 0 || t.CellCount() == 0 {
		return CandidateScore{
			Pattern:  DegenerateScore,
			Type:     DegenerateScore,
			Combined: DegenerateScore,
		}
	}

	pattern := patternScore(t, w)
	typ := typeScore(t, w)

	return CandidateScore{
		Pattern:  pattern,
		Type:     typ,
		Combined: w.Pattern*pattern + w.Type*typ,
	}
}

func patternScore(t *Table, w Weights) float64 {
	total := len(t.Rows)
	if total < 2 {
		return 0
	}
	hist := t.LengthHistogram()
	maxBucket := 0
	for _, n := range hist {
		if n > maxBucket {
			maxBucket = n
		}
	}
	return float64(maxBucket)/float64(total) - float64(len(hist)-1)*w.LengthPenalty
}

// cellTypeOrder fixes the iteration order when selecting a column's dominant
// type, keeping scoring deterministic across map iterations.
var cellTypeOrder = []CellType{TypeNumber, TypeDate, TypeStructured, TypeText, TypeQuoted}

func typeScore(t *Table, w Weights) float64 {
	length, _ := t.ModalLength()
	if length == 0 {
		return DegenerateScore
	}
	profile := t.ColumnTypeProfile(length)

	sum := 0.0
	for _, counts := range profile {
		sum += columnScore(counts, w)
	}
	avg := sum / float64(length)

	// Width factor: approaches 1 for wide tables, halves for single-column.
	return avg * float64(length) / float64(length+1)
}

func columnScore(counts map[CellType]int, w Weights) float64 {
	nonEmpty := 0
	for typ, n := range counts {
		if typ != TypeEmpty {
			nonEmpty += n
		}
	}
	if nonEmpty == 0 {
		return 0
	}

	dominant := 0
	for _, typ := range cellTypeOrder {
		if n := counts[typ]; n > dominant {
			dominant = n
		}
	}
	known := counts[TypeNumber] + counts[TypeDate] + counts[TypeStructured]

	score := 0.5*float64(dominant)/float64(nonEmpty) + 0.5*float64(known)/float64(nonEmpty)

	if counts[TypeNumber] > 0 && counts[TypeText] > 0 {
		score -= w.MixedPenalty
	}
	if q := counts[TypeQuoted]; q > 0 {
		score -= w.QuotedPenalty * float64(q) / float64(nonEmpty)
	}
	return score
}
