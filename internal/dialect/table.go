package dialect

// Cell is one field produced by a trial parse. Text is a slice of the
// original input whenever no quoting/escaping artifacts had to be stripped;
// otherwise it is the stripped copy. The semantic type is computed lazily on
// first access and cached, because most cells in losing candidates are never
// scored.
type Cell struct {
	text  string
	typ   CellType
	typed bool
}

// NewCell constructs a cell around the given text. Exported for tests and
// for callers that build tables directly.
func NewCell(text string) Cell { return Cell{text: text} }

// Text returns the cell content with quoting artifacts stripped.
func (c *Cell) Text() string { return c.text }

// Type classifies the cell content, caching the result.
func (c *Cell) Type() CellType {
	if !c.typed {
		c.typ = Classify(c.text)
		c.typed = true
	}
	return c.typ
}

// Row is an ordered sequence of cells.
type Row struct {
	Cells []Cell
}

// Len returns the cell count of the row.
func (r Row) Len() int { return len(r.Cells) }

// Table is the result of one trial parse: an ordered sequence of rows which
// may have differing lengths. Length irregularity is signal for the scorer,
// not an error.
type Table struct {
	Rows []Row
}

// CellCount returns the total number of cells across all rows.
func (t *Table) CellCount() int {
	n := 0
	for _, r := range t.Rows {
		n += r.Len()
	}
	return n
}

// LengthHistogram maps row length to occurrence count.
func (t *Table) LengthHistogram() map[int]int {
	h := make(map[int]int, 4)
	for _, r := range t.Rows {
		h[r.Len()]++
	}
	return h
}

// ModalLength returns the most frequent row length and its count. Ties go to
// the larger length so wider consistent shapes are assessed. Returns (0, 0)
// for an empty table.
func (t *Table) ModalLength() (length, count int) {
	for l, n := range t.LengthHistogram() {
		if n > count || (n == count && l > length) {
			length, count = l, n
		}
	}
	return length, count
}

// ColumnTypeProfile counts cell types per column index across all rows whose
// length equals the given one. Rows of other lengths are excluded so that a
// few ragged rows do not smear the column statistics.
func (t *Table) ColumnTypeProfile(length int) []map[CellType]int {
	if length <= 0 {
		return nil
	}
	cols := make([]map[CellType]int, length)
	for i := range cols {
		cols[i] = make(map[CellType]int, 4)
	}
	for ri := range t.Rows {
		r := &t.Rows[ri]
		if r.Len() != length {
			continue
		}
		for i := range r.Cells {
			cols[i][r.Cells[i].Type()]++
		}
	}
	return cols
}
