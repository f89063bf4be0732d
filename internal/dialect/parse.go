package dialect

import (
	"strings"
	"unicode/utf8"
)

// Parse tokenizes text under one candidate dialect. It is a total function:
// it terminates and returns a Table for any input, including unbalanced
// quotes, lone quote characters, and text consisting only of structural
// characters. All "badness" surfaces as table irregularity, never as an
// error, which is what lets the selector rank implausible dialects instead
// of rejecting them.
//
// Tokenization rules:
//   - Outside a quoted region, the delimiter ends a field and a record
//     separator ("\n", "\r\n", or bare "\r") ends a row.
//   - A quote character opens a quoted region only at the start of a field;
//     mid-field quotes are literal. Inside a quoted region the delimiter and
//     record separators are literal text.
//   - A doubled quote inside a quoted region is one literal quote character.
//   - The escape character, when set, takes the next rune literally in any
//     state. The escape character itself is stripped.
//   - An unterminated quote at end of input closes the field and row with
//     whatever was accumulated; no data is discarded.
//   - With Delimiter 0, every non-empty line becomes a single-cell row.
//   - Blank lines produce no row in any mode, so trailing newlines do not
//     manufacture phantom rows.
//
// Cells reference the input string directly unless quote/escape artifacts
// had to be stripped, in which case the cell holds the stripped copy.
func Parse(text string, d Dialect) Table {
	var (
		rows  []Row
		cells []Cell

		buf        strings.Builder
		dirty      bool // buf holds the field (stripping occurred)
		fieldStart int  // byte offset of the field in text (clean path)
		fieldOpen  bool // anything consumed into the current field
		inQuote    bool
		escaped    bool
	)

	// makeDirty switches the current field from the zero-copy slice path to
	// the builder, carrying over what was accumulated so far.
	makeDirty := func(end int) {
		if dirty {
			return
		}
		buf.Reset()
		buf.WriteString(text[fieldStart:end])
		dirty = true
	}

	endField := func(end int) {
		var s string
		if dirty {
			s = buf.String()
		} else {
			s = text[fieldStart:end]
		}
		cells = append(cells, Cell{text: s})
		dirty = false
		fieldOpen = false
	}

	endRow := func(end int) {
		if !fieldOpen && len(cells) == 0 {
			return // blank line
		}
		endField(end)
		rows = append(rows, Row{Cells: cells})
		cells = nil
	}

	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		next := i + size

		switch {
		case escaped:
			makeDirty(i)
			buf.WriteRune(r)
			escaped = false
			fieldOpen = true

		case r == d.Escape && d.HasEscape():
			makeDirty(i)
			escaped = true
			fieldOpen = true

		case inQuote:
			if r == d.Quote {
				if nr, nsz := utf8.DecodeRuneInString(text[next:]); nsz > 0 && nr == d.Quote {
					// Doubled quote: one literal quote character.
					buf.WriteRune(d.Quote)
					next += nsz
				} else {
					inQuote = false
				}
			} else {
				buf.WriteRune(r)
			}

		case r == d.Quote && d.HasQuote() && !fieldOpen:
			makeDirty(i)
			inQuote = true
			fieldOpen = true

		case r == d.Delimiter && d.HasDelimiter():
			// A delimiter always produces a field boundary; endRow flushes
			// the trailing (possibly empty) field because cells is non-empty.
			endField(i)
			fieldStart = next

		case r == '\n' || r == '\r':
			if r == '\r' {
				if nr, nsz := utf8.DecodeRuneInString(text[next:]); nsz > 0 && nr == '\n' {
					next += nsz
				}
			}
			endRow(i)
			fieldStart = next

		default:
			fieldOpen = true
			if dirty {
				buf.WriteRune(r)
			}
		}

		i = next
	}

	// End of input: close any open quote/escape state with the accumulated
	// text (recovery rule) and flush the final row.
	endRow(len(text))

	return Table{Rows: rows}
}
