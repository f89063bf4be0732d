package source

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// LooksHTML reports whether a byte sample is probably an HTML document
// rather than raw delimited text. Detection is heuristic and intentionally
// conservative: a leading '<' after whitespace.
func LooksHTML(sample []byte) bool {
	trim := bytes.TrimSpace(sample)
	return len(trim) > 0 && trim[0] == '<'
}

// ExtractHTML pulls embedded delimited text out of an HTML document.
//
// Extraction order:
//  1. <pre> and <code> blocks that span multiple lines. Published datasets
//     are often pasted into such blocks verbatim, so their text is returned
//     unmodified.
//  2. <table> elements, serialized one row per line with cells joined by
//     tabs. Header cells (<th>) and data cells (<td>) are treated alike.
//
// Multiple matching blocks are concatenated, separated by a blank line.
//
// Edge cases:
//   - A document with neither kind of block yields an empty string, not an
//     error. The caller decides whether an empty extraction is fatal.
//
// Errors:
//   - Returned only when the document cannot be parsed at all.
func ExtractHTML(htmlText string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var blocks []string

	doc.Find("pre, code").Each(func(_ int, sel *goquery.Selection) {
		// Skip inline snippets; delimited data needs at least two lines.
		text := strings.Trim(sel.Text(), "\n")
		if strings.Count(text, "\n") < 1 {
			return
		}
		blocks = append(blocks, text)
	})

	if len(blocks) == 0 {
		doc.Find("table").Each(func(_ int, table *goquery.Selection) {
			if t := serializeTableRows(table); t != "" {
				blocks = append(blocks, t)
			}
		})
	}

	if len(blocks) == 0 {
		return "", nil
	}
	return strings.Join(blocks, "\n\n") + "\n", nil
}

// serializeTableRows renders a <table> as tab-separated lines. Rows without
// cells are dropped; cell text is trimmed and embedded tabs/newlines are
// collapsed so they cannot masquerade as structure.
func serializeTableRows(table *goquery.Selection) string {
	var b strings.Builder

	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		var cells []string
		row.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, flattenCellText(cell.Text()))
		})
		if len(cells) == 0 {
			return
		}
		b.WriteString(strings.Join(cells, "\t"))
		b.WriteByte('\n')
	})

	return strings.TrimRight(b.String(), "\n")
}

func flattenCellText(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.Join(strings.Fields(s), " ")
}
