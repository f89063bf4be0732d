package source

import (
	"strings"
	"testing"
)

// TestLooksHTML verifies the HTML heuristic.
func TestLooksHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"html document", "<!DOCTYPE html><html></html>", true},
		{"leading whitespace", "  \n\t<table>", true},
		{"plain csv", "a,b,c\n", false},
		{"empty", "", false},
		{"angle later in text", "a,b<c\n", false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := LooksHTML([]byte(tt.in)); got != tt.want {
				t.Fatalf("LooksHTML(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

// TestExtractHTMLPre verifies that multi-line pre blocks win over tables and
// that inline code snippets are skipped.
func TestExtractHTMLPre(t *testing.T) {
	t.Parallel()

	doc := `<html><body>
<p>Run <code>sniff -url data.csv</code> to detect.</p>
<pre>a;b;c
1;2;3
</pre>
<table><tr><td>ignored</td></tr></table>
</body></html>`

	got, err := ExtractHTML(doc)
	if err != nil {
		t.Fatalf("ExtractHTML: %v", err)
	}
	want := "a;b;c\n1;2;3\n"
	if got != want {
		t.Fatalf("ExtractHTML = %q, want %q", got, want)
	}
}

// TestExtractHTMLTable verifies table serialization: tab-joined cells, one
// row per line, th and td treated alike, cell whitespace collapsed.
func TestExtractHTMLTable(t *testing.T) {
	t.Parallel()

	doc := `<table>
<tr><th>name</th><th>count</th></tr>
<tr><td> widget </td><td>12</td></tr>
<tr><td>multi
line</td><td>7</td></tr>
</table>`

	got, err := ExtractHTML(doc)
	if err != nil {
		t.Fatalf("ExtractHTML: %v", err)
	}
	want := "name\tcount\nwidget\t12\nmulti line\t7\n"
	if got != want {
		t.Fatalf("ExtractHTML = %q, want %q", got, want)
	}
}

// TestExtractHTMLMultipleTables verifies blank-line separation between
// extracted blocks.
func TestExtractHTMLMultipleTables(t *testing.T) {
	t.Parallel()

	doc := `<table><tr><td>a</td><td>b</td></tr></table>
<table><tr><td>c</td><td>d</td></tr></table>`

	got, err := ExtractHTML(doc)
	if err != nil {
		t.Fatalf("ExtractHTML: %v", err)
	}
	want := "a\tb\n\nc\td\n"
	if got != want {
		t.Fatalf("ExtractHTML = %q, want %q", got, want)
	}
}

// TestExtractHTMLNothingTabular verifies the empty-but-no-error contract.
func TestExtractHTMLNothingTabular(t *testing.T) {
	t.Parallel()

	got, err := ExtractHTML("<html><body><p>just prose</p></body></html>")
	if err != nil {
		t.Fatalf("ExtractHTML: %v", err)
	}
	if got != "" {
		t.Fatalf("ExtractHTML = %q, want empty", got)
	}

	// Rows without cells are dropped entirely.
	got, err = ExtractHTML("<table><tr></tr></table>")
	if err != nil {
		t.Fatalf("ExtractHTML: %v", err)
	}
	if strings.TrimSpace(got) != "" {
		t.Fatalf("ExtractHTML = %q, want empty", got)
	}
}
