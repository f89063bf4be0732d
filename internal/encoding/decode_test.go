package encoding

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// utf16Bytes encodes a string as UTF-16 with a BOM for test fixtures.
// Fixture strings stay in the BMP, so surrogate handling is not needed here.
func utf16Bytes(s string, littleEndian bool) []byte {
	var out []byte
	units := []uint16{0xFEFF}
	for _, r := range s {
		units = append(units, uint16(r))
	}
	for _, u := range units {
		if littleEndian {
			out = append(out, byte(u), byte(u>>8))
		} else {
			out = append(out, byte(u>>8), byte(u))
		}
	}
	return out
}

// TestDecode verifies BOM dispatch, passthrough, and the Windows-1252
// fallback.
func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      []byte
		want     string
		wantName Name
	}{
		{
			name:     "plain ascii",
			raw:      []byte("a,b,c\n"),
			want:     "a,b,c\n",
			wantName: UTF8,
		},
		{
			name:     "utf8 bom stripped",
			raw:      append([]byte{0xEF, 0xBB, 0xBF}, []byte("x;y\n")...),
			want:     "x;y\n",
			wantName: UTF8,
		},
		{
			name:     "utf8 multibyte passthrough",
			raw:      []byte("å|ß\n"),
			want:     "å|ß\n",
			wantName: UTF8,
		},
		{
			name:     "utf16 little endian",
			raw:      utf16Bytes("a,b\n", true),
			want:     "a,b\n",
			wantName: UTF16LE,
		},
		{
			name:     "utf16 big endian",
			raw:      utf16Bytes("a,b\n", false),
			want:     "a,b\n",
			wantName: UTF16BE,
		},
		{
			name:     "windows-1252 fallback",
			raw:      []byte{'c', 'a', 'f', 0xE9, ',', 'x', '\n'},
			want:     "café,x\n",
			wantName: Windows1252,
		},
		{
			name:     "empty input",
			raw:      nil,
			want:     "",
			wantName: UTF8,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, name, err := Decode(tt.raw)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if got != tt.want || name != tt.wantName {
				t.Fatalf("Decode = (%q, %v), want (%q, %v)", got, name, tt.want, tt.wantName)
			}
		})
	}
}

// TestDecodeTornUTF16 verifies that a byte-bounded sample cutting a UTF-16
// code unit in half still decodes the complete prefix.
func TestDecodeTornUTF16(t *testing.T) {
	t.Parallel()

	raw := utf16Bytes("ab", true)
	raw = append(raw, 0x63) // half of the code unit for 'c'

	got, name, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if name != UTF16LE || got != "ab" {
		t.Fatalf("Decode = (%q, %v), want (%q, %v)", got, name, "ab", UTF16LE)
	}
}

// TestDecodeAlwaysValidUTF8 sweeps hostile byte patterns and asserts the
// package guarantee: output is always valid UTF-8.
func TestDecodeAlwaysValidUTF8(t *testing.T) {
	t.Parallel()

	inputs := [][]byte{
		{0xFF, 0xFF, 0xFF},
		{0x80, 0x81, 0x82},
		{0xEF, 0xBB}, // truncated UTF-8 BOM
		{0xFF, 0xFE}, // bare UTF-16LE BOM
		{0xFE, 0xFF, 0x00},
		[]byte(strings.Repeat("\x9d", 64)),
	}
	for i, raw := range inputs {
		got, _, err := Decode(raw)
		if err != nil {
			t.Fatalf("input %d: Decode: %v", i, err)
		}
		if !utf8.ValidString(got) {
			t.Fatalf("input %d: Decode produced invalid UTF-8: %q", i, got)
		}
	}
}
