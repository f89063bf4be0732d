// Package encoding converts sampled raw bytes into UTF-8 text.
//
// Inputs arrive from files and HTTP responses with no reliable encoding
// declaration, so decoding is heuristic:
//
//   - A byte order mark selects UTF-8, UTF-16LE, or UTF-16BE outright.
//   - Without a BOM, bytes that validate as UTF-8 pass through unchanged.
//   - Anything else is treated as Windows-1252, which decodes every byte
//     sequence and so cannot fail.
//
// The output is always valid UTF-8. Callers that need to reject binary
// garbage do so downstream on the decoded text, not here.
package encoding

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Name identifies the encoding a sample was decoded from.
type Name string

const (
	UTF8        Name = "utf-8"
	UTF16LE     Name = "utf-16le"
	UTF16BE     Name = "utf-16be"
	Windows1252 Name = "windows-1252"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decode converts raw sampled bytes into UTF-8 text and reports which
// encoding was applied.
//
// Edge cases:
//   - Empty input decodes to the empty string as UTF-8.
//   - A UTF-8 BOM is stripped.
//   - An odd-length UTF-16 sample loses its final dangling byte; samples are
//     byte-bounded prefixes, so a torn final code unit is expected.
//
// Errors:
//   - Returned only when the UTF-16 transform itself fails, which indicates
//     a truncated transform buffer rather than bad input data.
func Decode(raw []byte) (string, Name, error) {
	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		return string(sanitizeUTF8(raw[len(bomUTF8):])), UTF8, nil

	case bytes.HasPrefix(raw, bomUTF16LE):
		s, err := decodeUTF16(raw, unicode.LittleEndian)
		if err != nil {
			return "", UTF16LE, err
		}
		return s, UTF16LE, nil

	case bytes.HasPrefix(raw, bomUTF16BE):
		s, err := decodeUTF16(raw, unicode.BigEndian)
		if err != nil {
			return "", UTF16BE, err
		}
		return s, UTF16BE, nil
	}

	if utf8.Valid(raw) {
		return string(raw), UTF8, nil
	}

	// Windows-1252 maps every byte, so this path cannot fail. Undefined
	// code points come back as U+FFFD, which classification treats as text.
	s, _, err := transform.String(charmap.Windows1252.NewDecoder(), string(raw))
	if err != nil {
		return "", Windows1252, fmt.Errorf("decode windows-1252: %w", err)
	}
	return s, Windows1252, nil
}

func decodeUTF16(raw []byte, endian unicode.Endianness) (string, error) {
	// Drop a torn trailing byte before transforming; the BOM guarantees the
	// stream started on a code-unit boundary.
	if len(raw)%2 != 0 {
		raw = raw[:len(raw)-1]
	}
	dec := unicode.UTF16(endian, unicode.ExpectBOM).NewDecoder()
	out, _, err := transform.Bytes(dec, raw)
	if err != nil {
		return "", fmt.Errorf("decode utf-16: %w", err)
	}
	return string(sanitizeUTF8(out)), nil
}

// sanitizeUTF8 replaces any invalid byte sequences with U+FFFD so the
// package-level guarantee holds even for hostile input.
func sanitizeUTF8(b []byte) []byte {
	if utf8.Valid(b) {
		return b
	}
	return bytes.ToValidUTF8(b, []byte(string(utf8.RuneError)))
}
