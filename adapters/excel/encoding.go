package excel

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// decodeText converts report bytes to UTF-8. MetaTrader writes UTF-16 with a BOM; hand-edited
// CSVs are usually UTF-8 or Windows-1252. The returned name is the detected encoding.
func decodeText(raw []byte) ([]byte, string, error) {
	var dec *encoding.Decoder
	name := ""

	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		return raw[len(bomUTF8):], "utf-8-bom", nil
	case bytes.HasPrefix(raw, bomUTF16LE), bytes.HasPrefix(raw, bomUTF16BE):
		dec = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		name = "utf-16"
	case looksLikeUTF16LE(raw):
		dec = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
		name = "utf-16le"
	case utf8.Valid(raw):
		return raw, "utf-8", nil
	default:
		dec = charmap.Windows1252.NewDecoder()
		name = "windows-1252"
	}

	out, _, err := transform.Bytes(dec, raw)
	if err != nil {
		return nil, name, fmt.Errorf("decode %s: %w", name, err)
	}
	return out, name, nil
}

// looksLikeUTF16LE spots BOM-less UTF-16LE ASCII text: a zero in every odd byte of the prefix.
func looksLikeUTF16LE(raw []byte) bool {
	n := len(raw)
	if n > 64 {
		n = 64
	}
	if n < 4 {
		return false
	}
	for i := 0; i+1 < n; i += 2 {
		if raw[i] == 0 || raw[i+1] != 0 {
			return false
		}
	}
	return true
}
