package manifestfile

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding names an input text encoding.
type Encoding string

const (
	EncodingAuto        Encoding = "auto"
	EncodingUTF8        Encoding = "utf-8"
	EncodingUTF16LE     Encoding = "utf-16le"
	EncodingWindows1252 Encoding = "windows-1252"
)

// ParseEncoding accepts the configuration spelling of an encoding.
func ParseEncoding(s string) (Encoding, error) {
	switch e := Encoding(strings.ToLower(strings.TrimSpace(s))); e {
	case "":
		return EncodingAuto, nil
	case EncodingAuto, EncodingUTF8, EncodingUTF16LE, EncodingWindows1252:
		return e, nil
	case "utf8":
		return EncodingUTF8, nil
	case "cp1252":
		return EncodingWindows1252, nil
	default:
		return "", fmt.Errorf("unsupported encoding %q (expected auto|utf-8|utf-16le|windows-1252)", s)
	}
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// decode converts raw export bytes to UTF-8 text. In auto mode a BOM decides
// the encoding. Without one, NUL-padded ASCII is read as UTF-16LE and input
// that is not valid UTF-8 is read as Windows-1252, which is what the desktop
// tracker writes on ANSI systems.
func decode(data []byte, enc Encoding) (string, error) {
	var dec transform.Transformer
	switch enc {
	case EncodingUTF8:
		dec = unicode.BOMOverride(unicode.UTF8.NewDecoder())
	case EncodingUTF16LE:
		dec = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	case EncodingWindows1252:
		dec = charmap.Windows1252.NewDecoder()
	case EncodingAuto, "":
		switch {
		case bytes.HasPrefix(data, bomUTF8), bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
			dec = unicode.BOMOverride(unicode.UTF8.NewDecoder())
		case looksUTF16LE(data):
			dec = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
		case utf8.Valid(data):
			return string(data), nil
		default:
			dec = charmap.Windows1252.NewDecoder()
		}
	default:
		return "", fmt.Errorf("unsupported encoding %q", enc)
	}

	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", enc, err)
	}
	return string(out), nil
}

// looksUTF16LE reports whether BOM-less data has the NUL high bytes that
// UTF-16LE gives ASCII text. NUL is valid UTF-8, so utf8.Valid cannot tell.
func looksUTF16LE(data []byte) bool {
	if len(data) < 2 || len(data)%2 != 0 {
		return false
	}
	var oddNUL, evenNUL int
	for i, b := range data {
		if b != 0 {
			continue
		}
		if i%2 == 1 {
			oddNUL++
		} else {
			evenNUL++
		}
	}
	pairs := len(data) / 2
	return evenNUL == 0 && oddNUL*2 >= pairs
}
