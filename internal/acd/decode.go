package acd

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"agentpack/internal/services"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DecodeText converts raw description bytes to UTF-8. Byte order marks take
// precedence over the configured legacy code page.
func DecodeText(data []byte, codePage string) (string, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return string(data[len(bomUTF8):]), nil
	case bytes.HasPrefix(data, bomUTF16LE):
		return decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), data)
	case bytes.HasPrefix(data, bomUTF16BE):
		return decodeWith(unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), data)
	}

	switch strings.ToLower(strings.TrimSpace(codePage)) {
	case "", "windows-1252", "cp1252":
		return decodeWith(charmap.Windows1252, data)
	case "iso-8859-1", "latin-1", "latin1":
		return decodeWith(charmap.ISO8859_1, data)
	case "utf-8", "utf8":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: description is not valid utf-8", services.ErrMalformedDescription)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: unsupported description encoding %q", services.ErrConfiguration, codePage)
	}
}

func decodeWith(enc encoding.Encoding, data []byte) (string, error) {
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("%w: decode description: %w", services.ErrMalformedDescription, err)
	}
	return string(decoded), nil
}
