package parser

import (
	"bytes"
	"io"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decodeCharset normalizes raw CSV bytes to UTF-8.
//
// Detection order:
//  1. UTF-8 BOM: stripped.
//  2. UTF-16 BOM (LE/BE): decoded.
//  3. Valid UTF-8: passed through.
//  4. Anything else: decoded as Windows-1252, the dominant single-byte
//     encoding for spreadsheet exports that are not UTF-8.
func decodeCharset(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return data[3:], nil

	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}), bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		out, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), dec))
		if err != nil {
			return nil, err
		}
		return out, nil

	case mustUTF8(data):
		return data, nil

	default:
		dec := charmap.Windows1252.NewDecoder()
		out, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), dec))
		if err != nil {
			return nil, err
		}
		return out, nil
	}
}
