// Package hexfmt formats and parses octet strings written as hex, the way
// TLV records are usually shown in card and protocol traces.
package hexfmt

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidHex is returned by Parse for input that is not hex octets.
var ErrInvalidHex = errors.New("hexfmt: invalid hex")

// Format renders b as colon separated, 0x prefixed upper-case octets:
//
//	Format([]byte{0x7F, 0x74}) // "0x7F:0x74"
func Format(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) * 5)
	for i, v := range b {
		if i > 0 {
			sb.WriteByte(':')
		}
		sb.WriteString("0x")
		sb.WriteString(Byte(v))
	}
	return sb.String()
}

// Byte renders a single octet as two upper-case hex digits.
func Byte(b byte) string {
	return fmt.Sprintf("%02X", b)
}

// Parse decodes hex octets. Octets may be run together or separated by
// whitespace, ':' or '-', and each group may carry a 0x prefix:
//
//	Parse("7F74")
//	Parse("7f 74")
//	Parse("0x7F:0x74")
func Parse(s string) ([]byte, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case ' ', '\t', '\n', '\r', ':', '-':
			return true
		}
		return false
	})

	var digits strings.Builder
	for _, f := range fields {
		f = strings.TrimPrefix(strings.TrimPrefix(f, "0x"), "0X")
		if len(f)%2 != 0 {
			return nil, fmt.Errorf("%w: group %q has an odd number of digits", ErrInvalidHex, f)
		}
		digits.WriteString(f)
	}

	b, err := hex.DecodeString(digits.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	return b, nil
}
