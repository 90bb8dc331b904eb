package bertlv

import (
	"bytes"
	"math/big"
)

const (
	longFormBit = 0x80
	lengthMask  = 0x7F
)

// EncodeLength returns the canonical BER encoding of size.
//
// Sizes up to 127 use the one-octet short form. Larger sizes use the long
// form: 0x80|n followed by n big-endian octets with no leading zero octet.
// Negative sizes and sizes needing more than MaxLengthOctets octets fail
// with ErrInvalidArgument.
//
// Example:
//
//	EncodeLength(big.NewInt(128)) // [0x81 0x80]
func EncodeLength(size *big.Int) ([]byte, error) {
	return appendLength(nil, size, 0)
}

// EncodeLengthInt is EncodeLength for a native integer.
func EncodeLengthInt(size int64) ([]byte, error) {
	return appendLength(nil, big.NewInt(size), 0)
}

// EncodeLengthPadded is EncodeLength with the long form padded by leading
// zero octets to at least minOctets octets. The short form is unaffected.
func EncodeLengthPadded(size *big.Int, minOctets int) ([]byte, error) {
	return appendLength(nil, size, minOctets)
}

// AppendLength appends the canonical encoding of size to dst.
func AppendLength(dst []byte, size *big.Int) ([]byte, error) {
	return appendLength(dst, size, 0)
}

// ParseLength decodes a length field from the start of b.
// It returns the length and the number of octets consumed.
func ParseLength(b []byte) (*big.Int, int, error) {
	d := NewDecoder(bytes.NewReader(b))
	length, err := d.readLength()
	if err != nil {
		return nil, 0, err
	}
	return length, int(d.offset), nil
}

func appendLength(dst []byte, size *big.Int, minOctets int) ([]byte, error) {
	if size == nil {
		return dst, invalidArgument("size is nil")
	}
	if size.Sign() < 0 {
		return dst, invalidArgument("size must not be negative, got %s", size)
	}
	if minOctets < 0 || minOctets > MaxLengthOctets {
		return dst, invalidArgument("minimum length octets must be within 0..%d, got %d", MaxLengthOctets, minOctets)
	}

	n := (size.BitLen() + 7) / 8
	if n > MaxLengthOctets {
		return dst, invalidArgument("size needs %d length octets, limit is %d", n, MaxLengthOctets)
	}

	// Short form, including size 0 which has BitLen 0.
	if size.BitLen() <= 7 {
		return append(dst, byte(size.Uint64())), nil
	}

	count := max(n, minOctets)
	dst = append(dst, longFormBit|byte(count))
	start := len(dst)
	dst = append(dst, make([]byte, count)...)
	size.FillBytes(dst[start:])
	return dst, nil
}
