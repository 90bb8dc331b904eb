package bertlv

import (
	"fmt"
	"io"
	"math"
	"math/big"
)

// Encode writes a record with the given tag and value.
//
// The length field is computed from len(value) in canonical form (padded
// when the encoder was created with MinLengthOctets). A nil value writes
// nothing, which lets optional fields be encoded unconditionally:
//
//	enc.Encode(bertlv.Tag{0x5A}, pan)      // writes 5A 08 ...
//	enc.Encode(bertlv.Tag{0x5F, 0x20}, nil) // writes nothing
func (e *Encoder) Encode(tag Tag, value []byte) error {
	if value == nil {
		return nil
	}
	if len(tag) == 0 {
		return invalidArgument("tag is empty")
	}

	length, err := appendLength(nil, big.NewInt(int64(len(value))), e.minLengthOctets)
	if err != nil {
		return err
	}
	return e.write(tag, length, value)
}

// EncodeRaw writes tag, length and value verbatim, in that order.
//
// It is meant for callers that already hold a valid length field, for
// example when re-emitting a record exactly as it was decoded.
func (e *Encoder) EncodeRaw(tag Tag, length, value []byte) error {
	if len(tag) == 0 {
		return invalidArgument("tag is empty")
	}
	return e.write(tag, length, value)
}

// EncodeFrom writes a record whose value is streamed from r. Exactly length
// bytes are copied; r ending early fails with ErrMalformed after the header
// and the bytes read so far have been written.
func (e *Encoder) EncodeFrom(tag Tag, length *big.Int, r io.Reader) error {
	if len(tag) == 0 {
		return invalidArgument("tag is empty")
	}
	field, err := appendLength(nil, length, e.minLengthOctets)
	if err != nil {
		return err
	}
	if err := e.write(tag, field); err != nil {
		return err
	}

	remaining := new(big.Int).Set(length)
	for remaining.Sign() > 0 {
		chunk := int64(math.MaxInt64)
		if remaining.IsInt64() {
			chunk = remaining.Int64()
		}
		n, err := io.CopyN(e.w, r, chunk)
		remaining.Sub(remaining, big.NewInt(n))
		if err == io.EOF {
			return fmt.Errorf("%w: source ended with %s value bytes remaining", ErrMalformed, remaining)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) write(parts ...[]byte) error {
	for _, p := range parts {
		if len(p) == 0 {
			continue
		}
		if _, err := e.w.Write(p); err != nil {
			return err
		}
	}
	return nil
}
