package bertlv

import (
	"io"
	"math/big"
)

// ValueReader reads the value of a *LargeItem directly from the decoder's
// stream. It returns io.EOF after exactly Length bytes, so it never reads
// into the next record.
//
// A ValueReader is only valid until the next call to Decoder.Next; after
// that every Read returns ErrValueDetached. If the stream ends inside the
// value, that Read and every later one return the ErrMalformed error.
type ValueReader struct {
	d         *Decoder
	remaining *big.Int
	detached  bool
	err       error
}

// Read reads up to len(p) bytes of the value.
func (v *ValueReader) Read(p []byte) (int, error) {
	if v.err != nil {
		return 0, v.err
	}
	if v.detached {
		return 0, ErrValueDetached
	}
	if v.remaining.Sign() == 0 {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	if v.remaining.IsInt64() && v.remaining.Int64() < int64(len(p)) {
		p = p[:v.remaining.Int64()]
	}

	n, err := v.d.r.Read(p)
	v.d.offset += int64(n)
	v.remaining.Sub(v.remaining, big.NewInt(int64(n)))

	if err == io.EOF && v.remaining.Sign() > 0 {
		err = malformed(v.d.offset, "unexpected EOF: %s value bytes remaining", v.remaining)
		v.d.err = err
		v.err = err
		v.detached = true
	}
	if err == io.EOF {
		// The value ended exactly with the stream; report EOF on the next call.
		err = nil
	}
	return n, err
}

// Remaining returns the number of value bytes not read yet.
func (v *ValueReader) Remaining() *big.Int {
	return new(big.Int).Set(v.remaining)
}
