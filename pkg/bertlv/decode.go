package bertlv

import (
	"bytes"
	"errors"
	"io"
	"iter"
	"math/big"
)

const (
	tagNumberMask   = 0x1F
	continuationBit = 0x80

	// Values up to this size are read into an exactly sized buffer.
	// Larger ones grow as data arrives.
	smallValueSize = 64 << 10
)

// Next reads the next record from the stream.
//
// Returns io.EOF when the stream ends cleanly at a record boundary. Any
// other error is fatal: the stream position is undefined and every later
// call returns the same error.
//
// If the previous record was a *LargeItem whose value was not fully read,
// Next discards the rest of that value first.
func (d *Decoder) Next() (Record, error) {
	if d.err != nil {
		return nil, d.err
	}
	rec, err := d.next()
	if err != nil {
		d.err = err
		return nil, err
	}
	return rec, nil
}

// All returns an iterator over the remaining records.
// Iteration stops at clean end of stream, or after yielding the first error.
//
// Example:
//
//	for rec, err := range dec.All() {
//		if err != nil {
//			return err
//		}
//		...
//	}
func (d *Decoder) All() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for {
			rec, err := d.Next()
			if err == io.EOF {
				return
			}
			if !yield(rec, err) || err != nil {
				return
			}
		}
	}
}

func (d *Decoder) next() (Record, error) {
	if err := d.release(); err != nil {
		return nil, err
	}
	d.start = d.offset

	tag, err := d.readTag()
	if err != nil {
		return nil, err
	}

	length, err := d.readLength()
	if err != nil {
		return nil, err
	}

	if d.stopAtEndOfContents && len(tag) == 1 && tag[0] == 0x00 && length.Sign() == 0 {
		return nil, io.EOF
	}

	if length.IsInt64() && length.Int64() <= d.maxValueSize {
		value, err := d.readValue(length.Int64())
		if err != nil {
			return nil, err
		}
		return &Item{Tag: tag, Value: value}, nil
	}

	vr := &ValueReader{d: d, remaining: new(big.Int).Set(length)}
	d.pending = vr
	return &LargeItem{Tag: tag, Length: length, Value: vr}, nil
}

// release discards whatever is left of the pending large value and
// detaches its reader.
func (d *Decoder) release() error {
	vr := d.pending
	if vr == nil {
		return nil
	}
	d.pending = nil
	_, err := io.Copy(io.Discard, vr)
	vr.detached = true
	return err
}

// readTag reads the tag field. A clean io.EOF is returned only when no
// byte of the tag was read.
func (d *Decoder) readTag() (Tag, error) {
	b, err := d.readByte()
	if err != nil {
		return nil, err
	}

	tag := Tag{b}
	if b&tagNumberMask != tagNumberMask {
		return tag, nil
	}

	// Continuation octets follow while the MSB is set.
	for {
		b, err := d.readByte()
		if err != nil {
			return nil, d.eofAsMalformed(err, "unexpected EOF in tag after %d octets", len(tag))
		}
		tag = append(tag, b)
		if b&continuationBit == 0 {
			return tag, nil
		}
	}
}

// readLength reads the length field that follows a tag.
func (d *Decoder) readLength() (*big.Int, error) {
	start := d.offset

	b, err := d.readByte()
	if err != nil {
		return nil, d.eofAsMalformed(err, "unexpected EOF: expected length octet")
	}

	if b&longFormBit == 0 {
		return big.NewInt(int64(b)), nil
	}

	// 0x80 is a long form with no length octets: length 0.
	n := int(b & lengthMask)
	if n > MaxLengthOctets {
		return nil, invalidFormat(start, ErrInvalidFormat,
			"long-form length field must not exceed %d octets, got %d", MaxLengthOctets, n)
	}

	field := make([]byte, n)
	if got, err := d.readFull(field); err != nil {
		return nil, d.eofAsMalformed(err, "unexpected EOF: expected %d length octets, got %d", n, got)
	}
	return new(big.Int).SetBytes(field), nil
}

// readValue reads exactly n bytes of value.
func (d *Decoder) readValue(n int64) ([]byte, error) {
	if n <= smallValueSize {
		value := make([]byte, n)
		if got, err := d.readFull(value); err != nil {
			return nil, d.eofAsMalformed(err, "unexpected EOF: expected %d value bytes, got %d", n, got)
		}
		return value, nil
	}

	var buf bytes.Buffer
	buf.Grow(smallValueSize)
	got, err := io.CopyN(&buf, d.r, n)
	d.offset += got
	if err != nil {
		return nil, d.eofAsMalformed(err, "unexpected EOF: expected %d value bytes, got %d", n, got)
	}
	return buf.Bytes(), nil
}

// readByte reads a single byte and tracks position for error reporting.
func (d *Decoder) readByte() (byte, error) {
	if br, ok := d.r.(io.ByteReader); ok {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		d.offset++
		return b, nil
	}

	if _, err := io.ReadFull(d.r, d.scratch[:]); err != nil {
		return 0, err
	}
	d.offset++
	return d.scratch[0], nil
}

// readFull fills p, looping over partial reads.
func (d *Decoder) readFull(p []byte) (int, error) {
	n, err := io.ReadFull(d.r, p)
	d.offset += int64(n)
	return n, err
}

// eofAsMalformed turns an end of stream inside a record into ErrMalformed.
// Other I/O errors are returned unchanged.
func (d *Decoder) eofAsMalformed(err error, format string, args ...any) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return malformed(d.offset, format, args...)
	}
	return err
}

// Handler receives records from Decode.
type Handler interface {
	// OnItem is called for a record whose value was read into memory.
	OnItem(tag Tag, value []byte) error

	// OnLargeItem is called for a record longer than the decoder's
	// MaxValueSize. The value is read from r, which must not be used after
	// OnLargeItem returns. Bytes left unread are discarded.
	OnLargeItem(tag Tag, length *big.Int, r io.Reader) error
}

// HandlerFuncs adapts plain functions to a Handler. A nil field ignores
// the corresponding records.
type HandlerFuncs struct {
	Item      func(tag Tag, value []byte) error
	LargeItem func(tag Tag, length *big.Int, r io.Reader) error
}

// OnItem calls h.Item if it is set.
func (h HandlerFuncs) OnItem(tag Tag, value []byte) error {
	if h.Item == nil {
		return nil
	}
	return h.Item(tag, value)
}

// OnLargeItem calls h.LargeItem if it is set. Otherwise the value is
// left unread and discarded by the decoder.
func (h HandlerFuncs) OnLargeItem(tag Tag, length *big.Int, r io.Reader) error {
	if h.LargeItem == nil {
		return nil
	}
	return h.LargeItem(tag, length, r)
}

// Decode reads records from r until the stream is exhausted, passing each
// one to h.
//
// It returns nil on clean end of stream. The first decoding error, or the
// first error returned by h, stops decoding and is returned.
func Decode(r io.Reader, h Handler, opts ...Option) error {
	dec := NewDecoder(r, opts...)
	for rec, err := range dec.All() {
		if err != nil {
			return err
		}

		switch rec := rec.(type) {
		case *Item:
			err = h.OnItem(rec.Tag, rec.Value)
		case *LargeItem:
			err = h.OnLargeItem(rec.Tag, rec.Length, rec.Value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
