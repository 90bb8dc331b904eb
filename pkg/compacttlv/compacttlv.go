// Package compacttlv implements the COMPACT-TLV format of ISO/IEC 7816-4,
// used for historical bytes in smart card answers-to-reset.
//
// Each record starts with one octet holding the tag in the high nibble and
// the value length in the low nibble, followed by the value:
//
//	0x43 0x01 0x02 0x03 // tag 4, length 3, value 01 02 03
//
// Tags and lengths are therefore limited to 0..15. Records with a zero
// length carry no data and are skipped by the decoder.
package compacttlv

import (
	"errors"
	"fmt"
	"io"
	"iter"
)

const (
	// MaxTag is the largest tag a compact header can hold.
	MaxTag = 0x0F
	// MaxLength is the largest value length a compact header can hold.
	MaxLength = 0x0F
)

var (
	// ErrMalformed indicates the stream ended inside a value.
	ErrMalformed = errors.New("compacttlv: malformed stream")

	// ErrInvalidArgument indicates a tag or length outside 0..15.
	ErrInvalidArgument = errors.New("compacttlv: invalid argument")
)

// Item is one decoded record.
type Item struct {
	Tag   byte
	Value []byte
}

// Pack combines tag and length into a header octet.
func Pack(tag byte, length int) (byte, error) {
	if tag > MaxTag {
		return 0, fmt.Errorf("%w: tag %d exceeds %d", ErrInvalidArgument, tag, MaxTag)
	}
	if length < 0 || length > MaxLength {
		return 0, fmt.Errorf("%w: length %d outside 0..%d", ErrInvalidArgument, length, MaxLength)
	}
	return tag<<4 | byte(length), nil
}

// Unpack splits a header octet into tag and length.
func Unpack(header byte) (tag byte, length int) {
	return header >> 4, int(header & 0x0F)
}

// Decoder reads compact TLV records from an io.Reader.
type Decoder struct {
	r      io.Reader
	offset int64
	start  int64
	err    error
}

// NewDecoder creates a new compact TLV decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// RecordOffset returns the offset of the header octet of the record last
// returned by Next.
func (d *Decoder) RecordOffset() int64 {
	return d.start
}

// Next returns the next record with a non-empty value.
// Returns io.EOF when the stream ends at a record boundary.
func (d *Decoder) Next() (Item, error) {
	if d.err != nil {
		return Item{}, d.err
	}
	item, err := d.next()
	if err != nil {
		d.err = err
	}
	return item, err
}

func (d *Decoder) next() (Item, error) {
	var header [1]byte
	for {
		d.start = d.offset
		if _, err := io.ReadFull(d.r, header[:]); err != nil {
			return Item{}, err
		}
		d.offset++

		tag, length := Unpack(header[0])
		if length == 0 {
			continue
		}

		value := make([]byte, length)
		n, err := io.ReadFull(d.r, value)
		d.offset += int64(n)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Item{}, fmt.Errorf("%w at offset %d: expected %d value bytes, got %d", ErrMalformed, d.offset, length, n)
		}
		if err != nil {
			return Item{}, err
		}
		return Item{Tag: tag, Value: value}, nil
	}
}

// All returns an iterator over the remaining records.
func (d *Decoder) All() iter.Seq2[Item, error] {
	return func(yield func(Item, error) bool) {
		for {
			item, err := d.Next()
			if err == io.EOF {
				return
			}
			if !yield(item, err) || err != nil {
				return
			}
		}
	}
}

// Decode reads records from r until the stream is exhausted, calling fn
// for each one. The first error from decoding or from fn is returned.
func Decode(r io.Reader, fn func(tag byte, value []byte) error) error {
	for item, err := range NewDecoder(r).All() {
		if err != nil {
			return err
		}
		if err := fn(item.Tag, item.Value); err != nil {
			return err
		}
	}
	return nil
}

// Encoder writes compact TLV records to an io.Writer.
type Encoder struct {
	w io.Writer
}

// NewEncoder creates a new compact TLV encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes a record for value. A nil value writes nothing.
func (e *Encoder) Encode(tag byte, value []byte) error {
	if value == nil {
		return nil
	}
	return e.EncodeRaw(tag, len(value), value)
}

// EncodeRaw writes a header for tag and length followed by value as is.
// Nothing is written if tag or length is out of range.
func (e *Encoder) EncodeRaw(tag byte, length int, value []byte) error {
	header, err := Pack(tag, length)
	if err != nil {
		return err
	}
	if _, err := e.w.Write([]byte{header}); err != nil {
		return err
	}
	if len(value) == 0 {
		return nil
	}
	_, err = e.w.Write(value)
	return err
}
