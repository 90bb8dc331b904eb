package bertlv

import (
	"fmt"
	"io"
	"math/big"
)

// Tag is the raw tag field of a record, one or more octets.
type Tag []byte

// String returns the tag octets as upper-case hex, e.g. "7F74".
func (t Tag) String() string {
	return fmt.Sprintf("%X", []byte(t))
}

// Valid reports whether t is a well-formed tag field: a single octet whose
// low five bits are not all set, or such a first octet followed by
// continuation octets of which only the last has the MSB clear.
func (t Tag) Valid() bool {
	if len(t) == 0 {
		return false
	}
	if t[0]&tagNumberMask != tagNumberMask {
		return len(t) == 1
	}
	if len(t) < 2 {
		return false
	}
	for _, b := range t[1 : len(t)-1] {
		if b&continuationBit == 0 {
			return false
		}
	}
	return t[len(t)-1]&continuationBit == 0
}

// Record is a decoded TLV record: either an *Item or a *LargeItem.
type Record interface {
	RecordTag() Tag
	isRecord()
}

// Item is a record whose value has been read into memory.
type Item struct {
	Tag   Tag
	Value []byte
}

// RecordTag returns the item's tag.
func (i *Item) RecordTag() Tag { return i.Tag }

// Length returns the value length as a big.Int.
func (i *Item) Length() *big.Int { return big.NewInt(int64(len(i.Value))) }

func (*Item) isRecord() {}

// LargeItem is a record whose length exceeds the decoder's MaxValueSize.
// The value is not materialized; it must be read from Value before the
// next call to Decoder.Next, which discards any bytes left unread.
type LargeItem struct {
	Tag    Tag
	Length *big.Int
	Value  *ValueReader
}

// RecordTag returns the item's tag.
func (l *LargeItem) RecordTag() Tag { return l.Tag }

func (*LargeItem) isRecord() {}

// Decoder reads BER-TLV records from an io.Reader.
//
// Reads are unbuffered and the decoder never reads past the end of the
// current record. For network streams, wrap the reader in bufio.Reader:
//
//	dec := bertlv.NewDecoder(bufio.NewReader(conn))
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	r                   io.Reader
	maxValueSize        int64
	stopAtEndOfContents bool

	offset  int64        // Track position for error reporting
	start   int64        // Offset of the record last returned by Next
	pending *ValueReader // Value of the last LargeItem, if any
	err     error        // Sticky error; decoding cannot resume after a failure
	scratch [1]byte
}

// NewDecoder creates a new BER-TLV decoder reading from r.
//
// Optional configuration can be provided via Option functions.
//
// Example:
//
//	dec := bertlv.NewDecoder(r, bertlv.MaxValueSize(64<<10))
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	cfg := &config{
		maxValueSize: DefaultMaxValueSize,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Decoder{
		r:                   r,
		maxValueSize:        cfg.maxValueSize,
		stopAtEndOfContents: cfg.stopAtEndOfContents,
	}
}

// Offset returns the number of bytes consumed from the underlying reader.
func (d *Decoder) Offset() int64 {
	return d.offset
}

// RecordOffset returns the offset of the first tag octet of the record
// last returned by Next. Unread bytes of an earlier large value are not
// part of it.
func (d *Decoder) RecordOffset() int64 {
	return d.start
}

// Encoder writes BER-TLV records to an io.Writer.
//
// Each record is written with separate writes for tag, length and value.
// Wrap the writer in bufio.Writer if fewer system calls are desired:
//
//	enc := bertlv.NewEncoder(bufio.NewWriter(conn))
type Encoder struct {
	w               io.Writer
	minLengthOctets int
}

// NewEncoder creates a new BER-TLV encoder that writes to w.
func NewEncoder(w io.Writer, opts ...EncoderOption) *Encoder {
	cfg := &encoderConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Encoder{w: w, minLengthOctets: cfg.minLengthOctets}
}
