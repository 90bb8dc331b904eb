package bertlv

import (
	"bytes"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
)

// fragmentedReader returns at most n bytes per Read, and hides io.ByteReader.
type fragmentedReader struct {
	r io.Reader
	n int
}

func (f *fragmentedReader) Read(p []byte) (int, error) {
	if len(p) > f.n {
		p = p[:f.n]
	}
	return f.r.Read(p)
}

func fragmentedStream(t *testing.T) ([]byte, [][]byte) {
	t.Helper()
	values := [][]byte{
		{0x01},
		bytes.Repeat([]byte{0x02}, 127),
		bytes.Repeat([]byte{0x03}, 128),
		bytes.Repeat([]byte{0x04}, 70000),
		{},
	}

	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	require.NoError(t, enc.Encode(Tag{0x5A}, values[0]))
	require.NoError(t, enc.Encode(Tag{0x7F, 0x74}, values[1]))
	require.NoError(t, enc.Encode(Tag{0x7F, 0x84, 0x74}, values[2]))
	require.NoError(t, enc.Encode(Tag{0x04}, values[3]))
	require.NoError(t, enc.Encode(Tag{0x05}, values[4]))
	return buf.Bytes(), values
}

func TestDecoder_PartialReads(t *testing.T) {
	data, values := fragmentedStream(t)

	readers := map[string]func() io.Reader{
		"one byte":      func() io.Reader { return iotest.OneByteReader(bytes.NewReader(data)) },
		"half":          func() io.Reader { return iotest.HalfReader(bytes.NewReader(data)) },
		"data with eof": func() io.Reader { return iotest.DataErrReader(bytes.NewReader(data)) },
		"chunks of 3":   func() io.Reader { return &fragmentedReader{r: bytes.NewReader(data), n: 3} },
	}

	for name, newReader := range readers {
		t.Run(name, func(t *testing.T) {
			var got [][]byte
			for rec, err := range NewDecoder(newReader()).All() {
				require.NoError(t, err)
				got = append(got, rec.(*Item).Value)
			}
			require.Equal(t, values, got)
		})
	}
}

func TestDecoder_PartialReads_LargeItems(t *testing.T) {
	data, values := fragmentedStream(t)

	readers := map[string]func() io.Reader{
		"one byte":      func() io.Reader { return iotest.OneByteReader(bytes.NewReader(data)) },
		"data with eof": func() io.Reader { return iotest.DataErrReader(bytes.NewReader(data)) },
	}

	for name, newReader := range readers {
		t.Run(name, func(t *testing.T) {
			var got [][]byte
			dec := NewDecoder(newReader(), MaxValueSize(100))
			for rec, err := range dec.All() {
				require.NoError(t, err)
				switch rec := rec.(type) {
				case *Item:
					got = append(got, rec.Value)
				case *LargeItem:
					value, err := io.ReadAll(rec.Value)
					require.NoError(t, err)
					got = append(got, value)
				}
			}
			require.Equal(t, values, got)
		})
	}
}

func TestDecoder_PartialReads_Truncated(t *testing.T) {
	data, _ := fragmentedStream(t)
	cut := data[:len(data)-10]

	var err error
	for _, err = range NewDecoder(iotest.OneByteReader(bytes.NewReader(cut))).All() {
		if err != nil {
			break
		}
	}
	require.ErrorIs(t, err, ErrMalformed)
}
