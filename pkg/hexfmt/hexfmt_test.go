package hexfmt_test

import (
	"testing"

	"github.com/epithet-ssh/tlv/pkg/hexfmt"
	"github.com/stretchr/testify/require"
	"gotest.tools/assert"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "0x7F:0x74", hexfmt.Format([]byte{0x7F, 0x74}))
	assert.Equal(t, "0x00", hexfmt.Format([]byte{0x00}))
	assert.Equal(t, "", hexfmt.Format(nil))
}

func TestByte(t *testing.T) {
	assert.Equal(t, "0A", hexfmt.Byte(0x0A))
	assert.Equal(t, "FF", hexfmt.Byte(0xFF))
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want []byte
	}{
		{"7F74", []byte{0x7F, 0x74}},
		{"7f 74", []byte{0x7F, 0x74}},
		{"0x7F:0x74", []byte{0x7F, 0x74}},
		{"7F-84-74", []byte{0x7F, 0x84, 0x74}},
		{"  5a\n02 1234 ", []byte{0x5A, 0x02, 0x12, 0x34}},
		{"0X0a", []byte{0x0A}},
		{"", []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := hexfmt.Parse(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"7", "7F 4", "GG", "0x7Z"} {
		_, err := hexfmt.Parse(in)
		require.ErrorIs(t, err, hexfmt.ErrInvalidHex, "input %q", in)
	}
}

func TestParse_InvertsFormat(t *testing.T) {
	b := []byte{0x00, 0x01, 0x7F, 0x80, 0xFF}
	got, err := hexfmt.Parse(hexfmt.Format(b))
	require.NoError(t, err)
	require.Equal(t, b, got)
}
