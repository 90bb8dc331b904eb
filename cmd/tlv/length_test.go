package main

import (
	"bytes"
	"testing"

	"github.com/epithet-ssh/tlv/pkg/bertlv"
	"github.com/stretchr/testify/require"
)

func TestLength(t *testing.T) {
	tests := []struct {
		size      string
		minOctets int
		want      string
	}{
		{"0", 0, "00\n"},
		{"127", 0, "7F\n"},
		{"128", 0, "8180\n"},
		{"300", 0, "82012C\n"},
		{"200", 3, "830000C8\n"},
		{"5", 3, "05\n"},
	}

	for _, tt := range tests {
		t.Run(tt.size, func(t *testing.T) {
			var out bytes.Buffer
			cmd := &LengthCLI{Size: tt.size, MinLengthOctets: tt.minOctets}
			require.NoError(t, cmd.Run(testLogger(t), &out))
			require.Equal(t, tt.want, out.String())
		})
	}
}

func TestLength_Errors(t *testing.T) {
	err := (&LengthCLI{Size: "-5"}).Run(testLogger(t), &bytes.Buffer{})
	require.ErrorIs(t, err, bertlv.ErrInvalidArgument)

	err = (&LengthCLI{Size: "ten"}).Run(testLogger(t), &bytes.Buffer{})
	require.Error(t, err)
}
