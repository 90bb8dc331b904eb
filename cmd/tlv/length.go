package main

import (
	"fmt"
	"io"
	"log/slog"
	"math/big"

	"github.com/epithet-ssh/tlv/pkg/bertlv"
)

type LengthCLI struct {
	Size            string `arg:"" help:"Value length in decimal; any size up to 126 octets is accepted"`
	MinLengthOctets int    `help:"Pad long-form length fields to at least this many octets" default:"0"`
}

func (c *LengthCLI) Run(logger *slog.Logger, out io.Writer) error {
	size, ok := new(big.Int).SetString(c.Size, 10)
	if !ok {
		return fmt.Errorf("size must be a decimal integer, got %q", c.Size)
	}

	field, err := bertlv.EncodeLengthPadded(size, c.MinLengthOctets)
	if err != nil {
		return err
	}
	logger.Debug("encoded length", "size", size.String(), "octets", len(field))

	_, err = fmt.Fprintf(out, "%X\n", field)
	return err
}
