package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/epithet-ssh/tlv/pkg/bertlv"
	"github.com/epithet-ssh/tlv/pkg/compacttlv"
	"github.com/epithet-ssh/tlv/pkg/config"
	"github.com/epithet-ssh/tlv/pkg/hexfmt"
)

type EncodeCLI struct {
	Records         []string `arg:"" help:"Records as TAG=VALUE hex pairs, e.g. 5A=1234 or 9F02="`
	Output          string   `help:"Output file, or - for stdout" short:"o" default:"-"`
	Hex             bool     `help:"Write hex text rather than raw octets" short:"x"`
	MinLengthOctets int      `help:"Pad long-form length fields to at least this many octets" default:"0"`
	Compact         bool     `help:"Write ISO 7816-4 compact TLV; tags and lengths must be within 0..15"`
}

func (c *EncodeCLI) Run(logger *slog.Logger, out io.Writer) error {
	logger.Debug("encode command called", "encode", c)

	codec := config.Codec{MinLengthOctets: c.MinLengthOctets}
	if err := codec.Validate(); err != nil {
		return err
	}

	if c.Output != "" && c.Output != "-" {
		f, err := os.Create(c.Output)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	w := bufio.NewWriter(out)
	var dst io.Writer = w
	if c.Hex {
		dst = &hexWriter{w: w}
	}

	encode := bertlv.NewEncoder(dst, codec.EncoderOptions()...).Encode
	if c.Compact {
		encode = compactEncoder(dst)
	}
	for _, arg := range c.Records {
		tag, value, err := parseRecordArg(arg, c.Compact)
		if err != nil {
			return err
		}
		if err := encode(tag, value); err != nil {
			return fmt.Errorf("record %q: %w", arg, err)
		}
	}

	if c.Hex {
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return w.Flush()
}

// compactEncoder adapts a compact TLV encoder to the BER encoder's shape.
// Tags are a single octet.
func compactEncoder(w io.Writer) func(bertlv.Tag, []byte) error {
	enc := compacttlv.NewEncoder(w)
	return func(tag bertlv.Tag, value []byte) error {
		return enc.EncodeRaw(tag[0], len(value), value)
	}
}

// parseRecordArg splits a TAG=VALUE argument into a well-formed tag and
// its value. An empty VALUE is a zero-length record.
func parseRecordArg(arg string, compact bool) (bertlv.Tag, []byte, error) {
	t, v, ok := strings.Cut(arg, "=")
	if !ok {
		return nil, nil, fmt.Errorf("record %q must be TAG=VALUE", arg)
	}

	tag, err := hexfmt.Parse(t)
	if err != nil {
		return nil, nil, fmt.Errorf("record %q: tag: %w", arg, err)
	}
	if compact {
		if len(tag) != 1 {
			return nil, nil, fmt.Errorf("record %q: compact tags are one octet", arg)
		}
	} else if !bertlv.Tag(tag).Valid() {
		return nil, nil, fmt.Errorf("record %q: %X is not a well-formed tag", arg, tag)
	}

	value, err := hexfmt.Parse(v)
	if err != nil {
		return nil, nil, fmt.Errorf("record %q: value: %w", arg, err)
	}
	return tag, value, nil
}

// hexWriter writes upper-case hex text for the bytes written to it.
type hexWriter struct {
	w io.Writer
}

func (h *hexWriter) Write(p []byte) (int, error) {
	if _, err := fmt.Fprintf(h.w, "%X", p); err != nil {
		return 0, err
	}
	return len(p), nil
}
