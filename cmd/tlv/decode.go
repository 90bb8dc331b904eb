package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/cbroglie/mustache"
	"github.com/epithet-ssh/tlv/pkg/bertlv"
	"github.com/epithet-ssh/tlv/pkg/compacttlv"
	"github.com/epithet-ssh/tlv/pkg/config"
	"github.com/epithet-ssh/tlv/pkg/hexfmt"
	"github.com/epithet-ssh/tlv/pkg/source"
)

type DecodeCLI struct {
	config.Codec `embed:""`

	Input    string `arg:"" optional:"" default:"-" help:"File, s3://bucket/key, https:// URL, or - for stdin"`
	Hex      bool   `help:"Input is hex text rather than raw octets" short:"x"`
	Compact  bool   `help:"Input is ISO 7816-4 compact TLV (one-octet headers) rather than BER-TLV"`
	Template string `help:"Mustache template rendered for each record, e.g. '{{tag}} {{value}}'" short:"t"`
}

func (c *DecodeCLI) Run(logger *slog.Logger, out io.Writer, opener *source.Opener) error {
	logger.Debug("decode command called", "decode", c)

	if err := c.Codec.Validate(); err != nil {
		return err
	}

	var tmpl *mustache.Template
	if c.Template != "" {
		var err error
		tmpl, err = mustache.ParseString(c.Template)
		if err != nil {
			return fmt.Errorf("invalid template: %w", err)
		}
	}

	rc, err := opener.Open(context.Background(), c.Input)
	if err != nil {
		return err
	}
	defer rc.Close()

	var in io.Reader = bufio.NewReader(rc)
	if c.Hex {
		text, err := io.ReadAll(in)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		raw, err := hexfmt.Parse(string(text))
		if err != nil {
			return err
		}
		in = bytes.NewReader(raw)
	}

	w := bufio.NewWriter(out)
	defer w.Flush()

	var count int
	if c.Compact {
		count, err = c.decodeCompact(in, w, tmpl)
	} else {
		count, err = c.decodeBER(logger, in, w, tmpl)
	}
	if err != nil {
		return err
	}

	logger.Info("decoded records", "count", count)
	return w.Flush()
}

func (c *DecodeCLI) decodeBER(logger *slog.Logger, in io.Reader, w io.Writer, tmpl *mustache.Template) (int, error) {
	dec := bertlv.NewDecoder(in, c.Codec.DecoderOptions()...)
	index := 0
	for {
		rec, err := dec.Next()
		if err == io.EOF {
			return index, nil
		}
		if err != nil {
			return index, err
		}

		view := recordView{Index: index, Offset: dec.RecordOffset()}
		switch rec := rec.(type) {
		case *bertlv.Item:
			view.Tag = rec.Tag
			view.Length = rec.Length().String()
			view.Value = rec.Value
		case *bertlv.LargeItem:
			view.Tag = rec.Tag
			view.Length = rec.Length.String()
			view.Streamed = true
			logger.Info("value exceeds max value size, not shown", "tag", rec.Tag.String(), "length", view.Length)
		}

		if err := writeRecord(w, tmpl, view); err != nil {
			return index, err
		}
		index++
	}
}

// decodeCompact prints compact TLV records. The decoder skips
// zero-length records.
func (c *DecodeCLI) decodeCompact(in io.Reader, w io.Writer, tmpl *mustache.Template) (int, error) {
	dec := compacttlv.NewDecoder(in)
	index := 0
	for item, err := range dec.All() {
		if err != nil {
			return index, err
		}
		view := recordView{
			Index:  index,
			Offset: dec.RecordOffset(),
			Tag:    bertlv.Tag{item.Tag},
			Length: strconv.Itoa(len(item.Value)),
			Value:  item.Value,
		}
		if err := writeRecord(w, tmpl, view); err != nil {
			return index, err
		}
		index++
	}
	return index, nil
}

func writeRecord(w io.Writer, tmpl *mustache.Template, v recordView) error {
	line, err := render(tmpl, v)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, line)
	return err
}
