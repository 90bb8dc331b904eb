package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/epithet-ssh/tlv/pkg/config"
	"github.com/epithet-ssh/tlv/pkg/source"
	"github.com/epithet-ssh/tlv/pkg/tlsconfig"
	"github.com/lmittmann/tint"
)

type CLI struct {
	Verbose      int             `help:"Log verbosity, repeat for more (-v info, -vv debug)" short:"v" type:"counter"`
	Config       kong.ConfigFlag `help:"Load flag defaults from a YAML or JSON file"`
	Insecure     bool            `help:"Allow http:// inputs and skip TLS certificate verification"`
	TLSCACert    string          `help:"PEM file of CA certificates trusted for https:// inputs" name:"tls-ca-cert"`
	MaxInputSize int64           `help:"Largest https:// input fetched, in bytes" default:"1073741824"`
	MaxRedirects int             `help:"Redirects followed when fetching https:// inputs (-1 for none)" default:"5"`

	Decode DecodeCLI `cmd:"" help:"Decode BER-TLV records"`
	Encode EncodeCLI `cmd:"" help:"Encode BER-TLV records"`
	Length LengthCLI `cmd:"" help:"Encode a length field"`
	Serve  ServeCLI  `cmd:"" help:"Run the codec HTTP service"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("tlv"),
		kong.Description("Encode and decode BER-TLV records"),
		kong.UsageOnError(),
		kong.Configuration(config.KongLoader),
		kong.BindTo(os.Stdout, (*io.Writer)(nil)),
	)

	logger := newLogger(os.Stderr, cli.Verbose)
	opener := &source.Opener{
		Logger: logger,
		TLS: tlsconfig.Config{
			Insecure:     cli.Insecure,
			CACertFile:   cli.TLSCACert,
			MaxInputSize: cli.MaxInputSize,
			MaxRedirects: cli.MaxRedirects,
		},
	}

	ctx.FatalIfErrorf(ctx.Run(logger, opener))
}

func newLogger(w io.Writer, verbosity int) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case verbosity == 1:
		level = slog.LevelInfo
	case verbosity >= 2:
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
	}))
}
