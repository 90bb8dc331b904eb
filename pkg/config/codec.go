package config

import (
	"fmt"

	"github.com/epithet-ssh/tlv/pkg/bertlv"
)

// Codec holds the decoder and encoder settings shared by the CLI and the
// HTTP service. The kong tags let it be embedded in command structs; the
// json tags name the keys used in configuration files.
type Codec struct {
	MaxValueSize        *int64 `json:"max_value_size,omitempty" help:"Largest value read into memory; longer records are streamed (unset uses 2^31-1, 0 streams every non-empty value)"`
	StopAtEndOfContents bool   `json:"stop_at_end_of_contents,omitempty" help:"Stop decoding at a record with tag 00 and length 0"`
	MinLengthOctets     int    `json:"min_length_octets,omitempty" help:"Pad long-form length fields to at least this many octets" default:"0"`
}

// Validate checks that the settings can be turned into codec options.
func (c Codec) Validate() error {
	if c.MaxValueSize != nil && *c.MaxValueSize < 0 {
		return fmt.Errorf("max_value_size must not be negative, got %d", *c.MaxValueSize)
	}
	if c.MinLengthOctets < 0 || c.MinLengthOctets > bertlv.MaxLengthOctets {
		return fmt.Errorf("min_length_octets must be within 0..%d, got %d", bertlv.MaxLengthOctets, c.MinLengthOctets)
	}
	return nil
}

// DecoderOptions returns the bertlv decoder options for c.
// A nil MaxValueSize keeps the decoder default.
func (c Codec) DecoderOptions() []bertlv.Option {
	var opts []bertlv.Option
	if c.MaxValueSize != nil {
		opts = append(opts, bertlv.MaxValueSize(*c.MaxValueSize))
	}
	if c.StopAtEndOfContents {
		opts = append(opts, bertlv.StopAtEndOfContents())
	}
	return opts
}

// EncoderOptions returns the bertlv encoder options for c.
func (c Codec) EncoderOptions() []bertlv.EncoderOption {
	if c.MinLengthOctets == 0 {
		return nil
	}
	return []bertlv.EncoderOption{bertlv.MinLengthOctets(c.MinLengthOctets)}
}
