package bertlv

import "math"

const (
	// DefaultMaxValueSize is the largest value the decoder reads into memory
	// by default: any length that fits in 31 bits.
	DefaultMaxValueSize = math.MaxInt32

	// MaxLengthOctets is the largest number of octets a long-form length
	// field may declare.
	MaxLengthOctets = 126
)

// config holds decoder configuration.
type config struct {
	maxValueSize        int64
	stopAtEndOfContents bool
}

// Option configures a Decoder.
type Option func(*config)

// MaxValueSize sets the largest length the decoder reads into memory.
// Records with longer values are returned as *LargeItem.
// Negative values are treated as 0, so every non-empty value is large.
//
// Default: DefaultMaxValueSize (2^31 - 1)
func MaxValueSize(n int64) Option {
	return func(c *config) {
		c.maxValueSize = max(n, 0)
	}
}

// StopAtEndOfContents makes a record with tag 0x00 and length 0 end
// decoding, as if the stream were exhausted.
//
// Default: false (the record is returned like any other)
func StopAtEndOfContents() Option {
	return func(c *config) {
		c.stopAtEndOfContents = true
	}
}

// encoderConfig holds encoder configuration.
type encoderConfig struct {
	minLengthOctets int
}

// EncoderOption configures an Encoder.
type EncoderOption func(*encoderConfig)

// MinLengthOctets pads long-form length fields with leading zero octets
// to at least n octets. Short-form lengths are unaffected.
// Values outside 0..MaxLengthOctets make Encode fail with ErrInvalidArgument.
//
// Default: 0 (minimal encoding)
func MinLengthOctets(n int) EncoderOption {
	return func(c *encoderConfig) {
		c.minLengthOctets = n
	}
}
