package bertlv

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrMalformed indicates the stream ended where more bytes were required.
	ErrMalformed = errors.New("bertlv: malformed stream")

	// ErrInvalidFormat indicates a long-form length field declaring more
	// than MaxLengthOctets octets.
	ErrInvalidFormat = errors.New("bertlv: invalid format")

	// ErrInvalidArgument indicates an encoder input that cannot be represented.
	ErrInvalidArgument = errors.New("bertlv: invalid argument")

	// ErrValueDetached is returned by a ValueReader used after the decoder moved on.
	ErrValueDetached = errors.New("bertlv: value reader used after decoder advanced")
)

// FormatError provides detailed information about a decoding error.
type FormatError struct {
	Offset int64  // Byte offset where the error was detected
	Reason string // Human-readable explanation
	Err    error  // ErrMalformed or ErrInvalidFormat
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("bertlv: %s at offset %d: %s", kindOf(e.Err), e.Offset, e.Reason)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func kindOf(err error) string {
	switch {
	case errors.Is(err, ErrMalformed):
		return "malformed stream"
	case errors.Is(err, ErrInvalidFormat):
		return "invalid format"
	default:
		return "error"
	}
}

func malformed(offset int64, format string, args ...any) error {
	return &FormatError{Offset: offset, Reason: fmt.Sprintf(format, args...), Err: ErrMalformed}
}

func invalidFormat(offset int64, err error, format string, args ...any) error {
	return &FormatError{Offset: offset, Reason: fmt.Sprintf(format, args...), Err: err}
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
