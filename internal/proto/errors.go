package proto

import (
	"errors"
	"fmt"
)

var (
	// ErrShortBuffer reports a payload that ended before a declared field.
	ErrShortBuffer = errors.New("short buffer")
	// ErrVersion reports an unsupported format version byte.
	ErrVersion = errors.New("unsupported format version")
	// ErrUnknownKind reports an unrecognized payload kind byte.
	ErrUnknownKind = errors.New("unknown payload kind")
	// ErrTrailingBytes reports leftover bytes after a complete decode.
	ErrTrailingBytes = errors.New("trailing bytes")
)

// DecodeError wraps a decode failure with the payload element that caused
// it. Wire data is untrusted, so every malformed buffer surfaces as one of
// these instead of a panic.
type DecodeError struct {
	What string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.What, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func decodeErr(what string, err error) *DecodeError {
	return &DecodeError{What: what, Err: err}
}
