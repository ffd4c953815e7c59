package jsonl

import (
	"errors"
	"fmt"
)

// DecodeError reports a malformed line. It is scoped to that line; a Reader
// keeps going after returning one.
type DecodeError struct {
	// Line is the 1-based line number within a stream, or 0 for a standalone
	// Decode call.
	Line int

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: decode: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("decode: %v", e.Err)
}

// Unwrap returns the underlying cause.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// SchemaVersionError reports a record whose schema major version this reader
// does not understand. It is never downgraded to a DecodeError.
type SchemaVersionError struct {
	Line      int
	Found     string
	Supported string
}

// Error implements the error interface.
func (e *SchemaVersionError) Error() string {
	msg := fmt.Sprintf("unsupported schema_version %q (reader supports %s)", e.Found, e.Supported)
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return msg
}

// IsDecodeError reports whether err is, or wraps, a *DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// IsSchemaVersionError reports whether err is, or wraps, a *SchemaVersionError.
func IsSchemaVersionError(err error) bool {
	var se *SchemaVersionError
	return errors.As(err, &se)
}

func decodeErrorf(format string, args ...any) error {
	return &DecodeError{Err: fmt.Errorf(format, args...)}
}
