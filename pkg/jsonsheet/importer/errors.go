package importer

import (
	"errors"
	"fmt"
)

// ErrCancelled indicates the import was cancelled before it completed.
var ErrCancelled = errors.New("import cancelled")

// ErrTooLarge indicates the input exceeded the configured size limit.
var ErrTooLarge = errors.New("file exceeds maximum allowed size")

// ErrDecode matches every *DecodeError.
var ErrDecode = errors.New("decode error")

// ErrInvalidJSON matches every *SyntaxError.
var ErrInvalidJSON = errors.New("invalid JSON")

// DecodeError represents a failure to turn input bytes into text.
type DecodeError struct {
	Offset int64 // bytes consumed when the failure happened
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode file at byte %d: %v", e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrDecode.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// SyntaxError represents text that is not a valid JSON document.
type SyntaxError struct {
	Err error
}

func (e *SyntaxError) Error() string {
	return "Invalid JSON format: " + e.Err.Error()
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrInvalidJSON.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrInvalidJSON
}
