package binio

import (
	"errors"
	"fmt"
)

// Error kinds shared by every format codec.
var (
	ErrTruncatedInput    = errors.New("truncated input")
	ErrInvalidMagic      = errors.New("invalid magic")
	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrReferenceNotFound = errors.New("reference not found")
)

// RangeError reports a read that would run past the end of a buffer.
type RangeError struct {
	What   string // record being read, e.g. "wall 3"
	Offset int
	Size   int
	Len    int // length of the buffer
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: range 0x%x..0x%x exceeds buffer length 0x%x",
		e.What, e.Offset, e.Offset+e.Size, e.Len)
}

// Is reports ErrTruncatedInput so callers can match with errors.Is.
func (e *RangeError) Is(target error) bool {
	return target == ErrTruncatedInput
}
