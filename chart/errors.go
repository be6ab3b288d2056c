package chart

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when a mutator receives malformed input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrIndexOutOfRange is returned when a read or navigation goes past
	// valid bounds.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// RangeError describes an index that fell outside the half-open interval
// [Min,Max). It unwraps to ErrIndexOutOfRange.
type RangeError struct {
	Op       string
	Index    int
	Min, Max int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("chart: %s: index %d out of range [%d,%d)", e.Op, e.Index, e.Min, e.Max)
}

func (e *RangeError) Unwrap() error {
	return ErrIndexOutOfRange
}

func checkRange(op string, index, min, max int) error {
	if index < min || index >= max {
		return &RangeError{Op: op, Index: index, Min: min, Max: max}
	}
	return nil
}

func invalidArgument(op, format string, args ...any) error {
	return fmt.Errorf("chart: %s: %w: %s", op, ErrInvalidArgument, fmt.Sprintf(format, args...))
}
