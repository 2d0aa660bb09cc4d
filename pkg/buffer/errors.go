package buffer

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for negative indices, lengths,
	// capacities and scratch sizes.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOutOfRange is returned when an index or range exceeds the content.
	ErrOutOfRange = errors.New("out of range")

	// ErrFormatBufferTooSmall is returned when a formatted value does not fit
	// in the scratch region. Callers may retry with a larger scratch size.
	ErrFormatBufferTooSmall = errors.New("format buffer too small")

	// ErrInvalidFormat is returned by formattables for malformed format strings.
	ErrInvalidFormat = errors.New("invalid format")
)

// FormatBufferTooSmallError reports the scratch size a value failed to fit in.
type FormatBufferTooSmallError struct {
	Size int
}

func (e *FormatBufferTooSmallError) Error() string {
	return fmt.Sprintf("format buffer too small: value does not fit in %d bytes", e.Size)
}

// Is makes errors.Is(err, ErrFormatBufferTooSmall) succeed.
func (e *FormatBufferTooSmallError) Is(target error) bool {
	return target == ErrFormatBufferTooSmall
}

func indexError(i, n int) error {
	return fmt.Errorf("%w: index %d out of bounds [0, %d)", ErrOutOfRange, i, n)
}

func insertIndexError(i, n int) error {
	return fmt.Errorf("%w: index %d out of bounds [0, %d]", ErrOutOfRange, i, n)
}

func rangeError(start, length, n int) error {
	return fmt.Errorf("%w: invalid range [%d, %d) for length %d", ErrOutOfRange, start, start+length, n)
}
