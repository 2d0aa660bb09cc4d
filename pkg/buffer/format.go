package buffer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultScratchSize is the scratch size used by InsertValue and AppendValue.
// It fits any Int or Uint in every base but binary, and any float in the
// shortest 'g' form.
const DefaultScratchSize = 36

// maxPrecision bounds the precision part of a format string.
const maxPrecision = 99

// Formattable is a value that can render itself into a bounded byte region.
//
// TryFormat writes the value into dst according to format and returns the
// number of bytes written. It returns ErrFormatBufferTooSmall when the
// result does not fit in len(dst), and ErrInvalidFormat for a format it
// does not understand. The contents of dst are unspecified on error.
type Formattable interface {
	TryFormat(dst []byte, format string) (int, error)
}

// InsertValue formats v and inserts the text at index, using a scratch
// region of DefaultScratchSize bytes.
func (b *Builder) InsertValue(index int, v Formattable, format string) error {
	return b.InsertValueSize(index, v, format, DefaultScratchSize)
}

// InsertValueSize formats v into a scratch region of exactly scratchSize
// bytes rented from the builder's provider, then splices the result in at
// index. If the text does not fit, it returns a *FormatBufferTooSmallError
// and the builder is unchanged; retrying with a larger scratchSize is safe.
func (b *Builder) InsertValueSize(index int, v Formattable, format string, scratchSize int) error {
	if index < 0 || index > b.length {
		return insertIndexError(index, b.length)
	}
	if scratchSize < 0 {
		return fmt.Errorf("%w: negative scratch size %d", ErrInvalidArgument, scratchSize)
	}
	if v == nil {
		return fmt.Errorf("%w: nil value", ErrInvalidArgument)
	}

	r := b.provider.Rent(scratchSize)
	defer b.provider.Return(r)

	scratch := r.B[:scratchSize:scratchSize]
	n, err := v.TryFormat(scratch, format)
	switch {
	case errors.Is(err, ErrFormatBufferTooSmall):
		return &FormatBufferTooSmallError{Size: scratchSize}
	case err != nil:
		return fmt.Errorf("format value: %w", err)
	case n < 0 || n > scratchSize:
		return fmt.Errorf("%w: formatter reported %d bytes for a %d byte buffer", ErrInvalidArgument, n, scratchSize)
	}

	b.openGap(index, n)
	copy(b.buf[index:], scratch[:n])
	return nil
}

// AppendValue formats v and appends the text.
func (b *Builder) AppendValue(v Formattable, format string) error {
	return b.InsertValueSize(b.length, v, format, DefaultScratchSize)
}

// AppendValueSize formats v with the given scratch size and appends the text.
func (b *Builder) AppendValueSize(v Formattable, format string, scratchSize int) error {
	return b.InsertValueSize(b.length, v, format, scratchSize)
}

// parseFormat splits format into a verb from verbs and an optional
// precision. An empty format yields verb 0 and precision -1.
func parseFormat(format, verbs string) (verb byte, prec int, err error) {
	if format == "" {
		return 0, -1, nil
	}
	verb = format[0]
	if strings.IndexByte(verbs, verb) < 0 {
		return 0, 0, fmt.Errorf("%w: unknown verb in %q", ErrInvalidFormat, format)
	}
	if len(format) == 1 {
		return verb, -1, nil
	}
	for i := 1; i < len(format); i++ {
		if format[i] < '0' || format[i] > '9' {
			return 0, 0, fmt.Errorf("%w: bad precision in %q", ErrInvalidFormat, format)
		}
	}
	prec, err = strconv.Atoi(format[1:])
	if err != nil || prec > maxPrecision {
		return 0, 0, fmt.Errorf("%w: bad precision in %q", ErrInvalidFormat, format)
	}
	return verb, prec, nil
}

// Int formats a signed integer.
//
// Format verbs: "" or "d" decimal, "x" and "X" hexadecimal, "b" binary,
// "o" octal. A trailing number sets the minimum digit count, padded with
// zeros: Int(42) with "d5" renders "00042", Int(-255) with "X4" renders "-00FF".
type Int int64

// TryFormat writes v in the base and digit count selected by format.
func (v Int) TryFormat(dst []byte, format string) (int, error) {
	base, upper, prec, err := parseIntFormat(format)
	if err != nil {
		return 0, err
	}
	u := uint64(v)
	if v < 0 {
		u = -u
	}
	return formatInteger(dst, u, v < 0, base, upper, prec)
}

// Uint formats an unsigned integer with the same verbs as Int.
type Uint uint64

// TryFormat writes v in the base and digit count selected by format.
func (v Uint) TryFormat(dst []byte, format string) (int, error) {
	base, upper, prec, err := parseIntFormat(format)
	if err != nil {
		return 0, err
	}
	return formatInteger(dst, uint64(v), false, base, upper, prec)
}

func parseIntFormat(format string) (base int, upper bool, prec int, err error) {
	verb, prec, err := parseFormat(format, "dDxXbBoO")
	if err != nil {
		return 0, false, 0, err
	}
	switch verb {
	case 'x':
		return 16, false, prec, nil
	case 'X':
		return 16, true, prec, nil
	case 'b', 'B':
		return 2, false, prec, nil
	case 'o', 'O':
		return 8, false, prec, nil
	default:
		return 10, false, prec, nil
	}
}

func formatInteger(dst []byte, u uint64, neg bool, base int, upper bool, prec int) (int, error) {
	var tmp [64]byte
	digits := strconv.AppendUint(tmp[:0], u, base)
	if upper {
		for i, c := range digits {
			if 'a' <= c && c <= 'z' {
				digits[i] = c - ('a' - 'A')
			}
		}
	}

	width := max(len(digits), prec)
	n := width
	if neg {
		n++
	}
	if n > len(dst) {
		return 0, ErrFormatBufferTooSmall
	}

	i := 0
	if neg {
		dst[i] = '-'
		i++
	}
	for pad := width - len(digits); pad > 0; pad-- {
		dst[i] = '0'
		i++
	}
	copy(dst[i:], digits)
	return n, nil
}

// Float formats a float64.
//
// Format verbs: "" shortest representation, "f" and "F" fixed point,
// "e" and "E" exponent, "g" and "G" compact. A trailing number sets the
// precision: Float(3.14159) with "f2" renders "3.14".
type Float float64

// TryFormat writes v with strconv.AppendFloat using the verb and precision in format.
func (v Float) TryFormat(dst []byte, format string) (int, error) {
	verb, prec, err := parseFormat(format, "fFeEgG")
	if err != nil {
		return 0, err
	}
	switch verb {
	case 0:
		verb = 'g'
	case 'F':
		verb = 'f'
	}
	return fitAppend(dst, strconv.AppendFloat(dst[:0:len(dst)], float64(v), verb, prec, 64))
}

// Bool formats a boolean as "true" or "false". The only format is "".
type Bool bool

// TryFormat writes "true" or "false".
func (v Bool) TryFormat(dst []byte, format string) (int, error) {
	if format != "" {
		return 0, fmt.Errorf("%w: bool takes no format, got %q", ErrInvalidFormat, format)
	}
	return fitAppend(dst, strconv.AppendBool(dst[:0:len(dst)], bool(v)))
}

// Time formats a time.Time. The format is a Go reference layout and
// defaults to time.RFC3339.
type Time time.Time

// TryFormat writes v using format as a reference layout.
func (v Time) TryFormat(dst []byte, format string) (int, error) {
	if format == "" {
		format = time.RFC3339
	}
	return fitAppend(dst, time.Time(v).AppendFormat(dst[:0:len(dst)], format))
}

// fitAppend checks the result of appending into dst[:0:len(dst)]. A result
// longer than dst means append had to reallocate, so the text did not fit.
func fitAppend(dst, out []byte) (int, error) {
	if len(out) > len(dst) {
		return 0, ErrFormatBufferTooSmall
	}
	return len(out), nil
}
