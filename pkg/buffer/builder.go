package buffer

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/jellexet/valuebuf/pkg/pool"
)

// noCopy may be embedded into structs which must not be copied after first
// use. go vet's copylocks check reports copies.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Builder is a growable byte buffer that behaves like a mutable string.
//
// Storage is either supplied by the caller (FromStorage) or rented from a
// pool.Provider. A Builder owns at most one rented region at a time and
// gives it back on growth and on Dispose. The zero value is not usable;
// create builders with New, NewSize, NewString or FromStorage.
//
// A Builder must not be copied and is not safe for concurrent use.
type Builder struct {
	noCopy noCopy

	buf      []byte       // backing storage; len(buf) is the capacity
	length   int          // bytes of valid content in buf
	region   *pool.Region // rented region backing buf, nil for caller storage
	provider pool.Provider
}

// New returns an empty builder with DefaultCapacity bytes of storage.
func New(opts ...Option) *Builder {
	b := &Builder{}
	b.apply(opts)
	b.grow(DefaultCapacity)
	return b
}

// NewSize returns an empty builder with room for at least capacity bytes.
// A zero capacity rents nothing until the first write.
func NewSize(capacity int, opts ...Option) (*Builder, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("%w: negative capacity %d", ErrInvalidArgument, capacity)
	}
	b := &Builder{}
	b.apply(opts)
	if capacity > 0 {
		b.grow(capacity)
	}
	return b, nil
}

// NewString returns a builder holding a copy of text.
func NewString(text string, opts ...Option) *Builder {
	b := &Builder{}
	b.apply(opts)
	b.Append(text)
	return b
}

// FromStorage returns an empty builder writing into storage[:cap(storage)].
// The builder never returns storage to a provider; once the content
// outgrows it, the builder switches to rented storage.
func FromStorage(storage []byte, opts ...Option) *Builder {
	b := &Builder{}
	b.apply(opts)
	b.buf = storage[:cap(storage)]
	return b
}

// Len returns the number of bytes of content.
func (b *Builder) Len() int {
	return b.length
}

// Cap returns the size of the backing storage.
func (b *Builder) Cap() int {
	return len(b.buf)
}

// At returns a pointer to the byte at index i.
// The pointer is valid until the next mutating call.
func (b *Builder) At(i int) (*byte, error) {
	if i < 0 || i >= b.length {
		return nil, indexError(i, b.length)
	}
	return &b.buf[i], nil
}

// Bytes returns a view of the content without copying.
//
// The view aliases the builder's storage: it is only valid until the next
// mutating call or Dispose, and it must not be written to. Appending to the
// view never writes into the builder's storage.
func (b *Builder) Bytes() []byte {
	return b.buf[:b.length:b.length]
}

// String returns a copy of the content.
func (b *Builder) String() string {
	return string(b.buf[:b.length])
}

// Substring returns a copy of n bytes starting at start.
func (b *Builder) Substring(start, n int) (string, error) {
	if start < 0 || n < 0 || start > b.length-n {
		return "", rangeError(start, n, b.length)
	}
	return string(b.buf[start : start+n]), nil
}

// TryCopyTo copies the content into dst and reports whether it fit.
// dst is left untouched when it is too short.
func (b *Builder) TryCopyTo(dst []byte) bool {
	if len(dst) < b.length {
		return false
	}
	copy(dst, b.buf[:b.length])
	return true
}

// Equals reports whether the content is byte-for-byte equal to other.
func (b *Builder) Equals(other []byte) bool {
	return bytes.Equal(b.buf[:b.length], other)
}

// EqualString reports whether the content is byte-for-byte equal to s.
func (b *Builder) EqualString(s string) bool {
	return string(b.buf[:b.length]) == s
}

// Clear empties the builder. Storage is kept and not zeroed.
func (b *Builder) Clear() {
	b.length = 0
}

// EnsureCapacity makes room for n bytes of content.
//
// Growth is decided against Len, not Cap: any n larger than the current
// content moves the builder to storage of at least max(n, 2*Cap()) bytes,
// after which appends totalling n-Len() bytes never reallocate.
func (b *Builder) EnsureCapacity(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: negative capacity %d", ErrInvalidArgument, n)
	}
	if n <= b.length {
		return nil
	}
	b.grow(n)
	return nil
}

// reserve guarantees room for n more bytes after the content.
func (b *Builder) reserve(n int) {
	if required := b.length + n; required > len(b.buf) {
		b.grow(required)
	}
}

// Append appends s.
func (b *Builder) Append(s string) {
	b.reserve(len(s))
	b.length += copy(b.buf[b.length:], s)
}

// AppendBytes appends p.
func (b *Builder) AppendBytes(p []byte) {
	b.reserve(len(p))
	b.length += copy(b.buf[b.length:], p)
}

// AppendByte appends c.
func (b *Builder) AppendByte(c byte) {
	b.reserve(1)
	b.buf[b.length] = c
	b.length++
}

// AppendRune appends the UTF-8 encoding of r.
func (b *Builder) AppendRune(r rune) {
	n := utf8.RuneLen(r)
	if n < 0 {
		n = utf8.RuneLen(utf8.RuneError)
	}
	b.reserve(n)
	b.length += utf8.EncodeRune(b.buf[b.length:], r)
}

// AppendBool appends "true" or "false".
func (b *Builder) AppendBool(v bool) {
	b.Append(strconv.FormatBool(v))
}

// Write appends p. It implements io.Writer and never fails.
func (b *Builder) Write(p []byte) (int, error) {
	b.AppendBytes(p)
	return len(p), nil
}

// WriteString appends s. It implements io.StringWriter and never fails.
func (b *Builder) WriteString(s string) (int, error) {
	b.Append(s)
	return len(s), nil
}

// WriteByte appends c. It implements io.ByteWriter and never fails.
func (b *Builder) WriteByte(c byte) error {
	b.AppendByte(c)
	return nil
}

// WriteRune appends the UTF-8 encoding of r.
func (b *Builder) WriteRune(r rune) (int, error) {
	before := b.length
	b.AppendRune(r)
	return b.length - before, nil
}

// minRead is the smallest free space ReadFrom hands to Read.
const minRead = 512

// ReadFrom appends everything read from r until EOF.
func (b *Builder) ReadFrom(r io.Reader) (int64, error) {
	var total int64
	for {
		b.reserve(minRead)
		n, err := r.Read(b.buf[b.length:])
		if n < 0 {
			return total, fmt.Errorf("%w: reader returned negative count %d", ErrInvalidArgument, n)
		}
		b.length += n
		total += int64(n)
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// WriteTo writes the content to w.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.buf[:b.length])
	if err == nil && n != b.length {
		err = io.ErrShortWrite
	}
	return int64(n), err
}

// openGap shifts buf[index:length] right by n bytes and extends the content
// over the gap. index must already be validated.
func (b *Builder) openGap(index, n int) {
	required := b.length + n
	if required > len(b.buf) {
		b.grow(insertTarget(required))
	}
	// copy has memmove semantics, so the overlapping shift is safe
	copy(b.buf[index+n:required], b.buf[index:b.length])
	b.length = required
}

// Insert inserts s at index, shifting the content after index to the right.
func (b *Builder) Insert(index int, s string) error {
	if index < 0 || index > b.length {
		return insertIndexError(index, b.length)
	}
	b.openGap(index, len(s))
	copy(b.buf[index:], s)
	return nil
}

// InsertBytes inserts p at index.
func (b *Builder) InsertBytes(index int, p []byte) error {
	if index < 0 || index > b.length {
		return insertIndexError(index, b.length)
	}
	b.openGap(index, len(p))
	copy(b.buf[index:], p)
	return nil
}

// InsertBool inserts "true" or "false" at index.
func (b *Builder) InsertBool(index int, v bool) error {
	return b.Insert(index, strconv.FormatBool(v))
}

// Remove deletes n bytes starting at start and shifts the rest left.
// Capacity is never reduced.
func (b *Builder) Remove(start, n int) error {
	if n == 0 {
		return nil
	}
	if n < 0 || start < 0 {
		return fmt.Errorf("%w: remove(%d, %d)", ErrInvalidArgument, start, n)
	}
	if n > b.length-start {
		return rangeError(start, n, b.length)
	}
	copy(b.buf[start:], b.buf[start+n:b.length])
	b.length -= n
	return nil
}

// Dispose releases the builder's storage. A rented region goes back to the
// provider exactly once; caller storage is dropped without being returned.
// Dispose is idempotent, and the builder is left empty and reusable.
//
//	b := buffer.New()
//	defer b.Dispose()
func (b *Builder) Dispose() {
	if b.region != nil {
		r := b.region
		b.region = nil
		b.provider.Return(r)
	}
	b.buf = nil
	b.length = 0
}
