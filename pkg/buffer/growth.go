package buffer

import "math"

// DefaultCapacity is the starting capacity of a Builder created by New.
const DefaultCapacity = 32

// nextCapacity returns the capacity to grow to when required bytes do not
// fit in current. Capacity at least doubles, so a run of appends costs
// amortized O(1) copies per byte.
func nextCapacity(current, required int) int {
	if current > math.MaxInt/2 {
		return max(required, current)
	}
	return max(required, current*2)
}

// insertTarget is the size requested when an insertion overflows. It adds a
// further doubling so repeated small insertions rarely reallocate.
func insertTarget(required int) int {
	if required > math.MaxInt/2 {
		return required
	}
	return required * 2
}

// grow moves the content into a region of at least nextCapacity(Cap(), required)
// bytes. The previously rented region, if any, goes back to the provider
// right after the copy, so exactly one region is owned at any time.
func (b *Builder) grow(required int) {
	size := nextCapacity(len(b.buf), required)

	r := b.provider.Rent(size)
	buf := r.B[:cap(r.B)]
	copy(buf, b.buf[:b.length])

	old := b.region
	b.buf = buf
	b.region = r
	if old != nil {
		b.provider.Return(old)
	}
}
