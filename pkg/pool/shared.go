package pool

import (
	"math/bits"
	"sync"
)

const (
	minClassShift = 5  // 32 bytes
	maxClassShift = 20 // 1 MiB
	numClasses    = maxClassShift - minClassShift + 1
)

// MinRegionSize and MaxRegionSize bound the sizes Shared keeps in its pools.
// Requests above MaxRegionSize are served by plain allocation.
const (
	MinRegionSize = 1 << minClassShift
	MaxRegionSize = 1 << maxClassShift
)

// Shared is a Provider backed by one sync.Pool per power-of-two size class.
// Regions are not cleared between uses.
type Shared struct {
	classes [numClasses]sync.Pool
}

// Default is the process-wide shared provider.
var Default = NewShared()

// NewShared creates an empty shared provider.
func NewShared() *Shared {
	return &Shared{}
}

// Rent returns a region from the smallest size class that fits minSize.
func (s *Shared) Rent(minSize int) *Region {
	if minSize < 0 {
		minSize = 0
	}
	idx := classIndex(minSize)
	if idx < 0 {
		return &Region{B: make([]byte, minSize)}
	}
	if r, ok := s.classes[idx].Get().(*Region); ok {
		r.B = r.B[:cap(r.B)]
		return r
	}
	return &Region{B: make([]byte, classSize(idx))}
}

// Return puts r back into its size class. Regions whose capacity is not an
// exact class size, such as oversize allocations, are dropped.
func (s *Shared) Return(r *Region) {
	if r == nil {
		return
	}
	idx := exactClass(cap(r.B))
	if idx < 0 {
		r.B = nil
		return
	}
	r.B = r.B[:cap(r.B)]
	s.classes[idx].Put(r)
}

// classIndex returns the index of the smallest class holding n bytes,
// or -1 if n exceeds MaxRegionSize.
func classIndex(n int) int {
	if n <= MinRegionSize {
		return 0
	}
	if n > MaxRegionSize {
		return -1
	}
	return bits.Len(uint(n-1)) - minClassShift
}

// exactClass returns the class whose size is exactly n, or -1.
func exactClass(n int) int {
	if n < MinRegionSize || n > MaxRegionSize || n&(n-1) != 0 {
		return -1
	}
	return bits.TrailingZeros(uint(n)) - minClassShift
}

func classSize(idx int) int {
	return 1 << (idx + minClassShift)
}
