package pool

import (
	"sync"
	"sync/atomic"
)

// Counting wraps a Provider and keeps track of every region it hands out.
// Returns of regions that are not outstanding, including double returns,
// are counted as invalid and are not forwarded to the wrapped provider.
type Counting struct {
	next Provider

	rents   atomic.Int64
	returns atomic.Int64
	invalid atomic.Int64

	mu          sync.Mutex
	outstanding map[*Region]struct{}
}

// Stats is a snapshot of a Counting provider.
type Stats struct {
	Rents       int64
	Returns     int64
	Invalid     int64
	Outstanding int
}

// NewCounting wraps next. A nil next is replaced with Heap.
func NewCounting(next Provider) *Counting {
	if next == nil {
		next = Heap{}
	}
	return &Counting{
		next:        next,
		outstanding: make(map[*Region]struct{}),
	}
}

// Rent forwards to the wrapped provider and records the region.
func (c *Counting) Rent(minSize int) *Region {
	r := c.next.Rent(minSize)
	c.rents.Add(1)

	c.mu.Lock()
	c.outstanding[r] = struct{}{}
	c.mu.Unlock()
	return r
}

// Return forwards r to the wrapped provider if it is outstanding.
func (c *Counting) Return(r *Region) {
	if r == nil {
		return
	}

	c.mu.Lock()
	_, ok := c.outstanding[r]
	delete(c.outstanding, r)
	c.mu.Unlock()

	if !ok {
		c.invalid.Add(1)
		return
	}
	c.returns.Add(1)
	c.next.Return(r)
}

// Stats returns the current counters.
func (c *Counting) Stats() Stats {
	c.mu.Lock()
	n := len(c.outstanding)
	c.mu.Unlock()

	return Stats{
		Rents:       c.rents.Load(),
		Returns:     c.returns.Load(),
		Invalid:     c.invalid.Load(),
		Outstanding: n,
	}
}
