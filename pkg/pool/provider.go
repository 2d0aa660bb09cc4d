// Package pool provides backing storage for text buffers.
//
// A Provider hands out Regions of at least a requested size and takes them
// back when the borrower is done. Borrowers hold the *Region they were given
// and return that same pointer, so a region can travel through a sync.Pool
// without being re-wrapped on every round trip.
//
// Providers:
//   - Heap allocates on every Rent and drops regions on Return
//   - Shared reuses regions through power-of-two size classes
//   - Counting wraps a provider and tracks outstanding regions
//   - Logged wraps a provider and logs every rent and return
package pool

// Region is a block of storage rented from a Provider.
// len(B) is at least the size passed to Rent.
type Region struct {
	B []byte
}

// Provider supplies and reclaims storage regions.
//
// Returning a region twice, or returning a region that did not come from
// Rent on the same provider, is undefined. Implementations in this package
// are safe for concurrent use.
type Provider interface {
	// Rent returns a region whose B has length >= minSize.
	Rent(minSize int) *Region

	// Return gives a region back. r must not be used afterwards.
	// A nil r is ignored.
	Return(r *Region)
}
