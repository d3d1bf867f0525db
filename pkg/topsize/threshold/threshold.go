// Package threshold provides the shared pruning floor of a scan.
//
// A Threshold is read by every walker and written by the aggregator alone.
// Reads are relaxed: a walker may act on a value that the aggregator has
// already raised, and forward a file that is later rejected. The value only
// ever moves up, so a stale read is always a lower, more permissive floor.
package threshold

import "sync/atomic"

// Threshold is a monotonically rising size floor. The zero value is a floor
// of zero. A Threshold must not be copied after first use; pass the pointer.
type Threshold struct {
	v atomic.Uint64
}

// New returns a Threshold starting at floor.
func New(floor uint64) *Threshold {
	t := &Threshold{}
	t.v.Store(floor)
	return t
}

// Load returns the current floor.
func (t *Threshold) Load() uint64 {
	return t.v.Load()
}

// Raise sets the floor to size if size is greater than the current floor.
// It reports whether the floor changed.
func (t *Threshold) Raise(size uint64) bool {
	for {
		cur := t.v.Load()
		if size <= cur {
			return false
		}
		if t.v.CompareAndSwap(cur, size) {
			return true
		}
	}
}
