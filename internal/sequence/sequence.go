// Package sequence hands out the strictly increasing numbers that order
// every record in the store.
package sequence

import "sync/atomic"

// Allocator issues sequence numbers. The zero value starts issuing from 1;
// Seed raises the floor so numbers issued after recovery stay above
// everything already on disk.
type Allocator struct {
	last atomic.Uint64
}

// NewAllocator returns an allocator that has issued nothing yet.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Seed raises the allocator to at least seq. Lower seeds are ignored, so
// feeding it the maximum of each scanned file in any order is safe.
func (a *Allocator) Seed(seq uint64) {
	for {
		cur := a.last.Load()
		if cur >= seq || a.last.CompareAndSwap(cur, seq) {
			return
		}
	}
}

// Next returns the next unissued sequence number. Safe for concurrent use,
// though writes are normally serialized above this.
func (a *Allocator) Next() uint64 {
	return a.last.Add(1)
}

// Last returns the most recently issued (or seeded) sequence number.
func (a *Allocator) Last() uint64 {
	return a.last.Load()
}
