package keydir

import "citrine/internal/common"

// KeyDir is the in-memory index: it maps every live key to the on-disk
// location of its newest record. Keys whose newest record is a tombstone
// are absent.
type KeyDir interface {
	// Get returns the location of the newest record for key.
	Get(key []byte) (common.Location, bool)
	// Put installs loc for key and returns the location it displaced, if any.
	Put(key []byte, loc common.Location) (common.Location, bool)
	// Remove drops key from the index, returning the displaced location.
	Remove(key []byte) (common.Location, bool)
	// Repoint swaps the entry for key from one location to another. It
	// returns false without changing anything when the current entry is
	// not exactly from.
	Repoint(key []byte, from, to common.Location) bool
	// Len returns the number of live keys.
	Len() int
	// Keys returns all live keys in sorted order.
	Keys() [][]byte
	// Snapshot returns a stable copy of the whole index.
	Snapshot() map[string]common.Location
}
