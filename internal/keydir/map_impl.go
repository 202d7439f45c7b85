package keydir

import (
	"sort"
	"sync"

	"citrine/internal/common"
)

// MapKeyDirImpl is the baseline Go map-backed implementation.
type MapKeyDirImpl struct {
	mu    sync.RWMutex
	items map[string]common.Location
}

var _ KeyDir = (*MapKeyDirImpl)(nil)

// NewMapKeyDir returns the default map-backed index implementation.
func NewMapKeyDir() KeyDir {
	return &MapKeyDirImpl{
		items: make(map[string]common.Location),
	}
}

// Get returns the location of the newest record for key.
func (d *MapKeyDirImpl) Get(key []byte) (common.Location, bool) {
	d.mu.RLock()
	loc, ok := d.items[string(key)]
	d.mu.RUnlock()
	return loc, ok
}

// Put installs loc for key. The displaced location lets the caller account
// for bytes that just became garbage.
func (d *MapKeyDirImpl) Put(key []byte, loc common.Location) (common.Location, bool) {
	d.mu.Lock()
	prev, had := d.items[string(key)]
	d.items[string(key)] = loc
	d.mu.Unlock()
	return prev, had
}

// Remove drops key from the index, returning the displaced location.
func (d *MapKeyDirImpl) Remove(key []byte) (common.Location, bool) {
	d.mu.Lock()
	prev, had := d.items[string(key)]
	delete(d.items, string(key))
	d.mu.Unlock()
	return prev, had
}

// Repoint moves key from one location to another. Entries mutated since the
// caller observed from are left alone.
func (d *MapKeyDirImpl) Repoint(key []byte, from, to common.Location) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	cur, ok := d.items[string(key)]
	if !ok || cur != from {
		return false
	}
	d.items[string(key)] = to
	return true
}

// Len returns the number of live keys.
func (d *MapKeyDirImpl) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.items)
}

// Keys returns all live keys in sorted order.
func (d *MapKeyDirImpl) Keys() [][]byte {
	d.mu.RLock()
	keys := make([]string, 0, len(d.items))
	for k := range d.items {
		keys = append(keys, k)
	}
	d.mu.RUnlock()

	sort.Strings(keys)
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = []byte(k)
	}
	return out
}

// Snapshot returns a stable copy of the whole index.
func (d *MapKeyDirImpl) Snapshot() map[string]common.Location {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[string]common.Location, len(d.items))
	for k, loc := range d.items {
		out[k] = loc
	}
	return out
}
