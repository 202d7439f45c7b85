package engine

import (
	"fmt"
	"sort"
	"sync"

	"citrine/internal/common"
	"citrine/internal/logfile"
)

// generationSet tracks every on-disk generation, its valid byte count, and
// a lazily opened read handle for each. Handles live until the generation
// is retired or the set is closed.
type generationSet struct {
	mu      sync.Mutex
	dir     string
	readers map[common.GenerationID]*logfile.Reader
	sizes   map[common.GenerationID]int64
}

func newGenerationSet(dir string) *generationSet {
	return &generationSet{
		dir:     dir,
		readers: make(map[common.GenerationID]*logfile.Reader),
		sizes:   make(map[common.GenerationID]int64),
	}
}

// add registers gen with the given valid byte count, updating the count if
// gen is already known.
func (g *generationSet) add(gen common.GenerationID, size int64) {
	g.mu.Lock()
	g.sizes[gen] = size
	g.mu.Unlock()
}

// reader returns the read handle for gen, opening it on first use.
func (g *generationSet) reader(gen common.GenerationID) (*logfile.Reader, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if r, ok := g.readers[gen]; ok {
		return r, nil
	}
	if _, ok := g.sizes[gen]; !ok {
		return nil, fmt.Errorf("engine: unknown generation %d", gen)
	}
	r, err := logfile.OpenReader(common.LogPath(g.dir, gen), gen)
	if err != nil {
		return nil, err
	}
	g.readers[gen] = r
	return r, nil
}

// remove closes gen's handle and forgets it. The caller unlinks the file.
func (g *generationSet) remove(gen common.GenerationID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	var err error
	if r, ok := g.readers[gen]; ok {
		err = r.Close()
		delete(g.readers, gen)
	}
	delete(g.sizes, gen)
	return err
}

// ids returns all registered generations in ascending order.
func (g *generationSet) ids() []common.GenerationID {
	g.mu.Lock()
	out := make([]common.GenerationID, 0, len(g.sizes))
	for gen := range g.sizes {
		out = append(out, gen)
	}
	g.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// size returns the valid byte count of gen, zero if unknown.
func (g *generationSet) size(gen common.GenerationID) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sizes[gen]
}

// totalSize returns the valid byte count across all generations.
func (g *generationSet) totalSize() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	var total int64
	for _, n := range g.sizes {
		total += n
	}
	return total
}

// count returns the number of registered generations.
func (g *generationSet) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sizes)
}

// closeAll closes every open read handle, keeping registrations intact.
func (g *generationSet) closeAll() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	var firstErr error
	for gen, r := range g.readers {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(g.readers, gen)
	}
	return firstErr
}
