package sequence_test

import (
	"sync"
	"testing"

	"citrine/internal/sequence"
	"github.com/stretchr/testify/require"
)

func TestNextIsStrictlyIncreasing(t *testing.T) {
	a := sequence.NewAllocator()

	prev := a.Last()
	for i := 0; i < 100; i++ {
		n := a.Next()
		require.Greater(t, n, prev)
		prev = n
	}
}

func TestSeedRaisesFloor(t *testing.T) {
	a := sequence.NewAllocator()

	a.Seed(40)
	a.Seed(25) // lower seed is ignored
	require.Equal(t, uint64(40), a.Last())
	require.Equal(t, uint64(41), a.Next())
}

func TestConcurrentNextNeverDuplicates(t *testing.T) {
	const workers = 8
	const perWorker = 1000

	a := sequence.NewAllocator()
	results := make([][]uint64, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			out := make([]uint64, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				out = append(out, a.Next())
			}
			results[w] = out
		}(w)
	}
	wg.Wait()

	seen := make(map[uint64]bool, workers*perWorker)
	for _, out := range results {
		for _, n := range out {
			require.False(t, seen[n], "sequence %d issued twice", n)
			seen[n] = true
		}
	}
	require.Len(t, seen, workers*perWorker)
	require.Equal(t, uint64(workers*perWorker), a.Last())
}
