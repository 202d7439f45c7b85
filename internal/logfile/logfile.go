// Package logfile reads and writes the append-only generation files that
// make up the store's on-disk state. A Writer appends to the single active
// generation, a Reader serves random-access lookups into any generation,
// and a Scanner replays one generation front to back during recovery.
package logfile

import (
	"os"
	"sort"

	"citrine/internal/common"
)

// ListGenerations returns the generation ids present in dir in ascending
// order. Files that are not generation logs are ignored.
func ListGenerations(dir string) ([]common.GenerationID, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var gens []common.GenerationID
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		if gen, ok := common.ParseLogName(ent.Name()); ok {
			gens = append(gens, gen)
		}
	}
	sort.Slice(gens, func(i, j int) bool { return gens[i] < gens[j] })
	return gens, nil
}
