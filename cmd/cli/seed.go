package main

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"citrine/internal/common"
	"citrine/internal/engine"
)

const seedIndexKey = "__cli_seed_index__"

func loadSeedIndex(e *engine.Engine) int {
	if val, err := e.Get([]byte(seedIndexKey)); err == nil {
		if idx, err := strconv.Atoi(string(val)); err == nil {
			return idx
		}
	}
	return 0
}

var kvPairs = [][2]string{
	{"apple", "artichoke"},
	{"banana", "broccoli"},
	{"cherry", "cabbage"},
	{"durian", "daikon"},
	{"elderberry", "eggplant"},
	{"fig", "fennel"},
	{"grapefruit", "ginger"},
	{"honeydew", "horseradish"},
	{"imbe", "ivygourd"},
	{"jackfruit", "jicama"},
	{"kiwi", "kale"},
	{"lime", "leek"},
	{"mango", "mushroom"},
	{"nectarine", "nopale"},
	{"orange", "okra"},
	{"peach", "peas"},
	{"quince", "quinoa"},
	{"raspberry", "radish"},
	{"strawberry", "spinach"},
	{"tangerine", "tomato"},
	{"ugni", "ube"},
	{"voavanga", "vanilla"},
	{"watermelon", "watercress"},
	{"ximenia", "xanthan"},
	{"yuzu", "yam"},
	{"zarzamora", "zucchini"},
}

// runSeed writes x rounds of the sample pairs, numbering keys from where
// the previous seed run left off, and records the new index in the store so
// the next session resumes instead of overwriting.
func runSeed(e *engine.Engine, x int, seedIndex *int) {
	start := time.Now()
	count := 0
	startIndex := *seedIndex

	// Shuffle for a more realistic write pattern.
	shuffled := make([][2]string, len(kvPairs))
	copy(shuffled, kvPairs)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	for i := 0; i < x; i++ {
		for _, pair := range shuffled {
			key := fmt.Sprintf("%s%d", pair[0], *seedIndex)
			value := fmt.Sprintf("%s%d", pair[1], *seedIndex)
			if err := e.Put([]byte(key), []byte(value)); err != nil {
				fmt.Printf("seed error: %v\n", err)
				continue
			}
			count++
		}
		*seedIndex++
	}

	if count == 0 {
		fmt.Println("seed: no entries written")
		return
	}
	if err := e.Put([]byte(seedIndexKey), []byte(fmt.Sprint(*seedIndex))); err != nil {
		fmt.Printf("warning: failed to persist seed index: %v\n", err)
	}

	avgPerEntry := time.Since(start) / time.Duration(count)
	common.LogDuration(start, "seeded %d entries (26 * %d, index %d-%d) - %v/entry",
		count, x, startIndex, *seedIndex-1, avgPerEntry)
	fmt.Printf("seeded %d entries (index %d-%d)\n", count, startIndex, *seedIndex-1)
}
