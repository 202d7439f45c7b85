package engine

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"citrine/internal/common"
	"citrine/internal/logfile"
	"citrine/internal/record"
)

// recoveryStats tallies what replay saw across all generations.
type recoveryStats struct {
	records   int
	truncated int // sealed generations ending mid-frame
}

// recover replays every generation in ascending id order, rebuilds the
// index and stale accounting, seeds the sequence allocator, and opens the
// writer on the highest generation. A damaged tail on the active generation
// is cut off so appends restart at a clean frame boundary; a damaged tail
// on a sealed generation is reported and skipped, since an interrupted
// compaction can leave one behind.
//
// TODO: persist the index as a hint file per sealed generation so large
// stores do not pay a full scan on open.
func (e *Engine) recover() error {
	start := time.Now()

	gens, err := logfile.ListGenerations(e.dir)
	if err != nil {
		return err
	}
	if len(gens) == 0 {
		gens = []common.GenerationID{0}
	}
	activeGen := gens[len(gens)-1]

	var stats recoveryStats
	for _, gen := range gens {
		if err := e.replayGeneration(gen, gen == activeGen, &stats); err != nil {
			return err
		}
	}
	e.nextGen = activeGen + 1

	w, err := logfile.OpenWriter(common.LogPath(e.dir, activeGen), activeGen, e.opts.WriteBufferSize)
	if err != nil {
		return err
	}
	e.active = w

	common.LogDuration(start, "recovered %d generations: %d records, %d live keys, last seq %d",
		len(gens), stats.records, e.index.Len(), e.seq.Last())
	if stats.truncated > 0 {
		common.Logf("recovery: %d sealed generations end mid-frame\n", stats.truncated)
	}
	return nil
}

// replayGeneration scans one generation file and folds every decodable
// record into the index. The generation is registered with the number of
// bytes that decoded cleanly.
func (e *Engine) replayGeneration(gen common.GenerationID, active bool, stats *recoveryStats) error {
	path := common.LogPath(e.dir, gen)
	s, err := logfile.OpenScanner(path, gen, e.opts.ReadBufferSize)
	if err != nil {
		if active && errors.Is(err, os.ErrNotExist) {
			// Brand new store; the writer will create the file.
			e.gens.add(gen, 0)
			return nil
		}
		return err
	}
	defer s.Close()

	var damaged bool
	for {
		rec, loc, err := s.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if errors.Is(err, record.ErrTruncatedRecord) || errors.Is(err, record.ErrChecksumMismatch) {
				damaged = true
				common.Logf("generation %d: invalid data after offset %d (%v)\n", gen, s.TailOffset(), err)
				break
			}
			return fmt.Errorf("generation %d: %w", gen, err)
		}
		stats.records++
		e.applyRecord(rec, loc)
	}

	tail := s.TailOffset()
	if damaged {
		if active {
			// Drop the torn tail so new appends start at a clean boundary.
			s.Close()
			if err := os.Truncate(path, tail); err != nil {
				return fmt.Errorf("truncate generation %d: %w", gen, err)
			}
			common.Logf("generation %d: truncated to %d bytes\n", gen, tail)
		} else {
			stats.truncated++
		}
	}
	e.gens.add(gen, tail)
	return nil
}

// applyRecord folds one replayed record into the index under the rule that
// a strictly newer sequence number wins. Ties keep the first occurrence:
// duplicates only arise when a crash interrupted compaction between the
// copy and the unlink, and both copies carry identical bytes.
func (e *Engine) applyRecord(rec *record.Record, loc common.Location) {
	e.seq.Seed(rec.Seq)

	if cur, ok := e.index.Get(rec.Key); ok && cur.Seq >= rec.Seq {
		// This frame already lost to a newer record.
		e.staleByGen[loc.Gen] += loc.Length
		return
	}

	switch rec.Op {
	case record.OpPut:
		if prev, had := e.index.Put(rec.Key, loc); had {
			e.staleByGen[prev.Gen] += prev.Length
		}
	case record.OpDelete:
		if prev, had := e.index.Remove(rec.Key); had {
			e.staleByGen[prev.Gen] += prev.Length
		}
		e.staleByGen[loc.Gen] += loc.Length
	default:
		// Unknown op from a newer format version. Skip the record but keep
		// its bytes accounted.
		e.staleByGen[loc.Gen] += loc.Length
	}
}
