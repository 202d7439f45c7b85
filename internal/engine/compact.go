package engine

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"citrine/internal/common"
	"citrine/internal/logfile"
	"citrine/internal/record"
)

// compactionFloorBytes is the minimum amount of stale data before the
// background pass bothers; below it a rewrite costs more than it frees.
const compactionFloorBytes = 1 << 20

// CompactionReport summarizes one merge pass.
type CompactionReport struct {
	Retired        int
	RecordsCopied  int
	BytesCopied    int64
	BytesReclaimed int64
	Output         common.GenerationID
	Elapsed        time.Duration
}

// move is one planned index update: key moves from its old location to its
// copy in the merge output.
type move struct {
	key      string
	from, to common.Location
}

// Compact merges every sealed generation into a fresh one, keeping only the
// newest record of each live key. Sequence numbers travel with the frames,
// so compaction never reorders history. Reads and writes continue while it
// runs; each source generation disappears only after its surviving records
// are on stable storage and the index points at the copies.
func (e *Engine) Compact() (CompactionReport, error) {
	e.compactMu.Lock()
	defer e.compactMu.Unlock()

	start := time.Now()

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return CompactionReport{}, ErrEngineClosed
	}
	if e.active.Size() == 0 && e.gens.count() == 1 {
		e.mu.Unlock()
		return CompactionReport{}, nil
	}

	// Reserve the next id for the merge output, then rotate the active
	// generation onto the one after. Everything sealed becomes a candidate.
	output := e.nextGen
	e.nextGen = output + 1
	if err := e.rotateLocked(); err != nil {
		e.mu.Unlock()
		return CompactionReport{}, fmt.Errorf("compact: %w", err)
	}
	activeGen := e.active.Gen()
	var candidates []common.GenerationID
	for _, gen := range e.gens.ids() {
		if gen != activeGen {
			candidates = append(candidates, gen)
		}
	}
	snap := e.index.Snapshot()
	e.mu.Unlock()

	out, err := logfile.OpenWriter(common.LogPath(e.dir, output), output, e.opts.WriteBufferSize)
	if err != nil {
		return CompactionReport{}, fmt.Errorf("compact: %w", err)
	}

	// Bucket the surviving locations by generation. Entries pointing at the
	// new active generation are not candidates and stay where they are.
	byGen := make(map[common.GenerationID][]string)
	for key, loc := range snap {
		byGen[loc.Gen] = append(byGen[loc.Gen], key)
	}

	report := CompactionReport{Output: output}
	for _, gen := range candidates {
		if err := e.ctx.Err(); err != nil {
			// Interrupted between generations: the ones already committed
			// stay committed, the rest wait for the next pass.
			out.Seal()
			return report, fmt.Errorf("compact: %w", err)
		}
		moves, copied, err := e.copyGeneration(gen, snap, byGen[gen], out)
		if err != nil {
			out.Seal()
			return report, fmt.Errorf("compact: %w", err)
		}
		reclaimed, err := e.commitGeneration(gen, output, out, moves, copied)
		if err != nil {
			out.Seal()
			return report, fmt.Errorf("compact: %w", err)
		}
		report.Retired++
		report.RecordsCopied += len(moves)
		report.BytesCopied += copied
		report.BytesReclaimed += reclaimed
	}

	if err := out.Seal(); err != nil {
		return report, fmt.Errorf("compact: %w", err)
	}
	report.Elapsed = time.Since(start)
	common.LogDuration(start, "compacted %d generations into %d: %d records kept, %d bytes reclaimed",
		report.Retired, output, report.RecordsCopied, report.BytesReclaimed)
	return report, nil
}

// copyGeneration appends every record of gen still referenced by the index
// to the merge output, in file order. Frames are copied verbatim after a
// decode check, so corruption is caught here instead of being carried into
// the output.
func (e *Engine) copyGeneration(gen common.GenerationID, snap map[string]common.Location, keys []string, out *logfile.Writer) ([]move, int64, error) {
	if len(keys) == 0 {
		return nil, 0, nil
	}
	sort.Slice(keys, func(i, j int) bool { return snap[keys[i]].Offset < snap[keys[j]].Offset })

	r, err := e.gens.reader(gen)
	if err != nil {
		return nil, 0, err
	}

	moves := make([]move, 0, len(keys))
	var copied int64
	for _, key := range keys {
		from := snap[key]
		frame, err := r.ReadFrame(from)
		if err != nil {
			return nil, 0, fmt.Errorf("generation %d at offset %d: %w", gen, from.Offset, err)
		}
		rec, err := record.Decode(frame)
		if err != nil {
			return nil, 0, fmt.Errorf("generation %d at offset %d: %w", gen, from.Offset, err)
		}
		if !bytes.Equal(rec.Key, []byte(key)) {
			return nil, 0, fmt.Errorf("%w: generation %d at offset %d", ErrUnexpectedRecord, gen, from.Offset)
		}
		to, err := out.AppendRaw(frame, from.Seq)
		if err != nil {
			return nil, 0, err
		}
		moves = append(moves, move{key: key, from: from, to: to})
		copied += to.Length
	}
	return moves, copied, nil
}

// commitGeneration makes the copied records durable, swings the index to
// the new locations, and retires the source file. Entries that moved on
// while the copy ran keep their newer locations, and their copies become
// stale bytes in the output.
func (e *Engine) commitGeneration(gen, output common.GenerationID, out *logfile.Writer, moves []move, copied int64) (int64, error) {
	if err := out.Sync(); err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return 0, ErrEngineClosed
	}

	e.gens.add(output, out.Size())
	var outputStale int64
	for _, mv := range moves {
		if !e.index.Repoint([]byte(mv.key), mv.from, mv.to) {
			outputStale += mv.to.Length
		}
	}
	if outputStale > 0 {
		e.staleByGen[output] += outputStale
	}

	size := e.gens.size(gen)
	delete(e.staleByGen, gen)
	if err := e.gens.remove(gen); err != nil {
		common.Logf("close retired generation %d: %v\n", gen, err)
	}
	if err := os.Remove(common.LogPath(e.dir, gen)); err != nil {
		return 0, err
	}
	common.Logf("retired generation %d (%d bytes, %d copied)\n", gen, size, copied)
	return size - copied, nil
}

// maybeSignalCompaction nudges the background compactor once stale bytes
// clear both the fixed floor and the configured ratio. The signal channel
// holds one pending request; anything beyond that is already covered.
func (e *Engine) maybeSignalCompaction() {
	if e.opts.CompactionRatio <= 0 {
		return
	}

	e.mu.RLock()
	stale := e.staleTotalLocked()
	total := e.gens.totalSize()
	e.mu.RUnlock()

	if stale < compactionFloorBytes {
		return
	}
	if float64(stale) < e.opts.CompactionRatio*float64(total) {
		return
	}
	select {
	case e.compactCh <- struct{}{}:
	default:
	}
}

// compactLoop serves compaction signals until Close cancels the context.
func (e *Engine) compactLoop() error {
	for {
		select {
		case <-e.ctx.Done():
			return nil
		case <-e.compactCh:
			_, err := e.Compact()
			if err != nil && !errors.Is(err, ErrEngineClosed) && e.ctx.Err() == nil {
				common.Logf("background compaction: %v\n", err)
			}
		}
	}
}
