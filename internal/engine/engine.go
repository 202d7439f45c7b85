// Package engine ties the storage layers into a single-node key-value
// store: an append-only chain of generation files on disk and an in-memory
// index pointing at the newest record for every live key.
//
// Writes append to the active generation and publish to the index only
// after the bytes reach the OS. Reads resolve the index and fetch one frame
// with a single positioned read. A background pass rewrites the live
// records of sealed generations into a fresh file and unlinks the old ones
// once the copies are durable.
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"citrine/internal/common"
	"citrine/internal/keydir"
	"citrine/internal/lock"
	"citrine/internal/logfile"
	"citrine/internal/record"
	"citrine/internal/sequence"
)

type Engine struct {
	mu   sync.RWMutex
	dir  string
	opts Options

	flock  *lock.FileLock
	index  keydir.KeyDir
	seq    *sequence.Allocator
	active *logfile.Writer
	gens   *generationSet

	// nextGen is the id the next generation file will take. Guarded by mu,
	// as are staleByGen, unsynced, and closed.
	nextGen    common.GenerationID
	staleByGen map[common.GenerationID]int64
	unsynced   int
	closed     bool

	compactMu sync.Mutex
	compactCh chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
	bg        errgroup.Group
}

// Open opens the store in dir, creating it if needed, and replays its
// generations into memory. The directory stays locked against other
// processes until Close.
func Open(dir string, optFns ...Option) (*Engine, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	flock, err := lock.Acquire(dir)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		dir:        dir,
		opts:       opts,
		flock:      flock,
		index:      keydir.NewMapKeyDir(),
		seq:        sequence.NewAllocator(),
		gens:       newGenerationSet(dir),
		staleByGen: make(map[common.GenerationID]int64),
		compactCh:  make(chan struct{}, 1),
	}

	if err := e.recover(); err != nil {
		e.gens.closeAll()
		flock.Release()
		return nil, fmt.Errorf("recover: %w", err)
	}

	e.ctx, e.cancel = context.WithCancel(context.Background())
	if e.opts.CompactionRatio > 0 {
		e.bg.Go(e.compactLoop)
	}
	return e, nil
}

// Put records key -> value. The new record is visible to readers before Put
// returns; durability follows the SyncEvery policy.
func (e *Engine) Put(key, value []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	rec := &record.Record{
		Op:        record.OpPut,
		Timestamp: time.Now().UnixNano(),
		Key:       key,
		Value:     value,
	}

	e.mu.Lock()
	err := e.appendLocked(rec)
	e.mu.Unlock()
	if err != nil {
		return err
	}

	e.maybeSignalCompaction()
	return nil
}

// Delete removes key. Deleting an absent key is a no-op: the index is
// authoritative, so no tombstone needs to land.
func (e *Engine) Delete(key []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrEngineClosed
	}
	if _, ok := e.index.Get(key); !ok {
		e.mu.Unlock()
		return nil
	}
	rec := &record.Record{
		Op:        record.OpDelete,
		Timestamp: time.Now().UnixNano(),
		Key:       key,
	}
	err := e.appendLocked(rec)
	e.mu.Unlock()
	if err != nil {
		return err
	}

	e.maybeSignalCompaction()
	return nil
}

// Get returns the value of the newest record for key.
func (e *Engine) Get(key []byte) ([]byte, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return nil, ErrEngineClosed
	}
	loc, ok := e.index.Get(key)
	if !ok {
		return nil, ErrKeyNotFound
	}

	r, err := e.gens.reader(loc.Gen)
	if err != nil {
		return nil, err
	}
	frame, err := r.ReadFrame(loc)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: generation %d at offset %d", ErrUnexpectedTruncation, loc.Gen, loc.Offset)
		}
		return nil, err
	}
	rec, err := record.Decode(frame)
	if err != nil {
		return nil, fmt.Errorf("generation %d at offset %d: %w", loc.Gen, loc.Offset, err)
	}
	if rec.Op != record.OpPut || !bytes.Equal(rec.Key, key) {
		return nil, fmt.Errorf("%w: generation %d at offset %d", ErrUnexpectedRecord, loc.Gen, loc.Offset)
	}
	return rec.Value, nil
}

// Keys returns every live key in ascending byte order.
func (e *Engine) Keys() ([][]byte, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return nil, ErrEngineClosed
	}
	return e.index.Keys(), nil
}

// Sync forces everything appended so far to stable storage.
func (e *Engine) Sync() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEngineClosed
	}
	if err := e.active.Sync(); err != nil {
		return err
	}
	e.unsynced = 0
	return nil
}

// Close stops background compaction, syncs the active generation, and
// releases every file handle plus the directory lock. Safe to call twice.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	// Drain the background compactor before touching handles.
	e.cancel()
	e.bg.Wait()

	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.active.Seal()
	if cerr := e.gens.closeAll(); err == nil {
		err = cerr
	}
	if rerr := e.flock.Release(); err == nil {
		err = rerr
	}
	return err
}

// Stats is a point-in-time view of the store.
type Stats struct {
	Keys             int
	Generations      int
	ActiveGeneration common.GenerationID
	TotalBytes       int64
	StaleBytes       int64
	LastSeq          uint64
}

func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return Stats{
		Keys:             e.index.Len(),
		Generations:      e.gens.count(),
		ActiveGeneration: e.active.Gen(),
		TotalBytes:       e.gens.totalSize(),
		StaleBytes:       e.staleTotalLocked(),
		LastSeq:          e.seq.Last(),
	}
}

// appendLocked assigns the next sequence number, appends the record, and
// publishes it to the index. Callers hold the write lock.
func (e *Engine) appendLocked(rec *record.Record) error {
	if e.closed {
		return ErrEngineClosed
	}

	rec.Seq = e.seq.Next()
	loc, err := e.active.Append(rec)
	if err != nil {
		return err
	}
	// The index may only see the record once the OS does.
	if err := e.active.Flush(); err != nil {
		return err
	}
	e.gens.add(loc.Gen, e.active.Size())

	switch rec.Op {
	case record.OpPut:
		if prev, had := e.index.Put(rec.Key, loc); had {
			e.staleByGen[prev.Gen] += prev.Length
		}
	case record.OpDelete:
		if prev, had := e.index.Remove(rec.Key); had {
			e.staleByGen[prev.Gen] += prev.Length
		}
		// The tombstone itself is dead weight the moment it lands.
		e.staleByGen[loc.Gen] += loc.Length
	}

	if err := e.maybeSyncLocked(); err != nil {
		return err
	}
	return e.maybeRotateLocked()
}

func (e *Engine) maybeSyncLocked() error {
	if e.opts.SyncEvery <= 0 {
		return nil
	}
	e.unsynced++
	if e.unsynced < e.opts.SyncEvery {
		return nil
	}
	if err := e.active.Sync(); err != nil {
		return err
	}
	e.unsynced = 0
	return nil
}

func (e *Engine) maybeRotateLocked() error {
	if e.active.Size() < e.opts.MaxGenerationBytes {
		return nil
	}
	return e.rotateLocked()
}

// rotateLocked seals the active generation and starts the next one. The new
// file is ready before the old writer closes, so a failure leaves the store
// on the old generation.
func (e *Engine) rotateLocked() error {
	next := e.nextGen
	w, err := logfile.OpenWriter(common.LogPath(e.dir, next), next, e.opts.WriteBufferSize)
	if err != nil {
		return err
	}
	if err := e.active.Seal(); err != nil {
		w.Seal()
		os.Remove(common.LogPath(e.dir, next))
		return err
	}
	common.Logf("sealed generation %d at %d bytes, active is now %d\n",
		e.active.Gen(), e.active.Size(), next)

	e.nextGen = next + 1
	e.active = w
	e.gens.add(next, 0)
	e.unsynced = 0
	return nil
}

// staleTotalLocked sums stale bytes across generations. Callers hold mu.
func (e *Engine) staleTotalLocked() int64 {
	var total int64
	for _, n := range e.staleByGen {
		total += n
	}
	return total
}
