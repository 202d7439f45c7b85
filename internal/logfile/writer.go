package logfile

import (
	"bufio"
	"errors"
	"os"
	"sync"

	"citrine/internal/common"
	"citrine/internal/record"
)

// Writer appends record frames to a single generation file. Appends land in
// a buffer; Flush makes them visible to readers of the file and Sync makes
// them durable. A write error sticks in the buffer, so later appends fail
// rather than producing frames at wrong offsets.
type Writer struct {
	mu   sync.Mutex
	file *os.File
	bw   *bufio.Writer
	gen  common.GenerationID
	path string
	off  int64
}

// OpenWriter opens (or creates) the generation file at path for appending.
func OpenWriter(path string, gen common.GenerationID, bufSize int) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Writer{
		file: f,
		bw:   bufio.NewWriterSize(f, bufSize),
		gen:  gen,
		path: path,
		off:  stat.Size(),
	}, nil
}

// Append encodes rec and writes its frame, returning the frame's location.
func (w *Writer) Append(rec *record.Record) (common.Location, error) {
	return w.AppendRaw(rec.Encode(), rec.Seq)
}

// AppendRaw writes an already encoded frame. Compaction uses this to carry
// frames between generations without touching their contents.
func (w *Writer) AppendRaw(frame []byte, seq uint64) (common.Location, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return common.Location{}, errors.New("logfile: writer is sealed")
	}

	loc := common.Location{
		Gen:    w.gen,
		Offset: w.off,
		Length: int64(len(frame)),
		Seq:    seq,
	}
	if _, err := w.bw.Write(frame); err != nil {
		return common.Location{}, err
	}
	w.off += int64(len(frame))
	return loc, nil
}

// Flush pushes buffered frames to the OS so readers of the file see them.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return errors.New("logfile: writer is sealed")
	}
	return w.bw.Flush()
}

// Sync flushes and then forces the file contents to stable storage.
func (w *Writer) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return errors.New("logfile: writer is sealed")
	}
	if err := w.bw.Flush(); err != nil {
		return err
	}
	return w.file.Sync()
}

// Size returns the number of bytes appended so far, buffered ones included.
func (w *Writer) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.off
}

// Gen returns the generation this writer appends to.
func (w *Writer) Gen() common.GenerationID {
	return w.gen
}

// Path returns the file path this writer appends to.
func (w *Writer) Path() string {
	return w.path
}

// Seal flushes, syncs, and closes the file. A sealed generation is never
// written again. Safe to call multiple times.
func (w *Writer) Seal() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	flushErr := w.bw.Flush()
	if flushErr == nil {
		flushErr = w.file.Sync()
	}
	closeErr := w.file.Close()
	w.file = nil
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
