package logfile

import (
	"os"

	"citrine/internal/common"
)

// Reader serves random-access frame reads from one generation file. Reads
// go through ReadAt, so a single Reader is safe for concurrent lookups and
// carries no seek state.
type Reader struct {
	file *os.File
	gen  common.GenerationID
}

// OpenReader opens the generation file at path for random access.
func OpenReader(path string, gen common.GenerationID) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{file: f, gen: gen}, nil
}

// ReadFrame returns the raw frame bytes at loc. A location past the end of
// the file surfaces as io.EOF or io.ErrUnexpectedEOF from ReadAt.
func (r *Reader) ReadFrame(loc common.Location) ([]byte, error) {
	buf := make([]byte, loc.Length)
	if _, err := r.file.ReadAt(buf, loc.Offset); err != nil {
		return nil, err
	}
	return buf, nil
}

// Gen returns the generation this reader serves.
func (r *Reader) Gen() common.GenerationID {
	return r.gen
}

// Close releases the underlying file handle. Safe to call multiple times.
func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
