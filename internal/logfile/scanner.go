package logfile

import (
	"bufio"
	"os"

	"citrine/internal/common"
	"citrine/internal/record"
)

// Scanner decodes a generation file front to back. After the stream ends,
// TailOffset reports where valid data stopped so recovery can truncate a
// damaged tail at a frame boundary.
type Scanner struct {
	file *os.File
	br   *bufio.Reader
	gen  common.GenerationID
	off  int64
	tail int64
}

// OpenScanner opens the generation file at path for a sequential scan.
func OpenScanner(path string, gen common.GenerationID, bufSize int) (*Scanner, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Scanner{
		file: f,
		br:   bufio.NewReaderSize(f, bufSize),
		gen:  gen,
	}, nil
}

// Next returns the next record and its location. A clean end of file
// returns io.EOF; a torn or corrupt frame returns the codec's error and
// leaves TailOffset at the last good frame boundary.
func (s *Scanner) Next() (*record.Record, common.Location, error) {
	rec, n, err := record.ReadRecord(s.br)
	if err != nil {
		return nil, common.Location{}, err
	}

	loc := common.Location{Gen: s.gen, Offset: s.off, Length: n, Seq: rec.Seq}
	s.off += n
	s.tail = s.off
	return rec, loc, nil
}

// TailOffset returns the byte offset just past the last valid frame.
func (s *Scanner) TailOffset() int64 {
	return s.tail
}

// Close releases the underlying file handle. Safe to call multiple times.
func (s *Scanner) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	s.br = nil
	return err
}
