package logfile_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"citrine/internal/common"
	"citrine/internal/logfile"
	"citrine/internal/record"
	"github.com/stretchr/testify/require"
)

func writeGeneration(t *testing.T, path string, gen common.GenerationID, recs []*record.Record) []common.Location {
	t.Helper()

	w, err := logfile.OpenWriter(path, gen, testBufSize)
	require.NoError(t, err)
	locs := make([]common.Location, 0, len(recs))
	for _, rec := range recs {
		loc, err := w.Append(rec)
		require.NoError(t, err)
		locs = append(locs, loc)
	}
	require.NoError(t, w.Seal())
	return locs
}

func flipByte(t *testing.T, path string, off int64) {
	t.Helper()

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	require.NoError(t, err)
	defer f.Close()

	var b [1]byte
	_, err = f.ReadAt(b[:], off)
	require.NoError(t, err)
	b[0] ^= 0xff
	_, err = f.WriteAt(b[:], off)
	require.NoError(t, err)
}

func TestScannerWalksWholeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "0.log")
	recs := []*record.Record{put(1, "a", "1"), put(2, "b", "2"), put(3, "c", "3")}
	locs := writeGeneration(t, path, 0, recs)

	s, err := logfile.OpenScanner(path, 0, testBufSize)
	require.NoError(t, err)
	defer s.Close()

	for i, want := range recs {
		got, loc, err := s.Next()
		require.NoError(t, err)
		require.True(t, got.Equal(want))
		require.Equal(t, locs[i], loc)
	}

	_, _, err = s.Next()
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, locs[2].Offset+locs[2].Length, s.TailOffset())
}

func TestScannerStopsAtTornFrame(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "0.log")
	locs := writeGeneration(t, path, 0, []*record.Record{put(1, "a", "1"), put(2, "b", "2")})

	// Simulate a crash mid-append by cutting the file inside the last frame.
	cut := locs[1].Offset + locs[1].Length/2
	require.NoError(t, os.Truncate(path, cut))

	s, err := logfile.OpenScanner(path, 0, testBufSize)
	require.NoError(t, err)
	defer s.Close()

	_, _, err = s.Next()
	require.NoError(t, err)
	_, _, err = s.Next()
	require.ErrorIs(t, err, record.ErrTruncatedRecord)
	require.Equal(t, locs[0].Offset+locs[0].Length, s.TailOffset())
}

func TestScannerStopsAtCorruptFrame(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "0.log")
	locs := writeGeneration(t, path, 0, []*record.Record{put(1, "a", "1"), put(2, "b", "2"), put(3, "c", "3")})

	flipByte(t, path, locs[1].Offset+locs[1].Length-1)

	s, err := logfile.OpenScanner(path, 0, testBufSize)
	require.NoError(t, err)
	defer s.Close()

	_, _, err = s.Next()
	require.NoError(t, err)
	_, _, err = s.Next()
	require.ErrorIs(t, err, record.ErrChecksumMismatch)
	require.Equal(t, locs[0].Offset+locs[0].Length, s.TailOffset())
}

func TestReadFrameByLocation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "5.log")
	recs := []*record.Record{put(1, "a", "1"), put(2, "b", "2")}
	locs := writeGeneration(t, path, 5, recs)

	r, err := logfile.OpenReader(path, 5)
	require.NoError(t, err)
	defer r.Close()

	// Read the frames out of order; ReadAt has no seek state to disturb.
	frame, err := r.ReadFrame(locs[1])
	require.NoError(t, err)
	got, err := record.Decode(frame)
	require.NoError(t, err)
	require.True(t, got.Equal(recs[1]))

	frame, err = r.ReadFrame(locs[0])
	require.NoError(t, err)
	got, err = record.Decode(frame)
	require.NoError(t, err)
	require.True(t, got.Equal(recs[0]))
}

func TestReadFramePastEndFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "0.log")
	locs := writeGeneration(t, path, 0, []*record.Record{put(1, "a", "1")})

	r, err := logfile.OpenReader(path, 0)
	require.NoError(t, err)
	defer r.Close()

	over := locs[0]
	over.Length += 100
	_, err = r.ReadFrame(over)
	require.Error(t, err)
}

func TestListGenerationsSortsAndFilters(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"10.log", "0.log", "2.log", "LOCK", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	gens, err := logfile.ListGenerations(dir)
	require.NoError(t, err)
	require.Equal(t, []common.GenerationID{0, 2, 10}, gens)
}
