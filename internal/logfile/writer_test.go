package logfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"citrine/internal/common"
	"citrine/internal/logfile"
	"citrine/internal/record"
	"github.com/stretchr/testify/require"
)

const testBufSize = 64 * 1024

func put(seq uint64, key, value string) *record.Record {
	return &record.Record{Op: record.OpPut, Seq: seq, Key: []byte(key), Value: []byte(value)}
}

func TestAppendAssignsContiguousLocations(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "0.log")

	w, err := logfile.OpenWriter(path, 0, testBufSize)
	require.NoError(t, err)
	defer w.Seal()

	recs := []*record.Record{put(1, "a", "1"), put(2, "bb", "22"), put(3, "ccc", "333")}
	var offset int64
	for _, rec := range recs {
		loc, err := w.Append(rec)
		require.NoError(t, err)
		require.Equal(t, common.GenerationID(0), loc.Gen)
		require.Equal(t, offset, loc.Offset)
		require.Equal(t, rec.Seq, loc.Seq)
		offset += loc.Length
	}
	require.Equal(t, offset, w.Size())
}

func TestFlushMakesFramesVisible(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "0.log")

	w, err := logfile.OpenWriter(path, 0, testBufSize)
	require.NoError(t, err)
	defer w.Seal()

	_, err = w.Append(put(1, "k", "v"))
	require.NoError(t, err)

	// Nothing reaches the file until the buffer is flushed.
	stat, err := os.Stat(path)
	require.NoError(t, err)
	require.Zero(t, stat.Size())

	require.NoError(t, w.Flush())

	stat, err = os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, w.Size(), stat.Size())
}

func TestReopenContinuesAtEnd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "3.log")

	w, err := logfile.OpenWriter(path, 3, testBufSize)
	require.NoError(t, err)
	first, err := w.Append(put(1, "k1", "v1"))
	require.NoError(t, err)
	require.NoError(t, w.Seal())

	w, err = logfile.OpenWriter(path, 3, testBufSize)
	require.NoError(t, err)
	defer w.Seal()

	second, err := w.Append(put(2, "k2", "v2"))
	require.NoError(t, err)
	require.Equal(t, first.Offset+first.Length, second.Offset)
}

func TestAppendAfterSealFails(t *testing.T) {
	dir := t.TempDir()

	w, err := logfile.OpenWriter(filepath.Join(dir, "0.log"), 0, testBufSize)
	require.NoError(t, err)
	require.NoError(t, w.Seal())

	_, err = w.Append(put(1, "k", "v"))
	require.Error(t, err)

	// Sealing again is a no-op.
	require.NoError(t, w.Seal())
}

func TestAppendRawCarriesFrameVerbatim(t *testing.T) {
	dir := t.TempDir()
	src := put(9, "key", "value")
	frame := src.Encode()

	w, err := logfile.OpenWriter(filepath.Join(dir, "1.log"), 1, testBufSize)
	require.NoError(t, err)
	loc, err := w.AppendRaw(frame, src.Seq)
	require.NoError(t, err)
	require.Equal(t, uint64(9), loc.Seq)
	require.NoError(t, w.Seal())

	data, err := os.ReadFile(w.Path())
	require.NoError(t, err)
	require.Equal(t, frame, data)
}
