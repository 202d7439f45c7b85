package record_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"citrine/internal/record"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	recs := []*record.Record{
		{Op: record.OpPut, Seq: 1, Timestamp: 1700000000000000000, Key: []byte("a"), Value: []byte("A")},
		{Op: record.OpPut, Seq: 2, Key: []byte("binary\x00key"), Value: []byte{0xde, 0xad, 0xbe, 0xef}},
		{Op: record.OpPut, Seq: 3, Key: []byte("empty-value")},
		{Op: record.OpDelete, Seq: 4, Key: []byte("gone")},
	}

	for _, rec := range recs {
		frame := rec.Encode()
		got, err := record.Decode(frame)
		require.NoError(t, err)
		require.True(t, got.Equal(rec), "round trip of %q", rec.Key)
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	rec := &record.Record{Op: record.OpPut, Seq: 9, Timestamp: 42, Key: []byte("k"), Value: []byte("v")}
	require.Equal(t, rec.Encode(), rec.Encode())
}

func TestChecksumMatchesEncodedFrame(t *testing.T) {
	rec := &record.Record{Op: record.OpPut, Seq: 7, Timestamp: 99, Key: []byte("key"), Value: []byte("value")}
	frame := rec.Encode()

	// The crc field sits right after the 4-byte length prefix.
	stored := binary.LittleEndian.Uint32(frame[4:8])
	require.Equal(t, rec.Checksum(), stored)
}

func TestDecodeRejectsBitFlips(t *testing.T) {
	rec := &record.Record{Op: record.OpPut, Seq: 11, Timestamp: 5, Key: []byte("alpha"), Value: []byte("beta")}
	frame := rec.Encode()

	// Flip one bit in every body byte in turn. Each corruption must be
	// rejected as a checksum mismatch, including flips inside the crc field
	// and the length fields.
	for i := 4; i < len(frame); i++ {
		corrupted := bytes.Clone(frame)
		corrupted[i] ^= 0x01
		_, err := record.Decode(corrupted)
		require.ErrorIs(t, err, record.ErrChecksumMismatch, "flipped byte %d", i)
	}
}

func TestDecodeTruncatedFrame(t *testing.T) {
	rec := &record.Record{Op: record.OpPut, Seq: 3, Key: []byte("key"), Value: []byte("value")}
	frame := rec.Encode()

	for _, n := range []int{0, 2, 4, 10, len(frame) - 1} {
		_, err := record.Decode(frame[:n])
		require.ErrorIs(t, err, record.ErrTruncatedRecord, "cut at %d", n)
	}
}

func TestReadRecordStream(t *testing.T) {
	recs := []*record.Record{
		{Op: record.OpPut, Seq: 1, Key: []byte("a"), Value: []byte("1")},
		{Op: record.OpDelete, Seq: 2, Key: []byte("a")},
		{Op: record.OpPut, Seq: 3, Key: []byte("b"), Value: []byte("2")},
	}

	var buf bytes.Buffer
	for _, rec := range recs {
		buf.Write(rec.Encode())
	}
	streamLen := int64(buf.Len())

	var total int64
	for _, want := range recs {
		got, n, err := record.ReadRecord(&buf)
		require.NoError(t, err)
		require.True(t, got.Equal(want))
		total += n
	}
	require.Equal(t, streamLen, total)

	_, _, err := record.ReadRecord(&buf)
	require.True(t, errors.Is(err, io.EOF))
}

func TestReadRecordTruncatedTail(t *testing.T) {
	full := &record.Record{Op: record.OpPut, Seq: 1, Key: []byte("whole"), Value: []byte("record")}
	half := &record.Record{Op: record.OpPut, Seq: 2, Key: []byte("partial"), Value: []byte("record")}

	var buf bytes.Buffer
	buf.Write(full.Encode())
	halfFrame := half.Encode()
	buf.Write(halfFrame[:len(halfFrame)/2])

	got, _, err := record.ReadRecord(&buf)
	require.NoError(t, err)
	require.True(t, got.Equal(full))

	_, _, err = record.ReadRecord(&buf)
	require.ErrorIs(t, err, record.ErrTruncatedRecord)
}
