// Package record implements the durable frame format for store mutations.
package record

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
)

// Frame layout (all integers little-endian):
//
//	           ┌───────────────┐
//	           │  bodyLen (4)  │  length of everything after this prefix
//	 body ->   ├───────────────┤
//	           │  crc (4)      │  CRC-32 (IEEE) over body[4:]
//	           ├───────────────┤
//	           │  seq (8)      │
//	           ├───────────────┤
//	           │  timestamp (8)│  unix nanoseconds, advisory
//	           ├───────────────┤
//	           │  op (1)       │
//	           ├───────────────┤
//	           │  keyLen (4)   │
//	           ├───────────────┤
//	           │  valueLen (4) │
//	           ├───────────────┤
//	           │  key ...      │
//	           ├───────────────┤
//	           │  value ...    │
//	           └───────────────┘

const (
	prefixSize = 4
	headerSize = 4 + 8 + 8 + 1 + 4 + 4
)

var (
	// ErrChecksumMismatch reports a frame whose stored CRC disagrees with its
	// content. Corrupt frames are rejected whole, never partially decoded.
	ErrChecksumMismatch = errors.New("record: checksum mismatch")

	// ErrTruncatedRecord reports a frame cut off before its declared length.
	// During recovery this marks the end of valid data in a file.
	ErrTruncatedRecord = errors.New("record: truncated frame")
)

// Op enumerates the kinds of mutations persisted in the log.
type Op uint8

const (
	OpPut    Op = iota // 0
	OpDelete           // 1
)

// Record captures a single mutation in sequence order. Value is empty for
// tombstones.
type Record struct {
	Op        Op
	Seq       uint64
	Timestamp int64
	Key       []byte
	Value     []byte
}

// Checksummer is implemented by types that carry a CRC-32 over their durable
// content. Decode verifies the stored sum against this before returning.
type Checksummer interface {
	Checksum() uint32
}

var _ Checksummer = (*Record)(nil)

// Checksum returns the CRC-32 (IEEE) of the record's body fields, matching
// the sum stored in its encoded frame.
func (r *Record) Checksum() uint32 {
	var hdr [headerSize - 4]byte
	binary.LittleEndian.PutUint64(hdr[0:8], r.Seq)
	binary.LittleEndian.PutUint64(hdr[8:16], uint64(r.Timestamp))
	hdr[16] = byte(r.Op)
	binary.LittleEndian.PutUint32(hdr[17:21], uint32(len(r.Key)))
	binary.LittleEndian.PutUint32(hdr[21:25], uint32(len(r.Value)))

	sum := crc32.ChecksumIEEE(hdr[:])
	sum = crc32.Update(sum, crc32.IEEETable, r.Key)
	return crc32.Update(sum, crc32.IEEETable, r.Value)
}

// Equal compares two records using slice content rather than pointer identity.
func (r *Record) Equal(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.Op == other.Op &&
		r.Seq == other.Seq &&
		r.Timestamp == other.Timestamp &&
		bytes.Equal(r.Key, other.Key) &&
		bytes.Equal(r.Value, other.Value)
}

// Encode serializes the record into a single frame. Encoding is
// deterministic: equal records produce identical bytes.
func (r *Record) Encode() []byte {
	bodyLen := headerSize + len(r.Key) + len(r.Value)
	frame := make([]byte, prefixSize+bodyLen)
	binary.LittleEndian.PutUint32(frame[0:4], uint32(bodyLen))

	body := frame[prefixSize:]
	binary.LittleEndian.PutUint32(body[0:4], r.Checksum())
	binary.LittleEndian.PutUint64(body[4:12], r.Seq)
	binary.LittleEndian.PutUint64(body[12:20], uint64(r.Timestamp))
	body[20] = byte(r.Op)
	binary.LittleEndian.PutUint32(body[21:25], uint32(len(r.Key)))
	binary.LittleEndian.PutUint32(body[25:29], uint32(len(r.Value)))
	copy(body[headerSize:], r.Key)
	copy(body[headerSize+len(r.Key):], r.Value)
	return frame
}

// Decode parses one full frame and verifies its checksum. The returned
// record shares no memory with frame.
func Decode(frame []byte) (*Record, error) {
	if len(frame) < prefixSize {
		return nil, ErrTruncatedRecord
	}
	bodyLen := int(binary.LittleEndian.Uint32(frame[0:4]))
	if bodyLen < headerSize {
		// The prefix itself cannot be trusted.
		return nil, ErrChecksumMismatch
	}
	if len(frame) < prefixSize+bodyLen {
		return nil, ErrTruncatedRecord
	}
	return decodeBody(frame[prefixSize : prefixSize+bodyLen])
}

// ReadRecord decodes the next frame from r, returning the record and the
// number of bytes its frame occupies. A clean end of stream returns io.EOF;
// a frame cut off mid-way returns ErrTruncatedRecord.
func ReadRecord(r io.Reader) (*Record, int64, error) {
	var prefix [prefixSize]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, 0, ErrTruncatedRecord
		}
		return nil, 0, err
	}

	bodyLen := int(binary.LittleEndian.Uint32(prefix[:]))
	if bodyLen < headerSize {
		return nil, 0, ErrChecksumMismatch
	}

	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(r, body); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, 0, ErrTruncatedRecord
		}
		return nil, 0, err
	}

	rec, err := decodeBody(body)
	if err != nil {
		return nil, 0, err
	}
	return rec, int64(prefixSize + bodyLen), nil
}

func decodeBody(body []byte) (*Record, error) {
	stored := binary.LittleEndian.Uint32(body[0:4])
	if crc32.ChecksumIEEE(body[4:]) != stored {
		return nil, ErrChecksumMismatch
	}

	keyLen := int(binary.LittleEndian.Uint32(body[21:25]))
	valueLen := int(binary.LittleEndian.Uint32(body[25:29]))
	if headerSize+keyLen+valueLen != len(body) {
		return nil, ErrChecksumMismatch
	}

	rec := &Record{
		Op:        Op(body[20]),
		Seq:       binary.LittleEndian.Uint64(body[4:12]),
		Timestamp: int64(binary.LittleEndian.Uint64(body[12:20])),
	}
	if keyLen > 0 {
		rec.Key = make([]byte, keyLen)
		copy(rec.Key, body[headerSize:headerSize+keyLen])
	}
	if valueLen > 0 {
		rec.Value = make([]byte, valueLen)
		copy(rec.Value, body[headerSize+keyLen:])
	}
	return rec, nil
}
