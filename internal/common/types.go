package common

// GenerationID identifies one append-only log file within a store directory.
// Ids grow monotonically over the life of the store and are never reused,
// so a sealed generation keeps its identity until compaction removes it.
type GenerationID uint64

// Location pinpoints a single record frame on disk. Offset is the position
// of the frame's length prefix and Length covers the whole frame, so a
// Location is sufficient for one exact read.
type Location struct {
	Gen    GenerationID
	Offset int64
	Length int64
	Seq    uint64
}
