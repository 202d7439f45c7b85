package engine

// Options tune an Engine. Zero values are not sane defaults; start from
// DefaultOptions and layer Option funcs on top.
type Options struct {
	// MaxGenerationBytes seals the active generation once an append pushes
	// it past this size.
	MaxGenerationBytes int64

	// CompactionRatio is the stale/total byte ratio beyond which background
	// compaction kicks in. Zero or negative disables the background pass;
	// manual Compact still works.
	CompactionRatio float64

	// SyncEvery fsyncs after every Nth append. Zero leaves durability to
	// explicit Sync calls and Close.
	SyncEvery int

	// WriteBufferSize is the size of the append buffer on the active
	// generation and on compaction outputs.
	WriteBufferSize int

	// ReadBufferSize is the size of the buffer used when replaying
	// generations during recovery.
	ReadBufferSize int
}

var DefaultOptions = Options{
	MaxGenerationBytes: 64 << 20,
	CompactionRatio:    0.4,
	SyncEvery:          0,
	WriteBufferSize:    64 << 10,
	ReadBufferSize:     64 << 10,
}

type Option func(*Options)

func WithMaxGenerationBytes(n int64) Option {
	return func(o *Options) {
		o.MaxGenerationBytes = n
	}
}

func WithCompactionRatio(r float64) Option {
	return func(o *Options) {
		o.CompactionRatio = r
	}
}

func WithSyncEvery(n int) Option {
	return func(o *Options) {
		o.SyncEvery = n
	}
}

func WithWriteBufferSize(n int) Option {
	return func(o *Options) {
		o.WriteBufferSize = n
	}
}

func WithReadBufferSize(n int) Option {
	return func(o *Options) {
		o.ReadBufferSize = n
	}
}
