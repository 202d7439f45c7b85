package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"citrine/internal/common"
)

func TestRotationRepointsNewWrites(t *testing.T) {
	e, err := Open(t.TempDir(), WithMaxGenerationBytes(1))
	require.NoError(t, err)
	defer e.Close()

	require.NoError(t, e.Put([]byte("first"), []byte("1")))
	require.NoError(t, e.Put([]byte("second"), []byte("2")))

	// The first record stays where it landed even though its generation
	// has been sealed since.
	loc, ok := e.index.Get([]byte("first"))
	require.True(t, ok)
	require.Equal(t, common.GenerationID(0), loc.Gen)
	require.Equal(t, int64(0), loc.Offset)
	require.Equal(t, uint64(1), loc.Seq)

	loc, ok = e.index.Get([]byte("second"))
	require.True(t, ok)
	require.Equal(t, common.GenerationID(1), loc.Gen)
	require.Equal(t, int64(0), loc.Offset)
	require.Equal(t, uint64(2), loc.Seq)
}

func TestCompactionRepointsIndex(t *testing.T) {
	e, err := Open(t.TempDir(), WithMaxGenerationBytes(1))
	require.NoError(t, err)
	defer e.Close()

	require.NoError(t, e.Put([]byte("keep"), []byte("v")))
	require.NoError(t, e.Put([]byte("other"), []byte("v")))

	_, err = e.Compact()
	require.NoError(t, err)

	// Both survivors now resolve into the compaction output with their
	// original sequence numbers.
	kl, ok := e.index.Get([]byte("keep"))
	require.True(t, ok)
	ol, ok := e.index.Get([]byte("other"))
	require.True(t, ok)
	require.Equal(t, kl.Gen, ol.Gen)
	require.Equal(t, uint64(1), kl.Seq)
	require.Equal(t, uint64(2), ol.Seq)

	val, err := e.Get([]byte("keep"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), val)
}
