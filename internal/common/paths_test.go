package common

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogNameRoundTrip(t *testing.T) {
	for _, gen := range []GenerationID{0, 1, 42, 1 << 40} {
		name := LogName(gen)
		got, ok := ParseLogName(name)
		require.True(t, ok, "name %q", name)
		require.Equal(t, gen, got)
	}
}

func TestParseLogNameRejectsOtherFiles(t *testing.T) {
	for _, name := range []string{"LOCK", "foo.log", "12.sst", "12.log.tmp", ".log", "12log"} {
		_, ok := ParseLogName(name)
		require.False(t, ok, "name %q", name)
	}
}

func TestLogPathJoinsDir(t *testing.T) {
	require.Equal(t, filepath.Join("data", "7.log"), LogPath("data", 7))
}
