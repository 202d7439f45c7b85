package common

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// LogName returns the file name of a generation log.
func LogName(gen GenerationID) string {
	return fmt.Sprintf("%d.log", gen)
}

// LogPath returns the path of a generation log inside dir.
func LogPath(dir string, gen GenerationID) string {
	return filepath.Join(dir, LogName(gen))
}

// ParseLogName extracts the generation id from a log file name.
// The second return is false for names that are not generation logs.
func ParseLogName(name string) (GenerationID, bool) {
	if !strings.HasSuffix(name, ".log") {
		return 0, false
	}
	n, err := strconv.ParseUint(strings.TrimSuffix(name, ".log"), 10, 64)
	if err != nil {
		return 0, false
	}
	return GenerationID(n), true
}
