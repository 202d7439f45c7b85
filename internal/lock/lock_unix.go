//go:build !windows

package lock

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// FileLock holds an exclusive advisory flock on a store directory. The
// underlying descriptor stays open until Release.
type FileLock struct {
	file *os.File
}

// Acquire takes the directory lock without blocking. It fails with
// ErrAlreadyLocked while any other instance holds it.
func Acquire(dir string) (*FileLock, error) {
	path := filepath.Join(dir, lockFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("lock: open %s: %w", path, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if err == unix.EWOULDBLOCK {
			return nil, ErrAlreadyLocked
		}
		return nil, fmt.Errorf("lock: flock %s: %w", path, err)
	}
	return &FileLock{file: f}, nil
}

// Release drops the lock. The lock file itself is left in place; only the
// flock on it matters. Safe to call multiple times.
func (l *FileLock) Release() error {
	if l.file == nil {
		return nil
	}
	err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	cerr := l.file.Close()
	l.file = nil
	if err != nil {
		return err
	}
	return cerr
}
