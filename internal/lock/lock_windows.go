//go:build windows

package lock

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileLock holds an exclusive lock on a store directory, implemented as an
// atomically created lock file.
type FileLock struct {
	file *os.File
}

// Acquire takes the directory lock by creating the lock file exclusively.
// It fails with ErrAlreadyLocked when the file already exists.
func Acquire(dir string) (*FileLock, error) {
	path := filepath.Join(dir, lockFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, ErrAlreadyLocked
		}
		return nil, fmt.Errorf("lock: create %s: %w", path, err)
	}
	return &FileLock{file: f}, nil
}

// Release drops the lock. On Windows the lock file must be removed so the
// next Acquire can create it again. Safe to call multiple times.
func (l *FileLock) Release() error {
	if l.file == nil {
		return nil
	}
	name := l.file.Name()
	err := l.file.Close()
	l.file = nil
	os.Remove(name)
	return err
}
