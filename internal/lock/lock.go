// Package lock guards a store directory against concurrent engine instances.
package lock

import "errors"

// lockFileName is created inside the data directory and held for the
// lifetime of the engine.
const lockFileName = "LOCK"

// ErrAlreadyLocked reports that another engine instance holds the directory.
var ErrAlreadyLocked = errors.New("lock: directory already in use")
