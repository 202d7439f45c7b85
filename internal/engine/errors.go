package engine

import "errors"

var (
	// ErrKeyNotFound reports a key with no live record.
	ErrKeyNotFound = errors.New("engine: key not found")

	// ErrEngineClosed reports an operation on a closed store.
	ErrEngineClosed = errors.New("engine: store is closed")

	// ErrEmptyKey reports a put or delete with a zero-length key.
	ErrEmptyKey = errors.New("engine: key must be non-empty")

	// ErrUnexpectedTruncation reports a generation file that ends before a
	// location the index still points at. The file shrank after recovery,
	// outside the engine's control; the damage is reported, never masked.
	ErrUnexpectedTruncation = errors.New("engine: generation shorter than index expects")

	// ErrUnexpectedRecord reports a frame that decodes cleanly but does not
	// match what the index expects at that location.
	ErrUnexpectedRecord = errors.New("engine: record does not match index")
)
