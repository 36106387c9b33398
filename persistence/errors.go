package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when an insert violates a uniqueness
	// constraint on the backing store.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrStaleState is returned when an update's previous-state guard no
	// longer matches the stored record.
	ErrStaleState = errors.New("persistence: stale state")
)
