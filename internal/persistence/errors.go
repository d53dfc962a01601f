package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested slot key does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrMalformed is returned when a stored blob cannot be decoded as a record array.
	ErrMalformed = errors.New("persistence: malformed record blob")
	// ErrStorageWrite wraps any failure to write the record blob back to its slot.
	ErrStorageWrite = errors.New("persistence: storage write failed")
)
