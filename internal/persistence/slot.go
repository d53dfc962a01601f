package persistence

import "context"

// Slot is a single-key string store, the server side counterpart of the
// browser's localStorage. Get returns ErrNotFound for a key never written.
type Slot interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
}
