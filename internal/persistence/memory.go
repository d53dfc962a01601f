package persistence

import (
	"context"
	"sync"
)

// MemorySlot keeps slot values in process memory. Values are lost on exit.
type MemorySlot struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemorySlot returns an empty in-memory slot store.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{values: make(map[string]string)}
}

// Get returns the value stored under key.
func (s *MemorySlot) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// Put replaces the value stored under key.
func (s *MemorySlot) Put(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return nil
}
