// Package redis stores slot values as plain Redis strings.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/example/nazolog/internal/persistence"
)

// Config holds connection parameters for the Redis slot store.
type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // prepended to every slot key
}

// Store implements persistence.Slot on top of a Redis client.
type Store struct {
	client *redis.Client
	prefix string
}

// New connects to Redis and verifies the connection with a PING.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis: addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.Addr, err)
	}
	return NewWithClient(client, cfg.Prefix), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", persistence.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis: get %s: %w", key, err)
	}
	return value, nil
}

// Put replaces the value stored under key. Slot values never expire.
func (s *Store) Put(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}
	return nil
}

var _ persistence.Slot = (*Store)(nil)
