package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/example/nazolog/internal/persistence"
	"github.com/example/nazolog/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Storage keeps slot values in a SQLite database file.
type Storage struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// Open connects to the SQLite database at dsn. Call Migrate before use.
func Open(dsn string) (*Storage, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("sqlite: dsn is required")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", dsn, err)
	}
	// A single connection serialises writers and keeps in-memory databases alive.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", pragma, err)
		}
	}

	return &Storage{db: db, logger: slog.Default(), now: time.Now}, nil
}

// WithLogger sets the logger used while migrating.
func (s *Storage) WithLogger(logger *slog.Logger) *Storage {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Close releases the underlying database handle.
func (s *Storage) Close() error {
	return s.db.Close()
}

// Migrate applies pending schema migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	if _, err := migration.Run(ctx, s.db, migrationsFS, "migrations", s.logger); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

// Get returns the value stored under key.
func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	const query = `SELECT value FROM slots WHERE key = ?`

	var value string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", persistence.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("sqlite: get slot %s: %w", key, err)
	}
	return value, nil
}

// Put replaces the value stored under key.
func (s *Storage) Put(ctx context.Context, key, value string) error {
	const upsert = `
		INSERT INTO slots (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	if _, err := s.db.ExecContext(ctx, upsert, key, value, s.now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("sqlite: put slot %s: %w", key, err)
	}
	return nil
}

var _ persistence.Slot = (*Storage)(nil)
