package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/nazolog/internal/persistence"
	"github.com/example/nazolog/internal/persistence/sqlite"
)

// NewSQLiteSlot returns a migrated slot store in a temporary database file.
// The storage is closed automatically when the test ends.
func NewSQLiteSlot(tb testing.TB) *sqlite.Storage {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "nazolog.db")
	storage, err := sqlite.Open(path)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	tb.Cleanup(func() {
		_ = storage.Close()
	})

	if err := storage.Migrate(context.Background()); err != nil {
		tb.Fatalf("failed to migrate storage: %v", err)
	}
	return storage
}

// NewSQLiteGateway wraps a fresh SQLite slot in a persistence gateway.
func NewSQLiteGateway(tb testing.TB, key string) *persistence.Gateway {
	tb.Helper()
	if key == "" {
		key = "nazoRecords"
	}
	gw, err := persistence.NewGateway(NewSQLiteSlot(tb), key, nil)
	if err != nil {
		tb.Fatalf("failed to build gateway: %v", err)
	}
	return gw
}
