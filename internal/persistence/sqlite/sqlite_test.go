package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/example/nazolog/internal/persistence"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	dir := t.TempDir()
	dsn := filepath.Join(dir, "nazolog.db")
	storage, err := Open(dsn)
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}

	t.Cleanup(func() {
		_ = storage.Close()
	})

	if err := storage.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return storage
}

func TestOpen_RequiresDSN(t *testing.T) {
	if _, err := Open("   "); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
}

func TestStorage_GetPut(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	if _, err := storage.Get(ctx, "nazoRecords"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing slot, got %v", err)
	}

	if err := storage.Put(ctx, "nazoRecords", `[{"id":"a"}]`); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := storage.Put(ctx, "nazoRecords", `[]`); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	value, err := storage.Get(ctx, "nazoRecords")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != "[]" {
		t.Fatalf("expected overwritten value, got %q", value)
	}

	if _, err := storage.Get(ctx, "other"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected slots to be independent, got %v", err)
	}
}

func TestStorage_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "nazolog.db")

	first, err := Open(dsn)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := first.Migrate(ctx); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if err := first.Put(ctx, "k", "v"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	second, err := Open(dsn)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer second.Close()
	// Re-running migrations on an up-to-date database is a no-op.
	if err := second.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}
	value, err := second.Get(ctx, "k")
	if err != nil || value != "v" {
		t.Fatalf("expected persisted value, got %q (err %v)", value, err)
	}
}

func TestStorage_WorksBehindGateway(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	gw, err := persistence.NewGateway(storage, "nazoRecords", nil)
	if err != nil {
		t.Fatalf("NewGateway failed: %v", err)
	}
	records := []persistence.Record{{ID: "r1", Title: "t", Date: "2024-01-01", Result: persistence.ResultSuccess, Score: 3, Puzzle: 3, Experience: 3, Quantity: 3, Mystery: 3, Cheerfulness: 3}}
	if err := gw.Save(ctx, records); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got := gw.Load(ctx)
	if len(got) != 1 || got[0].ID != "r1" {
		t.Fatalf("unexpected records %#v", got)
	}
}
