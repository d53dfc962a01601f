package migration

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
)

// Run applies every pending migration found in dir of fsys, in version order.
// Migrations already applied are verified against their recorded checksum.
func Run(ctx context.Context, db *sql.DB, fsys fs.FS, dir string, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "migration")

	migrations, err := Scan(fsys, dir)
	if err != nil {
		return 0, err
	}

	executor := NewExecutor(db)
	if err := executor.InitializeVersionTable(ctx); err != nil {
		return 0, err
	}

	applied, err := executor.Applied(ctx)
	if err != nil {
		return 0, err
	}

	pending := make([]Migration, 0, len(migrations))
	for _, m := range migrations {
		record, ok := applied[m.Version]
		if !ok {
			pending = append(pending, m)
			continue
		}
		if record.Checksum != m.Checksum {
			return 0, newMigrationError(m.Version, m.FilePath, "verify checksum",
				fmt.Errorf("%w: applied %s, file %s", ErrChecksumMismatch, record.Checksum, m.Checksum))
		}
	}

	logger.InfoContext(ctx, "migration status", "applied_count", len(applied), "pending_count", len(pending))

	for i, m := range pending {
		logger.InfoContext(ctx, "applying migration",
			"version", m.Version,
			"description", m.Description,
			"position", fmt.Sprintf("%d/%d", i+1, len(pending)),
		)
		if err := executor.Apply(ctx, m); err != nil {
			logger.ErrorContext(ctx, "migration failed", "version", m.Version, "error", err)
			return i, err
		}
	}

	return len(pending), nil
}
