package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Executor applies migrations to a database and tracks them in schema_migrations.
type Executor struct {
	db  *sql.DB
	now func() time.Time
}

// NewExecutor creates a migration executor for db.
func NewExecutor(db *sql.DB) *Executor {
	return &Executor{db: db, now: time.Now}
}

// InitializeVersionTable creates the schema_migrations table if it doesn't exist
func (e *Executor) InitializeVersionTable(ctx context.Context) error {
	const createTableSQL = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL,
			checksum TEXT NOT NULL,
			execution_time_ms INTEGER NOT NULL DEFAULT 0
		)`
	if _, err := e.db.ExecContext(ctx, createTableSQL); err != nil {
		return newMigrationError(0, "", "create schema_migrations table", err)
	}
	return nil
}

// Applied returns applied migrations keyed by version.
func (e *Executor) Applied(ctx context.Context) (map[int]AppliedMigration, error) {
	const querySQL = `
		SELECT version, applied_at, checksum, execution_time_ms
		FROM schema_migrations
		ORDER BY version ASC`

	rows, err := e.db.QueryContext(ctx, querySQL)
	if err != nil {
		return nil, newMigrationError(0, "", "list applied versions", err)
	}
	defer rows.Close()

	applied := make(map[int]AppliedMigration)
	for rows.Next() {
		var (
			m         AppliedMigration
			appliedAt string
			elapsedMs int64
		)
		if err := rows.Scan(&m.Version, &appliedAt, &m.Checksum, &elapsedMs); err != nil {
			return nil, newMigrationError(0, "", "scan applied migration", err)
		}
		m.AppliedAt, _ = time.Parse(time.RFC3339, appliedAt)
		m.ExecutionTime = time.Duration(elapsedMs) * time.Millisecond
		applied[m.Version] = m
	}
	if err := rows.Err(); err != nil {
		return nil, newMigrationError(0, "", "iterate applied migrations", err)
	}
	return applied, nil
}

// Apply runs the statements of m and records it, all in one transaction.
func (e *Executor) Apply(ctx context.Context, m Migration) (err error) {
	start := e.now()

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return newMigrationError(m.Version, m.FilePath, "begin transaction", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i, stmt := range splitStatements(m.SQL) {
		if _, execErr := tx.ExecContext(ctx, stmt); execErr != nil {
			err = newMigrationError(m.Version, m.FilePath, fmt.Sprintf("execute statement %d", i+1),
				fmt.Errorf("%w: %v", ErrMigrationFailed, execErr))
			return err
		}
	}

	const insertSQL = `
		INSERT INTO schema_migrations (version, applied_at, checksum, execution_time_ms)
		VALUES (?, ?, ?, ?)`
	elapsed := e.now().Sub(start)
	if _, execErr := tx.ExecContext(ctx, insertSQL, m.Version, e.now().UTC().Format(time.RFC3339), m.Checksum, elapsed.Milliseconds()); execErr != nil {
		err = newMigrationError(m.Version, m.FilePath, "record migration", execErr)
		return err
	}

	if commitErr := tx.Commit(); commitErr != nil {
		err = newMigrationError(m.Version, m.FilePath, "commit transaction", commitErr)
		return err
	}
	return nil
}
