// Package migration applies versioned SQL migrations to a SQLite database.
//
// Migration files are named {version}_{description}.sql (for example
// "001_create_slots.sql") and are read from an fs.FS, usually an embedded
// directory. Applied versions are tracked in the schema_migrations table
// together with the SHA-256 checksum of the file that was applied; a file
// whose content changed after being applied is reported as a conflict rather
// than silently re-run.
//
// Example usage:
//
//	if _, err := migration.Run(ctx, db, migrationsFS, "migrations", logger); err != nil {
//		return fmt.Errorf("migrate: %w", err)
//	}
package migration
