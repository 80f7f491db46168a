package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"
)

//go:embed scripts/*.sql
var bootstrapFS embed.FS

type migration struct {
	version int
	file    string
}

// migrations run in order; each one records its version in pagewise_meta.
var migrations = []migration{
	{version: 1, file: "scripts/initdb.sql"},
	{version: 2, file: "scripts/002_sessions_updated_at.sql"},
}

// LatestSchemaVersion is the version EnsureBootstrapped brings a database to.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// EnsureBootstrapped applies every migration newer than the recorded version.
func EnsureBootstrapped(ctx context.Context, db *sql.DB) error {

	ctxBoot, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	current, err := SchemaVersion(ctxBoot, db)
	if err != nil {
		return err
	}

	for _, m := range pendingMigrations(current) {
		if err := applyMigration(ctxBoot, db, m); err != nil {
			return err
		}
	}
	return nil
}

// SchemaVersion returns the highest applied migration, or 0 on an empty database.
func SchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var exists bool
	err := db.QueryRowContext(ctx, `
		SELECT EXISTS (
		  SELECT 1 FROM information_schema.tables
		  WHERE table_name = 'pagewise_meta'
		)`).
		Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("meta table check failed: %w", err)
	}
	if !exists {
		return 0, nil
	}

	var version int
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM pagewise_meta`).Scan(&version); err != nil {
		return 0, fmt.Errorf("meta version check failed: %w", err)
	}
	return version, nil
}

func pendingMigrations(current int) []migration {
	var out []migration
	for _, m := range migrations {
		if m.version > current {
			out = append(out, m)
		}
	}
	return out
}

func applyMigration(ctx context.Context, db *sql.DB, m migration) error {
	sqlBytes, err := bootstrapFS.ReadFile(m.file)
	if err != nil {
		return fmt.Errorf("read %s: %w", m.file, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, string(sqlBytes)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("migration %d: %w", m.version, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO pagewise_meta (version) VALUES ($1) ON CONFLICT (version) DO NOTHING`, m.version); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration %d: %w", m.version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %d: %w", m.version, err)
	}
	return nil
}
