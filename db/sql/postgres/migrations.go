package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// Migration is one forward-only schema step.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// KVMigrations builds the kv_entries table.
var KVMigrations = []Migration{
	{
		Version: 1,
		Name:    "create kv_entries",
		SQL: `CREATE TABLE IF NOT EXISTS kv_entries (
	namespace  TEXT        NOT NULL,
	key        TEXT        NOT NULL,
	value      BYTEA       NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (namespace, key)
)`,
	},
	{
		Version: 2,
		Name:    "index kv_entries by namespace and update time",
		SQL:     `CREATE INDEX IF NOT EXISTS kv_entries_namespace_updated_idx ON kv_entries (namespace, updated_at)`,
	},
}

// Arbitrary key for pg_advisory_xact_lock so concurrent processes migrate
// one at a time.
const migrationLockKey = 0x726f7763

// Migrate applies every migration newer than the recorded schema version
// and returns how many ran. Each step commits with its version row.
func Migrate(ctx context.Context, db *sql.DB, migrations []Migration) (int, error) {
	if db == nil {
		return 0, fmt.Errorf("postgres: migrate: nil db")
	}
	const ledger = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version    INTEGER     PRIMARY KEY,
	name       TEXT        NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	if _, err := db.ExecContext(ctx, ledger); err != nil {
		return 0, fmt.Errorf("postgres: migrate: %w", err)
	}

	applied := 0
	for _, m := range migrations {
		ran, err := applyOne(ctx, db, m)
		if err != nil {
			return applied, fmt.Errorf("postgres: migrate %d (%s): %w", m.Version, m.Name, err)
		}
		if ran {
			applied++
		}
	}
	return applied, nil
}

func applyOne(ctx context.Context, db *sql.DB, m Migration) (bool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, migrationLockKey); err != nil {
		return false, err
	}
	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, m.Version,
	).Scan(&exists); err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return false, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, m.Version, m.Name,
	); err != nil {
		return false, err
	}
	return true, tx.Commit()
}
