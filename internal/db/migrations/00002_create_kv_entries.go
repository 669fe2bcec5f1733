package migrations

// kv_entries holds per-visitor preferences (consent decisions, theme). MySQL
// cannot index unbounded TEXT columns, so key columns are VARCHAR there.

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateKVEntries, downCreateKVEntries)
}

func upCreateKVEntries(ctx context.Context, tx *sql.Tx) error {
	var ddl string
	switch dialect {
	case "postgres":
		ddl = `CREATE TABLE IF NOT EXISTS kv_entries (
    namespace   TEXT NOT NULL,
    entry_key   TEXT NOT NULL,
    entry_value TEXT NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (namespace, entry_key)
)`
	case "mysql":
		ddl = `CREATE TABLE IF NOT EXISTS kv_entries (
    namespace   VARCHAR(64) NOT NULL,
    entry_key   VARCHAR(128) NOT NULL,
    entry_value TEXT NOT NULL,
    updated_at  TIMESTAMP(6) NOT NULL,
    PRIMARY KEY (namespace, entry_key)
)`
	default: // sqlite3
		ddl = `CREATE TABLE IF NOT EXISTS kv_entries (
    namespace   TEXT NOT NULL,
    entry_key   TEXT NOT NULL,
    entry_value TEXT NOT NULL,
    updated_at  DATETIME NOT NULL,
    PRIMARY KEY (namespace, entry_key)
)`
	}
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create kv_entries table: %w", err)
	}
	return nil
}

func downCreateKVEntries(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS kv_entries`)
	return err
}
