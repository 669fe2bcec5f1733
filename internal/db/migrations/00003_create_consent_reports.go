package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateConsentReports, downCreateConsentReports)
}

func upCreateConsentReports(ctx context.Context, tx *sql.Tx) error {
	var ddl string
	switch dialect {
	case "postgres":
		ddl = `CREATE TABLE IF NOT EXISTS consent_reports (
    id         TEXT PRIMARY KEY,
    visitor    VARCHAR(64) NOT NULL,
    action     VARCHAR(32) NOT NULL,
    payload    TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL
)`
	case "mysql":
		ddl = `CREATE TABLE IF NOT EXISTS consent_reports (
    id         VARCHAR(36) PRIMARY KEY,
    visitor    VARCHAR(64) NOT NULL,
    action     VARCHAR(32) NOT NULL,
    payload    TEXT NOT NULL,
    created_at TIMESTAMP(6) NOT NULL
)`
	default: // sqlite3
		ddl = `CREATE TABLE IF NOT EXISTS consent_reports (
    id         TEXT PRIMARY KEY,
    visitor    TEXT NOT NULL,
    action     TEXT NOT NULL,
    payload    TEXT NOT NULL,
    created_at DATETIME NOT NULL
)`
	}
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create consent_reports table: %w", err)
	}
	_, err := tx.ExecContext(ctx, `CREATE INDEX consent_reports_visitor_idx ON consent_reports (visitor, created_at)`)
	return err
}

func downCreateConsentReports(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS consent_reports`)
	return err
}
