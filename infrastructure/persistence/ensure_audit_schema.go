package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const createWebhookAuditTable = `CREATE TABLE IF NOT EXISTS tiktok_webhook_audit (
    id BIGSERIAL PRIMARY KEY,
    publish_id TEXT NOT NULL,
    event_type TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT '',
    outcome TEXT NOT NULL,
    schedule_id TEXT,
    strategy TEXT,
    detail TEXT,
    received_at TIMESTAMPTZ NOT NULL
)`

const createWebhookAuditIndex = `CREATE INDEX IF NOT EXISTS idx_tiktok_webhook_audit_publish_id ON tiktok_webhook_audit (publish_id)`

// EnsureWebhookAuditSchema creates the audit table and adds columns introduced after the first release.
// Safe to call at startup.
func EnsureWebhookAuditSchema(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, ddl := range []string{createWebhookAuditTable, createWebhookAuditIndex} {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("ensure webhook audit schema: %w", err)
		}
	}

	checks := []struct {
		table  string
		column string
		ddl    string
	}{
		{"tiktok_webhook_audit", "detail", "ALTER TABLE tiktok_webhook_audit ADD COLUMN detail TEXT"},
	}
	for _, c := range checks {
		exists, err := columnExists(ctx, db, c.table, c.column)
		if err != nil {
			return err
		}
		if !exists {
			if _, err := db.ExecContext(ctx, c.ddl); err != nil {
				return fmt.Errorf("adding column %s.%s failed: %w", c.table, c.column, err)
			}
		}
	}
	return nil
}

func columnExists(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	row := db.QueryRowContext(ctx, `SELECT 1 FROM information_schema.columns WHERE table_name=$1 AND column_name=$2`, table, column)
	var one int
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
