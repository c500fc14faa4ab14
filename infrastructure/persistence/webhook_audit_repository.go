package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"lumapost/domain/model"
	"lumapost/domain/repository"
)

// WebhookAuditRepository appends to tiktok_webhook_audit (PostgreSQL)
type WebhookAuditRepository struct {
	db *sql.DB
}

func NewWebhookAuditRepository(db *sql.DB) repository.IWebhookAudit {
	return &WebhookAuditRepository{db: db}
}

func (r *WebhookAuditRepository) Record(ctx context.Context, a *model.WebhookAudit) error {
	if a.ReceivedAt.IsZero() {
		a.ReceivedAt = time.Now().UTC()
	}
	q := `INSERT INTO tiktok_webhook_audit (publish_id, event_type, status, outcome, schedule_id, strategy, detail, received_at)
          VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id`
	err := r.db.QueryRowContext(ctx, q,
		a.PublishID, a.EventType, a.Status, string(a.Outcome),
		nullString(a.ScheduleID), nullString(a.Strategy), nullString(a.Detail), a.ReceivedAt,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("record webhook audit: %w", err)
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
