package model

import "time"

type WebhookOutcome string

const (
	WebhookOutcomeMatched            WebhookOutcome = "matched"
	WebhookOutcomeUnmatched          WebhookOutcome = "unmatched"
	WebhookOutcomeIgnored            WebhookOutcome = "ignored"
	WebhookOutcomeRejectedTransition WebhookOutcome = "rejected_transition"
	WebhookOutcomeError              WebhookOutcome = "error"
)

// WebhookAudit is one row of the append-only webhook log.
type WebhookAudit struct {
	ID         int64
	PublishID  string
	EventType  string
	Status     string
	Outcome    WebhookOutcome
	ScheduleID *string
	Strategy   *string
	Detail     *string
	ReceivedAt time.Time
}
