package model

import "time"

type ScheduleStatus string

const (
	ScheduleStatusScheduled ScheduleStatus = "scheduled"
	ScheduleStatusQueued    ScheduleStatus = "queued"
	ScheduleStatusPublished ScheduleStatus = "published"
	ScheduleStatusFailed    ScheduleStatus = "failed"
)

// scheduleTransitions lists the statuses each status may move to. Re-applying
// the same status is allowed so redelivered webhooks stay idempotent.
var scheduleTransitions = map[ScheduleStatus]map[ScheduleStatus]struct{}{
	ScheduleStatusScheduled: {
		ScheduleStatusScheduled: {},
		ScheduleStatusQueued:    {},
		ScheduleStatusPublished: {},
		ScheduleStatusFailed:    {},
	},
	ScheduleStatusQueued: {
		ScheduleStatusQueued:    {},
		ScheduleStatusPublished: {},
		ScheduleStatusFailed:    {},
	},
	ScheduleStatusPublished: {
		ScheduleStatusPublished: {},
	},
	ScheduleStatusFailed: {
		ScheduleStatusFailed: {},
	},
}

// Known reports whether s is one of the four lifecycle statuses.
func (s ScheduleStatus) Known() bool {
	_, ok := scheduleTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is allowed.
// Records written by older clients may carry a status outside the table;
// those accept any known target.
func (s ScheduleStatus) CanTransitionTo(next ScheduleStatus) bool {
	if !next.Known() {
		return false
	}
	allowed, ok := scheduleTransitions[s]
	if !ok {
		return true
	}
	_, ok = allowed[next]
	return ok
}

// Schedule is one submitted publish job. ScheduledAt is a ms epoch extracted
// best-effort from whatever shape the record stores; 0 when unknown.
type Schedule struct {
	ID          string         `json:"id"`
	UserID      string         `json:"userId"`
	PublishID   string         `json:"publishId,omitempty"`
	Status      ScheduleStatus `json:"status"`
	ScheduledAt int64          `json:"scheduledAt"`
	LastError   *string        `json:"lastError,omitempty"`
	TikTokURL   *string        `json:"tiktokUrl,omitempty"`
	UpdatedAt   *time.Time     `json:"updatedAt,omitempty"`
}

// ScheduleUpdate is the set of fields the reconciler writes on a match.
type ScheduleUpdate struct {
	Status    ScheduleStatus
	LastError *string
	TikTokURL *string
	UpdatedAt time.Time
}

// ScheduleStatusChange describes an applied update, used for fan-out.
type ScheduleStatusChange struct {
	ScheduleID string         `json:"schedule_id"`
	UserID     string         `json:"user_id"`
	PublishID  string         `json:"publish_id"`
	Previous   ScheduleStatus `json:"previous_status"`
	Status     ScheduleStatus `json:"status"`
	TikTokURL  *string        `json:"tiktok_url,omitempty"`
	LastError  *string        `json:"last_error,omitempty"`
	ChangedAt  time.Time      `json:"changed_at"`
}
