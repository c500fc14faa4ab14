package repository

import (
	"context"

	"lumapost/domain/model"
)

// ISchedule defines the schedule lookups and writes used by webhook reconciliation.
// Finders return model.ErrScheduleNotFound when nothing matches.
type ISchedule interface {
	FindByPublishID(ctx context.Context, publishID string) (*model.Schedule, error)
	// FindByPublishIDFragment matches schedules whose publish id contains fragment.
	FindByPublishIDFragment(ctx context.Context, fragment string) (*model.Schedule, error)
	// FindPendingByUser lists the user's queued and scheduled schedules in no particular order.
	FindPendingByUser(ctx context.Context, userID string) ([]*model.Schedule, error)
	// UpdateStatus applies upd only while the stored status still equals expected,
	// otherwise returns model.ErrConcurrentUpdate.
	UpdateStatus(ctx context.Context, scheduleID string, expected model.ScheduleStatus, upd model.ScheduleUpdate) error
}

// IWebhookAudit appends processed webhook outcomes
type IWebhookAudit interface {
	Record(ctx context.Context, audit *model.WebhookAudit) error
}

// IScheduleEventPublisher pushes applied schedule status changes to a message bus
type IScheduleEventPublisher interface {
	PublishScheduleStatus(ctx context.Context, change *model.ScheduleStatusChange) error
}
