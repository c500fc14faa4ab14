package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"lumapost/domain/model"
	"lumapost/domain/repository"
	"lumapost/infrastructure/logger"
)

const (
	tiktokVideoURLPrefix   = "https://tiktok.com/@user/video/"
	unknownPublishErrorMsg = "Unknown error during publication"
)

// WebhookResult describes what Process did with one event.
type WebhookResult struct {
	Outcome    model.WebhookOutcome
	ScheduleID string
	Strategy   model.LookupStrategy
	Previous   model.ScheduleStatus
	Status     model.ScheduleStatus
	Detail     string
}

type IWebhookUsecase interface {
	// Process reconciles one publish-status event onto a schedule. Storage
	// failures are reported in the result, never returned.
	Process(ctx context.Context, evt *model.TikTokWebhookEvent) *WebhookResult
	WithBroadcaster(fn func(*model.ScheduleStatusChange)) IWebhookUsecase
	WithPublisher(p repository.IScheduleEventPublisher) IWebhookUsecase
	WithAudit(a repository.IWebhookAudit) IWebhookUsecase
}

type webhookUsecase struct {
	schedules repository.ISchedule
	audit     repository.IWebhookAudit
	publisher repository.IScheduleEventPublisher
	broadcast func(*model.ScheduleStatusChange)
	now       func() time.Time
}

func NewWebhookUsecase(schedules repository.ISchedule, opts ...Option) IWebhookUsecase {
	o := buildOptions(opts)
	return &webhookUsecase{schedules: schedules, now: o.now}
}

func (u *webhookUsecase) WithBroadcaster(fn func(*model.ScheduleStatusChange)) IWebhookUsecase {
	u.broadcast = fn
	return u
}

func (u *webhookUsecase) WithPublisher(p repository.IScheduleEventPublisher) IWebhookUsecase {
	u.publisher = p
	return u
}

func (u *webhookUsecase) WithAudit(a repository.IWebhookAudit) IWebhookUsecase {
	u.audit = a
	return u
}

func (u *webhookUsecase) Process(ctx context.Context, evt *model.TikTokWebhookEvent) *WebhookResult {
	now := u.now().UTC()
	res := &WebhookResult{Outcome: model.WebhookOutcomeUnmatched}
	defer u.record(ctx, evt, res, now)

	lg := logger.GetLogger().
		WithField("publish_id", evt.PublishID).
		WithField("event", evt.Event).
		WithField("status", evt.Status)

	schedule, strategy, err := u.lookup(ctx, evt)
	if schedule == nil {
		switch {
		case err != nil:
			res.Outcome = model.WebhookOutcomeError
			res.Detail = err.Error()
			lg.WithField("error", err).Error("Schedule lookup failed")
		case evt.IsImmediateSuccess():
			// immediate posts are never tracked as schedules
			res.Outcome = model.WebhookOutcomeIgnored
			lg.Debug("No schedule for immediate publish")
		default:
			lg.Warn("No schedule found for webhook")
		}
		return res
	}

	upd := ScheduleUpdateFor(evt, now)
	res.ScheduleID = schedule.ID
	res.Strategy = strategy
	res.Previous = schedule.Status
	res.Status = upd.Status
	lg = lg.WithField("schedule_id", schedule.ID).WithField("strategy", strategy)

	if !schedule.Status.CanTransitionTo(upd.Status) {
		res.Outcome = model.WebhookOutcomeRejectedTransition
		res.Detail = string(schedule.Status) + " -> " + string(upd.Status)
		lg.WithField("from", schedule.Status).WithField("to", upd.Status).Warn(model.ErrInvalidTransition.Error())
		return res
	}

	if err := u.schedules.UpdateStatus(ctx, schedule.ID, schedule.Status, upd); err != nil {
		res.Outcome = model.WebhookOutcomeError
		res.Detail = err.Error()
		lg.WithField("error", err).Error("Failed to update schedule status")
		return res
	}
	res.Outcome = model.WebhookOutcomeMatched
	lg.WithField("new_status", upd.Status).Info("Schedule status updated")

	u.fanOut(ctx, &model.ScheduleStatusChange{
		ScheduleID: schedule.ID,
		UserID:     schedule.UserID,
		PublishID:  evt.PublishID,
		Previous:   schedule.Status,
		Status:     upd.Status,
		TikTokURL:  upd.TikTokURL,
		LastError:  upd.LastError,
		ChangedAt:  now,
	})
	return res
}

// lookup runs the cascade: exact id, fragment after '~', fragment before '~',
// then the user's most recent pending schedule. A failing step is logged and
// the next one tried; the last error is returned only when nothing matched.
func (u *webhookUsecase) lookup(ctx context.Context, evt *model.TikTokWebhookEvent) (*model.Schedule, model.LookupStrategy, error) {
	var lastErr error
	found := func(s *model.Schedule, err error) *model.Schedule {
		if err != nil {
			if !errors.Is(err, model.ErrScheduleNotFound) {
				lastErr = err
				logger.GetLogger().WithField("error", err).Warn("Schedule lookup step failed")
			}
			return nil
		}
		return s
	}

	if s := found(u.schedules.FindByPublishID(ctx, evt.PublishID)); s != nil {
		return s, model.LookupExact, nil
	}
	prefix, suffix := publishIDFragments(evt.PublishID)
	if suffix != "" {
		if s := found(u.schedules.FindByPublishIDFragment(ctx, suffix)); s != nil {
			return s, model.LookupFuzzySuffix, nil
		}
	}
	if prefix != "" {
		if s := found(u.schedules.FindByPublishIDFragment(ctx, prefix)); s != nil {
			return s, model.LookupFuzzyPrefix, nil
		}
	}
	if evt.UserID != "" {
		pending, err := u.schedules.FindPendingByUser(ctx, evt.UserID)
		if s := found(mostRecentPending(pending), err); s != nil {
			return s, model.LookupRecentPending, nil
		}
	}
	return nil, "", lastErr
}

// publishIDFragments splits "<prefix>~<suffix>". Without '~' the whole id is the prefix.
func publishIDFragments(publishID string) (string, string) {
	parts := strings.Split(publishID, "~")
	if len(parts) < 2 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

func mostRecentPending(schedules []*model.Schedule) *model.Schedule {
	pending := make([]*model.Schedule, 0, len(schedules))
	for _, s := range schedules {
		if s.Status == model.ScheduleStatusQueued || s.Status == model.ScheduleStatusScheduled {
			pending = append(pending, s)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].ScheduledAt > pending[j].ScheduledAt
	})
	return pending[0]
}

// ScheduleUpdateFor maps a normalized provider status to the schedule write.
func ScheduleUpdateFor(evt *model.TikTokWebhookEvent, now time.Time) model.ScheduleUpdate {
	upd := model.ScheduleUpdate{UpdatedAt: now}
	switch evt.Status {
	case model.TikTokStatusPublished:
		upd.Status = model.ScheduleStatusPublished
		switch {
		case evt.ShareURL != "":
			url := evt.ShareURL
			upd.TikTokURL = &url
		case evt.VideoID != "":
			url := tiktokVideoURLPrefix + evt.VideoID
			upd.TikTokURL = &url
		}
	case model.TikTokStatusFailed:
		upd.Status = model.ScheduleStatusFailed
		msg := evt.ErrorMessage
		if msg == "" {
			msg = unknownPublishErrorMsg
		}
		upd.LastError = &msg
	case model.TikTokStatusProcessing:
		upd.Status = model.ScheduleStatusQueued
	default:
		upd.Status = model.ScheduleStatusScheduled
	}
	return upd
}

func (u *webhookUsecase) fanOut(ctx context.Context, change *model.ScheduleStatusChange) {
	if u.broadcast != nil {
		u.broadcast(change)
	}
	if u.publisher != nil {
		if err := u.publisher.PublishScheduleStatus(ctx, change); err != nil {
			logger.GetLogger().
				WithField("error", err).
				WithField("schedule_id", change.ScheduleID).
				Warn("Failed to publish schedule status event")
		}
	}
}

func (u *webhookUsecase) record(ctx context.Context, evt *model.TikTokWebhookEvent, res *WebhookResult, receivedAt time.Time) {
	if u.audit == nil {
		return
	}
	a := &model.WebhookAudit{
		PublishID:  evt.PublishID,
		EventType:  evt.Event,
		Status:     evt.Status,
		Outcome:    res.Outcome,
		ReceivedAt: receivedAt,
	}
	if res.ScheduleID != "" {
		id := res.ScheduleID
		a.ScheduleID = &id
	}
	if res.Strategy != "" {
		s := string(res.Strategy)
		a.Strategy = &s
	}
	if res.Detail != "" {
		d := res.Detail
		a.Detail = &d
	}
	if err := u.audit.Record(ctx, a); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Failed to record webhook audit")
	}
}
