package memory

import (
	"context"
	"strings"
	"sync"

	"lumapost/domain/model"
	"lumapost/domain/repository"
)

// ScheduleStore keeps schedules in insertion order.
type ScheduleStore struct {
	mu        sync.Mutex
	order     []string
	schedules map[string]*model.Schedule
}

func NewScheduleStore() *ScheduleStore {
	return &ScheduleStore{schedules: make(map[string]*model.Schedule)}
}

var _ repository.ISchedule = (*ScheduleStore)(nil)

// Put inserts or replaces a schedule.
func (s *ScheduleStore) Put(schedule model.Schedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schedules[schedule.ID]; !ok {
		s.order = append(s.order, schedule.ID)
	}
	sc := schedule
	s.schedules[schedule.ID] = &sc
}

// Get returns a copy of the schedule with the given id.
func (s *ScheduleStore) Get(id string) (model.Schedule, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.schedules[id]
	if !ok {
		return model.Schedule{}, false
	}
	return *sc, true
}

func (s *ScheduleStore) find(match func(*model.Schedule) bool) (*model.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		sc := s.schedules[id]
		if match(sc) {
			c := *sc
			return &c, nil
		}
	}
	return nil, model.ErrScheduleNotFound
}

func (s *ScheduleStore) FindByPublishID(_ context.Context, publishID string) (*model.Schedule, error) {
	return s.find(func(sc *model.Schedule) bool { return sc.PublishID != "" && sc.PublishID == publishID })
}

func (s *ScheduleStore) FindByPublishIDFragment(_ context.Context, fragment string) (*model.Schedule, error) {
	if fragment == "" {
		return nil, model.ErrScheduleNotFound
	}
	return s.find(func(sc *model.Schedule) bool { return sc.PublishID != "" && strings.Contains(sc.PublishID, fragment) })
}

func (s *ScheduleStore) FindPendingByUser(_ context.Context, userID string) ([]*model.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Schedule
	for _, id := range s.order {
		sc := s.schedules[id]
		if sc.UserID != userID {
			continue
		}
		if sc.Status == model.ScheduleStatusQueued || sc.Status == model.ScheduleStatusScheduled {
			c := *sc
			out = append(out, &c)
		}
	}
	return out, nil
}

func (s *ScheduleStore) UpdateStatus(_ context.Context, scheduleID string, expected model.ScheduleStatus, upd model.ScheduleUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.schedules[scheduleID]
	if !ok {
		return model.ErrScheduleNotFound
	}
	if sc.Status != expected {
		return model.ErrConcurrentUpdate
	}
	updatedAt := upd.UpdatedAt
	sc.Status = upd.Status
	sc.UpdatedAt = &updatedAt
	if upd.LastError != nil {
		sc.LastError = upd.LastError
	}
	if upd.TikTokURL != nil {
		sc.TikTokURL = upd.TikTokURL
	}
	return nil
}
