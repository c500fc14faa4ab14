package memory

import (
	"context"
	"sync"

	"lumapost/domain/model"
	"lumapost/domain/repository"
)

// SessionStore keeps hand-off sessions in process memory.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]model.TikTokSession
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]model.TikTokSession)}
}

var _ repository.ISessionStore = (*SessionStore)(nil)

func (s *SessionStore) Save(_ context.Context, session *model.TikTokSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = *session
	return nil
}

func (s *SessionStore) Take(_ context.Context, token string) (*model.TikTokSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	delete(s.sessions, token)
	return &sess, nil
}

// Len reports how many sessions are stored.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
