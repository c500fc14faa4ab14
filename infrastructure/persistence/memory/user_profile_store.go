package memory

import (
	"context"
	"sync"

	"lumapost/domain/model"
	"lumapost/domain/repository"
)

// UserProfileStore keeps the tiktok sub-document per user. Other profile
// fields are opaque to this service and kept under Extra.
type UserProfileStore struct {
	mu    sync.Mutex
	users map[string]*userProfile
}

type userProfile struct {
	TikTok *model.TikTokConnection
	Extra  map[string]interface{}
}

func NewUserProfileStore() *UserProfileStore {
	return &UserProfileStore{users: make(map[string]*userProfile)}
}

var _ repository.IUserProfile = (*UserProfileStore)(nil)

// SetField sets an unrelated profile field.
func (s *UserProfileStore) SetField(userID, key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.profile(userID)
	p.Extra[key] = value
}

// Field returns an unrelated profile field.
func (s *UserProfileStore) Field(userID, key string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.users[userID]
	if !ok {
		return nil, false
	}
	v, ok := p.Extra[key]
	return v, ok
}

func (s *UserProfileStore) profile(userID string) *userProfile {
	p, ok := s.users[userID]
	if !ok {
		p = &userProfile{Extra: map[string]interface{}{}}
		s.users[userID] = p
	}
	return p
}

func (s *UserProfileStore) MergeTikTok(_ context.Context, userID string, conn model.TikTokConnection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := conn
	s.profile(userID).TikTok = &c
	return nil
}

func (s *UserProfileStore) GetTikTok(_ context.Context, userID string) (*model.TikTokConnection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.users[userID]
	if !ok || p.TikTok == nil {
		return nil, model.ErrConnectionNotFound
	}
	c := *p.TikTok
	return &c, nil
}

func (s *UserProfileStore) UpdateTikTokTokens(_ context.Context, userID string, update model.TikTokTokenUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.users[userID]
	if !ok || p.TikTok == nil {
		return model.ErrConnectionNotFound
	}
	refreshed := update.LastRefreshed
	p.TikTok.AccessToken = update.AccessToken
	p.TikTok.RefreshToken = update.RefreshToken
	p.TikTok.TokenExpiry = update.TokenExpiry
	p.TikTok.LastRefreshed = &refreshed
	return nil
}

func (s *UserProfileStore) RemoveTikTok(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.users[userID]; ok {
		p.TikTok = nil
	}
	return nil
}
