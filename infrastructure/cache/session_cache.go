package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lumapost/domain/model"
	"lumapost/domain/repository"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "tiktok_sessions:"

// sessionGrace keeps a session readable past its local expiry so the
// redeemer can report "expired" rather than "not found".
const sessionGrace = 10 * time.Minute

// SessionCache stores hand-off sessions in Redis as JSON
type SessionCache struct {
	client *redis.Client
	now    func() time.Time
}

func NewSessionCache(client *redis.Client) repository.ISessionStore {
	return &SessionCache{client: client, now: time.Now}
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

func sessionTTL(s *model.TikTokSession, now time.Time) time.Duration {
	return s.Remaining(now) + sessionGrace
}

func (c *SessionCache) Save(ctx context.Context, session *model.TikTokSession) error {
	if c.client == nil {
		return errors.New("redis client not initialized")
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := c.client.Set(ctx, sessionKey(session.Token), payload, sessionTTL(session, c.now())).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Take uses GETDEL so only one caller can ever receive a session.
func (c *SessionCache) Take(ctx context.Context, token string) (*model.TikTokSession, error) {
	if c.client == nil {
		return nil, errors.New("redis client not initialized")
	}
	raw, err := c.client.GetDel(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, model.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("take session: %w", err)
	}
	var session model.TikTokSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}
