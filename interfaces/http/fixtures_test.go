package http

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"lumapost/domain/model"
	"lumapost/infrastructure/identity"
	"lumapost/infrastructure/persistence/memory"
	"lumapost/interfaces/middleware"
	"lumapost/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type stubTikTokClient struct {
	mu          sync.Mutex
	exchanges   int
	exchangeErr error
	refreshErr  error
}

func (s *stubTikTokClient) AuthorizeURL(state string) string {
	return "https://www.tiktok.com/v2/auth/authorize/?client_key=ck&state=" + state
}

func (s *stubTikTokClient) ExchangeCode(_ context.Context, code string) (*model.TikTokTokenData, error) {
	s.mu.Lock()
	s.exchanges++
	s.mu.Unlock()
	if s.exchangeErr != nil {
		return nil, s.exchangeErr
	}
	return &model.TikTokTokenData{AccessToken: "act." + code, RefreshToken: "rft." + code, ExpiresIn: 86400, OpenID: "open-1", Scope: "user.info.basic"}, nil
}

func (s *stubTikTokClient) RefreshToken(_ context.Context, refreshToken string) (*model.TikTokTokenData, error) {
	if s.refreshErr != nil {
		return nil, s.refreshErr
	}
	return &model.TikTokTokenData{AccessToken: "act.refreshed", RefreshToken: refreshToken, ExpiresIn: 3600}, nil
}

func (s *stubTikTokClient) FetchUserInfo(_ context.Context, _ string) (*model.TikTokUserInfo, error) {
	return &model.TikTokUserInfo{DisplayName: "Luma Creator", Username: "luma"}, nil
}

func (s *stubTikTokClient) exchangeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exchanges
}

type failingProfiles struct {
	*memory.UserProfileStore
}

func (failingProfiles) MergeTikTok(context.Context, string, model.TikTokConnection) error {
	return errors.New("document store unavailable")
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type authFixture struct {
	client   *stubTikTokClient
	sessions *memory.SessionStore
	profiles *memory.UserProfileStore
	clock    *testClock
	router   *gin.Engine
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := &authFixture{
		client:   &stubTikTokClient{},
		sessions: memory.NewSessionStore(),
		profiles: memory.NewUserProfileStore(),
		clock:    &testClock{t: time.Now()},
	}
	verifier := identity.NewJWTVerifier(testSecret)
	sessionUC := usecase.NewSessionUsecase(f.sessions, f.profiles, verifier, usecase.WithClock(f.clock.Now))
	tiktokUC := usecase.NewTikTokUsecase(f.client, sessionUC, f.profiles, "mobile_", usecase.WithClock(f.clock.Now))

	auth := NewTikTokAuthHandler(tiktokUC, sessionUC, testDeepLinkBase)
	conn := NewTikTokConnectionHandler(tiktokUC)

	r := gin.New()
	r.GET("/auth/tiktok/redirect", auth.Redirect)
	r.GET("/auth/tiktok/callback", auth.Callback)
	r.POST("/auth/tiktok/session", auth.Session)
	api := r.Group("/api", middleware.Auth(verifier))
	api.POST("/tiktok/exchange", conn.Exchange)
	api.POST("/tiktok/refresh", conn.Refresh)
	api.GET("/tiktok/status", conn.Status)
	api.DELETE("/tiktok", conn.Disconnect)
	f.router = r
	return f
}

func identityToken(t *testing.T, uid string) string {
	t.Helper()
	tok, err := identity.NewToken(testSecret, uid, time.Hour)
	require.NoError(t, err)
	return tok
}
