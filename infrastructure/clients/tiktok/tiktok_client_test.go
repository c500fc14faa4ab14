package tiktok_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"lumapost/domain/model"
	"lumapost/infrastructure/clients/tiktok"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(srv *httptest.Server) *tiktok.Client {
	c := tiktok.NewTikTokClient(tiktok.Config{
		ClientKey:    "ck_123",
		ClientSecret: "cs_456",
		RedirectURI:  "https://api.example.com/auth/tiktok/callback",
		Scopes:       []string{"user.info.basic", "video.publish", "video.upload"},
		AuthorizeURL: "https://www.tiktok.com/v2/auth/authorize/",
		TokenURL:     srv.URL + "/v2/oauth/token/",
		UserInfoURL:  srv.URL + "/v2/user/info/",
		Timeout:      2 * time.Second,
	})
	return c.(*tiktok.Client)
}

func TestAuthorizeURL(t *testing.T) {
	c := tiktok.NewTikTokClient(tiktok.Config{
		ClientKey:    "ck_123",
		RedirectURI:  "https://api.example.com/auth/tiktok/callback",
		Scopes:       []string{"user.info.basic", "video.publish"},
		AuthorizeURL: "https://www.tiktok.com/v2/auth/authorize/",
	})

	raw := c.AuthorizeURL("mobile_abc")
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "www.tiktok.com", u.Host)
	assert.Equal(t, "/v2/auth/authorize/", u.Path)
	q := u.Query()
	assert.Equal(t, "ck_123", q.Get("client_key"))
	assert.Equal(t, "user.info.basic,video.publish", q.Get("scope"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "https://api.example.com/auth/tiktok/callback", q.Get("redirect_uri"))
	assert.Equal(t, "mobile_abc", q.Get("state"))
}

func TestExchangeCode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/oauth/token/", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "ck_123", r.PostForm.Get("client_key"))
		assert.Equal(t, "cs_456", r.PostForm.Get("client_secret"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "https://api.example.com/auth/tiktok/callback", r.PostForm.Get("redirect_uri"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"act.1","refresh_token":"rft.1","expires_in":86400,"token_type":"Bearer","scope":"user.info.basic","open_id":"open-1"}`)
	}))
	defer srv.Close()

	tok, err := newTestClient(srv).ExchangeCode(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "act.1", tok.AccessToken)
	assert.Equal(t, "rft.1", tok.RefreshToken)
	assert.Equal(t, int64(86400), tok.ExpiresIn)
	assert.Equal(t, "open-1", tok.OpenID)
	assert.Equal(t, "user.info.basic", tok.Scope)
}

func TestExchangeCode_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "error field with 200",
			status: http.StatusOK,
			body:   `{"error":"invalid_grant","error_description":"Authorization code is expired."}`,
			check: func(t *testing.T, err error) {
				var authErr *model.UpstreamAuthError
				require.True(t, errors.As(err, &authErr))
				assert.Equal(t, "invalid_grant", authErr.Code)
				assert.Equal(t, "Authorization code is expired.", authErr.Message())
			},
		},
		{
			name:   "non-2xx json",
			status: http.StatusBadRequest,
			body:   `{"message":"bad"}`,
			check: func(t *testing.T, err error) {
				var authErr *model.UpstreamAuthError
				require.True(t, errors.As(err, &authErr))
				assert.Equal(t, http.StatusBadRequest, authErr.StatusCode)
				assert.Equal(t, "HTTP 400", authErr.Message())
			},
		},
		{
			name:   "non-json body",
			status: http.StatusBadGateway,
			body:   `<html>upstream down</html>`,
			check: func(t *testing.T, err error) {
				var protoErr *model.UpstreamProtocolError
				require.True(t, errors.As(err, &protoErr))
				assert.Equal(t, http.StatusBadGateway, protoErr.StatusCode)
				assert.Contains(t, protoErr.Body, "upstream down")
			},
		},
		{
			name:   "missing access token",
			status: http.StatusOK,
			body:   `{"open_id":"x"}`,
			check: func(t *testing.T, err error) {
				var authErr *model.UpstreamAuthError
				require.True(t, errors.As(err, &authErr))
				assert.Equal(t, "missing_access_token", authErr.Code)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			tok, err := newTestClient(srv).ExchangeCode(context.Background(), "c")
			require.Error(t, err)
			assert.Nil(t, tok)
			tt.check(t, err)
		})
	}
}

func TestRefreshToken_SendsRefreshGrant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "rft.old", r.PostForm.Get("refresh_token"))
		assert.Empty(t, r.PostForm.Get("code"))
		_, _ = io.WriteString(w, `{"access_token":"act.2","refresh_token":"rft.2","expires_in":3600,"open_id":"open-1"}`)
	}))
	defer srv.Close()

	tok, err := newTestClient(srv).RefreshToken(context.Background(), "rft.old")
	require.NoError(t, err)
	assert.Equal(t, "act.2", tok.AccessToken)
	assert.Equal(t, "rft.2", tok.RefreshToken)
}

func TestFetchUserInfo_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer act.1", r.Header.Get("Authorization"))
		assert.Equal(t, tiktok.UserInfoFields, r.URL.Query().Get("fields"))
		_, _ = io.WriteString(w, `{"data":{"user":{"open_id":"open-1","display_name":"Luma","username":"luma.app","avatar_url":"https://cdn/a.jpg","follower_count":12,"following_count":3,"likes_count":40,"video_count":7,"bio_description":"hi","is_verified":true}},"error":{"code":"ok","message":"","log_id":"l1"}}`)
	}))
	defer srv.Close()

	info, err := newTestClient(srv).FetchUserInfo(context.Background(), "act.1")
	require.NoError(t, err)
	assert.Equal(t, &model.TikTokUserInfo{
		DisplayName:    "Luma",
		Username:       "luma.app",
		AvatarURL:      "https://cdn/a.jpg",
		FollowerCount:  12,
		FollowingCount: 3,
		LikesCount:     40,
		VideoCount:     7,
		BioDescription: "hi",
		IsVerified:     true,
	}, info)
}

func TestFetchUserInfo_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"provider error code", http.StatusOK, `{"data":{},"error":{"code":"access_token_invalid","message":"The access token is invalid"}}`},
		{"server error", http.StatusInternalServerError, `{"data":{}}`},
		{"not json", http.StatusOK, `nope`},
		{"empty user", http.StatusOK, `{"data":{"user":{}},"error":{"code":"ok"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			info, err := newTestClient(srv).FetchUserInfo(context.Background(), "act.1")
			assert.Nil(t, info)
			var profileErr *model.ProfileFetchError
			assert.True(t, errors.As(err, &profileErr))
		})
	}
}

func TestFetchUserInfo_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := newTestClient(srv)
	srv.Close()

	_, err := c.FetchUserInfo(context.Background(), "act.1")
	var profileErr *model.ProfileFetchError
	assert.True(t, errors.As(err, &profileErr))
}
