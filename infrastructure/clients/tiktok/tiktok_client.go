package tiktok

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lumapost/domain/model"
	"lumapost/domain/repository"
	"lumapost/infrastructure/logger"

	"github.com/google/go-querystring/query"
	"golang.org/x/oauth2"
)

// UserInfoFields is the fixed profile field list requested after every exchange.
const UserInfoFields = "open_id,avatar_url,display_name,username,follower_count,following_count,likes_count,video_count,bio_description,is_verified"

const maxBodyLog = 512

// Config holds TikTok OAuth client settings
type Config struct {
	ClientKey    string
	ClientSecret string
	RedirectURI  string
	Scopes       []string
	AuthorizeURL string
	TokenURL     string
	UserInfoURL  string
	Timeout      time.Duration
}

// Client implements TikTok OAuth operations
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewTikTokClient(cfg Config) repository.ITikTokClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{cfg: cfg, httpClient: &http.Client{Timeout: cfg.Timeout}}
}

type authorizeParams struct {
	ClientKey    string `url:"client_key"`
	Scope        string `url:"scope"`
	ResponseType string `url:"response_type"`
	RedirectURI  string `url:"redirect_uri"`
	State        string `url:"state"`
}

type tokenForm struct {
	ClientKey    string `url:"client_key"`
	ClientSecret string `url:"client_secret"`
	Code         string `url:"code,omitempty"`
	GrantType    string `url:"grant_type"`
	RedirectURI  string `url:"redirect_uri,omitempty"`
	RefreshToken string `url:"refresh_token,omitempty"`
}

type userInfoParams struct {
	Fields string `url:"fields"`
}

type tokenResponse struct {
	model.TikTokTokenData
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	LogID            string `json:"log_id"`
}

type userInfoResponse struct {
	Data struct {
		User struct {
			OpenID         string `json:"open_id"`
			AvatarURL      string `json:"avatar_url"`
			DisplayName    string `json:"display_name"`
			Username       string `json:"username"`
			FollowerCount  int64  `json:"follower_count"`
			FollowingCount int64  `json:"following_count"`
			LikesCount     int64  `json:"likes_count"`
			VideoCount     int64  `json:"video_count"`
			BioDescription string `json:"bio_description"`
			IsVerified     bool   `json:"is_verified"`
		} `json:"user"`
	} `json:"data"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		LogID   string `json:"log_id"`
	} `json:"error"`
}

func (c *Client) AuthorizeURL(state string) string {
	v, _ := query.Values(authorizeParams{
		ClientKey:    c.cfg.ClientKey,
		Scope:        strings.Join(c.cfg.Scopes, ","),
		ResponseType: "code",
		RedirectURI:  c.cfg.RedirectURI,
		State:        state,
	})
	return c.cfg.AuthorizeURL + "?" + v.Encode()
}

func (c *Client) ExchangeCode(ctx context.Context, code string) (*model.TikTokTokenData, error) {
	return c.postToken(ctx, tokenForm{
		ClientKey:    c.cfg.ClientKey,
		ClientSecret: c.cfg.ClientSecret,
		Code:         code,
		GrantType:    "authorization_code",
		RedirectURI:  c.cfg.RedirectURI,
	})
}

func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*model.TikTokTokenData, error) {
	return c.postToken(ctx, tokenForm{
		ClientKey:    c.cfg.ClientKey,
		ClientSecret: c.cfg.ClientSecret,
		GrantType:    "refresh_token",
		RefreshToken: refreshToken,
	})
}

func (c *Client) postToken(ctx context.Context, form tokenForm) (*model.TikTokTokenData, error) {
	lg := logger.GetLogger().WithField("grant_type", form.GrantType)
	values, err := query.Values(form)
	if err != nil {
		return nil, fmt.Errorf("encode token form: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tiktok token request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tiktok token response: %w", err)
	}

	var payload tokenResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		lg.WithField("status", resp.StatusCode).WithField("body", truncate(string(body))).Error("tiktok token endpoint returned non-JSON body")
		return nil, &model.UpstreamProtocolError{StatusCode: resp.StatusCode, Body: truncate(string(body))}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 || payload.Error != "" {
		lg.WithFields(map[string]interface{}{
			"status": resp.StatusCode,
			"error":  payload.Error,
			"log_id": payload.LogID,
		}).Warn("tiktok token request rejected")
		return nil, &model.UpstreamAuthError{StatusCode: resp.StatusCode, Code: payload.Error, Description: payload.ErrorDescription}
	}
	if payload.AccessToken == "" {
		return nil, &model.UpstreamAuthError{StatusCode: resp.StatusCode, Code: "missing_access_token", Description: "token response carried no access_token"}
	}
	lg.WithField("open_id", payload.OpenID).Info("tiktok token obtained")
	tok := payload.TikTokTokenData
	return &tok, nil
}

func (c *Client) FetchUserInfo(ctx context.Context, accessToken string) (*model.TikTokUserInfo, error) {
	values, _ := query.Values(userInfoParams{Fields: UserInfoFields})
	endpoint := c.cfg.UserInfoURL + "?" + values.Encode()

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &model.ProfileFetchError{Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &model.ProfileFetchError{Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &model.ProfileFetchError{Err: err}
	}

	var payload userInfoResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &model.ProfileFetchError{Err: &model.UpstreamProtocolError{StatusCode: resp.StatusCode, Body: truncate(string(body))}}
	}
	if code := payload.Error.Code; code != "" && code != "ok" {
		return nil, &model.ProfileFetchError{Err: fmt.Errorf("%s: %s", code, payload.Error.Message)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &model.ProfileFetchError{Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	u := payload.Data.User
	if u.OpenID == "" && u.DisplayName == "" && u.Username == "" {
		return nil, &model.ProfileFetchError{Err: errors.New("empty user payload")}
	}
	return &model.TikTokUserInfo{
		DisplayName:    u.DisplayName,
		Username:       u.Username,
		AvatarURL:      u.AvatarURL,
		FollowerCount:  u.FollowerCount,
		FollowingCount: u.FollowingCount,
		LikesCount:     u.LikesCount,
		VideoCount:     u.VideoCount,
		BioDescription: u.BioDescription,
		IsVerified:     u.IsVerified,
	}, nil
}

func truncate(s string) string {
	if len(s) > maxBodyLog {
		return s[:maxBodyLog] + "..."
	}
	return s
}
