package model

import "time"

// TikTokUserInfo is the profile snapshot fetched right after a code exchange.
type TikTokUserInfo struct {
	DisplayName    string `json:"displayName,omitempty"    bson:"displayName,omitempty"`
	Username       string `json:"username,omitempty"       bson:"username,omitempty"`
	AvatarURL      string `json:"avatarUrl,omitempty"      bson:"avatarUrl,omitempty"`
	FollowerCount  int64  `json:"followerCount"            bson:"followerCount"`
	FollowingCount int64  `json:"followingCount"           bson:"followingCount"`
	LikesCount     int64  `json:"likesCount"               bson:"likesCount"`
	VideoCount     int64  `json:"videoCount"               bson:"videoCount"`
	BioDescription string `json:"bioDescription,omitempty" bson:"bioDescription,omitempty"`
	IsVerified     bool   `json:"isVerified"               bson:"isVerified"`
}

// TikTokTokenData is the parsed result of a token endpoint call.
type TikTokTokenData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
	OpenID       string `json:"open_id"`
}

// TikTokConnection is the provider payload carried by a session and later
// stored under users/<uid>.tiktok.
type TikTokConnection struct {
	AccessToken   string          `json:"accessToken"             bson:"accessToken"`
	RefreshToken  string          `json:"refreshToken"            bson:"refreshToken"`
	TokenExpiry   int64           `json:"tokenExpiry"             bson:"tokenExpiry"` // ms epoch
	OpenID        string          `json:"openId"                  bson:"openId"`
	Scope         string          `json:"scope,omitempty"         bson:"scope,omitempty"`
	UserInfo      *TikTokUserInfo `json:"userInfo"                bson:"userInfo"`
	ConnectedAt   *time.Time      `json:"connectedAt,omitempty"   bson:"connectedAt,omitempty"`
	LastRefreshed *time.Time      `json:"lastRefreshed,omitempty" bson:"lastRefreshed,omitempty"`
}

// NewTikTokConnection builds a connection payload from exchanged token data.
// The upstream expiry is converted from a relative duration to an absolute ms epoch.
func NewTikTokConnection(tok *TikTokTokenData, info *TikTokUserInfo, now time.Time) TikTokConnection {
	return TikTokConnection{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenExpiry:  now.Add(time.Duration(tok.ExpiresIn) * time.Second).UnixMilli(),
		OpenID:       tok.OpenID,
		Scope:        tok.Scope,
		UserInfo:     info,
	}
}

// TikTokTokenUpdate carries the fields rewritten by a token refresh.
type TikTokTokenUpdate struct {
	AccessToken   string
	RefreshToken  string
	TokenExpiry   int64
	LastRefreshed time.Time
}

// NewTikTokTokenUpdate mirrors NewTikTokConnection for a refresh response.
// TikTok may omit the refresh token on refresh, in which case the current one is kept.
func NewTikTokTokenUpdate(tok *TikTokTokenData, currentRefresh string, now time.Time) TikTokTokenUpdate {
	refresh := tok.RefreshToken
	if refresh == "" {
		refresh = currentRefresh
	}
	return TikTokTokenUpdate{
		AccessToken:   tok.AccessToken,
		RefreshToken:  refresh,
		TokenExpiry:   now.Add(time.Duration(tok.ExpiresIn) * time.Second).UnixMilli(),
		LastRefreshed: now,
	}
}

// TokenExpired reports whether the upstream access token has expired at now.
func (c TikTokConnection) TokenExpired(now time.Time) bool {
	return c.TokenExpiry > 0 && c.TokenExpiry <= now.UnixMilli()
}
