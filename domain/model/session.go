package model

import "time"

// DefaultSessionTTL bounds how long a callback hand-off stays redeemable.
const DefaultSessionTTL = 5 * time.Minute

// TikTokSession is the short-lived record bridging the OAuth callback to a
// later redemption by the mobile app.
type TikTokSession struct {
	Token     string           `json:"sessionToken" bson:"_id"`
	TikTok    TikTokConnection `json:"tiktok"       bson:"tiktok"`
	CreatedAt time.Time        `json:"createdAt"    bson:"createdAt"`
	ExpiresAt int64            `json:"expiresAt"    bson:"expiresAt"` // ms epoch
}

// Expired reports whether the local expiry has passed at now.
func (s *TikTokSession) Expired(now time.Time) bool {
	return s.ExpiresAt < now.UnixMilli()
}

// Remaining is the time left before expiry, never negative.
func (s *TikTokSession) Remaining(now time.Time) time.Duration {
	d := time.Duration(s.ExpiresAt-now.UnixMilli()) * time.Millisecond
	if d < 0 {
		return 0
	}
	return d
}
