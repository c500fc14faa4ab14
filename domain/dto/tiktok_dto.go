package dto

import (
	"encoding/json"

	"lumapost/domain/model"
)

// TikTokSessionRequest is the body of POST /auth/tiktok/session.
// The identity token may also arrive in the Authorization header.
type TikTokSessionRequest struct {
	SessionToken  string `json:"sessionToken"`
	FirebaseToken string `json:"firebaseToken"`
}

type TikTokSessionResponse struct {
	Success  bool                  `json:"success"`
	UserInfo *model.TikTokUserInfo `json:"userInfo"`
}

// TikTokExchangeRequest is the body of the authenticated direct code exchange.
type TikTokExchangeRequest struct {
	Code string `json:"code" binding:"required"`
}

type TikTokConnectionResponse struct {
	Success  bool                  `json:"success"`
	UserInfo *model.TikTokUserInfo `json:"userInfo,omitempty"`
}

type TikTokStatusResponse struct {
	Connected    bool                  `json:"connected"`
	OpenID       string                `json:"openId,omitempty"`
	Scope        string                `json:"scope,omitempty"`
	TokenExpired bool                  `json:"tokenExpired"`
	UserInfo     *model.TikTokUserInfo `json:"userInfo,omitempty"`
}

// TikTokWebhookPayload accepts both delivery shapes. In the inbox shape
// Content is a JSON string holding the publish fields.
type TikTokWebhookPayload struct {
	Event        string          `json:"event"`
	UserOpenID   string          `json:"user_openid"`
	Content      json.RawMessage `json:"content"`
	PublishID    string          `json:"publish_id"`
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message"`
	VideoID      string          `json:"video_id"`
	ShareURL     string          `json:"share_url"`
	UserID       string          `json:"user_id"`
}

// TikTokWebhookContent is the decoded inbox content string.
type TikTokWebhookContent struct {
	PublishID    string `json:"publish_id"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	VideoID      string `json:"video_id"`
	ShareURL     string `json:"share_url"`
}

type WebhookResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
