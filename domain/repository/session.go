package repository

import (
	"context"

	"lumapost/domain/model"
)

// ISessionStore persists short-lived OAuth hand-off sessions
type ISessionStore interface {
	Save(ctx context.Context, session *model.TikTokSession) error
	// Take atomically reads and deletes the session. Returns model.ErrSessionNotFound
	// when no record exists, so at most one caller ever receives a given session.
	Take(ctx context.Context, token string) (*model.TikTokSession, error)
}

// IUserProfile manages the tiktok sub-document of a user profile
type IUserProfile interface {
	// MergeTikTok replaces users/<uid>.tiktok without touching other fields,
	// creating the profile when absent.
	MergeTikTok(ctx context.Context, userID string, conn model.TikTokConnection) error
	GetTikTok(ctx context.Context, userID string) (*model.TikTokConnection, error)
	UpdateTikTokTokens(ctx context.Context, userID string, update model.TikTokTokenUpdate) error
	RemoveTikTok(ctx context.Context, userID string) error
}
