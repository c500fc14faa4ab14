package usecase

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strconv"
	"time"

	"lumapost/domain/model"
	"lumapost/domain/repository"
	"lumapost/infrastructure/logger"
)

const defaultSessionTTL = model.DefaultSessionTTL

type ISessionUsecase interface {
	// Issue stores conn behind a fresh opaque token and returns the token.
	Issue(ctx context.Context, conn model.TikTokConnection) (string, error)
	// Consume redeems a session for the user behind identityToken.
	Consume(ctx context.Context, sessionToken, identityToken string) (*model.TikTokUserInfo, error)
}

type sessionUsecase struct {
	store    repository.ISessionStore
	profiles repository.IUserProfile
	verifier repository.IIdentityVerifier
	ttl      time.Duration
	now      func() time.Time
	newToken func(time.Time) (string, error)
}

func NewSessionUsecase(store repository.ISessionStore, profiles repository.IUserProfile, verifier repository.IIdentityVerifier, opts ...Option) ISessionUsecase {
	o := buildOptions(opts)
	return &sessionUsecase{
		store:    store,
		profiles: profiles,
		verifier: verifier,
		ttl:      o.sessionTTL,
		now:      o.now,
		newToken: newSessionToken,
	}
}

func (u *sessionUsecase) Issue(ctx context.Context, conn model.TikTokConnection) (string, error) {
	now := u.now()
	token, err := u.newToken(now)
	if err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	session := &model.TikTokSession{
		Token:     token,
		TikTok:    conn,
		CreatedAt: now.UTC(),
		ExpiresAt: now.Add(u.ttl).UnixMilli(),
	}
	if err := u.store.Save(ctx, session); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	logger.GetLogger().WithField("open_id", conn.OpenID).Info("TikTok session issued")
	return token, nil
}

func (u *sessionUsecase) Consume(ctx context.Context, sessionToken, identityToken string) (*model.TikTokUserInfo, error) {
	userID, err := u.verifier.Verify(ctx, identityToken)
	if err != nil {
		return nil, err
	}
	if sessionToken == "" {
		return nil, model.ErrSessionNotFound
	}

	// Take removes the record, so a second redeemer sees not-found.
	session, err := u.store.Take(ctx, sessionToken)
	if err != nil {
		return nil, err
	}
	now := u.now()
	if session.Expired(now) {
		return nil, model.ErrSessionExpired
	}

	conn := session.TikTok
	connectedAt := now.UTC()
	conn.ConnectedAt = &connectedAt
	if err := u.profiles.MergeTikTok(ctx, userID, conn); err != nil {
		if saveErr := u.store.Save(ctx, session); saveErr != nil {
			logger.GetLogger().WithField("error", saveErr).Error("Failed to restore session after merge failure")
		}
		return nil, fmt.Errorf("merge tiktok connection: %w", err)
	}

	logger.GetLogger().
		WithField("user_id", userID).
		WithField("open_id", conn.OpenID).
		Info("TikTok session redeemed")
	return conn.UserInfo, nil
}

// newSessionToken joins two random base-36 strings around the base-36 ms timestamp.
func newSessionToken(now time.Time) (string, error) {
	head, err := randomBase36()
	if err != nil {
		return "", err
	}
	tail, err := randomBase36()
	if err != nil {
		return "", err
	}
	return head + strconv.FormatInt(now.UnixMilli(), 36) + tail, nil
}

func randomBase36() (string, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return strconv.FormatUint(binary.BigEndian.Uint64(buf[:]), 36), nil
}
