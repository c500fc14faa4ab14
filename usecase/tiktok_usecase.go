package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lumapost/domain/model"
	"lumapost/domain/repository"
	"lumapost/infrastructure/logger"

	"github.com/google/uuid"
)

// CallbackParams are the query parameters TikTok sends to the redirect URI.
type CallbackParams struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

type ITikTokUsecase interface {
	// AuthorizeURL returns the provider URL and the state embedded in it.
	AuthorizeURL() (string, string)
	// HandleCallback exchanges the code and returns a session token for the app.
	HandleCallback(ctx context.Context, params CallbackParams) (string, error)
	ExchangeCode(ctx context.Context, userID, code string) (*model.TikTokUserInfo, error)
	RefreshToken(ctx context.Context, userID string) (*model.TikTokConnection, error)
	Status(ctx context.Context, userID string) (*model.TikTokConnection, error)
	Disconnect(ctx context.Context, userID string) error
}

type tiktokUsecase struct {
	client      repository.ITikTokClient
	sessions    ISessionUsecase
	profiles    repository.IUserProfile
	statePrefix string
	now         func() time.Time
}

func NewTikTokUsecase(client repository.ITikTokClient, sessions ISessionUsecase, profiles repository.IUserProfile, statePrefix string, opts ...Option) ITikTokUsecase {
	o := buildOptions(opts)
	return &tiktokUsecase{
		client:      client,
		sessions:    sessions,
		profiles:    profiles,
		statePrefix: statePrefix,
		now:         o.now,
	}
}

func (u *tiktokUsecase) AuthorizeURL() (string, string) {
	state := u.statePrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
	return u.client.AuthorizeURL(state), state
}

func (u *tiktokUsecase) HandleCallback(ctx context.Context, params CallbackParams) (string, error) {
	switch {
	case params.Error != "":
		return "", &model.ProviderCallbackError{Reason: params.Error, Description: params.ErrorDescription}
	case params.Code == "":
		return "", model.ErrMissingCode
	case params.State == "":
		return "", model.ErrMissingState
	case !strings.HasPrefix(params.State, u.statePrefix):
		return "", model.ErrUnrecognizedOrigin
	}

	conn, err := u.connect(ctx, params.Code)
	if err != nil {
		return "", err
	}
	return u.sessions.Issue(ctx, conn)
}

func (u *tiktokUsecase) ExchangeCode(ctx context.Context, userID, code string) (*model.TikTokUserInfo, error) {
	if code == "" {
		return nil, model.ErrMissingCode
	}
	conn, err := u.connect(ctx, code)
	if err != nil {
		return nil, err
	}
	connectedAt := u.now().UTC()
	conn.ConnectedAt = &connectedAt
	if err := u.profiles.MergeTikTok(ctx, userID, conn); err != nil {
		return nil, fmt.Errorf("merge tiktok connection: %w", err)
	}
	logger.GetLogger().WithField("user_id", userID).WithField("open_id", conn.OpenID).Info("TikTok account connected")
	return conn.UserInfo, nil
}

// connect exchanges code for tokens and attaches the profile when it can be fetched.
func (u *tiktokUsecase) connect(ctx context.Context, code string) (model.TikTokConnection, error) {
	tok, err := u.client.ExchangeCode(ctx, code)
	if err != nil {
		return model.TikTokConnection{}, err
	}
	info, err := u.client.FetchUserInfo(ctx, tok.AccessToken)
	if err != nil {
		var pfe *model.ProfileFetchError
		if !errors.As(err, &pfe) {
			return model.TikTokConnection{}, err
		}
		logger.GetLogger().WithField("error", err).Warn("TikTok profile unavailable, continuing without it")
		info = nil
	}
	return model.NewTikTokConnection(tok, info, u.now()), nil
}

func (u *tiktokUsecase) RefreshToken(ctx context.Context, userID string) (*model.TikTokConnection, error) {
	conn, err := u.profiles.GetTikTok(ctx, userID)
	if err != nil {
		return nil, err
	}
	if conn.RefreshToken == "" {
		return nil, fmt.Errorf("no refresh token stored: %w", model.ErrConnectionNotFound)
	}
	tok, err := u.client.RefreshToken(ctx, conn.RefreshToken)
	if err != nil {
		return nil, err
	}
	update := model.NewTikTokTokenUpdate(tok, conn.RefreshToken, u.now().UTC())
	if err := u.profiles.UpdateTikTokTokens(ctx, userID, update); err != nil {
		return nil, err
	}
	conn.AccessToken = update.AccessToken
	conn.RefreshToken = update.RefreshToken
	conn.TokenExpiry = update.TokenExpiry
	conn.LastRefreshed = &update.LastRefreshed
	return conn, nil
}

func (u *tiktokUsecase) Status(ctx context.Context, userID string) (*model.TikTokConnection, error) {
	return u.profiles.GetTikTok(ctx, userID)
}

func (u *tiktokUsecase) Disconnect(ctx context.Context, userID string) error {
	if err := u.profiles.RemoveTikTok(ctx, userID); err != nil {
		return fmt.Errorf("remove tiktok connection: %w", err)
	}
	logger.GetLogger().WithField("user_id", userID).Info("TikTok account disconnected")
	return nil
}
