package repository

import (
	"context"

	"lumapost/domain/model"
)

// ITikTokClient defines the TikTok OAuth and profile operations
type ITikTokClient interface {
	// AuthorizeURL builds the consent URL carrying the given state.
	AuthorizeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*model.TikTokTokenData, error)
	RefreshToken(ctx context.Context, refreshToken string) (*model.TikTokTokenData, error)
	// FetchUserInfo always fails with *model.ProfileFetchError.
	FetchUserInfo(ctx context.Context, accessToken string) (*model.TikTokUserInfo, error)
}

// IIdentityVerifier resolves an application identity token to a user id.
type IIdentityVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}
