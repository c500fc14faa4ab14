package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lumapost/domain/model"
	"lumapost/domain/repository"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the application identity claims. The user id is the subject;
// user_id is accepted for tokens minted by older clients.
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier validates HS256 identity tokens signed with the app secret
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) repository.IIdentityVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(_ context.Context, tokenString string) (string, error) {
	if len(v.secret) == 0 {
		return "", fmt.Errorf("%w: verifier has no secret configured", model.ErrInvalidIdentityToken)
	}
	if tokenString == "" {
		return "", fmt.Errorf("%w: empty token", model.ErrInvalidIdentityToken)
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w: %s", model.ErrInvalidIdentityToken, describe(err))
	}
	uid := claims.Subject
	if uid == "" {
		uid = claims.UserID
	}
	if uid == "" {
		return "", fmt.Errorf("%w: token carries no user id", model.ErrInvalidIdentityToken)
	}
	return uid, nil
}

func describe(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "that's not even a token"
	case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenNotValidYet):
		return "token is either expired or not active yet"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "invalid signature"
	default:
		return err.Error()
	}
}

// NewToken signs an identity token for uid. Used by tooling and tests.
func NewToken(secret, uid string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
