package middleware

import (
	"net/http"
	"strings"

	"lumapost/domain/dto"
	"lumapost/domain/repository"
	"lumapost/infrastructure/logger"

	"github.com/gin-gonic/gin"
)

// Auth verifies the bearer identity token and stores the user id under "user_id".
func Auth(verifier repository.IIdentityVerifier) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := BearerToken(ctx.GetHeader("Authorization"))
		if token == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
			return
		}
		userID, err := verifier.Verify(ctx.Request.Context(), token)
		if err != nil {
			logger.GetLogger().WithField("error", err).Debug("Rejected identity token")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid identity token"})
			return
		}
		ctx.Set("user_id", userID)
		ctx.Next()
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
