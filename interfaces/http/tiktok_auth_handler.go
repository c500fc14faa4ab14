package http

import (
	"errors"
	"net/http"

	"lumapost/domain/dto"
	"lumapost/domain/model"
	"lumapost/infrastructure/logger"
	"lumapost/interfaces/middleware"
	"lumapost/usecase"

	"github.com/gin-gonic/gin"
)

type ITikTokAuthHandler interface {
	Redirect(ctx *gin.Context)
	Callback(ctx *gin.Context)
	Session(ctx *gin.Context)
}

type tiktokAuthHandler struct {
	tiktokUsecase  usecase.ITikTokUsecase
	sessionUsecase usecase.ISessionUsecase
	deepLinkBase   string
}

func NewTikTokAuthHandler(tiktokUsecase usecase.ITikTokUsecase, sessionUsecase usecase.ISessionUsecase, deepLinkBase string) ITikTokAuthHandler {
	return &tiktokAuthHandler{
		tiktokUsecase:  tiktokUsecase,
		sessionUsecase: sessionUsecase,
		deepLinkBase:   deepLinkBase,
	}
}

// Redirect sends the browser to the TikTok authorize page.
func (h *tiktokAuthHandler) Redirect(c *gin.Context) {
	authURL, state := h.tiktokUsecase.AuthorizeURL()
	logger.GetLogger().WithField("state", state).Info("Redirecting to TikTok authorize")
	c.Redirect(http.StatusFound, authURL)
}

// Callback always answers with the HTML hand-off page; failures travel in the deep link.
func (h *tiktokAuthHandler) Callback(c *gin.Context) {
	params := usecase.CallbackParams{
		Code:             c.Query("code"),
		State:            c.Query("state"),
		Error:            c.Query("error"),
		ErrorDescription: c.Query("error_description"),
	}
	lg := logger.GetLogger().
		WithField("has_code", params.Code != "").
		WithField("state", params.State)

	sessionToken, err := h.tiktokUsecase.HandleCallback(c.Request.Context(), params)
	errMsg := ""
	if err != nil {
		errMsg = callbackErrorMessage(err)
		lg.WithField("error", err).Warn("TikTok callback failed")
	} else {
		lg.Info("TikTok callback handed off to app")
	}

	page, renderErr := RenderRedirectPage(h.deepLinkBase, sessionToken, errMsg)
	if renderErr != nil {
		lg.WithField("error", renderErr).Error("Failed to render redirect page")
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func callbackErrorMessage(err error) string {
	var providerErr *model.ProviderCallbackError
	var authErr *model.UpstreamAuthError
	var protocolErr *model.UpstreamProtocolError
	switch {
	case errors.As(err, &providerErr):
		return "Authentication error: " + providerErr.Reason
	case errors.Is(err, model.ErrMissingCode):
		return "Missing authorization code"
	case errors.Is(err, model.ErrMissingState):
		return "Missing state parameter"
	case errors.Is(err, model.ErrUnrecognizedOrigin):
		return "This callback is reserved for the mobile app"
	case errors.As(err, &authErr):
		return authErr.Message()
	case errors.As(err, &protocolErr):
		return "Token exchange failed"
	default:
		return "Internal server error"
	}
}

// Session redeems a hand-off token for the caller identified by the identity token.
func (h *tiktokAuthHandler) Session(c *gin.Context) {
	var req dto.TikTokSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.SessionToken == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Missing sessionToken"})
		return
	}
	identityToken := req.FirebaseToken
	if identityToken == "" {
		identityToken = middleware.BearerToken(c.GetHeader("Authorization"))
	}
	if identityToken == "" {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Missing identity token"})
		return
	}

	info, err := h.sessionUsecase.Consume(c.Request.Context(), req.SessionToken, identityToken)
	if err != nil {
		status, msg := sessionErrorStatus(err)
		if status >= http.StatusInternalServerError {
			logger.GetLogger().WithField("error", err).Error("Failed to redeem TikTok session")
		}
		c.JSON(status, dto.ErrorResponse{Error: msg})
		return
	}
	c.JSON(http.StatusOK, dto.TikTokSessionResponse{Success: true, UserInfo: info})
}

func sessionErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrInvalidIdentityToken):
		return http.StatusUnauthorized, "Invalid identity token"
	case errors.Is(err, model.ErrSessionNotFound):
		return http.StatusNotFound, "Session not found"
	case errors.Is(err, model.ErrSessionExpired):
		return http.StatusGone, "Session expired"
	default:
		return http.StatusInternalServerError, "Failed to redeem session"
	}
}
