package http

import (
	"errors"
	"net/http"

	"lumapost/domain/dto"
	"lumapost/domain/model"
	"lumapost/infrastructure/logger"
	"lumapost/usecase"

	"github.com/gin-gonic/gin"
)

// ITikTokConnectionHandler serves the authenticated connection endpoints.
type ITikTokConnectionHandler interface {
	Exchange(ctx *gin.Context)
	Refresh(ctx *gin.Context)
	Status(ctx *gin.Context)
	Disconnect(ctx *gin.Context)
}

type tiktokConnectionHandler struct {
	tiktokUsecase usecase.ITikTokUsecase
}

func NewTikTokConnectionHandler(tiktokUsecase usecase.ITikTokUsecase) ITikTokConnectionHandler {
	return &tiktokConnectionHandler{tiktokUsecase: tiktokUsecase}
}

func (h *tiktokConnectionHandler) Exchange(c *gin.Context) {
	var req dto.TikTokExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Missing authorization code"})
		return
	}
	info, err := h.tiktokUsecase.ExchangeCode(c.Request.Context(), c.GetString("user_id"), req.Code)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TikTokConnectionResponse{Success: true, UserInfo: info})
}

func (h *tiktokConnectionHandler) Refresh(c *gin.Context) {
	conn, err := h.tiktokUsecase.RefreshToken(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "tokenExpiry": conn.TokenExpiry})
}

func (h *tiktokConnectionHandler) Status(c *gin.Context) {
	conn, err := h.tiktokUsecase.Status(c.Request.Context(), c.GetString("user_id"))
	if errors.Is(err, model.ErrConnectionNotFound) {
		c.JSON(http.StatusOK, dto.TikTokStatusResponse{Connected: false})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TikTokStatusResponse{
		Connected:    true,
		OpenID:       conn.OpenID,
		Scope:        conn.Scope,
		TokenExpired: conn.TokenExpired(timeNow()),
		UserInfo:     conn.UserInfo,
	})
}

func (h *tiktokConnectionHandler) Disconnect(c *gin.Context) {
	if err := h.tiktokUsecase.Disconnect(c.Request.Context(), c.GetString("user_id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *tiktokConnectionHandler) fail(c *gin.Context, err error) {
	var authErr *model.UpstreamAuthError
	var protocolErr *model.UpstreamProtocolError
	switch {
	case errors.Is(err, model.ErrMissingCode):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Missing authorization code"})
	case errors.Is(err, model.ErrConnectionNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "TikTok account not connected"})
	case errors.As(err, &authErr):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: authErr.Message()})
	case errors.As(err, &protocolErr):
		logger.GetLogger().WithField("status", protocolErr.StatusCode).Error("Unexpected TikTok response")
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: "Invalid response from TikTok"})
	default:
		logger.GetLogger().WithField("error", err).Error("TikTok connection request failed")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal server error"})
	}
}
