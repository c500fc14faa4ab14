package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"lumapost/domain/dto"
	"lumapost/domain/model"
	"lumapost/infrastructure/logger"
	"lumapost/usecase"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 1 << 20

var timeNow = time.Now

type ITikTokWebhookHandler interface {
	Receive(ctx *gin.Context)
	Liveness(ctx *gin.Context)
}

type tiktokWebhookHandler struct {
	webhookUsecase usecase.IWebhookUsecase
}

func NewTikTokWebhookHandler(webhookUsecase usecase.IWebhookUsecase) ITikTokWebhookHandler {
	return &tiktokWebhookHandler{webhookUsecase: webhookUsecase}
}

func timestamp() string {
	return timeNow().UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// Receive answers 200 for anything parseable, matched or not.
func (h *tiktokWebhookHandler) Receive(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Unreadable body"})
		return
	}
	evt, err := usecase.ParseTikTokWebhook(body)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Rejected TikTok webhook")
		msg := "Invalid content format"
		if errors.Is(err, model.ErrMissingPublishID) {
			msg = "Missing publish_id"
		}
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: msg})
		return
	}

	res := h.webhookUsecase.Process(c.Request.Context(), evt)
	logger.GetLogger().
		WithField("publish_id", evt.PublishID).
		WithField("outcome", res.Outcome).
		Info("TikTok webhook processed")

	c.JSON(http.StatusOK, dto.WebhookResponse{
		Success:   true,
		Message:   "Webhook processed successfully",
		Timestamp: timestamp(),
	})
}

func (h *tiktokWebhookHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "TikTok webhook endpoint active",
		"timestamp": timestamp(),
	})
}
