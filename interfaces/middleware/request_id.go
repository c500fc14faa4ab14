package middleware

import (
	"time"

	"lumapost/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID tags each request with an id (reusing the caller's) and logs it on completion.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Set("request_id", id)
		ctx.Header(RequestIDHeader, id)

		start := time.Now()
		ctx.Next()

		entry := logger.GetLogger().WithFields(map[string]interface{}{
			"request_id": id,
			"method":     ctx.Request.Method,
			"path":       ctx.FullPath(),
			"status":     ctx.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
		})
		if ctx.Writer.Status() >= 500 {
			entry.Error("request completed")
			return
		}
		entry.Info("request completed")
	}
}
