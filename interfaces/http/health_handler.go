package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck is a named dependency probe; nil error means healthy.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type IHealthHandler interface {
	Health(ctx *gin.Context)
}

type healthHandler struct {
	checks []HealthCheck
}

func NewHealthHandler(checks ...HealthCheck) IHealthHandler {
	return &healthHandler{checks: checks}
}

func (h *healthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := gin.H{}
	for _, check := range h.checks {
		if err := check.Check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			results[check.Name] = err.Error()
			continue
		}
		results[check.Name] = "ok"
	}
	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{"status": state, "checks": results, "timestamp": timestamp()})
}
