package server

import (
	"time"

	"lumapost/domain/repository"
	"lumapost/infrastructure/realtime"
	httpHandler "lumapost/interfaces/http"
	"lumapost/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var defaultAllowOrigins = []string{"http://localhost:3000", "http://localhost:8081", "https://luma-post.emplica.fr"}

func InitiateRouter(
	tiktokAuthHandler httpHandler.ITikTokAuthHandler,
	tiktokConnectionHandler httpHandler.ITikTokConnectionHandler,
	tiktokWebhookHandler httpHandler.ITikTokWebhookHandler,
	healthHandler httpHandler.IHealthHandler,
	scheduleHub *realtime.Hub,
	verifier repository.IIdentityVerifier,
	allowOrigins []string,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(cors.New(corsConfig(allowOrigins)))

	router.GET("/healthz", healthHandler.Health)

	// TikTok calls the redirect URI registered in its developer portal, which
	// has been both /auth/... and /api/auth/... over time.
	for _, prefix := range []string{"", "/api"} {
		router.GET(prefix+"/auth/tiktok/redirect", tiktokAuthHandler.Redirect)
		router.GET(prefix+"/auth/tiktok/callback", tiktokAuthHandler.Callback)
		router.POST(prefix+"/auth/tiktok/session", tiktokAuthHandler.Session)
		router.POST(prefix+"/webhooks/tiktok", tiktokWebhookHandler.Receive)
		router.GET(prefix+"/webhooks/tiktok", tiktokWebhookHandler.Liveness)
	}

	api := router.Group("api")
	api.Use(middleware.Auth(verifier))
	api.POST("/tiktok/exchange", tiktokConnectionHandler.Exchange)
	api.POST("/tiktok/refresh", tiktokConnectionHandler.Refresh)
	api.GET("/tiktok/status", tiktokConnectionHandler.Status)
	api.DELETE("/tiktok", tiktokConnectionHandler.Disconnect)
	if scheduleHub != nil {
		api.GET("/schedules/stream", scheduleHub.Serve)
	}

	return router
}

func corsConfig(allowOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(allowOrigins) == 0 {
		allowOrigins = defaultAllowOrigins
	}
	for _, o := range allowOrigins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	allowed := make(map[string]struct{}, len(allowOrigins))
	for _, o := range allowOrigins {
		allowed[o] = struct{}{}
	}
	cfg.AllowCredentials = true
	cfg.AllowOriginFunc = func(origin string) bool {
		_, ok := allowed[origin]
		return ok
	}
	return cfg
}
