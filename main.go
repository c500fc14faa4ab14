package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lumapost/domain/model"
	"lumapost/domain/repository"
	"lumapost/infrastructure/cache"
	"lumapost/infrastructure/clients/tiktok"
	"lumapost/infrastructure/configuration"
	"lumapost/infrastructure/identity"
	"lumapost/infrastructure/logger"
	"lumapost/infrastructure/persistence"
	"lumapost/infrastructure/persistence/memory"
	"lumapost/infrastructure/pubsub"
	"lumapost/infrastructure/realtime"
	"lumapost/infrastructure/servicebus"
	httpHandler "lumapost/interfaces/http"
	"lumapost/server"
	"lumapost/usecase"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"golang.org/x/sync/errgroup"
)

var httpServer *http.Server

// stores groups the backends chosen at startup plus what main has to close on exit
type stores struct {
	sessions  repository.ISessionStore
	profiles  repository.IUserProfile
	schedules repository.ISchedule
	audit     repository.IWebhookAudit
	checks    []httpHandler.HealthCheck
	closers   []func(ctx context.Context)
}

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	logger.Configure(configuration.C.Logger.Format, configuration.C.Logger.Level)
	app := configuration.C.App

	st := InitiateStores(ctx)
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		for _, c := range st.closers {
			c(closeCtx)
		}
	}()

	publisher, closePublisher := InitiateEventPublisher(ctx)
	if closePublisher != nil {
		st.closers = append(st.closers, closePublisher)
	}

	tk := configuration.C.TikTok
	tiktokClient := tiktok.NewTikTokClient(tiktok.Config{
		ClientKey:    tk.ClientKey,
		ClientSecret: tk.ClientSecret,
		RedirectURI:  tk.RedirectURI,
		Scopes:       tk.Scopes,
		AuthorizeURL: tk.AuthorizeURL,
		TokenURL:     tk.TokenURL,
		UserInfoURL:  tk.UserInfoURL,
		Timeout:      time.Duration(tk.TimeoutSeconds) * time.Second,
	})
	verifier := identity.NewJWTVerifier(app.SecretKey)

	sessionUsecase := usecase.NewSessionUsecase(st.sessions, st.profiles, verifier,
		usecase.WithSessionTTL(time.Duration(configuration.C.Session.TTLSeconds)*time.Second))
	tiktokUsecase := usecase.NewTikTokUsecase(tiktokClient, sessionUsecase, st.profiles, tk.StatePrefix)

	scheduleHub := realtime.NewScheduleHub()
	webhookUsecase := usecase.NewWebhookUsecase(st.schedules).
		WithBroadcaster(func(change *model.ScheduleStatusChange) { scheduleHub.BroadcastScheduleStatus(change) })
	if st.audit != nil {
		webhookUsecase = webhookUsecase.WithAudit(st.audit)
	}
	if publisher != nil {
		webhookUsecase = webhookUsecase.WithPublisher(publisher)
	}

	router := server.InitiateRouter(
		httpHandler.NewTikTokAuthHandler(tiktokUsecase, sessionUsecase, tk.DeepLinkBase),
		httpHandler.NewTikTokConnectionHandler(tiktokUsecase),
		httpHandler.NewTikTokWebhookHandler(webhookUsecase),
		httpHandler.NewHealthHandler(st.checks...),
		scheduleHub,
		verifier,
		configuration.C.Cors.AllowOrigins,
	)

	port := app.Port
	logger.GetLogger().WithFields(map[string]interface{}{
		"port":            port,
		"tls":             app.TLSEnabled,
		"db_vendor":       configuration.C.Database.Vendor,
		"session_backend": configuration.C.Session.Backend,
		"events_driver":   configuration.C.Events.Driver,
	}).Info("Starting application")
	g.Go(func() error {
		httpServer = &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		if app.TLSEnabled {
			cert := app.TLSCertFile
			key := app.TLSKeyFile
			if cert == "" || key == "" {
				logger.GetLogger().Error("TLS enabled but cert or key path empty; falling back to HTTP")
				if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			} else {
				logger.GetLogger().WithFields(map[string]interface{}{"cert": cert, "key": key}).Info("Serving HTTPS")
				if err := httpServer.ListenAndServeTLS(cert, key); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			}
		} else {
			if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}

	if err := g.Wait(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}

// InitiateStores connects the configured backends. Anything unreachable
// degrades to the in-memory store so the process still starts.
func InitiateStores(ctx context.Context) *stores {
	st := &stores{}
	dbCfg := configuration.C.Database

	var mongoDB *mongo.Database
	if dbCfg.Vendor == "mongo" {
		mongoDB = initiateMongo(ctx, dbCfg.Mongo, st)
	}
	if mongoDB != nil {
		st.profiles = persistence.NewUserProfileRepository(mongoDB)
		st.schedules = persistence.NewScheduleRepository(mongoDB)
	} else {
		logger.GetLogger().Warn("Using in-memory user and schedule stores; data is lost on restart")
		st.profiles = memory.NewUserProfileStore()
		st.schedules = memory.NewScheduleStore()
	}

	switch configuration.C.Session.Backend {
	case "redis":
		if client := initiateRedis(ctx, st); client != nil {
			st.sessions = cache.NewSessionCache(client)
		}
	case "mongo":
		if mongoDB != nil {
			st.sessions = persistence.NewSessionRepository(mongoDB)
		}
	}
	if st.sessions == nil {
		logger.GetLogger().WithField("backend", configuration.C.Session.Backend).Warn("Session backend unavailable; using in-memory sessions")
		st.sessions = memory.NewSessionStore()
	}

	if psqlDb := initiateAuditDB(dbCfg.Psql, st); psqlDb != nil {
		st.audit = persistence.NewWebhookAuditRepository(psqlDb)
	}
	return st
}

func initiateMongo(ctx context.Context, cfg configuration.Db, st *stores) *mongo.Database {
	client, err := persistence.NewMongoDb(cfg)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("MongoDB not available - continuing with in-memory stores")
		return nil
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		logger.GetLogger().WithField("error", err).Warn("MongoDB ping failed - continuing with in-memory stores")
		_ = client.Disconnect(context.Background())
		return nil
	}
	logger.GetLogger().WithField("database", cfg.Name).Info("MongoDB connected successfully")

	db := client.Database(cfg.Name)
	if err := persistence.EnsureMongoIndexes(ctx, db); err != nil {
		logger.GetLogger().WithField("error", err).Error("failed ensuring mongo indexes")
	}
	st.checks = append(st.checks, httpHandler.HealthCheck{
		Name:  "mongo",
		Check: func(ctx context.Context) error { return client.Ping(ctx, nil) },
	})
	st.closers = append(st.closers, func(ctx context.Context) { _ = client.Disconnect(ctx) })
	return db
}

func initiateRedis(ctx context.Context, st *stores) *redis.Client {
	rc := configuration.C.RedisClient
	client, err := cache.NewCache(ctx, rc.URL, fmt.Sprintf("%s:%s", rc.Host, rc.Port), rc.Username, rc.Password, rc.DB)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not available")
		return nil
	}
	logger.GetLogger().Info("Redis client initialized successfully.")
	st.checks = append(st.checks, httpHandler.HealthCheck{
		Name:  "redis",
		Check: func(ctx context.Context) error { return client.Ping(ctx).Err() },
	})
	st.closers = append(st.closers, func(context.Context) { _ = client.Close() })
	return client
}

func initiateAuditDB(cfg configuration.Db, st *stores) *sql.DB {
	db, err := persistence.NewPostgreSQLDB(cfg)
	if err != nil {
		logger.GetLogger().WithField("error", err).Info("PostgreSQL not available; webhook audit disabled")
		return nil
	}
	if err := persistence.EnsureWebhookAuditSchema(db); err != nil {
		logger.GetLogger().WithField("error", err).Error("failed ensuring webhook audit schema")
	}
	st.checks = append(st.checks, httpHandler.HealthCheck{Name: "postgres", Check: db.PingContext})
	st.closers = append(st.closers, func(context.Context) { _ = db.Close() })
	return db
}

// InitiateEventPublisher returns nil when the events driver is "none" or its broker is unreachable.
func InitiateEventPublisher(ctx context.Context) (repository.IScheduleEventPublisher, func(context.Context)) {
	ev := configuration.C.Events
	switch ev.Driver {
	case "pubsub":
		client, err := pubsub.NewPubSub(ctx, configuration.C.Pubsub.ProjectID)
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while instantiate PubSub")
			return nil, nil
		}
		return pubsub.NewScheduleStatusPublisher(client, ev.Topic), func(context.Context) { _ = client.Close() }
	case "servicebus":
		client, err := servicebus.NewServiceBus(ctx, configuration.C.ServiceBus.Namespace)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Azure Service Bus not available - schedule events will not be published")
			return nil, nil
		}
		return servicebus.NewScheduleStatusSender(client, configuration.C.ServiceBus.Queue), func(ctx context.Context) { _ = client.Close(ctx) }
	case "none", "":
		return nil, nil
	default:
		logger.GetLogger().WithField("driver", ev.Driver).Warn("Unknown events driver; schedule events will not be published")
		return nil, nil
	}
}
