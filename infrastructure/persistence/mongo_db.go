package persistence

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"lumapost/infrastructure/configuration"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	SessionCollection  = "tiktok_sessions"
	UserCollection     = "users"
	ScheduleCollection = "schedules"
)

// NewMongoDb connects to MongoDB using the URI when set, otherwise host/port credentials.
func NewMongoDb(cfg configuration.Db) (*mongo.Client, error) {
	uri := mongoURI(cfg)
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second)
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	return client, nil
}

func mongoURI(cfg configuration.Db) string {
	if cfg.URI != "" {
		return cfg.URI
	}
	u := &url.URL{Scheme: "mongodb", Host: fmt.Sprintf("%s:%s", cfg.Host, cfg.Port), Path: "/"}
	if cfg.User != "" {
		if cfg.Password != "" {
			u.User = url.UserPassword(cfg.User, cfg.Password)
		} else {
			u.User = url.User(cfg.User)
		}
	}
	return u.String()
}

// EnsureMongoIndexes creates the indexes the session and schedule lookups rely on.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := ensureSessionIndexes(ctx, db.Collection(SessionCollection)); err != nil {
		return err
	}
	return ensureScheduleIndexes(ctx, db.Collection(ScheduleCollection))
}
