package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lumapost/domain/model"
	"lumapost/domain/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// sessionPurgeGrace keeps expired sessions around long enough for a late
// redeemer to be told "expired" instead of "not found".
const sessionPurgeGrace = 10 * time.Minute

type sessionDocument struct {
	Token     string                 `bson:"_id"`
	TikTok    model.TikTokConnection `bson:"tiktok"`
	CreatedAt time.Time              `bson:"createdAt"`
	ExpiresAt int64                  `bson:"expiresAt"`
	PurgeAt   time.Time              `bson:"purgeAt"`
}

// SessionRepository stores hand-off sessions in the tiktok_sessions collection
type SessionRepository struct {
	coll *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) repository.ISessionStore {
	return &SessionRepository{coll: db.Collection(SessionCollection)}
}

func toSessionDocument(s *model.TikTokSession) sessionDocument {
	return sessionDocument{
		Token:     s.Token,
		TikTok:    s.TikTok,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
		PurgeAt:   time.UnixMilli(s.ExpiresAt).Add(sessionPurgeGrace).UTC(),
	}
}

func (d sessionDocument) toModel() *model.TikTokSession {
	return &model.TikTokSession{
		Token:     d.Token,
		TikTok:    d.TikTok,
		CreatedAt: d.CreatedAt,
		ExpiresAt: d.ExpiresAt,
	}
}

func (r *SessionRepository) Save(ctx context.Context, session *model.TikTokSession) error {
	doc := toSessionDocument(session)
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.Token}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Take(ctx context.Context, token string) (*model.TikTokSession, error) {
	var doc sessionDocument
	err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": token}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("take session: %w", err)
	}
	return doc.toModel(), nil
}

func ensureSessionIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "purgeAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0).SetName("purgeAt_ttl"),
	})
	if err != nil {
		return fmt.Errorf("create session ttl index: %w", err)
	}
	return nil
}
