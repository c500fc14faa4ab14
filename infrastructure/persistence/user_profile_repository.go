package persistence

import (
	"context"
	"errors"
	"fmt"

	"lumapost/domain/model"
	"lumapost/domain/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// UserProfileRepository touches only the tiktok field of users/<uid>
type UserProfileRepository struct {
	coll *mongo.Collection
}

func NewUserProfileRepository(db *mongo.Database) repository.IUserProfile {
	return &UserProfileRepository{coll: db.Collection(UserCollection)}
}

func (r *UserProfileRepository) MergeTikTok(ctx context.Context, userID string, conn model.TikTokConnection) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"tiktok": conn}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("merge tiktok connection: %w", err)
	}
	return nil
}

func (r *UserProfileRepository) GetTikTok(ctx context.Context, userID string) (*model.TikTokConnection, error) {
	var doc struct {
		TikTok *model.TikTokConnection `bson:"tiktok"`
	}
	err := r.coll.FindOne(ctx, bson.M{"_id": userID}, options.FindOne().SetProjection(bson.M{"tiktok": 1})).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.ErrConnectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tiktok connection: %w", err)
	}
	if doc.TikTok == nil {
		return nil, model.ErrConnectionNotFound
	}
	return doc.TikTok, nil
}

func (r *UserProfileRepository) UpdateTikTokTokens(ctx context.Context, userID string, update model.TikTokTokenUpdate) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": userID, "tiktok": bson.M{"$exists": true}},
		bson.M{"$set": bson.M{
			"tiktok.accessToken":   update.AccessToken,
			"tiktok.refreshToken":  update.RefreshToken,
			"tiktok.tokenExpiry":   update.TokenExpiry,
			"tiktok.lastRefreshed": update.LastRefreshed,
		}},
	)
	if err != nil {
		return fmt.Errorf("update tiktok tokens: %w", err)
	}
	if res.MatchedCount == 0 {
		return model.ErrConnectionNotFound
	}
	return nil
}

func (r *UserProfileRepository) RemoveTikTok(ctx context.Context, userID string) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$unset": bson.M{"tiktok": ""}})
	if err != nil {
		return fmt.Errorf("remove tiktok connection: %w", err)
	}
	return nil
}
