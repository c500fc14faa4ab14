package persistence

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"lumapost/domain/model"
	"lumapost/domain/repository"
	"lumapost/infrastructure/logger"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// scheduleDocument decodes schedules written by several clients; _id and
// scheduledAt have no fixed BSON type.
type scheduleDocument struct {
	ID          bson.RawValue `bson:"_id"`
	UserID      string        `bson:"userId"`
	PublishID   string        `bson:"publishId"`
	Status      string        `bson:"status"`
	ScheduledAt bson.RawValue `bson:"scheduledAt"`
	LastError   *string       `bson:"lastError,omitempty"`
	TikTokURL   *string       `bson:"tiktokUrl,omitempty"`
	UpdatedAt   *time.Time    `bson:"updatedAt,omitempty"`
}

// ScheduleRepository reads and conditionally updates the schedules collection
type ScheduleRepository struct {
	coll *mongo.Collection
}

func NewScheduleRepository(db *mongo.Database) repository.ISchedule {
	return &ScheduleRepository{coll: db.Collection(ScheduleCollection)}
}

func (d scheduleDocument) toModel() *model.Schedule {
	return &model.Schedule{
		ID:          rawID(d.ID),
		UserID:      d.UserID,
		PublishID:   d.PublishID,
		Status:      model.ScheduleStatus(d.Status),
		ScheduledAt: ScheduledAtMillis(d.ScheduledAt),
		LastError:   d.LastError,
		TikTokURL:   d.TikTokURL,
		UpdatedAt:   d.UpdatedAt,
	}
}

// ScheduledAtMillis extracts a ms epoch from the stored scheduledAt value.
// Native dates, BSON timestamps, numbers and exported {seconds, nanoseconds}
// documents are understood; anything else counts as 0.
func ScheduledAtMillis(v bson.RawValue) int64 {
	if ms, ok := v.DateTimeOK(); ok {
		return ms
	}
	if t, _, ok := v.TimestampOK(); ok {
		return int64(t) * 1000
	}
	if n, ok := v.Int64OK(); ok {
		return n
	}
	if n, ok := v.Int32OK(); ok {
		return int64(n)
	}
	if f, ok := v.DoubleOK(); ok {
		return int64(f)
	}
	if doc, ok := v.DocumentOK(); ok {
		for _, keys := range [][2]string{{"_seconds", "_nanoseconds"}, {"seconds", "nanoseconds"}} {
			sec, err := doc.LookupErr(keys[0])
			if err != nil {
				continue
			}
			s := numeric(sec)
			ns := int64(0)
			if nsVal, err := doc.LookupErr(keys[1]); err == nil {
				ns = numeric(nsVal)
			}
			return s*1000 + ns/int64(time.Millisecond)
		}
	}
	return 0
}

func numeric(v bson.RawValue) int64 {
	if n, ok := v.Int64OK(); ok {
		return n
	}
	if n, ok := v.Int32OK(); ok {
		return int64(n)
	}
	if f, ok := v.DoubleOK(); ok {
		return int64(f)
	}
	return 0
}

func rawID(v bson.RawValue) string {
	if oid, ok := v.ObjectIDOK(); ok {
		return oid.Hex()
	}
	if s, ok := v.StringValueOK(); ok {
		return s
	}
	if n, ok := v.Int64OK(); ok {
		return strconv.FormatInt(n, 10)
	}
	if n, ok := v.Int32OK(); ok {
		return strconv.FormatInt(int64(n), 10)
	}
	return ""
}

// idFilter matches a schedule id whether it was stored as an ObjectID or a string.
func idFilter(id string) interface{} {
	if oid, err := bson.ObjectIDFromHex(id); err == nil {
		return bson.M{"$in": bson.A{oid, id}}
	}
	return id
}

func (r *ScheduleRepository) findOne(ctx context.Context, filter bson.M) (*model.Schedule, error) {
	var doc scheduleDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.ErrScheduleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find schedule: %w", err)
	}
	return doc.toModel(), nil
}

func (r *ScheduleRepository) FindByPublishID(ctx context.Context, publishID string) (*model.Schedule, error) {
	if publishID == "" {
		return nil, model.ErrScheduleNotFound
	}
	return r.findOne(ctx, bson.M{"publishId": publishID})
}

func (r *ScheduleRepository) FindByPublishIDFragment(ctx context.Context, fragment string) (*model.Schedule, error) {
	if fragment == "" {
		return nil, model.ErrScheduleNotFound
	}
	return r.findOne(ctx, bson.M{"publishId": bson.M{"$regex": regexp.QuoteMeta(fragment)}})
}

func (r *ScheduleRepository) FindPendingByUser(ctx context.Context, userID string) ([]*model.Schedule, error) {
	cursor, err := r.coll.Find(ctx, bson.M{
		"userId": userID,
		"status": bson.M{"$in": bson.A{string(model.ScheduleStatusQueued), string(model.ScheduleStatusScheduled)}},
	})
	if err != nil {
		return nil, fmt.Errorf("find pending schedules: %w", err)
	}
	defer func(cursor *mongo.Cursor, ctx context.Context) {
		if err := cursor.Close(ctx); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while closing cursor")
		}
	}(cursor, ctx)

	var out []*model.Schedule
	for cursor.Next(ctx) {
		var doc scheduleDocument
		if err := cursor.Decode(&doc); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while decoding schedule")
			continue
		}
		out = append(out, doc.toModel())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending schedules: %w", err)
	}
	return out, nil
}

func (r *ScheduleRepository) UpdateStatus(ctx context.Context, scheduleID string, expected model.ScheduleStatus, upd model.ScheduleUpdate) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": idFilter(scheduleID), "status": string(expected)},
		bson.M{"$set": scheduleSet(upd)},
	)
	if err != nil {
		return fmt.Errorf("update schedule status: %w", err)
	}
	if res.MatchedCount == 0 {
		return model.ErrConcurrentUpdate
	}
	return nil
}

func scheduleSet(upd model.ScheduleUpdate) bson.M {
	set := bson.M{
		"status":    string(upd.Status),
		"updatedAt": upd.UpdatedAt,
	}
	if upd.LastError != nil {
		set["lastError"] = *upd.LastError
	}
	if upd.TikTokURL != nil {
		set["tiktokUrl"] = *upd.TikTokURL
	}
	return set
}

func ensureScheduleIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "publishId", Value: 1}}, Options: options.Index().SetName("publishId_1")},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "status", Value: 1}}, Options: options.Index().SetName("userId_1_status_1")},
	})
	if err != nil {
		return fmt.Errorf("create schedule indexes: %w", err)
	}
	return nil
}
