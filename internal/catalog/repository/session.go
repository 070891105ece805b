package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	catalogerrors "fitstudio/internal/catalog/errors"
	"fitstudio/pkg/config"
	"fitstudio/pkg/model"
)

const CollectionName = "sessions"

type SessionRepository interface {
	Insert(ctx context.Context, session *model.Session) error
	FindByID(ctx context.Context, id string) (*model.Session, error)
	Find(ctx context.Context, filter model.SessionFilter, now time.Time, limit int, offset int64) ([]*model.Session, error)
	Count(ctx context.Context, filter model.SessionFilter, now time.Time) (int64, error)
	IncrementIfAvailable(ctx context.Context, id string) (bool, error)
	Decrement(ctx context.Context, id string) error
}

type mongoSessionRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSessionRepository(cfg *config.Config) SessionRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSessionRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

// withTimeout wraps the context with a timeout unless it is already inside a
// transaction, where wrapping would break session semantics.
func (r *mongoSessionRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoSessionRepository) Insert(ctx context.Context, session *model.Session) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	session.CreatedAt = now
	session.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (r *mongoSessionRepository) FindByID(ctx context.Context, id string) (*model.Session, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var session model.Session
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalogerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return &session, nil
}

func (r *mongoSessionRepository) Find(ctx context.Context, filter model.SessionFilter, now time.Time, limit int, offset int64) ([]*model.Session, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildListingFilter(filter, now), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []*model.Session
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}
	return sessions, nil
}

func (r *mongoSessionRepository) Count(ctx context.Context, filter model.SessionFilter, now time.Time) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildListingFilter(filter, now))
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

// buildListingFilter restricts listings to upcoming scheduled sessions and
// applies the optional catalog filters. Substring matches are anchored
// through QuoteMeta so user input can never inject regex syntax.
func buildListingFilter(filter model.SessionFilter, now time.Time) bson.M {
	query := bson.M{
		"status":     model.SessionScheduled,
		"start_time": bson.M{"$gte": now},
	}

	if filter.ClassType != "" {
		query["class_type.name"] = substringMatch(filter.ClassType)
	}
	if filter.Instructor != "" {
		query["instructor.name"] = substringMatch(filter.Instructor)
	}
	if filter.Difficulty != "" {
		query["class_type.difficulty_level"] = filter.Difficulty
	}
	if filter.Date != nil {
		dayStart := filter.Date.UTC().Truncate(24 * time.Hour)
		dayEnd := dayStart.Add(24 * time.Hour)
		// Listing restriction still applies: never reach before now.
		lower := dayStart
		if now.After(lower) {
			lower = now
		}
		query["start_time"] = bson.M{"$gte": lower, "$lt": dayEnd}
	}
	if filter.AvailableOnly {
		query["$expr"] = bson.M{"$lt": bson.A{"$current_bookings", "$max_capacity"}}
	}

	return query
}

func substringMatch(substring string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(substring), "$options": "i"}
}

// IncrementIfAvailable atomically claims one slot. The filter re-checks
// status and remaining capacity so two racing bookings for the last slot
// cannot both succeed; zero modified documents means the caller lost.
func (r *mongoSessionRepository) IncrementIfAvailable(ctx context.Context, id string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"_id":    id,
		"status": model.SessionScheduled,
		"$expr":  bson.M{"$lt": bson.A{"$current_bookings", "$max_capacity"}},
	}
	update := bson.M{
		"$inc":         bson.M{"current_bookings": 1},
		"$currentDate": bson.M{"updated_at": true},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to increment booking count: %w", err)
	}
	return result.ModifiedCount > 0, nil
}

// Decrement releases one slot, flooring the counter at zero to absorb any
// historical drift.
func (r *mongoSessionRepository) Decrement(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	pipeline := bson.A{
		bson.M{"$set": bson.M{
			"current_bookings": bson.M{
				"$max": bson.A{0, bson.M{"$subtract": bson.A{"$current_bookings", 1}}},
			},
			"updated_at": "$$NOW",
		}},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, pipeline)
	if err != nil {
		return fmt.Errorf("failed to decrement booking count: %w", err)
	}
	if result.MatchedCount == 0 {
		return catalogerrors.ErrNotFound
	}
	return nil
}
