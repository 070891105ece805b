package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	bookingerrors "fitstudio/internal/bookings/errors"
	"fitstudio/pkg/config"
	mongodb "fitstudio/pkg/db/mongo"
	"fitstudio/pkg/model"
)

const CollectionName = "bookings"

// Index names, shared with the migration runner. Duplicate-key errors are
// mapped back to domain errors by matching these names.
const (
	IndexUniqueReference        = "uniq_booking_reference"
	IndexUniqueActivePerSession = "uniq_active_session_client"
)

type BookingRepository interface {
	Insert(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	ExistsActive(ctx context.Context, sessionID, clientID string) (bool, error)
	FindByClient(ctx context.Context, clientID string, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, error)
	CancelConfirmed(ctx context.Context, id string, now time.Time, cutoff time.Duration) (bool, error)
	CountBySessionAndStatus(ctx context.Context, sessionID string, status model.BookingStatus) (int64, error)
	FindRecentBySession(ctx context.Context, sessionID string, status model.BookingStatus, limit int) ([]*model.Booking, error)
	CountByClientAndStatus(ctx context.Context, clientID string, status model.BookingStatus) (int64, error)
	CountUpcomingByClient(ctx context.Context, clientID string, now time.Time) (int64, error)
	FavoriteClassNames(ctx context.Context, clientID string, limit int) ([]string, error)
	ExecuteTransaction(ctx context.Context, fn mongodb.TransactionFunc) error
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txn        mongodb.TransactionManager
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txn:        mongodb.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// Insert writes the booking, translating unique-index violations into the
// domain errors the service retries or rejects on.
func (r *mongoBookingRepository) Insert(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, booking); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			switch {
			case strings.Contains(err.Error(), IndexUniqueReference):
				return bookingerrors.ErrDuplicateReference
			case strings.Contains(err.Error(), IndexUniqueActivePerSession):
				return bookingerrors.ErrDuplicateBooking
			}
		}
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var booking model.Booking
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return &booking, nil
}

func (r *mongoBookingRepository) ExistsActive(ctx context.Context, sessionID, clientID string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{
		"session_id": sessionID,
		"client_id":  clientID,
		"active":     true,
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check active booking: %w", err)
	}
	return count > 0, nil
}

func (r *mongoBookingRepository) FindByClient(ctx context.Context, clientID string, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"client_id": clientID}
	if status != "" {
		filter["status"] = status
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "booked_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

// CancelConfirmed flips a confirmed booking to cancelled. The filter
// re-asserts both guards the caller pre-checked: the booking must still be
// confirmed, and the session must still start more than cutoff from now.
// A booking already cancelled (or completed), or one whose deadline passed
// since the pre-check, matches nothing and the caller sees false.
func (r *mongoBookingRepository) CancelConfirmed(ctx context.Context, id string, now time.Time, cutoff time.Duration) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{
			"_id":                id,
			"status":             model.BookingConfirmed,
			"session.start_time": bson.M{"$gt": now.Add(cutoff)},
		},
		bson.M{"$set": bson.M{
			"status":       model.BookingCancelled,
			"active":       false,
			"cancelled_at": now.UTC().Truncate(time.Millisecond),
		}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to cancel booking: %w", err)
	}
	return result.ModifiedCount > 0, nil
}

func (r *mongoBookingRepository) CountBySessionAndStatus(ctx context.Context, sessionID string, status model.BookingStatus) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"session_id": sessionID, "status": status})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *mongoBookingRepository) FindRecentBySession(ctx context.Context, sessionID string, status model.BookingStatus, limit int) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "booked_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"session_id": sessionID, "status": status}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find recent bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode recent bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) CountByClientAndStatus(ctx context.Context, clientID string, status model.BookingStatus) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"client_id": clientID}
	if status != "" {
		filter["status"] = status
	}
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count client bookings: %w", err)
	}
	return count, nil
}

func (r *mongoBookingRepository) CountUpcomingByClient(ctx context.Context, clientID string, now time.Time) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{
		"client_id":          clientID,
		"status":             model.BookingConfirmed,
		"session.start_time": bson.M{"$gt": now},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count upcoming bookings: %w", err)
	}
	return count, nil
}

// FavoriteClassNames ranks the class names a client books most often,
// cancelled bookings included: the question is taste, not attendance.
func (r *mongoBookingRepository) FavoriteClassNames(ctx context.Context, clientID string, limit int) ([]string, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"client_id": clientID}}},
		{{Key: "$group", Value: bson.M{"_id": "$session.class_name", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate favorite classes: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Name string `bson:"_id"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode favorite classes: %w", err)
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Name)
	}
	return names, nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongodb.TransactionFunc) error {
	return r.txn.ExecuteTransaction(ctx, fn)
}
