package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	registryerrors "fitstudio/internal/registry/errors"
	"fitstudio/pkg/config"
	"fitstudio/pkg/model"
)

const CollectionName = "clients"

type ClientRepository interface {
	UpsertByEmail(ctx context.Context, name, email, phone string, now time.Time) (*model.Client, error)
	FindByEmail(ctx context.Context, email string) (*model.Client, error)
	FindByID(ctx context.Context, id string) (*model.Client, error)
	IncrementTotalBookings(ctx context.Context, id string) error
}

type mongoClientRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoClientRepository(cfg *config.Config) ClientRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoClientRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoClientRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// UpsertByEmail finds the client keyed by normalized email, creating the
// record on first contact. Existing clients keep their stored name and phone;
// returning visitors are matched on email alone.
func (r *mongoClientRepository) UpsertByEmail(ctx context.Context, name, email, phone string, now time.Time) (*model.Client, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	emailKey := model.EmailKey(email)
	update := bson.M{
		"$setOnInsert": bson.M{
			"_id":             uuid.NewString(),
			"name":            name,
			"email":           email,
			"email_key":       emailKey,
			"phone":           phone,
			"total_bookings":  0,
			"membership_tier": model.DefaultMembershipTier,
			"created_at":      now.UTC().Truncate(time.Millisecond),
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var client model.Client
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"email_key": emailKey}, update, opts).Decode(&client)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Concurrent first-contact upserts can collide on the unique
			// email_key index; the losing writer re-reads the winner.
			return r.FindByEmail(ctx, email)
		}
		return nil, fmt.Errorf("failed to upsert client: %w", err)
	}
	return &client, nil
}

func (r *mongoClientRepository) FindByEmail(ctx context.Context, email string) (*model.Client, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var client model.Client
	err := r.collection.FindOne(ctx, bson.M{"email_key": model.EmailKey(email)}).Decode(&client)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, registryerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find client by email: %w", err)
	}
	return &client, nil
}

func (r *mongoClientRepository) FindByID(ctx context.Context, id string) (*model.Client, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var client model.Client
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&client)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, registryerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find client: %w", err)
	}
	return &client, nil
}

// IncrementTotalBookings bumps the lifetime booking counter. Cancellations
// never call this: the counter records bookings ever made, not current ones.
func (r *mongoClientRepository) IncrementTotalBookings(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"total_bookings": 1}},
	)
	if err != nil {
		return fmt.Errorf("failed to increment total bookings: %w", err)
	}
	if result.MatchedCount == 0 {
		return registryerrors.ErrNotFound
	}
	return nil
}
