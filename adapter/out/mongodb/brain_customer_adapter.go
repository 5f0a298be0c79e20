package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"brain_server/core/domain"
)

// =============================================================================
// MongoDB Customer Brain Adapter
// =============================================================================

const collectionCustomers = "customer_brains"

// CustomerAdapter implements domain.CustomerRepository using MongoDB. One
// document per (company, platform, user); sections are embedded documents so
// a partial update overwrites a whole section, never individual history.
type CustomerAdapter struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewCustomerAdapter creates a new MongoDB customer adapter.
func NewCustomerAdapter(db *mongo.Database) *CustomerAdapter {
	return &CustomerAdapter{
		db:         db,
		collection: db.Collection(collectionCustomers),
	}
}

// EnsureIndexes creates necessary indexes for the collection.
func (a *CustomerAdapter) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "identity.company_id", Value: 1},
				{Key: "identity.platform", Value: 1},
				{Key: "identity.user_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "updated_at", Value: -1}},
		},
		{
			Keys: bson.D{
				{Key: "identity.company_id", Value: 1},
				{Key: "psychology.operator_required", Value: 1},
			},
		},
	}

	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func customerFilter(companyID, platform, userID string) bson.M {
	return bson.M{
		"identity.company_id": companyID,
		"identity.platform":   platform,
		"identity.user_id":    userID,
	}
}

// Get returns the stored brain or (nil, nil) for a first-time customer.
func (a *CustomerAdapter) Get(ctx context.Context, companyID, platform, userID string) (*domain.CustomerBrain, error) {
	var brain domain.CustomerBrain
	err := a.collection.FindOne(ctx, customerFilter(companyID, platform, userID)).Decode(&brain)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get customer brain: %w", err)
	}
	return &brain, nil
}

// Upsert writes the whole record. Last writer wins per record; list fields
// are expected to have been merged by the caller before the write.
func (a *CustomerAdapter) Upsert(ctx context.Context, brain *domain.CustomerBrain) error {
	if brain == nil {
		return errors.New("nil customer brain")
	}
	brain.UpdatedAt = time.Now().UTC()

	filter := customerFilter(brain.Identity.CompanyID, brain.Identity.Platform, brain.Identity.UserID)
	update := bson.M{"$set": brain}

	_, err := a.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert customer brain: %w", err)
	}
	return nil
}

// ListRecent returns the most recently active customers.
func (a *CustomerAdapter) ListRecent(ctx context.Context, limit int) ([]*domain.CustomerBrain, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := a.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer cursor.Close(ctx)

	var brains []*domain.CustomerBrain
	if err := cursor.All(ctx, &brains); err != nil {
		return nil, fmt.Errorf("failed to decode customers: %w", err)
	}
	return brains, nil
}

var _ domain.CustomerRepository = (*CustomerAdapter)(nil)
