package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"brain_server/core/domain"
	"brain_server/pkg/logger"
)

// =============================================================================
// MongoDB Unknown-Phrase Adapter
// =============================================================================

const collectionUnknownPhrases = "unknown_phrases"

// UnknownPhraseAdapter implements domain.UnknownPhraseRepository. Writes go
// through a circuit breaker: telemetry is best-effort and a struggling Mongo
// must not slow the message path's consumer down.
type UnknownPhraseAdapter struct {
	collection *mongo.Collection
	breaker    *gobreaker.CircuitBreaker
}

// NewUnknownPhraseAdapter creates a new unknown-phrase adapter.
func NewUnknownPhraseAdapter(db *mongo.Database) *UnknownPhraseAdapter {
	settings := gobreaker.Settings{
		Name:        "mongo-unknown-phrases",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	}

	return &UnknownPhraseAdapter{
		collection: db.Collection(collectionUnknownPhrases),
		breaker:    gobreaker.NewCircuitBreaker(settings),
	}
}

// EnsureIndexes creates necessary indexes for the collection.
func (a *UnknownPhraseAdapter) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "normalized", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "count", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "last_seen", Value: -1}},
		},
	}

	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// UpsertUnknown increments the counter for a normalized phrase, inserting it
// on first sight.
func (a *UnknownPhraseAdapter) UpsertUnknown(ctx context.Context, p *domain.UnknownPhrase) error {
	if p == nil || p.Normalized == "" {
		return errors.New("invalid unknown phrase")
	}

	now := time.Now().UTC()
	_, err := a.breaker.Execute(func() (interface{}, error) {
		filter := bson.M{"normalized": p.Normalized}
		update := bson.M{
			"$setOnInsert": bson.M{
				"phrase":     p.Phrase,
				"normalized": p.Normalized,
				"first_seen": now,
			},
			"$set": bson.M{
				"suspected_category": p.SuspectedCategory,
				"last_seen":          now,
			},
			"$inc": bson.M{"count": 1},
		}
		return a.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	})
	if err != nil {
		return fmt.Errorf("failed to upsert unknown phrase: %w", err)
	}
	return nil
}

// ListUnknown returns phrases ordered by frequency, most common first.
func (a *UnknownPhraseAdapter) ListUnknown(ctx context.Context, limit int) ([]*domain.UnknownPhrase, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "count", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := a.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list unknown phrases: %w", err)
	}
	defer cursor.Close(ctx)

	var phrases []*domain.UnknownPhrase
	if err := cursor.All(ctx, &phrases); err != nil {
		return nil, fmt.Errorf("failed to decode unknown phrases: %w", err)
	}
	return phrases, nil
}

// ClearUnknown removes all recorded phrases, typically after a rule-authoring
// pass has absorbed them, and returns how many were deleted.
func (a *UnknownPhraseAdapter) ClearUnknown(ctx context.Context) (int, error) {
	result, err := a.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to clear unknown phrases: %w", err)
	}
	return int(result.DeletedCount), nil
}

var _ domain.UnknownPhraseRepository = (*UnknownPhraseAdapter)(nil)
