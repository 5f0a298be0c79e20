// Package state keeps the small per-conversation control state in Redis:
// the operator-handoff flag and the daily classification counters.
package state

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"brain_server/core/domain"
)

// =============================================================================
// Handoff Store
// =============================================================================

const handoffKeyPrefix = "brain:handoff:"

// HandoffStore implements domain.HandoffStore. While the flag is set, the
// automated responder stays silent for that customer; the TTL is a safety
// valve so a forgotten handoff eventually releases itself.
type HandoffStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewHandoffStore creates a new HandoffStore.
func NewHandoffStore(client *redis.Client, ttl time.Duration) *HandoffStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &HandoffStore{client: client, ttl: ttl}
}

func handoffKey(companyID, platform, userID string) string {
	return fmt.Sprintf("%s%s:%s:%s", handoffKeyPrefix, companyID, platform, userID)
}

// Set activates or clears the handoff flag.
func (s *HandoffStore) Set(ctx context.Context, companyID, platform, userID string, active bool, reason string) error {
	key := handoffKey(companyID, platform, userID)

	if !active {
		if err := s.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("failed to clear handoff flag: %w", err)
		}
		return nil
	}

	err := s.client.HSet(ctx, key,
		"reason", reason,
		"since", time.Now().UTC().Format(time.RFC3339),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to set handoff flag: %w", err)
	}
	if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to expire handoff flag: %w", err)
	}
	return nil
}

// Active reports whether the customer is currently human-controlled.
func (s *HandoffStore) Active(ctx context.Context, companyID, platform, userID string) (bool, error) {
	exists, err := s.client.Exists(ctx, handoffKey(companyID, platform, userID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check handoff flag: %w", err)
	}
	return exists > 0, nil
}

var _ domain.HandoffStore = (*HandoffStore)(nil)
