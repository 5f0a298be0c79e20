package state

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// =============================================================================
// Daily Stats Counters
// =============================================================================

const statsKeyPrefix = "brain:stats:"

// statsRetention keeps daily hashes around long enough for a monthly view.
const statsRetention = 35 * 24 * time.Hour

// StatsCounter accumulates per-company daily counters in a Redis hash:
// messages, per-mood and per-intent counts, handoffs, unknown phrases.
type StatsCounter struct {
	client *redis.Client
}

// NewStatsCounter creates a new StatsCounter.
func NewStatsCounter(client *redis.Client) *StatsCounter {
	return &StatsCounter{client: client}
}

func statsKey(companyID string, day time.Time) string {
	return fmt.Sprintf("%s%s:%s", statsKeyPrefix, companyID, day.UTC().Format("2006-01-02"))
}

// Record bumps the counters for one classified message.
func (s *StatsCounter) Record(ctx context.Context, companyID, mood, intent string, operator, unclassified bool) error {
	key := statsKey(companyID, time.Now())

	pipe := s.client.Pipeline()
	pipe.HIncrBy(ctx, key, "messages", 1)
	if mood != "" {
		pipe.HIncrBy(ctx, key, "mood:"+mood, 1)
	}
	if intent != "" {
		pipe.HIncrBy(ctx, key, "intent:"+intent, 1)
	}
	if operator {
		pipe.HIncrBy(ctx, key, "handoffs", 1)
	}
	if unclassified {
		pipe.HIncrBy(ctx, key, "unknown_phrases", 1)
	}
	pipe.Expire(ctx, key, statsRetention)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record stats: %w", err)
	}
	return nil
}

// DayStats is one day's counter snapshot.
type DayStats struct {
	Day            string           `json:"day"`
	Messages       int64            `json:"messages"`
	Handoffs       int64            `json:"handoffs"`
	UnknownPhrases int64            `json:"unknown_phrases"`
	Moods          map[string]int64 `json:"moods"`
	Intents        map[string]int64 `json:"intents"`
}

// Day returns the counters for one day.
func (s *StatsCounter) Day(ctx context.Context, companyID string, day time.Time) (*DayStats, error) {
	values, err := s.client.HGetAll(ctx, statsKey(companyID, day)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read stats: %w", err)
	}

	stats := &DayStats{
		Day:     day.UTC().Format("2006-01-02"),
		Moods:   make(map[string]int64),
		Intents: make(map[string]int64),
	}
	for field, raw := range values {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		switch {
		case field == "messages":
			stats.Messages = n
		case field == "handoffs":
			stats.Handoffs = n
		case field == "unknown_phrases":
			stats.UnknownPhrases = n
		case len(field) > 5 && field[:5] == "mood:":
			stats.Moods[field[5:]] = n
		case len(field) > 7 && field[:7] == "intent:":
			stats.Intents[field[7:]] = n
		}
	}
	return stats, nil
}
