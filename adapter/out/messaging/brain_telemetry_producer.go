// Package messaging provides the Redis Stream telemetry pipeline for
// unknown-phrase events.
package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"brain_server/core/domain"
)

// StreamUnknownPhrases is the stream unmatched messages are published to.
// The classifier never blocks on this path: publish failures are logged and
// dropped.
const StreamUnknownPhrases = "brain:unknown_phrases"

// unknownPhraseEvent is the wire form of one telemetry record.
type unknownPhraseEvent struct {
	Phrase            string    `json:"phrase"`
	Normalized        string    `json:"normalized"`
	SuspectedCategory string    `json:"suspected_category,omitempty"`
	SeenAt            time.Time `json:"seen_at"`
}

// TelemetryProducer implements domain.TelemetrySink over a Redis Stream.
type TelemetryProducer struct {
	client *redis.Client
	stream string
	log    zerolog.Logger

	// publishTimeout bounds the XADD so a stalled Redis cannot hold a
	// classification goroutine.
	publishTimeout time.Duration
}

// NewTelemetryProducer creates a new TelemetryProducer.
func NewTelemetryProducer(client *redis.Client, stream string, log zerolog.Logger) *TelemetryProducer {
	if stream == "" {
		stream = StreamUnknownPhrases
	}
	return &TelemetryProducer{
		client:         client,
		stream:         stream,
		log:            log,
		publishTimeout: 2 * time.Second,
	}
}

// RecordUnknown publishes one unknown-phrase event. Best-effort by contract.
func (p *TelemetryProducer) RecordUnknown(phrase, normalized, suspectedCategory string) {
	event := unknownPhraseEvent{
		Phrase:            phrase,
		Normalized:        normalized,
		SuspectedCategory: suspectedCategory,
		SeenAt:            time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.publishTimeout)
	defer cancel()

	if err := p.publish(ctx, event); err != nil {
		p.log.Warn().Err(err).Str("normalized", normalized).Msg("dropping unknown-phrase event")
	}
}

func (p *TelemetryProducer) publish(ctx context.Context, event unknownPhraseEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		ID:     "*",
		// Cap the stream so an unattended consumer cannot grow it unbounded.
		MaxLen: 100000,
		Approx: true,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.stream, err)
	}
	return nil
}

var _ domain.TelemetrySink = (*TelemetryProducer)(nil)
