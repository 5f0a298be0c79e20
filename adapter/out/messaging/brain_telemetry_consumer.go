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

// TelemetryConsumer drains the unknown-phrase stream into the durable
// repository, deduplicating by normalized phrase on write. One consumer group
// member per instance; stuck pending messages are reclaimed, and messages
// that keep failing land in a dead-letter stream.
type TelemetryConsumer struct {
	client *redis.Client
	repo   domain.UnknownPhraseRepository
	stream string
	group  string
	name   string
	log    zerolog.Logger

	batchSize            int64
	blockTime            time.Duration
	pendingCheckInterval time.Duration
	pendingIdleTime      time.Duration
	maxRetries           int
}

// TelemetryConsumerConfig holds consumer configuration.
type TelemetryConsumerConfig struct {
	Stream   string
	Group    string
	Consumer string
	Logger   zerolog.Logger

	BatchSize            int
	BlockMS              int
	PendingCheckInterval time.Duration
	PendingIdleTime      time.Duration
	MaxRetries           int
}

// NewTelemetryConsumer creates a new TelemetryConsumer.
func NewTelemetryConsumer(client *redis.Client, repo domain.UnknownPhraseRepository, cfg *TelemetryConsumerConfig) *TelemetryConsumer {
	stream := cfg.Stream
	if stream == "" {
		stream = StreamUnknownPhrases
	}
	batchSize := int64(cfg.BatchSize)
	if batchSize <= 0 {
		batchSize = 50
	}
	blockTime := time.Duration(cfg.BlockMS) * time.Millisecond
	if blockTime <= 0 {
		blockTime = 5 * time.Second
	}
	pendingCheck := cfg.PendingCheckInterval
	if pendingCheck == 0 {
		pendingCheck = 30 * time.Second
	}
	pendingIdle := cfg.PendingIdleTime
	if pendingIdle == 0 {
		pendingIdle = 2 * time.Minute
	}
	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}

	return &TelemetryConsumer{
		client:               client,
		repo:                 repo,
		stream:               stream,
		group:                cfg.Group,
		name:                 cfg.Consumer,
		log:                  cfg.Logger,
		batchSize:            batchSize,
		blockTime:            blockTime,
		pendingCheckInterval: pendingCheck,
		pendingIdleTime:      pendingIdle,
		maxRetries:           maxRetries,
	}
}

// Run consumes until the context is cancelled.
func (c *TelemetryConsumer) Run(ctx context.Context) error {
	c.log.Info().
		Str("stream", c.stream).
		Str("group", c.group).
		Str("consumer", c.name).
		Msg("starting telemetry consumer")

	c.createConsumerGroup(ctx)
	go c.processPendingMessages(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		result, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.group,
			Consumer: c.name,
			Streams:  []string{c.stream, ">"},
			Count:    c.batchSize,
			Block:    c.blockTime,
		}).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Error().Err(err).Msg("error reading telemetry stream")
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range result {
			for _, msg := range stream.Messages {
				if err := c.processMessage(ctx, msg); err != nil {
					c.log.Error().Err(err).Str("id", msg.ID).Msg("error processing telemetry message")
					continue
				}
				if err := c.client.XAck(ctx, c.stream, c.group, msg.ID).Err(); err != nil {
					c.log.Error().Err(err).Str("id", msg.ID).Msg("error acknowledging telemetry message")
				}
			}
		}
	}
}

// processPendingMessages periodically reclaims messages another consumer took
// but never acknowledged.
func (c *TelemetryConsumer) processPendingMessages(ctx context.Context) {
	ticker := time.NewTicker(c.pendingCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.claimAndProcessPending(ctx)
		}
	}
}

func (c *TelemetryConsumer) claimAndProcessPending(ctx context.Context) {
	pending, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: c.stream,
		Group:  c.group,
		Start:  "-",
		End:    "+",
		Count:  100,
	}).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.Error().Err(err).Msg("error getting pending telemetry messages")
		}
		return
	}

	for _, p := range pending {
		if p.Idle < c.pendingIdleTime {
			continue
		}

		if int(p.RetryCount) >= c.maxRetries {
			c.log.Warn().
				Str("id", p.ID).
				Int64("retries", p.RetryCount).
				Msg("telemetry message exceeded max retries, moving to DLQ")
			if err := c.moveToDeadLetterQueue(ctx, p.ID); err != nil {
				c.log.Error().Err(err).Str("id", p.ID).Msg("error moving telemetry message to DLQ")
			}
			c.client.XAck(ctx, c.stream, c.group, p.ID)
			continue
		}

		claimed, err := c.client.XClaim(ctx, &redis.XClaimArgs{
			Stream:   c.stream,
			Group:    c.group,
			Consumer: c.name,
			MinIdle:  c.pendingIdleTime,
			Messages: []string{p.ID},
		}).Result()
		if err != nil {
			c.log.Error().Err(err).Str("id", p.ID).Msg("error claiming telemetry message")
			continue
		}

		for _, msg := range claimed {
			if err := c.processMessage(ctx, msg); err != nil {
				c.log.Error().Err(err).Str("id", msg.ID).Msg("error reprocessing telemetry message")
				continue
			}
			c.client.XAck(ctx, c.stream, c.group, msg.ID)
		}
	}
}

func (c *TelemetryConsumer) createConsumerGroup(ctx context.Context) {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.group, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		c.log.Warn().Err(err).Msg("error creating telemetry consumer group")
	}
}

func (c *TelemetryConsumer) processMessage(ctx context.Context, msg redis.XMessage) error {
	data, ok := msg.Values["data"].(string)
	if !ok {
		return fmt.Errorf("invalid message format: missing data field")
	}

	var event unknownPhraseEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return fmt.Errorf("invalid telemetry payload: %w", err)
	}
	if event.Normalized == "" {
		return fmt.Errorf("telemetry payload without normalized phrase")
	}

	return c.repo.UpsertUnknown(ctx, &domain.UnknownPhrase{
		Phrase:            event.Phrase,
		Normalized:        event.Normalized,
		SuspectedCategory: event.SuspectedCategory,
	})
}

// moveToDeadLetterQueue copies a poisoned message to dlq:{stream}.
func (c *TelemetryConsumer) moveToDeadLetterQueue(ctx context.Context, msgID string) error {
	messages, err := c.client.XRange(ctx, c.stream, msgID, msgID).Result()
	if err != nil {
		return fmt.Errorf("failed to read message for DLQ: %w", err)
	}
	if len(messages) == 0 {
		return fmt.Errorf("message %s not found in stream %s", msgID, c.stream)
	}

	dlqData := map[string]interface{}{
		"original_stream": c.stream,
		"original_id":     msgID,
		"failed_at":       time.Now().UTC().Format(time.RFC3339),
		"consumer":        c.name,
		"group":           c.group,
	}
	for k, v := range messages[0].Values {
		dlqData["original_"+k] = v
	}

	_, err = c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: "dlq:" + c.stream,
		Values: dlqData,
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to add message to DLQ: %w", err)
	}
	return nil
}
