package bootstrap

import (
	"context"
	"os"
	"sync"
	"time"

	"brain_server/adapter/out/messaging"
	"brain_server/config"
	"brain_server/pkg/logger"

	"github.com/rs/zerolog"
)

// Consumer drains the unknown-phrase telemetry stream into MongoDB so
// operators can review phrases the rule tables missed.
type Consumer struct {
	consumer *messaging.TelemetryConsumer
	deps     *Dependencies
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	zlog     zerolog.Logger
}

func NewConsumer(cfg *config.Config) (*Consumer, func(), error) {
	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		return nil, nil, err
	}

	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
		With().Timestamp().Str("component", "telemetry-consumer").Logger()

	consumer := messaging.NewTelemetryConsumer(deps.Redis, deps.UnknownPhraseRepo, &messaging.TelemetryConsumerConfig{
		Stream:               cfg.TelemetryStream,
		Group:                cfg.TelemetryGroup,
		Consumer:             cfg.InstanceID,
		Logger:               zlog,
		BatchSize:            cfg.ConsumerBatchSize,
		BlockMS:              cfg.ConsumerBlockMS,
		PendingCheckInterval: time.Duration(cfg.ConsumerPendingCheckSec) * time.Second,
		MaxRetries:           cfg.ConsumerMaxRetries,
	})

	ctx, cancel := context.WithCancel(context.Background())

	c := &Consumer{
		consumer: consumer,
		deps:     deps,
		ctx:      ctx,
		cancel:   cancel,
		zlog:     zlog,
	}

	return c, cleanup, nil
}

func (c *Consumer) Start() {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.zlog.Info().Msg("Starting telemetry consumer...")
		if err := c.consumer.Run(c.ctx); err != nil && err != context.Canceled {
			c.zlog.Error().Err(err).Msg("Telemetry consumer error")
		}
	}()

	// Block until context is cancelled
	<-c.ctx.Done()
}

func (c *Consumer) Stop() {
	c.cancel()
	c.wg.Wait()
	logger.Info("Telemetry consumer stopped")
}

func (c *Consumer) Dependencies() *Dependencies {
	return c.deps
}
