package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"brain_server/adapter/out/messaging"
	"brain_server/adapter/out/mongodb"
	"brain_server/adapter/out/persistence"
	"brain_server/adapter/out/rules"
	"brain_server/adapter/out/state"
	"brain_server/adapter/out/telegram"
	"brain_server/config"
	"brain_server/core/domain"
	"brain_server/core/service/chat"
	"brain_server/core/service/classify"
	"brain_server/infra/database"
	"brain_server/pkg/cache"
	"brain_server/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
)

type Dependencies struct {
	Config  *config.Config
	DB      *pgxpool.Pool
	SQLDB   *sqlx.DB
	Redis   *redis.Client
	MongoDB *mongo.Client
	Cache   *cache.RedisCache

	// Repositories
	CustomerRepo      *mongodb.CustomerAdapter
	UnknownPhraseRepo *mongodb.UnknownPhraseAdapter
	DecisionLogRepo   *persistence.DecisionLogAdapter

	// Conversation control state
	HandoffStore *state.HandoffStore
	StatsCounter *state.StatsCounter

	// Rules & telemetry
	RuleSource        *rules.FileSource
	TelemetryProducer *messaging.TelemetryProducer

	// Core
	Engine      *classify.Engine
	ChatService *chat.ChatService

	// Outbound
	TelegramSender *telegram.Sender
}

func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	deps := &Dependencies{Config: cfg}
	var cleanups []func()

	// Redis holds the rules cache, the telemetry stream, the handoff flags and
	// the stats counters; the service cannot run without it.
	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("redis connection failed: %w", err)
	}
	deps.Redis = redisClient
	cleanups = append(cleanups, func() { redisClient.Close() })
	deps.Cache = cache.NewRedisCache(redisClient)

	// MongoDB stores the customer brains and the unknown-phrase queue.
	mongoClient, err := mongodb.NewClient(cfg.MongoDBURL)
	if err != nil {
		cleanups[0]()
		return nil, nil, fmt.Errorf("mongodb connection failed: %w", err)
	}
	deps.MongoDB = mongoClient
	cleanups = append(cleanups, func() {
		mongoClient.Disconnect(context.Background())
	})

	mongoDB := mongoClient.Database(cfg.MongoDBName)
	deps.CustomerRepo = mongodb.NewCustomerAdapter(mongoDB)
	deps.UnknownPhraseRepo = mongodb.NewUnknownPhraseAdapter(mongoDB)

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelIndex()
	if err := deps.CustomerRepo.EnsureIndexes(indexCtx); err != nil {
		logger.Warn("Failed to ensure customer indexes: %v", err)
	}
	if err := deps.UnknownPhraseRepo.EnsureIndexes(indexCtx); err != nil {
		logger.Warn("Failed to ensure unknown-phrase indexes: %v", err)
	}

	// PostgreSQL carries only the append-only decision audit log; the service
	// degrades to no audit trail when it is not configured.
	if cfg.DatabaseURL != "" {
		db, err := database.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			logger.Warn("Postgres connection failed, decision audit disabled: %v", err)
		} else {
			deps.DB = db
			cleanups = append(cleanups, func() { db.Close() })

			sqlxURL := cfg.DatabaseURL
			if strings.Contains(sqlxURL, "?") {
				sqlxURL += "&default_query_exec_mode=simple_protocol"
			} else {
				sqlxURL += "?default_query_exec_mode=simple_protocol"
			}
			sqlDB, err := sqlx.Connect("pgx", sqlxURL)
			if err != nil {
				logger.Warn("sqlx connection failed, decision audit disabled: %v", err)
			} else {
				sqlDB.SetMaxOpenConns(25)
				sqlDB.SetMaxIdleConns(10)
				sqlDB.SetConnMaxLifetime(30 * time.Minute)
				sqlDB.SetConnMaxIdleTime(5 * time.Minute)
				deps.SQLDB = sqlDB
				cleanups = append(cleanups, func() { sqlDB.Close() })

				deps.DecisionLogRepo = persistence.NewDecisionLogAdapter(sqlDB)
				schemaCtx, cancelSchema := context.WithTimeout(context.Background(), 15*time.Second)
				if err := deps.DecisionLogRepo.EnsureSchema(schemaCtx); err != nil {
					logger.Warn("Failed to ensure decision log schema: %v", err)
				}
				cancelSchema()
				logger.Info("Decision audit log initialized")
			}
		}
	}

	// Conversation control state
	deps.HandoffStore = state.NewHandoffStore(redisClient, cfg.HandoffTTL)
	deps.StatsCounter = state.NewStatsCounter(redisClient)

	// Rule tables: files merged over embedded defaults, shared through Redis.
	deps.RuleSource = rules.NewFileSource(
		cfg.RulesDir,
		deps.Cache,
		time.Duration(cfg.RulesCacheTTLMin)*time.Minute,
	)

	// Unknown-phrase telemetry producer
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()
	deps.TelemetryProducer = messaging.NewTelemetryProducer(redisClient, cfg.TelemetryStream, zlog)

	// Classification engine and chat orchestration
	deps.Engine = classify.NewEngine(deps.RuleSource, deps.TelemetryProducer)

	var audit domain.DecisionLog
	if deps.DecisionLogRepo != nil {
		audit = deps.DecisionLogRepo
	}
	deps.ChatService = chat.NewChatService(
		deps.CustomerRepo,
		deps.Engine,
		deps.HandoffStore,
		audit,
		deps.StatsCounter,
	)

	// Telegram outbound sender (optional)
	if cfg.TelegramBotToken != "" {
		deps.TelegramSender = telegram.NewSender(
			cfg.TelegramBotToken,
			cfg.TelegramAPIBase,
			time.Duration(cfg.TelegramTimeoutSec)*time.Second,
		)
		logger.Info("Telegram sender initialized")
	}

	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	return deps, cleanup, nil
}

func (d *Dependencies) HealthCheck(ctx context.Context) error {
	if d.Redis != nil {
		if err := d.Redis.Ping(ctx).Err(); err != nil {
			return err
		}
	}
	if d.DB != nil {
		if err := d.DB.Ping(ctx); err != nil {
			return err
		}
	}
	return nil
}
