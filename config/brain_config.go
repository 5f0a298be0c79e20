package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// generateInstanceID creates a unique instance ID using hostname and PID
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "brain"
	}
	return fmt.Sprintf("%s-%d", hostname, os.Getpid())
}

type Config struct {
	Port        string
	Environment string

	// Database
	DatabaseURL string
	MongoDBURL  string
	MongoDBName string
	RedisURL    string

	// JWT (management endpoints)
	JWTSecret string

	// Rules
	RulesDir            string
	RulesCacheTTLMin    int
	RulesReloadOnChange bool

	// Telegram
	TelegramBotToken      string
	TelegramAPIBase       string
	TelegramTimeoutSec    int
	TelegramWebhookSecret string

	// Instance
	InstanceID string

	// Telemetry consumer (Redis Stream)
	TelemetryStream         string
	TelemetryGroup          string
	ConsumerBatchSize       int
	ConsumerBlockMS         int
	ConsumerMaxRetries      int
	ConsumerPendingCheckSec int
	ConsumerRetryDelaySec   int

	// Handoff
	HandoffTTL time.Duration

	// Cache
	CacheDefaultTTLMin  int
	CacheCustomerTTLMin int

	// CORS
	AllowedOrigins []string
}

func Load() (*Config, error) {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", ""),
		MongoDBURL:  getEnv("MONGODB_URL", ""),
		MongoDBName: getEnv("MONGODB_DATABASE", "brain"),
		RedisURL:    getEnv("REDIS_URL", ""),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", ""),

		// Rules
		RulesDir:            getEnv("RULES_DIR", "./rules"),
		RulesCacheTTLMin:    getEnvInt("RULES_CACHE_TTL_MIN", 5),
		RulesReloadOnChange: getEnvBool("RULES_RELOAD_ON_CHANGE", true),

		// Telegram
		TelegramBotToken:      getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramAPIBase:       getEnv("TELEGRAM_API_BASE", "https://api.telegram.org"),
		TelegramTimeoutSec:    getEnvInt("TELEGRAM_TIMEOUT_SEC", 10),
		TelegramWebhookSecret: getEnv("TELEGRAM_WEBHOOK_SECRET", ""),

		// Instance
		InstanceID: getEnv("INSTANCE_ID", generateInstanceID()),

		// Telemetry consumer
		TelemetryStream:         getEnv("TELEMETRY_STREAM", "brain:unknown_phrases"),
		TelemetryGroup:          getEnv("TELEMETRY_GROUP", "brain-telemetry"),
		ConsumerBatchSize:       getEnvInt("CONSUMER_BATCH_SIZE", 50),
		ConsumerBlockMS:         getEnvInt("CONSUMER_BLOCK_MS", 5000),
		ConsumerMaxRetries:      getEnvInt("CONSUMER_MAX_RETRIES", 3),
		ConsumerPendingCheckSec: getEnvInt("CONSUMER_PENDING_CHECK_SEC", 60),
		ConsumerRetryDelaySec:   getEnvInt("CONSUMER_RETRY_DELAY_SEC", 5),

		// Handoff
		HandoffTTL: time.Duration(getEnvInt("HANDOFF_TTL_HOUR", 24)) * time.Hour,

		// Cache
		CacheDefaultTTLMin:  getEnvInt("CACHE_DEFAULT_TTL_MIN", 30),
		CacheCustomerTTLMin: getEnvInt("CACHE_CUSTOMER_TTL_MIN", 10),

		// CORS
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
