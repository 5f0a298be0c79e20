package bootstrap

import (
	"strings"
	"time"

	"brain_server/adapter/in/http"
	"brain_server/config"
	"brain_server/infra/middleware"
	"brain_server/pkg/logger"
	"brain_server/pkg/ratelimit"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func NewAPI(cfg *config.Config) (*fiber.App, func(), error) {
	// Initialize logger
	logLevel := logger.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = logger.LevelDebug
	}
	logger.Init(logger.Config{
		Level:   logLevel,
		Service: "brain-api",
	})

	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize dependencies")
		return nil, nil, err
	}

	// Token revocation checks need Redis
	middleware.InitTokenBlacklist(deps.Redis)

	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),
		Prefork:               false,
		StrictRouting:         false,
		CaseSensitive:         false,

		ReadBufferSize:  16384,
		WriteBufferSize: 16384,

		// go-json is 2-3x faster than encoding/json for serialization
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,

		BodyLimit: 10 * 1024 * 1024, // 10MB

		Concurrency: 256 * 1024,

		ServerHeader:             "",
		DisableDefaultDate:       true,
		DisableHeaderNormalizing: false,

		DisableKeepalive: false,

		StreamRequestBody:            true,
		DisablePreParseMultipartForm: true,
	})

	// Global middleware stack (order matters)
	app.Use(middleware.Recover())       // 1. Panic recovery
	app.Use(middleware.RequestID())     // 2. Request ID
	app.Use(middleware.RequestLogger()) // 3. Request logging

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// CORS - AllowCredentials:true requires explicit origins (not "*")
	allowOrigins := strings.Join(cfg.AllowedOrigins, ",")
	allowCredentials := true
	if allowOrigins == "" || allowOrigins == "*" {
		// In production, never allow "*" with credentials
		if cfg.IsProduction() {
			allowOrigins = ""
			allowCredentials = false
		} else {
			allowOrigins = "http://localhost:3000,http://localhost:5173"
		}
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Request-ID",
		ExposeHeaders:    "X-Request-ID",
		AllowCredentials: allowCredentials,
		MaxAge:           86400, // 24 hours
	}))

	// Health check (no auth required)
	healthHandler := http.NewHealthHandler(deps.DB, deps.Redis, deps.MongoDB)
	healthHandler.Register(app)

	// Telegram webhook (no auth - Telegram calls this with the path secret)
	if deps.TelegramSender != nil || cfg.TelegramWebhookSecret != "" {
		debouncer := ratelimit.NewDebouncer(deps.Redis, 5*time.Minute)
		webhookHandler := http.NewTelegramWebhookHandler(
			deps.ChatService,
			deps.TelegramSender,
			cfg.TelegramWebhookSecret,
			debouncer,
		)
		webhookHandler.Register(app)
		logger.Info("Telegram webhook registered")
	}

	// API routes (with auth and rate limiting)
	api := app.Group("/api/v1")
	api.Use(middleware.JWTAuth(cfg.JWTSecret))
	api.Use(middleware.RateLimit(deps.Redis, 50, 100))

	// Register handlers
	chatHandler := http.NewChatHandler(deps.ChatService)
	chatHandler.Register(api)

	var history http.DecisionHistory
	if deps.DecisionLogRepo != nil {
		history = deps.DecisionLogRepo
	}
	customerHandler := http.NewCustomerHandler(deps.CustomerRepo, history)
	customerHandler.Register(api)

	rulesHandler := http.NewRulesHandler(deps.RuleSource, deps.UnknownPhraseRepo)
	rulesHandler.Register(api)

	handoffHandler := http.NewHandoffHandler(deps.HandoffStore)
	handoffHandler.Register(api)

	statsHandler := http.NewStatsHandler(deps.StatsCounter)
	statsHandler.Register(api)

	logger.Info("API server initialized successfully")

	return app, cleanup, nil
}
