package main

import (
	"log"
	"time"
	_ "time/tzdata"

	"phone-repair/cmd"
	"phone-repair/internal/data/repository"
	"phone-repair/internal/usecase"
	"phone-repair/internal/wire"
	"phone-repair/pkg/cache"
	"phone-repair/pkg/database"
	"phone-repair/pkg/mailer"
	"phone-repair/pkg/metrics"
	"phone-repair/pkg/payment"
	"phone-repair/pkg/utils"

	"go.uber.org/zap"
)

const (
	cachePrefix     = "phone-repair:"
	webhookPrefix   = "stripe:event:"
	webhookDedupTTL = 7 * 24 * time.Hour
)

func main() {
	// Load config
	config, err := utils.LoadConfig(".env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Name, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.String("timezone", config.Location().String()),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	deps := usecase.Deps{
		Gateway: payment.NewStripe(config.Stripe, logger),
		Mailer:  mailer.New(config.Email, logger),
		Metrics: metrics.New(config.App.Name),
	}

	// Redis is optional: without it availability is read straight from
	// Postgres and webhook replays are caught by the booking state alone.
	if config.Redis.Enabled() {
		client, err := cache.NewRedis(config.Redis.Addr, config.Redis.User, config.Redis.Password)
		if err != nil {
			logger.Warn("Redis unavailable, continuing without cache", zap.Error(err))
		} else {
			defer client.Close()
			deps.Cache = cache.NewJSONStore(client, cachePrefix, config.Redis.CacheTTL)
			deps.Deduper = cache.NewDeduper(client, webhookPrefix, webhookDedupTTL)
			logger.Info("Redis connected", zap.String("addr", config.Redis.Addr))
		}
	}

	if config.Stripe.SecretKey == "" {
		logger.Warn("Stripe not configured, online payments are disabled")
	}

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Wire all dependencies
	app := wire.Wiring(repos, deps, config, logger)

	if err := cmd.APIServer(app.Router, config.App.Port, config.Server, logger); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}
