package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/IamRajen/PriceTracker/config"
	"github.com/IamRajen/PriceTracker/internal/crawler"
	"github.com/IamRajen/PriceTracker/internal/store"
	"github.com/IamRajen/PriceTracker/internal/tracker"
	"github.com/IamRajen/PriceTracker/logger"
	"github.com/IamRajen/PriceTracker/services/cache"
	"github.com/IamRajen/PriceTracker/services/notifier"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Strs("sources", cfg.Sources).
		Dur("track_interval", cfg.TrackInterval).
		Msg("Starting application")

	// Set up signal handling
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize persistence
	st, err := newStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize store")
	}
	defer st.Close()

	// Initialize cache service for fetch rate-limit blocks
	cacheService := cache.NewMemcacheService(cfg.MemcacheAddr)
	log.Info().Str("addr", cfg.MemcacheAddr).Msg("Connected to Memcache")

	// Initialize notification sink
	sink := notifier.NewRedisSink(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisMaxStream)
	defer sink.Close()
	log.Info().Str("addr", cfg.RedisAddr).Str("stream", cfg.RedisStream).Msg("Connected to Redis")

	// Build the source registry
	registry := crawler.NewRegistry(cfg, cacheService)
	if len(registry) == 0 {
		log.Fatal().Msg("No crawl sources were registered")
	}

	// Run the price tracker until shutdown
	t := tracker.NewTracker(st, registry, sink, cfg.DetailDelay)
	tracker.RunPeriodically(ctx, t, cfg.TrackInterval)

	log.Info().Msg("Shutting down gracefully...")
}

// newStore connects to postgres, or falls back to the in-memory store when
// no database host is configured
func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	dsn := cfg.DatabaseDSN()
	if dsn == "" {
		logger.Warn("DB_HOST not set, using in-memory store")
		return store.NewMemoryStore(), nil
	}

	st, err := store.NewPostgresStore(ctx, dsn)
	if err != nil {
		return nil, err
	}
	logger.Info("Connected to Postgres at %s:%s/%s", cfg.DBHost, cfg.DBPort, cfg.DBName)
	return st, nil
}
