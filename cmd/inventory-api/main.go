package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/retailplus/inventory-engine/internal/agent"
	"github.com/retailplus/inventory-engine/internal/cache"
	"github.com/retailplus/inventory-engine/internal/config"
	"github.com/retailplus/inventory-engine/internal/llm"
	"github.com/retailplus/inventory-engine/internal/observability"
	"github.com/retailplus/inventory-engine/internal/storage"
)

func main() {
	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if len(os.Args) > 2 && os.Args[1] == "--config" {
		cfgPath = os.Args[2]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})

	logger.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("database", cfg.Database.Driver).
		Str("model", cfg.Model.Name).
		Msg("Starting inventory API")

	db, err := storage.Open(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := storage.InitSchema(context.Background(), db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize schema")
	}

	cacheClient := newCacheClient(cfg, logger)
	defer cacheClient.Close()

	modelClient := llm.NewClient(llm.Config{
		BaseURL:        cfg.Model.BaseURL,
		Model:          cfg.Model.Name,
		Timeout:        cfg.Model.RequestTimeout,
		MaxRetries:     cfg.Model.MaxRetries,
		InitialBackoff: cfg.Model.InitialBackoff,
		MaxBackoff:     cfg.Model.MaxBackoff,
	}, logger)

	demandRepo := storage.NewDemandRepository(db)
	inventoryRepo := storage.NewInventoryRepository(db)

	service := agent.NewService(agent.ServiceParams{
		Demand:    demandRepo,
		Inventory: inventoryRepo,
		Pricing:   storage.NewPricingRepository(db),
		Model:     modelClient,
		Cache:     cacheClient,
		CacheTTL:  cfg.Cache.TTL,
		Logger:    logger,
	})

	router := NewRouter(logger, cfg, Deps{
		Service:   service,
		Demand:    demandRepo,
		Inventory: inventoryRepo,
		Stats:     storage.NewStatsRepository(db),
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("HTTP server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error().Err(err).Msg("Server error")
	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
		if err := srv.Close(); err != nil {
			logger.Error().Err(err).Msg("Forced shutdown failed")
		}
	}

	logger.Info().Msg("Server stopped")
}

// newCacheClient builds the configured cache backend, downgrading to the
// in-memory cache when Redis is unreachable.
func newCacheClient(cfg *config.Config, logger *observability.Logger) cache.Client {
	if cfg.Cache.Driver == "redis" {
		client, err := cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
		})
		if err == nil {
			return client
		}
		logger.Warn().Err(err).Msg("Redis unavailable, using in-memory cache")
	}
	return cache.NewMemoryClient(cfg.Cache.MaxEntries)
}
