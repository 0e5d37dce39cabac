// Package main provides the FleetForge API server entrypoint.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/fleetforge/fleetforge/internal/cache"
	"github.com/fleetforge/fleetforge/internal/config"
	"github.com/fleetforge/fleetforge/internal/lookup"
	"github.com/fleetforge/fleetforge/internal/observability"
	"github.com/fleetforge/fleetforge/internal/specsource"
	"github.com/fleetforge/fleetforge/internal/storage"
)

func main() {
	// Pick up .env overrides in development; absence is fine.
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
		Str("cache", cfg.Cache.Driver).
		Msg("Starting FleetForge API")

	ctx := context.Background()

	db, err := storage.Open(ctx, storage.OpenOptions{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.DatabaseDSN(),
		MaxOpenConns:    maxOpenConns(cfg),
		MaxIdleConns:    cfg.Database.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.Postgres.ConnMaxLifetime,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open database")
		os.Exit(1)
	}
	defer db.Close()

	if err := storage.Bootstrap(ctx, db); err != nil {
		logger.Error().Err(err).Msg("Failed to bootstrap schema")
		os.Exit(1)
	}

	cacheClient := newCacheClient(cfg, logger)
	defer cacheClient.Close()

	resolver := newResolver(cfg, logger)

	vehicles := storage.NewVehicleRepository(db)
	specs := storage.NewSpecificationRepository(db)

	lookupSvc := lookup.NewService(logger, resolver, cacheClient, specs, lookup.Config{
		CacheResults: cfg.Lookup.CacheResults,
		CacheTTL:     cfg.Lookup.CacheTTL,
	})

	router := NewRouter(logger, cfg, RouterDeps{
		DB:       db,
		Vehicles: vehicles,
		Specs:    specs,
		Lookup:   lookupSvc,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
		if err := srv.Close(); err != nil {
			logger.Error().Err(err).Msg("Forced shutdown failed")
		}
	}

	logger.Info().Msg("Server stopped")
}

func maxOpenConns(cfg *config.Config) int {
	if cfg.Database.Driver == "sqlite" {
		return cfg.Database.SQLite.MaxOpenConns
	}
	return cfg.Database.Postgres.MaxOpenConns
}

// newCacheClient selects the configured cache backend, falling back to the
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
			logger.Info().Str("addr", cfg.Cache.Redis.Addr).Msg("Using Redis cache")
			return client
		}
		logger.Warn().Err(err).Msg("Redis unavailable, using in-memory cache")
	}
	return cache.NewMemoryClient(cfg.Cache.MaxEntries)
}

// newResolver registers every configured specification source.
func newResolver(cfg *config.Config, logger *observability.Logger) *specsource.Resolver {
	httpClient := &http.Client{}
	timeout := cfg.Lookup.RequestTimeout

	resolver := specsource.NewResolver(logger)
	resolver.Register(specsource.NewDVLAAdapter(httpClient, logger, specsource.DVLAConfig{
		BaseURL: cfg.Sources.DVLA.BaseURL,
		APIKey:  cfg.Sources.DVLA.APIKey,
		Timeout: timeout,
	}))
	resolver.Register(specsource.NewNinjasMotorcycleAdapter(httpClient, logger, specsource.NinjasConfig{
		BaseURL: cfg.Sources.APINinjas.BaseURL,
		APIKey:  cfg.Sources.APINinjas.APIKey,
		Timeout: timeout,
	}))
	resolver.Register(specsource.NewNinjasCarAdapter(httpClient, logger, specsource.NinjasConfig{
		BaseURL: cfg.Sources.APINinjas.BaseURL,
		APIKey:  cfg.Sources.APINinjas.APIKey,
		Timeout: timeout,
	}))
	resolver.Register(specsource.NewOpenVehiclesAdapter(httpClient, logger, specsource.OpenVehiclesConfig{
		BaseURL: cfg.Sources.OpenVehicles.BaseURL,
		APIKey:  cfg.Sources.OpenVehicles.APIKey,
		Timeout: timeout,
	}))
	return resolver
}
