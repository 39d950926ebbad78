// Package main is the entry point for the datasets API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"datasets/internal/app"
	"datasets/internal/domain/auth"
	v1 "datasets/internal/infrastructure/http/v1"
	"datasets/internal/infrastructure/http/v1/middleware"
	"datasets/internal/infrastructure/storage/postgres"
	"datasets/pkg/logger"
)

const version = "0.1.0"

func main() {
	cfg := loadConfig()

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Development(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting datasets server", "version", version, "env", cfg.Env)

	// --- Stores ---
	var (
		stores app.Stores
		pool   *postgres.Pool
	)
	if cfg.DatabaseURL == "" {
		stores = app.Memory()
		log.Info("using in-memory store")
	} else {
		poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
		poolCfg.MaxConns = int32(cfg.DBMaxConns)
		poolCfg.MinConns = int32(cfg.DBMinConns)
		pool, err = postgres.NewPool(ctx, poolCfg)
		if err != nil {
			log.Fatalw("failed to connect to database", "error", err)
		}
		defer pool.Close()

		stores, err = app.Postgres(pool, app.PostgresOptions{
			CacheMetadata: true,
			Listen:        cfg.MetadataCacheListen,
		})
		if err != nil {
			log.Fatalw("failed to set up stores", "error", err)
		}
	}
	if err := stores.Start(ctx); err != nil {
		log.Fatalw("failed to start stores", "error", err)
	}
	defer stores.Close()

	records := stores.RecordService()

	if cfg.MetadataFile != "" {
		sum, err := stores.LoadFixture(ctx, cfg.MetadataFile, records)
		if err != nil {
			log.Fatalw("failed to load metadata file", "file", cfg.MetadataFile, "error", err)
		}
		log.Infow("metadata file loaded", "file", cfg.MetadataFile, "datasets", sum.Datasets, "records", sum.Records)
	}

	// --- JWT ---
	var validator middleware.JWTValidator
	if cfg.AuthenticationOn {
		validator = auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWTSecret))
	} else {
		log.Warn("authentication is off; record writes are open")
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:        log,
		JWTValidator:  validator,
		Datasets:      stores.Datasets,
		Records:       records,
		Pool:          pool,
		MetadataCache: stores.Cache,
		Version:       version,
		Development:   cfg.Development(),
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
