// Command api is the FIFA Player Analytics API server.
//
// Usage:
//
//	fifa-api
//	DATA_SOURCE=https://example.com/players_21.csv API_PORT=8080 fifa-api

// @title FIFA Player Analytics API
// @version 1.0.0
// @description Loads, cleans and filters the FIFA player dataset, serves descriptive statistics and runs the potential prediction model.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @contact.name FIFA Analytics
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/albapepper/fifa-analytics/internal/api"
	"github.com/albapepper/fifa-analytics/internal/api/handler"
	"github.com/albapepper/fifa-analytics/internal/cache"
	"github.com/albapepper/fifa-analytics/internal/config"
	"github.com/albapepper/fifa-analytics/internal/db"
	"github.com/albapepper/fifa-analytics/internal/listener"
	"github.com/albapepper/fifa-analytics/internal/maintenance"
	"github.com/albapepper/fifa-analytics/internal/metrics"
	"github.com/albapepper/fifa-analytics/internal/predict"
	"github.com/albapepper/fifa-analytics/internal/source"

	_ "github.com/albapepper/fifa-analytics/docs" // swagger docs
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dbOpts := db.Options{
		MinConns:        cfg.DBPoolMinConns,
		MaxConns:        cfg.DBPoolMaxConns,
		MaxConnLifetime: cfg.DBPoolMaxLife,
	}

	// Optional database for /health/db
	var pool *db.Pool
	if cfg.DatabaseURL != "" {
		logger.Info("Connecting to database...")
		pool, err = db.New(ctx, cfg.DatabaseURL, dbOpts)
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		logger.Info("Database connected",
			"min_conns", cfg.DBPoolMinConns,
			"max_conns", cfg.DBPoolMaxConns)
	}

	m := metrics.New()

	// Dataset store and response cache
	loader := source.NewLoader(source.Options{
		FetchTimeout:      cfg.FetchTimeout,
		RequestsPerMinute: cfg.FetchRatePerMinute,
		DB:                dbOpts,
	}, logger)
	store := cache.NewStore(loader.LoadClean, cfg.CacheEnabled, logger, m)
	responses := cache.New(cfg.CacheEnabled)
	defer responses.Close()
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	// Warm the dataset; a failure here is not fatal, requests retry the load.
	if _, err := store.Get(ctx, cfg.DataSource); err != nil {
		logger.Warn("Initial dataset load failed", "source", source.Redact(cfg.DataSource), "error", err)
	}

	// Background dataset refresh
	go maintenance.Start(ctx, store, maintenance.Config{
		Source:          cfg.DataSource,
		RefreshInterval: cfg.RefreshInterval,
		RefreshTimeout:  cfg.FetchTimeout,
	}, logger)

	// Reload on table changes when the dataset lives in Postgres
	if cfg.NotifyChannel != "" {
		if source.IsPostgres(cfg.DataSource) {
			go listener.Start(ctx, store, listener.Config{
				Source:  cfg.DataSource,
				Channel: cfg.NotifyChannel,
				Timeout: cfg.FetchTimeout,
			}, logger)
		} else {
			logger.Warn("DATASET_NOTIFY_CHANNEL ignored for non-postgres source")
		}
	}

	predictor := predict.NewAdapter(cfg.ModelPath, logger)
	logger.Info("Predictor configured", "model", predictor.Path())

	// Create router
	router := api.NewRouter(handler.Deps{
		Config:    cfg,
		Store:     store,
		Responses: responses,
		Predictor: predictor,
		Pool:      pool,
		Metrics:   m,
		Logger:    logger,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.FetchTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting FIFA Player Analytics API",
			"addr", addr,
			"environment", cfg.Environment,
			"source", source.Redact(cfg.DataSource),
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
