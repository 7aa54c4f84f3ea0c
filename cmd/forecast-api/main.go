package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/illine/geomagnetic-forecast/internal/adapter/httpadapter"
	kafkaadapter "github.com/illine/geomagnetic-forecast/internal/adapter/kafka"
	"github.com/illine/geomagnetic-forecast/internal/adapter/memory"
	"github.com/illine/geomagnetic-forecast/internal/adapter/postgres"
	"github.com/illine/geomagnetic-forecast/internal/config"
	"github.com/illine/geomagnetic-forecast/internal/observability"
	"github.com/illine/geomagnetic-forecast/internal/pipeline"
)

// forecastStore is what the pipeline loads into and the API reads from.
type forecastStore interface {
	pipeline.BatchLoader
	httpadapter.ForecastReader
}

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		store  forecastStore
		checks httpadapter.ReadinessChecks
	)
	if cfg.PostgresDSN != "" {
		if err := postgres.Migrate(cfg.PostgresDSN, logger); err != nil {
			logger.Error("database migration failed", "error", err)
			os.Exit(1)
		}
		pg, err := postgres.Open(ctx, cfg.PostgresDSN, logger)
		if err != nil {
			logger.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		store = pg
		checks = append(checks, pg)
		logger.Info("using postgres forecast store")
	} else {
		store = memory.NewStore(cfg.ForecastCacheDays)
		logger.Info("using in-memory forecast store", "days", cfg.ForecastCacheDays)
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(logger)

	p := pipeline.New(reader, transformer, pipeline.Loaders{writer, store}, logger, metrics, cfg.BatchSize)

	checks = append(checks, p)
	srv := httpadapter.NewServer(cfg.HTTPAddr, checks, store, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ETL pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
