// Command collector downloads the geomagnetic forecast bulletin and publishes
// it to the source topic for the forecast pipeline.
//
// Usage:
//
//	go run ./cmd/collector              # fetch once
//	go run ./cmd/collector -interval 1h # fetch until interrupted
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	kafkaadapter "github.com/illine/geomagnetic-forecast/internal/adapter/kafka"
	"github.com/illine/geomagnetic-forecast/internal/adapter/swpc"
	"github.com/illine/geomagnetic-forecast/internal/config"
	"github.com/illine/geomagnetic-forecast/internal/domain"
	"github.com/illine/geomagnetic-forecast/internal/observability"
)

func main() {
	interval := flag.Duration("interval", 0, "fetch repeatedly at this interval; 0 fetches once")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client := swpc.NewClient(cfg.SWPCURL, cfg.SWPCTimeout, logger, metrics)
	publisher := kafkaadapter.NewPublisher(cfg, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *interval <= 0 {
		if err := collect(ctx, client, publisher, logger); err != nil {
			logger.Error("collect failed", "error", err)
			os.Exit(1)
		}
		return
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		if err := collect(ctx, client, publisher, logger); err != nil {
			logger.Error("collect failed", "error", err)
		}
		select {
		case <-ctx.Done():
			logger.Info("collector stopped")
			return
		case <-ticker.C:
		}
	}
}

func collect(ctx context.Context, client *swpc.Client, publisher *kafkaadapter.Publisher, logger *slog.Logger) error {
	text, err := client.FetchBulletin(ctx)
	if err != nil {
		return err
	}
	fetchedAt := domain.Now()

	// Published regardless; the pipeline owns the accept/reject decision.
	if _, err := domain.ParseBulletin(text, domain.Today()); err != nil {
		logger.Warn("fetched bulletin would be rejected", "kind", domain.KindOf(err), "error", err)
	}
	return publisher.PublishBulletin(ctx, client.URL(), text, fetchedAt)
}
