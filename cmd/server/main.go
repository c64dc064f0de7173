package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/greencell/hydrozone/internal/adapter/httpapi"
	kafkaadapter "github.com/greencell/hydrozone/internal/adapter/kafka"
	"github.com/greencell/hydrozone/internal/config"
	"github.com/greencell/hydrozone/internal/observability"
	"github.com/greencell/hydrozone/internal/serving"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Initialize the prediction publisher (feature-flagged via KAFKA_ENABLED).
	var publisher serving.Publisher
	var kafkaPub *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		kafkaPub = kafkaadapter.NewPublisher(cfg, logger)
		publisher = kafkaPub
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaSinkTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka publishing disabled")
	}

	// Refuse to serve without a trained model bundle on disk.
	predictor, err := serving.New(serving.Options{
		ArtifactsDir: cfg.ArtifactsDir,
		CacheSize:    cfg.CacheSize,
		Publisher:    publisher,
	}, metrics, logger)
	if err != nil {
		logger.Error("failed to load models", "artifacts_dir", cfg.ArtifactsDir, "error", err)
		os.Exit(1)
	}
	metrics.ModelsLoaded.Set(1)

	srv := httpapi.NewServer(cfg.HTTPAddr, predictor, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPub != nil {
		if err := kafkaPub.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
