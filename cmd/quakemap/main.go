package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/quake-map-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/quake-map-service/internal/adapter/kafka"
	"github.com/couchcryptid/quake-map-service/internal/adapter/mapbox"
	"github.com/couchcryptid/quake-map-service/internal/config"
	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/couchcryptid/quake-map-service/internal/feed"
	"github.com/couchcryptid/quake-map-service/internal/observability"
	"github.com/couchcryptid/quake-map-service/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	feeds := feed.NewClient(cfg.EarthquakeFeedURL, cfg.PlatesFeedURL, cfg.FeedTimeout, metrics, logger)

	// Tile proxy (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var tiles domain.TileFetcher
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxStyles, cfg.MapboxTimeout, metrics, logger)
		tiles = mapbox.NewCachedTileFetcher(client, cfg.MapboxCacheSize, metrics)
		metrics.TilesEnabled.Set(1)
		logger.Info("mapbox tiles enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox tiles disabled")
	}

	// Interval sink (feature-flagged via KAFKA_ENABLED).
	var publisher pipeline.IntervalPublisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka interval sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	renderer := pipeline.New(feeds, feeds, publisher, pipeline.Options{
		TilePrefix: httpadapter.TilePrefix,
		Location:   cfg.DisplayLocation,
		Settle:     cfg.RenderSettleTimeout,
	}, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, renderer, tiles, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
