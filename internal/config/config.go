package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // DISPLAY_TIMEZONE must resolve in minimal images

	"github.com/couchcryptid/quake-map-service/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Upstream GeoJSON feeds.
	EarthquakeFeedURL string
	PlatesFeedURL     string
	FeedTimeout       time.Duration

	// RenderSettleTimeout bounds how long /api/map waits for the plate and
	// timeline layers before returning a partial document.
	RenderSettleTimeout time.Duration
	DisplayLocation     *time.Location

	// Mapbox tile configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
	MapboxStyles    map[string]string // base map slug -> Mapbox style id

	// Optional Kafka sink for timeline intervals.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	feedTimeout, err := parsePositiveDuration("FEED_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}

	settleTimeout, err := parsePositiveDuration("RENDER_SETTLE_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	mapboxTimeout, err := parsePositiveDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(sharedcfg.EnvOrDefault("DISPLAY_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE: %w", err)
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		EarthquakeFeedURL: sharedcfg.EnvOrDefault("EARTHQUAKE_FEED_URL",
			"https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/all_day.geojson"),
		PlatesFeedURL: sharedcfg.EnvOrDefault("PLATES_FEED_URL",
			"https://raw.githubusercontent.com/fraxen/tectonicplates/master/GeoJSON/PB2002_boundaries.json"),
		FeedTimeout: feedTimeout,

		RenderSettleTimeout: settleTimeout,
		DisplayLocation:     loc,

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),
		MapboxStyles: map[string]string{
			domain.BaseSatellite: sharedcfg.EnvOrDefault("MAPBOX_SATELLITE_STYLE", "mapbox/satellite-v9"),
			domain.BaseOutdoors:  sharedcfg.EnvOrDefault("MAPBOX_OUTDOORS_STYLE", "mapbox/outdoors-v12"),
			domain.BaseLight:     sharedcfg.EnvOrDefault("MAPBOX_LIGHT_STYLE", "mapbox/light-v11"),
		},

		KafkaEnabled: os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "earthquake-intervals"),
	}

	if cfg.EarthquakeFeedURL == "" {
		return nil, errors.New("EARTHQUAKE_FEED_URL is required")
	}
	if cfg.PlatesFeedURL == "" {
		return nil, errors.New("PLATES_FEED_URL is required")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_ENABLED is true")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 2000
}
