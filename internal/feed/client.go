package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/couchcryptid/quake-map-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Feed names used in logs and metric labels.
const (
	FeedEarthquakes = "earthquakes"
	FeedPlates      = "plates"
)

// maxFeedBytes caps a single feed body. The USGS all_month feed is ~10 MB.
const maxFeedBytes = 64 << 20

// Client fetches the earthquake and plate boundary GeoJSON feeds.
type Client struct {
	earthquakeURL string
	platesURL     string
	httpClient    *http.Client
	clock         clockwork.Clock
	metrics       *observability.Metrics
	logger        *slog.Logger
}

// NewClient creates a feed client. Every request is bounded by timeout.
func NewClient(earthquakeURL, platesURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		earthquakeURL: earthquakeURL,
		platesURL:     platesURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		clock:   clockwork.NewRealClock(),
		metrics: metrics,
		logger:  logger,
	}
}

// FetchEarthquakes downloads and decodes the earthquake feed. Every call
// issues a fresh request.
func (c *Client) FetchEarthquakes(ctx context.Context) ([]domain.EarthquakeFeature, error) {
	start := c.clock.Now()
	features, err := c.fetchEarthquakes(ctx)
	c.observe(FeedEarthquakes, start, len(features), err)
	return features, err
}

func (c *Client) fetchEarthquakes(ctx context.Context) ([]domain.EarthquakeFeature, error) {
	body, err := c.get(ctx, c.earthquakeURL, FeedEarthquakes)
	if err != nil {
		return nil, err
	}
	return domain.ParseEarthquakeFeed(body)
}

// FetchPlates downloads and decodes the plate boundary feed.
func (c *Client) FetchPlates(ctx context.Context) ([]domain.PlateBoundaryFeature, error) {
	start := c.clock.Now()
	features, err := c.fetchPlates(ctx)
	c.observe(FeedPlates, start, len(features), err)
	return features, err
}

func (c *Client) fetchPlates(ctx context.Context) ([]domain.PlateBoundaryFeature, error) {
	body, err := c.get(ctx, c.platesURL, FeedPlates)
	if err != nil {
		return nil, err
	}
	return domain.ParsePlateFeed(body)
}

func (c *Client) get(ctx context.Context, url, feed string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s feed request: %w", feed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%s feed error: status %d: %s", feed, resp.StatusCode, body)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s feed: %w", feed, err)
	}
	return body, nil
}

func (c *Client) observe(feed string, start time.Time, features int, err error) {
	c.metrics.FeedFetchDuration.WithLabelValues(feed).Observe(c.clock.Since(start).Seconds())
	if err != nil {
		c.metrics.FeedFetches.WithLabelValues(feed, "error").Inc()
		return
	}
	c.metrics.FeedFetches.WithLabelValues(feed, "success").Inc()
	c.logger.Debug("feed fetched", "feed", feed, "features", features)
}
