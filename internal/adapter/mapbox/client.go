package mapbox

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/couchcryptid/quake-map-service/internal/observability"
)

// tileSize is the raster tile edge in pixels requested from the Static Tiles API.
const tileSize = 256

// maxTileBytes caps a single tile body; 512px @2x PNGs stay well under this.
const maxTileBytes = 4 << 20

// Client implements domain.TileFetcher using the Mapbox Static Tiles API.
type Client struct {
	token      string
	styles     map[string]string // base map slug -> style id, e.g. "light" -> "mapbox/light-v11"
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Mapbox tile client.
func NewClient(token string, styles map[string]string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token:  token,
		styles: styles,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.mapbox.com/styles/v1",
		metrics: metrics,
		logger:  logger,
	}
}

// TileURL builds the Static Tiles URL for a style id.
func (c *Client) TileURL(style string, z, x, y int) string {
	params := url.Values{"access_token": {c.token}}
	return fmt.Sprintf("%s/%s/tiles/%d/%d/%d/%d?%s", c.baseURL, style, tileSize, z, x, y, params.Encode())
}

// FetchTile downloads one tile for a configured base map.
func (c *Client) FetchTile(ctx context.Context, key domain.TileKey) (domain.Tile, error) {
	if c.token == "" {
		return domain.Tile{}, domain.ErrTilesDisabled
	}
	style, ok := c.styles[key.Base]
	if !ok {
		return domain.Tile{}, fmt.Errorf("%w: %q", domain.ErrUnknownBaseMap, key.Base)
	}

	tile, err := c.doRequest(ctx, c.TileURL(style, key.Z, key.X, key.Y))
	if err != nil {
		c.metrics.TileRequests.WithLabelValues(key.Base, "error").Inc()
		return domain.Tile{}, err
	}
	c.metrics.TileRequests.WithLabelValues(key.Base, "success").Inc()
	return tile, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.Tile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.Tile{}, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.TileAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return domain.Tile{}, fmt.Errorf("tile request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Tile{}, fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode, body)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTileBytes))
	if err != nil {
		return domain.Tile{}, fmt.Errorf("read tile: %w", err)
	}
	return domain.Tile{Data: data, ContentType: resp.Header.Get("Content-Type")}, nil
}
