package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the map service.
type Metrics struct {
	// Feed metrics.
	FeedFetches       *prometheus.CounterVec   // labels: feed={earthquakes,plates}, outcome={success,error}
	FeedFetchDuration *prometheus.HistogramVec // labels: feed
	FeaturesRendered  *prometheus.CounterVec   // labels: layer={earthquakes,plates,timeline}

	// Render metrics.
	MapRenders    prometheus.Counter
	LayersPending *prometheus.CounterVec // labels: layer; async layer still pending when the document was served

	// Tile metrics.
	TileRequests    *prometheus.CounterVec // labels: base, outcome={success,error}
	TileCache       *prometheus.CounterVec // labels: result={hit,miss}
	TileAPIDuration prometheus.Histogram
	TilesEnabled    prometheus.Gauge

	// Event sink metrics.
	IntervalsPublished prometheus.Counter
	PublishErrors      prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.FeedFetches,
		m.FeedFetchDuration,
		m.FeaturesRendered,
		m.MapRenders,
		m.LayersPending,
		m.TileRequests,
		m.TileCache,
		m.TileAPIDuration,
		m.TilesEnabled,
		m.IntervalsPublished,
		m.PublishErrors,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FeedFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_map",
			Name:      "feed_fetches_total",
			Help:      "Upstream GeoJSON feed requests by feed and outcome.",
		}, []string{"feed", "outcome"}),
		FeedFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "quake_map",
			Name:      "feed_fetch_duration_seconds",
			Help:      "Duration of upstream feed requests including decode.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"feed"}),
		FeaturesRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_map",
			Name:      "features_rendered_total",
			Help:      "Features converted into map layers, by layer.",
		}, []string{"layer"}),
		MapRenders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_map",
			Name:      "map_renders_total",
			Help:      "Map documents composed.",
		}),
		LayersPending: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_map",
			Name:      "layer_pending_total",
			Help:      "Map documents served while an async layer was still pending.",
		}, []string{"layer"}),
		TileRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_map",
			Name:      "tile_requests_total",
			Help:      "Tile proxy requests by base map and outcome.",
		}, []string{"base", "outcome"}),
		TileCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_map",
			Name:      "tile_cache_total",
			Help:      "Tile cache lookups by result.",
		}, []string{"result"}),
		TileAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quake_map",
			Name:      "tile_api_duration_seconds",
			Help:      "Mapbox tile request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		TilesEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quake_map",
			Name:      "tiles_enabled",
			Help:      "1 when the Mapbox tile proxy is configured, 0 otherwise.",
		}),
		IntervalsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_map",
			Name:      "intervals_published_total",
			Help:      "Timeline intervals written to the Kafka sink.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_map",
			Name:      "publish_errors_total",
			Help:      "Failed Kafka sink writes.",
		}),
	}
}
