// Package pipeline turns the upstream feeds into a composed map for each request.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/couchcryptid/quake-map-service/internal/feed"
	"github.com/couchcryptid/quake-map-service/internal/mapview"
	"github.com/couchcryptid/quake-map-service/internal/observability"
)

// EarthquakeSource fetches the earthquake feed.
type EarthquakeSource interface {
	FetchEarthquakes(ctx context.Context) ([]domain.EarthquakeFeature, error)
}

// PlateSource fetches the plate boundary feed.
type PlateSource interface {
	FetchPlates(ctx context.Context) ([]domain.PlateBoundaryFeature, error)
}

// IntervalPublisher receives the timeline intervals built by each render.
type IntervalPublisher interface {
	PublishIntervals(ctx context.Context, intervals []domain.QuakeInterval) error
}

// Options configures a Renderer.
type Options struct {
	TilePrefix string         // URL prefix the base layers point at, e.g. "/tiles"
	Location   *time.Location // display zone for popups and slider labels
	Settle     time.Duration  // how long Document waits for async layers
}

// Renderer orchestrates the feeds, the layer builders, and the composers.
type Renderer struct {
	quakes    EarthquakeSource
	plates    PlateSource
	publisher IntervalPublisher // nil when the event sink is disabled
	opts      Options
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// New creates a Renderer. publisher may be nil.
func New(quakes EarthquakeSource, plates PlateSource, publisher IntervalPublisher, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Renderer {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Renderer{
		quakes:    quakes,
		plates:    plates,
		publisher: publisher,
		opts:      opts,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once a render has produced an earthquake layer.
func (r *Renderer) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("no earthquake layer rendered yet")
	}
	return nil
}

// Render starts the earthquake, plate, and timeline fetches together and
// blocks only on the earthquake feed. The returned map already carries the
// base layers, both overlays, the layer control, and the legend. Plates and
// the timeline are attached in place from background goroutines; use
// Map.Wait to block on them. The plate and timeline fetches are detached
// from ctx so they finish after the request returns; the feed client
// timeout bounds them.
func (r *Renderer) Render(ctx context.Context) *mapview.Map {
	bg := context.WithoutCancel(ctx)
	quakesF := feed.Go(ctx, r.quakes.FetchEarthquakes)
	platesF := feed.Go(bg, r.plates.FetchPlates)
	timelineF := feed.Go(bg, r.quakes.FetchEarthquakes)

	m := mapview.NewMap(mapview.DefaultView)
	// Mark before composing so Wait never observes a gap.
	platesDone := m.Pending(mapview.OverlayPlates)
	timelineDone := m.Pending(mapview.LayerTimeline)

	features, err := quakesF.Await(ctx)
	if err != nil {
		r.logger.Warn("earthquake feed unavailable, rendering empty overlay", "feed", feed.FeedEarthquakes, "error", err)
		features = nil
	} else {
		r.ready.Store(true)
	}

	layer := mapview.BuildEarthquakeLayer(features, r.opts.Location)
	r.metrics.FeaturesRendered.WithLabelValues("earthquakes").Add(float64(len(layer.Markers)))
	mapview.ComposeMap(m, mapview.BaseLayers(r.opts.TilePrefix), layer)
	r.metrics.MapRenders.Inc()

	go r.attachPlates(bg, m, platesF, platesDone)
	go r.attachTimeline(bg, m, timelineF, timelineDone)

	return m
}

// Document renders a map, waits up to the settle timeout for the async
// layers, and snapshots it. Layers still loading are listed in Pending.
func (r *Renderer) Document(ctx context.Context) mapview.Document {
	m := r.Render(ctx)

	waitCtx, cancel := context.WithTimeout(ctx, r.opts.Settle)
	defer cancel()
	if err := m.Wait(waitCtx); err != nil {
		r.logger.Debug("serving map before async layers settled", "error", err)
	}

	doc := m.Snapshot()
	for _, name := range doc.Pending {
		r.metrics.LayersPending.WithLabelValues(name).Inc()
	}
	return doc
}

func (r *Renderer) attachPlates(ctx context.Context, m *mapview.Map, f *feed.Future[[]domain.PlateBoundaryFeature], done func()) {
	defer done()

	plates, err := f.Await(ctx)
	if err != nil {
		r.logger.Warn("plate feed unavailable, leaving overlay empty", "feed", feed.FeedPlates, "error", err)
		return
	}
	mapview.AttachPlates(m, plates)
	r.metrics.FeaturesRendered.WithLabelValues("plates").Add(float64(len(plates)))
}

func (r *Renderer) attachTimeline(ctx context.Context, m *mapview.Map, f *feed.Future[[]domain.EarthquakeFeature], done func()) {
	features, err := f.Await(ctx)
	if err != nil {
		done()
		r.logger.Warn("timeline feed unavailable, omitting timeline", "feed", feed.FeedEarthquakes, "error", err)
		return
	}

	tl := mapview.BuildTimeline(features)
	mapview.AttachTimeline(m, tl, r.opts.Location)
	r.metrics.FeaturesRendered.WithLabelValues("timeline").Add(float64(len(tl.Entries)))
	done()

	r.publish(ctx, features)
}

func (r *Renderer) publish(ctx context.Context, features []domain.EarthquakeFeature) {
	if r.publisher == nil || len(features) == 0 {
		return
	}
	intervals := make([]domain.QuakeInterval, len(features))
	for i, f := range features {
		intervals[i] = domain.NewQuakeInterval(f)
	}
	if err := r.publisher.PublishIntervals(ctx, intervals); err != nil {
		r.logger.Error("publish intervals failed", "error", err, "count", len(intervals))
		r.metrics.PublishErrors.Inc()
		return
	}
	r.metrics.IntervalsPublished.Add(float64(len(intervals)))
}
