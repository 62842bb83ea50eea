package mapview

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func composedMap() *Map {
	quakes := BuildEarthquakeLayer(testFeatures(), nil)
	return ComposeMap(NewMap(DefaultView), BaseLayers("/tiles"), quakes)
}

func activeBases(layers []TileLayer) []string {
	var names []string
	for _, l := range layers {
		if l.Active {
			names = append(names, l.Name)
		}
	}
	return names
}

func TestBaseLayers(t *testing.T) {
	layers := BaseLayers("/tiles")

	require.Len(t, layers, 3)
	assert.Equal(t, "Satellite Map", layers[0].Name)
	assert.Equal(t, "Outdoors Map", layers[1].Name)
	assert.Equal(t, "Light Map", layers[2].Name)
	assert.Equal(t, "/tiles/light/{z}/{x}/{y}", layers[2].URLTemplate)
	assert.Equal(t, []string{"Light Map"}, activeBases(layers))
}

func TestComposeMap(t *testing.T) {
	doc := composedMap().Snapshot()

	assert.Equal(t, DefaultView, doc.View)
	assert.Len(t, doc.BaseLayers, 3)
	assert.Equal(t, []string{"Light Map"}, activeBases(doc.BaseLayers))

	quakes, ok := doc.Overlay(OverlayEarthquakes)
	require.True(t, ok)
	assert.True(t, quakes.Active)
	assert.Len(t, quakes.Points.Markers, 3)

	plates, ok := doc.Overlay(OverlayPlates)
	require.True(t, ok)
	assert.True(t, plates.Active)
	require.NotNil(t, plates.Lines)
	assert.Empty(t, plates.Lines.Features.Features, "plate group starts empty")

	require.NotNil(t, doc.LayerControl)
	assert.False(t, doc.LayerControl.Collapsed)
	require.NotNil(t, doc.Legend)
	assert.Len(t, doc.Legend.Entries, 6)

	assert.Nil(t, doc.Timeline)
	assert.Nil(t, doc.TimelineControl)
}

func TestComposeMap_ExactlyOneActiveBase(t *testing.T) {
	t.Run("none active selects the first", func(t *testing.T) {
		bases := []TileLayer{{Name: "A"}, {Name: "B"}}
		doc := ComposeMap(NewMap(DefaultView), bases, PointLayer{}).Snapshot()
		assert.Equal(t, []string{"A"}, activeBases(doc.BaseLayers))
	})

	t.Run("several active keeps the first", func(t *testing.T) {
		bases := []TileLayer{{Name: "A"}, {Name: "B", Active: true}, {Name: "C", Active: true}}
		doc := ComposeMap(NewMap(DefaultView), bases, PointLayer{}).Snapshot()
		assert.Equal(t, []string{"B"}, activeBases(doc.BaseLayers))
		assert.True(t, bases[2].Active, "caller's slice is not modified")
	})
}

func TestAttachPlates(t *testing.T) {
	m := composedMap()
	before := m.Snapshot()

	AttachPlates(m, []domain.PlateBoundaryFeature{
		{Geometry: orb.LineString{{0, 0}, {1, 1}}},
	})
	after := m.Snapshot()

	plates, _ := before.Overlay(OverlayPlates)
	assert.Empty(t, plates.Lines.Features.Features, "earlier snapshot is unaffected")

	plates, _ = after.Overlay(OverlayPlates)
	assert.Len(t, plates.Lines.Features.Features, 1)
	assert.Equal(t, domain.Color("brown"), plates.Lines.Style.Color)
}

func TestAttachTimeline(t *testing.T) {
	m := composedMap()
	tl := BuildTimeline([]domain.EarthquakeFeature{{Magnitude: 5, Time: 1000}})

	doc := AttachTimeline(m, tl, nil).Snapshot()

	require.NotNil(t, doc.Timeline)
	assert.Len(t, doc.Timeline.Entries, 1)
	require.NotNil(t, doc.TimelineControl)
	assert.Equal(t, int64(1000), doc.TimelineControl.Start)
	assert.Equal(t, int64(1000+9_000_000), doc.TimelineControl.End)
}

func TestMap_PendingAndWait(t *testing.T) {
	m := composedMap()

	require.NoError(t, m.Wait(context.Background()), "nothing pending returns immediately")

	donePlates := m.Pending(OverlayPlates)
	doneTimeline := m.Pending(LayerTimeline)
	assert.Equal(t, []string{OverlayPlates, LayerTimeline}, m.Snapshot().Pending)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, m.Wait(ctx), context.DeadlineExceeded)

	waited := make(chan error, 1)
	go func() { waited <- m.Wait(context.Background()) }()

	donePlates()
	donePlates()
	assert.Equal(t, []string{LayerTimeline}, m.Snapshot().Pending)

	doneTimeline()
	select {
	case err := <-waited:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after all layers resolved")
	}
	assert.Empty(t, m.Snapshot().Pending)
}

func TestDocument_JSON(t *testing.T) {
	now := time.Date(2024, time.April, 15, 18, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(now))
	defer domain.SetClock(nil)

	m := composedMap()
	done := m.Pending(OverlayPlates)
	defer done()

	data, err := json.Marshal(m.Snapshot())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "2024-04-15T18:00:00Z", raw["generated_at"])
	assert.Equal(t, []any{"Tectonic Plates"}, raw["pending"])
	assert.NotContains(t, raw, "timeline")

	overlays := raw["overlays"].([]any)
	plates := overlays[1].(map[string]any)
	lines := plates["lines"].(map[string]any)
	fc := lines["features"].(map[string]any)
	assert.Equal(t, "FeatureCollection", fc["type"])
	assert.Empty(t, fc["features"])
}
