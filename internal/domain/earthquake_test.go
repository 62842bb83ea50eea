package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPlace = "10 km SSW of Idyllwild, CA"
	testURL   = "https://earthquake.usgs.gov/earthquakes/eventpage/ci40789999"
)

func TestParseEarthquakeFeed(t *testing.T) {
	t.Run("usgs summary feed", func(t *testing.T) {
		data := []byte(`{
			"type": "FeatureCollection",
			"metadata": {"generated": 1713200000000, "title": "USGS All Earthquakes, Past Day", "count": 2},
			"features": [
				{"type": "Feature", "id": "ci40789999",
				 "properties": {"mag": 1.27, "place": "10 km SSW of Idyllwild, CA", "time": 1713196800120, "url": "https://earthquake.usgs.gov/earthquakes/eventpage/ci40789999"},
				 "geometry": {"type": "Point", "coordinates": [-116.7775, 33.6583333, 13.44]}},
				{"type": "Feature", "id": "us7000m9g4",
				 "properties": {"mag": 5.6, "place": "south of the Fiji Islands", "time": 1713190000000, "url": "https://earthquake.usgs.gov/earthquakes/eventpage/us7000m9g4"},
				 "geometry": {"type": "Point", "coordinates": [-178.1, -24.5, 550]}}
			]
		}`)

		features, err := ParseEarthquakeFeed(data)
		require.NoError(t, err)
		require.Len(t, features, 2)

		first := features[0]
		assert.Equal(t, "ci40789999", first.ID)
		assert.Equal(t, testPlace, first.Place)
		assert.Equal(t, 1.27, first.Magnitude)
		assert.Equal(t, int64(1713196800120), first.Time)
		assert.Equal(t, testURL, first.URL)
		assert.Equal(t, -116.7775, first.Lon())
		assert.Equal(t, 33.6583333, first.Lat())

		assert.Equal(t, "us7000m9g4", features[1].ID, "feed order is preserved")
	})

	t.Run("null magnitude becomes zero", func(t *testing.T) {
		data := []byte(`{"type":"FeatureCollection","features":[
			{"type":"Feature","properties":{"mag":null,"place":"Alaska","time":1000},
			 "geometry":{"type":"Point","coordinates":[-150,61]}}]}`)

		features, err := ParseEarthquakeFeed(data)
		require.NoError(t, err)
		require.Len(t, features, 1)
		assert.Equal(t, 0.0, features[0].Magnitude)
		assert.Empty(t, features[0].ID)
		assert.Empty(t, features[0].URL)
	})

	t.Run("non-point geometry is passed through with zero coordinates", func(t *testing.T) {
		data := []byte(`{"type":"FeatureCollection","features":[
			{"type":"Feature","properties":{"mag":2,"place":"Nowhere","time":5},
			 "geometry":{"type":"LineString","coordinates":[[0,0],[1,1]]}}]}`)

		features, err := ParseEarthquakeFeed(data)
		require.NoError(t, err)
		require.Len(t, features, 1)
		assert.Equal(t, orb.Point{}, features[0].Point)
	})

	t.Run("empty collection", func(t *testing.T) {
		features, err := ParseEarthquakeFeed([]byte(`{"type":"FeatureCollection","features":[]}`))
		require.NoError(t, err)
		assert.Empty(t, features)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := ParseEarthquakeFeed([]byte("{invalid json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse earthquake feed")
	})
}

func TestParsePlateFeed(t *testing.T) {
	data := []byte(`{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"Name":"AF-AN","PlateA":"AF","PlateB":"AN","Type":""},
		 "geometry":{"type":"LineString","coordinates":[[-0.4379,-54.8518],[-0.0388,-54.6772],[0.443,-54.4577]]}},
		{"type":"Feature","properties":{"Name":"AN-AF"},
		 "geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}}
	]}`)

	features, err := ParsePlateFeed(data)
	require.NoError(t, err)
	require.Len(t, features, 2)

	ls, ok := features[0].Geometry.(orb.LineString)
	require.True(t, ok)
	assert.Len(t, ls, 3)
	assert.Equal(t, "AF-AN", features[0].Properties.MustString("Name"))

	_, ok = features[1].Geometry.(orb.Polygon)
	assert.True(t, ok, "polygons are carried as-is")

	_, err = ParsePlateFeed([]byte(`[`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse plate feed")
}

func TestIntervalFor(t *testing.T) {
	tests := []struct {
		name     string
		time     int64
		mag      float64
		duration int64
	}{
		{"magnitude five shows for 150 minutes", 1_700_000_000_000, 5, 9_000_000},
		{"magnitude one shows for 30 minutes", 1000, 1, 1_800_000},
		{"fractional magnitude", 0, 2.5, 4_500_000},
		{"zero magnitude is an empty window", 1000, 0, 0},
		{"negative magnitude is inverted", 1000, -1, -1_800_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iv := IntervalFor(EarthquakeFeature{Time: tt.time, Magnitude: tt.mag})
			assert.Equal(t, tt.time, iv.Start)
			assert.Equal(t, tt.duration, iv.End-iv.Start)
		})
	}

	assert.Equal(t, 150*time.Minute, IntervalFor(EarthquakeFeature{Time: 42, Magnitude: 5}).Duration())
}

func TestNewQuakeInterval(t *testing.T) {
	now := time.Date(2024, time.April, 15, 18, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(now))
	defer SetClock(nil)

	f := EarthquakeFeature{
		ID:        "ci40789999",
		Place:     testPlace,
		Magnitude: 5,
		Time:      1713196800000,
		URL:       testURL,
		Point:     orb.Point{-116.7775, 33.6583},
	}

	qi := NewQuakeInterval(f)
	assert.Equal(t, "ci40789999", qi.ID)
	assert.Equal(t, -116.7775, qi.Lon)
	assert.Equal(t, 33.6583, qi.Lat)
	assert.Equal(t, time.UnixMilli(1713196800000).UTC(), qi.Start)
	assert.Equal(t, 150*time.Minute, qi.End.Sub(qi.Start))
	assert.Equal(t, now, qi.GeneratedAt)
}

func TestPopups(t *testing.T) {
	f := EarthquakeFeature{Place: "Test", Magnitude: 6, Time: 1000, URL: testURL}

	t.Run("earthquake popup", func(t *testing.T) {
		popup := EarthquakePopup(f, nil)
		assert.Contains(t, popup, "Test")
		assert.Contains(t, popup, "Magnitude: 6")
		assert.Equal(t, "<h3>Test<br> Magnitude: 6</h3><hr><p>Thu Jan 01 1970 00:00:01 GMT+0000 (UTC)</p>", popup)
	})

	t.Run("place is escaped", func(t *testing.T) {
		popup := EarthquakePopup(EarthquakeFeature{Place: "<b>Reno</b>"}, nil)
		assert.Contains(t, popup, "&lt;b&gt;Reno&lt;/b&gt;")
	})

	t.Run("display zone", func(t *testing.T) {
		loc := time.FixedZone("PDT", -7*3600)
		assert.Equal(t, "Wed Dec 31 1969 17:00:01 GMT-0700 (PDT)", FormatTimestamp(1000, loc))
	})

	t.Run("timeline popup", func(t *testing.T) {
		assert.Equal(t, `<a href="`+testURL+`">click for more info</a>`, TimelinePopup(f))
	})
}
