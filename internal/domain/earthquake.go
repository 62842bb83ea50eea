package domain

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// EarthquakeFeature is one event from the USGS summary feed.
type EarthquakeFeature struct {
	ID        string
	Place     string
	Magnitude float64
	Time      int64 // epoch milliseconds, UTC
	URL       string
	Point     orb.Point // [lon, lat]
}

// PlateBoundaryFeature is one boundary segment from the plate model. The
// geometry is usually a LineString but any GeoJSON geometry is carried as-is.
type PlateBoundaryFeature struct {
	Geometry   orb.Geometry
	Properties geojson.Properties
}

// ParseEarthquakeFeed decodes a USGS GeoJSON FeatureCollection. Features keep
// their feed order. Only JSON syntax errors are reported; absent or mistyped
// properties fall back to zero values.
func ParseEarthquakeFeed(data []byte) ([]EarthquakeFeature, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse earthquake feed: %w", err)
	}

	features := make([]EarthquakeFeature, 0, len(fc.Features))
	for _, f := range fc.Features {
		features = append(features, earthquakeFromFeature(f))
	}
	return features, nil
}

func earthquakeFromFeature(f *geojson.Feature) EarthquakeFeature {
	eq := EarthquakeFeature{
		Place:     f.Properties.MustString("place", ""),
		Magnitude: f.Properties.MustFloat64("mag", 0),
		Time:      int64(f.Properties.MustFloat64("time", 0)),
		URL:       f.Properties.MustString("url", ""),
	}
	if f.ID != nil {
		eq.ID = fmt.Sprint(f.ID)
	}
	if p, ok := f.Geometry.(orb.Point); ok {
		eq.Point = p
	}
	return eq
}

// ParsePlateFeed decodes a plate boundary FeatureCollection.
func ParsePlateFeed(data []byte) ([]PlateBoundaryFeature, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse plate feed: %w", err)
	}

	features := make([]PlateBoundaryFeature, 0, len(fc.Features))
	for _, f := range fc.Features {
		features = append(features, PlateBoundaryFeature{
			Geometry:   f.Geometry,
			Properties: f.Properties,
		})
	}
	return features, nil
}

// Lon returns the event longitude.
func (e EarthquakeFeature) Lon() float64 { return e.Point.Lon() }

// Lat returns the event latitude.
func (e EarthquakeFeature) Lat() float64 { return e.Point.Lat() }
