package mapview

import (
	"time"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/paulmach/orb/geojson"
)

// Fixed marker styling for the earthquake overlay.
const (
	quakeFillOpacity = 0.7
	quakeStrokeColor = "black"
	quakeStrokeWidth = 0.5
)

// Fixed line styling for the plate boundary overlay.
const (
	plateColor = "brown"
	plateWidth = 2
)

// CircleStyle describes a filled circle marker. For the earthquake overlay
// Radius is in metres; for the timeline it is in screen pixels.
type CircleStyle struct {
	Radius      float64      `json:"radius"`
	FillColor   domain.Color `json:"fill_color"`
	FillOpacity float64      `json:"fill_opacity,omitempty"`
	Stroke      bool         `json:"stroke"`
	Color       domain.Color `json:"color"`
	Weight      float64      `json:"weight,omitempty"`
}

// CircleMarker is one earthquake rendered on the overlay.
type CircleMarker struct {
	ID    string      `json:"id,omitempty"`
	Lon   float64     `json:"lon"`
	Lat   float64     `json:"lat"`
	Style CircleStyle `json:"style"`
	Popup string      `json:"popup"`
}

// PointLayer is an overlay of circle markers in feed order.
type PointLayer struct {
	Markers []CircleMarker `json:"markers"`
}

// LineStyle describes stroked GeoJSON geometry.
type LineStyle struct {
	Color  domain.Color `json:"color"`
	Weight float64      `json:"weight"`
}

// LineLayer is an overlay of styled GeoJSON geometry.
type LineLayer struct {
	Style    LineStyle                  `json:"style"`
	Features *geojson.FeatureCollection `json:"features"`
}

// BuildEarthquakeLayer renders one circle marker per feature, preserving order.
// Nothing is filtered, sorted, or deduplicated.
func BuildEarthquakeLayer(features []domain.EarthquakeFeature, loc *time.Location) PointLayer {
	markers := make([]CircleMarker, 0, len(features))
	for _, f := range features {
		markers = append(markers, CircleMarker{
			ID:  f.ID,
			Lon: f.Lon(),
			Lat: f.Lat(),
			Style: CircleStyle{
				Radius:      domain.RadiusForMagnitude(f.Magnitude),
				FillColor:   domain.ColorForMagnitude(f.Magnitude),
				FillOpacity: quakeFillOpacity,
				Stroke:      true,
				Color:       quakeStrokeColor,
				Weight:      quakeStrokeWidth,
			},
			Popup: domain.EarthquakePopup(f, loc),
		})
	}
	return PointLayer{Markers: markers}
}

// BuildPlateLayer converts boundary features into a styled line layer.
func BuildPlateLayer(features []domain.PlateBoundaryFeature) LineLayer {
	fc := geojson.NewFeatureCollection()
	for _, p := range features {
		f := geojson.NewFeature(p.Geometry)
		if p.Properties != nil {
			f.Properties = p.Properties
		}
		fc.Append(f)
	}
	return LineLayer{Style: plateStyle(), Features: fc}
}

func emptyPlateLayer() LineLayer {
	return LineLayer{Style: plateStyle(), Features: geojson.NewFeatureCollection()}
}

func plateStyle() LineStyle {
	return LineStyle{Color: plateColor, Weight: plateWidth}
}
