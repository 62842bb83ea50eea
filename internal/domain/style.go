package domain

import (
	"fmt"
	"strconv"
)

// Color is a CSS color value understood by the browser map.
type Color string

// Bucket colors, lowest magnitude first.
const (
	ColorGreen       Color = "green"
	ColorYellowGreen Color = "yellowgreen"
	ColorYellow      Color = "yellow"
	ColorGold        Color = "gold"
	ColorOrange      Color = "orange"
	ColorRed         Color = "red"
)

const (
	// metersPerMagnitude scales circle radius on the earthquake overlay.
	metersPerMagnitude = 80000

	hueLow      = 120.0 // magnitude 0
	hueHigh     = 0.0   // magnitude 10
	hueMagRange = 10.0
)

// ColorForMagnitude classifies a magnitude into one of six display colors.
// Thresholds are strict: exactly 1, 2, 3, 4 or 5 falls into the lower bucket.
func ColorForMagnitude(mag float64) Color {
	switch {
	case mag > 5:
		return ColorRed
	case mag > 4:
		return ColorOrange
	case mag > 3:
		return ColorGold
	case mag > 2:
		return ColorYellow
	case mag > 1:
		return ColorYellowGreen
	default:
		return ColorGreen
	}
}

// RadiusForMagnitude returns the circle radius in metres. Zero and negative
// magnitudes produce degenerate radii and are passed through.
func RadiusForMagnitude(mag float64) float64 {
	return mag * metersPerMagnitude
}

// HueForMagnitude maps magnitude 0..10 linearly onto hue 120..0. Values
// outside that range are not clamped, so magnitude 12 yields hue -24.
//
// The timeline uses this continuous scale; the overlay and legend use the
// buckets of ColorForMagnitude.
func HueForMagnitude(mag float64) float64 {
	return mag*(hueHigh-hueLow)/hueMagRange + hueLow
}

// HSLForMagnitude renders HueForMagnitude as a fully saturated CSS hsl() color.
func HSLForMagnitude(mag float64) Color {
	return Color(fmt.Sprintf("hsl(%s, 100%%, 50%%)", FormatNumber(HueForMagnitude(mag))))
}

// FormatNumber renders a float with the shortest representation, so 6 prints
// as "6" and 4.5 as "4.5".
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
