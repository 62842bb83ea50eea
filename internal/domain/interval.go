package domain

import (
	"math"
	"time"
)

// MillisPerMagnitude is how long, per unit of magnitude, an event stays
// visible on the timeline: 30 minutes. A magnitude 5 event shows for 150 minutes.
const MillisPerMagnitude = 1_800_000

// Interval is a half-open display window [Start, End) in epoch milliseconds.
type Interval struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// IntervalFor computes the timeline window for an event. The window starts at
// the origin time and lasts MillisPerMagnitude per unit of magnitude. A zero
// or negative magnitude gives an empty or inverted window, unguarded.
func IntervalFor(f EarthquakeFeature) Interval {
	return Interval{
		Start: f.Time,
		End:   f.Time + int64(math.Round(f.Magnitude*MillisPerMagnitude)),
	}
}

// Duration returns the window length.
func (i Interval) Duration() time.Duration {
	return time.Duration(i.End-i.Start) * time.Millisecond
}

// QuakeInterval is the published form of a timeline entry.
type QuakeInterval struct {
	ID          string    `json:"id"`
	Place       string    `json:"place"`
	Magnitude   float64   `json:"magnitude"`
	Lon         float64   `json:"lon"`
	Lat         float64   `json:"lat"`
	URL         string    `json:"url,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	GeneratedAt time.Time `json:"generated_at"`
}

// NewQuakeInterval pairs an event with its timeline window, stamped with the
// package clock.
func NewQuakeInterval(f EarthquakeFeature) QuakeInterval {
	iv := IntervalFor(f)
	return QuakeInterval{
		ID:          f.ID,
		Place:       f.Place,
		Magnitude:   f.Magnitude,
		Lon:         f.Lon(),
		Lat:         f.Lat(),
		URL:         f.URL,
		Start:       time.UnixMilli(iv.Start).UTC(),
		End:         time.UnixMilli(iv.End).UTC(),
		GeneratedAt: clock.Now().UTC(),
	}
}
