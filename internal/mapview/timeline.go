package mapview

import (
	"time"

	"github.com/couchcryptid/quake-map-service/internal/domain"
)

// pixelsPerMagnitude scales timeline marker radius.
const pixelsPerMagnitude = 3

// TimelineEntry is one animated marker and the window during which it shows.
type TimelineEntry struct {
	ID       string          `json:"id,omitempty"`
	Lon      float64         `json:"lon"`
	Lat      float64         `json:"lat"`
	Interval domain.Interval `json:"interval"`
	Style    CircleStyle     `json:"style"`
	Popup    string          `json:"popup"`
}

// TimelineLayer is the time-slider driven point layer. Start and End span
// every entry's interval.
type TimelineLayer struct {
	Entries []TimelineEntry `json:"entries"`
	Start   int64           `json:"start"`
	End     int64           `json:"end"`
}

// TimelineControl is the slider widget that drives a TimelineLayer.
type TimelineControl struct {
	Start      int64  `json:"start"`
	End        int64  `json:"end"`
	StartLabel string `json:"start_label"`
	EndLabel   string `json:"end_label"`
}

// BuildTimeline computes an interval per feature and styles each marker on
// the continuous hue scale.
func BuildTimeline(features []domain.EarthquakeFeature) TimelineLayer {
	tl := TimelineLayer{Entries: make([]TimelineEntry, 0, len(features))}
	for i, f := range features {
		iv := domain.IntervalFor(f)
		color := domain.HSLForMagnitude(f.Magnitude)
		tl.Entries = append(tl.Entries, TimelineEntry{
			ID:       f.ID,
			Lon:      f.Lon(),
			Lat:      f.Lat(),
			Interval: iv,
			Style: CircleStyle{
				Radius:    f.Magnitude * pixelsPerMagnitude,
				FillColor: color,
				Stroke:    true,
				Color:     color,
			},
			Popup: domain.TimelinePopup(f),
		})

		if i == 0 || iv.Start < tl.Start {
			tl.Start = iv.Start
		}
		if i == 0 || iv.End > tl.End {
			tl.End = iv.End
		}
	}
	return tl
}

// BuildTimelineControl creates the slider for a layer, labelling its bounds
// in loc.
func BuildTimelineControl(tl TimelineLayer, loc *time.Location) TimelineControl {
	return TimelineControl{
		Start:      tl.Start,
		End:        tl.End,
		StartLabel: domain.FormatTimestamp(tl.Start, loc),
		EndLabel:   domain.FormatTimestamp(tl.End, loc),
	}
}
