package domain

import (
	"html"
	"time"
)

// timestampLayout mirrors the browser's Date.prototype.toString output,
// e.g. "Thu Jan 01 1970 00:00:01 GMT+0000 (UTC)".
const timestampLayout = "Mon Jan 02 2006 15:04:05 GMT-0700 (MST)"

// FormatTimestamp renders epoch milliseconds in loc. A nil loc means UTC.
func FormatTimestamp(ms int64, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return time.UnixMilli(ms).In(loc).Format(timestampLayout)
}

// EarthquakePopup builds the popup body for an earthquake overlay marker.
func EarthquakePopup(f EarthquakeFeature, loc *time.Location) string {
	return "<h3>" + html.EscapeString(f.Place) +
		"<br> Magnitude: " + FormatNumber(f.Magnitude) +
		"</h3><hr><p>" + FormatTimestamp(f.Time, loc) + "</p>"
}

// TimelinePopup builds the popup body for a timeline marker: a link to the
// USGS event page.
func TimelinePopup(f EarthquakeFeature) string {
	return `<a href="` + html.EscapeString(f.URL) + `">click for more info</a>`
}
