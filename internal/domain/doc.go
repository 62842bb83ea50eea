// Package domain models USGS earthquake reports and plate boundary data, and
// the display rules that turn them into map styling.
//
// # Data Sources
//
// Earthquakes come from the USGS real-time GeoJSON summary feeds, available at
// https://earthquake.usgs.gov/earthquakes/feed/v1.0/geojson.php. The default
// feed is "all_day", every event recorded in the past 24 hours, refreshed by
// USGS roughly every minute.
//
// Plate boundaries come from the PB2002 model (Bird, 2003) as packaged in
// GeoJSON by https://github.com/fraxen/tectonicplates. Each feature is a
// LineString tracing one boundary segment.
//
// # USGS Feed Conventions
//
// Coordinates:
//
//	[longitude, latitude, depth_km]. Depth is ignored for display.
//
// Properties used by the map:
//
//	place  human description, e.g. "10 km SSW of Idyllwild, CA"
//	mag    magnitude; the scale varies by network (ml, md, mb, mww) and may
//	       be null or negative for very small events
//	time   origin time in milliseconds since the Unix epoch, UTC
//	url    event page on earthquake.usgs.gov
//
// Nothing is validated. A missing or non-numeric value becomes the zero value
// and flows through the style functions unchanged.
//
// # Display Rules
//
// Marker color uses a five-threshold bucket classification on magnitude:
//
//	> 5 red | > 4 orange | > 3 gold | > 2 yellow | > 1 yellowgreen | else green
//
// Comparisons are strict, so a magnitude of exactly 3 is yellow, not gold.
//
// Marker radius is linear, 80 km per unit of magnitude.
//
// The timeline layer shows each event for 30 minutes per unit of magnitude
// after its origin time and colors markers on a continuous hue from 120
// (green, magnitude 0) to 0 (red, magnitude 10). The hue is not clamped. See
// [HueForMagnitude].
package domain
