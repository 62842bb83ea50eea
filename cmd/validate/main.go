// Command validate runs a feed file through the same layer builders and
// composers the service uses and checks the display invariants in phases:
// feed parsing, earthquake overlay styling, timeline intervals, the legend,
// and optionally a derived intervals fixture and a plate boundary feed.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -feed data/mock/all_day.geojson \
//	  -intervals data/mock/all_day_intervals.json \
//	  -plates data/mock/PB2002_boundaries.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"html"
	"math"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/couchcryptid/quake-map-service/internal/mapview"
	"github.com/paulmach/orb"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	feedPath := flag.String("feed", "", "path to an earthquake GeoJSON feed")
	intervalsPath := flag.String("intervals", "", "path to a derived intervals JSON fixture (optional)")
	platesPath := flag.String("plates", "", "path to a plate boundary GeoJSON feed (optional)")
	flag.Parse()

	if *feedPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*feedPath, *intervalsPath, *platesPath))
}

func run(feedPath, intervalsPath, platesPath string) int {
	fmt.Println("=== Quake Map Display Validation ===")
	fmt.Println()

	data, err := os.ReadFile(feedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read feed: %v\n", err)
		return 1
	}
	features, err := domain.ParseEarthquakeFeed(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateFeed(features),
		validateEarthquakeLayer(features),
		validateTimeline(features),
		validateLegend(),
	}
	if intervalsPath != "" {
		phases = append(phases, validateIntervals(intervalsPath, features))
	}
	if platesPath != "" {
		phases = append(phases, validatePlates(platesPath))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Features: %d\n", len(features))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Feed ──

func validateFeed(features []domain.EarthquakeFeature) *phase {
	p := &phase{name: "Phase 1: Feed (GeoJSON parse)"}

	if len(features) == 0 {
		p.errorf("feed has no features")
	}
	for i, f := range features {
		if f.ID == "" {
			p.errorf("feature %d: missing id", i)
		}
		if f.Lon() < -180 || f.Lon() > 180 || f.Lat() < -90 || f.Lat() > 90 {
			p.errorf("feature %d (%s): coordinates out of range: %v", i, f.ID, f.Point)
		}
		if math.IsNaN(f.Magnitude) || math.IsInf(f.Magnitude, 0) {
			p.errorf("feature %d (%s): non-finite magnitude", i, f.ID)
		}
		if f.Time <= 0 {
			p.errorf("feature %d (%s): missing origin time", i, f.ID)
		}
	}
	return p
}

// ── Phase 2: Earthquake overlay ──

// expectedColor restates the bucket thresholds so the check does not depend
// on the function under test.
func expectedColor(mag float64) domain.Color {
	bounds := []struct {
		above float64
		color domain.Color
	}{
		{5, domain.ColorRed}, {4, domain.ColorOrange}, {3, domain.ColorGold},
		{2, domain.ColorYellow}, {1, domain.ColorYellowGreen},
	}
	for _, b := range bounds {
		if mag > b.above {
			return b.color
		}
	}
	return domain.ColorGreen
}

func validateEarthquakeLayer(features []domain.EarthquakeFeature) *phase {
	p := &phase{name: "Phase 2: Earthquake Overlay (styling)"}

	layer := mapview.BuildEarthquakeLayer(features, time.UTC)
	if len(layer.Markers) != len(features) {
		p.errorf("marker count: expected %d, got %d", len(features), len(layer.Markers))
		return p
	}

	for i, f := range features {
		m := layer.Markers[i]
		if m.ID != f.ID {
			p.errorf("marker %d: order changed, expected %s got %s", i, f.ID, m.ID)
		}
		if want := expectedColor(f.Magnitude); m.Style.FillColor != want {
			p.errorf("marker %d (%s, M %g): color %s, expected %s", i, f.ID, f.Magnitude, m.Style.FillColor, want)
		}
		if want := f.Magnitude * 80000; m.Style.Radius != want {
			p.errorf("marker %d (%s): radius %g, expected %g", i, f.ID, m.Style.Radius, want)
		}
		if !strings.Contains(m.Popup, html.EscapeString(f.Place)) {
			p.errorf("marker %d (%s): popup missing place", i, f.ID)
		}
		if !strings.Contains(m.Popup, "Magnitude: "+domain.FormatNumber(f.Magnitude)) {
			p.errorf("marker %d (%s): popup missing magnitude", i, f.ID)
		}
	}
	return p
}

// ── Phase 3: Timeline ──

func validateTimeline(features []domain.EarthquakeFeature) *phase {
	p := &phase{name: "Phase 3: Timeline (intervals, hue)"}

	tl := mapview.BuildTimeline(features)
	if len(tl.Entries) != len(features) {
		p.errorf("entry count: expected %d, got %d", len(features), len(tl.Entries))
		return p
	}

	var minStart, maxEnd int64
	for i, f := range features {
		e := tl.Entries[i]
		wantLen := int64(math.Round(f.Magnitude * 1_800_000))
		if got := e.Interval.End - e.Interval.Start; got != wantLen {
			p.errorf("entry %d (%s): interval length %d ms, expected %d", i, f.ID, got, wantLen)
		}
		if e.Interval.Start != f.Time {
			p.errorf("entry %d (%s): interval start %d, expected origin time %d", i, f.ID, e.Interval.Start, f.Time)
		}
		wantHue := 120 - 12*f.Magnitude
		var hue float64
		if _, err := fmt.Sscanf(string(e.Style.FillColor), "hsl(%g,", &hue); err != nil || math.Abs(hue-wantHue) > 1e-9 {
			p.errorf("entry %d (%s, M %g): color %s, expected hue %g", i, f.ID, f.Magnitude, e.Style.FillColor, wantHue)
		}
		if e.Style.Color != e.Style.FillColor {
			p.errorf("entry %d (%s): stroke %s differs from fill %s", i, f.ID, e.Style.Color, e.Style.FillColor)
		}
		if i == 0 || e.Interval.Start < minStart {
			minStart = e.Interval.Start
		}
		if i == 0 || e.Interval.End > maxEnd {
			maxEnd = e.Interval.End
		}
	}

	if tl.Start != minStart || tl.End != maxEnd {
		p.errorf("timeline span [%d, %d), expected [%d, %d)", tl.Start, tl.End, minStart, maxEnd)
	}
	return p
}

// ── Phase 4: Legend ──

func validateLegend() *phase {
	p := &phase{name: "Phase 4: Legend (bins, swatches)"}

	legend := mapview.BuildLegend()
	wantLabels := []string{"0–1", "1–2", "2–3", "3–4", "4–5", "5+"}
	if len(legend.Entries) != len(wantLabels) {
		p.errorf("entry count: expected %d, got %d", len(wantLabels), len(legend.Entries))
		return p
	}
	for i, e := range legend.Entries {
		if e.Label != wantLabels[i] {
			p.errorf("entry %d: label %q, expected %q", i, e.Label, wantLabels[i])
		}
		if want := expectedColor(e.Grade + 1); e.Color != want {
			p.errorf("entry %d: swatch %s, expected %s", i, e.Color, want)
		}
	}
	return p
}

// ── Phase 5: Intervals fixture ──

func validateIntervals(path string, features []domain.EarthquakeFeature) *phase {
	p := &phase{name: "Phase 5: Intervals Fixture (JSON vs feed)"}

	data, err := os.ReadFile(path)
	if err != nil {
		p.errorf("read: %v", err)
		return p
	}
	var intervals []domain.QuakeInterval
	if err := json.Unmarshal(data, &intervals); err != nil {
		p.errorf("decode: %v", err)
		return p
	}
	if len(intervals) != len(features) {
		p.errorf("count: expected %d, got %d", len(features), len(intervals))
		return p
	}

	for i, f := range features {
		want := domain.NewQuakeInterval(f)
		got := intervals[i]
		if got.ID != want.ID {
			p.errorf("interval %d: id %s, expected %s", i, got.ID, want.ID)
		}
		if !got.Start.Equal(want.Start) || !got.End.Equal(want.End) {
			p.errorf("interval %d (%s): window [%s, %s), expected [%s, %s)", i, f.ID,
				got.Start.Format(time.RFC3339), got.End.Format(time.RFC3339),
				want.Start.Format(time.RFC3339), want.End.Format(time.RFC3339))
		}
		if got.Magnitude != want.Magnitude {
			p.errorf("interval %d (%s): magnitude %g, expected %g", i, f.ID, got.Magnitude, want.Magnitude)
		}
	}
	return p
}

// ── Phase 6: Plates ──

func validatePlates(path string) *phase {
	p := &phase{name: "Phase 6: Plate Boundaries (GeoJSON)"}

	data, err := os.ReadFile(path)
	if err != nil {
		p.errorf("read: %v", err)
		return p
	}
	plates, err := domain.ParsePlateFeed(data)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	if len(plates) == 0 {
		p.errorf("plate feed has no features")
	}
	for i, pl := range plates {
		switch pl.Geometry.(type) {
		case orb.LineString, orb.MultiLineString:
		default:
			p.errorf("plate %d: unexpected geometry %T", i, pl.Geometry)
		}
	}

	layer := mapview.BuildPlateLayer(plates)
	if len(layer.Features.Features) != len(plates) {
		p.errorf("layer feature count: expected %d, got %d", len(plates), len(layer.Features.Features))
	}
	return p
}
