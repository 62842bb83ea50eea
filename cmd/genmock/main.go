// Command genmock writes a deterministic synthetic USGS-style earthquake feed
// and the timeline intervals the service would derive from it. Feature times
// are anchored to a fixed clock, so repeated runs produce identical files.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -feed-out data/mock/all_day.geojson \
//	  -intervals-out data/mock/all_day_intervals.json \
//	  -count 200
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

var generatedAt = time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC)

// region is a seismically active box features are scattered across.
type region struct {
	name           string
	minLon, maxLon float64
	minLat, maxLat float64
}

var regions = []region{
	{name: "Southern California", minLon: -119, maxLon: -115, minLat: 32.5, maxLat: 35.5},
	{name: "Alaska Peninsula", minLon: -162, maxLon: -150, minLat: 54, maxLat: 61},
	{name: "Japan", minLon: 139, maxLon: 145, minLat: 33, maxLat: 43},
	{name: "Chile", minLon: -74, maxLon: -68, minLat: -38, maxLat: -18},
	{name: "Indonesia", minLon: 95, maxLon: 130, minLat: -10, maxLat: 5},
	{name: "Mid-Atlantic Ridge", minLon: -35, maxLon: -12, minLat: -5, maxLat: 40},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	feedOut := flag.String("feed-out", "", "output path for the GeoJSON feed fixture")
	intervalsOut := flag.String("intervals-out", "", "output path for the derived intervals fixture (optional)")
	count := flag.Int("count", 100, "number of features to generate")
	seed := flag.Uint64("seed", 42, "random seed")
	flag.Parse()

	if *feedOut == "" || *count <= 0 {
		flag.Usage()
		return fmt.Errorf("missing required flag -feed-out or non-positive -count")
	}

	// Fixed clock for reproducible feature times and interval timestamps.
	clock := clockwork.NewFakeClockAt(generatedAt)
	domain.SetClock(clock)
	defer domain.SetClock(nil)

	fc := generate(rand.New(rand.NewPCG(*seed, *seed)), clock.Now(), *count)
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal feed: %w", err)
	}
	if err := writeFile(*feedOut, data); err != nil {
		return fmt.Errorf("writing feed fixture: %w", err)
	}
	log.Printf("wrote feed fixture: %s (%d features)", *feedOut, *count)

	// Round-trip through the real parser so the fixture matches service behavior.
	features, err := domain.ParseEarthquakeFeed(data)
	if err != nil {
		return fmt.Errorf("re-parse generated feed: %w", err)
	}

	if *intervalsOut != "" {
		intervals := make([]domain.QuakeInterval, len(features))
		for i, f := range features {
			intervals[i] = domain.NewQuakeInterval(f)
		}
		out, err := json.MarshalIndent(intervals, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal intervals: %w", err)
		}
		if err := writeFile(*intervalsOut, out); err != nil {
			return fmt.Errorf("writing intervals fixture: %w", err)
		}
		log.Printf("wrote intervals fixture: %s", *intervalsOut)
	}

	printStats(features)
	return nil
}

// generate builds a feed whose events fall within the 24 hours before now.
func generate(rng *rand.Rand, now time.Time, n int) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	window := 24 * time.Hour

	for i := range n {
		r := regions[rng.IntN(len(regions))]
		lon := r.minLon + rng.Float64()*(r.maxLon-r.minLon)
		lat := r.minLat + rng.Float64()*(r.maxLat-r.minLat)
		depth := math.Round(rng.Float64()*70*100) / 100
		mag := magnitude(rng)
		at := now.Add(-time.Duration(rng.Int64N(int64(window))))
		id := fmt.Sprintf("mk%08d", i+1)

		f := geojson.NewFeature(orb.Point{lon, lat})
		f.ID = id
		// Depth is the third coordinate in the real feed; orb points are 2D,
		// so it is carried as a property here.
		f.Properties = geojson.Properties{
			"mag":   mag,
			"place": fmt.Sprintf("%d km %s of %s", 1+rng.IntN(120), compass(rng), r.name),
			"time":  at.UnixMilli(),
			"url":   "https://earthquake.usgs.gov/earthquakes/eventpage/" + id,
			"type":  "earthquake",
			"depth": depth,
			"title": fmt.Sprintf("M %.1f - %s", mag, r.name),
		}
		fc.Append(f)
	}
	return fc
}

// magnitude draws from a roughly Gutenberg-Richter shaped distribution:
// small events dominate, a handful exceed 5.
func magnitude(rng *rand.Rand) float64 {
	m := -math.Log(1-rng.Float64()) * 1.1
	if m > 8.5 {
		m = 8.5
	}
	return math.Round(m*100) / 100
}

func compass(rng *rand.Rand) string {
	points := []string{"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE", "S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW"}
	return points[rng.IntN(len(points))]
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(features []domain.EarthquakeFeature) {
	buckets := map[domain.Color]int{}
	var maxMag float64
	var maxID string
	for _, f := range features {
		buckets[domain.ColorForMagnitude(f.Magnitude)]++
		if f.Magnitude > maxMag {
			maxMag, maxID = f.Magnitude, f.ID
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(features))
	fmt.Println("By legend bucket:")
	for _, c := range []domain.Color{
		domain.ColorGreen, domain.ColorYellowGreen, domain.ColorYellow,
		domain.ColorGold, domain.ColorOrange, domain.ColorRed,
	} {
		fmt.Printf("  %-12s %d\n", c, buckets[c])
	}
	fmt.Printf("Largest: %s (M %g)\n", maxID, maxMag)
}
