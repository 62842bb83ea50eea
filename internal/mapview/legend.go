package mapview

import (
	"github.com/couchcryptid/quake-map-service/internal/domain"
)

// legendGrades are the lower bounds of the legend bins.
var legendGrades = []float64{0, 1, 2, 3, 4, 5}

// LegendEntry is one magnitude bin with its swatch color.
type LegendEntry struct {
	Grade float64      `json:"grade"`
	Color domain.Color `json:"color"`
	Label string       `json:"label"`
}

// Legend is the static magnitude key shown in a map corner.
type Legend struct {
	Position string        `json:"position"`
	Entries  []LegendEntry `json:"entries"`
}

// BuildLegend produces one entry per grade. Each swatch is the bucket color
// of grade+1, the color every magnitude in (grade, grade+1] receives.
func BuildLegend() Legend {
	entries := make([]LegendEntry, 0, len(legendGrades))
	for i, g := range legendGrades {
		label := domain.FormatNumber(g) + "+"
		if i+1 < len(legendGrades) {
			label = domain.FormatNumber(g) + "–" + domain.FormatNumber(legendGrades[i+1])
		}
		entries = append(entries, LegendEntry{
			Grade: g,
			Color: domain.ColorForMagnitude(g + 1),
			Label: label,
		})
	}
	return Legend{Position: "bottomright", Entries: entries}
}
