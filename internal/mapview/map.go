// Package mapview composes earthquake and plate boundary layers, a legend,
// and a timeline onto an explicit map handle.
package mapview

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/domain"
)

// Layer names shown in the layer control.
const (
	OverlayEarthquakes = "Earthquakes"
	OverlayPlates      = "Tectonic Plates"
	LayerTimeline      = "Timeline"
)

// View is the initial camera position.
type View struct {
	Center [2]float64 `json:"center"` // [lat, lon]
	Zoom   float64    `json:"zoom"`
}

// DefaultView frames the whole globe with the Atlantic in the middle.
var DefaultView = View{Center: [2]float64{31.7, -7.09}, Zoom: 2.5}

// TileLayer is a raster base map.
type TileLayer struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	URLTemplate string `json:"url_template"`
	Attribution string `json:"attribution,omitempty"`
	Active      bool   `json:"active"`
}

// Overlay is an independently toggleable layer drawn above the base map.
// Exactly one of Points and Lines is set.
type Overlay struct {
	Name   string      `json:"name"`
	Active bool        `json:"active"`
	Points *PointLayer `json:"points,omitempty"`
	Lines  *LineLayer  `json:"lines,omitempty"`
}

// LayerControl lets the user switch base maps and toggle overlays.
type LayerControl struct {
	Collapsed bool `json:"collapsed"`
}

const mapboxAttribution = `© <a href="https://www.mapbox.com/about/maps/">Mapbox</a> © <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a>`

// BaseLayers builds one tile layer per domain.BaseMaps entry, served under
// tilePrefix as "{prefix}/{slug}/{z}/{x}/{y}". The default base map is active.
func BaseLayers(tilePrefix string) []TileLayer {
	layers := make([]TileLayer, 0, len(domain.BaseMaps))
	for _, b := range domain.BaseMaps {
		layers = append(layers, TileLayer{
			Slug:        b.Slug,
			Name:        b.Name,
			URLTemplate: tilePrefix + "/" + b.Slug + "/{z}/{x}/{y}",
			Attribution: mapboxAttribution,
			Active:      b.Slug == domain.DefaultBaseMap,
		})
	}
	return layers
}

// Map is a live map handle. Composer functions take the handle, register
// layers on it, and return it. Async attachments may mutate it from other
// goroutines; every access goes through mu.
type Map struct {
	mu              sync.Mutex
	view            View
	baseLayers      []TileLayer
	overlays        []*Overlay
	control         *LayerControl
	legend          *Legend
	timeline        *TimelineLayer
	timelineControl *TimelineControl

	pending map[string]struct{}
	idle    chan struct{} // closed when pending drains; nil while nothing is pending
}

// NewMap creates an empty map handle.
func NewMap(view View) *Map {
	return &Map{
		view:    view,
		pending: make(map[string]struct{}),
	}
}

// ComposeMap registers base layers, the earthquake overlay, an empty plate
// boundary overlay, the layer control, and the legend. Exactly one base layer
// ends up active: the first one marked active, or the first one if none is.
func ComposeMap(m *Map, bases []TileLayer, earthquakes PointLayer) *Map {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.baseLayers = exclusiveBase(bases)

	plates := emptyPlateLayer()
	m.overlays = []*Overlay{
		{Name: OverlayEarthquakes, Active: true, Points: &earthquakes},
		{Name: OverlayPlates, Active: true, Lines: &plates},
	}

	m.control = &LayerControl{Collapsed: false}
	legend := BuildLegend()
	m.legend = &legend
	return m
}

func exclusiveBase(bases []TileLayer) []TileLayer {
	out := make([]TileLayer, len(bases))
	copy(out, bases)

	active := -1
	for i := range out {
		if out[i].Active && active < 0 {
			active = i
		}
		out[i].Active = false
	}
	if active < 0 && len(out) > 0 {
		active = 0
	}
	if active >= 0 {
		out[active].Active = true
	}
	return out
}

// AttachPlates populates the plate boundary overlay in place. It is a no-op
// if the map was never composed.
func AttachPlates(m *Map, plates []domain.PlateBoundaryFeature) *Map {
	layer := BuildPlateLayer(plates)

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, o := range m.overlays {
		if o.Name == OverlayPlates {
			o.Lines = &layer
		}
	}
	return m
}

// AttachTimeline adds the slider control and registers the timeline layer with it.
func AttachTimeline(m *Map, tl TimelineLayer, loc *time.Location) *Map {
	ctrl := BuildTimelineControl(tl, loc)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.timelineControl = &ctrl
	m.timeline = &tl
	return m
}

// Pending marks a layer as awaiting async data and returns the function that
// clears the mark. Calling it more than once has no further effect.
func (m *Map) Pending(name string) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.pending) == 0 {
		m.idle = make(chan struct{})
	}
	m.pending[name] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()

			delete(m.pending, name)
			if len(m.pending) == 0 && m.idle != nil {
				close(m.idle)
				m.idle = nil
			}
		})
	}
}

// Wait blocks until no layers are pending or ctx ends. It returns ctx.Err()
// in the latter case; the map remains usable either way.
func (m *Map) Wait(ctx context.Context) error {
	m.mu.Lock()
	idle := m.idle
	m.mu.Unlock()

	if idle == nil {
		return nil
	}
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Document is an immutable snapshot of a Map, serialized for the browser.
type Document struct {
	View            View             `json:"view"`
	BaseLayers      []TileLayer      `json:"base_layers"`
	Overlays        []Overlay        `json:"overlays"`
	LayerControl    *LayerControl    `json:"layer_control,omitempty"`
	Legend          *Legend          `json:"legend,omitempty"`
	Timeline        *TimelineLayer   `json:"timeline,omitempty"`
	TimelineControl *TimelineControl `json:"timeline_control,omitempty"`
	Pending         []string         `json:"pending,omitempty"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// Snapshot copies the current state of the map. Layers attached later do not
// affect a snapshot already taken.
func (m *Map) Snapshot() Document {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc := Document{
		View:            m.view,
		BaseLayers:      append([]TileLayer(nil), m.baseLayers...),
		Overlays:        make([]Overlay, 0, len(m.overlays)),
		LayerControl:    m.control,
		Legend:          m.legend,
		Timeline:        m.timeline,
		TimelineControl: m.timelineControl,
		GeneratedAt:     domain.Now().UTC(),
	}
	for _, o := range m.overlays {
		doc.Overlays = append(doc.Overlays, *o)
	}
	for name := range m.pending {
		doc.Pending = append(doc.Pending, name)
	}
	sort.Strings(doc.Pending)
	return doc
}

// Overlay returns a copy of the named overlay.
func (d Document) Overlay(name string) (Overlay, bool) {
	for _, o := range d.Overlays {
		if o.Name == name {
			return o, true
		}
	}
	return Overlay{}, false
}
