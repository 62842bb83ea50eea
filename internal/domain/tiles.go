package domain

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownBaseMap is returned when a tile is requested for a base map that
// has no configured style.
var ErrUnknownBaseMap = errors.New("unknown base map")

// ErrTilesDisabled is returned when no tile provider credentials are configured.
var ErrTilesDisabled = errors.New("tiles disabled")

// BaseMap is one selectable background style.
type BaseMap struct {
	Slug string // URL-safe key, e.g. "light"
	Name string // label shown in the layer control
}

// Base map slugs.
const (
	BaseSatellite = "satellite"
	BaseOutdoors  = "outdoors"
	BaseLight     = "light"
)

// DefaultBaseMap is the style shown when the page loads.
const DefaultBaseMap = BaseLight

// BaseMaps lists the three mutually exclusive background styles in control order.
var BaseMaps = []BaseMap{
	{Slug: BaseSatellite, Name: "Satellite Map"},
	{Slug: BaseOutdoors, Name: "Outdoors Map"},
	{Slug: BaseLight, Name: "Light Map"},
}

// TileKey addresses one raster tile of a base map.
type TileKey struct {
	Base string
	Z    int
	X    int
	Y    int
}

func (k TileKey) String() string {
	return fmt.Sprintf("%s/%d/%d/%d", k.Base, k.Z, k.X, k.Y)
}

// Tile is raw tile image data.
type Tile struct {
	Data        []byte
	ContentType string
}

// TileFetcher retrieves base map tiles from a tile provider.
type TileFetcher interface {
	FetchTile(ctx context.Context, key TileKey) (Tile, error)
}
