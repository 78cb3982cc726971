// Package tilesource defines the interface boundary between the
// prominence core and raster format loaders. Decoding any specific
// on-disk format (SRTM, NED, Copernicus GLO-30, FABDEM, 3DEP UTM, custom
// FLT) is explicitly out of scope for this module; only the abstract
// Tile/TileSource contract lives here.
package tilesource

import (
	"context"

	"github.com/kirmse-prom/prominence/pkg/geo"
)

// TileID identifies a tile a TileSource can load. Its string form is
// opaque to the core; format loaders define their own naming convention
// (e.g. "N37W105").
type TileID string

// Tile is a rectangular grid of elevation samples in row-major,
// northward-flipped orientation: y=0 is the northernmost row.
type Tile interface {
	// Width is the number of samples per row.
	Width() int
	// Height is the number of rows.
	Height() int
	// At returns the elevation sample at (x, y). x must be in
	// [0, Width()) and y in [0, Height()).
	At(x, y int) geo.Elevation
	// CoordinateSystem returns the tile's geographic placement.
	CoordinateSystem() geo.CoordinateSystem
}

// Source loads tiles by id. Load must be deterministic: calling it twice
// with the same id must yield equivalent tiles. Returning (nil, nil)
// means the tile does not exist and should be skipped, not treated as an
// error.
type Source interface {
	Load(ctx context.Context, id TileID) (Tile, error)
}

// RasterTile is a minimal in-memory Tile implementation, useful both for
// tests and as the shape a format loader decodes into before handing
// samples to the core.
type RasterTile struct {
	width, height int
	samples       []geo.Elevation
	cs            geo.CoordinateSystem
}

// NewRasterTile constructs a RasterTile from row-major samples. It
// panics if len(samples) != width*height, the same contract the core
// relies on for every Tile implementation.
func NewRasterTile(width, height int, samples []geo.Elevation, cs geo.CoordinateSystem) *RasterTile {
	if len(samples) != width*height {
		panic("tilesource: sample count does not match width*height")
	}
	return &RasterTile{width: width, height: height, samples: samples, cs: cs}
}

func (t *RasterTile) Width() int  { return t.width }
func (t *RasterTile) Height() int { return t.height }

func (t *RasterTile) At(x, y int) geo.Elevation {
	if x < 0 || x >= t.width || y < 0 || y >= t.height {
		return geo.NoData
	}
	return t.samples[y*t.width+x]
}

func (t *RasterTile) CoordinateSystem() geo.CoordinateSystem { return t.cs }

// Set writes a sample, used by tests and by tile-cache edge reconciliation.
func (t *RasterTile) Set(x, y int, e geo.Elevation) {
	if x < 0 || x >= t.width || y < 0 || y >= t.height {
		return
	}
	t.samples[y*t.width+x] = e
}

var _ Tile = (*RasterTile)(nil)
