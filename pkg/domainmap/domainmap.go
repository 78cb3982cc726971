// Package domainmap implements the flood-fill labeler DomainMap uses to
// classify each pixel of a tile as part of a peak, a saddle, a generic
// flat area, or untouched.
//
// Grounded on original_source/code/domain_map.cpp: find_flat_area and
// fill_flat_area flood-fill 4-connected runs of equal elevation;
// find_close_point_with_value spirals outward in increasing square rings
// to place a saddle aesthetically inside a large flat area.
package domainmap

import "github.com/kirmse-prom/prominence/pkg/geo"

// Reserved pixel labels. Positive labels are peak ids (1-based); negative
// labels starting at -1 are saddle ids; GenericFlatArea is a magnitude
// distinct from any real saddle id.
const (
	Empty            = 0
	GenericFlatArea  = -1 << 30
)

// ElevationSource is the minimal surface DomainMap needs from a tile.
type ElevationSource interface {
	Width() int
	Height() int
	At(x, y int) geo.Elevation
}

// Boundary is the result of a flood fill: every pixel strictly higher
// than the seed elevation that borders the flat area, in no particular
// order and with duplicates (callers sort-and-dedup when they need
// unique boundary segments).
type Boundary struct {
	HigherPoints []geo.Offsets
}

// DomainMap holds two parallel rasters the same size as the tile: labels
// and visit markers. The marker value is bumped once per scan instead of
// clearing the marker raster between flood fills.
type DomainMap struct {
	source      ElevationSource
	width       int
	height      int
	pixels      []int
	markers     []int
	markerValue int
}

// New creates a DomainMap sized to source.
func New(source ElevationSource) *DomainMap {
	w, h := source.Width(), source.Height()
	return &DomainMap{
		source:      source,
		width:       w,
		height:      h,
		pixels:      make([]int, w*h),
		markers:     make([]int, w*h),
		markerValue: 1,
	}
}

func (d *DomainMap) inBounds(x, y int) bool {
	return x >= 0 && x < d.width && y >= 0 && y < d.height
}

func (d *DomainMap) index(x, y int) int {
	return y*d.width + x
}

// Get returns the current label at (x, y).
func (d *DomainMap) Get(x, y int) int {
	if !d.inBounds(x, y) {
		return Empty
	}
	return d.pixels[d.index(x, y)]
}

func (d *DomainMap) setLabel(x, y int, v int) {
	d.pixels[d.index(x, y)] = v
}

func (d *DomainMap) marked(x, y int) bool {
	return d.markers[d.index(x, y)] == d.markerValue
}

func (d *DomainMap) mark(x, y int) {
	d.markers[d.index(x, y)] = d.markerValue
}

// dx4/dy4 are the 4-connected neighbor offsets.
var dx4 = [4]int{-1, 1, 0, 0}
var dy4 = [4]int{0, 0, -1, 1}

// FindFlatArea flood-fills all 4-connected pixels equal to the seed's
// elevation, without modifying pixels[], and returns every strictly
// higher, non-NODATA 4-neighbor encountered along the way.
func (d *DomainMap) FindFlatArea(x, y int) Boundary {
	d.markerValue++
	elev := d.source.At(x, y)

	var boundary Boundary
	stack := []geo.Offsets{geo.NewOffsets(geo.Coord(x), geo.Coord(y))}
	d.mark(x, y)

	for len(stack) > 0 {
		o := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cx, cy := int(o.X()), int(o.Y())

		for i := 0; i < 4; i++ {
			nx, ny := cx+dx4[i], cy+dy4[i]
			if !d.inBounds(nx, ny) {
				continue
			}
			ne := d.source.At(nx, ny)
			if ne.IsNoData() {
				continue
			}
			if ne == elev {
				if !d.marked(nx, ny) {
					d.mark(nx, ny)
					stack = append(stack, geo.NewOffsets(geo.Coord(nx), geo.Coord(ny)))
				}
				continue
			}
			if ne > elev {
				boundary.HigherPoints = append(boundary.HigherPoints, geo.NewOffsets(geo.Coord(nx), geo.Coord(ny)))
			}
		}
	}
	return boundary
}

// FillFlatArea flood-fills the same 4-connected region as FindFlatArea,
// but writes pixelValue into the label raster. Idempotent when the
// region is already filled with pixelValue.
func (d *DomainMap) FillFlatArea(x, y int, pixelValue int) {
	if d.Get(x, y) == pixelValue {
		return
	}
	elev := d.source.At(x, y)
	d.markerValue++

	stack := []geo.Offsets{geo.NewOffsets(geo.Coord(x), geo.Coord(y))}
	d.mark(x, y)
	d.setLabel(x, y, pixelValue)

	for len(stack) > 0 {
		o := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cx, cy := int(o.X()), int(o.Y())

		for i := 0; i < 4; i++ {
			nx, ny := cx+dx4[i], cy+dy4[i]
			if !d.inBounds(nx, ny) || d.marked(nx, ny) {
				continue
			}
			ne := d.source.At(nx, ny)
			if ne.IsNoData() || ne != elev {
				continue
			}
			d.mark(nx, ny)
			d.setLabel(nx, ny, pixelValue)
			stack = append(stack, geo.NewOffsets(geo.Coord(nx), geo.Coord(ny)))
		}
	}
}

// FindClosePointWithValue finds the pixel closest to location that
// currently carries the given label, spiraling outward in increasing
// square rings. Falls back to location itself if nothing is found within
// the tile.
func (d *DomainMap) FindClosePointWithValue(location geo.Offsets, value int) geo.Offsets {
	x0, y0 := int(location.X()), int(location.Y())
	if d.Get(x0, y0) == value {
		return location
	}

	maxRadius := d.width
	if d.height > maxRadius {
		maxRadius = d.height
	}

	for radius := 1; radius <= maxRadius; radius++ {
		// Walk the square ring of the given radius, starting at the top
		// edge and turning at each corner.
		x, y := x0-radius, y0-radius
		dx, dy := 1, 0
		steps := radius * 8
		if steps == 0 {
			steps = 1
		}
		side := 2 * radius
		for s := 0; s < 4; s++ {
			for i := 0; i < side; i++ {
				if d.inBounds(x, y) && d.Get(x, y) == value {
					return geo.NewOffsets(geo.Coord(x), geo.Coord(y))
				}
				x += dx
				y += dy
			}
			dx, dy = -dy, dx
		}
	}

	return location
}
