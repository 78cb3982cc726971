// Package geo provides the primitive value types the prominence core is
// built on: elevations, packed pixel offsets, and the two coordinate
// systems (degree-based and UTM-based) that map offsets to lat/lng.
package geo

import "math"

// Elevation is a signed scalar sample. NODATA is a sentinel marking a
// missing sample; any value at or below it is treated as missing.
type Elevation float64

// NoData marks a missing elevation sample.
const NoData Elevation = -32768

// IsNoData reports whether e represents a missing sample.
func (e Elevation) IsNoData() bool {
	return e <= NoData
}

// Coord is an integer pixel coordinate along one axis of a tile.
type Coord int32

// Offsets packs an (x, y) pixel coordinate into a single 64-bit value so
// it can be used as a map key and translated by (dx, dy) without
// allocating a struct. Y increases southward.
type Offsets uint64

// NewOffsets packs x and y into a single value.
func NewOffsets(x, y Coord) Offsets {
	return Offsets(uint64(uint32(y))<<32 | uint64(uint32(x)))
}

// X returns the packed x coordinate.
func (o Offsets) X() Coord {
	return Coord(uint32(o))
}

// Y returns the packed y coordinate.
func (o Offsets) Y() Coord {
	return Coord(uint32(o >> 32))
}

// OffsetBy returns the offsets translated by (dx, dy).
func (o Offsets) OffsetBy(dx, dy int) Offsets {
	return NewOffsets(o.X()+Coord(dx), o.Y()+Coord(dy))
}

// Value returns the packed representation, suitable as a map key.
func (o Offsets) Value() uint64 {
	return uint64(o)
}

// LatLng is a geographic point.
type LatLng struct {
	Lat float64
	Lng float64
}

// Higher implements the canonical tie-break rule used throughout the
// core whenever two candidates of equal standing (saddles on a cycle,
// peaks during uninversion) must be totally ordered: higher elevation
// wins, ties broken by the higher id. This is the complement of
// point2IsHigher(p1, p2), which orders "p1 < p2" under ascending
// (elevation, id) order.
func Higher(e1 float64, id1 int, e2 float64, id2 int) bool {
	return e1 > e2 || (e1 == e2 && id1 > id2)
}

// HigherElevation is Higher specialized to Elevation.
func HigherElevation(e1 Elevation, id1 int, e2 Elevation, id2 int) bool {
	return Higher(float64(e1), id1, float64(e2), id2)
}

// roundInt rounds a float to the nearest int, matching the original
// implementation's std::round before truncation to int.
func roundInt(f float64) int {
	return int(math.Round(f))
}
