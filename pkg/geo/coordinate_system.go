package geo

import (
	"fmt"
	"strconv"
	"strings"
)

// CoordinateSystem maps Offsets within a tile to geographic coordinates.
// The two concrete implementations, DegreeCoordinateSystem and
// UTMCoordinateSystem, differ only in how an offset maps to a LatLng; all
// downstream algorithms treat a CoordinateSystem opaquely through this
// interface rather than through language-level runtime type checks.
type CoordinateSystem interface {
	// LatLng converts a pixel offset to a geographic point.
	LatLng(o Offsets) LatLng

	// CompatibleWith reports whether the two systems share a projection
	// and resolution, so offsets can be meaningfully translated between
	// them.
	CompatibleWith(that CoordinateSystem) bool

	// OffsetsTo returns the offset to translate from this system's
	// origin to that system's origin. Both systems must be compatible.
	OffsetsTo(that CoordinateSystem) Offsets

	// MergeWith returns a new CoordinateSystem of the same projection and
	// resolution whose bounding box covers both inputs.
	MergeWith(that CoordinateSystem) CoordinateSystem

	// SamplesAroundEquator returns the number of samples that make up a
	// full circle around the globe at this resolution, used to detect
	// antimeridian-adjacent runoffs during splicing.
	SamplesAroundEquator() int

	// String serializes the coordinate system for persistence.
	String() string
}

// ParseCoordinateSystem parses a CoordinateSystem.String() value,
// dispatching on the leading discriminant ('G' for degree-based, 'U' for
// UTM-based).
func ParseCoordinateSystem(s string) (CoordinateSystem, error) {
	fields := strings.Split(strings.TrimSpace(s), ",")
	if len(fields) == 0 {
		return nil, fmt.Errorf("geo: empty coordinate system string")
	}
	switch fields[0] {
	case "G":
		return parseDegreeCoordinateSystem(fields)
	case "U":
		return parseUTMCoordinateSystem(fields)
	default:
		return nil, fmt.Errorf("geo: unknown coordinate system discriminant %q", fields[0])
	}
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
