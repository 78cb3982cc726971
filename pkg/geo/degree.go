package geo

import (
	"fmt"
	"math"
)

// DegreeCoordinateSystem is a coordinate system whose corners are given in
// lat/lng, with samples assumed to be linearly spaced in lat/lng.
type DegreeCoordinateSystem struct {
	MinLat, MinLng, MaxLat, MaxLng     float64
	SamplesPerDegreeLat, SamplesPerDegreeLng int
}

var _ CoordinateSystem = DegreeCoordinateSystem{}

// NewDegreeCoordinateSystem constructs a degree-based coordinate system.
func NewDegreeCoordinateSystem(minLat, minLng, maxLat, maxLng float64, samplesPerDegreeLat, samplesPerDegreeLng int) DegreeCoordinateSystem {
	return DegreeCoordinateSystem{
		MinLat: minLat, MinLng: minLng, MaxLat: maxLat, MaxLng: maxLng,
		SamplesPerDegreeLat: samplesPerDegreeLat, SamplesPerDegreeLng: samplesPerDegreeLng,
	}
}

// LatLng converts a pixel offset to a geographic point. Positive y is
// south, so latitude decreases as y increases.
func (d DegreeCoordinateSystem) LatLng(o Offsets) LatLng {
	lat := d.MaxLat - float64(o.Y())/float64(d.SamplesPerDegreeLat)
	lng := d.MinLng + float64(o.X())/float64(d.SamplesPerDegreeLng)
	return LatLng{Lat: lat, Lng: lng}
}

// CompatibleWith reports whether both systems are degree-based with the
// same resolution.
func (d DegreeCoordinateSystem) CompatibleWith(that CoordinateSystem) bool {
	other, ok := that.(DegreeCoordinateSystem)
	if !ok {
		return false
	}
	return d.SamplesPerDegreeLat == other.SamplesPerDegreeLat &&
		d.SamplesPerDegreeLng == other.SamplesPerDegreeLng
}

// OffsetsTo returns the offset from this system's origin to that one's.
func (d DegreeCoordinateSystem) OffsetsTo(that CoordinateSystem) Offsets {
	other := that.(DegreeCoordinateSystem)
	dx := roundInt((d.MinLng - other.MinLng) * float64(d.SamplesPerDegreeLng))
	dy := roundInt((other.MaxLat - d.MaxLat) * float64(d.SamplesPerDegreeLat))
	return NewOffsets(Coord(dx), Coord(dy))
}

// MergeWith returns a degree coordinate system whose bounds cover both
// inputs, at the (shared) resolution.
func (d DegreeCoordinateSystem) MergeWith(that CoordinateSystem) CoordinateSystem {
	other := that.(DegreeCoordinateSystem)
	return DegreeCoordinateSystem{
		MinLat: math.Min(d.MinLat, other.MinLat),
		MinLng: math.Min(d.MinLng, other.MinLng),
		MaxLat: math.Max(d.MaxLat, other.MaxLat),
		MaxLng: math.Max(d.MaxLng, other.MaxLng),
		SamplesPerDegreeLat: d.SamplesPerDegreeLat,
		SamplesPerDegreeLng: d.SamplesPerDegreeLng,
	}
}

// SamplesAroundEquator returns 360 * samples-per-degree-longitude.
func (d DegreeCoordinateSystem) SamplesAroundEquator() int {
	return 360 * d.SamplesPerDegreeLng
}

// String serializes as "G,minLat,minLng,samplesPerLat,samplesPerLng,maxLat,maxLng".
func (d DegreeCoordinateSystem) String() string {
	return fmt.Sprintf("G,%f,%f,%d,%d,%f,%f",
		d.MinLat, d.MinLng, d.SamplesPerDegreeLat, d.SamplesPerDegreeLng, d.MaxLat, d.MaxLng)
}

// parseDegreeCoordinateSystem parses the fields following the "G"
// discriminant. Accepts the legacy 5-field form (no max lat/lng), in which
// case a 1x1-degree tile is assumed, matching the original reader's
// backward-compatibility behavior.
func parseDegreeCoordinateSystem(fields []string) (CoordinateSystem, error) {
	if len(fields) < 5 {
		return nil, fmt.Errorf("geo: degree coordinate system needs at least 5 fields, got %d", len(fields))
	}
	minLat, err := parseFloat(fields[1])
	if err != nil {
		return nil, fmt.Errorf("geo: bad minLat: %w", err)
	}
	minLng, err := parseFloat(fields[2])
	if err != nil {
		return nil, fmt.Errorf("geo: bad minLng: %w", err)
	}
	samplesPerLat, err := parseInt(fields[3])
	if err != nil {
		return nil, fmt.Errorf("geo: bad samplesPerDegreeLat: %w", err)
	}
	samplesPerLng, err := parseInt(fields[4])
	if err != nil {
		return nil, fmt.Errorf("geo: bad samplesPerDegreeLng: %w", err)
	}

	var maxLat, maxLng float64
	if len(fields) >= 7 {
		if maxLat, err = parseFloat(fields[5]); err != nil {
			return nil, fmt.Errorf("geo: bad maxLat: %w", err)
		}
		if maxLng, err = parseFloat(fields[6]); err != nil {
			return nil, fmt.Errorf("geo: bad maxLng: %w", err)
		}
	} else {
		// Legacy 5-field form: assume a 1x1 degree tile.
		maxLat = minLat + 1
		maxLng = minLng + 1
	}

	if samplesPerLat <= 0 || samplesPerLng <= 0 {
		return nil, fmt.Errorf("geo: invalid sample counts in coordinate system")
	}

	return NewDegreeCoordinateSystem(minLat, minLng, maxLat, maxLng, samplesPerLat, samplesPerLng), nil
}
