package geo

import (
	"fmt"
	"math"
)

// UTMCoordinateSystem is a coordinate system whose corners are given as
// UTM easting/northing within a single zone, with samples a constant
// number of meters apart.
type UTMCoordinateSystem struct {
	Zone                     int
	MinX, MinY, MaxX, MaxY   int
	MetersPerSample          float64
}

var _ CoordinateSystem = UTMCoordinateSystem{}

// NewUTMCoordinateSystem constructs a UTM-based coordinate system. Zone
// must be in [1, 60].
func NewUTMCoordinateSystem(zone, minX, minY, maxX, maxY int, metersPerSample float64) (UTMCoordinateSystem, error) {
	if zone <= 0 || zone > 60 {
		return UTMCoordinateSystem{}, fmt.Errorf("geo: UTM zone %d out of range", zone)
	}
	return UTMCoordinateSystem{Zone: zone, MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY, MetersPerSample: metersPerSample}, nil
}

// LatLng converts a pixel offset to a geographic point via the standard
// WGS84 UTM-to-geographic transverse Mercator inverse formulas (northern
// hemisphere).
func (u UTMCoordinateSystem) LatLng(o Offsets) LatLng {
	easting := float64(u.MinX) + float64(o.X())*u.MetersPerSample
	northing := float64(u.MaxY) - float64(o.Y())*u.MetersPerSample
	lat, lng := utmToLatLng(easting, northing, u.Zone)
	return LatLng{Lat: lat, Lng: lng}
}

// CompatibleWith reports whether both systems are UTM-based, in the same
// zone, at the same resolution.
func (u UTMCoordinateSystem) CompatibleWith(that CoordinateSystem) bool {
	other, ok := that.(UTMCoordinateSystem)
	if !ok {
		return false
	}
	return u.Zone == other.Zone && u.MetersPerSample == other.MetersPerSample
}

// OffsetsTo returns the offset from this system's origin to that one's.
func (u UTMCoordinateSystem) OffsetsTo(that CoordinateSystem) Offsets {
	other := that.(UTMCoordinateSystem)
	dx := int(float64(u.MinX-other.MinX) / u.MetersPerSample)
	dy := int(float64(other.MaxY-u.MaxY) / u.MetersPerSample)
	return NewOffsets(Coord(dx), Coord(dy))
}

// MergeWith returns a UTM coordinate system whose bounds cover both
// inputs, at the shared zone and resolution.
func (u UTMCoordinateSystem) MergeWith(that CoordinateSystem) CoordinateSystem {
	other := that.(UTMCoordinateSystem)
	return UTMCoordinateSystem{
		Zone:            u.Zone,
		MinX:            min(u.MinX, other.MinX),
		MinY:            min(u.MinY, other.MinY),
		MaxX:            max(u.MaxX, other.MaxX),
		MaxY:            max(u.MaxY, other.MaxY),
		MetersPerSample: u.MetersPerSample,
	}
}

// SamplesAroundEquator approximates the number of samples around the
// globe at this resolution, using the equatorial circumference.
func (u UTMCoordinateSystem) SamplesAroundEquator() int {
	const equatorialCircumferenceMeters = 60 * 666000.0
	return int(equatorialCircumferenceMeters / u.MetersPerSample)
}

// String serializes as "U,zone,minX,minY,maxX,maxY,metersPerSample".
func (u UTMCoordinateSystem) String() string {
	return fmt.Sprintf("U,%d,%d,%d,%d,%d,%f", u.Zone, u.MinX, u.MinY, u.MaxX, u.MaxY, u.MetersPerSample)
}

func parseUTMCoordinateSystem(fields []string) (CoordinateSystem, error) {
	if len(fields) < 7 {
		return nil, fmt.Errorf("geo: UTM coordinate system needs 7 fields, got %d", len(fields))
	}
	zone, err := parseInt(fields[1])
	if err != nil {
		return nil, fmt.Errorf("geo: bad zone: %w", err)
	}
	minX, err := parseInt(fields[2])
	if err != nil {
		return nil, fmt.Errorf("geo: bad minX: %w", err)
	}
	minY, err := parseInt(fields[3])
	if err != nil {
		return nil, fmt.Errorf("geo: bad minY: %w", err)
	}
	maxX, err := parseInt(fields[4])
	if err != nil {
		return nil, fmt.Errorf("geo: bad maxX: %w", err)
	}
	maxY, err := parseInt(fields[5])
	if err != nil {
		return nil, fmt.Errorf("geo: bad maxY: %w", err)
	}
	metersPerSample, err := parseFloat(fields[6])
	if err != nil {
		return nil, fmt.Errorf("geo: bad metersPerSample: %w", err)
	}
	if metersPerSample <= 0 {
		return nil, fmt.Errorf("geo: invalid sample counts in coordinate system")
	}
	return NewUTMCoordinateSystem(zone, minX, minY, maxX, maxY, metersPerSample)
}

// WGS84 ellipsoid constants.
const (
	utmSemiMajorAxis   = 6378137.0
	utmFlattening      = 1.0 / 298.257223563
	utmFalseEasting    = 500000.0
	utmScaleFactor     = 0.9996
)

// utmToLatLng converts northern-hemisphere UTM easting/northing in the
// given zone to latitude/longitude in degrees, using the classic
// footpoint-latitude transverse Mercator inverse series (Snyder).
func utmToLatLng(easting, northing float64, zone int) (lat, lng float64) {
	e := (easting - utmFalseEasting) / utmScaleFactor
	n := northing / utmScaleFactor

	a := utmSemiMajorAxis
	f := utmFlattening
	ecc2 := f * (2 - f)
	eccPrime2 := ecc2 / (1 - ecc2)

	m := n
	mu := m / (a * (1 - ecc2/4 - 3*ecc2*ecc2/64 - 5*ecc2*ecc2*ecc2/256))

	e1 := (1 - math.Sqrt(1-ecc2)) / (1 + math.Sqrt(1-ecc2))
	phi1 := mu +
		(3*e1/2-27*e1*e1*e1/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*e1*e1*e1*e1/32)*math.Sin(4*mu) +
		(151*e1*e1*e1/96)*math.Sin(6*mu)

	n1 := a / math.Sqrt(1-ecc2*math.Sin(phi1)*math.Sin(phi1))
	t1 := math.Tan(phi1) * math.Tan(phi1)
	c1 := eccPrime2 * math.Cos(phi1) * math.Cos(phi1)
	r1 := a * (1 - ecc2) / math.Pow(1-ecc2*math.Sin(phi1)*math.Sin(phi1), 1.5)
	d := e / (n1 * utmScaleFactor)

	latRad := phi1 - (n1*math.Tan(phi1)/r1)*
		(d*d/2-(5+3*t1+10*c1-4*c1*c1-9*eccPrime2)*d*d*d*d/24+
			(61+90*t1+298*c1+45*t1*t1-252*eccPrime2-3*c1*c1)*d*d*d*d*d*d/720)

	lngRad := (d - (1+2*t1+c1)*d*d*d/6 +
		(5-2*c1+28*t1-3*c1*c1+8*eccPrime2+24*t1*t1)*d*d*d*d*d/120) / math.Cos(phi1)

	originLng := float64(zone-1)*6 - 180 + 3

	return latRad * 180 / math.Pi, originLng + lngRad*180/math.Pi
}
