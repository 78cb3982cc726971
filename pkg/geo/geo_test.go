package geo

import (
	"math"
	"testing"
)

func TestOffsetsPackUnpack(t *testing.T) {
	tests := []struct {
		x, y Coord
	}{
		{0, 0},
		{100, 200},
		{-5, -7},
		{32767, -32768},
	}
	for _, tt := range tests {
		o := NewOffsets(tt.x, tt.y)
		if o.X() != tt.x || o.Y() != tt.y {
			t.Errorf("NewOffsets(%d,%d) round-trip = (%d,%d)", tt.x, tt.y, o.X(), o.Y())
		}
	}
}

func TestOffsetByTranslatesBothAxes(t *testing.T) {
	o := NewOffsets(10, 10).OffsetBy(-3, 5)
	if o.X() != 7 || o.Y() != 15 {
		t.Fatalf("OffsetBy = (%d,%d), want (7,15)", o.X(), o.Y())
	}
}

func TestHigherTieBreak(t *testing.T) {
	tests := []struct {
		name            string
		e1              float64
		id1             int
		e2              float64
		id2             int
		wantFirstHigher bool
	}{
		{"strictly higher elevation wins", 100, 5, 90, 1, true},
		{"strictly lower elevation loses", 90, 1, 100, 5, false},
		{"tie broken by higher id", 50, 7, 50, 2, true},
		{"tie broken against lower id", 50, 2, 50, 7, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Higher(tt.e1, tt.id1, tt.e2, tt.id2); got != tt.wantFirstHigher {
				t.Errorf("Higher(%v,%d,%v,%d) = %v, want %v", tt.e1, tt.id1, tt.e2, tt.id2, got, tt.wantFirstHigher)
			}
		})
	}
}

func TestElevationIsNoData(t *testing.T) {
	if !NoData.IsNoData() {
		t.Fatal("NoData.IsNoData() = false")
	}
	if Elevation(-40000).IsNoData() != true {
		t.Fatal("values below NoData must also report NoData")
	}
	if Elevation(0).IsNoData() {
		t.Fatal("sea level elevation reported as NoData")
	}
}

func TestDegreeCoordinateSystemRoundTrip(t *testing.T) {
	cs := NewDegreeCoordinateSystem(10, 20, 11, 21, 3600, 3600)
	parsed, err := ParseCoordinateSystem(cs.String())
	if err != nil {
		t.Fatalf("ParseCoordinateSystem: %v", err)
	}
	got := parsed.(DegreeCoordinateSystem)
	if got.MinLat != cs.MinLat || got.MinLng != cs.MinLng || got.MaxLat != cs.MaxLat || got.MaxLng != cs.MaxLng {
		t.Fatalf("round-trip mismatch: got %+v, want %+v", got, cs)
	}
}

func TestDegreeCoordinateSystemLegacyFiveField(t *testing.T) {
	cs, err := ParseCoordinateSystem("G,10.000000,20.000000,3600,3600")
	if err != nil {
		t.Fatalf("ParseCoordinateSystem: %v", err)
	}
	d := cs.(DegreeCoordinateSystem)
	if d.MaxLat != 11 || d.MaxLng != 21 {
		t.Fatalf("legacy form should synthesize a 1x1 tile, got maxLat=%v maxLng=%v", d.MaxLat, d.MaxLng)
	}
}

func TestDegreeCoordinateSystemLatLng(t *testing.T) {
	cs := NewDegreeCoordinateSystem(10, 20, 11, 21, 3600, 3600)
	ll := cs.LatLng(NewOffsets(0, 0))
	if math.Abs(ll.Lat-11) > 1e-6 || math.Abs(ll.Lng-20) > 1e-6 {
		t.Fatalf("LatLng at origin = %+v, want (11,20)", ll)
	}
}

func TestDegreeCoordinateSystemMergeWith(t *testing.T) {
	a := NewDegreeCoordinateSystem(10, 20, 11, 21, 3600, 3600)
	b := NewDegreeCoordinateSystem(9, 19, 10, 20, 3600, 3600)
	merged := a.MergeWith(b).(DegreeCoordinateSystem)
	if merged.MinLat != 9 || merged.MinLng != 19 || merged.MaxLat != 11 || merged.MaxLng != 21 {
		t.Fatalf("MergeWith = %+v, want bounding box (9,19)-(11,21)", merged)
	}
}

func TestDegreeCoordinateSystemIncompatibleWithUTM(t *testing.T) {
	d := NewDegreeCoordinateSystem(10, 20, 11, 21, 3600, 3600)
	u, _ := NewUTMCoordinateSystem(33, 0, 0, 1000, 1000, 10)
	if d.CompatibleWith(u) {
		t.Fatal("degree and UTM systems must never be compatible")
	}
}

func TestUTMCoordinateSystemRoundTrip(t *testing.T) {
	u, err := NewUTMCoordinateSystem(33, 100000, 200000, 200000, 300000, 10)
	if err != nil {
		t.Fatalf("NewUTMCoordinateSystem: %v", err)
	}
	parsed, err := ParseCoordinateSystem(u.String())
	if err != nil {
		t.Fatalf("ParseCoordinateSystem: %v", err)
	}
	got := parsed.(UTMCoordinateSystem)
	if got != u {
		t.Fatalf("round-trip mismatch: got %+v, want %+v", got, u)
	}
}

func TestUTMCoordinateSystemInvalidZone(t *testing.T) {
	if _, err := NewUTMCoordinateSystem(0, 0, 0, 100, 100, 10); err == nil {
		t.Fatal("zone 0 must be rejected")
	}
	if _, err := NewUTMCoordinateSystem(61, 0, 0, 100, 100, 10); err == nil {
		t.Fatal("zone 61 must be rejected")
	}
}

func TestUTMCoordinateSystemOffsetsTo(t *testing.T) {
	a, _ := NewUTMCoordinateSystem(33, 100000, 0, 200000, 100000, 10)
	b, _ := NewUTMCoordinateSystem(33, 90000, 0, 190000, 100000, 10)
	off := a.OffsetsTo(b)
	if off.X() != 1000 {
		t.Fatalf("OffsetsTo X = %d, want 1000", off.X())
	}
}
