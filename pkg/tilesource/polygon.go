package tilesource

import "github.com/kirmse-prom/prominence/pkg/geo"

// Polygon is a simple closed lat/lng polygon used to restrict a region
// driver run to tiles of interest. KML parsing itself is out of scope
// for this module; this is the narrow interface seam a KML-reading
// caller plugs into — a polygon is just a point list once parsed.
type Polygon struct {
	Points []geo.LatLng
}

// Contains reports whether p lies inside the polygon, using the standard
// ray-casting test. An empty polygon contains everything, so that a
// region driver run without a filter processes every tile.
func (poly Polygon) Contains(p geo.LatLng) bool {
	if len(poly.Points) == 0 {
		return true
	}
	inside := false
	n := len(poly.Points)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := poly.Points[i], poly.Points[j]
		if (a.Lat > p.Lat) != (b.Lat > p.Lat) {
			x := a.Lng + (p.Lat-a.Lat)/(b.Lat-a.Lat)*(b.Lng-a.Lng)
			if p.Lng < x {
				inside = !inside
			}
		}
	}
	return inside
}

// SkipTile reports whether a tile centered at center should be skipped
// because it falls entirely outside the filter polygon.
func (poly Polygon) SkipTile(center geo.LatLng) bool {
	return !poly.Contains(center)
}
