package treebuilder

import (
	"testing"

	"github.com/kirmse-prom/prominence/pkg/geo"
	"github.com/kirmse-prom/prominence/pkg/prom"
	"github.com/kirmse-prom/prominence/pkg/tilesource"
)

func testCS() geo.CoordinateSystem {
	return geo.NewDegreeCoordinateSystem(0, 0, 1, 1, 3600, 3600)
}

// A single peak surrounded entirely by NODATA has no border to walk and no
// saddle to classify: BuildDivideTree should still produce exactly one
// rooted peak and nothing else.
func TestBuildDivideTreeIsolatedPeak(t *testing.T) {
	nd := geo.NoData
	samples := []geo.Elevation{
		nd, nd, nd,
		nd, 100, nd,
		nd, nd, nd,
	}
	tile := tilesource.NewRasterTile(3, 3, samples, testCS())

	tree := New(tile).BuildDivideTree()

	if len(tree.Peaks()) != 1 {
		t.Fatalf("peaks = %d, want 1", len(tree.Peaks()))
	}
	if len(tree.Saddles()) != 0 {
		t.Fatalf("saddles = %d, want 0", len(tree.Saddles()))
	}
	if len(tree.Runoffs()) != 0 {
		t.Fatalf("runoffs = %d, want 0 (every border sample is NODATA)", len(tree.Runoffs()))
	}
	if !tree.Nodes()[1].IsRoot() {
		t.Errorf("the only peak should be its own root, got %+v", tree.Nodes()[1])
	}
	if tree.Peaks()[0].Elevation != 100 {
		t.Errorf("peak elevation = %v, want 100", tree.Peaks()[0].Elevation)
	}
}

func TestFindSteepestNeighborPicksHighestAdjacent(t *testing.T) {
	samples := []geo.Elevation{
		10, 20, 10,
		20, 30, 50,
		10, 20, 10,
	}
	tile := tilesource.NewRasterTile(3, 3, samples, testCS())
	b := New(tile)

	got := b.findSteepestNeighbor(geo.NewOffsets(1, 1))
	want := geo.NewOffsets(2, 1)
	if got != want {
		t.Errorf("findSteepestNeighbor = %v, want %v (the 50-elevation neighbor)", got, want)
	}
}

func TestWalkUpToPeakFollowsSteepestAscentToLabeledPeak(t *testing.T) {
	samples := []geo.Elevation{
		100, 200, 300,
	}
	tile := tilesource.NewRasterTile(3, 1, samples, testCS())
	b := New(tile)

	// Label the high end as a peak by hand, bypassing findExtrema, to test
	// walkUpToPeak's ascent logic in isolation.
	b.dm.FillFlatArea(2, 0, 1)
	b.peaks = []prom.Peak{{Location: geo.NewOffsets(2, 0), Elevation: 300}}

	path := b.walkUpToPeak(geo.NewOffsets(0, 0))
	if len(path) == 0 {
		t.Fatal("expected a non-empty ascent path")
	}
	last := path[len(path)-1]
	if last != geo.NewOffsets(2, 0) {
		t.Errorf("ascent ended at %v, want the peak at (2,0)", last)
	}
}
