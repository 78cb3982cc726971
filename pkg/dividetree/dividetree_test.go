package dividetree

import (
	"testing"

	"github.com/kirmse-prom/prominence/pkg/geo"
	"github.com/kirmse-prom/prominence/pkg/prom"
)

func testCS() geo.CoordinateSystem {
	return geo.NewDegreeCoordinateSystem(0, 0, 1, 1, 3600, 3600)
}

func simplePeaks(elevations ...geo.Elevation) []prom.Peak {
	peaks := make([]prom.Peak, len(elevations))
	for i, e := range elevations {
		peaks[i] = prom.Peak{Location: geo.NewOffsets(geo.Coord(i), 0), Elevation: e}
	}
	return peaks
}

func simpleSaddles(elevations ...geo.Elevation) []prom.Saddle {
	saddles := make([]prom.Saddle, len(elevations))
	for i, e := range elevations {
		saddles[i] = prom.Saddle{Location: geo.NewOffsets(geo.Coord(i), 1), Elevation: e, Type: prom.PromSaddle}
	}
	return saddles
}

// TestMergeReturnsBasinSaddleElevations covers two single-peak trees
// whose two runoffs each meet at the same locations: the first splice
// joins the two peaks through a saddle at 40, the second closes a cycle
// through a saddle at 50, and cycle breaking discards the lower one (40)
// as a basin saddle, whose elevation Merge reports to the caller.
func TestMergeReturnsBasinSaddleElevations(t *testing.T) {
	cs := testCS()
	a := New(cs, simplePeaks(100), nil, []prom.Runoff{
		{Location: geo.NewOffsets(5, 5), Elevation: 40},
		{Location: geo.NewOffsets(5, 6), Elevation: 50},
	})
	a.AddRunoffEdge(1, 0)
	a.AddRunoffEdge(1, 1)

	b := New(cs, simplePeaks(90), nil, []prom.Runoff{
		{Location: geo.NewOffsets(5, 5), Elevation: 40},
		{Location: geo.NewOffsets(5, 6), Elevation: 50},
	})
	b.AddRunoffEdge(1, 0)
	b.AddRunoffEdge(1, 1)

	elevations := a.Merge(b)
	if len(elevations) != 1 || elevations[0] != 40 {
		t.Fatalf("Merge() basin saddle elevations = %v, want [40]", elevations)
	}
	if got := len(a.Saddles()); got != 2 {
		t.Fatalf("saddles after merge = %d, want 2", got)
	}
	if a.Saddles()[0].Type != prom.BasinSaddle {
		t.Errorf("saddle type = %v, want BasinSaddle", a.Saddles()[0].Type)
	}
}

type fakeProminenceSource struct {
	prominence map[int]geo.Elevation
}

func (f fakeProminenceSource) Prominence(peakID int) (geo.Elevation, bool) {
	v, ok := f.prominence[peakID]
	return v, ok
}

type fakeSaddleProminenceChecker struct{ minOK bool }

func (f fakeSaddleProminenceChecker) SaddleHasMinProminence(int, geo.Elevation) bool {
	return f.minOK
}

// TestPruneReturnsDeletedPeaks covers the isolated-peak deletion path (a
// peak with no divide-tree neighbors and no runoffs): Prune should report
// it as a DeletedPeak carrying the prominence it had at removal, not just
// silently drop it from the tree.
func TestPruneReturnsDeletedPeaks(t *testing.T) {
	peaks := simplePeaks(1000, 10)
	tree := New(testCS(), peaks, nil, nil)

	source := fakeProminenceSource{prominence: map[int]geo.Elevation{1: 1000, 2: 10}}
	deleted := tree.Prune(500, source, fakeSaddleProminenceChecker{})

	if len(deleted) != 1 || deleted[0].PeakID != 2 || deleted[0].Prominence != 10 {
		t.Fatalf("Prune() deleted = %+v, want one entry for peak 2 with prominence 10", deleted)
	}
	if len(tree.Peaks()) != 1 {
		t.Fatalf("peaks remaining = %d, want 1", len(tree.Peaks()))
	}
}

func TestMaybeAddEdgeNoCycle(t *testing.T) {
	peaks := simplePeaks(1000, 800, 600)
	saddles := simpleSaddles(500, 400)
	tree := New(testCS(), peaks, saddles, nil)

	if discarded := tree.MaybeAddEdge(2, 1, 1); discarded != prom.Null {
		t.Fatalf("unexpected discarded saddle %d connecting a fresh edge", discarded)
	}
	if discarded := tree.MaybeAddEdge(3, 2, 2); discarded != prom.Null {
		t.Fatalf("unexpected discarded saddle %d connecting a fresh edge", discarded)
	}

	if tree.Nodes()[2].ParentID != 1 || tree.Nodes()[2].SaddleID != 1 {
		t.Errorf("peak 2 node = %+v, want parent 1 saddle 1", tree.Nodes()[2])
	}
	if tree.Nodes()[3].ParentID != 2 || tree.Nodes()[3].SaddleID != 2 {
		t.Errorf("peak 3 node = %+v, want parent 2 saddle 2", tree.Nodes()[3])
	}
}

func TestMaybeAddEdgeClosesCycleDiscardsLowestSaddle(t *testing.T) {
	peaks := simplePeaks(1000, 800, 600)
	saddles := simpleSaddles(500, 400, 300)
	tree := New(testCS(), peaks, saddles, nil)

	tree.MaybeAddEdge(2, 1, 1)
	tree.MaybeAddEdge(3, 1, 2)

	discarded := tree.MaybeAddEdge(2, 3, 3)
	if discarded == prom.Null {
		t.Fatal("expected a discarded saddle when closing a cycle")
	}

	lowest := saddles[0].Elevation
	for _, idx := range []int{0, 1, 2} {
		if saddles[idx].Elevation < lowest {
			lowest = saddles[idx].Elevation
		}
	}
	if tree.Saddles()[discarded-1].Elevation != lowest {
		t.Errorf("discarded saddle elevation = %v, want the lowest on the cycle (%v)", tree.Saddles()[discarded-1].Elevation, lowest)
	}
}

func TestCompactRemovesNonPromSaddles(t *testing.T) {
	peaks := simplePeaks(1000, 800)
	saddles := []prom.Saddle{
		{Location: geo.NewOffsets(0, 1), Elevation: 500, Type: prom.PromSaddle},
	}
	tree := New(testCS(), peaks, saddles, nil)
	tree.MaybeAddEdge(2, 1, 1)

	tree.saddles = append(tree.saddles, prom.Saddle{Elevation: 100, Type: prom.FalseSaddle})
	tree.Compact()

	for _, s := range tree.Saddles() {
		if s.Type == prom.FalseSaddle {
			t.Errorf("compact left a false saddle in the tree")
		}
	}
}

func TestSetOriginTranslatesLocations(t *testing.T) {
	cs1 := geo.NewDegreeCoordinateSystem(0, 0, 1, 1, 3600, 3600)
	cs2 := geo.NewDegreeCoordinateSystem(0, 1, 1, 2, 3600, 3600)

	peaks := []prom.Peak{{Location: geo.NewOffsets(10, 10), Elevation: 1000}}
	tree := New(cs1, peaks, nil, nil)

	if !tree.SetOrigin(cs2) {
		t.Fatal("expected compatible coordinate systems to merge")
	}
	if tree.CoordinateSystem() != cs2 {
		t.Errorf("coordinate system not updated after SetOrigin")
	}
}

func TestFlipElevationsNegatesAll(t *testing.T) {
	peaks := simplePeaks(1000)
	saddles := simpleSaddles(500)
	runoffs := []prom.Runoff{{Elevation: 50}}
	tree := New(testCS(), peaks, saddles, runoffs)

	tree.FlipElevations()

	if tree.Peaks()[0].Elevation != -1000 {
		t.Errorf("peak elevation = %v, want -1000", tree.Peaks()[0].Elevation)
	}
	if tree.Saddles()[0].Elevation != -500 {
		t.Errorf("saddle elevation = %v, want -500", tree.Saddles()[0].Elevation)
	}
	if tree.Runoffs()[0].Elevation != -50 {
		t.Errorf("runoff elevation = %v, want -50", tree.Runoffs()[0].Elevation)
	}
}
