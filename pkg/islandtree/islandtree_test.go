package islandtree

import (
	"testing"

	"github.com/kirmse-prom/prominence/pkg/geo"
	"github.com/kirmse-prom/prominence/pkg/prom"
)

// fakeDivideTree lets tests build a divide tree shape directly, without
// going through dividetree.Tree's cycle-breaking machinery.
type fakeDivideTree struct {
	nodes   []prom.Node
	peaks   []prom.Peak
	saddles []prom.Saddle
}

func (f *fakeDivideTree) Nodes() []prom.Node     { return f.nodes }
func (f *fakeDivideTree) Peaks() []prom.Peak     { return f.peaks }
func (f *fakeDivideTree) Saddles() []prom.Saddle { return f.saddles }

// A three-peak chain: peak 3 (600) -> peak 2 (800) -> peak 1 (1000), each
// hop through a saddle. Already ordered parent-higher, so uninversion is a
// no-op and this exercises computeProminences directly.
func chainDivideTree() *fakeDivideTree {
	return &fakeDivideTree{
		nodes: []prom.Node{
			{},
			{ParentID: prom.Null, SaddleID: prom.Null},
			{ParentID: 1, SaddleID: 1},
			{ParentID: 2, SaddleID: 2},
		},
		peaks: []prom.Peak{
			{Elevation: 1000},
			{Elevation: 800},
			{Elevation: 600},
		},
		saddles: []prom.Saddle{
			{Elevation: 500, Type: prom.PromSaddle},
			{Elevation: 400, Type: prom.PromSaddle},
		},
	}
}

func TestBuildProminenceAlreadyOrdered(t *testing.T) {
	tree := Build(chainDivideTree(), false)

	rootProminence, known := tree.Prominence(1)
	if !known || rootProminence != 1000 {
		t.Errorf("root prominence = %v (known=%v), want 1000", rootProminence, known)
	}
	p2, _ := tree.Prominence(2)
	if p2 != 800-500 {
		t.Errorf("peak 2 prominence = %v, want %v", p2, 800-500)
	}
	p3, _ := tree.Prominence(3)
	if p3 != 600-400 {
		t.Errorf("peak 3 prominence = %v, want %v", p3, 600-400)
	}
}

// An inverted chain: the divide tree links the lowest peak as the parent
// of the highest, as maybeAddEdge might produce depending on build order.
// uninvertPeaks must push the higher peaks toward the root regardless.
func invertedChainDivideTree() *fakeDivideTree {
	return &fakeDivideTree{
		nodes: []prom.Node{
			{},
			{ParentID: 2, SaddleID: 1}, // peak 1 (1000) points at peak 2 (600)
			{ParentID: prom.Null, SaddleID: prom.Null},
		},
		peaks: []prom.Peak{
			{Elevation: 1000},
			{Elevation: 600},
		},
		saddles: []prom.Saddle{
			{Elevation: 500, Type: prom.PromSaddle},
		},
	}
}

func TestBuildUninvertsUpwardPointingEdge(t *testing.T) {
	tree := Build(invertedChainDivideTree(), false)

	if tree.Nodes()[1].ParentID != prom.Null {
		t.Errorf("higher peak 1 parent = %d, want Null (it should become the root)", tree.Nodes()[1].ParentID)
	}
	if tree.Nodes()[2].ParentID != 1 {
		t.Errorf("lower peak 2 parent = %d, want 1", tree.Nodes()[2].ParentID)
	}

	rootProminence, _ := tree.Prominence(1)
	if rootProminence != 1000 {
		t.Errorf("root prominence = %v, want 1000", rootProminence)
	}
	p2, _ := tree.Prominence(2)
	if p2 != 600-500 {
		t.Errorf("peak 2 prominence = %v, want %v", p2, 600-500)
	}
}

func TestBuildBathymetryUsesLowestSaddleAsSeaLevel(t *testing.T) {
	tree := Build(chainDivideTree(), true)

	// The root's prominence is measured down to the lowest saddle in the
	// tree (400) instead of to 0, since there is no true sea level once
	// elevations have been flipped for a depth pass.
	rootProminence, _ := tree.Prominence(1)
	if rootProminence != 1000-400 {
		t.Errorf("bathymetry root prominence = %v, want %v", rootProminence, 1000-400)
	}
}

// deepInvertedChainDivideTree builds a fully inverted chain of n peaks:
// peak 1 has the highest elevation and points at peak 2, peak 2 points
// at peak 3, and so on down to peak n, the lowest peak, which is the
// divide tree's root. Uninverting this chain must promote every node
// one hop at a time all the way to the top, driving uninvertPeak's and
// uninvertSaddle's parent-chain walk to depth n-1 — the scenario the
// explicit stack in both functions exists to survive without recursing
// n levels deep.
func deepInvertedChainDivideTree(n int) *fakeDivideTree {
	dt := &fakeDivideTree{
		nodes:   make([]prom.Node, n+1),
		peaks:   make([]prom.Peak, n),
		saddles: make([]prom.Saddle, n-1),
	}
	for i := 1; i <= n; i++ {
		dt.peaks[i-1] = prom.Peak{Elevation: geo.Elevation((n - i + 1) * 10)}
		if i < n {
			dt.nodes[i] = prom.Node{ParentID: i + 1, SaddleID: i}
			dt.saddles[i-1] = prom.Saddle{Elevation: geo.Elevation(i), Type: prom.PromSaddle}
		} else {
			dt.nodes[i] = prom.Node{ParentID: prom.Null, SaddleID: prom.Null}
		}
	}
	return dt
}

func TestBuildUninvertsDeepChainWithoutRecursing(t *testing.T) {
	const n = 5000
	tree := Build(deepInvertedChainDivideTree(n), false)

	if tree.Nodes()[1].ParentID != prom.Null {
		t.Fatalf("highest peak's parent = %d, want Null (it should become the root)", tree.Nodes()[1].ParentID)
	}
	for i := 2; i <= n; i++ {
		if got := tree.Nodes()[i].ParentID; got != i-1 {
			t.Fatalf("peak %d parent = %d, want %d (chained to the next-higher peak)", i, got, i-1)
		}
	}

	rootProminence, known := tree.Prominence(1)
	if !known || rootProminence != geo.Elevation(n*10) {
		t.Errorf("root prominence = %v (known=%v), want %v", rootProminence, known, n*10)
	}
}

func TestHigherTieBreakFavorsLargerID(t *testing.T) {
	if !higher(100, 5, 100, 1) {
		t.Error("higher(100,5, 100,1) = false, want true: equal elevation breaks toward the larger id")
	}
	if higher(100, 1, 100, 5) {
		t.Error("higher(100,1, 100,5) = true, want false")
	}
	if !higher(100, 1, 90, 5) {
		t.Error("higher(100,1, 90,5) = false, want true: strictly higher elevation wins regardless of id")
	}
}
