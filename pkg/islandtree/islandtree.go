// Package islandtree re-roots a divide tree so that every peak's parent
// is a higher peak, turning the divide tree's saddle-routed forest into
// a structure that reads prominence directly off the parent chain.
//
// Grounded on original_source/code/island_tree.h and island_tree.cpp.
package islandtree

import (
	"github.com/kirmse-prom/prominence/pkg/geo"
	"github.com/kirmse-prom/prominence/pkg/prom"
)

// divideTree is the minimal surface Tree needs from a *dividetree.Tree.
// Declared as an interface, not a direct import, to keep dividetree free
// of a dependency on islandtree (dividetree.Prune takes an islandtree.Tree
// back through its own narrow interface).
type divideTree interface {
	Nodes() []prom.Node
	Peaks() []prom.Peak
	Saddles() []prom.Saddle
}

// UnknownProminence marks a node whose prominence has not yet been
// computed.
const UnknownProminence = geo.Elevation(-32767)

// Node is one entry of the island tree: it points at a strictly higher
// peak, unlike a divide tree node which points at a saddle-adjacent
// neighbor of either elevation.
type Node struct {
	ParentID     int
	SaddlePeakID int // peak whose divide-tree saddle is this island's highest border saddle
	Prominence   geo.Elevation
	KeySaddleID  int
}

// Tree re-roots a divide tree by elevation and computes every peak's
// prominence and key saddle.
type Tree struct {
	divideTree divideTree
	nodes      []Node
}

// Build constructs and fully computes an island tree over dt. isBathymetry
// changes what "sea level" means for a root peak's prominence: 0 for
// normal terrain, or the lowest saddle elevation in the tree when set,
// matching a depth pass over elevations that flipElevations has already
// negated.
func Build(dt divideTree, isBathymetry bool) *Tree {
	t := &Tree{divideTree: dt}

	dtNodes := dt.Nodes()
	t.nodes = make([]Node, len(dtNodes))
	for i := 1; i < len(dtNodes); i++ {
		t.nodes[i] = Node{
			ParentID:     dtNodes[i].ParentID,
			SaddlePeakID: i,
			KeySaddleID:  prom.Null,
			Prominence:   UnknownProminence,
		}
	}

	t.uninvertPeaks()
	t.uninvertSaddles()
	t.computeProminences(isBathymetry)

	return t
}

// Nodes returns the island tree's nodes, 1-indexed by peak id.
func (t *Tree) Nodes() []Node { return t.nodes }

// Prominence implements dividetree.ProminenceSource.
func (t *Tree) Prominence(peakID int) (geo.Elevation, bool) {
	if peakID <= 0 || peakID >= len(t.nodes) {
		return 0, false
	}
	p := t.nodes[peakID].Prominence
	return p, p != UnknownProminence
}

func (t *Tree) peak(peakID int) prom.Peak      { return t.divideTree.Peaks()[peakID-1] }
func (t *Tree) saddle(saddleID int) prom.Saddle { return t.divideTree.Saddles()[saddleID-1] }

func higher(e1 geo.Elevation, id1 int, e2 geo.Elevation, id2 int) bool {
	return geo.HigherElevation(e1, id1, e2, id2)
}

// uninvertPeaks walks every node up to the root, swapping a node with
// its parent whenever the parent is not higher, so that every parent
// link ends up pointing to a strictly higher peak.
func (t *Tree) uninvertPeaks() {
	for i := 1; i < len(t.nodes); i++ {
		t.uninvertPeak(i)
	}
}

// peakFrame is one stack frame of uninvertPeak, run iteratively because
// the parent chain can be thousands of nodes deep in real merged data.
// nodeID/elev are the fixed arguments of one (recursive, here simulated)
// call; parentID is that call's loop variable, advancing to the
// grandparent after each rotation; pendingRotate marks a frame that has
// dispatched a nested call for parentID and is waiting to resume it.
type peakFrame struct {
	nodeID        int
	elev          geo.Elevation
	parentID      int
	pendingRotate bool
}

func (t *Tree) uninvertPeak(nodeID int) {
	stack := []peakFrame{{
		nodeID:   nodeID,
		elev:     t.peak(nodeID).Elevation,
		parentID: t.nodes[nodeID].ParentID,
	}}

	for len(stack) > 0 {
		f := &stack[len(stack)-1]

		if f.pendingRotate {
			parentID := f.parentID
			grandparentID := t.nodes[parentID].ParentID
			childSaddlePeakID := t.nodes[f.nodeID].SaddlePeakID
			parentSaddlePeakID := t.nodes[parentID].SaddlePeakID

			childSaddleID := t.divideTree.Nodes()[childSaddlePeakID].SaddleID
			parentSaddleID := t.divideTree.Nodes()[parentSaddlePeakID].SaddleID

			if grandparentID == prom.Null ||
				higher(t.saddle(childSaddleID).Elevation, childSaddleID, t.saddle(parentSaddleID).Elevation, parentSaddleID) {
				t.nodes[parentID].ParentID = f.nodeID
				t.nodes[parentID].SaddlePeakID = childSaddlePeakID
				t.nodes[f.nodeID].SaddlePeakID = parentSaddlePeakID
			}

			t.nodes[f.nodeID].ParentID = grandparentID
			f.parentID = grandparentID
			f.pendingRotate = false
			continue
		}

		if f.parentID == prom.Null || higher(t.peak(f.parentID).Elevation, f.parentID, f.elev, f.nodeID) {
			stack = stack[:len(stack)-1]
			continue
		}

		childID := f.parentID
		f.pendingRotate = true
		stack = append(stack, peakFrame{
			nodeID:   childID,
			elev:     t.peak(childID).Elevation,
			parentID: t.nodes[childID].ParentID,
		})
	}
}

// uninvertSaddles sorts peaks by increasing saddle elevation along each
// parent chain, so SaddlePeakID always names the highest bordering
// saddle of the whole subtree rooted below it.
func (t *Tree) uninvertSaddles() {
	for i := 1; i < len(t.nodes); i++ {
		t.uninvertSaddle(i)
	}
}

// saddleFrame is one stack frame of uninvertSaddle, run iteratively for
// the same reason as peakFrame: the parent chain it climbs can be
// thousands of nodes deep. nodeID is fixed for the frame; parentID and
// grandparentID are cached from the moment the frame recursed into
// parentID, so the resume step can splice nodeID straight to
// grandparentID without recomputing them.
type saddleFrame struct {
	nodeID        int
	parentID      int
	grandparentID int
	pendingSplice bool
}

func (t *Tree) uninvertSaddle(nodeID int) {
	stack := []saddleFrame{{nodeID: nodeID}}

	for len(stack) > 0 {
		f := &stack[len(stack)-1]

		if f.pendingSplice {
			t.nodes[f.nodeID].ParentID = f.grandparentID
			f.pendingSplice = false
			continue
		}

		parentID := t.nodes[f.nodeID].ParentID
		if parentID == prom.Null {
			stack = stack[:len(stack)-1]
			continue
		}
		grandparentID := t.nodes[parentID].ParentID
		if grandparentID == prom.Null {
			stack = stack[:len(stack)-1]
			continue
		}

		childSaddlePeakID := t.nodes[f.nodeID].SaddlePeakID
		parentSaddlePeakID := t.nodes[parentID].SaddlePeakID
		childSaddleID := t.divideTree.Nodes()[childSaddlePeakID].SaddleID
		parentSaddleID := t.divideTree.Nodes()[parentSaddlePeakID].SaddleID

		if higher(t.saddle(childSaddleID).Elevation, childSaddleID, t.saddle(parentSaddleID).Elevation, parentSaddleID) {
			stack = stack[:len(stack)-1]
			continue
		}

		f.parentID = parentID
		f.grandparentID = grandparentID
		f.pendingSplice = true
		stack = append(stack, saddleFrame{nodeID: parentID})
	}
}

func (t *Tree) computeProminences(isBathymetry bool) {
	seaLevel := t.seaLevel(isBathymetry)

	for i := 1; i < len(t.nodes); i++ {
		elev := t.peak(i).Elevation
		childNodeID := i
		parentNodeID := t.nodes[i].ParentID

		for parentNodeID != prom.Null {
			if higher(t.peak(parentNodeID).Elevation, parentNodeID, elev, childNodeID) {
				break
			}
			childNodeID = parentNodeID
			parentNodeID = t.nodes[childNodeID].ParentID
		}

		if parentNodeID == prom.Null {
			t.nodes[i].Prominence = elev - seaLevel
			continue
		}

		saddlePeakID := t.nodes[childNodeID].SaddlePeakID
		saddleID := t.divideTree.Nodes()[saddlePeakID].SaddleID
		t.nodes[i].Prominence = elev - t.saddle(saddleID).Elevation
		t.nodes[i].KeySaddleID = saddleID
	}
}

// seaLevel is 0 for normal terrain, or the lowest saddle elevation in the
// tree for a bathymetry pass, where a landmass high point's prominence is
// measured down to the deepest connecting col rather than to true sea
// level (which flipElevations has already displaced).
func (t *Tree) seaLevel(isBathymetry bool) geo.Elevation {
	if !isBathymetry {
		return 0
	}
	saddles := t.divideTree.Saddles()
	if len(saddles) == 0 {
		return 0
	}
	lowest := saddles[0].Elevation
	for _, s := range saddles[1:] {
		if s.Elevation < lowest {
			lowest = s.Elevation
		}
	}
	return lowest
}
