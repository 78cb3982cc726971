// Package dividetree implements the core peak/saddle graph: a directed
// forest where every peak's "parent" is the neighboring peak reached by
// descending its lowest connecting saddle, re-rooted as needed while the
// tree is built and merged.
//
// Grounded on original_source/code/divide_tree.h and divide_tree.cpp.
package dividetree

import (
	"fmt"
	"sort"

	"github.com/kirmse-prom/prominence/pkg/geo"
	"github.com/kirmse-prom/prominence/pkg/prom"
)

// Node is one entry of the parent-link array, indexed by peak id.
type Node = prom.Node

// Tree is a divide tree: peaks as vertices, saddles as edge labels,
// runoffs as half-edges to be spliced against a neighboring tile.
type Tree struct {
	coordinateSystem geo.CoordinateSystem
	peaks            []prom.Peak
	saddles          []prom.Saddle
	runoffs          []prom.Runoff

	nodes       []Node // 1-indexed; nodes[0] is an unused sentinel
	runoffEdges []int  // 0-indexed, parallel to runoffs

	removedPeakIndices   map[int]bool // 0-based, pending a compaction pass
	removedSaddleIndices map[int]bool
}

// New builds a divide tree over the given peaks, saddles, and runoffs.
// All edges start absent; callers add them with MaybeAddEdge and
// AddRunoffEdge.
func New(cs geo.CoordinateSystem, peaks []prom.Peak, saddles []prom.Saddle, runoffs []prom.Runoff) *Tree {
	nodes := make([]Node, len(peaks)+1)
	for i := range nodes {
		nodes[i] = Node{ParentID: prom.Null, SaddleID: prom.Null}
	}
	return &Tree{
		coordinateSystem:     cs,
		peaks:                append([]prom.Peak(nil), peaks...),
		saddles:              append([]prom.Saddle(nil), saddles...),
		runoffs:              append([]prom.Runoff(nil), runoffs...),
		nodes:                nodes,
		runoffEdges:          make([]int, len(runoffs)),
		removedPeakIndices:   map[int]bool{},
		removedSaddleIndices: map[int]bool{},
	}
}

// CoordinateSystem returns the tree's geographic placement.
func (t *Tree) CoordinateSystem() geo.CoordinateSystem { return t.coordinateSystem }

// Peaks returns the tree's peaks, 1-indexed by id (Peaks()[id-1]).
func (t *Tree) Peaks() []prom.Peak { return t.peaks }

// Saddles returns the tree's saddles, 1-indexed by id (Saddles()[id-1]).
func (t *Tree) Saddles() []prom.Saddle { return t.saddles }

// Runoffs returns the tree's runoffs, 0-indexed.
func (t *Tree) Runoffs() []prom.Runoff { return t.runoffs }

// RunoffEdges returns, parallel to Runoffs, the peak id each runoff
// currently points to.
func (t *Tree) RunoffEdges() []int { return t.runoffEdges }

// Nodes returns the parent-link array, 1-indexed by peak id (index 0 is
// an unused sentinel).
func (t *Tree) Nodes() []Node { return t.nodes }

// SetSaddles replaces the saddle array wholesale, used by the tree
// builder once saddle types have been classified after construction.
func (t *Tree) SetSaddles(saddles []prom.Saddle) { t.saddles = saddles }

// FromParts reconstructs a tree from already-computed arrays, used by
// the .dvt decoder to avoid replaying MaybeAddEdge for a tree whose
// edges were already resolved when it was written.
func FromParts(cs geo.CoordinateSystem, peaks []prom.Peak, saddles []prom.Saddle, runoffs []prom.Runoff, nodes []Node, runoffEdges []int) *Tree {
	return &Tree{
		coordinateSystem:     cs,
		peaks:                peaks,
		saddles:              saddles,
		runoffs:              runoffs,
		nodes:                nodes,
		runoffEdges:          runoffEdges,
		removedPeakIndices:   map[int]bool{},
		removedSaddleIndices: map[int]bool{},
	}
}

func (t *Tree) peak(peakID int) prom.Peak { return t.peaks[peakID-1] }

func (t *Tree) saddle(saddleID int) prom.Saddle { return t.saddles[saddleID-1] }

// MaybeAddEdge attempts to connect peak1 and peak2 through the given
// saddle. If the edge would close a cycle, the lowest saddle on that
// cycle is discarded instead (possibly the new one), and its id is
// returned; otherwise it returns prom.Null.
func (t *Tree) MaybeAddEdge(peakID1, peakID2, saddleID int) int {
	commonAncestor := t.findCommonAncestor(peakID1, peakID2)
	if commonAncestor == prom.Null {
		t.makeNodeIntoRoot(peakID1)
		t.nodes[peakID1].ParentID = peakID2
		t.nodes[peakID1].SaddleID = saddleID
		return prom.Null
	}

	lowestNode1 := t.findLowestSaddleOnPath(peakID1, commonAncestor)
	lowestNode2 := t.findLowestSaddleOnPath(peakID2, commonAncestor)

	if lowestNode1 == prom.Null || t.nodes[lowestNode1].SaddleID == prom.Null {
		lowestNode1, lowestNode2 = lowestNode2, lowestNode1
	}

	lowestElevation := t.saddle(t.nodes[lowestNode1].SaddleID).Elevation
	lowestNodeID := lowestNode1
	if lowestNode2 != prom.Null && t.saddle(t.nodes[lowestNode2].SaddleID).Elevation < lowestElevation {
		lowestElevation = t.saddle(t.nodes[lowestNode2].SaddleID).Elevation
		lowestNodeID = lowestNode2
	}

	if t.saddle(saddleID).Elevation < lowestElevation {
		return saddleID
	}

	basinSaddleID := t.nodes[lowestNodeID].SaddleID
	t.nodes[lowestNodeID].ParentID = prom.Null
	t.nodes[lowestNodeID].SaddleID = prom.Null

	t.makeNodeIntoRoot(peakID1)
	t.nodes[peakID1].ParentID = peakID2
	t.nodes[peakID1].SaddleID = saddleID

	return basinSaddleID
}

// AddRunoffEdge records that the given runoff drains into peakID.
func (t *Tree) AddRunoffEdge(peakID, runoffID int) {
	t.runoffEdges[runoffID] = peakID
}

// ProminenceSource reports the current prominence of a peak, as
// computed by an island tree built over this divide tree.
type ProminenceSource interface {
	Prominence(peakID int) (value geo.Elevation, known bool)
}

// SaddleProminenceChecker reports whether a saddle's prominence bound, as
// computed by a line tree built over this divide tree, is at least
// minProminence.
type SaddleProminenceChecker interface {
	SaddleHasMinProminence(saddleID int, minProminence geo.Elevation) bool
}

// DeletedPeak identifies one peak Prune removed, along with the
// prominence it had at the moment of removal, for a caller that wants to
// observe individual deletions (a metrics hook, say) rather than only the
// pruned tree's final peak count.
type DeletedPeak struct {
	PeakID     int
	Prominence geo.Elevation
}

// Prune removes peaks below minProminence on a best-effort basis: a
// peak's removal can enable further removals, so this iterates to a
// fixed point. Some low-prominence peaks may remain, especially near
// tile edges where a runoff could hide higher prominence from a
// neighboring tile. Returns every peak actually removed.
func (t *Tree) Prune(minProminence geo.Elevation, islandTree ProminenceSource, lineTree SaddleProminenceChecker) []DeletedPeak {
	deletedPeaks := map[int]bool{}   // 0-based
	deletedSaddles := map[int]bool{} // 0-based
	var deleted []DeletedPeak

	neighbors := map[int][]int{}
	for peakID := 1; peakID < len(t.nodes); peakID++ {
		if parent := t.nodes[peakID].ParentID; parent != prom.Null {
			neighbors[parent] = append(neighbors[parent], peakID)
			neighbors[peakID] = append(neighbors[peakID], parent)
		}
	}

	runoffNeighbors := map[int][]int{}
	for runoffID, peakID := range t.runoffEdges {
		runoffNeighbors[peakID] = append(runoffNeighbors[peakID], runoffID)
	}

	removeNeighbor := func(peakID, remove int) {
		list := neighbors[peakID]
		for i, v := range list {
			if v == remove {
				neighbors[peakID] = append(list[:i], list[i+1:]...)
				break
			}
		}
	}

	anythingChanged := true
	for anythingChanged {
		anythingChanged = false

		for peakID := 1; peakID < len(t.nodes); peakID++ {
			if deletedPeaks[peakID-1] {
				continue
			}
			node := t.nodes[peakID]
			prominence, known := islandTree.Prominence(peakID)
			if !known || prominence >= minProminence {
				continue
			}

			peakNeighbors := neighbors[peakID]
			if len(peakNeighbors) == 0 {
				if len(runoffNeighbors[peakID]) == 0 {
					deletedPeaks[peakID-1] = true
					deleted = append(deleted, DeletedPeak{PeakID: peakID, Prominence: prominence})
					anythingChanged = true
				}
				continue
			}

			ownerOfSaddleToDelete := prom.Null
			var highestSaddleElevation geo.Elevation
			for _, neighborPeakID := range peakNeighbors {
				saddleOwner := neighborPeakID
				if neighborPeakID == node.ParentID {
					saddleOwner = peakID
				}
				saddle := t.saddle(t.nodes[saddleOwner].SaddleID)
				if ownerOfSaddleToDelete == prom.Null || saddle.Elevation > highestSaddleElevation {
					ownerOfSaddleToDelete = saddleOwner
					highestSaddleElevation = saddle.Elevation
				}
			}

			deletePeak := false
			if ownerOfSaddleToDelete != prom.Null {
				saddleID := t.nodes[ownerOfSaddleToDelete].SaddleID
				deletePeak = !lineTree.SaddleHasMinProminence(saddleID, minProminence)
			}
			if !deletePeak {
				continue
			}

			saddleIDToDelete := t.nodes[ownerOfSaddleToDelete].SaddleID
			saddleParentID := t.nodes[ownerOfSaddleToDelete].ParentID
			t.nodes[ownerOfSaddleToDelete].SaddleID = t.nodes[saddleParentID].SaddleID

			newParentID := node.ParentID
			if peakID != ownerOfSaddleToDelete {
				newParentID = ownerOfSaddleToDelete
				t.nodes[ownerOfSaddleToDelete].ParentID = node.ParentID
			}

			for _, neighborPeakID := range peakNeighbors {
				if neighborPeakID != node.ParentID && neighborPeakID != newParentID {
					t.nodes[neighborPeakID].ParentID = newParentID
				}
			}
			for _, neighborPeakID := range peakNeighbors {
				removeNeighbor(neighborPeakID, peakID)
				if neighborPeakID != newParentID {
					neighbors[newParentID] = append(neighbors[newParentID], neighborPeakID)
					neighbors[neighborPeakID] = append(neighbors[neighborPeakID], newParentID)
				}
			}

			for _, runoffID := range runoffNeighbors[peakID] {
				t.runoffEdges[runoffID] = newParentID
				runoffNeighbors[newParentID] = append(runoffNeighbors[newParentID], runoffID)
				t.runoffs[runoffID].InsidePeakArea = false
			}

			t.nodes[peakID].ParentID = prom.Null
			t.nodes[peakID].SaddleID = prom.Null
			delete(neighbors, peakID)
			delete(runoffNeighbors, peakID)
			deletedPeaks[peakID-1] = true
			deletedSaddles[saddleIDToDelete-1] = true
			deleted = append(deleted, DeletedPeak{PeakID: peakID, Prominence: prominence})
			anythingChanged = true
		}
	}

	t.removeDeletedPeaksAndSaddles(deletedPeaks, deletedSaddles)
	return deleted
}

// Merge appends otherTree's arrays onto this tree and splices matching
// runoffs into saddles, connecting the two subtrees. Both trees must
// already share a coordinate system; call SetOrigin first if not.
// Returns the elevation of every basin saddle produced while splicing,
// for a caller that wants to observe them: when a splice joins two peaks
// that are already connected, the lowest saddle on the cycle it closes
// is marked as a basin saddle.
func (t *Tree) Merge(other *Tree) []geo.Elevation {
	oldNumPeaks := len(t.peaks)
	oldNumSaddles := len(t.saddles)
	oldNumNodes := len(t.nodes)
	oldNumRunoffs := len(t.runoffs)

	t.peaks = append(t.peaks, other.peaks...)
	t.saddles = append(t.saddles, other.saddles...)
	t.runoffs = append(t.runoffs, other.runoffs...)
	t.nodes = append(t.nodes, other.nodes[1:]...)
	t.runoffEdges = append(t.runoffEdges, other.runoffEdges...)

	for i := oldNumNodes; i < len(t.nodes); i++ {
		if t.nodes[i].ParentID != prom.Null {
			t.nodes[i].ParentID += oldNumPeaks
		}
		if t.nodes[i].SaddleID != prom.Null {
			t.nodes[i].SaddleID += oldNumSaddles
		}
	}
	for i := oldNumRunoffs; i < len(t.runoffEdges); i++ {
		t.runoffEdges[i] += oldNumPeaks
	}

	return t.spliceAllRunoffs()
}

// SetOrigin re-expresses every location in a new, compatible coordinate
// system. Returns false if the coordinate systems are incompatible (e.g.
// different resolution).
func (t *Tree) SetOrigin(cs geo.CoordinateSystem) bool {
	if !t.coordinateSystem.CompatibleWith(cs) {
		return false
	}
	offsets := t.coordinateSystem.OffsetsTo(cs)
	dx, dy := int(offsets.X()), int(offsets.Y())

	for i := range t.peaks {
		t.peaks[i].Location = t.peaks[i].Location.OffsetBy(dx, dy)
	}
	for i := range t.saddles {
		t.saddles[i].Location = t.saddles[i].Location.OffsetBy(dx, dy)
	}
	for i := range t.runoffs {
		t.runoffs[i].Location = t.runoffs[i].Location.OffsetBy(dx, dy)
	}
	t.coordinateSystem = cs
	return true
}

// Compact deletes error, false, and basin saddles, which serve no
// purpose once the tree has been fully built.
func (t *Tree) Compact() {
	removed := map[int]bool{}
	for i, s := range t.saddles {
		switch s.Type {
		case prom.ErrorSaddle, prom.FalseSaddle, prom.BasinSaddle:
			removed[i] = true
		}
	}
	t.removeDeletedPeaksAndSaddles(map[int]bool{}, removed)
}

// DeleteRunoffs discards all runoffs, for a tree that will never be
// merged with another.
func (t *Tree) DeleteRunoffs() {
	t.runoffs = nil
	t.runoffEdges = nil
}

// FlipElevations negates every elevation, swapping depressions for
// mountains so the same algorithm that finds prominence can find anti-
// prominence (depth of a depression before spilling into the sea).
func (t *Tree) FlipElevations() {
	for i := range t.peaks {
		t.peaks[i].Elevation = -t.peaks[i].Elevation
	}
	for i := range t.saddles {
		t.saddles[i].Elevation = -t.saddles[i].Elevation
	}
	for i := range t.runoffs {
		t.runoffs[i].Elevation = -t.runoffs[i].Elevation
	}
}

func (t *Tree) findLowestSaddleOnPath(childPeakID, ancestorPeakID int) int {
	if childPeakID == ancestorPeakID {
		return prom.Null
	}

	lowestNodeID := childPeakID
	for childPeakID != ancestorPeakID {
		parentPeakID := t.nodes[childPeakID].ParentID
		if parentPeakID == prom.Null {
			return prom.Null
		}

		childSaddleID := t.nodes[childPeakID].SaddleID
		if t.saddle(childSaddleID).Elevation < t.saddle(t.nodes[lowestNodeID].SaddleID).Elevation {
			lowestNodeID = childPeakID
		}

		childPeakID = parentPeakID
	}

	return lowestNodeID
}

func (t *Tree) makeNodeIntoRoot(nodeID int) {
	childID := nodeID
	parentID := t.nodes[nodeID].ParentID
	saddleID := t.nodes[nodeID].SaddleID

	for parentID != prom.Null {
		grandparentID := t.nodes[parentID].ParentID
		tempSaddleID := t.nodes[parentID].SaddleID
		t.nodes[parentID].SaddleID = saddleID
		t.nodes[parentID].ParentID = childID
		saddleID = tempSaddleID

		childID = parentID
		parentID = grandparentID
	}

	t.nodes[nodeID].SaddleID = prom.Null
	t.nodes[nodeID].ParentID = prom.Null
}

func (t *Tree) findCommonAncestor(nodeID1, nodeID2 int) int {
	depth1 := t.getDepth(nodeID1)
	depth2 := t.getDepth(nodeID2)

	for depth1 > depth2 {
		nodeID1 = t.nodes[nodeID1].ParentID
		if nodeID1 == prom.Null {
			break
		}
		depth1--
	}
	for depth2 > depth1 {
		nodeID2 = t.nodes[nodeID2].ParentID
		if nodeID2 == prom.Null {
			break
		}
		depth2--
	}

	for {
		if nodeID1 == prom.Null || nodeID2 == prom.Null {
			return prom.Null
		}
		if nodeID1 == nodeID2 {
			return nodeID1
		}
		nodeID1 = t.nodes[nodeID1].ParentID
		nodeID2 = t.nodes[nodeID2].ParentID
	}
}

func (t *Tree) getDepth(nodeID int) int {
	depth := 0
	for {
		depth++
		nodeID = t.nodes[nodeID].ParentID
		if nodeID == prom.Null {
			break
		}
	}
	return depth
}

func (t *Tree) spliceAllRunoffs() []geo.Elevation {
	removed := map[int]bool{}
	var basinSaddles []geo.Elevation

	samplesAroundGlobe := t.coordinateSystem.SamplesAroundEquator()

	locationMap := map[uint64][]int{}
	for i, r := range t.runoffs {
		locationMap[r.Location.Value()] = append(locationMap[r.Location.Value()], i)
	}

	for i := range t.runoffs {
		if removed[i] {
			continue
		}
		loc := t.runoffs[i].Location
		for wraparound := -1; wraparound <= 1; wraparound++ {
			wrapped := geo.NewOffsets(loc.X()+geo.Coord(wraparound*samplesAroundGlobe), loc.Y())
			for _, other := range locationMap[wrapped.Value()] {
				if other != i && !removed[other] {
					if elev, ok := t.spliceTwoRunoffs(i, other, removed); ok {
						basinSaddles = append(basinSaddles, elev)
					}
					break
				}
			}
		}
	}

	t.runoffs = removeByIndices(t.runoffs, removed)
	t.runoffEdges = removeIntsByIndices(t.runoffEdges, removed)

	t.removeDeletedPeaksAndSaddles(t.removedPeakIndices, t.removedSaddleIndices)
	t.removedPeakIndices = map[int]bool{}
	t.removedSaddleIndices = map[int]bool{}

	return basinSaddles
}

// spliceTwoRunoffs merges the runoffs at index1 and index2, which meet at
// the same location, joining their peaks through a new saddle. Returns
// the elevation of the saddle that cycle breaking marked as a basin
// saddle and true, or a zero value and false if no cycle was closed (the
// two runoffs lead to the same peak, or their peaks were not yet
// connected).
func (t *Tree) spliceTwoRunoffs(index1, index2 int, removed map[int]bool) (geo.Elevation, bool) {
	peak1 := t.runoffEdges[index1]
	peak2 := t.runoffEdges[index2]
	wasInside1 := t.runoffs[index1].InsidePeakArea
	wasInside2 := t.runoffs[index2].InsidePeakArea

	var basinSaddleElevation geo.Elevation
	var hasBasinSaddle bool

	if peak1 != peak2 {
		t.saddles = append(t.saddles, prom.Saddle{
			Location:  t.runoffs[index1].Location,
			Elevation: t.runoffs[index1].Elevation,
			Type:      prom.PromSaddle,
		})
		saddleID := len(t.saddles)
		basinSaddleID := t.MaybeAddEdge(peak1, peak2, saddleID)
		if basinSaddleID != prom.Null {
			t.saddles[basinSaddleID-1].Type = prom.BasinSaddle
			basinSaddleElevation = t.saddles[basinSaddleID-1].Elevation
			hasBasinSaddle = true
		}

		// A runoff inside a peak's flat area means the peak either
		// continues past the boundary or is bogus; safe to drop one side.
		if t.runoffs[index1].InsidePeakArea {
			t.removePeak(t.runoffEdges[index1], t.runoffEdges[index2])
		} else if t.runoffs[index2].InsidePeakArea {
			t.removePeak(t.runoffEdges[index2], t.runoffEdges[index1])
		}
	}

	removed[index1] = true

	t.runoffs[index2].FilledQuadrants += t.runoffs[index1].FilledQuadrants
	if t.runoffs[index2].FilledQuadrants >= 4 {
		removed[index2] = true
	} else {
		t.runoffs[index2].InsidePeakArea = wasInside2 && wasInside1
	}

	return basinSaddleElevation, hasBasinSaddle
}

func (t *Tree) removePeak(peakID, neighborPeakID int) {
	removedSaddleID := t.nodes[peakID].SaddleID

	if t.nodes[peakID].ParentID != neighborPeakID {
		saddleOwnerIsChild := true
		if t.nodes[neighborPeakID].ParentID != peakID {
			var highestSaddleElevation geo.Elevation
			if t.nodes[peakID].ParentID != prom.Null {
				neighborPeakID = t.nodes[peakID].ParentID
				highestSaddleElevation = t.saddle(t.nodes[peakID].SaddleID).Elevation
				saddleOwnerIsChild = false
			}
			for nodeID := 1; nodeID < len(t.nodes); nodeID++ {
				if t.nodes[nodeID].ParentID == peakID {
					elevation := t.saddle(t.nodes[nodeID].SaddleID).Elevation
					if elevation > highestSaddleElevation {
						highestSaddleElevation = elevation
						neighborPeakID = nodeID
						saddleOwnerIsChild = true
					}
				}
			}
		}

		if saddleOwnerIsChild {
			removedSaddleID = t.nodes[neighborPeakID].SaddleID
			t.nodes[neighborPeakID].ParentID = t.nodes[peakID].ParentID
			t.nodes[neighborPeakID].SaddleID = t.nodes[peakID].SaddleID
		}
	}

	t.removedPeakIndices[peakID-1] = true
	t.removedSaddleIndices[removedSaddleID-1] = true

	for i := range t.nodes {
		if t.nodes[i].ParentID == peakID {
			t.nodes[i].ParentID = neighborPeakID
		}
	}

	for i, runoffEdgeID := range t.runoffEdges {
		if runoffEdgeID == peakID {
			t.runoffEdges[i] = neighborPeakID
			t.runoffs[i].InsidePeakArea = false
		}
	}
}

// computeDeletionOffsets returns, for every pre-deletion index, how many
// deleted indices are <= it — the amount to subtract to get the
// post-deletion index.
func computeDeletionOffsets(deleted map[int]bool, length int) []int {
	offsets := make([]int, length)
	if len(deleted) == 0 {
		return offsets
	}

	sorted := make([]int, 0, len(deleted))
	for idx := range deleted {
		sorted = append(sorted, idx)
	}
	sort.Ints(sorted)

	offset := 1
	for i := 0; i < len(sorted)-1; i++ {
		for index := sorted[i]; index < sorted[i+1]; index++ {
			offsets[index] = offset
		}
		offset++
	}
	for index := sorted[len(sorted)-1]; index < length; index++ {
		offsets[index] = offset
	}
	return offsets
}

func (t *Tree) removeDeletedPeaksAndSaddles(deletedPeaks, deletedSaddles map[int]bool) {
	peakOffsets := computeDeletionOffsets(deletedPeaks, len(t.peaks))
	saddleOffsets := computeDeletionOffsets(deletedSaddles, len(t.saddles))

	t.saddles = removeByIndices(t.saddles, deletedSaddles)
	t.peaks = removeByIndices(t.peaks, deletedPeaks)

	sentinel := t.nodes[0]
	rest := removeByIndices(t.nodes[1:], deletedPeaks)
	t.nodes = append([]Node{sentinel}, rest...)

	for i := range t.nodes {
		if t.nodes[i].ParentID != prom.Null {
			t.nodes[i].ParentID -= peakOffsets[t.nodes[i].ParentID-1]
		}
		if t.nodes[i].SaddleID != prom.Null {
			t.nodes[i].SaddleID -= saddleOffsets[t.nodes[i].SaddleID-1]
		}
	}
	for i := range t.runoffEdges {
		if t.runoffEdges[i] != prom.Null {
			t.runoffEdges[i] -= peakOffsets[t.runoffEdges[i]-1]
		}
	}
}

func removeByIndices[T any](items []T, deleted map[int]bool) []T {
	if len(deleted) == 0 {
		return items
	}
	out := make([]T, 0, len(items)-len(deleted))
	for i, item := range items {
		if !deleted[i] {
			out = append(out, item)
		}
	}
	return out
}

func removeIntsByIndices(items []int, deleted map[int]bool) []int {
	return removeByIndices(items, deleted)
}

// DebugString renders every peak's parent edge, one per line, for
// debug logging.
func (t *Tree) DebugString() string {
	var out string
	for index, node := range t.nodes {
		if node.SaddleID != prom.Null {
			out += fmt.Sprintf("  %d -> %d saddle %d\n", index, node.ParentID, node.SaddleID)
		}
	}
	return out
}
