// Package linetree computes, for every saddle in a divide tree, an upper
// bound on the prominence of whichever peak claims it as a key saddle.
// A prune pass consults this bound before deleting a low-prominence
// peak, since deleting the peak must not also delete a saddle that some
// other, still-unseen peak off the tile needs as its key saddle.
//
// Grounded on original_source/code/line_tree.h and line_tree.cpp.
package linetree

import (
	"sort"

	"github.com/kirmse-prom/prominence/pkg/geo"
	"github.com/kirmse-prom/prominence/pkg/prom"
)

// HugeElevation stands in for "unbounded" when a saddle's prominence
// could be determined by a peak that hasn't been seen yet, off the edge
// of the map. Any elevation actually observed on Earth is far below it.
const HugeElevation geo.Elevation = 32000

// undefinedElevation marks a saddle whose prominence bound has not yet
// been computed, distinct from geo.NoData (a missing terrain sample).
const undefinedElevation geo.Elevation = -10000

type divideTree interface {
	Nodes() []prom.Node
	Peaks() []prom.Peak
	Saddles() []prom.Saddle
	Runoffs() []prom.Runoff
	RunoffEdges() []int
}

// Node is one entry of the line tree: the parent is the first strictly
// higher peak reached by walking the divide tree, staying as high as
// possible along the way.
type Node struct {
	ParentID                       int
	SaddleID                       int // saddle between this peak and its line-tree parent
	LowestElevationSaddleChildDir  geo.Elevation
	LowestElevationSaddleParentDir geo.Elevation
	ChildID                        int
	RunoffID                       int
}

type saddleInfo struct {
	saddleProminence geo.Elevation
}

// Tree computes an upper bound on every saddle's prominence.
type Tree struct {
	divideTree divideTree
	nodes      []Node
	saddleInfo []saddleInfo
}

// Build constructs and fully computes a line tree over dt.
func Build(dt divideTree) *Tree {
	t := &Tree{divideTree: dt}

	dtNodes := dt.Nodes()
	t.nodes = make([]Node, len(dtNodes))
	for i := 1; i < len(dtNodes); i++ {
		t.nodes[i] = Node{
			ParentID:                       dtNodes[i].ParentID,
			ChildID:                        prom.Null,
			SaddleID:                       i,
			LowestElevationSaddleChildDir:  undefinedElevation,
			LowestElevationSaddleParentDir: undefinedElevation,
			RunoffID:                       prom.Null,
		}
	}

	t.saddleInfo = make([]saddleInfo, len(dt.Saddles()))
	for i := range t.saddleInfo {
		t.saddleInfo[i].saddleProminence = undefinedElevation
	}

	t.computeOffMapSaddleProminence()
	t.computeOnMapSaddleProminence()

	return t
}

// Nodes returns the line tree's nodes, 1-indexed by peak id.
func (t *Tree) Nodes() []Node { return t.nodes }

// SaddleHasMinProminence implements dividetree.SaddleProminenceChecker.
func (t *Tree) SaddleHasMinProminence(saddleID int, minProminence geo.Elevation) bool {
	return t.saddleInfo[saddleID-1].saddleProminence >= minProminence
}

func (t *Tree) peak(peakID int) prom.Peak           { return t.divideTree.Peaks()[peakID-1] }
func (t *Tree) saddle(saddleID int) prom.Saddle     { return t.divideTree.Saddles()[saddleID-1] }
func (t *Tree) runoff(runoffID int) prom.Runoff     { return t.divideTree.Runoffs()[runoffID] }
func (t *Tree) divideTreeNode(nodeID int) prom.Node { return t.divideTree.Nodes()[nodeID] }

func (t *Tree) saddleForPeakID(peakID int) prom.Saddle {
	return t.saddle(t.divideTreeNode(peakID).SaddleID)
}

func (t *Tree) peakIDForRunoff(runoffID int) int {
	return t.divideTree.RunoffEdges()[runoffID]
}

// computeOffMapSaddleProminence finds the lowest saddle on every
// runoff-to-runoff path through the tree and marks it as having
// unbounded prominence, since a peak off the map could still claim it
// as a key saddle.
func (t *Tree) computeOffMapSaddleProminence() {
	for runoffIndex := range t.divideTree.Runoffs() {
		runoff := t.runoff(runoffIndex)
		peakID := t.peakIDForRunoff(runoffIndex)
		if peakID == prom.Null {
			continue
		}

		nodeID := peakID
		lowestSaddleOwner := prom.Null
		lowestSaddleElevation := runoff.Elevation

		for {
			node := t.nodes[nodeID]
			if node.ParentID == prom.Null {
				break
			}
			if saddleElevation := t.saddleForPeakID(node.SaddleID).Elevation; saddleElevation < lowestSaddleElevation {
				lowestSaddleOwner = nodeID
				lowestSaddleElevation = saddleElevation
			}
			nodeID = node.ParentID
		}

		if t.nodes[nodeID].RunoffID == prom.Null {
			lowestSaddleOwner = nodeID
		} else {
			runoff2 := t.runoff(t.nodes[nodeID].RunoffID)
			if runoff2.Elevation < lowestSaddleElevation {
				lowestSaddleOwner = nodeID
				lowestSaddleElevation = runoff2.Elevation
			}

			for nid := peakID; nid != nodeID; nid = t.nodes[nid].ParentID {
				saddleOwnerID := t.nodes[nid].SaddleID
				saddleElevation := t.saddleForPeakID(saddleOwnerID).Elevation
				info := &t.saddleInfo[t.divideTreeNode(saddleOwnerID).SaddleID-1]
				if saddleElevation <= lowestSaddleElevation && info.saddleProminence == undefinedElevation {
					info.saddleProminence = HugeElevation
				}
			}
		}

		if lowestSaddleOwner != prom.Null {
			t.reversePath(peakID, lowestSaddleOwner)
			t.nodes[peakID].RunoffID = runoffIndex
			t.nodes[peakID].ParentID = prom.Null
		}
	}
}

// computeOnMapSaddleProminence visits peaks from highest to lowest,
// finding each one's first strictly higher ancestor and the lowest
// saddle encountered along that path, which bounds the prominence of
// every saddle on it.
func (t *Tree) computeOnMapSaddleProminence() {
	peaks := t.divideTree.Peaks()
	sortedPeakIndices := make([]int, len(peaks))
	for i := range sortedPeakIndices {
		sortedPeakIndices[i] = i
	}
	sort.Slice(sortedPeakIndices, func(i, j int) bool {
		return peaks[sortedPeakIndices[i]].Elevation > peaks[sortedPeakIndices[j]].Elevation
	})

	for _, idx := range sortedPeakIndices {
		lowestSaddleElevation := HugeElevation
		lowestSaddleOwner := prom.Null

		startingPeakID := idx + 1
		nodeID := startingPeakID
		runoffIndex := prom.Null
		t.nodes[nodeID].ChildID = prom.Null

		for {
			node := &t.nodes[nodeID]

			if node.ParentID == prom.Null {
				if node.RunoffID == prom.Null {
					lowestSaddleOwner = nodeID
				} else {
					runoffIndex = node.RunoffID
					if r := t.runoff(runoffIndex); r.Elevation < lowestSaddleElevation {
						lowestSaddleOwner = nodeID
						lowestSaddleElevation = r.Elevation
					}
				}
				break
			}

			node.LowestElevationSaddleChildDir = lowestSaddleElevation
			node.LowestElevationSaddleParentDir = -HugeElevation
			t.nodes[node.ParentID].ChildID = nodeID

			if saddleElevation := t.saddleForPeakID(node.SaddleID).Elevation; saddleElevation < lowestSaddleElevation {
				lowestSaddleOwner = nodeID
				lowestSaddleElevation = saddleElevation
			}

			nodeID = node.ParentID

			if t.peak(nodeID).Elevation >= t.peak(startingPeakID).Elevation {
				break
			}
		}

		if nodeID != prom.Null {
			if runoffIndex == prom.Null {
				t.nodes[nodeID].LowestElevationSaddleParentDir = HugeElevation
			} else {
				t.nodes[nodeID].LowestElevationSaddleParentDir = t.runoff(runoffIndex).Elevation
			}
			t.propagateLowestInterveningSaddle(nodeID)

			for nid := startingPeakID; nid != nodeID; nid = t.nodes[nid].ParentID {
				saddleOwnerID := t.nodes[nid].SaddleID
				bound := minElevation(
					t.nodes[nid].LowestElevationSaddleChildDir,
					t.nodes[t.nodes[nid].ParentID].LowestElevationSaddleParentDir,
				)
				saddleElevation := t.saddleForPeakID(saddleOwnerID).Elevation
				info := &t.saddleInfo[t.divideTreeNode(saddleOwnerID).SaddleID-1]
				if saddleElevation <= bound && info.saddleProminence == undefinedElevation {
					info.saddleProminence = t.peak(startingPeakID).Elevation - saddleElevation
				}
			}
		}

		if startingPeakID != nodeID {
			t.reversePath(startingPeakID, lowestSaddleOwner)
			t.nodes[startingPeakID].ParentID = nodeID
		}
	}
}

func (t *Tree) reversePath(startPeakID, endPeakID int) {
	if startPeakID == endPeakID {
		return
	}

	saddleOwnerID := t.nodes[startPeakID].SaddleID
	peakID := startPeakID

	t.nodes[startPeakID].SaddleID = t.nodes[endPeakID].SaddleID
	parentID := t.nodes[startPeakID].ParentID

	for peakID != endPeakID {
		grandparentID := t.nodes[parentID].ParentID
		t.nodes[parentID].ParentID = peakID
		temp := t.nodes[parentID].SaddleID
		t.nodes[parentID].SaddleID = saddleOwnerID

		peakID = parentID
		parentID = grandparentID
		saddleOwnerID = temp
	}
}

func (t *Tree) propagateLowestInterveningSaddle(originNodeID int) {
	nodeID := originNodeID
	elev := t.nodes[nodeID].LowestElevationSaddleParentDir

	for {
		neighborID := t.nodes[nodeID].ChildID
		if neighborID == prom.Null {
			break
		}
		saddleOwnerPeakID := neighborID
		if neighborID == t.divideTreeNode(nodeID).ParentID {
			saddleOwnerPeakID = nodeID
		}
		saddleElevation := t.saddleForPeakID(saddleOwnerPeakID).Elevation
		elev = minElevation(elev, saddleElevation)
		if elev <= t.nodes[neighborID].LowestElevationSaddleParentDir {
			break
		}
		t.nodes[neighborID].LowestElevationSaddleParentDir = maxElevation(t.nodes[neighborID].LowestElevationSaddleParentDir, elev)
		nodeID = neighborID
	}
}

func minElevation(a, b geo.Elevation) geo.Elevation {
	if a < b {
		return a
	}
	return b
}

func maxElevation(a, b geo.Elevation) geo.Elevation {
	if a > b {
		return a
	}
	return b
}
