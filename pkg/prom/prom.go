// Package prom defines the value types shared by the divide tree, island
// tree, and line tree: peaks, saddles, runoffs, and the 1-based indexing
// convention with its Null sentinel.
package prom

import "github.com/kirmse-prom/prominence/pkg/geo"

// Null marks the absence of a parent, saddle, or runoff-edge target. Peak
// and saddle ids are 1-based so that index 0 can be reserved as a
// sentinel, letting Null (-1) coexist with any valid index in the same
// integer space.
const Null = -1

// SaddleType classifies a saddle by what its two steepest-ascent divides
// connect.
type SaddleType byte

const (
	// FalseSaddle: both divides reach the same peak.
	FalseSaddle SaddleType = 'f'
	// PromSaddle: a genuine col that may be some peak's key saddle.
	PromSaddle SaddleType = 'p'
	// BasinSaddle: the lowest saddle on a cycle, discarded during cycle
	// breaking; retained structurally, ignored for prominence.
	BasinSaddle SaddleType = 'b'
	// ErrorSaddle: could not be classified (indicates a data or
	// algorithm bug). Logged, never silently dropped.
	ErrorSaddle SaddleType = 'e'
)

// String renders the saddle type as its single-character code, matching
// the .dvt on-disk format.
func (t SaddleType) String() string {
	return string(rune(t))
}

// SaddleTypeFromChar parses the single-character .dvt saddle type code.
func SaddleTypeFromChar(c byte) (SaddleType, bool) {
	switch SaddleType(c) {
	case FalseSaddle, PromSaddle, BasinSaddle, ErrorSaddle:
		return SaddleType(c), true
	default:
		return 0, false
	}
}

// Peak is a connected flat area strictly higher than everything bordering
// it.
type Peak struct {
	Location  geo.Offsets
	Elevation geo.Elevation
}

// Saddle is a connected flat area with at least two disjoint
// higher-elevation regions along its boundary.
type Saddle struct {
	Location  geo.Offsets
	Elevation geo.Elevation
	Type      SaddleType
}

// Runoff is a tile-edge marker representing half a saddle that may mate
// with a runoff of a neighboring tile.
type Runoff struct {
	Location        geo.Offsets
	Elevation       geo.Elevation
	FilledQuadrants int
	InsidePeakArea  bool
}

// Node is one entry of a divide tree's parent-link array: the edge from
// a peak to its current parent, routed through a saddle.
type Node struct {
	ParentID int
	SaddleID int
}

// IsRoot reports whether this node has no parent.
func (n Node) IsRoot() bool {
	return n.ParentID == Null
}
