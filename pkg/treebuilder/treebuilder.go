// Package treebuilder converts a single elevation tile into a divide
// tree: it finds every peak and saddle, walks steepest ascent from each
// saddle to the two peaks it connects, and finds the runoffs along the
// tile's border for later splicing against neighboring tiles.
//
// Grounded on original_source/code/tree_builder.h and tree_builder.cpp.
package treebuilder

import (
	"sort"

	"github.com/kirmse-prom/prominence/pkg/dividetree"
	"github.com/kirmse-prom/prominence/pkg/domainmap"
	"github.com/kirmse-prom/prominence/pkg/geo"
	"github.com/kirmse-prom/prominence/pkg/prom"
	"github.com/kirmse-prom/prominence/pkg/tilesource"
)

// perSaddleInfo pairs each saddle with the two boundary points from
// which steepest ascent reaches its two peaks. rise1 is the higher.
type perSaddleInfo struct {
	rise1, rise2 geo.Offsets
}

// Builder runs the peaks-and-saddles pass and the divide-tree assembly
// pass over a single tile.
type Builder struct {
	tile tilesource.Tile
	dm   *domainmap.DomainMap

	peaks      []prom.Peak
	saddles    []prom.Saddle
	saddleInfo []perSaddleInfo
	runoffs    []prom.Runoff
}

// New creates a Builder for the given tile.
func New(tile tilesource.Tile) *Builder {
	return &Builder{
		tile: tile,
		dm:   domainmap.New(tile),
	}
}

// BuildDivideTree runs the full pipeline and returns the resulting tree.
func (b *Builder) BuildDivideTree() *dividetree.Tree {
	b.findExtrema()
	b.findRunoffs()
	return b.generateDivideTree()
}

func (b *Builder) findExtrema() {
	width, height := b.tile.Width(), b.tile.Height()

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			elev := b.tile.At(x, y)
			if elev.IsNoData() {
				continue
			}
			if b.dm.Get(x, y) != domainmap.Empty {
				continue
			}

			boundary := b.dm.FindFlatArea(x, y)

			if len(boundary.HigherPoints) == 0 {
				peakID := len(b.peaks) + 1
				b.dm.FillFlatArea(x, y, peakID)
				b.peaks = append(b.peaks, prom.Peak{Location: geo.NewOffsets(geo.Coord(x), geo.Coord(y)), Elevation: elev})
				continue
			}

			if len(boundary.HigherPoints) < 2 {
				b.dm.FillFlatArea(x, y, domainmap.GenericFlatArea)
				continue
			}

			segmentHighPoints, segmentWithHighestPoint := b.computeSegments(boundary.HigherPoints)

			numSegments := len(segmentHighPoints)
			if numSegments < 2 {
				b.dm.FillFlatArea(x, y, domainmap.GenericFlatArea)
				continue
			}

			filledSaddleID := 0
			for i := 0; i < numSegments; i++ {
				if i == segmentWithHighestPoint {
					continue
				}
				saddleID := -(len(b.saddles) + 1)

				if filledSaddleID == 0 {
					b.dm.FillFlatArea(x, y, saddleID)
					filledSaddleID = saddleID
				}

				info := perSaddleInfo{
					rise1: segmentHighPoints[i],
					rise2: segmentHighPoints[segmentWithHighestPoint],
				}

				closePoint := geo.NewOffsets(geo.Coord(x), geo.Coord(y))
				if numSegments < 500 {
					midpoint := geo.NewOffsets(
						(info.rise1.X()+info.rise2.X())/2,
						(info.rise1.Y()+info.rise2.Y())/2,
					)
					closePoint = b.dm.FindClosePointWithValue(midpoint, filledSaddleID)
				}

				b.saddles = append(b.saddles, prom.Saddle{Location: closePoint, Elevation: elev})
				b.saddleInfo = append(b.saddleInfo, info)
			}
		}
	}
}

// computeSegments partitions the higher-boundary points into
// 8-connected segments, returning the highest point of each segment and
// the index of the segment containing the globally highest point.
func (b *Builder) computeSegments(higherPoints []geo.Offsets) ([]geo.Offsets, int) {
	sorted := append([]geo.Offsets(nil), higherPoints...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Value() < sorted[j].Value() })

	// Dedup; matters on enormous flat areas.
	if len(sorted) > 100 {
		out := sorted[:0]
		var last uint64 = ^uint64(0)
		for _, o := range sorted {
			if o.Value() != last {
				out = append(out, o)
				last = o.Value()
			}
		}
		sorted = out
	}

	remaining := map[uint64]bool{}
	for _, o := range sorted {
		remaining[o.Value()] = true
	}

	var segmentHighPoints []geo.Offsets
	segmentWithHighestPoint := 0

	for len(remaining) > 0 {
		var seed geo.Offsets
		for _, o := range sorted {
			if remaining[o.Value()] {
				seed = o
				break
			}
		}

		stack := []geo.Offsets{seed}
		delete(remaining, seed.Value())
		highest := seed
		maxHeight := b.tile.At(int(seed.X()), int(seed.Y()))

		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if h := b.tile.At(int(p.X()), int(p.Y())); h > maxHeight {
				maxHeight = h
				highest = p
			}

			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					n := geo.NewOffsets(p.X()+geo.Coord(dx), p.Y()+geo.Coord(dy))
					if remaining[n.Value()] {
						delete(remaining, n.Value())
						stack = append(stack, n)
					}
				}
			}
		}

		segmentHighPoints = append(segmentHighPoints, highest)
		currentHighest := b.tile.At(int(segmentHighPoints[segmentWithHighestPoint].X()), int(segmentHighPoints[segmentWithHighestPoint].Y()))
		if maxHeight > currentHighest {
			segmentWithHighestPoint = len(segmentHighPoints) - 1
		}
	}

	return segmentHighPoints, segmentWithHighestPoint
}

func (b *Builder) findRunoffs() {
	width, height := b.tile.Width(), b.tile.Height()

	x, y := 0, 0
	dx, dy := 1, 0
	risingOrFlat := false
	elev := b.tile.At(x, y)
	lastElevation := elev
	if !elev.IsNoData() {
		b.runoffs = append(b.runoffs, prom.Runoff{Location: geo.NewOffsets(0, 0), Elevation: elev, FilledQuadrants: 1})
	}

	for {
		elev = b.tile.At(x, y)

		if !elev.IsNoData() && (lastElevation.IsNoData() || elev > lastElevation) {
			risingOrFlat = true
		} else if risingOrFlat && (elev.IsNoData() || elev < lastElevation) {
			b.runoffs = append(b.runoffs, prom.Runoff{
				Location:        geo.NewOffsets(geo.Coord(x-dx), geo.Coord(y-dy)),
				Elevation:       lastElevation,
				FilledQuadrants: 2,
			})
			risingOrFlat = false
		}
		lastElevation = elev

		switch {
		case x == width-1 && y == 0: // upper right
			if !elev.IsNoData() {
				b.runoffs = append(b.runoffs, prom.Runoff{Location: geo.NewOffsets(geo.Coord(x), geo.Coord(y)), Elevation: elev, FilledQuadrants: 1})
				risingOrFlat = false
			}
			dx, dy = 0, 1
		case x == width-1 && y == height-1: // lower right
			if dx == 1 {
				goto done
			}
			if !elev.IsNoData() {
				b.runoffs = append(b.runoffs, prom.Runoff{Location: geo.NewOffsets(geo.Coord(x), geo.Coord(y)), Elevation: elev, FilledQuadrants: 1})
			}
			risingOrFlat = false
			x, y = 0, 0
			lastElevation = b.tile.At(0, 0)
			dx, dy = 0, 1
		case x == 0 && y == height-1: // lower left
			if !elev.IsNoData() {
				b.runoffs = append(b.runoffs, prom.Runoff{Location: geo.NewOffsets(geo.Coord(x), geo.Coord(y)), Elevation: elev, FilledQuadrants: 1})
				risingOrFlat = false
			}
			dx, dy = 1, 0
		}

		x += dx
		y += dy
	}
done:

	for i := range b.runoffs {
		b.runoffs[i].InsidePeakArea = b.dm.Get(int(b.runoffs[i].Location.X()), int(b.runoffs[i].Location.Y())) > 0
	}
}

func (b *Builder) generateDivideTree() *dividetree.Tree {
	tree := dividetree.New(b.tile.CoordinateSystem(), b.peaks, b.saddles, b.runoffs)

	for saddleIndex := range b.saddles {
		saddleID := saddleIndex + 1
		info := b.saddleInfo[saddleIndex]
		path1 := b.walkUpToPeak(info.rise1)
		path2 := b.walkUpToPeak(info.rise2)

		if len(path1) == 0 || len(path2) == 0 {
			b.saddles[saddleIndex].Type = prom.ErrorSaddle
			continue
		}

		peak1 := b.dm.Get(int(path1[len(path1)-1].X()), int(path1[len(path1)-1].Y()))
		peak2 := b.dm.Get(int(path2[len(path2)-1].X()), int(path2[len(path2)-1].Y()))
		if peak1 == peak2 {
			b.saddles[saddleIndex].Type = prom.FalseSaddle
			continue
		}

		b.saddles[saddleIndex].Type = prom.PromSaddle

		basinSaddleID := tree.MaybeAddEdge(peak1, peak2, saddleID)
		if basinSaddleID != prom.Null {
			b.saddles[basinSaddleID-1].Type = prom.BasinSaddle
		}
	}
	tree.SetSaddles(b.saddles)

	for index, runoff := range b.runoffs {
		path := b.walkUpToPeak(runoff.Location)
		if len(path) == 0 {
			continue
		}
		peak := b.dm.Get(int(path[len(path)-1].X()), int(path[len(path)-1].Y()))
		tree.AddRunoffEdge(peak, index)
	}

	tree.Compact()
	return tree
}

// walkUpToPeak follows steepest ascent from startPoint until it reaches
// a peak's flat area, jumping across any saddle it passes through via
// that saddle's higher boundary point. Returns nil if it gets stuck with
// no higher neighbor anywhere in the flat area it's standing on — a bug,
// not an expected outcome.
func (b *Builder) walkUpToPeak(startPoint geo.Offsets) []geo.Offsets {
	var path []geo.Offsets
	point := startPoint
	domainPixel := 0

	for {
		path = append(path, point)
		domainPixel = b.dm.Get(int(point.X()), int(point.Y()))

		if domainPixel > 0 {
			break
		}

		if domainPixel < 0 && domainPixel != domainmap.GenericFlatArea {
			point = b.saddleInfo[-domainPixel-1].rise1
			continue
		}

		newPoint := b.findSteepestNeighbor(point)
		if newPoint == point {
			boundary := b.dm.FindFlatArea(int(point.X()), int(point.Y()))
			highestElevation := b.tile.At(int(point.X()), int(point.Y()))
			for _, n := range boundary.HigherPoints {
				if h := b.tile.At(int(n.X()), int(n.Y())); h > highestElevation {
					highestElevation = h
					newPoint = n
				}
			}
			if newPoint == point {
				return nil
			}
		}

		point = newPoint
	}

	return path
}

func (b *Builder) findSteepestNeighbor(point geo.Offsets) geo.Offsets {
	maxElev := geo.Elevation(-30000)
	maxPoint := point
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			n := geo.NewOffsets(point.X()+geo.Coord(dx), point.Y()+geo.Coord(dy))
			x, y := int(n.X()), int(n.Y())
			if x < 0 || x >= b.tile.Width() || y < 0 || y >= b.tile.Height() {
				continue
			}
			if e := b.tile.At(x, y); e > maxElev {
				maxElev = e
				maxPoint = n
			}
		}
	}
	return maxPoint
}
