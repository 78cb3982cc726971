// Package report writes the two human-readable text outputs a finished
// divide tree produces: a flat prominence listing and a parents table
// linking each peak to its prominence parent and line parent.
//
// Grounded on compute_parents.cpp's parent-emission logic; that source
// never isolates the prominence listing as a standalone writer, so its
// format here is a direct port into a dedicated function.
package report

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/kirmse-prom/prominence/pkg/dividetree"
	"github.com/kirmse-prom/prominence/pkg/geo"
	"github.com/kirmse-prom/prominence/pkg/islandtree"
	"github.com/kirmse-prom/prominence/pkg/linetree"
	"github.com/kirmse-prom/prominence/pkg/prom"
)

// divideTree is the minimal surface both writers need from a built tree.
type divideTree interface {
	CoordinateSystem() geo.CoordinateSystem
	Peaks() []prom.Peak
	Saddles() []prom.Saddle
	Nodes() []prom.Node
}

var _ divideTree = (*dividetree.Tree)(nil)

// WriteProminence writes one line per peak whose prominence is at least
// minProminence: peakLat,peakLng,elev,saddleLat,saddleLng,prominence. A
// landmass high point (no key saddle) writes 0,0 for the saddle position.
func WriteProminence(w io.Writer, dt divideTree, it *islandtree.Tree, minProminence geo.Elevation) error {
	bw := bufio.NewWriter(w)
	cs := dt.CoordinateSystem()
	peaks := dt.Peaks()
	saddles := dt.Saddles()

	for i := 1; i < len(dt.Nodes()); i++ {
		prominence, known := it.Prominence(i)
		if !known || prominence < minProminence {
			continue
		}

		peak := peaks[i-1]
		peakPos := cs.LatLng(peak.Location)

		var saddlePos geo.LatLng
		if keySaddleID := it.Nodes()[i].KeySaddleID; keySaddleID != prom.Null {
			saddlePos = cs.LatLng(saddles[keySaddleID-1].Location)
		}

		fmt.Fprintf(bw, "%.4f,%.4f,%.2f,%.4f,%.4f,%.2f\n",
			peakPos.Lat, peakPos.Lng, float64(peak.Elevation),
			saddlePos.Lat, saddlePos.Lng, float64(prominence))
	}

	return bw.Flush()
}

// WriteParents writes the parents table: for every peak at or above
// minProminence, its col position, its prominence parent (the first
// ancestor with strictly greater prominence) and its line parent (the
// first ancestor at or above its own elevation, walking the line tree).
// A landmass high point (prominence equal to elevation) has no
// well-defined parent or col and is omitted from the table entirely.
func WriteParents(w io.Writer, dt divideTree, it *islandtree.Tree, lt *linetree.Tree, minProminence geo.Elevation, commandLine string, generatedAt time.Time) error {
	bw := bufio.NewWriter(w)
	cs := dt.CoordinateSystem()
	peaks := dt.Peaks()
	saddles := dt.Saddles()
	lineNodes := lt.Nodes()
	islandNodes := it.Nodes()

	fmt.Fprintf(bw, "# Prominence and line parents generated at %s\n", generatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(bw, "# Command line: %s\n", commandLine)

	for i := 1; i < len(dt.Nodes()); i++ {
		prominence, known := it.Prominence(i)
		if !known || prominence < minProminence {
			continue
		}

		peak := peaks[i-1]
		elev := peak.Elevation
		if prominence == elev {
			// Landmass high point: no key saddle, no well-defined parent.
			continue
		}
		peakPos := cs.LatLng(peak.Location)

		var colPos geo.LatLng
		if keySaddleID := islandNodes[i].KeySaddleID; keySaddleID != prom.Null {
			colPos = cs.LatLng(saddles[keySaddleID-1].Location)
		}

		promParentID := prom.Null
		lineParentID := prom.Null
		parentID := lineNodes[i].ParentID
		for parentID != prom.Null {
			parentProminence, _ := it.Prominence(parentID)
			if promParentID == prom.Null && parentProminence > prominence {
				promParentID = parentID
			}

			parentElevation := peaks[parentID-1].Elevation
			if lineParentID == prom.Null && parentElevation >= elev {
				lineParentID = parentID
			}

			if lineParentID != prom.Null && promParentID != prom.Null {
				break
			}
			parentID = lineNodes[parentID].ParentID
		}

		var promParentLat, promParentLng, promParentProminence float64
		if promParentID != prom.Null {
			pos := cs.LatLng(peaks[promParentID-1].Location)
			promParentLat, promParentLng = pos.Lat, pos.Lng
			if p, known := it.Prominence(promParentID); known {
				promParentProminence = float64(p)
			}
		}

		var lineParentLat, lineParentLng, lineParentElevation float64
		if lineParentID != prom.Null {
			pos := cs.LatLng(peaks[lineParentID-1].Location)
			lineParentLat, lineParentLng = pos.Lat, pos.Lng
			lineParentElevation = float64(peaks[lineParentID-1].Elevation)
		}

		fmt.Fprintf(bw, "%.4f,%.4f,%.4f,%.4f,%.2f,%.2f,%.4f,%.4f,%.2f,%.4f,%.4f,%.2f\n",
			peakPos.Lat, peakPos.Lng,
			colPos.Lat, colPos.Lng,
			float64(elev), float64(prominence),
			promParentLat, promParentLng, promParentProminence,
			lineParentLat, lineParentLng, lineParentElevation)
	}

	return bw.Flush()
}
