// Package dvt encodes and decodes the .dvt divide-tree file format: a
// comment-tolerant text format with a coordinate-system header line
// followed by P/S/R/N/E record lines.
//
// Grounded on original_source/code/divide_tree.cpp (writeToFile,
// readFromFile).
package dvt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kirmse-prom/prominence/pkg/dividetree"
	"github.com/kirmse-prom/prominence/pkg/errors"
	"github.com/kirmse-prom/prominence/pkg/geo"
	"github.com/kirmse-prom/prominence/pkg/prom"
)

// Write serializes tree to w in the .dvt text format.
func Write(w io.Writer, tree *dividetree.Tree, generatedAt time.Time) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# Prominence divide tree generated at %s\n", generatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(bw, "%s\n", tree.CoordinateSystem().String())

	for i, peak := range tree.Peaks() {
		fmt.Fprintf(bw, "P,%d,%d,%d,%.2f\n", i+1, peak.Location.X(), peak.Location.Y(), peak.Elevation)
	}
	for i, saddle := range tree.Saddles() {
		fmt.Fprintf(bw, "S,%d,%s,%d,%d,%.2f\n", i+1, saddle.Type.String(), saddle.Location.X(), saddle.Location.Y(), saddle.Elevation)
	}
	for i, runoff := range tree.Runoffs() {
		inside := 0
		if runoff.InsidePeakArea {
			inside = 1
		}
		fmt.Fprintf(bw, "R,%d,%d,%d,%.2f,%d,%d\n", i, runoff.Location.X(), runoff.Location.Y(), runoff.Elevation, runoff.FilledQuadrants, inside)
	}
	for i, node := range tree.Nodes() {
		fmt.Fprintf(bw, "N,%d,%d,%d\n", i, node.ParentID, node.SaddleID)
	}
	for i, peakID := range tree.RunoffEdges() {
		fmt.Fprintf(bw, "E,%d,%d\n", i, peakID)
	}

	return bw.Flush()
}

// Read parses a .dvt file from r.
func Read(r io.Reader) (*dividetree.Tree, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var cs geo.CoordinateSystem
	var peaks []prom.Peak
	var saddles []prom.Saddle
	var runoffs []prom.Runoff
	var nodes []dividetree.Node
	var runoffEdges []int

	coordinateSystemRead := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}

		if !coordinateSystemRead {
			parsed, err := geo.ParseCoordinateSystem(line)
			if err != nil {
				return nil, errors.Wrap(errors.CodeInputCorrupt, err, "parsing .dvt coordinate system line")
			}
			cs = parsed
			coordinateSystemRead = true
			continue
		}

		fields := strings.Split(line, ",")
		switch fields[0] {
		case "P":
			if len(fields) != 5 {
				return nil, errors.New(errors.CodeInputCorrupt, "malformed peak record: %q", line)
			}
			x, y, elev := mustInt(fields[2]), mustInt(fields[3]), mustFloat(fields[4])
			peaks = append(peaks, prom.Peak{Location: geo.NewOffsets(geo.Coord(x), geo.Coord(y)), Elevation: geo.Elevation(elev)})

		case "S":
			if len(fields) != 6 {
				return nil, errors.New(errors.CodeInputCorrupt, "malformed saddle record: %q", line)
			}
			saddleType, ok := prom.SaddleTypeFromChar(fields[2][0])
			if !ok {
				return nil, errors.New(errors.CodeInputCorrupt, "unknown saddle type %q", fields[2])
			}
			x, y, elev := mustInt(fields[3]), mustInt(fields[4]), mustFloat(fields[5])
			saddles = append(saddles, prom.Saddle{Location: geo.NewOffsets(geo.Coord(x), geo.Coord(y)), Elevation: geo.Elevation(elev), Type: saddleType})

		case "R":
			if len(fields) != 7 {
				return nil, errors.New(errors.CodeInputCorrupt, "malformed runoff record: %q", line)
			}
			x, y, elev := mustInt(fields[2]), mustInt(fields[3]), mustFloat(fields[4])
			quadrants := mustInt(fields[5])
			runoffs = append(runoffs, prom.Runoff{
				Location:        geo.NewOffsets(geo.Coord(x), geo.Coord(y)),
				Elevation:       geo.Elevation(elev),
				FilledQuadrants: quadrants,
				InsidePeakArea:  fields[6] == "1",
			})

		case "N":
			if len(fields) != 4 {
				return nil, errors.New(errors.CodeInputCorrupt, "malformed node record: %q", line)
			}
			parentID, saddleID := mustInt(fields[2]), mustInt(fields[3])
			if parentID != prom.Null && saddleID == prom.Null {
				return nil, errors.New(errors.CodeInputCorrupt, "node with parent but no saddle: %q", line)
			}
			nodes = append(nodes, dividetree.Node{ParentID: parentID, SaddleID: saddleID})

		case "E":
			if len(fields) != 3 {
				return nil, errors.New(errors.CodeInputCorrupt, "malformed runoff-edge record: %q", line)
			}
			runoffEdges = append(runoffEdges, mustInt(fields[2]))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.CodeInputCorrupt, err, "reading .dvt file")
	}
	if !coordinateSystemRead {
		return nil, errors.New(errors.CodeInputCorrupt, "missing coordinate system line")
	}

	return dividetree.FromParts(cs, peaks, saddles, runoffs, nodes, runoffEdges), nil
}

func mustInt(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}

func mustFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
