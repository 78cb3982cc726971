package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/kirmse-prom/prominence/pkg/dividetree"
	"github.com/kirmse-prom/prominence/pkg/geo"
	"github.com/kirmse-prom/prominence/pkg/islandtree"
	"github.com/kirmse-prom/prominence/pkg/linetree"
	"github.com/kirmse-prom/prominence/pkg/prom"
)

// Three peaks in a chain: 3 (600) under 2 (800) under 1 (1000, the
// landmass high point), joined by two saddles.
func chainTree() *dividetree.Tree {
	cs := geo.NewDegreeCoordinateSystem(0, 0, 1, 1, 3600, 3600)
	peaks := []prom.Peak{
		{Location: geo.NewOffsets(0, 0), Elevation: 1000},
		{Location: geo.NewOffsets(10, 10), Elevation: 800},
		{Location: geo.NewOffsets(20, 20), Elevation: 600},
	}
	saddles := []prom.Saddle{
		{Location: geo.NewOffsets(5, 5), Elevation: 500, Type: prom.PromSaddle},
		{Location: geo.NewOffsets(15, 15), Elevation: 400, Type: prom.PromSaddle},
	}
	tree := dividetree.New(cs, peaks, saddles, nil)
	tree.MaybeAddEdge(2, 1, 1)
	tree.MaybeAddEdge(3, 2, 2)
	return tree
}

func TestWriteProminenceFiltersByMinimum(t *testing.T) {
	dt := chainTree()
	it := islandtree.Build(dt, false)

	var buf bytes.Buffer
	if err := WriteProminence(&buf, dt, it, 0); err != nil {
		t.Fatalf("WriteProminence: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3 (all peaks clear a 0 minimum)", len(lines))
	}

	var buf2 bytes.Buffer
	if err := WriteProminence(&buf2, dt, it, 0); err != nil {
		t.Fatalf("WriteProminence: %v", err)
	}
	if buf.String() != buf2.String() {
		t.Error("WriteProminence is not deterministic across calls")
	}
}

func TestWriteProminenceOmitsBelowMinimum(t *testing.T) {
	dt := chainTree()
	it := islandtree.Build(dt, false)

	// Peak 2's prominence is 300 (800-500), peak 3's is 200 (600-400):
	// a 250 minimum keeps the root and peak 2, drops peak 3.
	var buf bytes.Buffer
	if err := WriteProminence(&buf, dt, it, 250); err != nil {
		t.Fatalf("WriteProminence: %v", err)
	}
	if strings.Count(buf.String(), "\n") != 2 {
		t.Errorf("expected 2 surviving peaks, got output:\n%s", buf.String())
	}
}

func TestWriteParentsOmitsLandmassHighPoint(t *testing.T) {
	dt := chainTree()
	it := islandtree.Build(dt, false)
	lt := linetree.Build(dt)

	var buf bytes.Buffer
	if err := WriteParents(&buf, dt, it, lt, 0, "test", time.Unix(0, 0)); err != nil {
		t.Fatalf("WriteParents: %v", err)
	}

	var dataLines []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 12 {
			t.Fatalf("row has %d fields, want 12: %q", len(fields), line)
		}
		dataLines = append(dataLines, line)
	}

	// The root (1000) is a landmass high point (prominence == elevation)
	// and has no well-defined parent, so only peaks 2 and 3 survive.
	if len(dataLines) != 2 {
		t.Fatalf("got %d data rows, want 2 (root omitted)", len(dataLines))
	}
}
