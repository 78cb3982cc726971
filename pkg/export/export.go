// Package export renders a divide tree as a Graphviz graph for debugging:
// one node per peak, one edge per node-to-parent link labeled with the
// connecting saddle's elevation and type. The divide tree is already a
// graph in its data model, so exporting it as one is a direct fit
// rather than an invented visualization.
//
// Grounded on pkg/render/nodelink/dot.go's ToDOT/RenderSVG shape.
package export

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-graphviz"

	"github.com/kirmse-prom/prominence/pkg/dividetree"
	"github.com/kirmse-prom/prominence/pkg/prom"
)

// ToDOT renders tree as a Graphviz DOT digraph. Peak nodes are labeled
// with their 1-based id and elevation; edges point from a peak to its
// current parent and are labeled with the connecting saddle's elevation
// and type code (p/b/f/e).
func ToDOT(tree *dividetree.Tree) string {
	var buf bytes.Buffer
	buf.WriteString("digraph DivideTree {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=10];\n\n")

	peaks := tree.Peaks()
	for i, p := range peaks {
		id := i + 1
		fmt.Fprintf(&buf, "  %d [label=%q];\n", id, fmt.Sprintf("#%d\n%.0f", id, float64(p.Elevation)))
	}

	buf.WriteString("\n")
	saddles := tree.Saddles()
	for peakID, node := range tree.Nodes() {
		if peakID == 0 || node.ParentID == prom.Null {
			continue
		}
		saddle := saddles[node.SaddleID-1]
		fmt.Fprintf(&buf, "  %d -> %d [label=%q];\n", peakID, node.ParentID,
			fmt.Sprintf("%.0f (%s)", float64(saddle.Elevation), saddle.Type))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// WriteDOT writes tree's DOT representation to path.
func WriteDOT(tree *dividetree.Tree, path string) error {
	return os.WriteFile(path, []byte(ToDOT(tree)), 0o644)
}

// RenderSVG renders a DOT graph to SVG bytes via Graphviz. dot is
// normally the output of ToDOT, but any valid DOT source works.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("export: parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("export: render: %w", err)
	}
	return buf.Bytes(), nil
}
