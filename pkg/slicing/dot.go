package slicing

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// ToDOT returns a Graphviz DOT representation of the tree structure.
//
// Node representation:
//   - Cuts: labeled "H" or "V", ellipse shape; cuts swapped during the last
//     edit are drawn with a bold orange outline
//   - Leaves: labeled with the module ID and size, rounded box shape; net
//     members are filled
//
// Edges are labeled with the side of the cut they lead to (bottom/top for H,
// left/right for V).
func (t *Tree) ToDOT() string {
	var buf bytes.Buffer
	buf.WriteString("digraph SlicingTree {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontname=\"SF Mono, Menlo, monospace\", fontsize=14, style=filled, fillcolor=white];\n")
	buf.WriteString("  edge [arrowhead=none, fontsize=10, fontcolor=gray40];\n\n")

	if t.root != nil {
		writeDOTNode(&buf, t.root, 0)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeDOTNode(buf *bytes.Buffer, n *node, id int) int {
	nodeID := fmt.Sprintf("n%d", id)
	next := id + 1

	if n.kind == leafNode {
		fill := "white"
		if n.module.IsNet() {
			fill = "lightblue"
		}
		label := fmt.Sprintf("%s\n%gx%g", n.module.ID, n.rect.Width, n.rect.Height)
		fmt.Fprintf(buf, "  %s [label=%q, shape=box, style=\"filled,rounded\", fillcolor=%s];\n", nodeID, label, fill)
		return next
	}

	if n.swapped {
		fmt.Fprintf(buf, "  %s [label=%q, shape=ellipse, color=darkorange, penwidth=2];\n", nodeID, n.split.String())
	} else {
		fmt.Fprintf(buf, "  %s [label=%q, shape=ellipse];\n", nodeID, n.split.String())
	}

	lo, hi := "left", "right"
	if n.split == SplitH {
		lo, hi = "bottom", "top"
	}
	fmt.Fprintf(buf, "  %s -> n%d [label=%q];\n", nodeID, next, lo)
	next = writeDOTNode(buf, n.left, next)
	fmt.Fprintf(buf, "  %s -> n%d [label=%q];\n", nodeID, next, hi)
	return writeDOTNode(buf, n.right, next)
}

// RenderSVG renders the tree structure as an SVG image via Graphviz.
//
// All errors are wrapped with context using fmt.Errorf with %w.
func (t *Tree) RenderSVG(ctx context.Context) ([]byte, error) {
	return t.render(ctx, graphviz.SVG)
}

// RenderPNG renders the tree structure as a PNG image via Graphviz.
func (t *Tree) RenderPNG(ctx context.Context) ([]byte, error) {
	return t.render(ctx, graphviz.PNG)
}

func (t *Tree) render(ctx context.Context, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(t.ToDOT()))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
