package slicing

import (
	"github.com/matzehuels/floorplanner/pkg/errors"
	"github.com/matzehuels/floorplanner/pkg/floorplan"
	"github.com/matzehuels/floorplanner/pkg/geometry"
)

// Cut describes one internal node for renderers and diagnostics.
type Cut struct {
	Rect    geometry.Rect
	Split   Split
	At      float64 // x of a V cut's dividing line, y of an H cut's
	Swapped bool    // children were swapped during the last edit
	Depth   int     // distance from the root
}

// Leaves returns the modules at their current positions, in tree order
// (left subtree before right subtree).
func (t *Tree) Leaves() []floorplan.Module {
	out := make([]floorplan.Module, 0, len(t.leaves))
	walk(t.root, func(n *node) {
		if n.kind == leafNode {
			m := n.module
			m.Rect = n.rect
			out = append(out, m)
		}
	})
	return out
}

// Positions returns the current rectangle of every module keyed by ID.
func (t *Tree) Positions() map[string]geometry.Rect {
	out := make(map[string]geometry.Rect, len(t.leaves))
	for id, n := range t.leaves {
		out[id] = n.rect
	}
	return out
}

// Diagnostics returns every cut in pre-order.
func (t *Tree) Diagnostics() []Cut {
	var out []Cut
	var visit func(n *node, d int)
	visit = func(n *node, d int) {
		if n.kind == leafNode {
			return
		}
		at := n.left.rect.Top()
		if n.split == SplitV {
			at = n.left.rect.Right()
		}
		out = append(out, Cut{Rect: n.rect, Split: n.split, At: at, Swapped: n.swapped, Depth: d})
		visit(n.left, d+1)
		visit(n.right, d+1)
	}
	visit(t.root, 0)
	return out
}

// Check verifies the structural invariants of the tree and returns a
// GEOMETRY_MISMATCH error describing the first violation:
//   - every cut's rectangle is exactly the union of its children, which are
//     contiguous along the cut and agree on the other dimension
//   - every leaf keeps its module's original size
//   - every module appears exactly once
//   - a node has a center exactly when it has weight
func (t *Tree) Check() error {
	seen := make(map[string]bool, len(t.leaves))
	var check func(n *node) error
	check = func(n *node) error {
		if n.hasCenter != (n.weight != 0) {
			return errors.New(errors.ErrCodeGeometryMismatch, "node at %v: center presence disagrees with weight %g", n.rect, n.weight)
		}
		if n.kind == leafNode {
			id := n.module.ID
			if seen[id] {
				return errors.New(errors.ErrCodeGeometryMismatch, "module %q appears twice", id)
			}
			seen[id] = true
			if t.leaves[id] != n {
				return errors.New(errors.ErrCodeGeometryMismatch, "module %q is not indexed", id)
			}
			if !n.rect.SameSize(n.module.Rect) {
				return errors.New(errors.ErrCodeGeometryMismatch, "module %q resized from %v to %v", id, n.module.Rect, n.rect)
			}
			return nil
		}

		merged, err := n.mergedRect()
		if err != nil {
			return err
		}
		if merged != n.rect {
			return errors.New(errors.ErrCodeGeometryMismatch, "%s cut: rect %v, children span %v", n.split, n.rect, merged)
		}
		l, r := n.left.rect, n.right.rect
		var contiguous bool
		if n.split == SplitH {
			contiguous = l.X == r.X && l.Top() == r.Bottom()
		} else {
			contiguous = l.Y == r.Y && l.Right() == r.Left()
		}
		if !contiguous {
			return errors.New(errors.ErrCodeGeometryMismatch, "%s cut at %v: children %v and %v are not contiguous", n.split, n.rect, l, r)
		}
		if err := check(n.left); err != nil {
			return err
		}
		return check(n.right)
	}

	if err := check(t.root); err != nil {
		return err
	}
	if len(seen) != len(t.leaves) {
		return errors.New(errors.ErrCodeGeometryMismatch, "tree holds %d leaves, index holds %d", len(seen), len(t.leaves))
	}
	return nil
}
