package slicing

import (
	"strings"

	"github.com/matzehuels/floorplanner/pkg/errors"
	"github.com/matzehuels/floorplanner/pkg/floorplan"
	"github.com/matzehuels/floorplanner/pkg/geometry"
)

// Split is the cut direction of an internal node.
type Split uint8

const (
	// SplitH stacks the children vertically: left is the bottom child,
	// right is the top child. Both children have the same width.
	SplitH Split = iota + 1
	// SplitV places the children side by side: left is the left child,
	// right is the right child. Both children have the same height.
	SplitV
)

func (s Split) String() string {
	switch s {
	case SplitH:
		return "H"
	case SplitV:
		return "V"
	}
	return "?"
}

// Tree is a slicing floorplan: a strictly binary tree whose leaves are the
// input modules and whose internal nodes are horizontal or vertical cuts.
//
// Tree is not safe for concurrent use. Every exported method runs to
// completion before returning and leaves the tree geometrically consistent
// unless it reports an error.
//
// The zero value of Tree is not usable; use Build to create instances.
type Tree struct {
	root   *node
	leaves map[string]*node
}

type nodeKind uint8

const (
	leafNode nodeKind = iota
	internalNode
)

type node struct {
	kind nodeKind
	rect geometry.Rect

	// weight is the summed area of net members below this node during the
	// last migration; center is only meaningful when hasCenter is set, which
	// is exactly when weight is non-zero.
	weight    float64
	center    geometry.Point
	hasCenter bool

	// leaf only
	module floorplan.Module

	// internal only
	left, right *node
	split       Split
	swapped     bool
}

func newLeaf(m floorplan.Module) *node {
	return &node{kind: leafNode, rect: m.Rect, module: m}
}

func newInternal(split Split, left, right *node) (*node, error) {
	n := &node{kind: internalNode, split: split, left: left, right: right}
	r, err := n.mergedRect()
	if err != nil {
		return nil, err
	}
	n.rect = r
	return n, nil
}

// mergedRect recomputes the rectangle spanned by the current children. The
// children must agree on the dimension they share.
func (n *node) mergedRect() (geometry.Rect, error) {
	l, r := n.left.rect, n.right.rect
	switch n.split {
	case SplitH:
		if l.Width != r.Width {
			return geometry.Rect{}, errors.New(errors.ErrCodeGeometryMismatch,
				"H cut at %v: child widths differ (%g != %g)", n.rect, l.Width, r.Width)
		}
		return geometry.R(l.X, l.Y, l.Width, l.Height+r.Height), nil
	default:
		if l.Height != r.Height {
			return geometry.Rect{}, errors.New(errors.ErrCodeGeometryMismatch,
				"V cut at %v: child heights differ (%g != %g)", n.rect, l.Height, r.Height)
		}
		return geometry.R(l.X, l.Y, l.Width+r.Width, l.Height), nil
	}
}

// shift translates the node's own rectangle and center. Descendants are
// not touched.
func (n *node) shift(dx, dy float64) {
	n.rect = n.rect.Translate(dx, dy)
	if n.hasCenter {
		n.center = n.center.Add(dx, dy)
	}
}

func (n *node) moveTo(x, y float64) {
	n.shift(x-n.rect.X, y-n.rect.Y)
}

func (n *node) setCenter(p geometry.Point) {
	n.center, n.hasCenter = p, true
}

func (n *node) clearCenter() {
	n.center, n.hasCenter = geometry.Point{}, false
}

// swapChildren exchanges the children and patches their positions so the
// node's own rectangle stays covered. Grandchildren keep stale coordinates
// until the next recalculation.
func (n *node) swapChildren() {
	n.left, n.right = n.right, n.left
	n.swapped = true
	if n.split == SplitV {
		n.left.shift(-n.right.rect.Width, 0)
		n.right.shift(n.left.rect.Width, 0)
	} else {
		n.left.shift(0, -n.right.rect.Height)
		n.right.shift(0, n.left.rect.Height)
	}
}

// recalculateChildrenCoords places both children from this node's origin,
// the second child offset by the first child's extent along the cut.
func (n *node) recalculateChildrenCoords() {
	n.left.moveTo(n.rect.X, n.rect.Y)
	if n.split == SplitV {
		n.right.moveTo(n.rect.X+n.left.rect.Width, n.rect.Y)
	} else {
		n.right.moveTo(n.rect.X, n.rect.Y+n.left.rect.Height)
	}
}

// recalculateTree re-derives absolute coordinates of every node below n.
func (n *node) recalculateTree() {
	if n.kind == leafNode {
		return
	}
	n.recalculateChildrenCoords()
	n.left.recalculateTree()
	n.right.recalculateTree()
}

// isTrailing reports whether child is on the trailing side of n: the right
// side of a V cut or the top side of an H cut.
func (n *node) isTrailing(child *node) bool {
	if n.split == SplitV {
		return n.rect.Right() == child.rect.Right()
	}
	return n.rect.Top() == child.rect.Top()
}

// mergedCenter returns the weighted center of the children in their
// current order.
func (n *node) mergedCenter() (geometry.Point, bool) {
	return blendCenters(n.left.center, n.right.center, n.left.weight, n.right.weight)
}

// swappedCenter returns the center n would have after swapChildren, without
// mutating anything.
func (n *node) swappedCenter() (geometry.Point, bool) {
	l, r := n.right.center, n.left.center
	if n.split == SplitV {
		l = l.Add(-n.left.rect.Width, 0)
		r = r.Add(n.right.rect.Width, 0)
	} else {
		l = l.Add(0, -n.left.rect.Height)
		r = r.Add(0, n.right.rect.Height)
	}
	return blendCenters(l, r, n.right.weight, n.left.weight)
}

// blendCenters places the combined center on the segment between the two
// child centers. Starting from the greater coordinate on each axis it moves
// toward the smaller one by length*wl/(wl+wr), scaled to that axis. A side
// with zero weight contributes nothing and the other center is returned as
// is.
func blendCenters(cl, cr geometry.Point, wl, wr float64) (geometry.Point, bool) {
	switch {
	case wl == 0 && wr == 0:
		return geometry.Point{}, false
	case wl == 0:
		return cr, true
	case wr == 0:
		return cl, true
	}
	length := geometry.Distance(cl, cr)
	if length == 0 {
		return cl, true
	}
	d := length * wl / (wl + wr)
	maxX, minX := max(cl.X, cr.X), min(cl.X, cr.X)
	maxY, minY := max(cl.Y, cr.Y), min(cl.Y, cr.Y)
	return geometry.Point{
		X: maxX - d*(maxX-minX)/length,
		Y: maxY - d*(maxY-minY)/length,
	}, true
}

// Len returns the number of leaves.
func (t *Tree) Len() int { return len(t.leaves) }

// Bounds returns the rectangle covered by the whole tree.
func (t *Tree) Bounds() geometry.Rect { return t.root.rect }

// Rect returns the current rectangle of the module with the given ID.
func (t *Tree) Rect(id string) (geometry.Rect, bool) {
	n, ok := t.leaves[id]
	if !ok {
		return geometry.Rect{}, false
	}
	return n.rect, true
}

// Depth returns the number of edges on the longest root-to-leaf path.
func (t *Tree) Depth() int { return depth(t.root) }

func depth(n *node) int {
	if n.kind == leafNode {
		return 0
	}
	return 1 + max(depth(n.left), depth(n.right))
}

// String returns the tree shape in prefix notation, for example
// "V(H(1,3),H(2,4))".
func (t *Tree) String() string {
	var sb strings.Builder
	writeShape(&sb, t.root)
	return sb.String()
}

func writeShape(sb *strings.Builder, n *node) {
	if n.kind == leafNode {
		sb.WriteString(n.module.ID)
		return
	}
	sb.WriteString(n.split.String())
	sb.WriteByte('(')
	writeShape(sb, n.left)
	sb.WriteByte(',')
	writeShape(sb, n.right)
	sb.WriteByte(')')
}

// childOrder records the first child of every cut.
type childOrder map[*node]*node

func (t *Tree) saveOrder() childOrder {
	o := make(childOrder)
	walk(t.root, func(n *node) {
		if n.kind == internalNode {
			o[n] = n.left
		}
	})
	return o
}

// restoreOrder puts the children of every cut back in the recorded order and
// re-derives all coordinates from the root.
func (t *Tree) restoreOrder(o childOrder) {
	walk(t.root, func(n *node) {
		if n.kind == internalNode && n.left != o[n] {
			n.left, n.right = n.right, n.left
		}
	})
	t.root.recalculateTree()
}

// markSwapped flags exactly the cuts whose children are no longer in the
// recorded order.
func (t *Tree) markSwapped(o childOrder) {
	walk(t.root, func(n *node) {
		n.swapped = n.kind == internalNode && n.left != o[n]
	})
}

// walk visits every node in pre-order.
func walk(n *node, fn func(*node)) {
	fn(n)
	if n.kind == internalNode {
		walk(n.left, fn)
		walk(n.right, fn)
	}
}

// findPath returns the nodes from n down to the leaf holding id, inclusive.
func findPath(n *node, id string, path []*node) ([]*node, bool) {
	path = append(path, n)
	if n.kind == leafNode {
		return path, n.module.ID == id
	}
	if p, ok := findPath(n.left, id, path); ok {
		return p, true
	}
	return findPath(n.right, id, path)
}
