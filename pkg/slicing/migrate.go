package slicing

import (
	"github.com/matzehuels/floorplanner/pkg/errors"
	"github.com/matzehuels/floorplanner/pkg/geometry"
)

// Result summarizes one layout-editing call.
type Result struct {
	Swaps int // number of child swaps committed
}

// ApplyNetMigration pulls the net toward target by reordering children of
// internal nodes. Module sizes and the tree's bounds never change.
//
// The net is the set of module IDs mapped to true. Each leaf in the net
// weighs its area; every internal node carries the weighted center of the
// net members below it. A pass has two halves. The post-order half decides,
// per node, whether swapping its children brings that center strictly
// closer to target and commits the swap if so. The pre-order half then
// re-derives absolute coordinates from the root down, repeats the decision
// wherever an ancestor's swap moved the node and refreshes each center from
// its children on the way back up. Ties keep the current order.
//
// Passes repeat while they commit swaps and strictly reduce the distance
// between the net center (see NetCenter) and target. A pass that does not is
// undone, so the net center never ends up farther from target than it
// started, and calling again with the same arguments swaps nothing. Every
// kept pass lowers the distance, so no order is visited twice and the loop
// ends.
//
// ApplyNetMigration fails with NOT_FOUND, before touching the tree, if a
// net member is not a leaf of the tree. A GEOMETRY_MISMATCH error leaves
// swaps committed earlier in the same call in place.
func (t *Tree) ApplyNetMigration(net map[string]bool, target geometry.Point) (Result, error) {
	for id, in := range net {
		if _, ok := t.leaves[id]; in && !ok {
			return Result{}, errors.New(errors.ErrCodeNotFound, "net member %q is not in the floorplan", id)
		}
	}

	start := t.saveOrder()
	defer t.markSwapped(start)

	var res Result
	best, ok := t.netDistance(net, target)
	for ok {
		before := t.saveOrder()
		m := &migration{net: net, target: target}
		if err := m.up(t.root); err != nil {
			res.Swaps += m.swaps
			return res, err
		}
		m.down(t.root)
		if m.swaps == 0 {
			break
		}
		if d, _ := t.netDistance(net, target); d < best {
			best = d
			res.Swaps += m.swaps
			continue
		}
		t.restoreOrder(before)
		break
	}

	(&migration{net: net}).settle(t.root)
	return res, nil
}

type migration struct {
	net    map[string]bool
	target geometry.Point
	swaps  int
}

// weigh sets a leaf's weight and center from its module.
func (m *migration) weigh(n *node) {
	if m.net[n.module.ID] {
		n.weight = n.rect.Area()
		n.setCenter(n.rect.Center())
		return
	}
	n.weight = 0
	n.clearCenter()
}

func (m *migration) up(n *node) error {
	if n.kind == leafNode {
		m.weigh(n)
		return nil
	}

	if err := m.up(n.left); err != nil {
		return err
	}
	if err := m.up(n.right); err != nil {
		return err
	}

	r, err := n.mergedRect()
	if err != nil {
		return err
	}
	n.rect = r
	n.weight = n.left.weight + n.right.weight
	if n.weight == 0 {
		n.clearCenter()
		return nil
	}
	m.decide(n)
	return nil
}

func (m *migration) down(n *node) {
	if n.kind == leafNode {
		return
	}
	n.recalculateChildrenCoords()
	if n.weight == 0 {
		// Nothing to optimize below, but descendants may still sit where a
		// swap higher up left them.
		n.left.recalculateTree()
		n.right.recalculateTree()
		return
	}
	m.decide(n)
	m.down(n.left)
	m.down(n.right)
	if c, ok := n.mergedCenter(); ok {
		n.setCenter(c)
	}
}

// decide swaps n's children when that moves n's center strictly closer to
// the target, and records the resulting center.
func (m *migration) decide(n *node) {
	merged, _ := n.mergedCenter()
	swapped, _ := n.swappedCenter()
	if geometry.Distance(swapped, m.target) < geometry.Distance(merged, m.target) {
		n.swapChildren()
		n.setCenter(swapped)
		m.swaps++
		return
	}
	n.setCenter(merged)
}

// settle recomputes weights and centers bottom-up from the current
// geometry without changing any order.
func (m *migration) settle(n *node) {
	if n.kind == leafNode {
		m.weigh(n)
		return
	}
	m.settle(n.left)
	m.settle(n.right)
	n.weight = n.left.weight + n.right.weight
	if c, ok := n.mergedCenter(); ok {
		n.setCenter(c)
	} else {
		n.clearCenter()
	}
}

func (t *Tree) netDistance(net map[string]bool, target geometry.Point) (float64, bool) {
	c, ok := t.NetCenter(net)
	if !ok {
		return 0, false
	}
	return geometry.Distance(c, target), true
}

// NetCenter returns the weighted center of the given net over the tree's
// current geometry, combining child centers the same way ApplyNetMigration
// does. It reports false when no module of the net is in the tree. The tree
// is not modified.
func (t *Tree) NetCenter(net map[string]bool) (geometry.Point, bool) {
	c, w := netCenter(t.root, net)
	return c, w != 0
}

func netCenter(n *node, net map[string]bool) (geometry.Point, float64) {
	if n.kind == leafNode {
		if net[n.module.ID] {
			return n.rect.Center(), n.rect.Area()
		}
		return geometry.Point{}, 0
	}
	cl, wl := netCenter(n.left, net)
	cr, wr := netCenter(n.right, net)
	c, _ := blendCenters(cl, cr, wl, wr)
	return c, wl + wr
}
