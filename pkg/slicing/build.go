package slicing

import (
	"cmp"
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/matzehuels/floorplanner/pkg/errors"
	"github.com/matzehuels/floorplanner/pkg/floorplan"
	"github.com/matzehuels/floorplanner/pkg/geometry"
)

// Build reconstructs the slicing tree of a module set that tiles a
// rectangle without gaps or overlaps.
//
// Build alternates two sweeps until a single node remains. The first groups
// pending nodes by left edge and, within each group in bottom-to-top order,
// merges vertically adjacent neighbours into H cuts. The second groups the
// survivors by bottom edge and merges horizontally adjacent neighbours into V
// cuts in left-to-right order.
//
// The sweeps merge the first adjacent pair they meet, which can glue two
// modules across a line that a later cut needs. When a round merges nothing,
// Build discards the partial merges and carves the modules' bounding box
// top-down instead, splitting every region along a line that no module
// straddles. Only when that also fails do the modules not form a sliceable
// dissection; Build then fails with BUILD_FAILURE and returns no tree.
// Duplicate IDs or non-positive sizes fail with INVALID_INPUT.
//
// The modules slice is not modified. Leaves hold copies of the modules.
func Build(modules []floorplan.Module) (*Tree, error) {
	if len(modules) == 0 {
		return nil, errors.New(errors.ErrCodeBuildFailure, "no modules to build from")
	}
	if err := (&floorplan.Design{Modules: modules}).Validate(); err != nil {
		return nil, err
	}

	t := &Tree{leaves: make(map[string]*node, len(modules))}
	leaves := make([]*node, len(modules))
	for i, m := range modules {
		leaves[i] = newLeaf(m)
		t.leaves[m.ID] = leaves[i]
	}
	live := slices.Clone(leaves)

	for len(live) > 1 {
		var mergedH, mergedV int
		var err error

		live, mergedH, err = sweep(live, SplitH)
		if err != nil {
			return nil, err
		}
		if len(live) == 1 {
			break
		}

		live, mergedV, err = sweep(live, SplitV)
		if err != nil {
			return nil, err
		}

		if mergedH+mergedV == 0 {
			root, err := carve(extent(leaves), leaves)
			if err != nil {
				return nil, err
			}
			t.root = root
			return t, nil
		}
	}

	t.root = live[0]
	return t, nil
}

// sweep buckets nodes by their leading coordinate across the cut (left edge
// for H, bottom edge for V), orders each bucket along the cut, and folds
// adjacent runs into new internal nodes. It returns the surviving nodes in
// bucket order and the number of merges performed.
func sweep(nodes []*node, split Split) ([]*node, int, error) {
	key, along := geometry.Rect.Left, geometry.Rect.Bottom
	if split == SplitV {
		key, along = geometry.Rect.Bottom, geometry.Rect.Left
	}

	buckets := make(map[float64][]*node)
	for _, n := range nodes {
		k := key(n.rect)
		buckets[k] = append(buckets[k], n)
	}

	out := make([]*node, 0, len(nodes))
	merged := 0
	for _, k := range slices.Sorted(maps.Keys(buckets)) {
		run := buckets[k]
		slices.SortStableFunc(run, func(a, b *node) int {
			return cmp.Compare(along(a.rect), along(b.rect))
		})

		cur := run[0]
		for _, next := range run[1:] {
			if !adjacent(cur.rect, next.rect, split) {
				out = append(out, cur)
				cur = next
				continue
			}
			n, err := newInternal(split, cur, next)
			if err != nil {
				return nil, 0, err
			}
			cur = n
			merged++
		}
		out = append(out, cur)
	}
	return out, merged, nil
}

// adjacent reports whether b directly continues a across the given cut:
// stacked on top with the same x-span for H, or to the right with the same
// y-span for V.
func adjacent(a, b geometry.Rect, split Split) bool {
	if split == SplitH {
		return a.Left() == b.Left() && a.Right() == b.Right() && a.Top() == b.Bottom()
	}
	return a.Bottom() == b.Bottom() && a.Top() == b.Top() && a.Right() == b.Left()
}

// region is an axis-aligned area given by its edges, so that splitting it
// never has to subtract coordinates.
type region struct {
	x0, y0, x1, y1 float64
}

func (r region) String() string {
	return fmt.Sprintf("[%g,%g]x[%g,%g]", r.x0, r.x1, r.y0, r.y1)
}

func extent(nodes []*node) region {
	r := region{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	for _, n := range nodes {
		r.x0 = min(r.x0, n.rect.Left())
		r.y0 = min(r.y0, n.rect.Bottom())
		r.x1 = max(r.x1, n.rect.Right())
		r.y1 = max(r.y1, n.rect.Top())
	}
	return r
}

// carve builds the subtree covering reg from nodes. It tries vertical lines
// first, then horizontal ones, each in increasing order, and splits at the
// first line that no node straddles. In a valid dissection any such line
// leaves two valid dissections behind, so the first one found is as good as
// any other. A single node must fill its region exactly.
func carve(reg region, nodes []*node) (*node, error) {
	if len(nodes) == 1 {
		n := nodes[0]
		if (region{n.rect.Left(), n.rect.Bottom(), n.rect.Right(), n.rect.Top()}) != reg {
			return nil, errors.New(errors.ErrCodeBuildFailure,
				"modules do not form a sliceable dissection: module %s at %v does not fill %v", n.module.ID, n.rect, reg)
		}
		return n, nil
	}

	for _, split := range []Split{SplitV, SplitH} {
		lo, hi := geometry.Rect.Left, geometry.Rect.Right
		from, to := reg.x0, reg.x1
		if split == SplitH {
			lo, hi = geometry.Rect.Bottom, geometry.Rect.Top
			from, to = reg.y0, reg.y1
		}

		var lines []float64
		for _, n := range nodes {
			if c := lo(n.rect); c > from && c < to {
				lines = append(lines, c)
			}
		}
		slices.Sort(lines)

		for _, at := range slices.Compact(lines) {
			first, second, ok := partition(nodes, at, lo, hi)
			if !ok {
				continue
			}
			ra, rb := reg, reg
			if split == SplitV {
				ra.x1, rb.x0 = at, at
			} else {
				ra.y1, rb.y0 = at, at
			}
			left, err := carve(ra, first)
			if err != nil {
				return nil, err
			}
			right, err := carve(rb, second)
			if err != nil {
				return nil, err
			}
			return newInternal(split, left, right)
		}
	}
	return nil, errors.New(errors.ErrCodeBuildFailure,
		"modules do not form a sliceable dissection: no cut runs through %v (%d modules)", reg, len(nodes))
}

// partition splits nodes into those ending at or before the line and those
// starting at or after it. It reports false if a node straddles the line.
func partition(nodes []*node, at float64, lo, hi func(geometry.Rect) float64) (before, after []*node, ok bool) {
	for _, n := range nodes {
		switch {
		case hi(n.rect) <= at:
			before = append(before, n)
		case lo(n.rect) >= at:
			after = append(after, n)
		default:
			return nil, nil, false
		}
	}
	return before, after, true
}
