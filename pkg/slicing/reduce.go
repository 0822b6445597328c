package slicing

import (
	"github.com/matzehuels/floorplanner/pkg/errors"
	"github.com/matzehuels/floorplanner/pkg/geometry"
)

// side is a destination a leaf can be pushed toward inside its subtree.
type side uint8

const (
	sideLeft side = iota
	sideRight
	sideBottom
	sideTop
)

// trailing reports whether the side is the far end of its axis.
func (s side) trailing() bool { return s == sideRight || s == sideTop }

// ReduceDistance rearranges the tree so the leaves of modules a and b end
// up next to each other. Only child order changes; no module is resized.
//
// The two leaves are located below their lowest common ancestor. If that
// ancestor is an H cut, the primary pass pushes the lower leaf to the top of
// its half and the upper leaf to the bottom of its half by swapping H cuts
// on the way, and two secondary passes push each leaf right across V cuts.
// A V cut is handled symmetrically: the primary pass pushes the leaves
// toward each other across V cuts, the secondary passes push each of them to
// the bottom across H cuts. The ancestor itself is never swapped, and
// coordinates below it are re-derived after every pass.
//
// A pass that would move the two leaves' centers farther apart is undone.
// The passes are repeated until a round keeps no swap: each pass turns its
// own set of cuts toward a fixed side and no two passes share a cut, so a
// pass is kept at most once and the rounds end. The pair's distance never
// grows, and calling again with the same arguments swaps nothing.
//
// ReduceDistance fails with NOT_FOUND if either module is not in the tree
// and with INVALID_INPUT if a and b are the same module.
func (t *Tree) ReduceDistance(a, b string) (Result, error) {
	if a == b {
		return Result{}, errors.New(errors.ErrCodeInvalidInput, "cannot reduce distance of module %q to itself", a)
	}
	pa, ok := findPath(t.root, a, nil)
	if !ok {
		return Result{}, errors.New(errors.ErrCodeNotFound, "module %q is not in the floorplan", a)
	}
	pb, ok := findPath(t.root, b, nil)
	if !ok {
		return Result{}, errors.New(errors.ErrCodeNotFound, "module %q is not in the floorplan", b)
	}

	i := 0
	for i+1 < len(pa) && i+1 < len(pb) && pa[i+1] == pb[i+1] {
		i++
	}
	lca := pa[i]
	pa, pb = pa[i:], pb[i:]
	la, lb := pa[len(pa)-1], pb[len(pb)-1]

	primary, secondary, across := SplitV, SplitH, sideBottom
	destA, destB := sideRight, sideLeft
	posA, posB := la.rect.X, lb.rect.X
	if lca.split == SplitH {
		primary, secondary, across = SplitH, SplitV, sideRight
		destA, destB = sideTop, sideBottom
		posA, posB = la.rect.Y, lb.rect.Y
	}
	if posA > posB {
		destA, destB = destB, destA
	}

	passes := []func() int{
		func() int {
			if posA == posB {
				return 0
			}
			return moveToSide(pa, destA, primary) + moveToSide(pb, destB, primary)
		},
		func() int { return moveToSide(pa, across, secondary) },
		func() int { return moveToSide(pb, across, secondary) },
	}

	start := t.saveOrder()
	defer t.markSwapped(start)

	var res Result
	for {
		kept := 0
		for _, pass := range passes {
			before := t.saveOrder()
			d := leafDistance(la, lb)
			n := pass()
			if n == 0 {
				continue
			}
			lca.recalculateTree()
			if leafDistance(la, lb) <= d {
				kept += n
				continue
			}
			t.restoreOrder(before)
		}
		res.Swaps += kept
		if kept == 0 {
			return res, nil
		}
	}
}

func leafDistance(a, b *node) float64 {
	return geometry.Distance(a.rect.Center(), b.rect.Center())
}

// moveToSide walks path (lowest common ancestor first, leaf last) from the
// leaf upward and swaps every cut of the given split whose child on the path
// sits on the wrong side for dest. The ancestor at path[0] is left alone.
// It returns the number of swaps.
func moveToSide(path []*node, dest side, split Split) int {
	if len(path) < 3 {
		return 0
	}
	swaps := 0
	onTrailing := path[len(path)-2].isTrailing(path[len(path)-1])
	for i := len(path) - 2; i >= 1; i-- {
		n := path[i]
		if n.split == split && onTrailing != dest.trailing() {
			n.swapChildren()
			swaps++
		}
		onTrailing = path[i-1].isTrailing(n)
	}
	return swaps
}
