// Package slicing implements the slicing-tree engine: reconstruction of a
// slicing floorplan from absolute module rectangles, and two editing
// algorithms that restructure the tree while keeping it sliceable and
// gap-free.
//
// # Overview
//
// A slicing floorplan is a rectangle recursively divided by horizontal or
// vertical cuts, each producing exactly two sub-rectangles. The [Tree] type
// represents it as a strictly binary tree: leaves are modules and internal
// nodes are cuts. Module sizes never change; only the order of children
// (and therefore the absolute positions derived from it) does.
//
// # Building
//
// [Build] takes an unordered module list that tiles a rectangle and merges
// neighbours in alternating sweeps, falling back to a top-down search for
// full-length cuts when the sweeps stall:
//
//	tree, err := slicing.Build(design.Modules)
//	if errors.Is(err, errors.ErrCodeBuildFailure) {
//	    // the modules leave a gap, overlap, or are not sliceable
//	}
//
// For every valid input the leaves of the result carry the input rectangles
// exactly, and the root covers the bounding rectangle.
//
// # Net Migration
//
// [Tree.ApplyNetMigration] moves a weighted subset of modules toward a
// target point. Each net member weighs its area; a cut's center is the
// blend of its children's centers along the segment joining them. Swaps are
// only committed when they bring the center strictly closer to the target,
// first bottom-up and then again top-down once ancestor positions are final.
// Passes repeat until the net center stops moving closer, so the distance to
// the target never grows and a second identical call is a no-op.
//
// # Distance Reduction
//
// [Tree.ReduceDistance] pulls two modules next to each other by swapping
// cuts on the paths from their lowest common ancestor down to each leaf.
// Passes that would pull the pair apart are undone.
//
// # Exports
//
// [Tree.Leaves] and [Tree.Diagnostics] feed renderers and writers;
// [Tree.Check] verifies the geometric invariants; [Tree.ToDOT] and
// [Tree.RenderSVG] draw the tree structure with Graphviz.
//
// # Failure
//
// Editing calls are not transactional. If an edit fails with
// GEOMETRY_MISMATCH, swaps committed earlier in the same call stay in the
// tree.
package slicing
