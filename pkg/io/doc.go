// Package io reads and writes floorplans: the plain-text module list that
// designs are exchanged in, and a JSON layout snapshot of a slicing tree.
//
// # Module List Format
//
// One module per line, four numbers and an optional sign:
//
//	x y width height [+|-]
//
// Coordinates are non-negative decimals with y growing upward. A sign marks
// the module as a net member ("+" positive, "-" negative polarity). Blank
// lines are ignored. Modules are identified by their 1-based position among
// the non-blank lines:
//
//	0 0 2 2 +
//	2 0 2 2
//	0 2 2 2
//	2 2 2 2 -
//
// Use [ImportModules] or [ReadModules] to load a design, and
// [WriteFloorplan] to write the modules of a tree back in tree order:
//
//	design, err := io.ImportModules("chip.txt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tree, err := slicing.Build(design.Modules)
//	...
//	err = io.ExportFloorplan(tree, "chip.out.txt")
//
// Written numbers use their shortest exact decimal form, so reading a
// written file reproduces the module rectangles exactly.
//
// # JSON Layout
//
// [NewLayout] snapshots a tree for renderers, caches and the HTTP API:
//
//	{
//	  "x": 0, "y": 0, "width": 4, "height": 4,
//	  "shape": "V(H(1,3),H(2,4))",
//	  "modules": [{"id": "1", "x": 0, "y": 0, "width": 2, "height": 2, "net": true, "sign": "+"}],
//	  "cuts": [{"x": 0, "y": 0, "width": 4, "height": 4, "split": "V", "depth": 0}]
//	}
//
// Cuts are listed in pre-order and flag the ones swapped by the last edit.
// [Layout.Tree] rebuilds a tree with identical module positions.
package io
