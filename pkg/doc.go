// Package pkg provides the core libraries of floorplanner, a slicing-tree
// floorplanning engine.
//
// # Overview
//
// floorplanner takes a set of axis-aligned rectangular modules that tile a
// chip, represents them as a slicing tree of horizontal and vertical cuts,
// and rearranges the tree by swapping cut children. Two optimizations are
// available: net migration pulls the weighted center of a net toward a
// target point, and distance reduction brings two modules next to each
// other. No module is ever resized.
//
// The pkg directory is organized into these areas:
//
//  1. [geometry] and [floorplan] - Points, rectangles and the module model
//  2. [slicing] - Tree construction, net migration and distance reduction
//  3. [io] - Module list text and JSON layout serialization
//  4. [render] - SVG, PDF and PNG drawings of a layout
//  5. [pipeline] - Orchestration (parse → layout → render) with caching
//  6. [cache], [config], [observability], [errors] - Infrastructure
//
// # Architecture
//
// The typical data flow:
//
//	Module list (text file or API request)
//	         ↓
//	    [io] package (parse into a validated design)
//	         ↓
//	    [slicing] package (build the tree, migrate or reduce)
//	         ↓
//	    [io] Layout snapshot
//	         ↓
//	    [render] package / [io] writers
//	         ↓
//	    SVG/PDF/PNG/JSON/text/DOT output
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/floorplanner/pkg/geometry"
//	    "github.com/matzehuels/floorplanner/pkg/io"
//	    "github.com/matzehuels/floorplanner/pkg/slicing"
//	)
//
//	design, _ := io.ImportModules("chip.txt")
//	tree, _ := slicing.Build(design.Modules)
//	res, _ := tree.ApplyNetMigration(design.Net(), geometry.Pt(0, 0))
//	fmt.Println(res.Swaps, tree)
//	_ = io.ExportFloorplan(tree, "chip.out.txt")
//
// Or run the full pipeline with caching:
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, _ := runner.Execute(ctx, pipeline.Options{
//	    Path:      "chip.txt",
//	    Operation: pipeline.OpMigrate,
//	    Formats:   []string{"svg", "txt"},
//	})
//
// [geometry]: github.com/matzehuels/floorplanner/pkg/geometry
// [floorplan]: github.com/matzehuels/floorplanner/pkg/floorplan
// [slicing]: github.com/matzehuels/floorplanner/pkg/slicing
// [io]: github.com/matzehuels/floorplanner/pkg/io
// [render]: github.com/matzehuels/floorplanner/pkg/render
// [pipeline]: github.com/matzehuels/floorplanner/pkg/pipeline
// [cache]: github.com/matzehuels/floorplanner/pkg/cache
// [config]: github.com/matzehuels/floorplanner/pkg/config
// [observability]: github.com/matzehuels/floorplanner/pkg/observability
// [errors]: github.com/matzehuels/floorplanner/pkg/errors
package pkg
