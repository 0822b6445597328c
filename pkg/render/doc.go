// Package render draws floorplans.
//
// # Overview
//
// [Draw] paints an [io.Layout] onto a tdewolff/canvas drawing: every module
// as a filled rectangle, net members highlighted by polarity, optional
// module labels, the slicing cuts as dashed lines (cuts swapped by the last
// edit in orange), the net center and the migration target.
//
// The canvas uses millimetres with the origin at the bottom left, the same
// orientation as floorplan coordinates, so the layout is only scaled and
// offset to fit the requested frame.
//
// # Output Formats
//
//	svg, err := render.RenderSVG(layout, render.Options{})
//	pdf, err := render.RenderPDF(layout, render.Options{})
//	png, err := render.RenderPNG(layout, render.Options{Scale: 4})
//
// SVG and PDF are vector output. PNG is rasterized at Scale pixels per
// millimetre.
//
// # Labels
//
// Labels need a font. By default a sans-serif system font is looked up
// through [fonts.Default]; when none is installed labels are skipped. Set
// [Options.FontFile] to use a specific TTF/OTF file instead.
//
// [io.Layout]: github.com/matzehuels/floorplanner/pkg/io.Layout
// [fonts.Default]: github.com/matzehuels/floorplanner/pkg/fonts.Default
package render
