package pipeline

import (
	"bytes"
	"fmt"

	pkgio "github.com/matzehuels/floorplanner/pkg/io"
	"github.com/matzehuels/floorplanner/pkg/render"
	"github.com/matzehuels/floorplanner/pkg/slicing"
)

// Render produces one artifact per requested format. tree is only needed
// for the DOT format; when nil it is rebuilt from the layout.
func Render(tree *slicing.Tree, layout pkgio.Layout, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := renderFormat(tree, layout, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderFormat(tree *slicing.Tree, layout pkgio.Layout, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		return render.RenderSVG(layout, opts.RenderOptions())
	case FormatPDF:
		return render.RenderPDF(layout, opts.RenderOptions())
	case FormatPNG:
		return render.RenderPNG(layout, opts.RenderOptions())
	case FormatJSON:
		return pkgio.MarshalLayout(layout)
	case FormatText:
		mods, err := layout.FloorplanModules()
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := pkgio.WriteModules(&buf, mods); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatDOT:
		if tree == nil {
			t, err := layout.Tree()
			if err != nil {
				return nil, err
			}
			tree = t
		}
		return []byte(tree.ToDOT()), nil
	default:
		return nil, ValidateFormat(format)
	}
}
