package render

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"math"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"

	"github.com/matzehuels/floorplanner/pkg/errors"
	"github.com/matzehuels/floorplanner/pkg/fonts"
	"github.com/matzehuels/floorplanner/pkg/geometry"
	pkgio "github.com/matzehuels/floorplanner/pkg/io"
)

const (
	// DefaultWidth is the default frame width in millimetres.
	DefaultWidth = 200.0

	// DefaultHeight is the default frame height in millimetres.
	DefaultHeight = 150.0

	// DefaultMargin is the default blank border in millimetres.
	DefaultMargin = 5.0

	// DefaultScale is the default PNG resolution in pixels per millimetre.
	DefaultScale = 4.0

	strokeWidth = 0.3
	markerSize  = 1.5
	mmToPt      = 72 / 25.4
	maxLabelPt  = 10.0
)

var (
	colorBackground = canvas.White
	colorModule     = canvas.Hex("#e5e5e5")
	colorPositive   = canvas.Hex("#9ecae1")
	colorNegative   = canvas.Hex("#fdae6b")
	colorStroke     = canvas.Hex("#333333")
	colorCut        = canvas.Hex("#7f7f7f")
	colorSwapped    = canvas.Hex("#ff8c00")
	colorCenter     = canvas.Hex("#1f77b4")
	colorTarget     = canvas.Hex("#d62728")
	colorLabel      = canvas.Hex("#1a1a1a")
)

// Options configures drawing. Zero values select the defaults.
type Options struct {
	Width    float64 // maximum frame width in mm
	Height   float64 // maximum frame height in mm
	Margin   float64 // border around the floorplan in mm, negative for none
	Scale    float64 // PNG pixels per mm
	Labels   bool    // print module IDs
	Cuts     bool    // draw the slicing cuts
	FontFile string  // label font; system font when empty
}

// SetDefaults fills zero-valued fields.
func (o *Options) SetDefaults() {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Margin < 0 {
		o.Margin = 0
	} else if o.Margin == 0 {
		o.Margin = DefaultMargin
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
}

// frame maps floorplan coordinates onto the canvas.
type frame struct {
	origin geometry.Point
	scale  float64
	margin float64
}

func (f frame) point(p geometry.Point) (float64, float64) {
	return f.margin + (p.X-f.origin.X)*f.scale, f.margin + (p.Y-f.origin.Y)*f.scale
}

func (f frame) rect(r geometry.Rect) (x, y, w, h float64) {
	x, y = f.point(r.Origin())
	return x, y, r.Width * f.scale, r.Height * f.scale
}

// Draw paints l onto a new canvas sized to fit opts.
func Draw(l pkgio.Layout, opts Options) (*canvas.Canvas, error) {
	opts.SetDefaults()
	if len(l.Modules) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "layout has no modules")
	}

	view := l.Bounds()
	if l.Target != nil {
		view = view.Union(geometry.Rect{X: l.Target.X, Y: l.Target.Y})
	}
	if view.Width <= 0 || view.Height <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "layout has empty bounds %v", view)
	}

	avail := geometry.Pt(opts.Width-2*opts.Margin, opts.Height-2*opts.Margin)
	if avail.X <= 0 || avail.Y <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "margin %g leaves no room in a %gx%g frame", opts.Margin, opts.Width, opts.Height)
	}
	f := frame{
		origin: view.Origin(),
		scale:  math.Min(avail.X/view.Width, avail.Y/view.Height),
		margin: opts.Margin,
	}

	width := view.Width*f.scale + 2*opts.Margin
	height := view.Height*f.scale + 2*opts.Margin
	c := canvas.New(width, height)
	ctx := canvas.NewContext(c)

	ctx.SetFillColor(colorBackground)
	ctx.SetStrokeColor(canvas.Transparent)
	ctx.DrawPath(0, 0, canvas.Rectangle(width, height))

	drawModules(ctx, f, l.Modules)
	if opts.Cuts {
		drawCuts(ctx, f, l.Cuts)
	}
	if opts.Labels {
		family, err := labelFamily(opts.FontFile)
		if err != nil && opts.FontFile != "" {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "label font")
		}
		if family != nil {
			drawLabels(ctx, f, family, l.Modules)
		}
	}
	if l.Center != nil {
		drawMarker(ctx, f, l.Center.Geometry(), colorCenter, false)
	}
	if l.Target != nil {
		drawMarker(ctx, f, l.Target.Geometry(), colorTarget, true)
	}
	return c, nil
}

func moduleColor(m pkgio.LayoutModule) color.RGBA {
	switch {
	case m.Sign == "-":
		return colorNegative
	case m.Net:
		return colorPositive
	default:
		return colorModule
	}
}

func drawModules(ctx *canvas.Context, f frame, mods []pkgio.LayoutModule) {
	ctx.SetStrokeColor(colorStroke)
	ctx.SetStrokeWidth(strokeWidth)
	for _, m := range mods {
		x, y, w, h := f.rect(geometry.R(m.X, m.Y, m.Width, m.Height))
		ctx.SetFillColor(moduleColor(m))
		ctx.DrawPath(x, y, canvas.Rectangle(w, h))
	}
}

func drawCuts(ctx *canvas.Context, f frame, cuts []pkgio.LayoutCut) {
	ctx.SetFillColor(canvas.Transparent)
	ctx.SetStrokeWidth(strokeWidth)
	ctx.SetDashes(0, 1.5, 1)
	defer ctx.SetDashes(0)

	for _, c := range cuts {
		if c.Swapped {
			ctx.SetStrokeColor(colorSwapped)
		} else {
			ctx.SetStrokeColor(colorCut)
		}
		from, to := geometry.Pt(c.X, c.At), geometry.Pt(c.X+c.Width, c.At)
		if c.Split == "V" {
			from, to = geometry.Pt(c.At, c.Y), geometry.Pt(c.At, c.Y+c.Height)
		}
		x1, y1 := f.point(from)
		x2, y2 := f.point(to)
		p := &canvas.Path{}
		p.MoveTo(0, 0)
		p.LineTo(x2-x1, y2-y1)
		ctx.DrawPath(x1, y1, p)
	}
}

func drawLabels(ctx *canvas.Context, f frame, family *canvas.FontFamily, mods []pkgio.LayoutModule) {
	for _, m := range mods {
		x, y, w, h := f.rect(geometry.R(m.X, m.Y, m.Width, m.Height))
		size := math.Min(maxLabelPt, math.Min(w, h)*0.4*mmToPt)
		if size < 2 {
			continue
		}
		face := family.Face(size, colorLabel, canvas.FontRegular, canvas.FontNormal)
		// Center the baseline on the module; 0.35 approximates half the cap height.
		ctx.DrawText(x+w/2, y+h/2-0.35*size/mmToPt, canvas.NewTextLine(face, m.ID, canvas.Center))
	}
}

func drawMarker(ctx *canvas.Context, f frame, p geometry.Point, col color.RGBA, cross bool) {
	x, y := f.point(p)
	ctx.SetStrokeColor(col)
	ctx.SetStrokeWidth(strokeWidth * 1.5)
	if cross {
		ctx.SetFillColor(canvas.Transparent)
		path := &canvas.Path{}
		path.MoveTo(-markerSize, -markerSize)
		path.LineTo(markerSize, markerSize)
		path.MoveTo(-markerSize, markerSize)
		path.LineTo(markerSize, -markerSize)
		ctx.DrawPath(x, y, path)
		return
	}
	ctx.SetFillColor(col)
	ctx.DrawPath(x-markerSize/2, y-markerSize/2, canvas.Circle(markerSize/2))
}

func labelFamily(path string) (*canvas.FontFamily, error) {
	if path != "" {
		return fonts.Load(path)
	}
	return fonts.Default()
}

// RenderSVG draws l as an SVG document.
func RenderSVG(l pkgio.Layout, opts Options) ([]byte, error) {
	c, err := Draw(l, opts)
	if err != nil {
		return nil, err
	}
	w, h := c.Size()
	var buf bytes.Buffer
	out := svg.New(&buf, w, h, nil)
	c.RenderTo(out)
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("write svg: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPDF draws l as a single-page PDF document.
func RenderPDF(l pkgio.Layout, opts Options) ([]byte, error) {
	c, err := Draw(l, opts)
	if err != nil {
		return nil, err
	}
	w, h := c.Size()
	var buf bytes.Buffer
	out := pdf.New(&buf, w, h, nil)
	out.SetInfo("Floorplan "+l.Shape, "", "", "", "floorplanner")
	c.RenderTo(out)
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPNG draws l as a PNG image at opts.Scale pixels per millimetre.
func RenderPNG(l pkgio.Layout, opts Options) ([]byte, error) {
	opts.SetDefaults()
	c, err := Draw(l, opts)
	if err != nil {
		return nil, err
	}
	img := rasterizer.Draw(c, canvas.DPMM(opts.Scale), canvas.DefaultColorSpace)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
