// Package pipeline provides the floorplanning pipeline shared by the CLI and
// the HTTP API.
//
// This package implements the complete parse → layout → render pipeline. By
// centralizing this logic, both entry points apply the same defaults, the
// same validation and the same caching.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Read a module list (text or file) into a validated design
//  2. Layout: Build the slicing tree and run the requested operation
//     (build only, net migration or distance reduction)
//  3. Render: Generate output in various formats (SVG, PNG, PDF, JSON,
//     module list text, Graphviz DOT)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Path:      "chip.txt",
//	    Operation: pipeline.OpMigrate,
//	    TargetX:   0,
//	    TargetY:   0,
//	    Formats:   []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	design, err := runner.Parse(ctx, opts)
//	tree, layout, info, err := runner.ComputeLayout(ctx, design, opts)
//	artifacts, err := runner.Render(ctx, tree, layout, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/floorplanner/pkg/cache"
	"github.com/matzehuels/floorplanner/pkg/errors"
	"github.com/matzehuels/floorplanner/pkg/floorplan"
	"github.com/matzehuels/floorplanner/pkg/geometry"
	pkgio "github.com/matzehuels/floorplanner/pkg/io"
	"github.com/matzehuels/floorplanner/pkg/render"
	"github.com/matzehuels/floorplanner/pkg/slicing"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default frame width in millimetres.
	DefaultWidth = render.DefaultWidth

	// DefaultHeight is the default frame height in millimetres.
	DefaultHeight = render.DefaultHeight

	// DefaultScale is the default PNG resolution in pixels per millimetre.
	DefaultScale = render.DefaultScale

	// DefaultOperation is the default layout operation.
	DefaultOperation = OpBuild
)

// Operation constants for the layout stage.
const (
	OpBuild   = "build"
	OpMigrate = "migrate"
	OpReduce  = "reduce"
)

// ValidOperations is the set of supported layout operations.
var ValidOperations = map[string]bool{
	OpBuild:   true,
	OpMigrate: true,
	OpReduce:  true,
}

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatText = "txt"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatText: true,
	FormatDOT:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the floorplanning pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Parse options
	Modules string `json:"modules,omitempty"` // module list in the text format
	Path    string `json:"path,omitempty"`    // module list file (CLI only)

	// Layout options
	Operation string   `json:"operation,omitempty"`
	TargetX   float64  `json:"target_x,omitempty"`
	TargetY   float64  `json:"target_y,omitempty"`
	Net       []string `json:"net,omitempty"` // migration net; the design's signed modules when empty
	A         string   `json:"a,omitempty"`   // reduce pair; the design's two net members when empty
	B         string   `json:"b,omitempty"`
	Refresh   bool     `json:"refresh,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Width   float64  `json:"width,omitempty"`
	Height  float64  `json:"height,omitempty"`
	Scale   float64  `json:"scale,omitempty"`
	Labels  bool     `json:"labels,omitempty"`
	Cuts    bool     `json:"cuts,omitempty"`
	Font    string   `json:"-"`

	// Runtime options (not serialized)
	Logger *log.Logger       `json:"-"`
	Design *floorplan.Design `json:"-"` // pre-parsed design; skips the parse stage

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Design is the parsed module list.
	Design *floorplan.Design

	// DesignHash is the content hash of the design.
	DesignHash string

	// Tree is the slicing tree after the operation. On a layout cache hit it
	// is rebuilt from the cached module positions.
	Tree *slicing.Tree

	// Layout is the serializable snapshot of Tree.
	Layout pkgio.Layout

	// Optimize describes what the operation did.
	Optimize OptimizeInfo

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// OptimizeInfo summarizes the layout operation.
type OptimizeInfo struct {
	Operation string `json:"operation"`
	Swaps     int    `json:"swaps"`

	// Net migration: weighted net center before and after, and its
	// distance to the target.
	CenterBefore   *pkgio.Point `json:"center_before,omitempty"`
	CenterAfter    *pkgio.Point `json:"center_after,omitempty"`
	DistanceBefore float64      `json:"distance_before,omitempty"`
	DistanceAfter  float64      `json:"distance_after,omitempty"`

	// Distance reduction: the pair that was moved.
	Pair []string `json:"pair,omitempty"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ModuleCount int
	Depth       int
	ParseTime   time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: svg, png, pdf, json, txt, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateOperation checks that an operation is valid.
func ValidateOperation(op string) error {
	if !ValidOperations[op] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid operation: %q (must be one of: build, migrate, reduce)", op)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks that exactly one module source is given.
func (o *Options) ValidateForParse() error {
	sources := 0
	for _, set := range []bool{o.Design != nil, o.Modules != "", o.Path != ""} {
		if set {
			sources++
		}
	}
	if sources == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "modules or path is required")
	}
	if sources > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "modules and path are mutually exclusive")
	}
	if o.Path != "" {
		if err := errors.ValidatePath(o.Path); err != nil {
			return err
		}
	}
	o.setLogger()
	return nil
}

// SetLayoutDefaults sets default values for the layout stage.
func (o *Options) SetLayoutDefaults() {
	if o.Operation == "" {
		o.Operation = DefaultOperation
	}
	o.setLogger()
}

// ValidateForLayout validates and sets defaults for the layout stage.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := ValidateOperation(o.Operation); err != nil {
		return err
	}
	if (o.A == "") != (o.B == "") {
		return errors.New(errors.ErrCodeInvalidInput, "reduce needs both modules of the pair")
	}
	if o.A != "" {
		if err := errors.ValidatePair(o.A, o.B); err != nil {
			return err
		}
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if o.Width < 0 || o.Height < 0 || o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "render size and scale must be positive")
	}
	return ValidateFormats(o.Formats)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Target returns the migration target.
func (o *Options) Target() geometry.Point {
	return geometry.Pt(o.TargetX, o.TargetY)
}

// RenderOptions returns the drawing options for the render package.
func (o *Options) RenderOptions() render.Options {
	return render.Options{
		Width:    o.Width,
		Height:   o.Height,
		Scale:    o.Scale,
		Labels:   o.Labels,
		Cuts:     o.Cuts,
		FontFile: o.Font,
	}
}

// LayoutKeyOpts returns cache key options for the layout stage.
func (o *Options) LayoutKeyOpts(net []string, pair [2]string) cache.LayoutKeyOpts {
	k := cache.LayoutKeyOpts{Operation: o.Operation}
	switch o.Operation {
	case OpMigrate:
		k.TargetX, k.TargetY = o.TargetX, o.TargetY
		k.Net = net
	case OpReduce:
		k.Pair = pair
	}
	return k
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatSVG, FormatPDF, FormatPNG:
		k.Width, k.Height = o.Width, o.Height
		k.Labels, k.Cuts, k.Font = o.Labels, o.Cuts, o.Font
		if format == FormatPNG {
			k.Scale = o.Scale
		}
	}
	return k
}
