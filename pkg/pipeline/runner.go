package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/floorplanner/pkg/cache"
	"github.com/matzehuels/floorplanner/pkg/floorplan"
	pkgio "github.com/matzehuels/floorplanner/pkg/io"
	"github.com/matzehuels/floorplanner/pkg/observability"
	"github.com/matzehuels/floorplanner/pkg/slicing"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the per-stage cache TTLs when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// layoutEntry is the cached form of a computed layout.
type layoutEntry struct {
	Layout   pkgio.Layout `json:"layout"`
	Optimize OptimizeInfo `json:"optimize"`
}

// Execute runs the complete parse → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Parse
	parseStart := time.Now()
	design, err := r.Parse(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Design = design
	result.DesignHash = DesignHash(design)
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.ModuleCount = design.Len()

	r.Logger.Info("parsed modules",
		"modules", design.Len(),
		"net", len(design.NetIDs()),
		"duration", result.Stats.ParseTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	tree, layout, info, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, design, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Tree = tree
	result.Layout = layout
	result.Optimize = info
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Depth = tree.Depth()
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"operation", info.Operation,
		"swaps", info.Swaps,
		"shape", layout.Shape,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, tree, layout, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Parse reads and validates the design. Parsing is cheap, so it is never
// cached.
func (r *Runner) Parse(ctx context.Context, opts Options) (*floorplan.Design, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForParse(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	src := source(opts)
	hooks.OnParseStart(ctx, src)
	start := time.Now()

	design, err := Parse(opts)

	n := 0
	if design != nil {
		n = design.Len()
	}
	hooks.OnParseComplete(ctx, src, n, time.Since(start), err)
	return design, err
}

// ComputeLayoutWithCacheInfo builds the slicing tree for design, applies
// opts.Operation and returns the resulting layout. A cache hit rebuilds the
// tree from the cached module positions.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, design *floorplan.Design, opts Options) (*slicing.Tree, pkgio.Layout, OptimizeInfo, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, pkgio.Layout{}, OptimizeInfo{}, false, err
	}

	keyOpts, err := r.layoutKeyOpts(design, opts)
	if err != nil {
		return nil, pkgio.Layout{}, OptimizeInfo{}, false, err
	}
	cacheKey := r.Keyer.LayoutKey(DesignHash(design), keyOpts)
	cacheHooks := observability.Cache()

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var entry layoutEntry
			if err := json.Unmarshal(data, &entry); err == nil {
				if tree, err := entry.Layout.Tree(); err == nil {
					cacheHooks.OnCacheHit(ctx, "layout")
					return tree, entry.Layout, entry.Optimize, true, nil
				}
			}
			// If deserialization fails, fall through to recompute
		} else if err != nil {
			r.Logger.Warn("cache read failed", "key", cacheKey, "error", err)
		}
		cacheHooks.OnCacheMiss(ctx, "layout")
	}

	tree, layout, info, err := r.computeLayout(ctx, design, opts)
	if err != nil {
		return nil, pkgio.Layout{}, OptimizeInfo{}, false, err
	}

	// Cache the result
	if data, err := json.Marshal(layoutEntry{Layout: layout, Optimize: info}); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, r.ttl(cache.TTLLayout)); err == nil {
			cacheHooks.OnCacheSet(ctx, "layout", len(data))
		}
	}

	return tree, layout, info, false, nil // Cache miss
}

// ComputeLayout is a convenience wrapper that calls ComputeLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, design *floorplan.Design, opts Options) (*slicing.Tree, pkgio.Layout, OptimizeInfo, error) {
	tree, layout, info, _, err := r.ComputeLayoutWithCacheInfo(ctx, design, opts)
	return tree, layout, info, err
}

func (r *Runner) computeLayout(ctx context.Context, design *floorplan.Design, opts Options) (*slicing.Tree, pkgio.Layout, OptimizeInfo, error) {
	hooks := observability.Pipeline()

	hooks.OnBuildStart(ctx, design.Len())
	start := time.Now()
	tree, err := slicing.Build(design.Modules)
	hooks.OnBuildComplete(ctx, design.Len(), time.Since(start), err)
	if err != nil {
		return nil, pkgio.Layout{}, OptimizeInfo{}, err
	}
	opts.Logger.Debug("built slicing tree", "shape", tree.String(), "depth", tree.Depth())

	hooks.OnOptimizeStart(ctx, opts.Operation)
	start = time.Now()
	info, err := Optimize(tree, design, opts)
	hooks.OnOptimizeComplete(ctx, opts.Operation, info.Swaps, time.Since(start), err)
	if err != nil {
		return nil, pkgio.Layout{}, OptimizeInfo{}, err
	}

	layout := pkgio.NewLayout(tree)
	if opts.Operation == OpMigrate {
		layout.Target = pkgio.NewPoint(opts.Target())
		layout.Center = info.CenterAfter
	}
	return tree, layout, info, nil
}

// layoutKeyOpts resolves the net or pair the operation will use so that
// the cache key reflects the actual inputs.
func (r *Runner) layoutKeyOpts(design *floorplan.Design, opts Options) (cache.LayoutKeyOpts, error) {
	switch opts.Operation {
	case OpMigrate:
		return opts.LayoutKeyOpts(sortedIDs(MigrationNet(design, opts)), [2]string{}), nil
	case OpReduce:
		a, b, err := ReducePair(design, opts)
		if err != nil {
			return cache.LayoutKeyOpts{}, err
		}
		return opts.LayoutKeyOpts(nil, [2]string{a, b}), nil
	default:
		return opts.LayoutKeyOpts(nil, [2]string{}), nil
	}
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, tree *slicing.Tree, layout pkgio.Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	// Compute cache key from layout data
	layoutData, err := pkgio.MarshalLayout(layout)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)
	cacheHooks := observability.Cache()

	// Try to get all formats from cache
	allCached := !opts.Refresh
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		if !allCached {
			break
		}
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		cacheHooks.OnCacheHit(ctx, "artifact")
		return artifacts, true, nil // All artifacts from cache
	}
	cacheHooks.OnCacheMiss(ctx, "artifact")

	// Render all formats
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(tree, layout, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, r.ttl(cache.TTLArtifact)); err == nil {
			cacheHooks.OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, tree *slicing.Tree, layout pkgio.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, tree, layout, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}
