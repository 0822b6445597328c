package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/floorplanner/pkg/cache"
	"github.com/matzehuels/floorplanner/pkg/errors"
	"github.com/matzehuels/floorplanner/pkg/floorplan"
	"github.com/matzehuels/floorplanner/pkg/geometry"
)

// gridNet is a 2x2 grid whose top-right block is the only net member.
const gridNet = `0 0 2 2
2 0 2 2
0 2 2 2
2 2 2 2 +
`

// gridPair marks blocks 2 and 3 as the net.
const gridPair = `0 0 2 2
2 0 2 2 +
0 2 2 2 -
2 2 2 2
`

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"txt", false},
		{"dot", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateOperation(t *testing.T) {
	tests := []struct {
		op      string
		wantErr bool
	}{
		{"build", false},
		{"migrate", false},
		{"reduce", false},
		{"optimize", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateOperation(tt.op)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateOperation(%q) error = %v, wantErr %v", tt.op, err, tt.wantErr)
		}
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{Modules: gridNet}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.Operation != OpBuild {
		t.Errorf("Operation = %q, want %q", opts.Operation, OpBuild)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
	if opts.Width != DefaultWidth || opts.Height != DefaultHeight || opts.Scale != DefaultScale {
		t.Errorf("size = %gx%g@%g, want defaults", opts.Width, opts.Height, opts.Scale)
	}
	if opts.Logger == nil {
		t.Error("Logger should be set")
	}

	// Idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call: %v", err)
	}
}

func TestValidateOptionsErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"no source", Options{}, errors.ErrCodeInvalidInput},
		{"two sources", Options{Modules: gridNet, Path: "chip.txt"}, errors.ErrCodeInvalidInput},
		{"traversal", Options{Path: "../chip.txt"}, errors.ErrCodeInvalidPath},
		{"bad operation", Options{Modules: gridNet, Operation: "shuffle"}, errors.ErrCodeInvalidInput},
		{"half pair", Options{Modules: gridNet, A: "1"}, errors.ErrCodeInvalidInput},
		{"same pair", Options{Modules: gridNet, A: "1", B: "1"}, errors.ErrCodeInvalidInput},
		{"bad format", Options{Modules: gridNet, Formats: []string{"gif"}}, errors.ErrCodeInvalidInput},
		{"negative width", Options{Modules: gridNet, Width: -1}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("ValidateAndSetDefaults() error = %v, want %v", err, tt.code)
			}
		})
	}
}

func TestLayoutKeyOpts(t *testing.T) {
	migrate := Options{Operation: OpMigrate, TargetX: 1, TargetY: 2}
	k := migrate.LayoutKeyOpts([]string{"4"}, [2]string{"x", "y"})
	if k.TargetX != 1 || k.TargetY != 2 || len(k.Net) != 1 || k.Pair != [2]string{} {
		t.Errorf("migrate key opts = %+v", k)
	}

	build := Options{Operation: OpBuild, TargetX: 1}
	if k := build.LayoutKeyOpts([]string{"4"}, [2]string{}); k.TargetX != 0 || k.Net != nil {
		t.Errorf("build key opts should ignore target and net: %+v", k)
	}

	reduce := Options{Operation: OpReduce}
	if k := reduce.LayoutKeyOpts(nil, [2]string{"2", "3"}); k.Pair != [2]string{"2", "3"} {
		t.Errorf("reduce key opts = %+v", k)
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Width: 100, Height: 50, Scale: 3, Labels: true}
	if k := opts.ArtifactKeyOpts(FormatJSON); k.Width != 0 || k.Labels {
		t.Errorf("json key opts should ignore drawing options: %+v", k)
	}
	if k := opts.ArtifactKeyOpts(FormatSVG); k.Width != 100 || k.Scale != 0 || !k.Labels {
		t.Errorf("svg key opts = %+v", k)
	}
	if k := opts.ArtifactKeyOpts(FormatPNG); k.Scale != 3 {
		t.Errorf("png key opts = %+v", k)
	}
}

func TestParse(t *testing.T) {
	d, err := Parse(Options{Modules: gridPair})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if d.Len() != 4 {
		t.Errorf("Len() = %d, want 4", d.Len())
	}

	pre, _ := floorplan.NewDesign(d.Modules)
	if got, err := Parse(Options{Design: pre}); err != nil || got != pre {
		t.Errorf("Parse(Design) = %p, %v; want the same design", got, err)
	}

	if _, err := Parse(Options{Modules: "0 0 1"}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Parse(bad) error = %v, want INVALID_FORMAT", err)
	}
}

func TestDesignHash(t *testing.T) {
	a, _ := Parse(Options{Modules: gridNet})
	b, _ := Parse(Options{Modules: gridNet})
	c, _ := Parse(Options{Modules: gridPair})
	if DesignHash(a) != DesignHash(b) {
		t.Error("DesignHash should be deterministic")
	}
	if DesignHash(a) == DesignHash(c) {
		t.Error("designs with different nets should hash differently")
	}
}

func TestReducePair(t *testing.T) {
	pair, _ := Parse(Options{Modules: gridPair})
	single, _ := Parse(Options{Modules: gridNet})

	if a, b, err := ReducePair(pair, Options{}); err != nil || a != "2" || b != "3" {
		t.Errorf("ReducePair(net) = %q, %q, %v; want 2, 3", a, b, err)
	}
	if a, b, err := ReducePair(single, Options{A: "1", B: "4"}); err != nil || a != "1" || b != "4" {
		t.Errorf("ReducePair(explicit) = %q, %q, %v; want 1, 4", a, b, err)
	}
	if _, _, err := ReducePair(single, Options{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("ReducePair(one net member) error = %v, want INVALID_INPUT", err)
	}
}

func TestMigrationNet(t *testing.T) {
	d, _ := Parse(Options{Modules: gridPair})
	if got := sortedIDs(MigrationNet(d, Options{})); strings.Join(got, ",") != "2,3" {
		t.Errorf("MigrationNet(default) = %v, want [2 3]", got)
	}
	if got := sortedIDs(MigrationNet(d, Options{Net: []string{"4", "1"}})); strings.Join(got, ",") != "1,4" {
		t.Errorf("MigrationNet(explicit) = %v, want [1 4]", got)
	}
}

func TestRunnerExecute(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		shape     string
		swaps     int
		distAfter float64
	}{
		{
			name:  "build",
			opts:  Options{Modules: gridNet, Operation: OpBuild},
			shape: "V(H(1,3),H(2,4))",
		},
		{
			name:      "migrate",
			opts:      Options{Modules: gridNet, Operation: OpMigrate},
			shape:     "V(H(4,2),H(1,3))",
			swaps:     2,
			distAfter: math.Sqrt2,
		},
		{
			name:      "reduce",
			opts:      Options{Modules: gridPair, Operation: OpReduce},
			shape:     "V(H(3,1),H(2,4))",
			swaps:     1,
			distAfter: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRunner(nil, nil, nil)
			tt.opts.Formats = []string{FormatJSON, FormatText, FormatDOT}

			result, err := r.Execute(context.Background(), tt.opts)
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if result.Layout.Shape != tt.shape {
				t.Errorf("Shape = %q, want %q", result.Layout.Shape, tt.shape)
			}
			if result.Optimize.Swaps != tt.swaps {
				t.Errorf("Swaps = %d, want %d", result.Optimize.Swaps, tt.swaps)
			}
			if !near(result.Optimize.DistanceAfter, tt.distAfter) {
				t.Errorf("DistanceAfter = %g, want %g", result.Optimize.DistanceAfter, tt.distAfter)
			}
			if result.Stats.ModuleCount != 4 || result.Stats.Depth != 2 {
				t.Errorf("Stats = %+v, want 4 modules at depth 2", result.Stats)
			}
			for _, f := range tt.opts.Formats {
				if len(result.Artifacts[f]) == 0 {
					t.Errorf("artifact %s is empty", f)
				}
			}
			if !strings.HasPrefix(string(result.Artifacts[FormatDOT]), "digraph") {
				t.Errorf("dot artifact = %q", result.Artifacts[FormatDOT])
			}
		})
	}
}

func TestRunnerMigrateReport(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	result, err := r.Execute(context.Background(), Options{
		Modules:   gridNet,
		Operation: OpMigrate,
		Formats:   []string{FormatText},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	info := result.Optimize
	if info.CenterBefore == nil || info.CenterAfter == nil {
		t.Fatalf("centers not reported: %+v", info)
	}
	if info.CenterBefore.Geometry() != geometry.Pt(3, 3) || info.CenterAfter.Geometry() != geometry.Pt(1, 1) {
		t.Errorf("center %v -> %v, want (3, 3) -> (1, 1)", *info.CenterBefore, *info.CenterAfter)
	}
	if !near(info.DistanceBefore, math.Sqrt(18)) {
		t.Errorf("DistanceBefore = %g, want %g", info.DistanceBefore, math.Sqrt(18))
	}
	if result.Layout.Target == nil || result.Layout.Target.Geometry() != geometry.Pt(0, 0) {
		t.Errorf("Layout.Target = %v, want origin", result.Layout.Target)
	}

	want := "0 0 2 2 +\n0 2 2 2\n2 0 2 2\n2 2 2 2\n"
	if got := string(result.Artifacts[FormatText]); got != want {
		t.Errorf("txt artifact =\n%s\nwant\n%s", got, want)
	}
}

func TestRunnerCache(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	r := NewRunner(c, nil, nil)
	defer r.Close()

	opts := Options{Modules: gridNet, Operation: OpMigrate, Formats: []string{FormatJSON}}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("first run should miss: %+v", first.CacheInfo)
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit: %+v", second.CacheInfo)
	}
	if second.Optimize.Swaps != first.Optimize.Swaps || second.Layout.Shape != first.Layout.Shape {
		t.Errorf("cached result differs: %+v vs %+v", second.Optimize, first.Optimize)
	}
	if !bytes.Equal(first.Artifacts[FormatJSON], second.Artifacts[FormatJSON]) {
		t.Error("cached artifact differs")
	}
	if second.Tree == nil {
		t.Fatal("cache hit should rebuild the tree")
	}
	if r, _ := second.Tree.Rect("4"); r != geometry.R(0, 0, 2, 2) {
		t.Errorf("rebuilt tree places 4 at %v, want [0 0 2 2]", r)
	}

	// A different target is a different layout.
	opts.TargetX = 4
	third, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("third Execute: %v", err)
	}
	if third.CacheInfo.LayoutHit {
		t.Error("changed target should miss the layout cache")
	}

	// Refresh recomputes.
	opts.TargetX = 0
	opts.Refresh = true
	fourth, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if fourth.CacheInfo.LayoutHit || fourth.CacheInfo.RenderHit {
		t.Errorf("refresh should bypass the cache: %+v", fourth.CacheInfo)
	}
}

func TestRunnerTTL(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if got := r.ttl(time.Hour); got != time.Hour {
		t.Errorf("ttl() = %v, want default", got)
	}
	r.TTL = time.Minute
	if got := r.ttl(time.Hour); got != time.Minute {
		t.Errorf("ttl() = %v, want override", got)
	}
}

func TestRunnerErrors(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"not sliceable", Options{Modules: "0 0 2 2\n3 0 2 2\n"}, errors.ErrCodeBuildFailure},
		{"zero size", Options{Modules: "0 0 2 2\n2 0 0 2\n"}, errors.ErrCodeInvalidInput},
		{"unknown net member", Options{Modules: gridNet, Operation: OpMigrate, Net: []string{"9"}}, errors.ErrCodeNotFound},
		{"unknown pair member", Options{Modules: gridNet, Operation: OpReduce, A: "1", B: "9"}, errors.ErrCodeNotFound},
		{"reduce without pair", Options{Modules: gridNet, Operation: OpReduce}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Execute(ctx, tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("Execute() error = %v, want %v", err, tt.code)
			}
		})
	}
}

func TestLayoutEntryJSON(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	result, err := r.Execute(context.Background(), Options{Modules: gridPair, Operation: OpReduce, Formats: []string{FormatJSON}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	data, err := json.Marshal(layoutEntry{Layout: result.Layout, Optimize: result.Optimize})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"pair":["2","3"]`) {
		t.Errorf("entry should carry the reduced pair: %s", data)
	}
}
