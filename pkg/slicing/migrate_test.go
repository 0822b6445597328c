package slicing

import (
	"math"
	"testing"

	"github.com/matzehuels/floorplanner/pkg/errors"
	"github.com/matzehuels/floorplanner/pkg/floorplan"
	"github.com/matzehuels/floorplanner/pkg/geometry"
)

func TestApplyNetMigration(t *testing.T) {
	tests := []struct {
		name    string
		modules []floorplan.Module
		net     map[string]bool
		target  geometry.Point
		swaps   int
		shape   string
		rects   map[string]geometry.Rect
		center  geometry.Point
	}{
		{
			name:    "already nearest",
			modules: modules(geometry.R(0, 0, 2, 2), geometry.R(2, 0, 2, 2)),
			net:     map[string]bool{"1": true, "2": true},
			swaps:   0,
			shape:   "V(1,2)",
			rects:   map[string]geometry.Rect{"1": geometry.R(0, 0, 2, 2), "2": geometry.R(2, 0, 2, 2)},
			center:  geometry.Pt(2, 1),
		},
		{
			name:    "single member moves to target",
			modules: modules(geometry.R(0, 0, 2, 2), geometry.R(2, 0, 2, 2)),
			net:     map[string]bool{"2": true},
			swaps:   1,
			shape:   "V(2,1)",
			rects:   map[string]geometry.Rect{"2": geometry.R(0, 0, 2, 2), "1": geometry.R(2, 0, 2, 2)},
			center:  geometry.Pt(1, 1),
		},
		{
			name:    "target on the far side",
			modules: modules(geometry.R(0, 0, 2, 2), geometry.R(2, 0, 2, 2)),
			net:     map[string]bool{"1": true},
			target:  geometry.Pt(10, 0),
			swaps:   1,
			shape:   "V(2,1)",
			rects:   map[string]geometry.Rect{"1": geometry.R(2, 0, 2, 2)},
			center:  geometry.Pt(3, 1),
		},
		{
			name:    "grid corner",
			modules: grid(),
			net:     map[string]bool{"4": true},
			swaps:   2,
			shape:   "V(H(4,2),H(1,3))",
			rects: map[string]geometry.Rect{
				"4": geometry.R(0, 0, 2, 2),
				"2": geometry.R(0, 2, 2, 2),
				"1": geometry.R(2, 0, 2, 2),
				"3": geometry.R(2, 2, 2, 2),
			},
			center: geometry.Pt(1, 1),
		},
		{
			name:    "ignores ids mapped to false",
			modules: grid(),
			net:     map[string]bool{"1": true, "9": false},
			swaps:   0,
			shape:   "V(H(1,3),H(2,4))",
			center:  geometry.Pt(1, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := mustBuild(t, tt.modules)

			res, err := tree.ApplyNetMigration(tt.net, tt.target)
			if err != nil {
				t.Fatalf("ApplyNetMigration: %v", err)
			}
			if err := tree.Check(); err != nil {
				t.Fatalf("Check: %v", err)
			}
			if res.Swaps != tt.swaps {
				t.Errorf("Swaps = %d, want %d", res.Swaps, tt.swaps)
			}
			if got := tree.String(); got != tt.shape {
				t.Errorf("String() = %q, want %q", got, tt.shape)
			}
			for id, want := range tt.rects {
				if got, _ := tree.Rect(id); got != want {
					t.Errorf("Rect(%s) = %v, want %v", id, got, want)
				}
			}
			if c, ok := tree.NetCenter(tt.net); !ok || !near(c, tt.center) {
				t.Errorf("NetCenter() = %v, %v, want %v", c, ok, tt.center)
			}
			if !tree.root.hasCenter || !near(tree.root.center, tt.center) {
				t.Errorf("root center = %v, want %v", tree.root.center, tt.center)
			}

			again, err := tree.ApplyNetMigration(tt.net, tt.target)
			if err != nil {
				t.Fatalf("second ApplyNetMigration: %v", err)
			}
			if again.Swaps != 0 {
				t.Errorf("second call swapped %d times, want 0", again.Swaps)
			}
		})
	}
}

func TestApplyNetMigrationSwappedFlags(t *testing.T) {
	tree := mustBuild(t, grid())
	if _, err := tree.ApplyNetMigration(map[string]bool{"4": true}, geometry.Point{}); err != nil {
		t.Fatalf("ApplyNetMigration: %v", err)
	}

	want := []Cut{
		{Rect: geometry.R(0, 0, 4, 4), Split: SplitV, At: 2, Swapped: true, Depth: 0},
		{Rect: geometry.R(0, 0, 2, 4), Split: SplitH, At: 2, Swapped: true, Depth: 1},
		{Rect: geometry.R(2, 0, 2, 4), Split: SplitH, At: 2, Swapped: false, Depth: 1},
	}
	got := tree.Diagnostics()
	if len(got) != len(want) {
		t.Fatalf("Diagnostics() has %d cuts, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cut %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	// A call that changes nothing clears the flags.
	if _, err := tree.ApplyNetMigration(map[string]bool{"4": true}, geometry.Point{}); err != nil {
		t.Fatalf("ApplyNetMigration: %v", err)
	}
	for _, c := range tree.Diagnostics() {
		if c.Swapped {
			t.Errorf("cut %v still flagged as swapped", c.Rect)
		}
	}
}

func TestApplyNetMigrationEmptyNet(t *testing.T) {
	tree := mustBuild(t, grid())
	res, err := tree.ApplyNetMigration(nil, geometry.Pt(4, 4))
	if err != nil {
		t.Fatalf("ApplyNetMigration: %v", err)
	}
	if res.Swaps != 0 {
		t.Errorf("Swaps = %d, want 0", res.Swaps)
	}
	if _, ok := tree.NetCenter(nil); ok {
		t.Error("NetCenter(nil) should report no center")
	}
	if err := tree.Check(); err != nil {
		t.Errorf("Check: %v", err)
	}
}

func TestApplyNetMigrationUnknownModule(t *testing.T) {
	tree := mustBuild(t, grid())
	before := tree.String()

	_, err := tree.ApplyNetMigration(map[string]bool{"4": true, "9": true}, geometry.Point{})
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Fatalf("ApplyNetMigration() error = %v, want %v", err, errors.ErrCodeNotFound)
	}
	if got := tree.String(); got != before {
		t.Errorf("tree changed on failure: %q -> %q", before, got)
	}
}

func TestApplyNetMigrationConverges(t *testing.T) {
	// Repeated up/down passes on this tree alternate between two orders;
	// the call must keep the closer one and stop.
	d, err := floorplan.Generate(10, 7, &floorplan.GenerateOptions{Width: 12, Height: 9, NetSize: 4})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	tree := mustBuild(t, d.Modules)
	net, target := d.Net(), geometry.Pt(6, 0)

	res, err := tree.ApplyNetMigration(net, target)
	if err != nil {
		t.Fatalf("ApplyNetMigration: %v", err)
	}
	if res.Swaps != 8 {
		t.Errorf("Swaps = %d, want 8", res.Swaps)
	}
	c, _ := tree.NetCenter(net)
	if got := geometry.Distance(c, target); math.Abs(got-3.2138816119090428) > 1e-9 {
		t.Errorf("distance to target = %v, want 3.2138816119090428", got)
	}
	if !near(tree.root.center, c) {
		t.Errorf("root center = %v, NetCenter() = %v", tree.root.center, c)
	}

	for i := range 3 {
		again, err := tree.ApplyNetMigration(net, target)
		if err != nil {
			t.Fatalf("call %d: ApplyNetMigration: %v", i+2, err)
		}
		if again.Swaps != 0 {
			t.Errorf("call %d swapped %d times, want 0", i+2, again.Swaps)
		}
	}
}

func TestApplyNetMigrationProperties(t *testing.T) {
	sizes := []floorplan.GenerateOptions{
		{Width: 12, Height: 9},
		{Width: 24, Height: 16},
	}

	for _, size := range sizes {
		w, h := float64(size.Width), float64(size.Height)
		targets := []geometry.Point{{}, geometry.Pt(w, h), geometry.Pt(w/2, 0), geometry.Pt(0, h), geometry.Pt(3, 7)}

		for seed := uint64(1); seed <= 400; seed++ {
			opts := size
			opts.NetSize = int(seed%4) + 1
			d, err := floorplan.Generate(int(seed%13)+3, seed, &opts)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			tree, err := Build(d.Modules)
			if err != nil {
				t.Fatalf("seed %d: Build: %v", seed, err)
			}
			net := d.Net()

			for _, target := range targets {
				before, _ := tree.NetCenter(net)
				if _, err := tree.ApplyNetMigration(net, target); err != nil {
					t.Fatalf("seed %d: ApplyNetMigration: %v", seed, err)
				}
				if err := tree.Check(); err != nil {
					t.Fatalf("seed %d target %v: Check: %v", seed, target, err)
				}
				if got := tree.Bounds(); got != d.Bounds() {
					t.Fatalf("seed %d: Bounds() = %v, want %v", seed, got, d.Bounds())
				}
				if got := len(tree.Leaves()); got != d.Len() {
					t.Fatalf("seed %d: %d leaves, want %d", seed, got, d.Len())
				}

				after, _ := tree.NetCenter(net)
				if db, da := geometry.Distance(before, target), geometry.Distance(after, target); da > db+1e-9 {
					t.Errorf("%dx%d seed %d target %v: distance grew from %v to %v", size.Width, size.Height, seed, target, db, da)
				}
				if !near(tree.root.center, after) {
					t.Errorf("%dx%d seed %d target %v: root center %v, NetCenter() %v", size.Width, size.Height, seed, target, tree.root.center, after)
				}

				again, err := tree.ApplyNetMigration(net, target)
				if err != nil {
					t.Fatalf("seed %d: second ApplyNetMigration: %v", seed, err)
				}
				if again.Swaps != 0 {
					t.Errorf("%dx%d seed %d target %v: second call swapped %d times, want 0", size.Width, size.Height, seed, target, again.Swaps)
				}
			}
		}
	}
}
