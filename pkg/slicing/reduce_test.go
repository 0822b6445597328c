package slicing

import (
	"testing"

	"github.com/matzehuels/floorplanner/pkg/errors"
	"github.com/matzehuels/floorplanner/pkg/floorplan"
	"github.com/matzehuels/floorplanner/pkg/geometry"
)

func TestReduceDistance(t *testing.T) {
	tests := []struct {
		name    string
		modules []floorplan.Module
		a, b    string
		swaps   int
		shape   string
		rects   map[string]geometry.Rect
	}{
		{
			name:    "grid diagonal",
			modules: grid(),
			a:       "3",
			b:       "2",
			swaps:   1,
			shape:   "V(H(3,1),H(2,4))",
			rects: map[string]geometry.Rect{
				"3": geometry.R(0, 0, 2, 2),
				"1": geometry.R(0, 2, 2, 2),
				"2": geometry.R(2, 0, 2, 2),
				"4": geometry.R(2, 2, 2, 2),
			},
		},
		{
			name:    "grid neighbours",
			modules: grid(),
			a:       "1",
			b:       "2",
			swaps:   0,
			shape:   "V(H(1,3),H(2,4))",
		},
		{
			name: "stacked across H cut",
			modules: modules(
				geometry.R(0, 0, 2, 1),
				geometry.R(0, 1, 2, 1),
				geometry.R(0, 2, 2, 1),
			),
			a:     "1",
			b:     "3",
			swaps: 1,
			shape: "H(H(2,1),3)",
			rects: map[string]geometry.Rect{
				"2": geometry.R(0, 0, 2, 1),
				"1": geometry.R(0, 1, 2, 1),
				"3": geometry.R(0, 2, 2, 1),
			},
		},
		{
			name: "H cut then pushed right",
			modules: modules(
				geometry.R(0, 0, 2, 1),
				geometry.R(0, 1, 1, 1),
				geometry.R(1, 1, 1, 1),
			),
			a:     "1",
			b:     "2",
			swaps: 1,
			shape: "H(1,V(3,2))",
			rects: map[string]geometry.Rect{
				"3": geometry.R(0, 1, 1, 1),
				"2": geometry.R(1, 1, 1, 1),
			},
		},
		{
			// Pushing 4 to the bottom of its column would move it away
			// from the middle of 1, so that pass is undone.
			name: "secondary pass undone",
			modules: modules(
				geometry.R(1, 0, 5, 4),
				geometry.R(0, 0, 1, 2),
				geometry.R(0, 3, 1, 1),
				geometry.R(0, 2, 1, 1),
			),
			a:     "1",
			b:     "4",
			swaps: 0,
			shape: "V(H(H(2,4),3),1)",
			rects: map[string]geometry.Rect{
				"2": geometry.R(0, 0, 1, 2),
				"4": geometry.R(0, 2, 1, 1),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := mustBuild(t, tt.modules)

			res, err := tree.ReduceDistance(tt.a, tt.b)
			if err != nil {
				t.Fatalf("ReduceDistance: %v", err)
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

			ra, _ := tree.Rect(tt.a)
			rb, _ := tree.Rect(tt.b)
			if !ra.SharesEdge(rb) {
				t.Errorf("%s %v and %s %v do not share an edge", tt.a, ra, tt.b, rb)
			}

			again, err := tree.ReduceDistance(tt.a, tt.b)
			if err != nil {
				t.Fatalf("second ReduceDistance: %v", err)
			}
			if again.Swaps != 0 {
				t.Errorf("second call swapped %d times, want 0", again.Swaps)
			}
		})
	}
}

func TestReduceDistanceKeepsSizes(t *testing.T) {
	mods := grid()
	tree := mustBuild(t, mods)

	if _, err := tree.ReduceDistance("3", "2"); err != nil {
		t.Fatalf("ReduceDistance: %v", err)
	}
	for _, m := range mods {
		got, _ := tree.Rect(m.ID)
		if !got.SameSize(m.Rect) {
			t.Errorf("module %s resized from %v to %v", m.ID, m.Rect, got)
		}
	}
	if got := tree.Bounds(); got != geometry.R(0, 0, 4, 4) {
		t.Errorf("Bounds() = %v, want [0 0 4 4]", got)
	}
}

func TestReduceDistanceErrors(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		code errors.Code
	}{
		{"first missing", "9", "1", errors.ErrCodeNotFound},
		{"second missing", "1", "9", errors.ErrCodeNotFound},
		{"same module", "2", "2", errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := mustBuild(t, grid())
			_, err := tree.ReduceDistance(tt.a, tt.b)
			if !errors.Is(err, tt.code) {
				t.Errorf("ReduceDistance() error = %v, want %v", err, tt.code)
			}
			if got := tree.String(); got != "V(H(1,3),H(2,4))" {
				t.Errorf("tree changed on failure: %q", got)
			}
		})
	}
}

func TestReduceDistanceProperties(t *testing.T) {
	sizes := []floorplan.GenerateOptions{
		{Width: 10, Height: 10},
		{Width: 12, Height: 9},
		{Width: 24, Height: 16},
	}

	for _, size := range sizes {
		for seed := uint64(1); seed <= 400; seed++ {
			d, err := floorplan.Generate(int(seed%13)+2, seed, &size)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			tree, err := Build(d.Modules)
			if err != nil {
				t.Fatalf("seed %d: Build: %v", seed, err)
			}

			ids := d.IDs()
			for i := 0; i+1 < len(ids); i++ {
				a, b := ids[i], ids[len(ids)-1-i]
				if a == b {
					continue
				}
				before := pairDistance(tree, a, b)
				if _, err := tree.ReduceDistance(a, b); err != nil {
					t.Fatalf("seed %d: ReduceDistance(%s, %s): %v", seed, a, b, err)
				}
				if err := tree.Check(); err != nil {
					t.Fatalf("seed %d after (%s, %s): Check: %v", seed, a, b, err)
				}
				if got := tree.Bounds(); got != d.Bounds() {
					t.Fatalf("seed %d: Bounds() = %v, want %v", seed, got, d.Bounds())
				}
				if after := pairDistance(tree, a, b); after > before+1e-9 {
					t.Errorf("%dx%d seed %d (%s, %s): distance grew from %v to %v", size.Width, size.Height, seed, a, b, before, after)
				}

				again, err := tree.ReduceDistance(a, b)
				if err != nil {
					t.Fatalf("seed %d: second ReduceDistance(%s, %s): %v", seed, a, b, err)
				}
				if again.Swaps != 0 {
					t.Errorf("%dx%d seed %d (%s, %s): second call swapped %d times, want 0", size.Width, size.Height, seed, a, b, again.Swaps)
				}
			}
		}
	}
}

func pairDistance(tree *Tree, a, b string) float64 {
	ra, _ := tree.Rect(a)
	rb, _ := tree.Rect(b)
	return geometry.Distance(ra.Center(), rb.Center())
}
