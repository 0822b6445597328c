package geometry

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		p, q Point
		want float64
	}{
		{name: "same point", p: Pt(1, 1), q: Pt(1, 1), want: 0},
		{name: "horizontal", p: Pt(0, 0), q: Pt(3, 0), want: 3},
		{name: "pythagorean", p: Pt(0, 0), q: Pt(3, 4), want: 5},
		{name: "negative", p: Pt(-1, -1), q: Pt(2, 3), want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Distance(tt.p, tt.q); got != tt.want {
				t.Errorf("Distance() = %v, want %v", got, tt.want)
			}
			if got := tt.q.Distance(tt.p); got != tt.want {
				t.Errorf("symmetric Distance() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectEdges(t *testing.T) {
	r := R(2, 3, 4, 5)

	if r.Left() != 2 {
		t.Errorf("Left() = %v, want 2", r.Left())
	}
	if r.Right() != 6 {
		t.Errorf("Right() = %v, want 6", r.Right())
	}
	if r.Bottom() != 3 {
		t.Errorf("Bottom() = %v, want 3", r.Bottom())
	}
	if r.Top() != 8 {
		t.Errorf("Top() = %v, want 8", r.Top())
	}
	if r.Area() != 20 {
		t.Errorf("Area() = %v, want 20", r.Area())
	}
	if c := r.Center(); c != Pt(4, 5.5) {
		t.Errorf("Center() = %v, want (4, 5.5)", c)
	}
}

func TestRectMoveKeepsSize(t *testing.T) {
	r := R(0, 0, 2, 3)
	moved := r.MoveTo(10, -4)

	if !moved.SameSize(r) {
		t.Errorf("MoveTo changed size: %v -> %v", r, moved)
	}
	if moved.Origin() != Pt(10, -4) {
		t.Errorf("Origin() = %v, want (10, -4)", moved.Origin())
	}
	if tr := r.Translate(1, 1); tr != R(1, 1, 2, 3) {
		t.Errorf("Translate() = %v", tr)
	}
}

func TestRectOverlapsAndSharesEdge(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Rect
		overlaps  bool
		sharesEdg bool
	}{
		{name: "side by side", a: R(0, 0, 2, 2), b: R(2, 0, 2, 2), sharesEdg: true},
		{name: "stacked", a: R(0, 0, 2, 2), b: R(0, 2, 2, 2), sharesEdg: true},
		{name: "corner only", a: R(0, 0, 2, 2), b: R(2, 2, 2, 2)},
		{name: "gap", a: R(0, 0, 2, 2), b: R(3, 0, 2, 2)},
		{name: "overlap", a: R(0, 0, 2, 2), b: R(1, 1, 2, 2), overlaps: true},
		{name: "partial edge", a: R(0, 0, 2, 4), b: R(2, 3, 2, 2), sharesEdg: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.overlaps {
				t.Errorf("Overlaps() = %v, want %v", got, tt.overlaps)
			}
			if got := tt.a.SharesEdge(tt.b); got != tt.sharesEdg {
				t.Errorf("SharesEdge() = %v, want %v", got, tt.sharesEdg)
			}
		})
	}
}

func TestBounds(t *testing.T) {
	if got := Bounds(nil); got != (Rect{}) {
		t.Errorf("Bounds(nil) = %v, want zero", got)
	}
	got := Bounds([]Rect{R(0, 0, 2, 2), R(2, 0, 2, 2), R(0, 2, 4, 1)})
	if got != R(0, 0, 4, 3) {
		t.Errorf("Bounds() = %v, want [0 0 4 3]", got)
	}
	if math.IsNaN(got.Area()) {
		t.Error("Area should be finite")
	}
}
