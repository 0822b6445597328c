// Package geometry provides the point and rectangle value types used by the
// slicing engine.
//
// Coordinates follow a y-up convention: a rectangle's Bottom is its Y
// coordinate and its Top is Y+Height. Rectangles are plain values; a
// rectangle's position may be moved, its size never changes after creation.
package geometry

import (
	"fmt"
	"math"
)

// Point is a location in the plane.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Distance returns the Euclidean distance between p and q.
func Distance(p, q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Distance returns the Euclidean distance from p to q.
func (p Point) Distance(q Point) float64 { return Distance(p, q) }

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy float64) Point { return Point{X: p.X + dx, Y: p.Y + dy} }

func (p Point) String() string { return fmt.Sprintf("(%g, %g)", p.X, p.Y) }

// Rect is an axis-aligned rectangle anchored at its bottom-left corner.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// R is shorthand for Rect{X: x, Y: y, Width: w, Height: h}.
func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, Width: w, Height: h} }

// Left returns the left edge x coordinate.
func (r Rect) Left() float64 { return r.X }

// Right returns the right edge x coordinate.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the bottom edge y coordinate.
func (r Rect) Bottom() float64 { return r.Y }

// Top returns the top edge y coordinate.
func (r Rect) Top() float64 { return r.Y + r.Height }

// Area returns Width*Height.
func (r Rect) Area() float64 { return r.Width * r.Height }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{X: (r.Left() + r.Right()) / 2, Y: (r.Bottom() + r.Top()) / 2}
}

// Origin returns the bottom-left corner.
func (r Rect) Origin() Point { return Point{X: r.X, Y: r.Y} }

// MoveTo returns r with its origin placed at (x, y). The size is unchanged.
func (r Rect) MoveTo(x, y float64) Rect {
	r.X, r.Y = x, y
	return r
}

// Translate returns r shifted by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// SameSize reports whether r and o have identical width and height.
func (r Rect) SameSize(o Rect) bool { return r.Width == o.Width && r.Height == o.Height }

// Overlaps reports whether the interiors of r and o intersect.
// Rectangles that only share an edge do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.Left() < o.Right() && o.Left() < r.Right() &&
		r.Bottom() < o.Top() && o.Bottom() < r.Top()
}

// SharesEdge reports whether r and o touch along a segment of positive length.
func (r Rect) SharesEdge(o Rect) bool {
	if r.Right() == o.Left() || o.Right() == r.Left() {
		return math.Min(r.Top(), o.Top())-math.Max(r.Bottom(), o.Bottom()) > 0
	}
	if r.Top() == o.Bottom() || o.Top() == r.Bottom() {
		return math.Min(r.Right(), o.Right())-math.Max(r.Left(), o.Left()) > 0
	}
	return false
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	left := math.Min(r.Left(), o.Left())
	bottom := math.Min(r.Bottom(), o.Bottom())
	right := math.Max(r.Right(), o.Right())
	top := math.Max(r.Top(), o.Top())
	return Rect{X: left, Y: bottom, Width: right - left, Height: top - bottom}
}

func (r Rect) String() string {
	return fmt.Sprintf("[%g %g %g %g]", r.X, r.Y, r.Width, r.Height)
}

// Bounds returns the bounding rectangle of rects. It returns the zero Rect
// when rects is empty.
func Bounds(rects []Rect) Rect {
	if len(rects) == 0 {
		return Rect{}
	}
	b := rects[0]
	for _, r := range rects[1:] {
		b = b.Union(r)
	}
	return b
}
