// Package geometry provides the rectangle math shared by the overlay engine
// and the renderer: half-open containment, boundary-sharing tests, and exact
// rectangular unions.
//
// All edge comparisons between two rectangles go through Epsilon. Split
// coordinates are computed arithmetically, so exact float equality would
// misclassify touching edges; the tolerance is part of the contract and
// determines what counts as "touching".
package geometry

import "math"

// Epsilon is the tolerance applied to every comparison between two rectangle
// edges (adjacency and merge-union detection).
const Epsilon = 1e-9

// Point is a location in the unit square.
type Point struct {
	X float64
	Y float64
}

// Rect is an axis-aligned rectangle with XMin < XMax and YMin < YMax.
// Containment is half-open: a point on the min edge is inside, a point on
// the max edge is not.
type Rect struct {
	XMin float64
	XMax float64
	YMin float64
	YMax float64
}

// Contains reports whether p lies inside r under half-open containment.
func (r Rect) Contains(p Point) bool {
	return r.XMin <= p.X && p.X < r.XMax && r.YMin <= p.Y && p.Y < r.YMax
}

// Center returns the geometric center of r.
func (r Rect) Center() Point {
	return Point{X: (r.XMin + r.XMax) / 2, Y: (r.YMin + r.YMax) / 2}
}

// Width returns the x-extent of r.
func (r Rect) Width() float64 { return r.XMax - r.XMin }

// Height returns the y-extent of r.
func (r Rect) Height() float64 { return r.YMax - r.YMin }

// Area returns the area of r, clamped at zero for degenerate rectangles.
func (r Rect) Area() float64 {
	return math.Max(0, r.Width()) * math.Max(0, r.Height())
}

// Dist returns the Euclidean distance between p and q.
func Dist(p, q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// closeEnough compares two edge coordinates under Epsilon.
func closeEnough(a, b float64) bool {
	return math.Abs(a-b) <= Epsilon
}

// ShareBoundary reports whether a and b share a boundary segment of positive
// length. Rectangles that touch only at a corner do not qualify: the
// perpendicular spans must overlap on an interval, not a point.
func ShareBoundary(a, b Rect) bool {
	verticalTouch := (closeEnough(a.XMax, b.XMin) || closeEnough(b.XMax, a.XMin)) &&
		!(a.YMax <= b.YMin || b.YMax <= a.YMin)
	horizontalTouch := (closeEnough(a.YMax, b.YMin) || closeEnough(b.YMax, a.YMin)) &&
		!(a.XMax <= b.XMin || b.XMax <= a.XMin)
	return verticalTouch || horizontalTouch
}

// UnionRect returns the exact axis-aligned union of a and b when one exists:
// equal y-spans with touching x-edges, or equal x-spans with touching
// y-edges. ok is false when the union would not be a rectangle.
func UnionRect(a, b Rect) (Rect, bool) {
	// Same y-span, touching in x: horizontal merge.
	if closeEnough(a.YMin, b.YMin) && closeEnough(a.YMax, b.YMax) &&
		(closeEnough(a.XMax, b.XMin) || closeEnough(b.XMax, a.XMin)) {
		return Rect{
			XMin: math.Min(a.XMin, b.XMin),
			XMax: math.Max(a.XMax, b.XMax),
			YMin: a.YMin,
			YMax: a.YMax,
		}, true
	}
	// Same x-span, touching in y: vertical merge.
	if closeEnough(a.XMin, b.XMin) && closeEnough(a.XMax, b.XMax) &&
		(closeEnough(a.YMax, b.YMin) || closeEnough(b.YMax, a.YMin)) {
		return Rect{
			XMin: a.XMin,
			XMax: a.XMax,
			YMin: math.Min(a.YMin, b.YMin),
			YMax: math.Max(a.YMax, b.YMax),
		}, true
	}
	return Rect{}, false
}
