// Package geometry contains the 2D math used by the interactive editor:
// points, rectangles, rotation about arbitrary centers and the resize
// algebra for handle-based manipulation. Everything operates on float64
// device or model coordinates and is total over finite input.
package geometry

import "math"

// Point represents a 2D coordinate.
type Point struct {
	X, Y float64
}

// Add returns the point translated by q.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Distance returns the euclidean distance to q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Rect represents a rectangle by origin and size. Width and height are
// normally non-negative; ResizeBounds normalizes negative sizes by
// flipping the origin.
type Rect struct {
	X, Y, Width, Height float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// CenterX returns the x coordinate of the center.
func (r Rect) CenterX() float64 { return r.X + r.Width/2 }

// CenterY returns the y coordinate of the center.
func (r Rect) CenterY() float64 { return r.Y + r.Height/2 }

// Center returns the center point.
func (r Rect) Center() Point { return Point{r.CenterX(), r.CenterY()} }

// Contains checks if a point lies inside the rectangle (edges inclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// ContainsRect checks if s lies entirely inside r.
func (r Rect) ContainsRect(s Rect) bool {
	return s.X >= r.X && s.Y >= r.Y && s.Right() <= r.Right() && s.Bottom() <= r.Bottom()
}

// Intersects checks if two rectangles overlap.
func (r Rect) Intersects(s Rect) bool {
	return r.X <= s.Right() && s.X <= r.Right() && r.Y <= s.Bottom() && s.Y <= r.Bottom()
}

// Union returns the smallest rectangle containing both r and s.
func (r Rect) Union(s Rect) Rect {
	x := min(r.X, s.X)
	y := min(r.Y, s.Y)
	return Rect{
		X:      x,
		Y:      y,
		Width:  max(r.Right(), s.Right()) - x,
		Height: max(r.Bottom(), s.Bottom()) - y,
	}
}

// Grow returns the rectangle expanded by amount on every side.
func (r Rect) Grow(amount float64) Rect {
	return Rect{r.X - amount, r.Y - amount, r.Width + 2*amount, r.Height + 2*amount}
}

// Translate returns the rectangle moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{r.X + dx, r.Y + dy, r.Width, r.Height}
}

// Scale returns the rectangle with origin and size multiplied by factor.
func (r Rect) Scale(factor float64) Rect {
	return Rect{r.X * factor, r.Y * factor, r.Width * factor, r.Height * factor}
}

// UnionBounds returns the smallest rectangle containing every input box.
// The union of a single box is that box. Returns the zero Rect for no input.
func UnionBounds(boxes []Rect) Rect {
	if len(boxes) == 0 {
		return Rect{}
	}
	result := boxes[0]
	for _, b := range boxes[1:] {
		result = result.Union(b)
	}
	return result
}

// RotatePoint rotates p about center using a precomputed cos/sin pair.
// Callers that rotate many points by the same angle compute cos/sin once.
func RotatePoint(p Point, cos, sin float64, center Point) Point {
	dx := p.X - center.X
	dy := p.Y - center.Y
	return Point{
		X: center.X + dx*cos - dy*sin,
		Y: center.Y + dy*cos + dx*sin,
	}
}

// RotatePointDeg rotates p about center by an angle in degrees.
func RotatePointDeg(p Point, degrees float64, center Point) Point {
	rad := ToRadians(degrees)
	return RotatePoint(p, math.Cos(rad), math.Sin(rad), center)
}

// BoundingBox returns the axis-aligned bounding box of r rotated by the
// given angle (degrees) about its own center.
func BoundingBox(r Rect, degrees float64) Rect {
	if degrees == 0 {
		return r
	}
	rad := ToRadians(degrees)
	cos, sin := math.Cos(rad), math.Sin(rad)
	center := r.Center()
	corners := [4]Point{
		{r.X, r.Y},
		{r.Right(), r.Y},
		{r.Right(), r.Bottom()},
		{r.X, r.Bottom()},
	}
	first := RotatePoint(corners[0], cos, sin, center)
	result := Rect{X: first.X, Y: first.Y}
	for _, c := range corners[1:] {
		p := RotatePoint(c, cos, sin, center)
		result = result.Union(Rect{X: p.X, Y: p.Y})
	}
	return result
}

// ToRadians converts degrees to radians.
func ToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// ToDegrees converts radians to degrees.
func ToDegrees(radians float64) float64 {
	return radians * 180 / math.Pi
}

// NormalizeAngle maps an angle in degrees into [0, 360).
func NormalizeAngle(degrees float64) float64 {
	degrees = math.Mod(degrees, 360)
	if degrees < 0 {
		degrees += 360
	}
	return degrees
}

// Snap rounds value to the nearest multiple of grid. A grid of zero or
// less leaves the value untouched.
func Snap(value, grid float64) float64 {
	if grid <= 0 {
		return value
	}
	return math.Round(value/grid) * grid
}

// SegmentDistance returns the distance from p to the segment a-b.
// Degenerate segments collapse to point distance.
func SegmentDistance(a, b, p Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return p.Distance(a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = max(0, min(1, t))
	return p.Distance(Point{a.X + t*dx, a.Y + t*dy})
}
