package geometry

import "math"

// RectanglePerimeter returns the point on the perimeter of bounds where
// the ray from the rectangle's center towards next crosses it. rotation
// is the shape's angle in degrees; the ray is evaluated in the shape's
// local frame and the result rotated back. Used to resolve floating edge
// terminals against vertex shapes.
func RectanglePerimeter(bounds Rect, rotation float64, next Point) Point {
	center := bounds.Center()
	if rotation != 0 {
		rad := ToRadians(-rotation)
		next = RotatePoint(next, math.Cos(rad), math.Sin(rad), center)
	}

	dx := next.X - center.X
	dy := next.Y - center.Y
	p := center
	if dx != 0 || dy != 0 {
		alpha := math.Atan2(dy, dx)
		t := math.Atan2(bounds.Height, bounds.Width)
		switch {
		case alpha < -math.Pi+t || alpha > math.Pi-t: // left edge
			p = Point{bounds.X, center.Y - bounds.Width*math.Tan(alpha)/2}
		case alpha < -t: // top edge
			p = Point{center.X - bounds.Height*math.Tan(math.Pi/2-alpha)/2, bounds.Y}
		case alpha < t: // right edge
			p = Point{bounds.Right(), center.Y + bounds.Width*math.Tan(alpha)/2}
		default: // bottom edge
			p = Point{center.X + bounds.Height*math.Tan(math.Pi/2-alpha)/2, bounds.Bottom()}
		}
	}

	if rotation != 0 {
		rad := ToRadians(rotation)
		p = RotatePoint(p, math.Cos(rad), math.Sin(rad), center)
	}
	return p
}
