package geometry

import "math"

// Resize handle indices, laid out row-major over the shape's unrotated
// local frame. Index 8 is the single-handle mode where only the
// bottom-right corner is draggable.
const (
	HandleTopLeft = iota
	HandleTop
	HandleTopRight
	HandleLeft
	HandleRight
	HandleBottomLeft
	HandleBottom
	HandleBottomRight
	HandleSingle
)

// ResizeBounds applies a drag of (dx, dy) on the given resize handle to
// bounds, all in device space. The computation happens in untranslated,
// unscaled model coordinates: each implicated edge moves independently
// and is snapped (to grid when gridEnabled, otherwise to whole units) so
// adjacent cells resized by the same amount stay pixel-aligned.
//
// With constrained set, the moving dimension is recomputed from the
// original aspect ratio; handle 0 additionally anchors the opposite
// (bottom-right) corner. With centered set, the change is applied
// symmetrically about the original center. Negative resulting sizes are
// normalized by flipping the origin, which implements drag-through: the
// grabbed edge passes over the opposite one and keeps tracking the
// pointer.
func ResizeBounds(bounds Rect, dx, dy float64, index int, gridEnabled bool, gridSize, scale float64, translate Point, constrained, centered bool) Rect {
	snap := func(v float64) float64 {
		if gridEnabled {
			return Snap(v/scale, gridSize) * scale
		}
		return math.Round(v/scale) * scale
	}

	if index == HandleSingle {
		x := snap(bounds.X + bounds.Width + dx)
		y := snap(bounds.Y + bounds.Height + dy)
		r := Rect{X: bounds.X, Y: bounds.Y}
		return r.Union(Rect{X: x, Y: y})
	}

	w0 := bounds.Width
	h0 := bounds.Height
	left := bounds.X - translate.X*scale
	right := left + w0
	top := bounds.Y - translate.Y*scale
	bottom := top + h0

	cx := left + w0/2
	cy := top + h0/2

	switch {
	case index > HandleRight: // bottom row
		bottom = snap(bottom + dy)
	case index < HandleLeft: // top row
		top = snap(top + dy)
	}
	switch index {
	case HandleTopLeft, HandleLeft, HandleBottomLeft:
		left = snap(left + dx)
	case HandleTopRight, HandleRight, HandleBottomRight:
		right = snap(right + dx)
	}

	width := right - left
	height := bottom - top

	if constrained && h0 != 0 && w0 != 0 {
		aspect := w0 / h0
		switch index {
		case HandleTop, HandleTopRight, HandleBottom, HandleBottomRight:
			width = height * aspect
		default:
			height = width / aspect
		}
		if index == HandleTopLeft {
			left = right - width
			top = bottom - height
		}
	}

	if centered {
		width += width - w0
		height += height - h0
		left += cx - (left + width/2)
		top += cy - (top + height/2)
	}

	// Flip the origin when an edge was dragged through the opposite one.
	if width < 0 {
		left += width
		width = math.Abs(width)
	}
	if height < 0 {
		top += height
		height = math.Abs(height)
	}

	return Rect{
		X:      left + translate.X*scale,
		Y:      top + translate.Y*scale,
		Width:  width,
		Height: height,
	}
}

// EnsureMinBounds grows result so it never shrinks below the given
// minimum content bounds (typically the union of a container's children,
// relative to the container's original origin). origin is the container's
// top-left before the resize, in unscaled coordinates.
func EnsureMinBounds(result, minBounds Rect, origin Point, scale float64) Rect {
	result.Width = max(result.Width,
		minBounds.X*scale+minBounds.Width*scale+max(0, origin.X*scale-result.X))
	result.Height = max(result.Height,
		minBounds.Y*scale+minBounds.Height*scale+max(0, origin.Y*scale-result.Y))
	return result
}

// RotateResizeDelta maps a screen-space drag vector into the unrotated
// local frame of a shape rotated by the given angle (degrees). Resize
// handles live in the local frame, so the pointer delta has to be
// counter-rotated before the resize algebra runs.
func RotateResizeDelta(dx, dy, degrees float64) (float64, float64) {
	if degrees == 0 {
		return dx, dy
	}
	rad := ToRadians(-degrees)
	cos, sin := math.Cos(rad), math.Sin(rad)
	return cos*dx - sin*dy, sin*dx + cos*dy
}

// RotationDriftCorrection computes the translation that keeps the anchored
// corner of a rotated shape fixed after a resize. oldCenter and newCenter
// are the shape centers before and after the unrotated resize; the
// returned vector is the residual between the rotated and unrotated center
// displacement and is added to the new bounds' origin.
func RotationDriftCorrection(oldCenter, newCenter Point, degrees float64) Point {
	if degrees == 0 {
		return Point{}
	}
	rad := ToRadians(degrees)
	cos, sin := math.Cos(rad), math.Sin(rad)
	dx := newCenter.X - oldCenter.X
	dy := newCenter.Y - oldCenter.Y
	return Point{
		X: (cos*dx - sin*dy) - dx,
		Y: (sin*dx + cos*dy) - dy,
	}
}
