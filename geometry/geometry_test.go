package geometry

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func rectsAlmostEqual(a, b Rect) bool {
	return almostEqual(a.X, b.X) && almostEqual(a.Y, b.Y) &&
		almostEqual(a.Width, b.Width) && almostEqual(a.Height, b.Height)
}

func TestRotatePointRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		p       Point
		degrees float64
		center  Point
	}{
		{"quarter turn about origin", Point{10, 0}, 90, Point{}},
		{"arbitrary angle", Point{3, 7}, 37.5, Point{1, 2}},
		{"negative angle", Point{-4, 2.5}, -123, Point{10, -10}},
		{"full turn", Point{5, 5}, 360, Point{2, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rotated := RotatePointDeg(tt.p, tt.degrees, tt.center)
			back := RotatePointDeg(rotated, -tt.degrees, tt.center)
			if math.Abs(back.X-tt.p.X) > epsilon || math.Abs(back.Y-tt.p.Y) > epsilon {
				t.Errorf("round trip of %v by %v° = %v, want original", tt.p, tt.degrees, back)
			}
		})
	}
}

func TestRotatePointKnownValues(t *testing.T) {
	// 90° about the origin maps (1,0) to (0,1).
	got := RotatePointDeg(Point{1, 0}, 90, Point{})
	if !almostEqual(got.X, 0) || !almostEqual(got.Y, 1) {
		t.Errorf("RotatePointDeg((1,0), 90, origin) = %v, want (0,1)", got)
	}

	// Rotation about a non-origin center.
	got = RotatePointDeg(Point{2, 1}, 180, Point{1, 1})
	if !almostEqual(got.X, 0) || !almostEqual(got.Y, 1) {
		t.Errorf("RotatePointDeg((2,1), 180, (1,1)) = %v, want (0,1)", got)
	}
}

func TestUnionBounds(t *testing.T) {
	tests := []struct {
		name  string
		boxes []Rect
		want  Rect
	}{
		{
			name:  "single box is identity",
			boxes: []Rect{{10, 20, 30, 40}},
			want:  Rect{10, 20, 30, 40},
		},
		{
			name:  "disjoint boxes",
			boxes: []Rect{{0, 0, 10, 10}, {20, 30, 5, 5}},
			want:  Rect{0, 0, 25, 35},
		},
		{
			name:  "contained box",
			boxes: []Rect{{0, 0, 100, 100}, {10, 10, 5, 5}},
			want:  Rect{0, 0, 100, 100},
		},
		{
			name:  "negative coordinates",
			boxes: []Rect{{-10, -5, 4, 4}, {3, 3, 2, 2}},
			want:  Rect{-10, -5, 15, 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UnionBounds(tt.boxes)
			if got != tt.want {
				t.Errorf("UnionBounds(%v) = %v, want %v", tt.boxes, got, tt.want)
			}
			for _, b := range tt.boxes {
				if !got.ContainsRect(b) {
					t.Errorf("union %v does not contain input %v", got, b)
				}
			}
		})
	}
}

func TestResizeBoundsBottomRight(t *testing.T) {
	// A 100x100 rectangle at the origin, dragged by (20,10) on the
	// bottom-right handle with the grid disabled.
	bounds := Rect{0, 0, 100, 100}
	got := ResizeBounds(bounds, 20, 10, HandleBottomRight, false, 10, 1, Point{}, false, false)
	want := Rect{0, 0, 120, 110}
	if got != want {
		t.Errorf("ResizeBounds bottom-right = %v, want %v", got, want)
	}
}

func TestResizeBoundsPerHandle(t *testing.T) {
	bounds := Rect{0, 0, 100, 100}
	tests := []struct {
		name  string
		index int
		dx    float64
		dy    float64
		want  Rect
	}{
		{"top-left", HandleTopLeft, 10, 10, Rect{10, 10, 90, 90}},
		{"top", HandleTop, 999, -10, Rect{0, -10, 100, 110}},
		{"top-right", HandleTopRight, 20, -20, Rect{0, -20, 120, 120}},
		{"left", HandleLeft, -5, 999, Rect{-5, 0, 105, 100}},
		{"right", HandleRight, 15, 999, Rect{0, 0, 115, 100}},
		{"bottom-left", HandleBottomLeft, 10, 10, Rect{10, 0, 90, 110}},
		{"bottom", HandleBottom, 999, 25, Rect{0, 0, 100, 125}},
		{"bottom-right", HandleBottomRight, -10, -10, Rect{0, 0, 90, 90}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResizeBounds(bounds, tt.dx, tt.dy, tt.index, false, 10, 1, Point{}, false, false)
			if got != tt.want {
				t.Errorf("ResizeBounds(%s, %v, %v) = %v, want %v", tt.name, tt.dx, tt.dy, got, tt.want)
			}
		})
	}
}

func TestResizeBoundsReversible(t *testing.T) {
	// Applying a delta and then the negated delta must return the
	// original rectangle, for every handle.
	bounds := Rect{12, 34, 80, 60}
	for index := HandleTopLeft; index <= HandleBottomRight; index++ {
		resized := ResizeBounds(bounds, 13, -7, index, false, 10, 1, Point{}, false, false)
		back := ResizeBounds(resized, -13, 7, index, false, 10, 1, Point{}, false, false)
		if !rectsAlmostEqual(back, bounds) {
			t.Errorf("handle %d: resize then reverse = %v, want %v", index, back, bounds)
		}
	}
}

func TestResizeBoundsDragThrough(t *testing.T) {
	// Dragging the right edge 150 units left of a 100-wide rectangle
	// flips the origin instead of producing negative width.
	bounds := Rect{0, 0, 100, 100}
	got := ResizeBounds(bounds, -150, 0, HandleRight, false, 10, 1, Point{}, false, false)
	want := Rect{-50, 0, 50, 100}
	if got != want {
		t.Errorf("drag-through = %v, want %v", got, want)
	}
}

func TestResizeBoundsGridSnap(t *testing.T) {
	bounds := Rect{0, 0, 100, 100}
	got := ResizeBounds(bounds, 13, 17, HandleBottomRight, true, 10, 1, Point{}, false, false)
	want := Rect{0, 0, 110, 120}
	if got != want {
		t.Errorf("grid snap = %v, want %v", got, want)
	}
}

func TestResizeBoundsConstrained(t *testing.T) {
	// 200x100 keeps its 2:1 aspect; the height follows a right-edge drag.
	bounds := Rect{0, 0, 200, 100}
	got := ResizeBounds(bounds, 40, 0, HandleRight, false, 10, 1, Point{}, true, false)
	want := Rect{0, 0, 240, 120}
	if got != want {
		t.Errorf("constrained = %v, want %v", got, want)
	}

	// Handle 0 anchors the bottom-right corner.
	got = ResizeBounds(Rect{0, 0, 100, 100}, -20, 0, HandleTopLeft, false, 10, 1, Point{}, true, false)
	if !almostEqual(got.Right(), 100) || !almostEqual(got.Bottom(), 100) {
		t.Errorf("constrained top-left moved the anchor corner: %v", got)
	}
}

func TestResizeBoundsCentered(t *testing.T) {
	bounds := Rect{0, 0, 100, 100}
	got := ResizeBounds(bounds, 20, 0, HandleRight, false, 10, 1, Point{}, false, true)
	want := Rect{-20, 0, 140, 100}
	if got != want {
		t.Errorf("centered = %v, want %v", got, want)
	}
	if !almostEqual(got.CenterX(), bounds.CenterX()) || !almostEqual(got.CenterY(), bounds.CenterY()) {
		t.Errorf("centered resize moved the center: %v", got.Center())
	}
}

func TestResizeBoundsSingleHandle(t *testing.T) {
	bounds := Rect{10, 10, 50, 50}
	got := ResizeBounds(bounds, 5, 15, HandleSingle, false, 10, 1, Point{}, false, false)
	want := Rect{10, 10, 55, 65}
	if got != want {
		t.Errorf("single handle = %v, want %v", got, want)
	}
}

func TestRotateResizeDelta(t *testing.T) {
	// A screen drag of (20,10) on a shape rotated 90° is a local-frame
	// drag of (10,-20).
	dx, dy := RotateResizeDelta(20, 10, 90)
	if !almostEqual(dx, 10) || !almostEqual(dy, -20) {
		t.Errorf("RotateResizeDelta(20, 10, 90°) = (%v, %v), want (10, -20)", dx, dy)
	}

	// Unrotated shapes pass through.
	dx, dy = RotateResizeDelta(20, 10, 0)
	if dx != 20 || dy != 10 {
		t.Errorf("RotateResizeDelta(20, 10, 0) = (%v, %v), want (20, 10)", dx, dy)
	}
}

func TestEnsureMinBounds(t *testing.T) {
	// A container whose children occupy (20,20)-(80,80) cannot shrink
	// below that box plus the children's offset from the original origin.
	result := Rect{0, 0, 50, 50}
	minBounds := Rect{20, 20, 60, 60}
	got := EnsureMinBounds(result, minBounds, Point{0, 0}, 1)
	if got.Width < 80 || got.Height < 80 {
		t.Errorf("EnsureMinBounds = %v, want at least 80x80", got)
	}

	// A large result is untouched.
	result = Rect{0, 0, 200, 150}
	got = EnsureMinBounds(result, minBounds, Point{0, 0}, 1)
	if got != result {
		t.Errorf("EnsureMinBounds modified a sufficient result: %v", got)
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{360, 0},
		{-90, 270},
		{450, 90},
		{-720, 0},
	}
	for _, tt := range tests {
		if got := NormalizeAngle(tt.in); !almostEqual(got, tt.want) {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRectanglePerimeter(t *testing.T) {
	bounds := Rect{0, 0, 100, 100}

	// Ray straight right exits at the middle of the right edge.
	got := RectanglePerimeter(bounds, 0, Point{200, 50})
	if !almostEqual(got.X, 100) || !almostEqual(got.Y, 50) {
		t.Errorf("right exit = %v, want (100,50)", got)
	}

	// Ray straight up exits the top edge.
	got = RectanglePerimeter(bounds, 0, Point{50, -100})
	if !almostEqual(got.X, 50) || !almostEqual(got.Y, 0) {
		t.Errorf("top exit = %v, want (50,0)", got)
	}

	// Degenerate ray (next at center) stays at the center.
	got = RectanglePerimeter(bounds, 0, Point{50, 50})
	if !almostEqual(got.X, 50) || !almostEqual(got.Y, 50) {
		t.Errorf("degenerate ray = %v, want center", got)
	}
}

func TestSegmentDistance(t *testing.T) {
	a, b := Point{0, 0}, Point{10, 0}
	if d := SegmentDistance(a, b, Point{5, 3}); !almostEqual(d, 3) {
		t.Errorf("distance above segment = %v, want 3", d)
	}
	if d := SegmentDistance(a, b, Point{-3, 4}); !almostEqual(d, 5) {
		t.Errorf("distance beyond endpoint = %v, want 5", d)
	}
	if d := SegmentDistance(a, a, Point{3, 4}); !almostEqual(d, 5) {
		t.Errorf("degenerate segment = %v, want 5", d)
	}
}
