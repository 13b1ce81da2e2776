// Package guide implements move-time alignment assistance: given a
// snapshot of candidate reference boxes, it adjusts a proposed drag
// delta so a selection edge or center lands exactly on a near-aligned
// candidate feature, and exposes the matching guide lines for drawing.
package guide

import (
	"math"

	"dragkit/geometry"
	"dragkit/view"
)

// Line is one visible guide line in device coordinates.
type Line struct {
	Horizontal bool
	Position   float64
	From, To   geometry.Point
}

// Guide snaps a moving selection against a fixed set of candidate
// states. Candidates are captured once at session start; there is no
// incremental recomputation during a drag.
type Guide struct {
	// Horizontal and Vertical enable the two guide directions.
	Horizontal, Vertical bool

	// GridSize and Tolerance feed the snap distance: half a grid step
	// when the grid is enabled, else Tolerance, both scaled by the view.
	GridSize  float64
	Tolerance float64

	view       *view.View
	candidates []*view.State
	// sources are the states of the cells being moved; they join the
	// candidate set only while cloning, so a clone can align with its
	// original.
	sources []*view.State

	lines []Line
}

// New creates a guide over the given candidate states. sources are the
// states of the dragged cells themselves.
func New(v *view.View, candidates, sources []*view.State) *Guide {
	return &Guide{
		Horizontal: true,
		Vertical:   true,
		GridSize:   10,
		Tolerance:  2,
		view:       v,
		candidates: candidates,
		sources:    sources,
	}
}

func (g *Guide) snapTolerance(gridEnabled bool) float64 {
	t := g.Tolerance
	if gridEnabled {
		t = g.GridSize / 2
	}
	return t * g.view.Scale
}

// Move returns the delta adjusted so that, per axis, the smallest
// in-tolerance correction aligns a selection edge/center with a
// candidate edge/center. Axes with no qualifying candidate fall back to
// the grid-snapped (or raw) delta and show no guide line.
func (g *Guide) Move(bounds geometry.Rect, delta geometry.Point, gridEnabled, cloning bool) geometry.Point {
	g.lines = g.lines[:0]
	if !g.Horizontal && !g.Vertical {
		return g.snapFallback(bounds, delta, gridEnabled, false, false)
	}

	tol := g.snapTolerance(gridEnabled)
	b := bounds.Translate(delta.X, delta.Y)

	bestX, bestY := tol, tol
	var adjX, adjY float64
	var boxX, boxY geometry.Rect
	var posX, posY float64
	overrideX, overrideY := false, false

	states := g.candidates
	if cloning && len(g.sources) > 0 {
		states = append(append([]*view.State{}, g.candidates...), g.sources...)
	}

	for _, s := range states {
		box := s.BoundingBox()

		if g.Vertical {
			for _, x := range [3]float64{box.X, box.CenterX(), box.Right()} {
				for _, moving := range [3]float64{b.X, b.CenterX(), b.Right()} {
					if d := x - moving; math.Abs(d) < bestX {
						bestX = math.Abs(d)
						adjX = d
						posX = x
						boxX = box
						overrideX = true
					}
				}
			}
		}

		if g.Horizontal {
			for _, y := range [3]float64{box.Y, box.CenterY(), box.Bottom()} {
				for _, moving := range [3]float64{b.Y, b.CenterY(), b.Bottom()} {
					if d := y - moving; math.Abs(d) < bestY {
						bestY = math.Abs(d)
						adjY = d
						posY = y
						boxY = box
						overrideY = true
					}
				}
			}
		}
	}

	if overrideX {
		delta.X += adjX
	}
	if overrideY {
		delta.Y += adjY
	}

	final := bounds.Translate(delta.X, delta.Y)
	if overrideX {
		g.lines = append(g.lines, verticalLine(posX, final, boxX))
	}
	if overrideY {
		g.lines = append(g.lines, horizontalLine(posY, final, boxY))
	}
	return g.snapFallback(bounds, delta, gridEnabled, overrideX, overrideY)
}

// snapFallback grid-snaps the axes the guide did not claim.
func (g *Guide) snapFallback(bounds geometry.Rect, delta geometry.Point, gridEnabled, overrideX, overrideY bool) geometry.Point {
	if !gridEnabled {
		return delta
	}
	scale := g.view.Scale
	if !overrideX {
		snapped := geometry.Snap((bounds.X+delta.X)/scale, g.GridSize) * scale
		delta.X = snapped - bounds.X
	}
	if !overrideY {
		snapped := geometry.Snap((bounds.Y+delta.Y)/scale, g.GridSize) * scale
		delta.Y = snapped - bounds.Y
	}
	return delta
}

// Lines returns the guide lines chosen by the last Move.
func (g *Guide) Lines() []Line {
	return g.lines
}

// Hide clears any visible guide lines.
func (g *Guide) Hide() {
	g.lines = nil
}

func verticalLine(x float64, a, b geometry.Rect) Line {
	minY := min(a.Y, b.Y)
	maxY := max(a.Bottom(), b.Bottom())
	return Line{Position: x, From: geometry.Point{X: x, Y: minY}, To: geometry.Point{X: x, Y: maxY}}
}

func horizontalLine(y float64, a, b geometry.Rect) Line {
	minX := min(a.X, b.X)
	maxX := max(a.Right(), b.Right())
	return Line{Horizontal: true, Position: y, From: geometry.Point{X: minX, Y: y}, To: geometry.Point{X: maxX, Y: y}}
}
