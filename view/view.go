package view

import (
	"dragkit/diagram"
	"dragkit/geometry"
)

// Renderer is the drawing backend notified when a state needs to be
// repainted. Live preview leans on this heavily: it mutates states and
// redraws them without touching the model.
type Renderer interface {
	Redraw(state *State)
}

// ConnectionConstraint is a normalized, perimeter-relative fixed point
// on a cell where an edge may anchor. X and Y are fractions of the cell
// bounds in its unrotated frame.
type ConnectionConstraint struct {
	X, Y float64
}

// View maps the model into device space: it owns the scale and
// translation, one State per cell, and the resolution of edge terminal
// points against vertex shapes.
type View struct {
	Model     *diagram.Model
	Scale     float64
	Translate geometry.Point

	// HitTolerance widens hit tests, mostly so thin edges are grabbable.
	HitTolerance float64

	renderer Renderer
	states   map[*diagram.Cell]*State
}

// NewView creates a view over model at scale 1 with no translation.
func NewView(model *diagram.Model) *View {
	return &View{
		Model:        model,
		Scale:        1,
		HitTolerance: 4,
		states:       make(map[*diagram.Cell]*State),
	}
}

// SetRenderer installs the drawing backend.
func (v *View) SetRenderer(r Renderer) { v.renderer = r }

// Redraw asks the backend to repaint one state. Nil-safe so tests can
// run without a renderer.
func (v *View) Redraw(state *State) {
	if v.renderer != nil && state != nil {
		v.renderer.Redraw(state)
	}
}

// ToDevice maps a model point to device coordinates (root space).
func (v *View) ToDevice(p geometry.Point) geometry.Point {
	return geometry.Point{
		X: (p.X + v.Translate.X) * v.Scale,
		Y: (p.Y + v.Translate.Y) * v.Scale,
	}
}

// ToModel maps a device point back to model coordinates (root space).
func (v *View) ToModel(p geometry.Point) geometry.Point {
	return geometry.Point{
		X: p.X/v.Scale - v.Translate.X,
		Y: p.Y/v.Scale - v.Translate.Y,
	}
}

// State returns the current state for cell, validating the view if the
// cell has none yet. Returns nil for nil or invisible cells.
func (v *View) State(cell *diagram.Cell) *State {
	if cell == nil {
		return nil
	}
	if s, ok := v.states[cell]; ok {
		return s
	}
	v.Validate()
	return v.states[cell]
}

// States returns all current states.
func (v *View) States() map[*diagram.Cell]*State {
	return v.states
}

// Validate recomputes every state from the model: vertices first so edge
// terminal resolution can see final vertex bounds.
func (v *View) Validate() {
	v.states = make(map[*diagram.Cell]*State)
	var edges []*State
	v.validateCell(v.Model.Root, geometry.Point{}, &edges)
	for _, es := range edges {
		v.validateEdgePoints(es)
	}
}

func (v *View) validateCell(cell *diagram.Cell, origin geometry.Point, edges *[]*State) {
	if cell == nil || !cell.Visible {
		return
	}
	childOrigin := origin
	if cell != v.Model.Root && cell.Geometry != nil {
		s := &State{Cell: cell, Origin: origin}
		geo := cell.Geometry
		if cell.Vertex {
			x, y := geo.X, geo.Y
			if geo.Relative && cell.Parent != nil && cell.Parent.Geometry != nil {
				pg := cell.Parent.Geometry
				x = pg.Width * geo.X
				y = pg.Height * geo.Y
				if geo.Offset != nil {
					x += geo.Offset.X
					y += geo.Offset.Y
				}
			}
			p := v.ToDevice(geometry.Point{X: origin.X + x, Y: origin.Y + y})
			s.X, s.Y = p.X, p.Y
			s.Width = geo.Width * v.Scale
			s.Height = geo.Height * v.Scale
			s.Rotation = cell.Rotation()
			childOrigin = geometry.Point{X: origin.X + x, Y: origin.Y + y}
		}
		v.states[cell] = s
		if cell.Edge {
			*edges = append(*edges, s)
		}
	}
	for _, child := range cell.Children {
		v.validateCell(child, childOrigin, edges)
	}
}

// validateEdgePoints resolves the absolute point list of one edge:
// fixed constraint or perimeter point per terminal, interior waypoints
// in between. Floating terminals aim at the first waypoint when present,
// otherwise at the far terminal's routing center.
func (v *View) validateEdgePoints(s *State) {
	edge := s.Cell
	geo := edge.Geometry

	var inner []geometry.Point
	if geo != nil {
		for _, p := range geo.Points {
			inner = append(inner, v.ToDevice(p))
		}
	}

	srcRef := v.terminalReference(edge, true, inner)
	tgtRef := v.terminalReference(edge, false, inner)

	src := v.resolveTerminal(edge, true, firstOr(inner, tgtRef))
	tgt := v.resolveTerminal(edge, false, lastOr(inner, srcRef))

	s.AbsolutePoints = make([]geometry.Point, 0, len(inner)+2)
	s.AbsolutePoints = append(s.AbsolutePoints, src)
	s.AbsolutePoints = append(s.AbsolutePoints, inner...)
	s.AbsolutePoints = append(s.AbsolutePoints, tgt)
}

func firstOr(pts []geometry.Point, def geometry.Point) geometry.Point {
	if len(pts) > 0 {
		return pts[0]
	}
	return def
}

func lastOr(pts []geometry.Point, def geometry.Point) geometry.Point {
	if len(pts) > 0 {
		return pts[len(pts)-1]
	}
	return def
}

// terminalReference is the aiming point contributed by one terminal for
// resolving the opposite end: the fixed constraint point when one is
// declared, else the terminal state's routing center, else the fixed
// geometry endpoint.
func (v *View) terminalReference(edge *diagram.Cell, source bool, inner []geometry.Point) geometry.Point {
	terminal := edge.Terminal(source)
	if ts := v.states[terminal]; ts != nil {
		if c, ok := v.TerminalConstraint(edge, source); ok {
			return v.ConstraintPoint(ts, c)
		}
		return ts.RoutingCenter()
	}
	if edge.Geometry != nil {
		if source && edge.Geometry.SourcePoint != nil {
			return v.ToDevice(*edge.Geometry.SourcePoint)
		}
		if !source && edge.Geometry.TargetPoint != nil {
			return v.ToDevice(*edge.Geometry.TargetPoint)
		}
	}
	return geometry.Point{}
}

// resolveTerminal returns the absolute point for one end of an edge.
// next is the neighboring point the floating terminal aims at.
func (v *View) resolveTerminal(edge *diagram.Cell, source bool, next geometry.Point) geometry.Point {
	terminal := edge.Terminal(source)
	ts := v.states[terminal]
	if ts == nil {
		return v.terminalReference(edge, source, nil)
	}
	if c, ok := v.TerminalConstraint(edge, source); ok {
		return v.ConstraintPoint(ts, c)
	}
	return geometry.RectanglePerimeter(ts.Bounds(), ts.Rotation, next)
}

// RevalidateEdge recomputes the absolute point list of one edge state in
// place, against whatever vertex states currently hold (including states
// transiently mutated for live preview).
func (v *View) RevalidateEdge(s *State) {
	if s != nil && s.Cell.Edge {
		v.validateEdgePoints(s)
	}
}

// TerminalConstraint reads the fixed connection constraint for one end
// of an edge from its style, if declared.
func (v *View) TerminalConstraint(edge *diagram.Cell, source bool) (ConnectionConstraint, bool) {
	if edge.Style == nil {
		return ConnectionConstraint{}, false
	}
	xKey, yKey := diagram.StyleExitX, diagram.StyleExitY
	if !source {
		xKey, yKey = diagram.StyleEntryX, diagram.StyleEntryY
	}
	if _, ok := edge.Style[xKey]; !ok {
		return ConnectionConstraint{}, false
	}
	return ConnectionConstraint{
		X: edge.Style.Float(xKey, 0.5),
		Y: edge.Style.Float(yKey, 0.5),
	}, true
}

// ConstraintPoint maps a normalized constraint onto a state's bounds,
// honoring the shape rotation.
func (v *View) ConstraintPoint(s *State, c ConnectionConstraint) geometry.Point {
	p := geometry.Point{
		X: s.X + c.X*s.Width,
		Y: s.Y + c.Y*s.Height,
	}
	if s.Rotation != 0 {
		p = geometry.RotatePointDeg(p, s.Rotation, s.Center())
	}
	return p
}

// CellAt returns the topmost cell whose shape contains the device point,
// searching depth-first with later siblings (painted above) first.
// Cells for which ignore returns true are skipped but their children are
// still searched.
func (v *View) CellAt(p geometry.Point, parent *diagram.Cell, ignore func(*diagram.Cell) bool) *diagram.Cell {
	if parent == nil {
		parent = v.Model.Root
	}
	for i := len(parent.Children) - 1; i >= 0; i-- {
		child := parent.Children[i]
		if hit := v.CellAt(p, child, ignore); hit != nil {
			return hit
		}
		if ignore != nil && ignore(child) {
			continue
		}
		if s := v.states[child]; s != nil && s.HitTest(p, v.HitTolerance) {
			return child
		}
	}
	return nil
}
