package interaction

import (
	"math"

	"dragkit/diagram"
	"dragkit/geometry"
	"dragkit/view"
)

// EdgeSession reroutes an edge through one grabbed handle: a terminal, an
// interior waypoint, a virtual waypoint at a segment midpoint (dragging
// one inserts a real waypoint), or the label. Terminal drags resolve and
// validate a connection target on every move; the commit is blocked by a
// stored validation error.
type EdgeSession struct {
	surface *Surface
	edge    *diagram.Cell
	state   *view.State
	handle  Handle

	start geometry.Point
	phase Phase

	// points is the working copy of the interior waypoints in model
	// coordinates; bendIndex is the one being dragged, -1 for terminal
	// and label drags.
	points    []geometry.Point
	bendIndex int

	currentPoint      geometry.Point // device
	currentTerminal   *diagram.Cell
	currentConstraint *view.ConnectionConstraint
	validationErr     *ValidationError

	labelPoint geometry.Point
	outline    Outline
}

func newEdgeSession(s *Surface, st *view.State, h Handle, p Pointer) *EdgeSession {
	es := &EdgeSession{
		surface:   s,
		edge:      st.Cell,
		state:     st,
		handle:    h,
		start:     p.Point,
		phase:     PhaseToleranceCheck,
		bendIndex: -1,
	}
	if geo := st.Cell.Geometry; geo != nil {
		es.points = make([]geometry.Point, len(geo.Points))
		copy(es.points, geo.Points)
	}
	switch h.Kind {
	case KindBend:
		es.bendIndex = h.Index
	case KindVirtualBend:
		// Inserting a waypoint at the grabbed segment midpoint turns
		// the virtual handle into a real one for the rest of the drag.
		mid := s.View.ToModel(h.Center())
		es.points = append(es.points, geometry.Point{})
		copy(es.points[h.Index+1:], es.points[h.Index:])
		es.points[h.Index] = mid
		es.bendIndex = h.Index
	}
	return es
}

// Phase returns the session lifecycle state.
func (es *EdgeSession) Phase() Phase { return es.phase }

// Outline returns the preview polyline.
func (es *EdgeSession) Outline() Outline { return es.outline }

// CurrentTarget returns the resolved connection target and the stored
// validation result of the last move, for highlight drawing.
func (es *EdgeSession) CurrentTarget() (*diagram.Cell, *ValidationError) {
	return es.currentTerminal, es.validationErr
}

// Move recomputes the candidate point, connection target and preview.
func (es *EdgeSession) Move(p Pointer) {
	if es.phase.Done() || es.phase == PhaseSuspended {
		return
	}
	delta := p.Point.Sub(es.start)
	if es.phase == PhaseToleranceCheck {
		tol := es.surface.Opts.Tolerance
		if math.Abs(delta.X) <= tol && math.Abs(delta.Y) <= tol {
			return
		}
		es.phase = PhaseActive
	}

	switch es.handle.Kind {
	case KindLabel:
		es.labelPoint = p.Point
		es.outline = Outline{Visible: true, Bounds: handleRect(p.Point, es.surface.Opts.HandleSize)}
		return
	case KindSourceTerminal, KindTargetTerminal:
		es.currentPoint = es.snapPoint(p.Point)
		es.resolveTarget(es.currentPoint)
	default:
		es.currentPoint = es.snapPoint(p.Point)
		es.points[es.bendIndex] = es.surface.View.ToModel(es.currentPoint)
	}
	es.redrawPreview()
}

// snapPoint applies grid snap and, when enabled, snaps to either
// terminal's routing center or any existing waypoint within tolerance.
func (es *EdgeSession) snapPoint(p geometry.Point) geometry.Point {
	s := es.surface
	opts := s.Opts

	if opts.GridEnabled {
		mp := s.View.ToModel(p)
		mp.X = geometry.Snap(mp.X, opts.GridSize)
		mp.Y = geometry.Snap(mp.Y, opts.GridSize)
		p = s.View.ToDevice(mp)
	}

	if !opts.SnapToTerminals {
		return p
	}
	tol := opts.Tolerance + opts.HandleSize/2
	var candidates []geometry.Point
	for _, source := range []bool{true, false} {
		if ts := s.View.State(es.edge.Terminal(source)); ts != nil {
			candidates = append(candidates, ts.RoutingCenter())
		}
	}
	for i, wp := range es.points {
		if i != es.bendIndex {
			candidates = append(candidates, s.View.ToDevice(wp))
		}
	}
	for _, c := range candidates {
		if p.Distance(c) <= tol {
			return c
		}
	}
	return p
}

// resolveTarget finds the connection target under the pointer: the
// fixed-constraint locator wins, else the topmost connectable cell,
// preferring a connectable ancestor and excluding non-connectable edges
// and any ancestor of the edge itself (which would create a cycle).
// The (source, target) pair is validated externally on every move and
// the result stored; a non-nil error blocks the commit.
func (es *EdgeSession) resolveTarget(p geometry.Point) {
	s := es.surface
	hit := s.View.CellAt(p, nil, func(c *diagram.Cell) bool {
		if c == es.edge || s.Model.IsAncestor(c, es.edge) {
			return true
		}
		return c.Edge && !s.IsConnectable(c)
	})

	for c := hit; c != nil; c = c.Parent {
		if s.IsConnectable(c) {
			hit = c
			break
		}
	}
	if hit != nil && !s.IsConnectable(hit) {
		hit = nil
	}

	es.currentTerminal = hit
	es.currentConstraint = nil
	es.validationErr = nil
	if hit == nil {
		return
	}

	if s.ConstraintsFor != nil {
		if ts := s.View.State(hit); ts != nil {
			tol := s.Opts.Tolerance + s.Opts.HandleSize/2
			for _, c := range s.ConstraintsFor(hit) {
				if p.Distance(s.View.ConstraintPoint(ts, c)) <= tol {
					cc := c
					es.currentConstraint = &cc
					break
				}
			}
		}
	}

	source, target := es.prospectivePair(hit)
	es.validationErr = s.ValidateConnection(source, target)
}

func (es *EdgeSession) prospectivePair(candidate *diagram.Cell) (source, target *diagram.Cell) {
	if es.handle.Kind == KindSourceTerminal {
		return candidate, es.edge.Target
	}
	return es.edge.Source, candidate
}

// redrawPreview recomputes the full absolute point list: the dragged
// end follows the pointer (or the resolved target's port/perimeter),
// the fixed end re-resolves against the updated neighbor point.
func (es *EdgeSession) redrawPreview() {
	s := es.surface

	var inner []geometry.Point
	for _, wp := range es.points {
		inner = append(inner, s.View.ToDevice(wp))
	}

	src := es.previewTerminal(true, firstOr(inner, es.otherReference(true)))
	tgt := es.previewTerminal(false, lastOr(inner, src))

	pts := make([]geometry.Point, 0, len(inner)+2)
	pts = append(pts, src)
	pts = append(pts, inner...)
	pts = append(pts, tgt)
	es.outline = Outline{Visible: true, Points: pts}
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

// previewTerminal resolves one end of the preview polyline.
func (es *EdgeSession) previewTerminal(source bool, next geometry.Point) geometry.Point {
	s := es.surface
	dragged := (source && es.handle.Kind == KindSourceTerminal) ||
		(!source && es.handle.Kind == KindTargetTerminal)

	if dragged {
		if es.currentTerminal != nil {
			ts := s.View.State(es.currentTerminal)
			if ts != nil {
				if es.currentConstraint != nil {
					return s.View.ConstraintPoint(ts, *es.currentConstraint)
				}
				return geometry.RectanglePerimeter(ts.Bounds(), ts.Rotation, next)
			}
		}
		return es.currentPoint
	}

	terminal := es.edge.Terminal(source)
	if ts := s.View.State(terminal); ts != nil {
		if c, ok := s.View.TerminalConstraint(es.edge, source); ok {
			return s.View.ConstraintPoint(ts, c)
		}
		return geometry.RectanglePerimeter(ts.Bounds(), ts.Rotation, next)
	}
	return es.otherReference(source)
}

// otherReference is the fixed geometry endpoint for a dangling end.
func (es *EdgeSession) otherReference(source bool) geometry.Point {
	geo := es.edge.Geometry
	if geo != nil {
		if source && geo.SourcePoint != nil {
			return es.surface.View.ToDevice(*geo.SourcePoint)
		}
		if !source && geo.TargetPoint != nil {
			return es.surface.View.ToDevice(*geo.TargetPoint)
		}
	}
	if n := len(es.state.AbsolutePoints); n > 0 {
		if source {
			return es.state.AbsolutePoints[0]
		}
		return es.state.AbsolutePoints[n-1]
	}
	return geometry.Point{}
}

// Up commits the reroute.
func (es *EdgeSession) Up(p Pointer) error {
	if es.phase.Done() {
		return nil
	}
	es.outline = Outline{}
	if es.phase != PhaseActive && es.phase != PhaseSuspended {
		es.phase = PhaseCommitted
		return nil
	}
	es.phase = PhaseCommitted
	s := es.surface

	switch es.handle.Kind {
	case KindLabel:
		offset := es.labelPoint.Sub(es.start)
		return s.Dispatcher.MoveLabel(es.edge, offset.X/s.View.Scale, offset.Y/s.View.Scale)

	case KindSourceTerminal, KindTargetTerminal:
		isSource := es.handle.Kind == KindSourceTerminal
		if es.validationErr != nil {
			// A non-nil error always blocks; only a non-empty message
			// is surfaced.
			s.alert(es.validationErr.Message)
			return es.validationErr
		}
		if es.currentTerminal != nil {
			_, err := s.Dispatcher.Reconnect(es.edge, es.currentTerminal, isSource, es.currentConstraint, p.Clone && s.Opts.CloneEnabled)
			return err
		}
		if s.Opts.AllowDanglingEdges {
			// Released on empty canvas: keep the edge, pin the end to
			// an absolute point.
			return s.Dispatcher.SetTerminalPoint(es.edge, s.View.ToModel(es.currentPoint), isSource)
		}
		return nil

	default:
		points := es.finalPoints()
		return s.Dispatcher.SetEdgePoints(es.edge, points)
	}
}

// finalPoints applies the release-time waypoint drops: a waypoint
// released on an adjacent waypoint is removed, as is one whose two
// neighboring segments are collinear within tolerance.
func (es *EdgeSession) finalPoints() []geometry.Point {
	s := es.surface
	i := es.bendIndex
	tol := s.Opts.Tolerance + s.Opts.HandleSize/2

	for _, j := range [2]int{i - 1, i + 1} {
		if j >= 0 && j < len(es.points) && j != i {
			neighbor := s.View.ToDevice(es.points[j])
			if es.currentPoint.Distance(neighbor) <= tol {
				return removePoint(es.points, i)
			}
		}
	}

	if s.Opts.StraightRemoval {
		left, right := es.straightTolerancePoints()
		if geometry.SegmentDistance(left, right, es.currentPoint) <= s.Opts.StraightTolerance*s.View.Scale {
			return removePoint(es.points, i)
		}
	}
	return es.points
}

// straightTolerancePoints returns the device points bracketing the
// dragged waypoint for the collinearity test. When the bracket is a
// terminal without a fixed connection constraint, the synthetic point is
// the perimeter point aimed at the other terminal's view-level routing
// center.
func (es *EdgeSession) straightTolerancePoints() (left, right geometry.Point) {
	s := es.surface
	i := es.bendIndex

	bracket := func(source bool) geometry.Point {
		terminal := es.edge.Terminal(source)
		ts := s.View.State(terminal)
		if ts == nil {
			return es.otherReference(source)
		}
		if c, ok := s.View.TerminalConstraint(es.edge, source); ok {
			return s.View.ConstraintPoint(ts, c)
		}
		aim := ts.RoutingCenter()
		if other := s.View.State(es.edge.Terminal(!source)); other != nil {
			aim = other.RoutingCenter()
		}
		return geometry.RectanglePerimeter(ts.Bounds(), ts.Rotation, aim)
	}

	if i > 0 {
		left = s.View.ToDevice(es.points[i-1])
	} else {
		left = bracket(true)
	}
	if i < len(es.points)-1 {
		right = s.View.ToDevice(es.points[i+1])
	} else {
		right = bracket(false)
	}
	return left, right
}

func removePoint(points []geometry.Point, i int) []geometry.Point {
	result := make([]geometry.Point, 0, len(points)-1)
	result = append(result, points[:i]...)
	return append(result, points[i+1:]...)
}

// Cancel discards the session.
func (es *EdgeSession) Cancel() {
	if es.phase.Done() {
		return
	}
	es.outline = Outline{}
	es.phase = PhaseCancelled
}

// Refresh re-reads the edge state after an external model change.
func (es *EdgeSession) Refresh() {
	if st := es.surface.View.State(es.edge); st != nil {
		es.state = st
	}
	if es.phase == PhaseActive {
		es.redrawPreview()
	}
}

// Suspend pauses preview updates.
func (es *EdgeSession) Suspend() {
	if es.phase == PhaseActive {
		es.phase = PhaseSuspended
	}
}

// Resume forces a preview redraw.
func (es *EdgeSession) Resume() {
	if es.phase == PhaseSuspended {
		es.phase = PhaseActive
		es.redrawPreview()
	}
}
