package interaction

import (
	"math"

	"dragkit/diagram"
	"dragkit/geometry"
	"dragkit/view"
)

// VertexSession manipulates a single vertex through one grabbed handle:
// resize (handle indices 0-8), rotation, label offset, or a pluggable
// custom handle. The modes are exclusive; the grabbed handle decides.
type VertexSession struct {
	surface *Surface
	cell    *diagram.Cell
	state   *view.State
	handle  Handle

	start       geometry.Point
	startBounds geometry.Rect

	// Rotation state: the angular offset at grab time keeps the shape
	// from jumping to the pointer angle.
	startRotation float64
	grabAngle     float64

	currentBounds   geometry.Rect
	currentRotation float64
	labelPoint      geometry.Point

	// childShift is the unscaled residual applied to children at commit
	// so they stay put under a rotated resize.
	childShift geometry.Point

	phase   Phase
	live    *LivePreview
	outline Outline
}

func newVertexSession(s *Surface, st *view.State, h Handle, p Pointer) *VertexSession {
	vs := &VertexSession{
		surface:         s,
		cell:            st.Cell,
		state:           st,
		handle:          h,
		start:           p.Point,
		startBounds:     st.Bounds(),
		startRotation:   st.Rotation,
		currentBounds:   st.Bounds(),
		currentRotation: st.Rotation,
		phase:           PhaseToleranceCheck,
	}
	if h.Kind == KindRotation {
		vs.grabAngle = geometry.NormalizeAngle(pointerAngle(st.Center(), p.Point) - st.Rotation)
	}
	return vs
}

// pointerAngle returns the rotation implied by the pointer position:
// the angle of the (center → pointer) vector, offset so a pointer
// straight above the center means zero.
func pointerAngle(center, p geometry.Point) float64 {
	dx := p.X - center.X
	dy := p.Y - center.Y
	return geometry.NormalizeAngle(geometry.ToDegrees(math.Atan2(dy, dx)) + 90)
}

// Phase returns the session lifecycle state.
func (vs *VertexSession) Phase() Phase { return vs.phase }

// Outline returns the cheap preview for drawing.
func (vs *VertexSession) Outline() Outline { return vs.outline }

// Move recomputes the preview for the grabbed handle.
func (vs *VertexSession) Move(p Pointer) {
	if vs.phase.Done() || vs.phase == PhaseSuspended {
		return
	}
	delta := p.Point.Sub(vs.start)
	if vs.phase == PhaseToleranceCheck {
		tol := vs.surface.Opts.Tolerance
		if math.Abs(delta.X) <= tol && math.Abs(delta.Y) <= tol {
			return
		}
		vs.phase = PhaseActive
	}

	switch vs.handle.Kind {
	case KindResize:
		vs.resizeTo(delta, p)
	case KindRotation:
		vs.rotateTo(p)
	case KindLabel:
		vs.labelPoint = p.Point
		vs.outline = Outline{Visible: true, Bounds: handleRect(p.Point, vs.surface.Opts.HandleSize)}
		return
	case KindCustom:
		vs.handle.Custom.Process(p.Point)
		vs.outline = Outline{Visible: true, Bounds: handleRect(vs.handle.Custom.Position(), vs.surface.Opts.HandleSize)}
		return
	}
	vs.redrawPreview()
}

// resizeTo runs the resize algebra for a screen-space delta. Handles are
// defined in the shape's unrotated local frame, so the delta is first
// counter-rotated; afterwards the rotation-induced drift of the center
// is corrected so the anchored corner stays fixed under rotation.
func (vs *VertexSession) resizeTo(delta geometry.Point, p Pointer) {
	s := vs.surface
	opts := s.Opts
	alpha := vs.startRotation

	dx, dy := geometry.RotateResizeDelta(delta.X, delta.Y, alpha)

	constrained := p.Constrain || (vs.cell.Style != nil && vs.cell.Style.FixedAspect())
	bounds := geometry.ResizeBounds(vs.startBounds, dx, dy, vs.handle.Index,
		opts.GridEnabled, opts.GridSize, s.View.Scale, s.View.Translate, constrained, p.Centered)

	corr := geometry.RotationDriftCorrection(vs.startBounds.Center(), bounds.Center(), alpha)
	bounds.X += corr.X
	bounds.Y += corr.Y
	vs.childShift = geometry.Point{}
	if !vs.cell.Collapsed {
		vs.childShift = geometry.Point{X: corr.X / s.View.Scale, Y: corr.Y / s.View.Scale}
	}

	minSize := opts.MinCellSize * s.View.Scale
	bounds.Width = max(bounds.Width, minSize)
	bounds.Height = max(bounds.Height, minSize)

	if len(vs.cell.Children) > 0 && !vs.cell.Collapsed {
		var boxes []geometry.Rect
		for _, child := range vs.cell.Children {
			if g := child.Geometry; g != nil && !g.Relative {
				boxes = append(boxes, g.Rect())
			}
		}
		if len(boxes) > 0 {
			origin := geometry.Point{
				X: vs.startBounds.X / s.View.Scale,
				Y: vs.startBounds.Y / s.View.Scale,
			}
			bounds = geometry.EnsureMinBounds(bounds, geometry.UnionBounds(boxes), origin, s.View.Scale)
		}
	}

	if opts.MaxBounds != nil {
		bounds = clampToBounds(bounds, s.View.ToDevice(geometry.Point{X: opts.MaxBounds.X, Y: opts.MaxBounds.Y}), opts.MaxBounds.Scale(s.View.Scale))
	}

	vs.currentBounds = bounds
}

func clampToBounds(r geometry.Rect, origin geometry.Point, limit geometry.Rect) geometry.Rect {
	limit.X, limit.Y = origin.X, origin.Y
	r.Width = min(r.Width, limit.Width)
	r.Height = min(r.Height, limit.Height)
	r.X = max(limit.X, min(r.X, limit.Right()-r.Width))
	r.Y = max(limit.Y, min(r.Y, limit.Bottom()-r.Height))
	return r
}

// rotateTo derives the rotation from the pointer angle, optionally
// rastered: the step widens as the pointer approaches the center, so
// short-radius rotation stays controllable.
func (vs *VertexSession) rotateTo(p Pointer) {
	center := vs.state.Center()
	angle := pointerAngle(center, p.Point) - vs.grabAngle

	if vs.surface.Opts.RotationRaster {
		dist := center.Distance(p.Point)
		raster := max(1, 5*min(3, math.Max(0, math.Round(80/math.Max(1, math.Abs((dist-20)*3))))))
		angle = math.Round(angle/raster) * raster
	}
	vs.currentRotation = geometry.NormalizeAngle(angle)
}

// redrawPreview mutates the live state within the preview budget, else
// shows an outline.
func (vs *VertexSession) redrawPreview() {
	s := vs.surface
	if vs.live == nil && !vs.outline.Visible && 1+len(vs.cell.Children) <= s.Opts.LivePreviewMaxCells {
		vs.live = NewLivePreview(s.View, s.Model, []*diagram.Cell{vs.cell})
	}
	if vs.live != nil {
		origin := vs.currentBounds
		start := vs.startBounds
		rotation := vs.currentRotation
		vs.live.Mutate(func(states map[*diagram.Cell]*view.State) {
			for cell, st := range states {
				if cell == vs.cell {
					st.SetBounds(origin)
					st.Rotation = rotation
					continue
				}
				if cell.Vertex {
					// Descendants ride on the origin delta.
					st.X += origin.X - start.X
					st.Y += origin.Y - start.Y
				}
			}
		})
		vs.outline = Outline{}
		return
	}
	vs.outline = Outline{Visible: true, Bounds: vs.currentBounds, Rotation: vs.currentRotation}
}

// Up commits the handle's net effect through the dispatcher.
func (vs *VertexSession) Up(p Pointer) error {
	if vs.phase.Done() {
		return nil
	}
	if vs.live != nil {
		defer vs.live.Restore()
	}
	vs.outline = Outline{}

	if vs.phase != PhaseActive && vs.phase != PhaseSuspended {
		vs.phase = PhaseCommitted
		return nil
	}
	if vs.live != nil {
		// Persistent geometry is the commit input; put states back first.
		vs.live.Restore()
	}
	vs.phase = PhaseCommitted

	s := vs.surface
	switch vs.handle.Kind {
	case KindResize:
		return s.Dispatcher.ResizeCell(vs.cell, vs.geometryBounds(), vs.childShift)
	case KindRotation:
		delta := vs.currentRotation - vs.startRotation
		return s.Dispatcher.RotateCells([]*diagram.Cell{vs.cell}, delta)
	case KindLabel:
		offset := vs.labelPoint.Sub(vs.start)
		scale := s.View.Scale
		return s.Dispatcher.MoveLabel(vs.cell, offset.X/scale, offset.Y/scale)
	case KindCustom:
		vs.handle.Custom.Execute(s.Dispatcher)
		return nil
	}
	return nil
}

// geometryBounds converts the device-space preview bounds back into the
// cell's geometry space (unscale, untranslate, strip the parent origin).
func (vs *VertexSession) geometryBounds() geometry.Rect {
	v := vs.surface.View
	origin := vs.state.Origin
	p := v.ToModel(geometry.Point{X: vs.currentBounds.X, Y: vs.currentBounds.Y})
	return geometry.Rect{
		X:      p.X - origin.X,
		Y:      p.Y - origin.Y,
		Width:  vs.currentBounds.Width / v.Scale,
		Height: vs.currentBounds.Height / v.Scale,
	}
}

// Cancel discards the session, restoring live-preview state.
func (vs *VertexSession) Cancel() {
	if vs.phase.Done() {
		return
	}
	if vs.live != nil {
		vs.live.Restore()
	}
	if vs.handle.Kind == KindCustom && vs.handle.Custom != nil {
		vs.handle.Custom.Reset()
	}
	vs.outline = Outline{}
	vs.phase = PhaseCancelled
}

// Refresh re-reads the state after an external model change.
func (vs *VertexSession) Refresh() {
	if st := vs.surface.View.State(vs.cell); st != nil {
		vs.state = st
	}
	if vs.phase == PhaseActive {
		vs.live = nil
		vs.redrawPreview()
	}
}

// Suspend pauses preview updates.
func (vs *VertexSession) Suspend() {
	if vs.phase == PhaseActive {
		vs.phase = PhaseSuspended
	}
}

// Resume forces a full preview redraw.
func (vs *VertexSession) Resume() {
	if vs.phase == PhaseSuspended {
		vs.phase = PhaseActive
		vs.redrawPreview()
	}
}
