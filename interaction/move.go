package interaction

import (
	"math"

	"dragkit/diagram"
	"dragkit/geometry"
	"dragkit/guide"
	"dragkit/view"
)

// TargetKind classifies the cell under a move drag for highlighting.
type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetContainer
	TargetConnect
	TargetSplit
	TargetInvalid
)

// MoveSession drags one or more cells. It owns tolerance gating, the
// delayed-selection protocol, alignment guides, drop-target resolution
// and the live/outline preview switch; the actual mutation happens once,
// in Up, through the dispatcher.
type MoveSession struct {
	surface *Surface

	start   geometry.Point
	clicked *diagram.Cell
	cells   []*diagram.Cell
	delayed bool

	phase   Phase
	cloning bool
	delta   geometry.Point
	bounds  geometry.Rect

	guide   *guide.Guide
	live    *LivePreview
	outline Outline

	dropTarget *diagram.Cell
	targetKind TargetKind
}

// newMoveSession captures the move set and candidate guide states at
// pointer-down. Selection is immediate for a fresh cell and delayed
// (resolved at pointer-up) when the clicked cell or an ancestor is
// already selected, so a second click narrows instead of re-dragging.
func newMoveSession(s *Surface, clicked *diagram.Cell, p Pointer) *MoveSession {
	ms := &MoveSession{
		surface: s,
		start:   p.Point,
		clicked: clicked,
		phase:   PhaseToleranceCheck,
	}

	ancestor := s.selectedAncestor(clicked)
	ms.delayed = ancestor != nil

	if ancestor == nil && s.IsMovable(clicked) && !s.IsSelected(clicked) {
		s.SetSelection(clicked)
		ms.cells = []*diagram.Cell{clicked}
	} else {
		ms.cells = s.MovableSelection()
	}
	ms.cells = s.TopmostCells(ms.cells)

	var boxes []geometry.Rect
	for _, c := range ms.cells {
		if st := s.View.State(c); st != nil {
			boxes = append(boxes, st.BoundingBox())
		}
	}
	ms.bounds = geometry.UnionBounds(boxes)

	if s.Opts.GuidesEnabled {
		ms.guide = guide.New(s.View, ms.guideCandidates(), ms.movingStates())
		ms.guide.GridSize = s.Opts.GridSize
	}
	return ms
}

// guideCandidates snapshots the reference states the guide may align
// with: visible vertices that are not being moved, not descendants of a
// moved cell, and not lone children of a container (a single child has
// nothing meaningful to align with inside its parent).
func (ms *MoveSession) guideCandidates() []*view.State {
	s := ms.surface
	var result []*view.State
	for cell, st := range s.View.States() {
		if !cell.Vertex || ms.isMoving(cell) {
			continue
		}
		if cell.Parent != nil && cell.Parent != s.Model.Root && cell.Parent.ChildCount() < 2 {
			continue
		}
		result = append(result, st)
	}
	return result
}

func (ms *MoveSession) movingStates() []*view.State {
	var result []*view.State
	for _, c := range ms.cells {
		if st := ms.surface.View.State(c); st != nil {
			result = append(result, st)
		}
	}
	return result
}

func (ms *MoveSession) isMoving(cell *diagram.Cell) bool {
	for _, c := range ms.cells {
		if ms.surface.Model.IsAncestor(c, cell) {
			return true
		}
	}
	return false
}

// Phase returns the session lifecycle state.
func (ms *MoveSession) Phase() Phase { return ms.phase }

// Outline returns the cheap preview rectangle.
func (ms *MoveSession) Outline() Outline { return ms.outline }

// GuideLines returns the currently visible alignment guides.
func (ms *MoveSession) GuideLines() []guide.Line {
	if ms.guide == nil {
		return nil
	}
	return ms.guide.Lines()
}

// DropTarget returns the current drop target and its classification.
func (ms *MoveSession) DropTarget() (*diagram.Cell, TargetKind) {
	return ms.dropTarget, ms.targetKind
}

// Move recomputes the preview for a pointer move. Nothing happens until
// the tolerance is exceeded; afterwards each move recomputes the delta,
// consults the guide, resolves the drop target and redraws the preview.
func (ms *MoveSession) Move(p Pointer) {
	if ms.phase.Done() || ms.phase == PhaseSuspended {
		return
	}
	delta := p.Point.Sub(ms.start)

	if ms.phase == PhaseToleranceCheck {
		tol := ms.surface.Opts.Tolerance
		if math.Abs(delta.X) <= tol && math.Abs(delta.Y) <= tol {
			return
		}
		ms.phase = PhaseActive
	}
	if len(ms.cells) == 0 {
		return
	}

	ms.cloning = p.Clone && ms.surface.Opts.CloneEnabled

	if p.Constrain {
		// Axis-constrained move: zero the minor axis.
		if math.Abs(delta.X) >= math.Abs(delta.Y) {
			delta.Y = 0
		} else {
			delta.X = 0
		}
	}

	if ms.guide != nil && !p.NoGuides && !p.Constrain {
		delta = ms.guide.Move(ms.bounds, delta, ms.surface.Opts.GridEnabled, ms.cloning)
	} else {
		if ms.guide != nil {
			ms.guide.Hide()
		}
		delta = ms.snapDelta(delta)
	}
	ms.delta = delta

	ms.resolveDropTarget(p.Point)
	ms.redrawPreview()
}

// snapDelta grid-snaps the selection origin when guides are not
// consulted.
func (ms *MoveSession) snapDelta(delta geometry.Point) geometry.Point {
	opts := ms.surface.Opts
	if !opts.GridEnabled {
		return delta
	}
	scale := ms.surface.View.Scale
	delta.X = geometry.Snap((ms.bounds.X+delta.X)/scale, opts.GridSize)*scale - ms.bounds.X
	delta.Y = geometry.Snap((ms.bounds.Y+delta.Y)/scale, opts.GridSize)*scale - ms.bounds.Y
	return delta
}

// resolveDropTarget hit-tests the cell under the pointer, excluding the
// dragged cells and their descendants, and classifies it.
func (ms *MoveSession) resolveDropTarget(p geometry.Point) {
	s := ms.surface
	target := s.CellAt(p, func(c *diagram.Cell) bool {
		return ms.isMoving(c)
	})
	ms.dropTarget = target
	ms.targetKind = ms.classifyTarget(target)
}

func (ms *MoveSession) classifyTarget(target *diagram.Cell) TargetKind {
	if target == nil {
		return TargetNone
	}
	s := ms.surface
	single := len(ms.cells) == 1
	switch {
	case target.Edge:
		if s.Opts.SplitOnDrop && single && ms.cells[0].Vertex &&
			target.Source != ms.cells[0] && target.Target != ms.cells[0] {
			return TargetSplit
		}
		return TargetInvalid
	case target.Locked:
		return TargetInvalid
	case s.Opts.ConnectOnDrop && single && ms.cells[0].Vertex &&
		s.IsConnectable(target) && !s.IsSelected(target):
		return TargetConnect
	case target.Style.Container() || (target.ChildCount() > 0 && !target.Collapsed):
		// Only containers accept dropped children; a plain vertex
		// underneath the pointer does not capture the move.
		return TargetContainer
	default:
		return TargetNone
	}
}

// redrawPreview picks the strategy by cost: sessions within the
// live-preview budget mutate and redraw real states, larger ones draw
// one outline rectangle.
func (ms *MoveSession) redrawPreview() {
	s := ms.surface
	if ms.live == nil && !ms.outline.Visible && len(ms.cells) <= s.Opts.LivePreviewMaxCells {
		ms.live = NewLivePreview(s.View, s.Model, ms.cells)
	}
	if ms.live != nil {
		ms.live.Translate(ms.delta)
		ms.outline = Outline{}
		return
	}
	ms.outline = Outline{Visible: true, Bounds: ms.bounds.Translate(ms.delta.X, ms.delta.Y)}
}

// Up consumes the session. Below tolerance it only resolves delayed
// selection; above, it restores any live preview and then applies the
// net delta through the dispatcher in one transaction.
func (ms *MoveSession) Up(p Pointer) error {
	if ms.phase.Done() {
		return nil
	}
	if ms.live != nil {
		defer ms.live.Restore()
	}
	if ms.guide != nil {
		ms.guide.Hide()
	}
	ms.outline = Outline{}

	if ms.phase != PhaseActive && ms.phase != PhaseSuspended {
		// Click without drag: a delayed-selection target narrows the
		// selection with no geometry change.
		if ms.delayed {
			ms.surface.SetSelection(ms.clicked)
		}
		ms.phase = PhaseCommitted
		return nil
	}

	// The dispatcher computes from persistent geometry; live-mutated
	// states must be back in place first.
	if ms.live != nil {
		ms.live.Restore()
	}
	ms.phase = PhaseCommitted

	s := ms.surface
	scale := s.View.Scale
	dx := ms.delta.X / scale
	dy := ms.delta.Y / scale

	switch ms.targetKind {
	case TargetConnect:
		// Dropping a connectable single cell onto another creates an
		// edge between them; neither cell moves.
		_, err := s.Dispatcher.ConnectCells(ms.cells[0], ms.dropTarget)
		return err
	case TargetSplit:
		return s.Dispatcher.SplitEdge(ms.dropTarget, ms.cells[0], dx, dy)
	case TargetContainer:
		_, err := s.Dispatcher.MoveCells(ms.cells, dx, dy, ms.cloning, ms.dropTarget)
		return err
	default:
		_, err := s.Dispatcher.MoveCells(ms.cells, dx, dy, ms.cloning, nil)
		return err
	}
}

// Cancel discards the session and synchronously restores live-preview
// state.
func (ms *MoveSession) Cancel() {
	if ms.phase.Done() {
		return
	}
	if ms.live != nil {
		ms.live.Restore()
	}
	if ms.guide != nil {
		ms.guide.Hide()
	}
	ms.outline = Outline{}
	ms.phase = PhaseCancelled
}

// Refresh recomputes the preview after an external model change merged
// into the session.
func (ms *MoveSession) Refresh() {
	var boxes []geometry.Rect
	for _, st := range ms.movingStates() {
		boxes = append(boxes, st.BoundingBox())
	}
	ms.bounds = geometry.UnionBounds(boxes)
	if ms.phase == PhaseActive {
		// States were rebuilt; any previous snapshot points at stale data.
		ms.live = nil
		ms.redrawPreview()
	}
}

// Suspend pauses preview updates.
func (ms *MoveSession) Suspend() {
	if ms.phase == PhaseActive {
		ms.phase = PhaseSuspended
	}
}

// Resume re-enables the session and forces a full preview redraw,
// ignoring whatever was drawn before the suspension.
func (ms *MoveSession) Resume() {
	if ms.phase == PhaseSuspended {
		ms.phase = PhaseActive
		ms.redrawPreview()
	}
}
