package interaction

import (
	"dragkit/diagram"
	"dragkit/geometry"
	"dragkit/guide"
	"dragkit/view"
)

// Surface is the interactive face of one diagram: it owns the selection,
// the handle sets of selected cells, and the single live drag session,
// and it routes pointer events to whichever session the hit handle or
// cell calls for.
type Surface struct {
	Model *diagram.Model
	View  *view.View
	Opts  *Options

	// Validator approves prospective edge connections. Nil allows
	// everything.
	Validator ConnectionValidator

	// Alert surfaces a non-empty validation message to the user.
	Alert func(message string)

	// ConstraintsFor returns the fixed connection points a cell offers,
	// for the reroute session's constraint locator. Nil means no ports.
	ConstraintsFor func(cell *diagram.Cell) []view.ConnectionConstraint

	// CustomHandlesFor returns extra handles for a selected cell.
	CustomHandlesFor func(cell *diagram.Cell) []CustomHandle

	Dispatcher *Dispatcher
	Refresher  *Refresher

	selection  []*diagram.Cell
	handleSets map[*diagram.Cell]*HandleSet
	session    Session
	destroyed  bool
}

// NewSurface wires a surface over the model with a fresh view and
// default options.
func NewSurface(model *diagram.Model) *Surface {
	v := view.NewView(model)
	s := &Surface{
		Model:      model,
		View:       v,
		Opts:       DefaultOptions(),
		Refresher:  &Refresher{},
		handleSets: make(map[*diagram.Cell]*HandleSet),
	}
	s.Dispatcher = NewDispatcher(model, v, s)
	return s
}

// Init validates the view and subscribes to model changes. Repeated
// notifications before the next Flush coalesce into one refresh.
func (s *Surface) Init() {
	s.View.Validate()
	s.Model.OnChange(func() {
		if s.destroyed {
			return
		}
		s.Refresher.Request(s.refresh)
	})
}

// Reset cancels any live session and rebuilds handles from scratch.
func (s *Surface) Reset() {
	s.CancelSession()
	s.rebuildHandles()
}

// Destroy tears the surface down; subsequent change notifications are
// ignored.
func (s *Surface) Destroy() {
	s.CancelSession()
	s.handleSets = make(map[*diagram.Cell]*HandleSet)
	s.selection = nil
	s.destroyed = true
}

// refresh is the coalesced model-change reaction: revalidate states,
// let an active (non-suspended) session recompute its preview, rebuild
// handles.
func (s *Surface) refresh() {
	s.View.Validate()
	if s.session != nil && s.session.Phase() == PhaseActive {
		s.session.Refresh()
	}
	s.rebuildHandles()
}

// Session returns the live session, if any.
func (s *Surface) Session() Session { return s.session }

// Guides reports the guide lines of an active move session for drawing.
func (s *Surface) Guides() []guide.Line {
	if ms, ok := s.session.(*MoveSession); ok {
		return ms.GuideLines()
	}
	return nil
}

// --- selection ---

// SelectionCells returns the current selection in order.
func (s *Surface) SelectionCells() []*diagram.Cell {
	return append([]*diagram.Cell{}, s.selection...)
}

// IsSelected reports whether cell is in the selection.
func (s *Surface) IsSelected(cell *diagram.Cell) bool {
	for _, c := range s.selection {
		if c == cell {
			return true
		}
	}
	return false
}

// SetSelection replaces the selection.
func (s *Surface) SetSelection(cells ...*diagram.Cell) {
	if !s.Opts.SelectEnabled {
		return
	}
	s.selection = append([]*diagram.Cell{}, cells...)
	s.rebuildHandles()
}

// AddToSelection appends a cell if not present.
func (s *Surface) AddToSelection(cell *diagram.Cell) {
	if !s.Opts.SelectEnabled || cell == nil || s.IsSelected(cell) {
		return
	}
	s.selection = append(s.selection, cell)
	s.rebuildHandles()
}

// ClearSelection empties the selection.
func (s *Surface) ClearSelection() {
	s.selection = nil
	s.rebuildHandles()
}

// selectedAncestor returns the selection member that is cell or an
// ancestor of cell, if any.
func (s *Surface) selectedAncestor(cell *diagram.Cell) *diagram.Cell {
	for c := cell; c != nil; c = c.Parent {
		if s.IsSelected(c) {
			return c
		}
	}
	return nil
}

// rebuildHandles recreates the handle sets for the selection. One
// handle set exists per selected cell; indices within a set are unique.
func (s *Surface) rebuildHandles() {
	s.handleSets = make(map[*diagram.Cell]*HandleSet)
	for _, cell := range s.selection {
		st := s.View.State(cell)
		if st == nil {
			continue
		}
		var custom []CustomHandle
		if s.CustomHandlesFor != nil {
			custom = s.CustomHandlesFor(cell)
		}
		s.handleSets[cell] = BuildHandles(st, s.Opts, custom)
	}
}

// HandleSets exposes the current handle sets for drawing.
func (s *Surface) HandleSets() map[*diagram.Cell]*HandleSet {
	return s.handleSets
}

// handleAt finds the strongest handle under p across all selected cells.
func (s *Surface) handleAt(p geometry.Point) (*diagram.Cell, Handle, bool) {
	var bestCell *diagram.Cell
	best := Handle{Kind: KindNone}
	found := false
	for cell, set := range s.handleSets {
		h, ok := set.HandleAt(p)
		if !ok {
			continue
		}
		if !found || h.hitRank() < best.hitRank() ||
			(h.hitRank() == best.hitRank() && p.Distance(h.Center()) < p.Distance(best.Center())) {
			bestCell, best, found = cell, h, true
		}
	}
	return bestCell, best, found
}

// --- predicates ---

// IsMovable reports whether a cell may be dragged.
func (s *Surface) IsMovable(cell *diagram.Cell) bool {
	return s.Opts.MoveEnabled && cell != nil && !cell.Locked && cell.Geometry != nil
}

// IsConnectable reports whether a cell accepts edge terminals.
func (s *Surface) IsConnectable(cell *diagram.Cell) bool {
	return cell != nil && cell.Connectable && !cell.Locked
}

// MovableSelection filters the selection down to movable cells.
func (s *Surface) MovableSelection() []*diagram.Cell {
	var cells []*diagram.Cell
	for _, c := range s.selection {
		if s.IsMovable(c) {
			cells = append(cells, c)
		}
	}
	return cells
}

// TopmostCells removes cells whose ancestor is also in the set, so a
// parent's delta is never applied twice to a child.
func (s *Surface) TopmostCells(cells []*diagram.Cell) []*diagram.Cell {
	var result []*diagram.Cell
	for _, c := range cells {
		covered := false
		for _, other := range cells {
			if other != c && s.Model.IsAncestor(other, c) {
				covered = true
				break
			}
		}
		if !covered {
			result = append(result, c)
		}
	}
	return result
}

// CellAt returns the topmost selectable cell under p, skipping cells for
// which ignore returns true.
func (s *Surface) CellAt(p geometry.Point, ignore func(*diagram.Cell) bool) *diagram.Cell {
	if !s.Opts.SelectEnabled {
		return nil
	}
	return s.View.CellAt(p, nil, ignore)
}

// ValidateConnection consults the external validator.
func (s *Surface) ValidateConnection(source, target *diagram.Cell) *ValidationError {
	if s.Validator == nil {
		return nil
	}
	return s.Validator(source, target)
}

// alert surfaces a message when non-empty.
func (s *Surface) alert(message string) {
	if message != "" && s.Alert != nil {
		s.Alert(message)
	}
}

// --- pointer routing ---

// PointerDown starts a session for the handle or cell under the
// pointer. At most one session exists at a time; a second pointer-down
// while one is live is ignored.
func (s *Surface) PointerDown(p Pointer) {
	if s.session != nil && !s.session.Phase().Done() {
		return
	}
	s.session = nil

	if cell, h, ok := s.handleAt(p.Point); ok {
		st := s.View.State(cell)
		if st != nil {
			if cell.Edge {
				s.session = newEdgeSession(s, st, h, p)
			} else {
				s.session = newVertexSession(s, st, h, p)
			}
			return
		}
	}

	cell := s.CellAt(p.Point, nil)
	if cell != nil {
		if s.IsMovable(cell) || s.selectedAncestor(cell) != nil {
			s.session = newMoveSession(s, cell, p)
		} else if s.Opts.SelectEnabled {
			s.SetSelection(cell)
		}
		return
	}

	// Empty canvas press clears the selection.
	s.ClearSelection()
}

// PointerMove feeds the live session.
func (s *Surface) PointerMove(p Pointer) {
	if s.session != nil && !s.session.Phase().Done() {
		s.session.Move(p)
	}
}

// PointerUp consumes the live session.
func (s *Surface) PointerUp(p Pointer) error {
	if s.session == nil || s.session.Phase().Done() {
		return nil
	}
	err := s.session.Up(p)
	s.session = nil
	s.rebuildHandles()
	return err
}

// CancelSession discards the live session (Escape). Live-preview
// mutations are restored synchronously before this returns.
func (s *Surface) CancelSession() {
	if s.session != nil && !s.session.Phase().Done() {
		s.session.Cancel()
	}
	s.session = nil
	s.rebuildHandles()
}

// SuspendSession pauses the live session during programmatic operations.
func (s *Surface) SuspendSession() {
	if s.session != nil {
		s.session.Suspend()
	}
}

// ResumeSession resumes a suspended session.
func (s *Surface) ResumeSession() {
	if s.session != nil {
		s.session.Resume()
	}
}
