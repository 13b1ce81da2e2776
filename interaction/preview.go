package interaction

import (
	"dragkit/diagram"
	"dragkit/geometry"
	"dragkit/view"
)

// Outline is the cheap preview: a single rectangle or polyline standing
// in for the cells being manipulated. The shell draws it; no cell state
// is touched.
type Outline struct {
	Visible  bool
	Bounds   geometry.Rect
	Rotation float64
	// Points carries the preview polyline for edge sessions.
	Points []geometry.Point
}

// LivePreview implements the expensive strategy: it snapshots the
// affected cell states, lets the session mutate them for redraw, and
// guarantees restoration on every exit path. The snapshot is taken once
// at acquisition; Restore is idempotent, so both normal teardown and
// cancellation may call it.
type LivePreview struct {
	view     *view.View
	saved    map[*diagram.Cell]*view.State
	restored bool
}

// NewLivePreview snapshots the states of cells, their descendants and
// every edge connected to any of them. Returns nil when any affected
// cell has no state (the view is stale), which makes the caller fall
// back to the outline strategy.
func NewLivePreview(v *view.View, model *diagram.Model, cells []*diagram.Cell) *LivePreview {
	lp := &LivePreview{view: v, saved: make(map[*diagram.Cell]*view.State)}
	for _, cell := range cells {
		for _, c := range model.Descendants(cell) {
			if !lp.snapshot(c) {
				return nil
			}
			for _, edge := range c.Edges {
				if !lp.snapshot(edge) {
					return nil
				}
			}
		}
	}
	return lp
}

func (lp *LivePreview) snapshot(cell *diagram.Cell) bool {
	if _, ok := lp.saved[cell]; ok {
		return true
	}
	s := lp.view.State(cell)
	if s == nil {
		return false
	}
	lp.saved[cell] = s.Clone()
	return true
}

// Translate restores the snapshot and re-applies a move of delta to
// every affected vertex state, recomputing connected edges against the
// moved shapes, then redraws everything.
func (lp *LivePreview) Translate(delta geometry.Point) {
	var edges []*view.State
	for cell, saved := range lp.saved {
		s := lp.view.State(cell)
		if s == nil {
			continue
		}
		s.RestoreFrom(saved)
		if cell.Edge {
			edges = append(edges, s)
			continue
		}
		s.X += delta.X
		s.Y += delta.Y
	}
	for _, es := range edges {
		// Edges with both terminals in the moved set ride along;
		// anything else is re-resolved against the moved shapes.
		if lp.contains(es.Cell.Source) && lp.contains(es.Cell.Target) {
			for i := range es.AbsolutePoints {
				es.AbsolutePoints[i].X += delta.X
				es.AbsolutePoints[i].Y += delta.Y
			}
		} else {
			lp.view.RevalidateEdge(es)
		}
	}
	lp.RedrawAll()
}

// Mutate restores the snapshot, runs fn against the live states and
// redraws. Sessions that change more than position (resize, rotation)
// use this instead of Translate.
func (lp *LivePreview) Mutate(fn func(states map[*diagram.Cell]*view.State)) {
	states := make(map[*diagram.Cell]*view.State, len(lp.saved))
	for cell, saved := range lp.saved {
		s := lp.view.State(cell)
		if s == nil {
			continue
		}
		s.RestoreFrom(saved)
		states[cell] = s
	}
	fn(states)
	for _, s := range states {
		if s.Cell.Edge && !(lp.contains(s.Cell.Source) && lp.contains(s.Cell.Target)) {
			lp.view.RevalidateEdge(s)
		}
	}
	lp.RedrawAll()
}

func (lp *LivePreview) contains(cell *diagram.Cell) bool {
	if cell == nil {
		return false
	}
	_, ok := lp.saved[cell]
	return ok
}

// RedrawAll repaints every affected state.
func (lp *LivePreview) RedrawAll() {
	for cell := range lp.saved {
		lp.view.Redraw(lp.view.State(cell))
	}
}

// Restore puts every mutated state back to its snapshot and redraws.
// Safe to call more than once; later calls are no-ops.
func (lp *LivePreview) Restore() {
	if lp.restored {
		return
	}
	lp.restored = true
	for cell, saved := range lp.saved {
		if s := lp.view.State(cell); s != nil {
			s.RestoreFrom(saved)
			lp.view.Redraw(s)
		}
	}
}
