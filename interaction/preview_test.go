package interaction

import (
	"testing"

	"dragkit/diagram"
	"dragkit/geometry"
)

func previewFixture(t *testing.T) (*diagram.Model, *Surface, *diagram.Cell, *diagram.Cell) {
	t.Helper()
	m := diagram.NewModel()
	a := diagram.NewVertex("a", 0, 0, 20, 10)
	b := diagram.NewVertex("b", 60, 0, 20, 10)
	e := diagram.NewEdge("e")
	m.Add(m.Root, a, -1)
	m.Add(m.Root, b, -1)
	m.Add(m.Root, e, -1)
	m.SetTerminal(e, a, true)
	m.SetTerminal(e, b, false)
	s := newTestSurface(m)
	return m, s, a, e
}

func TestLivePreviewTranslateMutatesOnlyStates(t *testing.T) {
	m, s, a, e := previewFixture(t)

	lp := NewLivePreview(s.View, m, []*diagram.Cell{a})
	if lp == nil {
		t.Fatal("no live preview")
	}
	lp.Translate(geometry.Point{X: 30, Y: 40})

	if st := s.View.State(a); st.X != 30 || st.Y != 40 {
		t.Errorf("state at (%v,%v), want (30,40)", st.X, st.Y)
	}
	if a.Geometry.X != 0 {
		t.Error("preview leaked into persistent geometry")
	}
	// The connected edge re-resolves against the moved shape.
	pts := s.View.State(e).AbsolutePoints
	if pts[0].Y <= 5 {
		t.Errorf("edge source %+v did not follow the moved vertex", pts[0])
	}
}

func TestLivePreviewTranslateIsAbsoluteNotCumulative(t *testing.T) {
	m, s, a, _ := previewFixture(t)

	lp := NewLivePreview(s.View, m, []*diagram.Cell{a})
	lp.Translate(geometry.Point{X: 10, Y: 0})
	lp.Translate(geometry.Point{X: 25, Y: 0})

	if st := s.View.State(a); st.X != 25 {
		t.Errorf("state X = %v after two moves, want 25 (not accumulated)", st.X)
	}
}

func TestLivePreviewEdgeRidesWhenBothTerminalsMove(t *testing.T) {
	m, s, a, e := previewFixture(t)
	b := e.Target

	lp := NewLivePreview(s.View, m, []*diagram.Cell{a, b})
	before := append([]geometry.Point{}, s.View.State(e).AbsolutePoints...)
	lp.Translate(geometry.Point{X: 5, Y: 7})

	pts := s.View.State(e).AbsolutePoints
	for i := range pts {
		if pts[i].X != before[i].X+5 || pts[i].Y != before[i].Y+7 {
			t.Errorf("point %d = %+v, want %+v shifted by (5,7)", i, pts[i], before[i])
		}
	}
}

func TestLivePreviewRestoreIsIdempotent(t *testing.T) {
	m, s, a, _ := previewFixture(t)

	lp := NewLivePreview(s.View, m, []*diagram.Cell{a})
	lp.Translate(geometry.Point{X: 30, Y: 40})

	lp.Restore()
	if st := s.View.State(a); st.X != 0 || st.Y != 0 {
		t.Fatalf("state at (%v,%v) after restore, want (0,0)", st.X, st.Y)
	}

	// A second restore after external state changes must not clobber them.
	s.View.State(a).X = 99
	lp.Restore()
	if st := s.View.State(a); st.X != 99 {
		t.Error("second restore overwrote later state")
	}
}

func TestLivePreviewNilWhenStateMissing(t *testing.T) {
	m := diagram.NewModel()
	parent := diagram.NewVertex("parent", 0, 0, 100, 50)
	hidden := diagram.NewVertex("hidden", 10, 10, 20, 10)
	hidden.Visible = false
	m.Add(m.Root, parent, -1)
	m.Add(parent, hidden, -1)
	s := newTestSurface(m)

	if lp := NewLivePreview(s.View, m, []*diagram.Cell{parent}); lp != nil {
		t.Error("live preview acquired despite a stateless descendant")
	}
}
