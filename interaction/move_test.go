package interaction

import (
	"testing"

	"dragkit/diagram"
	"dragkit/geometry"
)

func TestMoveCommitsNetDelta(t *testing.T) {
	m := diagram.NewModel()
	a := diagram.NewVertex("a", 10, 10, 20, 10)
	m.Add(m.Root, a, -1)
	s := newTestSurface(m)

	s.PointerDown(pt(15, 12))
	s.PointerMove(pt(30, 20))
	s.PointerMove(pt(40, 30))
	if err := s.PointerUp(pt(40, 30)); err != nil {
		t.Fatalf("PointerUp: %v", err)
	}

	if a.Geometry.X != 35 || a.Geometry.Y != 28 {
		t.Errorf("geometry = (%v,%v), want (35,28)", a.Geometry.X, a.Geometry.Y)
	}
}

func TestMoveTranslatesDescendantsImplicitly(t *testing.T) {
	m := diagram.NewModel()
	parent := diagram.NewVertex("parent", 0, 0, 100, 50)
	child := diagram.NewVertex("child", 10, 10, 20, 10)
	m.Add(m.Root, parent, -1)
	m.Add(parent, child, -1)
	s := newTestSurface(m)

	s.PointerDown(pt(50, 25))
	s.PointerMove(pt(80, 25))
	if err := s.PointerUp(pt(80, 25)); err != nil {
		t.Fatalf("PointerUp: %v", err)
	}

	if parent.Geometry.X != 30 {
		t.Errorf("parent X = %v, want 30", parent.Geometry.X)
	}
	// Child coordinates are parent-relative; the parent's delta must not
	// be applied to them a second time.
	if child.Geometry.X != 10 {
		t.Errorf("child X = %v, want 10 (unchanged)", child.Geometry.X)
	}
}

func TestMoveParentAndChildSelectionAppliesOnce(t *testing.T) {
	m := diagram.NewModel()
	parent := diagram.NewVertex("parent", 0, 0, 100, 50)
	child := diagram.NewVertex("child", 10, 10, 20, 10)
	m.Add(m.Root, parent, -1)
	m.Add(parent, child, -1)
	s := newTestSurface(m)
	s.SetSelection(parent, child)

	// Press inside the parent, clear of the child and of every handle.
	s.PointerDown(pt(70, 40))
	s.PointerMove(pt(104, 40))
	if err := s.PointerUp(pt(104, 40)); err != nil {
		t.Fatalf("PointerUp: %v", err)
	}

	if parent.Geometry.X != 34 {
		t.Errorf("parent X = %v, want 34", parent.Geometry.X)
	}
	if child.Geometry.X != 10 {
		t.Errorf("child X = %v, want 10 (delta applied twice)", child.Geometry.X)
	}
}

func TestMoveCloneLeavesOriginalInPlace(t *testing.T) {
	m := diagram.NewModel()
	a := diagram.NewVertex("a", 10, 10, 20, 10)
	m.Add(m.Root, a, -1)
	s := newTestSurface(m)

	clonePt := func(x, y float64) Pointer {
		p := pt(x, y)
		p.Clone = true
		return p
	}
	s.PointerDown(clonePt(15, 12))
	s.PointerMove(clonePt(55, 52))
	if err := s.PointerUp(clonePt(55, 52)); err != nil {
		t.Fatalf("PointerUp: %v", err)
	}

	if a.Geometry.X != 10 || a.Geometry.Y != 10 {
		t.Errorf("original moved to (%v,%v)", a.Geometry.X, a.Geometry.Y)
	}
	if len(m.Root.Children) != 2 {
		t.Fatalf("root has %d children, want 2", len(m.Root.Children))
	}
	clone := m.Root.Children[1]
	if clone.Geometry.X != 50 || clone.Geometry.Y != 50 {
		t.Errorf("clone at (%v,%v), want (50,50)", clone.Geometry.X, clone.Geometry.Y)
	}
}

func TestMoveAxisConstraintZeroesMinorAxis(t *testing.T) {
	m := diagram.NewModel()
	a := diagram.NewVertex("a", 10, 10, 20, 10)
	m.Add(m.Root, a, -1)
	s := newTestSurface(m)

	constrained := func(x, y float64) Pointer {
		p := pt(x, y)
		p.Constrain = true
		return p
	}
	s.PointerDown(constrained(15, 12))
	s.PointerMove(constrained(45, 20))
	if err := s.PointerUp(constrained(45, 20)); err != nil {
		t.Fatalf("PointerUp: %v", err)
	}

	if a.Geometry.X != 40 {
		t.Errorf("X = %v, want 40", a.Geometry.X)
	}
	if a.Geometry.Y != 10 {
		t.Errorf("Y = %v, want 10 (minor axis zeroed)", a.Geometry.Y)
	}
}

func TestConnectOnDropCreatesEdgeWithoutMoving(t *testing.T) {
	m := diagram.NewModel()
	a := diagram.NewVertex("a", 0, 0, 20, 10)
	b := diagram.NewVertex("b", 60, 0, 20, 10)
	m.Add(m.Root, a, -1)
	m.Add(m.Root, b, -1)
	s := newTestSurface(m)

	s.PointerDown(pt(10, 5))
	s.PointerMove(pt(70, 5))
	if err := s.PointerUp(pt(70, 5)); err != nil {
		t.Fatalf("PointerUp: %v", err)
	}

	if a.Geometry.X != 0 || b.Geometry.X != 60 {
		t.Error("connect-on-drop moved a terminal cell")
	}
	if len(m.Root.Children) != 3 {
		t.Fatalf("root has %d children, want 3 (edge added)", len(m.Root.Children))
	}
	edge := m.Root.Children[2]
	if !edge.Edge || edge.Source != a || edge.Target != b {
		t.Errorf("edge connects %v -> %v, want a -> b", edge.Source, edge.Target)
	}
}

func TestSplitOnDropInsertsCellIntoEdge(t *testing.T) {
	m := diagram.NewModel()
	a := diagram.NewVertex("a", 0, 40, 20, 10)
	b := diagram.NewVertex("b", 100, 40, 20, 10)
	c := diagram.NewVertex("c", 40, 0, 20, 10)
	e := diagram.NewEdge("e")
	m.Add(m.Root, a, -1)
	m.Add(m.Root, b, -1)
	m.Add(m.Root, c, -1)
	m.Add(m.Root, e, -1)
	m.SetTerminal(e, a, true)
	m.SetTerminal(e, b, false)
	s := newTestSurface(m)

	// Drag c down onto the edge, which runs along y=45.
	s.PointerDown(pt(50, 5))
	s.PointerMove(pt(50, 45))
	if err := s.PointerUp(pt(50, 45)); err != nil {
		t.Fatalf("PointerUp: %v", err)
	}

	if e.Source != c || e.Target != b {
		t.Errorf("split edge runs %v -> %v, want c -> b", e.Source, e.Target)
	}
	var first *diagram.Cell
	for _, child := range m.Root.Children {
		if child.Edge && child != e {
			first = child
		}
	}
	if first == nil {
		t.Fatal("no new edge created by the split")
	}
	if first.Source != a || first.Target != c {
		t.Errorf("new edge runs %v -> %v, want a -> c", first.Source, first.Target)
	}
	if c.Geometry.Y != 40 {
		t.Errorf("dropped cell Y = %v, want 40", c.Geometry.Y)
	}
}

func TestMoveIntoContainerReparentsPreservingPosition(t *testing.T) {
	m := diagram.NewModel()
	container := diagram.NewVertex("container", 100, 0, 80, 60)
	container.Style[diagram.StyleStroke] = "gray"
	container.Style[diagram.StyleContainer] = "1"
	a := diagram.NewVertex("a", 0, 0, 20, 10)
	m.Add(m.Root, container, -1)
	m.Add(m.Root, a, -1)
	s := newTestSurface(m)
	s.Opts.ConnectOnDrop = false

	s.PointerDown(pt(10, 5))
	s.PointerMove(pt(130, 25))
	if err := s.PointerUp(pt(130, 25)); err != nil {
		t.Fatalf("PointerUp: %v", err)
	}

	if a.Parent != container {
		t.Fatalf("a not reparented into the container")
	}
	// Absolute position: old (0,0) plus delta (120,20) = (120,20);
	// container origin is (100,0), so local coordinates are (20,20).
	if a.Geometry.X != 20 || a.Geometry.Y != 20 {
		t.Errorf("local geometry = (%v,%v), want (20,20)", a.Geometry.X, a.Geometry.Y)
	}
}

func TestMoveOntoPlainVertexDoesNotReparent(t *testing.T) {
	m := diagram.NewModel()
	a := diagram.NewVertex("a", 0, 0, 20, 10)
	b := diagram.NewVertex("b", 100, 0, 40, 30)
	m.Add(m.Root, a, -1)
	m.Add(m.Root, b, -1)
	s := newTestSurface(m)
	s.Opts.ConnectOnDrop = false

	// Release over b, which is neither a container nor has children.
	s.PointerDown(pt(10, 5))
	s.PointerMove(pt(110, 15))
	if err := s.PointerUp(pt(110, 15)); err != nil {
		t.Fatalf("PointerUp: %v", err)
	}

	if a.Parent != m.Root {
		t.Fatalf("a reparented into a plain vertex")
	}
	if a.Geometry.X != 100 || a.Geometry.Y != 10 {
		t.Errorf("geometry = (%v,%v), want (100,10)", a.Geometry.X, a.Geometry.Y)
	}
}

func TestMoveOutlinePreviewBeyondBudget(t *testing.T) {
	m := diagram.NewModel()
	cells := make([]*diagram.Cell, 3)
	for i := range cells {
		cells[i] = diagram.NewVertex("v", float64(i*30), 0, 20, 10)
		m.Add(m.Root, cells[i], -1)
	}
	s := newTestSurface(m)
	s.Opts.LivePreviewMaxCells = 2
	s.SetSelection(cells...)

	// Press inside the first cell, clear of its handles.
	s.PointerDown(pt(5, 7))
	s.PointerMove(pt(5, 57))

	ms, ok := s.Session().(*MoveSession)
	if !ok {
		t.Fatal("no move session")
	}
	o := ms.Outline()
	if !o.Visible {
		t.Fatal("expected outline preview above the live budget")
	}
	want := geometry.Rect{X: 0, Y: 50, Width: 80, Height: 10}
	if o.Bounds != want {
		t.Errorf("outline = %+v, want %+v", o.Bounds, want)
	}
	if s.View.State(cells[0]).X != 0 {
		t.Error("outline preview must not mutate states")
	}
	s.CancelSession()
}
