package interaction

import (
	"testing"

	"dragkit/diagram"
	"dragkit/geometry"
)

// connectedEdgeFixture builds a -> b with the given interior waypoints
// and selects the edge so its handles are live.
func connectedEdgeFixture(t *testing.T, points ...geometry.Point) (*diagram.Model, *Surface, *diagram.Cell) {
	t.Helper()
	m := diagram.NewModel()
	a := diagram.NewVertex("a", 0, 0, 20, 10)
	b := diagram.NewVertex("b", 60, 0, 20, 10)
	e := diagram.NewEdge("e")
	e.Geometry.Points = points
	m.Add(m.Root, a, -1)
	m.Add(m.Root, b, -1)
	m.Add(m.Root, e, -1)
	m.SetTerminal(e, a, true)
	m.SetTerminal(e, b, false)
	s := newTestSurface(m)
	s.SetSelection(e)
	return m, s, e
}

func TestBendDragCommitsWaypoint(t *testing.T) {
	_, s, e := connectedEdgeFixture(t, geometry.Point{X: 40, Y: 40})

	s.PointerDown(pt(40, 40))
	s.PointerMove(pt(40, 20))
	if err := s.PointerUp(pt(40, 20)); err != nil {
		t.Fatalf("PointerUp: %v", err)
	}

	pts := e.Geometry.Points
	if len(pts) != 1 {
		t.Fatalf("got %d waypoints, want 1", len(pts))
	}
	if pts[0] != (geometry.Point{X: 40, Y: 20}) {
		t.Errorf("waypoint = %+v, want (40,20)", pts[0])
	}
}

func TestBendReleasedOnNeighborRemovesOneWaypoint(t *testing.T) {
	_, s, e := connectedEdgeFixture(t,
		geometry.Point{X: 30, Y: 30},
		geometry.Point{X: 50, Y: 30},
	)

	s.PointerDown(pt(30, 30))
	s.PointerMove(pt(49, 30))
	if err := s.PointerUp(pt(49, 30)); err != nil {
		t.Fatalf("PointerUp: %v", err)
	}

	pts := e.Geometry.Points
	if len(pts) != 1 {
		t.Fatalf("got %d waypoints, want 1 (removed, not reordered)", len(pts))
	}
	if pts[0] != (geometry.Point{X: 50, Y: 30}) {
		t.Errorf("surviving waypoint = %+v, want (50,30)", pts[0])
	}
}

func TestBendReleasedOnStraightSegmentIsDropped(t *testing.T) {
	_, s, e := connectedEdgeFixture(t, geometry.Point{X: 40, Y: 40})

	// The straight line between the terminal perimeters runs along y=5;
	// releasing within tolerance of it removes the waypoint.
	s.PointerDown(pt(40, 40))
	s.PointerMove(pt(40, 6))
	if err := s.PointerUp(pt(40, 6)); err != nil {
		t.Fatalf("PointerUp: %v", err)
	}

	if len(e.Geometry.Points) != 0 {
		t.Errorf("waypoint survived a straight release: %+v", e.Geometry.Points)
	}
}

func TestVirtualBendInsertsWaypoint(t *testing.T) {
	_, s, e := connectedEdgeFixture(t)

	// With no waypoints the edge runs (20,5)-(60,5); the virtual handle
	// sits at the midpoint (40,5).
	s.PointerDown(pt(40, 5))
	s.PointerMove(pt(40, 35))
	if err := s.PointerUp(pt(40, 35)); err != nil {
		t.Fatalf("PointerUp: %v", err)
	}

	pts := e.Geometry.Points
	if len(pts) != 1 {
		t.Fatalf("got %d waypoints, want 1 inserted", len(pts))
	}
	if pts[0] != (geometry.Point{X: 40, Y: 35}) {
		t.Errorf("inserted waypoint = %+v, want (40,35)", pts[0])
	}
}

func TestReconnectTargetTerminal(t *testing.T) {
	m, s, e := connectedEdgeFixture(t)
	b := e.Target
	c := diagram.NewVertex("c", 30, 55, 20, 10)
	m.Add(m.Root, c, -1)
	s.Refresher.Flush()
	s.SetSelection(e)

	// The target terminal handle sits on b's perimeter at (60,5).
	s.PointerDown(pt(60, 5))
	s.PointerMove(pt(40, 60))
	if err := s.PointerUp(pt(40, 60)); err != nil {
		t.Fatalf("PointerUp: %v", err)
	}

	if e.Target != c {
		t.Errorf("edge target = %v, want c", e.Target)
	}
	if len(b.Edges) != 0 {
		t.Error("old terminal still lists the edge")
	}
	if len(c.Edges) != 1 || c.Edges[0] != e {
		t.Error("new terminal does not list the edge")
	}
}

func TestReconnectBlockedByValidation(t *testing.T) {
	m, s, e := connectedEdgeFixture(t)
	b := e.Target
	c := diagram.NewVertex("c", 30, 55, 20, 10)
	m.Add(m.Root, c, -1)
	s.Refresher.Flush()
	s.SetSelection(e)

	var alerted string
	s.Alert = func(msg string) { alerted = msg }
	s.Validator = func(source, target *diagram.Cell) *ValidationError {
		return &ValidationError{Message: "targets are full"}
	}

	s.PointerDown(pt(60, 5))
	s.PointerMove(pt(40, 60))
	err := s.PointerUp(pt(40, 60))

	if err == nil {
		t.Fatal("blocked reconnect returned no error")
	}
	if e.Target != b {
		t.Error("blocked reconnect still changed the terminal")
	}
	if alerted != "targets are full" {
		t.Errorf("alert = %q, want the validation message", alerted)
	}
}

func TestSilentValidationBlocksWithoutAlert(t *testing.T) {
	m, s, e := connectedEdgeFixture(t)
	c := diagram.NewVertex("c", 30, 55, 20, 10)
	m.Add(m.Root, c, -1)
	s.Refresher.Flush()
	s.SetSelection(e)

	alerted := false
	s.Alert = func(string) { alerted = true }
	s.Validator = func(source, target *diagram.Cell) *ValidationError {
		return &ValidationError{}
	}

	s.PointerDown(pt(60, 5))
	s.PointerMove(pt(40, 60))
	if err := s.PointerUp(pt(40, 60)); err == nil {
		t.Fatal("silent validation error did not block")
	}

	if alerted {
		t.Error("empty validation message was surfaced")
	}
}

func TestTerminalReleasedOnCanvasLeavesDanglingEnd(t *testing.T) {
	_, s, e := connectedEdgeFixture(t)

	s.PointerDown(pt(60, 5))
	s.PointerMove(pt(120, 70))
	if err := s.PointerUp(pt(120, 70)); err != nil {
		t.Fatalf("PointerUp: %v", err)
	}

	if e.Target != nil {
		t.Error("dangling end still has a terminal")
	}
	tp := e.Geometry.TargetPoint
	if tp == nil || *tp != (geometry.Point{X: 120, Y: 70}) {
		t.Errorf("fixed target point = %v, want (120,70)", tp)
	}
}

func TestTerminalReleaseWithoutDanglingAllowedIsNoOp(t *testing.T) {
	_, s, e := connectedEdgeFixture(t)
	b := e.Target
	s.Opts.AllowDanglingEdges = false

	s.PointerDown(pt(60, 5))
	s.PointerMove(pt(120, 70))
	if err := s.PointerUp(pt(120, 70)); err != nil {
		t.Fatalf("PointerUp: %v", err)
	}

	if e.Target != b {
		t.Error("terminal changed although dangling edges are disabled")
	}
	if e.Geometry.TargetPoint != nil {
		t.Error("fixed point written although dangling edges are disabled")
	}
}

func TestEdgePreviewFollowsDraggedBend(t *testing.T) {
	_, s, _ := connectedEdgeFixture(t, geometry.Point{X: 40, Y: 40})

	s.PointerDown(pt(40, 40))
	s.PointerMove(pt(40, 20))

	es, ok := s.Session().(*EdgeSession)
	if !ok {
		t.Fatal("no edge session")
	}
	o := es.Outline()
	if !o.Visible || len(o.Points) != 3 {
		t.Fatalf("preview = %+v, want a visible 3-point polyline", o)
	}
	if o.Points[1] != (geometry.Point{X: 40, Y: 20}) {
		t.Errorf("preview waypoint = %+v, want (40,20)", o.Points[1])
	}
	s.CancelSession()
}
