package interaction

import (
	"fmt"

	"github.com/charmbracelet/log"

	"dragkit/diagram"
	"dragkit/geometry"
	"dragkit/view"
)

// Dispatcher turns consumed sessions into model mutations. Every
// operation runs inside a single model transaction, so listeners see
// one notification per gesture no matter how many cells it touched.
type Dispatcher struct {
	model   *diagram.Model
	view    *view.View
	surface *Surface
	log     *log.Logger
}

// NewDispatcher wires a dispatcher over the model and view.
func NewDispatcher(model *diagram.Model, v *view.View, s *Surface) *Dispatcher {
	return &Dispatcher{
		model:   model,
		view:    v,
		surface: s,
		log:     log.Default().WithPrefix("dispatch"),
	}
}

// childOrigin returns the model-space origin of parent's coordinate
// frame, the point child geometries are relative to.
func (d *Dispatcher) childOrigin(parent *diagram.Cell) geometry.Point {
	if parent == nil || parent == d.model.Root || parent.Geometry == nil {
		return geometry.Point{}
	}
	var o geometry.Point
	if ps := d.view.State(parent); ps != nil {
		o = ps.Origin
	}
	return geometry.Point{X: o.X + parent.Geometry.X, Y: o.Y + parent.Geometry.Y}
}

// MoveCells translates cells by the model-space delta, optionally
// cloning them first and optionally reparenting them into target.
// Geometry is adjusted for the origin change so cells keep their
// absolute position across a reparent. Returns the cells that ended up
// moved (the clones, when cloning).
func (d *Dispatcher) MoveCells(cells []*diagram.Cell, dx, dy float64, clone bool, target *diagram.Cell) ([]*diagram.Cell, error) {
	if len(cells) == 0 {
		return nil, nil
	}
	if target != nil {
		for _, c := range cells {
			if d.model.IsAncestor(c, target) {
				return nil, fmt.Errorf("move: target %s is inside the moved set", target.ID)
			}
		}
	}
	d.log.Debug("move cells", "count", len(cells), "dx", dx, "dy", dy, "clone", clone)

	moved := cells
	d.model.Update(func() {
		// Origins are read before any mutation so reparent adjustments
		// see consistent view state.
		oldOrigins := make([]geometry.Point, len(cells))
		oldParents := make([]*diagram.Cell, len(cells))
		for i, c := range cells {
			oldParents[i] = c.Parent
			oldOrigins[i] = d.childOrigin(c.Parent)
		}

		if clone {
			moved = d.model.CloneCells(cells)
		}

		for i, c := range moved {
			parent := target
			if parent == nil {
				parent = oldParents[i]
			}
			adjust := geometry.Point{}
			if parent != oldParents[i] {
				newOrigin := d.childOrigin(parent)
				adjust = geometry.Point{X: oldOrigins[i].X - newOrigin.X, Y: oldOrigins[i].Y - newOrigin.Y}
			}
			if geo := c.Geometry; geo != nil {
				ng := geo.Clone()
				ng.Translate(dx+adjust.X, dy+adjust.Y)
				d.model.SetGeometry(c, ng)
			}
			if c.Parent != parent {
				d.model.Add(parent, c, -1)
			}
		}

		if d.surface != nil && d.surface.Opts.RemoveEmptyParents && !clone {
			d.pruneEmptyParents(oldParents)
		}
	})
	return moved, nil
}

// pruneEmptyParents removes containers left childless by a reparenting
// move, walking up while the chain stays prunable. Visible containers
// (any own fill or stroke) are kept.
func (d *Dispatcher) pruneEmptyParents(parents []*diagram.Cell) {
	for _, p := range parents {
		for p != nil && p != d.model.Root && p.Vertex && p.Deletable &&
			p.ChildCount() == 0 && p.Style.Transparent() {
			next := p.Parent
			d.log.Debug("prune empty parent", "id", p.ID)
			d.model.Remove(p)
			p = next
		}
	}
}

// ResizeCell writes the committed geometry bounds and shifts
// non-relative children by the given model-space residual so they stay
// put under a rotated resize.
func (d *Dispatcher) ResizeCell(cell *diagram.Cell, bounds geometry.Rect, childShift geometry.Point) error {
	if cell == nil || cell.Geometry == nil {
		return fmt.Errorf("resize: cell has no geometry")
	}
	d.log.Debug("resize cell", "id", cell.ID, "bounds", bounds)

	d.model.Update(func() {
		geo := cell.Geometry.Clone()
		geo.SetRect(bounds)
		d.model.SetGeometry(cell, geo)

		if (childShift.X != 0 || childShift.Y != 0) && !cell.Collapsed {
			for _, child := range cell.Children {
				if g := child.Geometry; g != nil && !g.Relative {
					cg := g.Clone()
					cg.Translate(childShift.X, childShift.Y)
					d.model.SetGeometry(child, cg)
				}
			}
		}
	})
	return nil
}

// RotateCells adds delta degrees to each cell's style rotation and
// walks its subtree: non-relative vertex children rotate their geometry
// about the parent's local center and recurse, edge children rotate
// their waypoints. Rotating by delta and then by -delta restores every
// descendant.
func (d *Dispatcher) RotateCells(cells []*diagram.Cell, delta float64) error {
	if delta == 0 || len(cells) == 0 {
		return nil
	}
	d.log.Debug("rotate cells", "count", len(cells), "delta", delta)

	d.model.Update(func() {
		for _, c := range cells {
			d.rotateCell(c, delta)
		}
	})
	return nil
}

func (d *Dispatcher) rotateCell(cell *diagram.Cell, delta float64) {
	style := cell.Style.Clone()
	if style == nil {
		style = diagram.Style{}
	}
	style.SetFloat(diagram.StyleRotation, geometry.NormalizeAngle(style.Rotation()+delta))
	d.model.SetStyle(cell, style)

	geo := cell.Geometry
	if geo == nil {
		return
	}
	center := geometry.Point{X: geo.Width / 2, Y: geo.Height / 2}
	for _, child := range cell.Children {
		if child.Geometry == nil {
			continue
		}
		switch {
		case child.Vertex && !child.Geometry.Relative:
			cg := child.Geometry.Clone()
			cg.Rotate(delta, center)
			d.model.SetGeometry(child, cg)
			d.rotateCell(child, delta)
		case child.Edge:
			cg := child.Geometry.Clone()
			cg.Rotate(delta, center)
			d.model.SetGeometry(child, cg)
		}
	}
}

// ConnectCells creates a new edge from source to target under their
// nearest common ancestor. The connection is validated first; a non-nil
// validation error blocks the operation and surfaces its message.
func (d *Dispatcher) ConnectCells(source, target *diagram.Cell) (*diagram.Cell, error) {
	if source == nil || target == nil {
		return nil, fmt.Errorf("connect: both terminals required")
	}
	if d.surface != nil {
		if verr := d.surface.ValidateConnection(source, target); verr != nil {
			d.surface.alert(verr.Message)
			return nil, verr
		}
	}
	d.log.Debug("connect cells", "source", source.ID, "target", target.ID)

	var edge *diagram.Cell
	d.model.Update(func() {
		edge = diagram.NewEdge("")
		d.model.Add(d.commonAncestor(source, target), edge, -1)
		d.model.SetTerminal(edge, source, true)
		d.model.SetTerminal(edge, target, false)
	})
	return edge, nil
}

func (d *Dispatcher) commonAncestor(a, b *diagram.Cell) *diagram.Cell {
	for p := a.Parent; p != nil; p = p.Parent {
		if d.model.IsAncestor(p, b) {
			return p
		}
	}
	return d.model.Root
}

// SplitEdge inserts cell into edge: a clone of the edge carries the
// original source into the cell, the original edge is reconnected to
// run from the cell to its target, and the cell itself is translated by
// the drop delta.
func (d *Dispatcher) SplitEdge(edge, cell *diagram.Cell, dx, dy float64) error {
	if edge == nil || !edge.Edge || cell == nil {
		return fmt.Errorf("split: edge and cell required")
	}
	d.log.Debug("split edge", "edge", edge.ID, "cell", cell.ID)

	d.model.Update(func() {
		if geo := cell.Geometry; geo != nil {
			ng := geo.Clone()
			ng.Translate(dx, dy)
			d.model.SetGeometry(cell, ng)
		}

		first := d.model.CloneCells([]*diagram.Cell{edge})[0]
		if geo := first.Geometry; geo != nil {
			// Waypoints stay with the second half of the route.
			geo.Points = nil
		}
		d.model.Add(edge.Parent, first, -1)
		d.model.SetTerminal(first, edge.Source, true)
		d.model.SetTerminal(first, cell, false)
		d.model.SetTerminal(edge, cell, true)
	})
	return nil
}

// Reconnect attaches one end of edge to terminal, recording or clearing
// the fixed connection constraint for that end. When clone is set the
// original edge is left untouched and a copy (preserving the other
// terminal) is reconnected instead. Returns the edge that was changed.
func (d *Dispatcher) Reconnect(edge, terminal *diagram.Cell, source bool, constraint *view.ConnectionConstraint, clone bool) (*diagram.Cell, error) {
	if edge == nil || !edge.Edge {
		return nil, fmt.Errorf("reconnect: not an edge")
	}
	d.log.Debug("reconnect", "edge", edge.ID, "source", source, "clone", clone)

	e := edge
	d.model.Update(func() {
		if clone {
			e = d.model.CloneCells([]*diagram.Cell{edge})[0]
			d.model.Add(edge.Parent, e, -1)
		}

		if geo := e.Geometry; geo != nil {
			ng := geo.Clone()
			if source {
				ng.SourcePoint = nil
			} else {
				ng.TargetPoint = nil
			}
			d.model.SetGeometry(e, ng)
		}

		style := e.Style.Clone()
		if style == nil {
			style = diagram.Style{}
		}
		xKey, yKey := diagram.StyleExitX, diagram.StyleExitY
		if !source {
			xKey, yKey = diagram.StyleEntryX, diagram.StyleEntryY
		}
		if constraint != nil {
			style.SetFloat(xKey, constraint.X)
			style.SetFloat(yKey, constraint.Y)
		} else {
			delete(style, xKey)
			delete(style, yKey)
		}
		d.model.SetStyle(e, style)
		d.model.SetTerminal(e, terminal, source)
	})
	return e, nil
}

// SetEdgePoints replaces the interior waypoints of an edge.
func (d *Dispatcher) SetEdgePoints(edge *diagram.Cell, points []geometry.Point) error {
	if edge == nil || !edge.Edge {
		return fmt.Errorf("set points: not an edge")
	}
	d.log.Debug("set edge points", "edge", edge.ID, "count", len(points))

	d.model.Update(func() {
		geo := edge.Geometry.Clone()
		if geo == nil {
			geo = &diagram.Geometry{Relative: true}
		}
		geo.Points = append([]geometry.Point{}, points...)
		d.model.SetGeometry(edge, geo)
	})
	return nil
}

// SetTerminalPoint disconnects one end of an edge and pins it to an
// absolute model point, leaving the edge dangling.
func (d *Dispatcher) SetTerminalPoint(edge *diagram.Cell, p geometry.Point, source bool) error {
	if edge == nil || !edge.Edge {
		return fmt.Errorf("set terminal point: not an edge")
	}
	d.log.Debug("set terminal point", "edge", edge.ID, "source", source)

	d.model.Update(func() {
		d.model.SetTerminal(edge, nil, source)
		geo := edge.Geometry.Clone()
		if geo == nil {
			geo = &diagram.Geometry{Relative: true}
		}
		pt := p
		if source {
			geo.SourcePoint = &pt
		} else {
			geo.TargetPoint = &pt
		}
		d.model.SetGeometry(edge, geo)
	})
	return nil
}

// MoveLabel shifts a cell's label by a model-space delta. The
// displacement lives in the geometry offset, so the cell itself never
// moves.
func (d *Dispatcher) MoveLabel(cell *diagram.Cell, dx, dy float64) error {
	if cell == nil || cell.Geometry == nil {
		return fmt.Errorf("move label: cell has no geometry")
	}
	d.log.Debug("move label", "id", cell.ID, "dx", dx, "dy", dy)

	d.model.Update(func() {
		geo := cell.Geometry.Clone()
		if geo.Offset == nil {
			geo.Offset = &geometry.Point{}
		}
		geo.Offset.X += dx
		geo.Offset.Y += dy
		d.model.SetGeometry(cell, geo)
	})
	return nil
}
