package diagram

import "github.com/google/uuid"

// Model owns the cell tree and serializes every mutation through
// nestable BeginUpdate/EndUpdate transactions. Listeners are notified
// once per outermost transaction, so a whole gesture collapses into a
// single change notification (and a single undo step for collaborators
// that record history).
type Model struct {
	Root *Cell

	updateLevel int
	dirty       bool
	listeners   []func()
}

// NewModel creates a model with an empty root container.
func NewModel() *Model {
	root := &Cell{
		ID:      uuid.NewString(),
		Visible: true,
	}
	return &Model{Root: root}
}

// OnChange registers a listener invoked after each outermost EndUpdate
// that performed at least one mutation.
func (m *Model) OnChange(fn func()) {
	m.listeners = append(m.listeners, fn)
}

// BeginUpdate opens a transaction level. Transactions nest; only the
// outermost EndUpdate notifies listeners.
func (m *Model) BeginUpdate() {
	m.updateLevel++
}

// EndUpdate closes a transaction level. Callers pair it with BeginUpdate
// via defer so the boundary closes on every exit path.
func (m *Model) EndUpdate() {
	m.updateLevel--
	if m.updateLevel < 0 {
		m.updateLevel = 0
	}
	if m.updateLevel == 0 && m.dirty {
		m.dirty = false
		for _, fn := range m.listeners {
			fn()
		}
	}
}

// Update runs fn inside a transaction, guaranteeing the boundary closes
// even if fn panics.
func (m *Model) Update(fn func()) {
	m.BeginUpdate()
	defer m.EndUpdate()
	fn()
}

func (m *Model) touch() {
	m.dirty = true
	if m.updateLevel == 0 {
		// Mutation outside a transaction still notifies.
		m.dirty = false
		for _, fn := range m.listeners {
			fn()
		}
	}
}

// Add inserts child under parent at the given index (-1 appends). A cell
// already in the tree is reparented, preserving its absolute geometry
// only if the caller adjusts it; Add itself moves structure, not
// coordinates.
func (m *Model) Add(parent, child *Cell, index int) {
	if parent == nil || child == nil || child == parent || m.IsAncestor(child, parent) {
		return
	}
	if child.Parent != nil {
		m.detach(child)
	}
	if index < 0 || index > len(parent.Children) {
		index = len(parent.Children)
	}
	parent.Children = append(parent.Children, nil)
	copy(parent.Children[index+1:], parent.Children[index:])
	parent.Children[index] = child
	child.Parent = parent
	m.touch()
}

// Remove detaches cell from its parent and disconnects its edges.
func (m *Model) Remove(cell *Cell) {
	if cell == nil || cell == m.Root {
		return
	}
	for len(cell.Edges) > 0 {
		edge := cell.Edges[0]
		if edge.Source == cell {
			m.SetTerminal(edge, nil, true)
		}
		if edge.Target == cell {
			m.SetTerminal(edge, nil, false)
		}
	}
	m.detach(cell)
	m.touch()
}

func (m *Model) detach(cell *Cell) {
	p := cell.Parent
	if p == nil {
		return
	}
	if i := p.Index(cell); i >= 0 {
		p.Children = append(p.Children[:i], p.Children[i+1:]...)
	}
	cell.Parent = nil
}

// SetGeometry replaces a cell's geometry record.
func (m *Model) SetGeometry(cell *Cell, geo *Geometry) {
	if cell == nil {
		return
	}
	cell.Geometry = geo
	m.touch()
}

// SetStyle replaces a cell's style.
func (m *Model) SetStyle(cell *Cell, style Style) {
	if cell == nil {
		return
	}
	cell.Style = style
	m.touch()
}

// SetTerminal connects or disconnects one end of an edge, keeping the
// terminal's connected-edges list consistent.
func (m *Model) SetTerminal(edge, terminal *Cell, source bool) {
	if edge == nil {
		return
	}
	var prev *Cell
	if source {
		prev = edge.Source
		edge.Source = terminal
	} else {
		prev = edge.Target
		edge.Target = terminal
	}
	if prev != nil && prev != edge.Terminal(!source) {
		for i, e := range prev.Edges {
			if e == edge {
				prev.Edges = append(prev.Edges[:i], prev.Edges[i+1:]...)
				break
			}
		}
	}
	if terminal != nil {
		found := false
		for _, e := range terminal.Edges {
			if e == edge {
				found = true
				break
			}
		}
		if !found {
			terminal.Edges = append(terminal.Edges, edge)
		}
	}
	m.touch()
}

// IsVertex reports whether cell is a vertex.
func (m *Model) IsVertex(cell *Cell) bool { return cell != nil && cell.Vertex }

// IsEdge reports whether cell is an edge.
func (m *Model) IsEdge(cell *Cell) bool { return cell != nil && cell.Edge }

// GetParent returns the parent of cell, or nil.
func (m *Model) GetParent(cell *Cell) *Cell {
	if cell == nil {
		return nil
	}
	return cell.Parent
}

// IsAncestor reports whether parent is cell or one of its ancestors.
func (m *Model) IsAncestor(parent, cell *Cell) bool {
	for c := cell; c != nil; c = c.Parent {
		if c == parent {
			return true
		}
	}
	return false
}

// Descendants returns cell and every cell below it in pre-order.
func (m *Model) Descendants(cell *Cell) []*Cell {
	if cell == nil {
		return nil
	}
	result := []*Cell{cell}
	for _, child := range cell.Children {
		result = append(result, m.Descendants(child)...)
	}
	return result
}

// CloneCells deep-copies the given cells (including descendants) with
// fresh IDs. Edge terminals that point inside the cloned set are remapped
// to the corresponding clones; terminals outside the set are kept.
func (m *Model) CloneCells(cells []*Cell) []*Cell {
	mapping := make(map[*Cell]*Cell)
	clones := make([]*Cell, 0, len(cells))
	for _, cell := range cells {
		clones = append(clones, cloneTree(cell, mapping))
	}
	for orig, clone := range mapping {
		if orig.Source != nil {
			if mapped, ok := mapping[orig.Source]; ok {
				clone.Source = mapped
				mapped.Edges = append(mapped.Edges, clone)
			} else {
				clone.Source = orig.Source
				orig.Source.Edges = append(orig.Source.Edges, clone)
			}
		}
		if orig.Target != nil {
			if mapped, ok := mapping[orig.Target]; ok {
				clone.Target = mapped
				mapped.Edges = append(mapped.Edges, clone)
			} else {
				clone.Target = orig.Target
				orig.Target.Edges = append(orig.Target.Edges, clone)
			}
		}
	}
	return clones
}

func cloneTree(cell *Cell, mapping map[*Cell]*Cell) *Cell {
	clone := &Cell{
		ID:          uuid.NewString(),
		Value:       cell.Value,
		Style:       cell.Style.Clone(),
		Vertex:      cell.Vertex,
		Edge:        cell.Edge,
		Connectable: cell.Connectable,
		Visible:     cell.Visible,
		Collapsed:   cell.Collapsed,
		Locked:      cell.Locked,
		Deletable:   cell.Deletable,
		Geometry:    cell.Geometry.Clone(),
	}
	mapping[cell] = clone
	for _, child := range cell.Children {
		cc := cloneTree(child, mapping)
		cc.Parent = clone
		clone.Children = append(clone.Children, cc)
	}
	return clone
}
