// Package diagram holds the retained data model: cells, their geometry
// records and the transactional model that owns them. Interactive code
// reads cells freely but mutates them only through Model methods inside
// a BeginUpdate/EndUpdate pair.
package diagram

import (
	"strconv"

	"github.com/google/uuid"

	"dragkit/geometry"
)

// Style is a flat key/value bag of visual and behavioral attributes,
// resolved elsewhere; the interaction layer only reads a handful of keys.
type Style map[string]string

// Style keys read by the interaction layer.
const (
	StyleRotation	= "rotation"	// degrees in [0,360)
	StyleAspect	= "aspect"	// "fixed" locks the aspect ratio
	StyleFill	= "fillColor"	// "none" means graphically transparent
	StyleStroke	= "strokeColor"
	StyleContainer	= "container"	// "1" marks a drop container
	StyleExitX	= "exitX"	// normalized fixed connection point, source end
	StyleExitY	= "exitY"
	StyleEntryX	= "entryX"	// normalized fixed connection point, target end
	StyleEntryY	= "entryY"
)

// Clone returns a copy of the style map.
func (s Style) Clone() Style {
	if s == nil {
		return nil
	}
	c := make(Style, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// Float returns the named key parsed as float64, or def when absent or
// malformed.
func (s Style) Float(key string, def float64) float64 {
	if v, ok := s[key]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

// SetFloat stores a float value under the named key.
func (s Style) SetFloat(key string, value float64) {
	s[key] = strconv.FormatFloat(value, 'f', -1, 64)
}

// Rotation returns the cell rotation in degrees, normalized to [0,360).
func (s Style) Rotation() float64 {
	return geometry.NormalizeAngle(s.Float(StyleRotation, 0))
}

// FixedAspect reports whether the style declares a locked aspect ratio.
func (s Style) FixedAspect() bool {
	return s[StyleAspect] == "fixed"
}

// Container reports whether the style marks the cell as a drop
// container regardless of its current child count.
func (s Style) Container() bool {
	return s[StyleContainer] == "1"
}

// Transparent reports whether the cell draws no fill or stroke of its
// own. An empty container that is still visible must not be auto-removed.
func (s Style) Transparent() bool {
	fill, hasFill := s[StyleFill]
	stroke, hasStroke := s[StyleStroke]
	return (!hasFill || fill == "none") && (!hasStroke || stroke == "none")
}

// Geometry is the persistent geometric record of a cell: position and
// size for vertices (absolute, or relative to the parent when Relative
// is set), waypoints and optional fixed terminal points for edges.
type Geometry struct {
	X, Y          float64
	Width, Height float64

	// Relative marks coordinates as fractions of the parent bounds
	// (used for labels and relative children). Offset is the absolute
	// displacement applied on top.
	Relative bool
	Offset   *geometry.Point

	// Edge routing: interior waypoints in model coordinates, plus
	// optional fixed endpoints for dangling terminals.
	Points      []geometry.Point
	SourcePoint *geometry.Point
	TargetPoint *geometry.Point
}

// Rect returns the vertex bounds as a rectangle.
func (g *Geometry) Rect() geometry.Rect {
	return geometry.Rect{X: g.X, Y: g.Y, Width: g.Width, Height: g.Height}
}

// SetRect sets the vertex bounds from a rectangle.
func (g *Geometry) SetRect(r geometry.Rect) {
	g.X, g.Y, g.Width, g.Height = r.X, r.Y, r.Width, r.Height
}

// Clone returns a deep copy of the geometry.
func (g *Geometry) Clone() *Geometry {
	if g == nil {
		return nil
	}
	c := *g
	if g.Offset != nil {
		o := *g.Offset
		c.Offset = &o
	}
	if g.Points != nil {
		c.Points = make([]geometry.Point, len(g.Points))
		copy(c.Points, g.Points)
	}
	if g.SourcePoint != nil {
		p := *g.SourcePoint
		c.SourcePoint = &p
	}
	if g.TargetPoint != nil {
		p := *g.TargetPoint
		c.TargetPoint = &p
	}
	return &c
}

// Translate moves the geometry by (dx, dy): absolute vertex origins,
// fixed terminal points and waypoints all shift; relative geometry only
// moves its offset.
func (g *Geometry) Translate(dx, dy float64) {
	if !g.Relative {
		g.X += dx
		g.Y += dy
	}
	if g.SourcePoint != nil {
		g.SourcePoint.X += dx
		g.SourcePoint.Y += dy
	}
	if g.TargetPoint != nil {
		g.TargetPoint.X += dx
		g.TargetPoint.Y += dy
	}
	for i := range g.Points {
		g.Points[i].X += dx
		g.Points[i].Y += dy
	}
}

// Rotate rotates the geometry by the given angle (degrees) about center,
// expressed in the parent's coordinate space. Non-relative vertices move
// their center; edge endpoints and waypoints rotate individually.
func (g *Geometry) Rotate(degrees float64, center geometry.Point) {
	if !g.Relative {
		ct := geometry.Point{X: g.X + g.Width/2, Y: g.Y + g.Height/2}
		pt := geometry.RotatePointDeg(ct, degrees, center)
		g.X = pt.X - g.Width/2
		g.Y = pt.Y - g.Height/2
	}
	if g.SourcePoint != nil {
		*g.SourcePoint = geometry.RotatePointDeg(*g.SourcePoint, degrees, center)
	}
	if g.TargetPoint != nil {
		*g.TargetPoint = geometry.RotatePointDeg(*g.TargetPoint, degrees, center)
	}
	for i := range g.Points {
		g.Points[i] = geometry.RotatePointDeg(g.Points[i], degrees, center)
	}
}

// Cell is one element of the diagram: a vertex, an edge, or a group
// container. Structure (parent/children, edge terminals) is maintained
// by the Model.
type Cell struct {
	ID    string
	Value string
	Style Style

	Vertex      bool
	Edge        bool
	Connectable bool
	Visible     bool
	Collapsed   bool
	Locked      bool
	Deletable   bool

	Geometry *Geometry

	Parent   *Cell
	Children []*Cell

	// Edge terminals; nil means a dangling end (see Geometry's fixed
	// terminal points).
	Source *Cell
	Target *Cell

	// Edges connected to this cell at either end.
	Edges []*Cell
}

// NewVertex creates an unattached vertex cell.
func NewVertex(value string, x, y, width, height float64) *Cell {
	return &Cell{
		ID:          uuid.NewString(),
		Value:       value,
		Style:       Style{},
		Vertex:      true,
		Connectable: true,
		Visible:     true,
		Deletable:   true,
		Geometry:    &Geometry{X: x, Y: y, Width: width, Height: height},
	}
}

// NewEdge creates an unattached edge cell with relative label geometry.
func NewEdge(value string) *Cell {
	return &Cell{
		ID:          uuid.NewString(),
		Value:       value,
		Style:       Style{},
		Edge:        true,
		Connectable: false,
		Visible:     true,
		Deletable:   true,
		Geometry:    &Geometry{Relative: true},
	}
}

// Rotation returns the cell's own rotation in degrees.
func (c *Cell) Rotation() float64 {
	if c.Style == nil {
		return 0
	}
	return c.Style.Rotation()
}

// Terminal returns the source or target terminal.
func (c *Cell) Terminal(source bool) *Cell {
	if source {
		return c.Source
	}
	return c.Target
}

// ChildCount returns the number of children.
func (c *Cell) ChildCount() int { return len(c.Children) }

// Index returns the position of child within c, or -1.
func (c *Cell) Index(child *Cell) int {
	for i, ch := range c.Children {
		if ch == child {
			return i
		}
	}
	return -1
}
