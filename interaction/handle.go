package interaction

import (
	"dragkit/diagram"
	"dragkit/geometry"
	"dragkit/view"
)

// HandleKind discriminates the degrees of freedom a handle manipulates.
// An explicit tag plus index replaces the usual sentinel-integer
// encoding, so hit-test priority does not depend on magic number ranges.
type HandleKind int

const (
	KindNone HandleKind = iota
	KindResize
	KindRotation
	KindLabel
	KindSourceTerminal
	KindTargetTerminal
	KindBend
	KindVirtualBend
	KindCustom
)

// String returns the kind name for diagnostics.
func (k HandleKind) String() string {
	switch k {
	case KindResize:
		return "resize"
	case KindRotation:
		return "rotation"
	case KindLabel:
		return "label"
	case KindSourceTerminal:
		return "source"
	case KindTargetTerminal:
		return "target"
	case KindBend:
		return "bend"
	case KindVirtualBend:
		return "virtual-bend"
	case KindCustom:
		return "custom"
	default:
		return "none"
	}
}

// CustomHandle is a pluggable per-handle behavior for shapes that expose
// extra degrees of freedom. The session only knows its bounds and
// hit-test rank; drag processing and the final commit are delegated.
type CustomHandle interface {
	// Bounds returns the handle's current screen rectangle.
	Bounds() geometry.Rect

	// Process consumes a pointer position during the drag and updates
	// the handle's transient position.
	Process(p geometry.Point)

	// Position returns the handle's current (possibly transient)
	// position for preview drawing.
	Position() geometry.Point

	// Execute commits the handle's state through the dispatcher.
	Execute(d *Dispatcher)

	// Reset discards transient state after cancel.
	Reset()
}

// Handle is one draggable hit-region on a selected cell. Index carries
// the per-kind payload: the resize handle index (0-8), the interior
// waypoint index for bends, the segment index for virtual bends, or the
// position in the custom handle list.
type Handle struct {
	Kind   HandleKind
	Index  int
	Bounds geometry.Rect
	Cursor string
	Custom CustomHandle
}

// Center returns the handle rectangle's center.
func (h Handle) Center() geometry.Point {
	return h.Bounds.Center()
}

// hitRank orders overlapping handles: custom above virtual above bend
// above label above rotation, everything else last. Lower is stronger.
func (h Handle) hitRank() int {
	switch h.Kind {
	case KindCustom:
		return 0
	case KindVirtualBend:
		return 1
	case KindBend, KindSourceTerminal, KindTargetTerminal:
		return 2
	case KindLabel:
		return 3
	case KindRotation:
		return 4
	default:
		return 5
	}
}

var resizeCursors = [9]string{
	"nw-resize", "n-resize", "ne-resize",
	"w-resize", "e-resize",
	"sw-resize", "s-resize", "se-resize",
	"se-resize",
}

// HandleSet is the full set of handles for one cell, rebuilt from its
// state at session start and discarded on reset. Handle indices are
// unique within the set.
type HandleSet struct {
	Cell    *diagram.Cell
	Handles []Handle
}

// BuildHandles constructs the handle set for a selected cell from its
// current state. Custom handles are appended by the caller.
func BuildHandles(s *view.State, opts *Options, custom []CustomHandle) *HandleSet {
	set := &HandleSet{Cell: s.Cell}
	if s.Cell.Edge {
		set.buildEdgeHandles(s, opts)
	} else {
		set.buildVertexHandles(s, opts)
	}
	for i, ch := range custom {
		set.Handles = append(set.Handles, Handle{
			Kind:   KindCustom,
			Index:  i,
			Bounds: ch.Bounds(),
			Cursor: "default",
			Custom: ch,
		})
	}
	return set
}

func handleRect(center geometry.Point, size float64) geometry.Rect {
	return geometry.Rect{X: center.X - size/2, Y: center.Y - size/2, Width: size, Height: size}
}

// buildVertexHandles places the eight resize handles on the rotated
// shape outline, the rotation handle above the top edge and, when
// vertex labels are movable, the label handle at the label position.
// Handles are defined in the unrotated local frame and rotated into
// place for hit testing.
func (set *HandleSet) buildVertexHandles(s *view.State, opts *Options) {
	b := s.Bounds()
	center := b.Center()
	size := opts.HandleSize

	local := [8]geometry.Point{
		{X: b.X, Y: b.Y},
		{X: b.CenterX(), Y: b.Y},
		{X: b.Right(), Y: b.Y},
		{X: b.X, Y: b.CenterY()},
		{X: b.Right(), Y: b.CenterY()},
		{X: b.X, Y: b.Bottom()},
		{X: b.CenterX(), Y: b.Bottom()},
		{X: b.Right(), Y: b.Bottom()},
	}
	if opts.ResizeEnabled && !s.Cell.Locked {
		for i, p := range local {
			if s.Rotation != 0 {
				p = geometry.RotatePointDeg(p, s.Rotation, center)
			}
			set.Handles = append(set.Handles, Handle{
				Kind:   KindResize,
				Index:  i,
				Bounds: handleRect(p, size),
				Cursor: resizeCursors[i],
			})
		}
	}

	if opts.RotationEnabled && !s.Cell.Locked {
		p := geometry.Point{X: b.CenterX(), Y: b.Y - opts.RotationHandleDistance}
		if s.Rotation != 0 {
			p = geometry.RotatePointDeg(p, s.Rotation, center)
		}
		set.Handles = append(set.Handles, Handle{
			Kind:   KindRotation,
			Bounds: handleRect(p, size),
			Cursor: "crosshair",
		})
	}

	if opts.VertexLabelsMovable && !s.Cell.Locked {
		set.Handles = append(set.Handles, Handle{
			Kind:   KindLabel,
			Bounds: handleRect(labelPosition(s), size),
			Cursor: "move",
		})
	}
}

// buildEdgeHandles places a handle on each terminal, one per interior
// waypoint, a virtual handle at every segment midpoint (dragging one
// inserts a waypoint) and the label handle at the edge midpoint.
func (set *HandleSet) buildEdgeHandles(s *view.State, opts *Options) {
	pts := s.AbsolutePoints
	if len(pts) < 2 {
		return
	}
	size := opts.HandleSize

	set.Handles = append(set.Handles,
		Handle{Kind: KindSourceTerminal, Bounds: handleRect(pts[0], size), Cursor: "pointer"},
		Handle{Kind: KindTargetTerminal, Bounds: handleRect(pts[len(pts)-1], size), Cursor: "pointer"},
	)

	for i := 1; i < len(pts)-1; i++ {
		set.Handles = append(set.Handles, Handle{
			Kind:   KindBend,
			Index:  i - 1,
			Bounds: handleRect(pts[i], size),
			Cursor: "crosshair",
		})
	}

	for i := 0; i+1 < len(pts); i++ {
		mid := geometry.Point{X: (pts[i].X + pts[i+1].X) / 2, Y: (pts[i].Y + pts[i+1].Y) / 2}
		set.Handles = append(set.Handles, Handle{
			Kind:   KindVirtualBend,
			Index:  i,
			Bounds: handleRect(mid, size),
			Cursor: "crosshair",
		})
	}

	if opts.EdgeLabelsMovable && !s.Cell.Locked {
		set.Handles = append(set.Handles, Handle{
			Kind:   KindLabel,
			Bounds: handleRect(labelPosition(s), size),
			Cursor: "move",
		})
	}
}

// labelPosition returns the device point of a cell's label: the shape
// center plus the relative/absolute label offset.
func labelPosition(s *view.State) geometry.Point {
	var base geometry.Point
	if s.Cell.Edge {
		pts := s.AbsolutePoints
		if n := len(pts); n >= 2 {
			base = geometry.Point{X: (pts[0].X + pts[n-1].X) / 2, Y: (pts[0].Y + pts[n-1].Y) / 2}
		}
	} else {
		base = s.Center()
	}
	if geo := s.Cell.Geometry; geo != nil && geo.Offset != nil {
		base.X += geo.Offset.X
		base.Y += geo.Offset.Y
	}
	return base
}

// HandleAt returns the handle under the device point, honoring the
// hit-test priority (custom > virtual > bend > label > rotation) and
// breaking rank ties by distance to the handle center.
func (set *HandleSet) HandleAt(p geometry.Point) (Handle, bool) {
	best := Handle{Kind: KindNone}
	found := false
	bestRank := 0
	bestDist := 0.0
	for _, h := range set.Handles {
		if !h.Bounds.Contains(p) {
			continue
		}
		rank := h.hitRank()
		dist := p.Distance(h.Center())
		if !found || rank < bestRank || (rank == bestRank && dist < bestDist) {
			best, found = h, true
			bestRank, bestDist = rank, dist
		}
	}
	return best, found
}
