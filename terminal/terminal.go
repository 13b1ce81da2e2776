// Package terminal is the interactive demo shell: a tcell screen wired
// to an interaction.Surface. Mouse press, drag and release map straight
// onto the surface's pointer protocol; Escape cancels the live session.
package terminal

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"dragkit/diagram"
	"dragkit/geometry"
	"dragkit/guide"
	"dragkit/interaction"
	"dragkit/view"
)

// Shell owns the screen and the event loop.
type Shell struct {
	surface *interaction.Surface
	screen  tcell.Screen

	pressed bool
	status  string
	hover   string
	dirty   bool
}

// NewShell creates and initializes the screen.
func NewShell(surface *interaction.Surface) (*Shell, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("initializing screen: %w", err)
	}
	screen.EnableMouse()

	sh := &Shell{surface: surface, screen: screen, dirty: true}
	surface.View.SetRenderer(sh)
	surface.Alert = func(msg string) { sh.status = msg; sh.dirty = true }
	return sh, nil
}

// Redraw implements view.Renderer; the shell repaints whole frames, so a
// state redraw just marks the frame dirty.
func (sh *Shell) Redraw(*view.State) { sh.dirty = true }

// Run drives the event loop until quit. The screen is restored on every
// exit path.
func (sh *Shell) Run() error {
	defer sh.screen.Fini()

	sh.surface.Init()
	sh.draw()

	for {
		ev := sh.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			sh.screen.Sync()
			sh.dirty = true

		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEscape:
				sh.surface.CancelSession()
				sh.status = ""
				sh.dirty = true
			case ev.Key() == tcell.KeyCtrlC, ev.Rune() == 'q':
				return nil
			case ev.Rune() == 'g':
				sh.surface.Opts.GridEnabled = !sh.surface.Opts.GridEnabled
				sh.dirty = true
			}

		case *tcell.EventMouse:
			sh.handleMouse(ev)
		}

		// Coalesced model-change reactions run between events, never
		// inside a pointer handler.
		sh.surface.Refresher.Flush()

		if sh.dirty {
			sh.draw()
			sh.dirty = false
		}
	}
}

func (sh *Shell) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	p := interaction.Pointer{
		Point:     geometry.Point{X: float64(x), Y: float64(y)},
		Clone:     ev.Modifiers()&tcell.ModCtrl != 0,
		Constrain: ev.Modifiers()&tcell.ModShift != 0,
		Centered:  ev.Modifiers()&tcell.ModAlt != 0,
	}

	primary := ev.Buttons()&tcell.Button1 != 0
	switch {
	case primary && !sh.pressed:
		sh.pressed = true
		sh.status = ""
		sh.surface.PointerDown(p)
	case primary && sh.pressed:
		sh.surface.PointerMove(p)
	case !primary && sh.pressed:
		sh.pressed = false
		if err := sh.surface.PointerUp(p); err != nil {
			sh.status = err.Error()
		}
	default:
		sh.updateHover(p.Point)
		return
	}
	sh.dirty = true
}

// updateHover shows the cursor hint of the handle under an idle pointer.
func (sh *Shell) updateHover(p geometry.Point) {
	cursor := ""
	for _, set := range sh.surface.HandleSets() {
		if h, ok := set.HandleAt(p); ok {
			cursor = h.Cursor
			break
		}
	}
	if cursor != sh.hover {
		sh.hover = cursor
		sh.dirty = true
	}
}

var (
	styleCell     = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleSelected = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleHandle   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleGuide    = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	styleOutline  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleStatus   = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

func (sh *Shell) draw() {
	sh.screen.Clear()

	for cell, st := range sh.surface.View.States() {
		style := styleCell
		if sh.surface.IsSelected(cell) {
			style = styleSelected
		}
		if cell.Edge {
			sh.drawPolyline(st.AbsolutePoints, style)
		} else {
			sh.drawBox(st.Bounds(), cell.Value, style)
		}
	}

	for _, line := range sh.surface.Guides() {
		sh.drawGuide(line)
	}

	if session := sh.surface.Session(); session != nil {
		if o := session.Outline(); o.Visible {
			switch {
			case len(o.Points) > 0:
				sh.drawPolyline(o.Points, styleOutline)
			case o.Rotation != 0:
				sh.drawPolyline(outlineCorners(o.Bounds, o.Rotation), styleOutline)
			default:
				sh.drawBox(o.Bounds, "", styleOutline)
			}
		}
	}

	for _, set := range sh.surface.HandleSets() {
		for _, h := range set.Handles {
			c := h.Center()
			sh.setCell(int(c.X), int(c.Y), handleRune(h.Kind), styleHandle)
		}
	}

	width, height := sh.screen.Size()
	if sh.status != "" {
		sh.drawText(0, height-1, sh.status, styleStatus)
	}
	if sh.hover != "" {
		sh.drawText(width-len(sh.hover)-1, height-1, sh.hover, styleHandle)
	}

	sh.screen.Show()
}

// outlineCorners returns the rotated outline rectangle as a closed
// polyline.
func outlineCorners(b geometry.Rect, rotation float64) []geometry.Point {
	center := b.Center()
	corners := []geometry.Point{
		{X: b.X, Y: b.Y},
		{X: b.Right(), Y: b.Y},
		{X: b.Right(), Y: b.Bottom()},
		{X: b.X, Y: b.Bottom()},
	}
	for i, p := range corners {
		corners[i] = geometry.RotatePointDeg(p, rotation, center)
	}
	return append(corners, corners[0])
}

func handleRune(k interaction.HandleKind) rune {
	switch k {
	case interaction.KindRotation:
		return '@'
	case interaction.KindLabel:
		return '*'
	case interaction.KindVirtualBend:
		return 'o'
	default:
		return '#'
	}
}

func (sh *Shell) drawBox(b geometry.Rect, label string, style tcell.Style) {
	x0, y0 := int(b.X), int(b.Y)
	x1, y1 := int(b.Right()), int(b.Bottom())
	for x := x0; x <= x1; x++ {
		sh.setCell(x, y0, tcell.RuneHLine, style)
		sh.setCell(x, y1, tcell.RuneHLine, style)
	}
	for y := y0; y <= y1; y++ {
		sh.setCell(x0, y, tcell.RuneVLine, style)
		sh.setCell(x1, y, tcell.RuneVLine, style)
	}
	sh.setCell(x0, y0, tcell.RuneULCorner, style)
	sh.setCell(x1, y0, tcell.RuneURCorner, style)
	sh.setCell(x0, y1, tcell.RuneLLCorner, style)
	sh.setCell(x1, y1, tcell.RuneLRCorner, style)

	if label != "" {
		sh.drawText(int(b.CenterX())-len(label)/2, int(b.CenterY()), label, style)
	}
}

func (sh *Shell) drawPolyline(pts []geometry.Point, style tcell.Style) {
	for i := 0; i+1 < len(pts); i++ {
		sh.drawLine(pts[i], pts[i+1], style)
	}
}

// drawLine steps along the segment one screen cell at a time.
func (sh *Shell) drawLine(a, b geometry.Point, style tcell.Style) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	steps := int(max(abs(dx), abs(dy)))
	if steps == 0 {
		sh.setCell(int(a.X), int(a.Y), '.', style)
		return
	}
	r := tcell.RuneHLine
	if abs(dy) > abs(dx) {
		r = tcell.RuneVLine
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		sh.setCell(int(a.X+dx*t), int(a.Y+dy*t), r, style)
	}
}

func (sh *Shell) drawGuide(line guide.Line) {
	if line.Horizontal {
		for x := int(line.From.X); x <= int(line.To.X); x++ {
			sh.setCell(x, int(line.Position), tcell.RuneHLine, styleGuide)
		}
	} else {
		for y := int(line.From.Y); y <= int(line.To.Y); y++ {
			sh.setCell(int(line.Position), y, tcell.RuneVLine, styleGuide)
		}
	}
}

func (sh *Shell) drawText(x, y int, s string, style tcell.Style) {
	for i, r := range s {
		sh.setCell(x+i, y, r, style)
	}
}

func (sh *Shell) setCell(x, y int, r rune, style tcell.Style) {
	if x < 0 || y < 0 {
		return
	}
	sh.screen.SetContent(x, y, r, nil, style)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// SeedDiagram builds a small demo diagram: two connected boxes, a
// container with children, and a routed edge with a waypoint.
func SeedDiagram(model *diagram.Model) {
	model.Update(func() {
		a := diagram.NewVertex("alpha", 4, 2, 16, 6)
		b := diagram.NewVertex("beta", 34, 12, 16, 6)
		c := diagram.NewVertex("group", 60, 2, 30, 14)
		c.Style[diagram.StyleFill] = "none"
		c.Style[diagram.StyleStroke] = "gray"
		c1 := diagram.NewVertex("one", 4, 2, 10, 4)
		c2 := diagram.NewVertex("two", 16, 8, 10, 4)

		model.Add(model.Root, a, -1)
		model.Add(model.Root, b, -1)
		model.Add(model.Root, c, -1)
		model.Add(c, c1, -1)
		model.Add(c, c2, -1)

		e := diagram.NewEdge("link")
		e.Geometry.Points = []geometry.Point{{X: 30, Y: 10}}
		model.Add(model.Root, e, -1)
		model.SetTerminal(e, a, true)
		model.SetTerminal(e, b, false)
	})
}
