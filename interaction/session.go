package interaction

import "dragkit/geometry"

// Pointer is one pointer event in device coordinates, with the modifier
// state the sessions care about.
type Pointer struct {
	Point geometry.Point

	// Clone requests clone-instead-of-move / clone-instead-of-reconnect.
	Clone bool
	// Constrain locks a move to its dominant axis and a resize to the
	// original aspect ratio.
	Constrain bool
	// Centered applies a resize symmetrically about the shape center.
	Centered bool
	// NoGuides suppresses alignment guides for this event.
	NoGuides bool
}

// Phase is the lifecycle state of a drag session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseToleranceCheck
	PhaseActive
	PhaseSuspended
	PhaseCommitted
	PhaseCancelled
)

// String returns the phase name for diagnostics.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseToleranceCheck:
		return "tolerance-check"
	case PhaseActive:
		return "active"
	case PhaseSuspended:
		return "suspended"
	case PhaseCommitted:
		return "committed"
	case PhaseCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Done reports whether the session has been consumed.
func (p Phase) Done() bool {
	return p == PhaseCommitted || p == PhaseCancelled
}

// Session is one pointer-down-to-up gesture. Exactly one session exists
// per pointer device; the Surface creates it on pointer-down, feeds it
// every move, and consumes it exactly once on pointer-up or cancel.
type Session interface {
	// Move updates the session for a pointer move.
	Move(p Pointer)

	// Up finishes the gesture: commits through the dispatcher when the
	// tolerance was exceeded, otherwise performs the click fallback.
	Up(p Pointer) error

	// Cancel discards the session, restoring any live-preview-mutated
	// state before returning.
	Cancel()

	// Phase returns the lifecycle state.
	Phase() Phase

	// Outline returns the current cheap-preview geometry for drawing.
	Outline() Outline

	// Refresh recomputes preview bounds after an external model change.
	// Called only while the session is active and not suspended.
	Refresh()

	// Suspend pauses preview updates during programmatic operations;
	// Resume forces a full live-preview redraw, ignoring anything drawn
	// before the suspension.
	Suspend()
	Resume()
}
