package interaction

import "dragkit/diagram"

// ValidationError is the outcome of validating a prospective connection.
// A nil *ValidationError allows the connection. A non-nil error always
// blocks it; an empty Message blocks silently (the "no default
// connection" policy), a non-empty Message is additionally surfaced to
// the user at commit time.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Message == "" {
		return "connection not allowed"
	}
	return e.Message
}

// ConnectionValidator decides whether an edge may connect source to
// target. Implemented by the validation collaborator.
type ConnectionValidator func(source, target *diagram.Cell) *ValidationError
