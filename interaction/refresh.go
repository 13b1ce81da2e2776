package interaction

// RefreshToken identifies one pending coalesced refresh. Cancelling the
// token invalidates the work it stands for.
type RefreshToken struct {
	cancelled bool
	fn        func()
}

// Cancel invalidates the pending refresh.
func (t *RefreshToken) Cancel() {
	t.cancelled = true
}

// Refresher coalesces change notifications: any number of Request calls
// before the next Flush collapse into a single invocation. It replaces
// timer-based debouncing with an explicit queue processed at the next
// scheduler tick (the shell's event loop calls Flush once per
// iteration). Single-threaded by contract, like everything else here.
type Refresher struct {
	pending *RefreshToken
}

// Request schedules fn for the next Flush. While a refresh is already
// pending the existing token is returned and fn is dropped; callers pass
// the same closure, so merging notifications this way loses nothing.
func (r *Refresher) Request(fn func()) *RefreshToken {
	if r.pending != nil && !r.pending.cancelled {
		return r.pending
	}
	r.pending = &RefreshToken{fn: fn}
	return r.pending
}

// Pending reports whether an uncancelled refresh is queued.
func (r *Refresher) Pending() bool {
	return r.pending != nil && !r.pending.cancelled
}

// Flush runs the pending refresh, if any survives cancellation.
func (r *Refresher) Flush() {
	t := r.pending
	r.pending = nil
	if t != nil && !t.cancelled {
		t.fn()
	}
}
