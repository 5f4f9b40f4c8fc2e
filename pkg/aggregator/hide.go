package aggregator

import "time"

// DefaultHideDelay is how long no source must be elected before the
// display is hidden.
const DefaultHideDelay = time.Second

// HideState is the visibility state of the display.
type HideState int

const (
	Visible HideState = iota
	PendingHide
	Hidden
)

func (s HideState) String() string {
	switch s {
	case PendingHide:
		return "PendingHide"
	case Hidden:
		return "Hidden"
	default:
		return "Visible"
	}
}

// HideTimer debounces hiding so that a source missing for a single
// cycle does not make the display flicker.
type HideTimer struct {
	delay     time.Duration
	state     HideState
	startedAt time.Time
}

// NewHideTimer returns a timer in the Visible state.
func NewHideTimer(delay time.Duration) *HideTimer {
	return &HideTimer{delay: delay, state: Visible}
}

// State returns the current state.
func (h *HideTimer) State() HideState { return h.state }

// Begin starts the hide delay. Only a Visible timer moves to PendingHide.
func (h *HideTimer) Begin(now time.Time) {
	if h.state != Visible {
		return
	}
	h.state = PendingHide
	h.startedAt = now
}

// Tick reports true exactly once, when a pending hide has waited the
// full delay and the timer moves to Hidden.
func (h *HideTimer) Tick(now time.Time) bool {
	if h.state != PendingHide || now.Sub(h.startedAt) < h.delay {
		return false
	}
	h.state = Hidden
	return true
}

// Show cancels any pending hide.
func (h *HideTimer) Show() {
	h.state = Visible
	h.startedAt = time.Time{}
}
