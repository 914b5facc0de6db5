// SPDX-License-Identifier: MIT
package render

// transitionStep is the per-tick progress increment: a full blend takes
// 20 ticks, about a third of a second at 60Hz.
const transitionStep = 0.05

// Transition is the state machine blending an outgoing mode into an
// incoming one. Progress rises monotonically from 0 to 1; both modes are
// rendered simultaneously only while active.
type Transition struct {
	active   bool
	progress float64
	from     Mode
	to       Mode
}

// Begin starts (or restarts) a blend from one mode to another. A request
// targeting the mode already being blended to is ignored; any other
// request overrides the blend in progress — rapid mode switches restart
// from the newest target, there is no queueing.
func (t *Transition) Begin(from, to Mode) {
	if t.active && t.to == to {
		return
	}
	t.active = true
	t.progress = 0
	t.from = from
	t.to = to
}

// Step advances progress by one tick. At 1 the transition retires:
// active becomes false and the outgoing mode is discarded.
func (t *Transition) Step() {
	if !t.active {
		return
	}
	t.progress += transitionStep
	if t.progress >= 1 {
		t.progress = 1
		t.active = false
	}
}

// Cancel abandons an in-flight blend, snapping to the target mode.
// Used when the canvas is resized mid-blend.
func (t *Transition) Cancel() {
	t.active = false
	t.progress = 0
}

// Active reports whether a blend is in progress.
func (t *Transition) Active() bool { return t.active }

// Progress returns the current blend position in [0, 1].
func (t *Transition) Progress() float64 { return t.progress }

// From returns the outgoing mode. Only meaningful while Active.
func (t *Transition) From() Mode { return t.from }

// To returns the incoming mode.
func (t *Transition) To() Mode { return t.to }
