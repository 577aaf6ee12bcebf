// Package teleop is the operator-side control pipeline: it samples
// tracked poses each tick, gates mimicry per arm through a grip-driven
// engagement state machine, solves and maps arm targets, low-passes
// every channel, and hands fully formed commands to the dispatch
// queue. Emergency stop and pre-set motions bypass the whole pipeline
// and go to the queue directly.
package teleop

// LimbState is the per-arm mimicry gate.
type LimbState int

const (
	// Idle means the arm ignores pose input; its last target is frozen.
	Idle LimbState = iota
	// Mimicking means the arm recomputes its target from the pose
	// every tick.
	Mimicking
)

// String returns a human-readable state name.
func (s LimbState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Mimicking:
		return "mimicking"
	default:
		return "unknown"
	}
}

// Engagement tracks one arm's grip signal and derives its LimbState.
// Only a rising edge of the grip engages: holding the grip across
// ticks does not re-trigger a transition. Releasing always disengages.
type Engagement struct {
	state LimbState
	held  bool
}

// Update feeds one tick's grip sample and returns the resulting state.
func (e *Engagement) Update(grip bool) LimbState {
	switch {
	case grip && !e.held:
		e.state = Mimicking
	case !grip:
		e.state = Idle
	}
	e.held = grip
	return e.state
}

// State returns the current state without consuming a sample.
func (e *Engagement) State() LimbState {
	return e.state
}
