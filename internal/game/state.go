// Package game provides the terminal frame loop and its run state.
package game

// State represents the current run state.
type State int

const (
	// StateRunning advances the simulation on every tick.
	StateRunning State = iota
	// StatePaused freezes the simulation; single steps are still allowed.
	StatePaused
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}
