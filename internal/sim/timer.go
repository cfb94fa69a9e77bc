package sim

import "time"

// FixedStep gates simulation steps to a steady interval regardless of how
// often frames arrive. Elapsed time is fed in by the caller.
type FixedStep struct {
	step        time.Duration
	accumulator time.Duration
}

// NewFixedStep creates a gate that opens once per interval. A zero interval
// opens on every call.
func NewFixedStep(interval time.Duration) *FixedStep {
	if interval < 0 {
		interval = 0
	}
	return &FixedStep{step: interval}
}

// Interval returns the step interval.
func (f *FixedStep) Interval() time.Duration { return f.step }

// Advance adds elapsed time and reports whether one step is due. At most one
// step is released per call; backlog beyond one interval is dropped.
func (f *FixedStep) Advance(elapsed time.Duration) bool {
	if elapsed > 0 {
		f.accumulator += elapsed
	}
	if f.accumulator < f.step {
		return false
	}
	if f.step == 0 {
		f.accumulator = 0
		return true
	}
	f.accumulator -= f.step
	f.accumulator %= f.step
	return true
}
