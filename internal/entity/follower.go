// Package entity provides the character and camera that ride the path.
package entity

import (
	"math"

	"github.com/samdwyer/terrainwalk/internal/world"
)

const (
	// DefaultCursorStart is the first curve sample the follower stands on.
	DefaultCursorStart = 30
	// DefaultCursorEnd is the last curve sample before the follower wraps.
	DefaultCursorEnd = 39
)

// Follower walks a stretch of the published curve. When it reaches the end
// of the stretch it wraps back to the start, and the path is expected to
// move forward by one node so the same stretch now lies further ahead.
type Follower struct {
	Start, End int
	Cursor     int

	Position world.Vec3
	LookAt   world.Vec3
	Symbol   rune
}

// NewFollower creates a follower walking curve samples start..end.
func NewFollower(start, end int) *Follower {
	if start < 0 {
		start = 0
	}
	if end < start {
		end = start
	}
	return &Follower{
		Start:  start,
		End:    end,
		Cursor: start,
		Symbol: '@',
	}
}

// Step places the follower on the current curve sample, facing the next one,
// then moves the cursor. It reports true when the cursor wrapped.
func (f *Follower) Step(curve []world.Vec3) bool {
	if len(curve) < 2 {
		return false
	}
	i := min(f.Cursor, len(curve)-2)
	f.Position = curve[i]
	f.LookAt = curve[i+1]

	if f.Cursor >= f.End {
		f.Cursor = f.Start
		return true
	}
	f.Cursor++
	return false
}

// Yaw returns the heading around the vertical axis; 0 faces +Z.
func (f *Follower) Yaw() float64 {
	d := f.LookAt.Sub(f.Position)
	if d.X == 0 && d.Z == 0 {
		return 0
	}
	return math.Atan2(d.X, d.Z)
}
