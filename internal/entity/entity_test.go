package entity

import (
	"math"
	"testing"

	"github.com/samdwyer/terrainwalk/internal/world"
)

func line(n int) []world.Vec3 {
	out := make([]world.Vec3, n)
	for i := range out {
		out[i] = world.Vec3{Z: float64(i)}
	}
	return out
}

func TestFollowerWrapsAtEnd(t *testing.T) {
	f := NewFollower(3, 5)
	curve := line(10)

	var wraps []bool
	for i := 0; i < 6; i++ {
		wraps = append(wraps, f.Step(curve))
	}
	want := []bool{false, false, true, false, false, true}
	for i := range want {
		if wraps[i] != want[i] {
			t.Fatalf("step %d wrapped=%v, want %v", i, wraps[i], want[i])
		}
	}
	if f.Position.Z != 5 || f.LookAt.Z != 6 {
		t.Errorf("position %+v lookAt %+v, want z=5 facing z=6", f.Position, f.LookAt)
	}
	if f.Cursor != 3 {
		t.Errorf("cursor = %d, want 3 after wrap", f.Cursor)
	}
}

func TestFollowerIgnoresShortCurve(t *testing.T) {
	f := NewFollower(0, 4)
	if f.Step(line(1)) {
		t.Error("a single point cannot be walked")
	}
	if f.Cursor != 0 {
		t.Error("cursor must not move without a curve")
	}
}

func TestFollowerClampsToCurve(t *testing.T) {
	f := NewFollower(30, 39)
	f.Step(line(5))
	if f.Position.Z != 3 || f.LookAt.Z != 4 {
		t.Errorf("position %+v lookAt %+v, want last segment", f.Position, f.LookAt)
	}
}

func TestFollowerYaw(t *testing.T) {
	f := NewFollower(0, 1)
	f.LookAt = world.Vec3{X: 1}
	if got := f.Yaw(); math.Abs(got-math.Pi/2) > 1e-12 {
		t.Errorf("Yaw facing +X = %v, want pi/2", got)
	}
	f.LookAt = world.Vec3{Z: 1}
	if got := f.Yaw(); got != 0 {
		t.Errorf("Yaw facing +Z = %v, want 0", got)
	}
}

func TestCameraSettlesBehindFollower(t *testing.T) {
	c := NewCamera()
	f := NewFollower(0, 1)
	f.Position = world.Vec3{X: 10, Y: 3, Z: 50}
	f.LookAt = world.Vec3{X: 10, Y: 3, Z: 51}

	for i := 0; i < 500; i++ {
		c.Update(f)
	}
	if got := c.Offset(); got.Y != restHeight || got.Z != restDistance {
		t.Fatalf("offset = %+v, want rest offset", got)
	}
	want := world.Vec3{X: 10, Y: 3 + restHeight, Z: 50 + restDistance}
	if c.Position.Distance(want) > 1e-3 {
		t.Errorf("camera at %+v, want near %+v", c.Position, want)
	}
	aim := world.Vec3{X: 10, Y: 13, Z: 65}
	if c.Target.Distance(aim) > 1e-3 {
		t.Errorf("camera aims at %+v, want near %+v", c.Target, aim)
	}
}

func TestRotateY(t *testing.T) {
	got := rotateY(world.Vec3{Z: 1}, math.Pi/2)
	if math.Abs(got.X-1) > 1e-12 || math.Abs(got.Z) > 1e-12 {
		t.Errorf("rotateY(+Z, pi/2) = %+v, want +X", got)
	}
}
