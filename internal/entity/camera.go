package entity

import (
	"math"

	"github.com/samdwyer/terrainwalk/internal/world"
)

const (
	cameraLerp = 0.05

	introHeight   = 220.0
	introDistance = -160.0
	restHeight    = 20.0
	restDistance  = -24.0
	introStep     = 2.0
)

// lookAhead is where the camera aims, relative to the follower.
var lookAhead = world.Vec3{X: 0, Y: 10, Z: 15}

// Camera chases the follower from behind and above. It starts high and far
// away and closes in over the first updates.
type Camera struct {
	Position world.Vec3
	Target   world.Vec3

	height   float64
	distance float64
}

// NewCamera creates a camera at its intro offset from the origin.
func NewCamera() *Camera {
	return &Camera{
		Position: world.Vec3{X: 0, Y: introHeight, Z: introDistance},
		height:   introHeight,
		distance: introDistance,
	}
}

// Offset returns the current chase offset before rotation.
func (c *Camera) Offset() world.Vec3 {
	return world.Vec3{X: 0, Y: c.height, Z: c.distance}
}

// Update eases the camera toward its ideal spot behind f.
func (c *Camera) Update(f *Follower) {
	yaw := f.Yaw()
	ideal := rotateY(c.Offset(), yaw).Add(f.Position)
	aim := rotateY(lookAhead, yaw).Add(f.Position)

	c.Position = c.Position.Lerp(ideal, cameraLerp)
	c.Target = c.Target.Lerp(aim, cameraLerp)

	if c.height > restHeight {
		c.height = math.Max(restHeight, c.height-introStep)
	}
	if c.distance < restDistance {
		c.distance = math.Min(restDistance, c.distance+introStep)
	}
}

// rotateY rotates v around the vertical axis by yaw radians.
func rotateY(v world.Vec3, yaw float64) world.Vec3 {
	sin, cos := math.Sincos(yaw)
	return world.Vec3{
		X: v.X*cos + v.Z*sin,
		Y: v.Y,
		Z: -v.X*sin + v.Z*cos,
	}
}
