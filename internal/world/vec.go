package world

import "math"

// Vec3 is a world-space position or direction.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// DistanceSq returns the squared distance between v and o.
func (v Vec3) DistanceSq(o Vec3) float64 {
	d := v.Sub(o)
	return d.Dot(d)
}

// Distance returns the Euclidean distance between v and o.
func (v Vec3) Distance(o Vec3) float64 { return math.Sqrt(v.DistanceSq(o)) }

// Lerp moves v toward o by alpha (0 keeps v, 1 returns o).
func (v Vec3) Lerp(o Vec3, alpha float64) Vec3 {
	return Vec3{
		v.X + (o.X-v.X)*alpha,
		v.Y + (o.Y-v.Y)*alpha,
		v.Z + (o.Z-v.Z)*alpha,
	}
}

// Forward is the +Z axis used to measure directional bias.
var Forward = Vec3{0, 0, 1}
