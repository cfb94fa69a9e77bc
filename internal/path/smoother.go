package path

import (
	"math"

	"github.com/samdwyer/terrainwalk/internal/world"
)

const (
	// DefaultWindowSize is how many trailing nodes the curve is fitted through.
	DefaultWindowSize = 5
	// DefaultCurveSamples is the number of segments the curve is sampled into.
	DefaultCurveSamples = 50

	// Parameterisation below this knot distance is treated as degenerate.
	minKnotDistance = 1e-4
)

// Curve is a centripetal Catmull-Rom spline through a sequence of points.
// It passes through every control point.
type Curve struct {
	points []world.Vec3
}

// NewCurve fits a curve through points. It reports false for fewer than two
// points.
func NewCurve(points []world.Vec3) (*Curve, bool) {
	if len(points) < 2 {
		return nil, false
	}
	cp := make([]world.Vec3, len(points))
	copy(cp, points)
	return &Curve{points: cp}, true
}

// At evaluates the curve at t in [0, 1]. Control point k sits at
// t = k / (len-1).
func (c *Curve) At(t float64) world.Vec3 {
	t = math.Max(0, math.Min(1, t))
	l := len(c.points)

	p := float64(l-1) * t
	seg := int(math.Floor(p))
	weight := p - float64(seg)
	if seg >= l-1 {
		seg = l - 2
		weight = 1
	}

	p1 := c.points[seg]
	p2 := c.points[seg+1]

	var p0, p3 world.Vec3
	if seg > 0 {
		p0 = c.points[seg-1]
	} else {
		p0 = p1.Add(p1.Sub(p2))
	}
	if seg+2 < l {
		p3 = c.points[seg+2]
	} else {
		p3 = p2.Add(p2.Sub(p1))
	}

	// Centripetal knot spacing: squared distance to the power 0.25.
	dt0 := math.Pow(p0.DistanceSq(p1), 0.25)
	dt1 := math.Pow(p1.DistanceSq(p2), 0.25)
	dt2 := math.Pow(p2.DistanceSq(p3), 0.25)
	if dt1 < minKnotDistance {
		dt1 = 1
	}
	if dt0 < minKnotDistance {
		dt0 = dt1
	}
	if dt2 < minKnotDistance {
		dt2 = dt1
	}

	return world.Vec3{
		X: nonUniform(p0.X, p1.X, p2.X, p3.X, dt0, dt1, dt2).at(weight),
		Y: nonUniform(p0.Y, p1.Y, p2.Y, p3.Y, dt0, dt1, dt2).at(weight),
		Z: nonUniform(p0.Z, p1.Z, p2.Z, p3.Z, dt0, dt1, dt2).at(weight),
	}
}

// Sample returns divisions+1 evenly spaced points from start to end.
func (c *Curve) Sample(divisions int) []world.Vec3 {
	if divisions < 1 {
		divisions = 1
	}
	out := make([]world.Vec3, 0, divisions+1)
	for i := 0; i <= divisions; i++ {
		out = append(out, c.At(float64(i)/float64(divisions)))
	}
	return out
}

// cubic holds the coefficients of c0 + c1*t + c2*t^2 + c3*t^3.
type cubic struct{ c0, c1, c2, c3 float64 }

func (p cubic) at(t float64) float64 {
	t2 := t * t
	return p.c0 + p.c1*t + p.c2*t2 + p.c3*t2*t
}

// nonUniform builds the Hermite segment between x1 and x2 with tangents
// derived from the non-uniform knot spacing.
func nonUniform(x0, x1, x2, x3, dt0, dt1, dt2 float64) cubic {
	t1 := (x1-x0)/dt0 - (x2-x0)/(dt0+dt1) + (x2-x1)/dt1
	t2 := (x2-x1)/dt1 - (x3-x1)/(dt1+dt2) + (x3-x2)/dt2
	t1 *= dt1
	t2 *= dt1
	return cubic{
		c0: x1,
		c1: t1,
		c2: -3*x1 + 3*x2 - 2*t1 - t2,
		c3: 2*x1 - 2*x2 + t1 + t2,
	}
}

// Smoother republishes a sampled curve through the trailing path window.
type Smoother struct {
	window  int
	samples int

	curve     *Curve
	published []world.Vec3
}

// NewSmoother creates a smoother over the last window nodes, sampling the
// curve into the given number of segments.
func NewSmoother(window, samples int) *Smoother {
	if window < 2 {
		window = DefaultWindowSize
	}
	if samples < 1 {
		samples = DefaultCurveSamples
	}
	return &Smoother{window: window, samples: samples}
}

// Window returns the number of trailing nodes the curve is fitted through.
func (s *Smoother) Window() int { return s.window }

// Update refits the curve through the trailing window of nodes and replaces
// the published points. With fewer than two nodes nothing is published and
// Update reports false.
func (s *Smoother) Update(nodes []Node) ([]world.Vec3, bool) {
	if len(nodes) > s.window {
		nodes = nodes[len(nodes)-s.window:]
	}
	points := make([]world.Vec3, len(nodes))
	for i, n := range nodes {
		points[i] = n.Position
	}
	curve, ok := NewCurve(points)
	if !ok {
		return nil, false
	}
	s.curve = curve
	s.published = curve.Sample(s.samples)
	return s.published, true
}

// Curve returns the last fitted curve, or nil before the first publish.
func (s *Smoother) Curve() *Curve { return s.curve }

// Published returns the last published points.
func (s *Smoother) Published() []world.Vec3 { return s.published }
