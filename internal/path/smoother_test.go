package path

import (
	"math"
	"testing"

	"github.com/samdwyer/terrainwalk/internal/world"
)

func nodesAt(points ...world.Vec3) []Node {
	out := make([]Node, len(points))
	for i, p := range points {
		out[i] = Node{Position: p}
	}
	return out
}

func near(a, b world.Vec3, eps float64) bool {
	return a.Distance(b) <= eps
}

func TestSmootherSkipsDegenerateWindow(t *testing.T) {
	s := NewSmoother(5, 50)
	if _, ok := s.Update(nil); ok {
		t.Error("no nodes should not publish")
	}
	if _, ok := s.Update(nodesAt(world.Vec3{X: 1})); ok {
		t.Error("one node should not publish")
	}
	if s.Published() != nil || s.Curve() != nil {
		t.Error("nothing should be published yet")
	}
}

func TestCurveInterpolatesNodes(t *testing.T) {
	points := []world.Vec3{
		{X: 0, Y: 5, Z: 0},
		{X: 8, Y: 7, Z: 3},
		{X: 12, Y: 4, Z: 14},
		{X: 10, Y: 9, Z: 25},
		{X: 18, Y: 6, Z: 31},
	}
	curve, ok := NewCurve(points)
	if !ok {
		t.Fatal("NewCurve failed")
	}
	for k, p := range points {
		got := curve.At(float64(k) / float64(len(points)-1))
		if !near(got, p, 1e-9) {
			t.Errorf("At(node %d) = %+v, want %+v", k, got, p)
		}
	}
}

func TestSmootherPublishesThroughNodes(t *testing.T) {
	nodes := nodesAt(
		world.Vec3{X: 0, Y: 5, Z: 0},
		world.Vec3{X: 3, Y: 8, Z: 9},
		world.Vec3{X: -4, Y: 6, Z: 18},
		world.Vec3{X: 2, Y: 11, Z: 27},
		world.Vec3{X: 6, Y: 7, Z: 35},
	)
	// 48 segments over 4 spans puts a sample exactly on every node.
	s := NewSmoother(5, 48)
	pts, ok := s.Update(nodes)
	if !ok {
		t.Fatal("expected publish")
	}
	if len(pts) != 49 {
		t.Fatalf("published %d points, want 49", len(pts))
	}
	for k, n := range nodes {
		if !near(pts[k*12], n.Position, 1e-9) {
			t.Errorf("sample %d = %+v, want node %+v", k*12, pts[k*12], n.Position)
		}
	}
}

func TestSmootherUsesTrailingWindow(t *testing.T) {
	var nodes []Node
	for i := 0; i < 9; i++ {
		nodes = append(nodes, Node{Position: world.Vec3{X: float64(i * i), Z: float64(10 * i)}})
	}
	s := NewSmoother(4, 30)
	pts, ok := s.Update(nodes)
	if !ok {
		t.Fatal("expected publish")
	}
	if !near(pts[0], nodes[5].Position, 1e-9) {
		t.Errorf("curve starts at %+v, want node 5 %+v", pts[0], nodes[5].Position)
	}
	if !near(pts[len(pts)-1], nodes[8].Position, 1e-9) {
		t.Errorf("curve ends at %+v, want node 8 %+v", pts[len(pts)-1], nodes[8].Position)
	}
	for i, n := range nodes {
		if n.Position.X != float64(i*i) {
			t.Fatal("smoother must not modify nodes")
		}
	}
}

func TestSmootherReplacesPublishedCurve(t *testing.T) {
	s := NewSmoother(5, 10)
	first, _ := s.Update(nodesAt(world.Vec3{}, world.Vec3{Z: 10}))
	second, _ := s.Update(nodesAt(world.Vec3{X: 5}, world.Vec3{X: 5, Z: 10}))
	if first[0] == second[0] {
		t.Error("second update should publish a fresh curve")
	}
	if &s.Published()[0] != &second[0] {
		t.Error("Published should return the latest curve")
	}
}

func TestCurveOnStraightLine(t *testing.T) {
	curve, _ := NewCurve([]world.Vec3{{Z: 0}, {Z: 10}, {Z: 20}})
	for _, p := range curve.Sample(20) {
		if math.Abs(p.X) > 1e-9 || math.Abs(p.Y) > 1e-9 {
			t.Fatalf("point %+v left the line", p)
		}
		if p.Z < -1e-9 || p.Z > 20+1e-9 {
			t.Fatalf("point %+v overshoots the segment", p)
		}
	}
}

func TestCurveWithRepeatedPoints(t *testing.T) {
	curve, _ := NewCurve([]world.Vec3{{X: 1}, {X: 1}, {X: 4}})
	for _, p := range curve.Sample(10) {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z) {
			t.Fatalf("NaN on degenerate knots: %+v", p)
		}
	}
}
