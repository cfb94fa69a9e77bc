package path

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/terrainwalk/internal/telemetry"
	"github.com/samdwyer/terrainwalk/internal/world"
)

// ErrNoCandidates means no resident sample lies inside the distance band
// around the path head. Tile residency must always cover the band, so this
// indicates a misconfigured window.
var ErrNoCandidates = errors.New("path: no candidate samples in range")

const (
	// DefaultMinDistance is the exclusive lower bound of the sampling band.
	DefaultMinDistance = 7.0
	// DefaultMaxDistance is the exclusive upper bound of the sampling band.
	DefaultMaxDistance = 15.0
	// DefaultTolerance is how far a candidate's forward lean may differ from
	// the current bias.
	DefaultTolerance = math.Pi / 2.5
	// DefaultVerticalOffset lifts path nodes above the terrain.
	DefaultVerticalOffset = 5.0
)

// Config tunes the walker.
type Config struct {
	MinDistance    float64
	MaxDistance    float64
	Tolerance      float64
	VerticalOffset float64

	// ManualRecenter leaves tile recentering to the caller, for example a
	// ground probe under the character.
	ManualRecenter bool
}

// DefaultConfig returns the standard walker settings.
func DefaultConfig() Config {
	return Config{
		MinDistance:    DefaultMinDistance,
		MaxDistance:    DefaultMaxDistance,
		Tolerance:      DefaultTolerance,
		VerticalOffset: DefaultVerticalOffset,
	}
}

// Candidate is a sample considered for the next step.
type Candidate struct {
	Ref world.SampleRef
	Pos world.Vec3
}

// Step describes one advance of the walker.
type Step struct {
	Node       Node
	Chosen     Candidate
	Candidates int  // samples inside the distance band
	Filtered   int  // candidates surviving the directional filter
	Fallback   bool // the directional filter emptied the set
	Recentered bool
	Recenter   world.RecenterStats
}

// Walker greedily extends a path one node at a time, preferring low ground
// roughly ahead of the current heading.
type Walker struct {
	cfg    Config
	window *world.Window
	path   Path

	active   Candidate
	previous Candidate
	hasPrev  bool
}

// NewWalker starts a walker at the given resident sample.
func NewWalker(cfg Config, window *world.Window, start world.SampleRef) (*Walker, error) {
	sample, ok := window.Store().Sample(start)
	if !ok {
		return nil, fmt.Errorf("start sample %v of tile %s is not resident", start.Index, start.Tile)
	}
	return &Walker{
		cfg:    cfg,
		window: window,
		active: Candidate{Ref: start, Pos: sample.World},
	}, nil
}

// Path returns the walked path.
func (w *Walker) Path() *Path { return &w.path }

// Active returns the current path head.
func (w *Walker) Active() Candidate { return w.active }

// Previous returns the position one step back, if any.
func (w *Walker) Previous() (Candidate, bool) { return w.previous, w.hasPrev }

// Advance extends the path by one node.
func (w *Walker) Advance(ctx context.Context) (Step, error) {
	tracer := telemetry.Tracer("path")
	ctx, span := tracer.Start(ctx, "path.advance")
	defer span.End()

	candidates := w.gather()
	if len(candidates) == 0 {
		return Step{}, fmt.Errorf("advance from (%.2f, %.2f, %.2f): %w",
			w.active.Pos.X, w.active.Pos.Y, w.active.Pos.Z, ErrNoCandidates)
	}

	bias, hasBias := w.bias()
	ranked := filterByDirection(candidates, w.active.Pos, bias, hasBias, w.cfg.Tolerance)
	step := Step{
		Candidates: len(candidates),
		Filtered:   len(ranked),
	}
	if len(ranked) == 0 {
		ranked = candidates[len(candidates)/2:]
		step.Fallback = true
	}

	// Lowest ground first; equal heights keep scan order.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Pos.Y < ranked[j].Pos.Y
	})

	chosen := ranked[0]
	for _, c := range ranked {
		if c.Pos != w.active.Pos {
			chosen = c
			break
		}
	}

	w.previous = w.active
	w.hasPrev = true
	w.active = chosen

	node := Node{
		Position: world.Vec3{X: chosen.Pos.X, Y: chosen.Pos.Y + w.cfg.VerticalOffset, Z: chosen.Pos.Z},
		Sample:   chosen.Ref,
	}
	w.path.Append(node)
	step.Node = node
	step.Chosen = chosen

	if active, ok := w.window.ActiveTile(); !w.cfg.ManualRecenter && (!ok || active != chosen.Ref.Tile) {
		step.Recenter = w.window.Recenter(ctx, chosen.Ref.Tile)
		step.Recentered = true
	}

	span.SetAttributes(
		attribute.Int("path.candidates", step.Candidates),
		attribute.Int("path.filtered", step.Filtered),
		attribute.Bool("path.fallback", step.Fallback),
		attribute.Bool("path.recentered", step.Recentered),
		attribute.Int("path.length", w.path.Len()),
	)
	return step, nil
}

// gather scans every resident sample in tile creation order and keeps those
// strictly inside the distance band. The head and the previous position are
// excluded by identity; samples that merely share their coordinates are not.
func (w *Walker) gather() []Candidate {
	var out []Candidate
	for _, tile := range w.window.Store().Tiles() {
		for i := range tile.Samples {
			ref := tile.Ref(i)
			if ref == w.active.Ref || (w.hasPrev && ref == w.previous.Ref) {
				continue
			}
			pos := tile.Samples[i].World
			d := w.active.Pos.Distance(pos)
			if d > w.cfg.MinDistance && d < w.cfg.MaxDistance {
				out = append(out, Candidate{Ref: ref, Pos: pos})
			}
		}
	}
	return out
}

// bias is the forward lean of the last step. It is not normalised, so it
// grows with step length.
func (w *Walker) bias() (float64, bool) {
	if !w.hasPrev {
		return 0, false
	}
	return world.Forward.Dot(w.active.Pos.Sub(w.previous.Pos)), true
}

// filterByDirection keeps candidates whose forward lean relative to head is
// within tolerance of bias. Without a bias every candidate passes.
func filterByDirection(candidates []Candidate, head world.Vec3, bias float64, hasBias bool, tolerance float64) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if !hasBias {
			out = append(out, c)
			continue
		}
		lean := world.Forward.Dot(c.Pos.Sub(head))
		if lean > bias-tolerance && lean < bias+tolerance {
			out = append(out, c)
		}
	}
	return out
}
