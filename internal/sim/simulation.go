package sim

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/terrainwalk/internal/entity"
	"github.com/samdwyer/terrainwalk/internal/path"
	"github.com/samdwyer/terrainwalk/internal/telemetry"
	"github.com/samdwyer/terrainwalk/internal/world"
)

// Simulation holds all mutable state of one run. It is driven from a single
// goroutine through Tick or Step.
type Simulation struct {
	cfg     Config
	logger  *log.Logger
	backend Backend

	field    *world.HeightField
	store    *world.Store
	window   *world.Window
	walker   *path.Walker
	smoother *path.Smoother
	follower *entity.Follower
	camera   *entity.Camera
	clock    *FixedStep

	curve []world.Vec3
	steps uint64
	nodes uint64
}

// New builds the terrain around cfg.StartTile, walks the initial path
// segments and publishes the first curve. backend and logger may be nil.
func New(ctx context.Context, cfg Config, backend Backend, logger *log.Logger) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if backend == nil {
		backend = NopBackend{}
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[sim] ", log.LstdFlags)
	}

	tracer := telemetry.Tracer("sim")
	ctx, span := tracer.Start(ctx, "sim.bootstrap")
	defer span.End()

	field := world.NewHeightField(cfg.Seed, cfg.NoiseFrequency, cfg.MaxHeight)
	store := world.NewStore(cfg.TileWidth, field, backend, logger)
	window := world.NewWindow(store, cfg.RetentionRingWidth)
	window.Recenter(ctx, cfg.StartTile)

	walker, err := path.NewWalker(cfg.walkerConfig(), window, world.SampleRef{Tile: cfg.StartTile, Index: 0})
	if err != nil {
		return nil, fmt.Errorf("start walker: %w", err)
	}

	s := &Simulation{
		cfg:      cfg,
		logger:   logger,
		backend:  backend,
		field:    field,
		store:    store,
		window:   window,
		walker:   walker,
		smoother: path.NewSmoother(cfg.SmoothingWindowSize, cfg.CurveSampleCount),
		follower: entity.NewFollower(cfg.CursorStart, cfg.CursorEnd),
		camera:   entity.NewCamera(),
		clock:    NewFixedStep(cfg.StepInterval),
	}

	for i := 0; i < cfg.InitialSegments; i++ {
		if _, err := s.walker.Advance(ctx); err != nil {
			return nil, fmt.Errorf("initial segment %d: %w", i, err)
		}
		s.nodes++
	}
	s.trimPath()
	s.publish()

	span.SetAttributes(
		attribute.Int64("sim.seed", cfg.Seed),
		attribute.Int("sim.tile_width", cfg.TileWidth),
		attribute.Int("tiles.resident", store.Len()),
		attribute.Int("path.length", walker.Path().Len()),
	)
	logger.Printf("seed %d: %d tiles resident, %d path nodes", cfg.Seed, store.Len(), walker.Path().Len())
	return s, nil
}

// Tick feeds elapsed wall time into the step gate and runs at most one step.
func (s *Simulation) Tick(ctx context.Context, elapsed time.Duration) error {
	if !s.clock.Advance(elapsed) {
		return nil
	}
	return s.Step(ctx)
}

// Step moves the follower one curve sample. When the follower wraps, the
// oldest node is dropped, one node is walked and the curve is refit.
func (s *Simulation) Step(ctx context.Context) error {
	s.steps++
	if s.follower.Step(s.curve) {
		if err := s.Advance(ctx); err != nil {
			return err
		}
	}
	s.camera.Update(s.follower)

	if s.cfg.ProbeRecenter {
		s.probe(ctx)
	}
	return nil
}

// Advance walks one path node and republishes the curve.
func (s *Simulation) Advance(ctx context.Context) error {
	step, err := s.walker.Advance(ctx)
	if err != nil {
		return fmt.Errorf("advance path at node %d: %w", s.nodes, err)
	}
	s.nodes++
	if step.Recentered && step.Recenter.Created > 0 {
		s.logger.Printf("active tile %s: +%d/-%d tiles", step.Chosen.Ref.Tile, step.Recenter.Created, step.Recenter.Evicted)
	}
	s.trimPath()
	s.publish()
	return nil
}

// probe recenters the window on the tile under the follower once it stands
// on resident ground outside the active tile.
func (s *Simulation) probe(ctx context.Context) {
	pos := s.follower.Position
	if _, ok := s.window.QueryGroundHeight(pos.X, pos.Z); !ok {
		return
	}
	under := s.window.TileAtWorld(pos.X, pos.Z)
	if active, ok := s.window.ActiveTile(); ok && active == under {
		return
	}
	s.window.Recenter(ctx, under)
}

// GroundHeight probes the resident terrain at a world position.
func (s *Simulation) GroundHeight(x, z float64) (float64, bool) {
	return s.window.QueryGroundHeight(x, z)
}

func (s *Simulation) trimPath() {
	p := s.walker.Path()
	for p.Len() > s.cfg.SmoothingWindowSize {
		p.PopFront()
	}
}

func (s *Simulation) publish() {
	curve, ok := s.smoother.Update(s.walker.Path().Nodes())
	if !ok {
		return
	}
	s.curve = curve
	s.backend.PublishPath(curve)
}

// Config returns the configuration the simulation was built with.
func (s *Simulation) Config() Config { return s.cfg }

// Field returns the height field.
func (s *Simulation) Field() *world.HeightField { return s.field }

// Store returns the resident tiles.
func (s *Simulation) Store() *world.Store { return s.store }

// Window returns the tile window controller.
func (s *Simulation) Window() *world.Window { return s.window }

// Walker returns the path walker.
func (s *Simulation) Walker() *path.Walker { return s.walker }

// Path returns the current path window.
func (s *Simulation) Path() *path.Path { return s.walker.Path() }

// Curve returns the last published curve.
func (s *Simulation) Curve() []world.Vec3 { return s.curve }

// Follower returns the character riding the curve.
func (s *Simulation) Follower() *entity.Follower { return s.follower }

// Camera returns the chase camera.
func (s *Simulation) Camera() *entity.Camera { return s.camera }

// ActiveTile returns the tile the window is centred on.
func (s *Simulation) ActiveTile() world.TileCoordinate {
	active, _ := s.window.ActiveTile()
	return active
}

// Steps returns how many steps have run.
func (s *Simulation) Steps() uint64 { return s.steps }

// Nodes returns how many path nodes have been walked in total.
func (s *Simulation) Nodes() uint64 { return s.nodes }
