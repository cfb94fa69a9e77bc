package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samdwyer/terrainwalk/internal/world"
)

// fakeBackend records every call it receives.
type fakeBackend struct {
	created   int
	disposed  int
	live      map[world.TileCoordinate]bool
	publishes [][]world.Vec3
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{live: make(map[world.TileCoordinate]bool)}
}

func (b *fakeBackend) OnTileCreated(tile *world.Tile) any {
	b.created++
	b.live[tile.Coord] = true
	return tile.Coord
}

func (b *fakeBackend) OnTileDisposed(handle any) {
	b.disposed++
	delete(b.live, handle.(world.TileCoordinate))
}

func (b *fakeBackend) PublishPath(curve []world.Vec3) {
	b.publishes = append(b.publishes, curve)
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Seed = 12345
	return cfg
}

func TestNewBootstrapsTerrainAndPath(t *testing.T) {
	backend := newFakeBackend()
	s, err := New(context.Background(), testConfig(), backend, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if s.Store().Len() != 9 {
		t.Errorf("resident tiles = %d, want 9", s.Store().Len())
	}
	if len(backend.live) != s.Store().Len() {
		t.Errorf("backend holds %d tiles, store %d", len(backend.live), s.Store().Len())
	}
	if s.Path().Len() != 5 {
		t.Errorf("path length = %d, want 5", s.Path().Len())
	}
	if len(s.Curve()) != 51 {
		t.Errorf("curve has %d points, want 51", len(s.Curve()))
	}
	if len(backend.publishes) != 1 {
		t.Errorf("published %d curves during bootstrap, want 1", len(backend.publishes))
	}
}

func TestFiveSegmentsFromOriginTile(t *testing.T) {
	cfg := testConfig()
	cfg.StartTile = world.TileCoordinate{X: 0, Y: 0}
	cfg.TileWidth = 80

	s, err := New(context.Background(), cfg, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if s.Path().Len() != 5 {
		t.Fatalf("path length = %d, want 5", s.Path().Len())
	}
	last, _ := s.Path().Last()
	if s.ActiveTile() != last.Sample.Tile {
		t.Errorf("active tile %v, want tile of 5th node %v", s.ActiveTile(), last.Sample.Tile)
	}
	if s.Store().Len() != 9 {
		t.Errorf("resident tiles = %d, want 9", s.Store().Len())
	}
}

func TestTickIsThrottled(t *testing.T) {
	s, err := New(context.Background(), testConfig(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := s.Tick(ctx, 4*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if s.Steps() != 0 {
		t.Fatalf("steps = %d after 4ms, want 0", s.Steps())
	}
	if err := s.Tick(ctx, 6*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if s.Steps() != 1 {
		t.Fatalf("steps = %d after 10ms, want 1", s.Steps())
	}
	if err := s.Tick(ctx, time.Second); err != nil {
		t.Fatal(err)
	}
	if s.Steps() != 2 {
		t.Fatalf("a long frame must run one step, got %d", s.Steps())
	}
}

func TestFollowerWrapAdvancesPath(t *testing.T) {
	backend := newFakeBackend()
	cfg := testConfig()
	s, err := New(context.Background(), cfg, backend, nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	stretch := cfg.CursorEnd - cfg.CursorStart + 1

	for i := 0; i < stretch-1; i++ {
		if err := s.Step(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if s.Nodes() != uint64(cfg.InitialSegments) {
		t.Fatalf("path advanced before the follower wrapped")
	}
	head := s.Path().Nodes()[0]

	if err := s.Step(ctx); err != nil {
		t.Fatal(err)
	}
	if s.Nodes() != uint64(cfg.InitialSegments+1) {
		t.Errorf("nodes = %d, want %d", s.Nodes(), cfg.InitialSegments+1)
	}
	if s.Path().Len() != cfg.SmoothingWindowSize {
		t.Errorf("path length = %d, want %d", s.Path().Len(), cfg.SmoothingWindowSize)
	}
	if s.Path().Nodes()[0] == head {
		t.Error("head node should have been dropped")
	}
	if len(backend.publishes) != 2 {
		t.Errorf("publishes = %d, want 2", len(backend.publishes))
	}
}

func TestLongRunKeepsResidencyInvariant(t *testing.T) {
	backend := newFakeBackend()
	s, err := New(context.Background(), testConfig(), backend, nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	for i := 0; i < 1500; i++ {
		if err := s.Step(ctx); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if s.Store().Len() != 9 {
			t.Fatalf("step %d: %d resident tiles", i, s.Store().Len())
		}
		last, _ := s.Path().Last()
		if last.Sample.Tile != s.ActiveTile() {
			t.Fatalf("step %d: head in %v, active %v", i, last.Sample.Tile, s.ActiveTile())
		}
	}
	if backend.created-backend.disposed != 9 {
		t.Errorf("created %d disposed %d, want 9 live", backend.created, backend.disposed)
	}
	if s.Follower().Position == (world.Vec3{}) {
		t.Error("follower never moved")
	}
}

func TestProbeRecenterFollowsCharacter(t *testing.T) {
	cfg := testConfig()
	cfg.ProbeRecenter = true
	s, err := New(context.Background(), cfg, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	for i := 0; i < 1500; i++ {
		if err := s.Step(ctx); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		pos := s.Follower().Position
		if _, ok := s.GroundHeight(pos.X, pos.Z); !ok {
			t.Fatalf("step %d: follower left resident ground at %+v", i, pos)
		}
		if under := s.Window().TileAtWorld(pos.X, pos.Z); under != s.ActiveTile() {
			t.Fatalf("step %d: follower over %v, active %v", i, under, s.ActiveTile())
		}
	}
}

func TestSameSeedSameRun(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(ctx, testConfig(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 200; i++ {
		if err := a.Step(ctx); err != nil {
			t.Fatal(err)
		}
		if err := b.Step(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if a.Follower().Position != b.Follower().Position {
		t.Errorf("runs diverged: %+v != %+v", a.Follower().Position, b.Follower().Position)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"tile width", func(c *Config) { c.TileWidth = 0 }},
		{"ring", func(c *Config) { c.RetentionRingWidth = 0 }},
		{"max height", func(c *Config) { c.MaxHeight = 0 }},
		{"frequency", func(c *Config) { c.NoiseFrequency = -1 }},
		{"min distance", func(c *Config) { c.MinSampleDistance = -1 }},
		{"band", func(c *Config) { c.MaxSampleDistance = c.MinSampleDistance }},
		{"coverage", func(c *Config) { c.TileWidth = 4 }},
		{"tolerance", func(c *Config) { c.DirectionalToleranceRadians = -0.1 }},
		{"window", func(c *Config) { c.SmoothingWindowSize = 1 }},
		{"samples", func(c *Config) { c.CurveSampleCount = 0 }},
		{"segments", func(c *Config) { c.InitialSegments = 1 }},
		{"cursor", func(c *Config) { c.CursorEnd = c.CurveSampleCount }},
		{"interval", func(c *Config) { c.StepInterval = -time.Millisecond }},
		{"zero interval", func(c *Config) { c.StepInterval = 0 }},
	}

	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}

	if _, err := New(context.Background(), Config{}, nil, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("New with zero config = %v, want ErrInvalidConfig", err)
	}
}

func TestBackendsFanOut(t *testing.T) {
	a, b := newFakeBackend(), newFakeBackend()
	fan := Backends{a, b}
	tile := &world.Tile{Coord: world.TileCoordinate{X: 1, Y: 2}}

	h := fan.OnTileCreated(tile)
	fan.PublishPath([]world.Vec3{{}, {X: 1}})
	fan.OnTileDisposed(h)

	for i, backend := range []*fakeBackend{a, b} {
		if backend.created != 1 || backend.disposed != 1 || len(backend.publishes) != 1 {
			t.Errorf("backend %d: %+v", i, backend)
		}
		if len(backend.live) != 0 {
			t.Errorf("backend %d still holds tiles", i)
		}
	}
}

func TestFixedStep(t *testing.T) {
	f := NewFixedStep(10 * time.Millisecond)
	if f.Advance(9 * time.Millisecond) {
		t.Error("9ms should not step")
	}
	if !f.Advance(2 * time.Millisecond) {
		t.Error("11ms should step")
	}
	// 1ms carried over.
	if !f.Advance(9 * time.Millisecond) {
		t.Error("carry-over should complete the next step")
	}
	if !f.Advance(55 * time.Millisecond) {
		t.Error("long frame should step")
	}
	if !f.Advance(5 * time.Millisecond) {
		t.Error("remainder of the long frame should be kept modulo the interval")
	}
	if f.Advance(0) {
		t.Error("backlog beyond one interval must be dropped")
	}

	zero := NewFixedStep(0)
	if !zero.Advance(0) || !zero.Advance(0) {
		t.Error("zero interval steps on every call")
	}
}
