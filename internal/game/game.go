package game

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/terrainwalk/internal/sim"
	"github.com/samdwyer/terrainwalk/internal/telemetry"
	"github.com/samdwyer/terrainwalk/internal/ui"
)

// DefaultFrameInterval is how often the screen is redrawn.
const DefaultFrameInterval = 33 * time.Millisecond

// Game drives a simulation from terminal time and input.
type Game struct {
	screen   *ui.Screen
	renderer *ui.Renderer
	sim      *sim.Simulation
	logger   *log.Logger

	state   State
	running bool
	message string
	err     error

	frameInterval time.Duration
}

// New creates a game around an already bootstrapped simulation. The
// renderer must be registered as one of the simulation's backends.
func New(screen *ui.Screen, renderer *ui.Renderer, s *sim.Simulation, logger *log.Logger) *Game {
	if logger == nil {
		logger = log.New(log.Writer(), "[game] ", log.LstdFlags)
	}
	return &Game{
		screen:        screen,
		renderer:      renderer,
		sim:           s,
		logger:        logger,
		state:         StateRunning,
		running:       true,
		frameInterval: DefaultFrameInterval,
	}
}

// State returns the current run state.
func (g *Game) State() State { return g.state }

// Running reports whether the loop should keep going.
func (g *Game) Running() bool { return g.running }

// Run executes the main loop until the user quits, ctx is cancelled or the
// simulation fails. Terminal events are read on a separate goroutine and
// handed over a channel; the simulation is only touched here.
func (g *Game) Run(ctx context.Context) error {
	tracer := telemetry.Tracer("game")
	ctx, span := tracer.Start(ctx, "game.run")
	defer span.End()

	events := make(chan tcell.Event, 16)
	go func() {
		defer close(events)
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	steps := time.NewTicker(g.sim.Config().StepInterval)
	defer steps.Stop()
	frames := time.NewTicker(g.frameInterval)
	defer frames.Stop()

	last := time.Now()
	g.render()

	for g.running {
		select {
		case <-ctx.Done():
			g.running = false
		case ev, ok := <-events:
			if !ok {
				g.running = false
				break
			}
			g.handleEvent(ctx, ev)
		case now := <-steps.C:
			g.update(ctx, now.Sub(last))
			last = now
		case <-frames.C:
			g.render()
		}
	}

	span.SetAttributes(
		attribute.Int64("sim.steps", int64(g.sim.Steps())),
		attribute.Int64("sim.nodes", int64(g.sim.Nodes())),
	)
	g.screen.Close()
	return g.err
}

// update feeds elapsed time to the simulation while running.
func (g *Game) update(ctx context.Context, elapsed time.Duration) {
	if g.state != StateRunning {
		return
	}
	if err := g.sim.Tick(ctx, elapsed); err != nil {
		g.fail(err)
	}
}

func (g *Game) fail(err error) {
	g.logger.Printf("simulation stopped: %v", err)
	g.err = err
	g.running = false
}

func (g *Game) handleEvent(ctx context.Context, ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		g.handleKeyEvent(ctx, ev)
	case *tcell.EventResize:
		g.screen.Sync()
	}
}

// handleKeyEvent processes keyboard input.
func (g *Game) handleKeyEvent(ctx context.Context, ev *tcell.EventKey) {
	g.handleKey(ctx, ev.Key(), ev.Rune())
}

func (g *Game) handleKey(ctx context.Context, k tcell.Key, r rune) {
	switch k {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		g.running = false

	case tcell.KeyRune:
		switch r {
		case 'q', 'Q':
			g.running = false
		case ' ':
			g.togglePause()
		case 'n', 'N':
			g.singleStep(ctx)
		}
	}
}

func (g *Game) togglePause() {
	if g.state == StateRunning {
		g.state = StatePaused
		g.message = "space resumes, n steps"
		return
	}
	g.state = StateRunning
	g.message = ""
}

// singleStep runs exactly one simulation step, pausing first if needed.
func (g *Game) singleStep(ctx context.Context) {
	g.state = StatePaused
	if err := g.sim.Step(ctx); err != nil {
		g.fail(err)
		return
	}
	g.message = fmt.Sprintf("stepped to %d", g.sim.Steps())
}

// Status returns the heads-up line for the current state.
func (g *Game) Status() ui.Status {
	return ui.Status{
		Seed:    g.sim.Config().Seed,
		Active:  g.sim.ActiveTile(),
		Tiles:   g.sim.Store().Len(),
		Nodes:   g.sim.Nodes(),
		Steps:   g.sim.Steps(),
		Yaw:     g.sim.Follower().Yaw(),
		Paused:  g.state == StatePaused,
		Message: g.message,
	}
}

func (g *Game) render() {
	g.renderer.Render(g.sim.Follower().Position, g.Status())
}
