//go:build ebiten

package gui

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/samdwyer/terrainwalk/internal/sim"
)

// Game adapts a simulation to the ebiten.Game interface.
type Game struct {
	ctx     context.Context
	sim     *sim.Simulation
	painter *Painter
	frame   *image.RGBA

	paused   bool
	tickOnce bool
	last     time.Time
}

// Run opens a window of width x height lattice points, each drawn scale
// pixels wide, and drives s until the window closes.
func Run(ctx context.Context, s *sim.Simulation, painter *Painter, width, height, scale int) error {
	g := &Game{
		ctx:     ctx,
		sim:     s,
		painter: painter,
		frame:   image.NewRGBA(image.Rect(0, 0, width, height)),
		last:    time.Now(),
	}
	ebiten.SetWindowSize(width*scale, height*scale)
	ebiten.SetWindowTitle("terrainwalk")
	tps := ebiten.DefaultTPS
	if iv := s.Config().StepInterval; iv > 0 {
		tps = int(time.Second / iv)
	}
	ebiten.SetTPS(tps)

	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// Update handles input and advances the simulation.
func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}

	now := time.Now()
	elapsed := now.Sub(g.last)
	g.last = now

	switch {
	case g.tickOnce:
		g.tickOnce = false
		return g.sim.Step(g.ctx)
	case !g.paused:
		return g.sim.Tick(g.ctx, elapsed)
	}
	return nil
}

// Draw renders the terrain around the follower.
func (g *Game) Draw(screen *ebiten.Image) {
	g.painter.Paint(g.frame, g.sim.Follower().Position)
	screen.WritePixels(g.frame.Pix)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	b := g.frame.Bounds()
	return b.Dx(), b.Dy()
}
