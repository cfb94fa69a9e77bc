package ui

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/terrainwalk/internal/palette"
	"github.com/samdwyer/terrainwalk/internal/world"
)

// Cell is one character of a composed frame.
type Cell struct {
	Rune  rune
	Style tcell.Style
}

// Frame is a composed screen, row-major.
type Frame struct {
	Width  int
	Height int
	Cells  []Cell
}

// At returns the cell at column x, row y.
func (f Frame) At(x, y int) Cell {
	return f.Cells[y*f.Width+x]
}

func (f Frame) set(x, y int, c Cell) {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return
	}
	f.Cells[y*f.Width+x] = c
}

// Status is the heads-up line drawn above the map.
type Status struct {
	Seed    int64
	Active  world.TileCoordinate
	Tiles   int
	Nodes   uint64
	Steps   uint64
	Yaw     float64
	Paused  bool
	Message string
}

// tileLayer is the render handle of one resident tile: its samples already
// bucketed into palette bands.
type tileLayer struct {
	tile  *world.Tile
	bands []int
}

// Renderer draws the terrain around the follower as a top-down height map.
// It is a simulation backend: tiles are bucketed into bands when they stream
// in and dropped when they are disposed.
type Renderer struct {
	screen  *Screen
	palette *palette.Palette

	layers []*tileLayer
	curve  []world.Vec3

	background tcell.Style
	bandStyles []tcell.Style
	pathStyle  tcell.Style
	focusStyle tcell.Style
	hudStyle   tcell.Style
}

// NewRenderer creates a renderer for screen. screen may be nil when only
// Compose is used.
func NewRenderer(screen *Screen, p *palette.Palette) *Renderer {
	bg := palette.TerminalColor(p.Background)
	r := &Renderer{
		screen:     screen,
		palette:    p,
		background: tcell.StyleDefault.Background(bg),
		pathStyle:  tcell.StyleDefault.Background(bg).Foreground(palette.TerminalColor(p.Path)).Bold(true),
		focusStyle: tcell.StyleDefault.Background(bg).Foreground(palette.TerminalColor(p.Follower)).Bold(true),
		hudStyle:   tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite),
	}
	for _, b := range p.Bands {
		r.bandStyles = append(r.bandStyles, tcell.StyleDefault.Background(bg).Foreground(palette.TerminalColor(b.Color)))
	}
	return r
}

func (r *Renderer) OnTileCreated(tile *world.Tile) any {
	layer := &tileLayer{tile: tile, bands: make([]int, len(tile.Samples))}
	for i, s := range tile.Samples {
		layer.bands[i] = r.palette.BandFor(s.Height)
	}
	r.layers = append(r.layers, layer)
	return layer
}

func (r *Renderer) OnTileDisposed(handle any) {
	layer, ok := handle.(*tileLayer)
	if !ok {
		return
	}
	for i, l := range r.layers {
		if l == layer {
			r.layers = append(r.layers[:i], r.layers[i+1:]...)
			return
		}
	}
}

func (r *Renderer) PublishPath(curve []world.Vec3) {
	r.curve = append(r.curve[:0], curve...)
}

// Layers returns the number of tiles the renderer currently holds.
func (r *Renderer) Layers() int { return len(r.layers) }

// band returns the band of lattice point (x, z), or false if no resident
// tile covers it.
func (r *Renderer) band(x, z int) (int, bool) {
	for _, l := range r.layers {
		if i := l.tile.IndexOf(x, z); i >= 0 {
			return l.bands[i], true
		}
	}
	return 0, false
}

// Compose builds a width x height frame centred on focus. Row 0 carries the
// status line; world +Z points up the screen and each cell is one lattice
// step.
func (r *Renderer) Compose(width, height int, focus world.Vec3, status Status) Frame {
	f := Frame{Width: width, Height: height, Cells: make([]Cell, width*height)}
	if width <= 0 || height <= 0 {
		return f
	}

	cx, cy := width/2, (height+1)/2
	fx, fz := world.FromWorld(focus.X, focus.Z)

	for row := 1; row < height; row++ {
		for col := 0; col < width; col++ {
			lx := fx + col - cx
			lz := fz + cy - row
			b, ok := r.band(lx, lz)
			if !ok {
				f.set(col, row, Cell{Rune: ' ', Style: r.background})
				continue
			}
			f.set(col, row, Cell{Rune: r.palette.Bands[b].Glyph, Style: r.bandStyles[b]})
		}
	}

	for _, p := range r.curve {
		lx, lz := world.FromWorld(p.X, p.Z)
		row := cy - (lz - fz)
		if row < 1 {
			continue
		}
		f.set(cx+lx-fx, row, Cell{Rune: '*', Style: r.pathStyle})
	}
	f.set(cx, cy, Cell{Rune: '@', Style: r.focusStyle})

	hud := []rune(status.line())
	for i := 0; i < width; i++ {
		ch := ' '
		if i < len(hud) {
			ch = hud[i]
		}
		f.set(i, 0, Cell{Rune: ch, Style: r.hudStyle})
	}
	return f
}

func (s Status) line() string {
	line := fmt.Sprintf("seed %d  tile %s  tiles %d  nodes %d  steps %d  %c",
		s.Seed, s.Active, s.Tiles, s.Nodes, s.Steps, Heading(s.Yaw))
	if s.Paused {
		line += "  [paused]"
	}
	if s.Message != "" {
		line += "  " + s.Message
	}
	return line
}

// Render composes a frame for the current screen size and shows it.
func (r *Renderer) Render(focus world.Vec3, status Status) {
	width, height := r.screen.Size()
	frame := r.Compose(width, height, focus, status)
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			c := frame.At(x, y)
			r.screen.SetContent(x, y, c.Rune, c.Style)
		}
	}
	r.screen.Show()
}

// Heading returns the compass glyph for a yaw in radians, measured from +Z.
func Heading(yaw float64) rune {
	arrows := []rune{'↑', '↗', '→', '↘', '↓', '↙', '←', '↖'}
	octant := int(math.Round(yaw/(math.Pi/4))) % 8
	if octant < 0 {
		octant += 8
	}
	return arrows[octant]
}
