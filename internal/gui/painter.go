// Package gui is the optional pixel renderer. The window itself needs the
// ebiten build tag; Painter is always available.
package gui

import (
	"errors"
	"image"
	"image/color"

	"github.com/samdwyer/terrainwalk/internal/palette"
	"github.com/samdwyer/terrainwalk/internal/world"
)

// ErrUnavailable is returned by Run in builds without the ebiten tag.
var ErrUnavailable = errors.New("gui requires building with the 'ebiten' tag")

type tileLayer struct {
	tile   *world.Tile
	colors []color.RGBA
}

// Painter is a simulation backend that rasterises the resident terrain one
// pixel per lattice point.
type Painter struct {
	palette *palette.Palette
	layers  []*tileLayer
	curve   []world.Vec3
}

func NewPainter(p *palette.Palette) *Painter {
	return &Painter{palette: p}
}

func (p *Painter) OnTileCreated(tile *world.Tile) any {
	layer := &tileLayer{tile: tile, colors: make([]color.RGBA, len(tile.Samples))}
	for i, s := range tile.Samples {
		layer.colors[i] = p.palette.At(s.Height).Color
	}
	p.layers = append(p.layers, layer)
	return layer
}

func (p *Painter) OnTileDisposed(handle any) {
	layer, ok := handle.(*tileLayer)
	if !ok {
		return
	}
	for i, l := range p.layers {
		if l == layer {
			p.layers = append(p.layers[:i], p.layers[i+1:]...)
			return
		}
	}
}

func (p *Painter) PublishPath(curve []world.Vec3) {
	p.curve = append(p.curve[:0], curve...)
}

func (p *Painter) colorAt(x, z int) color.RGBA {
	for _, l := range p.layers {
		if i := l.tile.IndexOf(x, z); i >= 0 {
			return l.colors[i]
		}
	}
	return p.palette.Background
}

// Paint draws the terrain centred on focus into img, with +Z up.
func (p *Painter) Paint(img *image.RGBA, focus world.Vec3) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	cx, cy := w/2, h/2
	fx, fz := world.FromWorld(focus.X, focus.Z)

	for py := 0; py < h; py++ {
		for px := 0; px < w; px++ {
			img.SetRGBA(b.Min.X+px, b.Min.Y+py, p.colorAt(fx+px-cx, fz+cy-py))
		}
	}

	for _, pt := range p.curve {
		lx, lz := world.FromWorld(pt.X, pt.Z)
		img.SetRGBA(b.Min.X+cx+lx-fx, b.Min.Y+cy-(lz-fz), p.palette.Path)
	}

	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			img.SetRGBA(b.Min.X+cx+dx, b.Min.Y+cy+dy, p.palette.Follower)
		}
	}
}
