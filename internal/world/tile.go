// Package world provides terrain generation and tile streaming.
package world

import (
	"encoding/json"
	"fmt"
)

// TileCoordinate identifies a tile by its origin corner on the lattice.
type TileCoordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String returns the canonical form, e.g. {"x":40,"y":-40}.
func (c TileCoordinate) String() string {
	return fmt.Sprintf(`{"x":%d,"y":%d}`, c.X, c.Y)
}

// Offset returns the coordinate shifted by (dx, dy) lattice units.
func (c TileCoordinate) Offset(dx, dy int) TileCoordinate {
	return TileCoordinate{X: c.X + dx, Y: c.Y + dy}
}

// ParseTileCoordinate parses the canonical string form of a coordinate.
func ParseTileCoordinate(s string) (TileCoordinate, error) {
	var raw struct {
		X *int `json:"x"`
		Y *int `json:"y"`
	}
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return TileCoordinate{}, fmt.Errorf("parse tile coordinate %q: %w", s, err)
	}
	if raw.X == nil || raw.Y == nil {
		return TileCoordinate{}, fmt.Errorf("parse tile coordinate %q: missing x or y", s)
	}
	return TileCoordinate{X: *raw.X, Y: *raw.Y}, nil
}

// SamplePoint is one lattice position with its height and world position.
type SamplePoint struct {
	LatticeX int
	LatticeZ int
	Height   float64
	World    Vec3
}

// SampleRef identifies a sample by the tile that generated it and its
// index within that tile.
type SampleRef struct {
	Tile  TileCoordinate
	Index int
}

// Tile is a square patch of generated sample points. Tiles never change
// after generation.
type Tile struct {
	Coord   TileCoordinate
	Width   int
	Samples []SamplePoint
}

// SampleCount returns the number of samples a tile of the given width holds.
// Both lattice edges are inclusive.
func SampleCount(width int) int {
	return (width + 1) * (width + 1)
}

// GenerateTile builds the tile whose origin is coord.
// Samples are stored x-major: x outer, z inner, both edges inclusive.
func GenerateTile(coord TileCoordinate, width int, field *HeightField) *Tile {
	samples := make([]SamplePoint, 0, SampleCount(width))
	for x := coord.X; x <= coord.X+width; x++ {
		for z := coord.Y; z <= coord.Y+width; z++ {
			h := field.Height(x, z)
			samples = append(samples, SamplePoint{
				LatticeX: x,
				LatticeZ: z,
				Height:   h,
				World:    ToWorld(x, h, z),
			})
		}
	}
	return &Tile{
		Coord:   coord,
		Width:   width,
		Samples: samples,
	}
}

// Bounds returns the lattice rectangle covered by the tile.
func (t *Tile) Bounds() Bounds {
	return BoundsAt(t.Coord, t.Width)
}

// Ref returns the reference for the sample at index i.
func (t *Tile) Ref(i int) SampleRef {
	return SampleRef{Tile: t.Coord, Index: i}
}

// IndexOf returns the sample index of lattice point (x, z), or -1 if the
// point is outside the tile.
func (t *Tile) IndexOf(x, z int) int {
	if !t.Bounds().Contains(x, z) {
		return -1
	}
	return (x-t.Coord.X)*(t.Width+1) + (z - t.Coord.Y)
}
