package world

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/terrainwalk/internal/telemetry"
)

// neighborSteps walks the eight neighbours of the focal tile as one closed
// loop: -Y, +X, +Y, +Y, -X, -X, -Y, -Y. Each step is applied to the focal
// window before the tile under it is ensured.
var neighborSteps = [8][2]int{
	{0, -1},
	{1, 0},
	{0, 1},
	{0, 1},
	{-1, 0},
	{-1, 0},
	{0, -1},
	{0, -1},
}

// RecenterStats reports what a recenter changed.
type RecenterStats struct {
	Created int
	Evicted int
}

// Window keeps the tiles around the active tile resident.
type Window struct {
	store *Store
	ring  int

	focal     Bounds
	active    TileCoordinate
	hasActive bool
}

// NewWindow creates a controller over store. ring is the number of tile
// widths retained around the focal tile; values below 1 mean 1.
func NewWindow(store *Store, ring int) *Window {
	if ring < 1 {
		ring = 1
	}
	return &Window{store: store, ring: ring}
}

// Store returns the tile store driven by this window.
func (w *Window) Store() *Store { return w.store }

// Focal returns the current focal window.
func (w *Window) Focal() Bounds { return w.focal }

// ActiveTile returns the tile the path currently occupies. The second
// result is false before the first recenter.
func (w *Window) ActiveTile() (TileCoordinate, bool) { return w.active, w.hasActive }

// SetFocal points the focal window at coord without touching residency.
func (w *Window) SetFocal(coord TileCoordinate) {
	w.focal = BoundsAt(coord, w.store.Width())
}

// Recenter makes coord the active tile: the tile and its eight neighbours
// are made resident and tiles beyond the retention ring are evicted.
func (w *Window) Recenter(ctx context.Context, coord TileCoordinate) RecenterStats {
	tracer := telemetry.Tracer("world")
	ctx, span := tracer.Start(ctx, "terrain.recenter")
	defer span.End()

	var stats RecenterStats
	width := w.store.Width()

	w.SetFocal(coord)
	if _, created := w.store.Ensure(ctx, coord); created {
		stats.Created++
	}
	for _, step := range neighborSteps {
		w.focal.Shift(step[0]*width, step[1]*width)
		if _, created := w.store.Ensure(ctx, w.focal.Origin()); created {
			stats.Created++
		}
	}
	w.SetFocal(coord)

	stats.Evicted = w.EvictOutOfRange()
	w.active = coord
	w.hasActive = true

	span.SetAttributes(
		attribute.Int("tile.x", coord.X),
		attribute.Int("tile.y", coord.Y),
		attribute.Int("tiles.created", stats.Created),
		attribute.Int("tiles.evicted", stats.Evicted),
		attribute.Int("tiles.resident", w.store.Len()),
	)
	return stats
}

// EvictOutOfRange drops every tile that reaches past the focal window grown
// by the retention ring. It returns the number of evicted tiles.
func (w *Window) EvictOutOfRange() int {
	margin := w.ring * w.store.Width()
	tiles := w.store.Tiles()
	evicted := 0
	for i := len(tiles) - 1; i >= 0; i-- {
		if tiles[i].Bounds().Outside(w.focal, margin) {
			w.store.Evict(tiles[i].Coord)
			evicted++
		}
	}
	if evicted > 0 {
		w.store.logger.Printf("evicted %d tiles around %s, %d resident", evicted, w.focal.Origin(), w.store.Len())
	}
	return evicted
}

// TileOf returns the origin of the tile grid cell containing lattice point
// (x, z). Points on a shared edge belong to the tile they start.
func (w *Window) TileOf(x, z int) TileCoordinate {
	width := w.store.Width()
	anchor := w.focal.Origin()
	return TileCoordinate{
		X: anchor.X + floorDiv(x-anchor.X, width)*width,
		Y: anchor.Y + floorDiv(z-anchor.Y, width)*width,
	}
}

// TileAtWorld returns the tile grid cell under a world position.
func (w *Window) TileAtWorld(x, z float64) TileCoordinate {
	lx, lz := FromWorld(x, z)
	return w.TileOf(lx, lz)
}

// QueryGroundHeight probes the resident terrain straight down at (x, z).
// It reports false when no resident tile covers the point.
func (w *Window) QueryGroundHeight(x, z float64) (float64, bool) {
	lx, lz := FromWorld(x, z)
	tile, ok := w.store.Get(w.TileOf(lx, lz))
	if !ok {
		return 0, false
	}
	i := tile.IndexOf(lx, lz)
	if i < 0 {
		return 0, false
	}
	return tile.Samples[i].Height, true
}

func floorDiv(a, b int) int {
	q := a / b
	if r := a % b; r != 0 && (r < 0) != (b < 0) {
		q--
	}
	return q
}
