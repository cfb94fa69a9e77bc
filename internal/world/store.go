package world

import (
	"context"
	"log"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/terrainwalk/internal/telemetry"
)

// TileHooks is the rendering side of tile streaming. OnTileCreated returns
// an opaque handle that is handed back to OnTileDisposed when the tile is
// evicted.
type TileHooks interface {
	OnTileCreated(tile *Tile) any
	OnTileDisposed(handle any)
}

type resident struct {
	tile   *Tile
	handle any
}

// Store owns every resident tile. Tiles are kept in creation order so scans
// over them are deterministic.
type Store struct {
	width  int
	field  *HeightField
	hooks  TileHooks
	logger *log.Logger

	order []TileCoordinate
	tiles map[TileCoordinate]resident
}

// NewStore creates an empty tile store. hooks may be nil.
func NewStore(width int, field *HeightField, hooks TileHooks, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(log.Writer(), "[world] ", log.LstdFlags)
	}
	return &Store{
		width:  width,
		field:  field,
		hooks:  hooks,
		logger: logger,
		tiles:  make(map[TileCoordinate]resident, 16),
	}
}

// Width returns the tile side length in lattice units.
func (s *Store) Width() int { return s.width }

// Field returns the height field tiles are generated from.
func (s *Store) Field() *HeightField { return s.field }

// Ensure returns the tile at coord, generating it first if it is not
// resident. The second result reports whether a tile was created.
func (s *Store) Ensure(ctx context.Context, coord TileCoordinate) (*Tile, bool) {
	if r, ok := s.tiles[coord]; ok {
		return r.tile, false
	}

	tracer := telemetry.Tracer("world")
	_, span := tracer.Start(ctx, "terrain.tile.generate")
	defer span.End()

	startTime := time.Now()
	tile := GenerateTile(coord, s.width, s.field)

	var handle any
	if s.hooks != nil {
		handle = s.hooks.OnTileCreated(tile)
	}
	s.tiles[coord] = resident{tile: tile, handle: handle}
	s.order = append(s.order, coord)

	span.SetAttributes(
		attribute.Int("tile.x", coord.X),
		attribute.Int("tile.y", coord.Y),
		attribute.Int("tile.samples", len(tile.Samples)),
		attribute.Int64("tile.generation_us", time.Since(startTime).Microseconds()),
	)
	return tile, true
}

// Evict disposes of the tile at coord and drops it. It returns false if no
// such tile is resident.
func (s *Store) Evict(coord TileCoordinate) bool {
	r, ok := s.tiles[coord]
	if !ok {
		return false
	}
	if s.hooks != nil {
		s.hooks.OnTileDisposed(r.handle)
	}
	delete(s.tiles, coord)
	for i, c := range s.order {
		if c == coord {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the resident tile at coord.
func (s *Store) Get(coord TileCoordinate) (*Tile, bool) {
	r, ok := s.tiles[coord]
	return r.tile, ok
}

// Handle returns the render handle stored for the tile at coord.
func (s *Store) Handle(coord TileCoordinate) (any, bool) {
	r, ok := s.tiles[coord]
	return r.handle, ok
}

// Sample resolves a sample reference against the resident tiles.
func (s *Store) Sample(ref SampleRef) (SamplePoint, bool) {
	r, ok := s.tiles[ref.Tile]
	if !ok || ref.Index < 0 || ref.Index >= len(r.tile.Samples) {
		return SamplePoint{}, false
	}
	return r.tile.Samples[ref.Index], true
}

// Tiles returns the resident tiles in creation order.
func (s *Store) Tiles() []*Tile {
	out := make([]*Tile, 0, len(s.order))
	for _, c := range s.order {
		out = append(out, s.tiles[c].tile)
	}
	return out
}

// Len returns the number of resident tiles.
func (s *Store) Len() int { return len(s.order) }

// Coordinates returns the resident tile coordinates sorted by x, then y.
func (s *Store) Coordinates() []TileCoordinate {
	keys := make([]TileCoordinate, len(s.order))
	copy(keys, s.order)
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].X != keys[j].X {
			return keys[i].X < keys[j].X
		}
		return keys[i].Y < keys[j].Y
	})
	return keys
}
