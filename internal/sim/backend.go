// Package sim ties terrain streaming, the path walker and the follower into
// one frame-driven simulation.
package sim

import "github.com/samdwyer/terrainwalk/internal/world"

// Backend consumes simulation output: tile geometry as tiles stream in and
// out, and the smoothed path every time it is refit.
type Backend interface {
	world.TileHooks
	PublishPath(curve []world.Vec3)
}

// NopBackend discards everything.
type NopBackend struct{}

func (NopBackend) OnTileCreated(*world.Tile) any { return nil }
func (NopBackend) OnTileDisposed(any)            {}
func (NopBackend) PublishPath([]world.Vec3)      {}

// Backends fans every call out to each backend in order. The handle of a
// created tile holds one handle per backend.
type Backends []Backend

func (b Backends) OnTileCreated(tile *world.Tile) any {
	handles := make([]any, len(b))
	for i, backend := range b {
		handles[i] = backend.OnTileCreated(tile)
	}
	return handles
}

func (b Backends) OnTileDisposed(handle any) {
	handles, _ := handle.([]any)
	for i, backend := range b {
		var h any
		if i < len(handles) {
			h = handles[i]
		}
		backend.OnTileDisposed(h)
	}
}

func (b Backends) PublishPath(curve []world.Vec3) {
	for _, backend := range b {
		backend.PublishPath(curve)
	}
}
