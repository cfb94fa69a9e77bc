package observer

import "github.com/samdwyer/terrainwalk/internal/world"

// ProtocolVersion is sent in every hello.
const ProtocolVersion = "1"

// HelloMsg is the first message on every connection.
type HelloMsg struct {
	Type            string                 `json:"type"`
	ProtocolVersion string                 `json:"protocol_version"`
	RunID           string                 `json:"run_id"`
	Seed            int64                  `json:"seed"`
	TileWidth       int                    `json:"tile_width"`
	Tiles           []world.TileCoordinate `json:"tiles"`
}

// PathMsg carries one published curve.
type PathMsg struct {
	Type   string       `json:"type"`
	Seq    uint64       `json:"seq"`
	Points [][3]float64 `json:"points"`
}

// TileMsg reports a tile streaming in or out.
type TileMsg struct {
	Type      string               `json:"type"`
	Event     string               `json:"event"`
	Tile      world.TileCoordinate `json:"tile"`
	Samples   int                  `json:"samples,omitempty"`
	MinHeight float64              `json:"min_height,omitempty"`
	MaxHeight float64              `json:"max_height,omitempty"`
}

const (
	TileCreated  = "created"
	TileDisposed = "disposed"
)

func points(curve []world.Vec3) [][3]float64 {
	out := make([][3]float64, len(curve))
	for i, p := range curve {
		out[i] = [3]float64{p.X, p.Y, p.Z}
	}
	return out
}

func heightRange(tile *world.Tile) (lo, hi float64) {
	for i, s := range tile.Samples {
		if i == 0 || s.Height < lo {
			lo = s.Height
		}
		if i == 0 || s.Height > hi {
			hi = s.Height
		}
	}
	return lo, hi
}
