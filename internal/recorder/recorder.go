package recorder

import (
	"log"
	"sync/atomic"

	"github.com/samdwyer/terrainwalk/internal/world"
)

// Entry kinds.
const (
	KindTileCreated  = "tile_created"
	KindTileDisposed = "tile_disposed"
	KindPath         = "path"
)

// Entry is one line of the run log.
type Entry struct {
	Seq     uint64                `json:"seq"`
	RunID   string                `json:"run_id"`
	Kind    string                `json:"kind"`
	Tile    *world.TileCoordinate `json:"tile,omitempty"`
	Samples int                   `json:"samples,omitempty"`
	Points  [][3]float64          `json:"points,omitempty"`
}

// Recorder is a simulation backend that logs to a JSONLZstdWriter. Write
// failures are logged and counted; they never stop the run.
type Recorder struct {
	runID  string
	w      *JSONLZstdWriter
	log    *log.Logger
	seq    uint64
	failed atomic.Uint64
}

// New records into dir/<runID>-<hour>.jsonl.zst.
func New(dir, runID string, logger *log.Logger) *Recorder {
	if logger == nil {
		logger = log.New(log.Writer(), "[recorder] ", log.LstdFlags)
	}
	return &Recorder{
		runID: runID,
		w:     NewJSONLZstdWriter(dir, runID),
		log:   logger,
	}
}

func (r *Recorder) write(e Entry) {
	r.seq++
	e.Seq = r.seq
	e.RunID = r.runID
	if err := r.w.Write(e); err != nil {
		if r.failed.Add(1) == 1 {
			r.log.Printf("write entry %d: %v", e.Seq, err)
		}
	}
}

func (r *Recorder) OnTileCreated(tile *world.Tile) any {
	coord := tile.Coord
	r.write(Entry{Kind: KindTileCreated, Tile: &coord, Samples: len(tile.Samples)})
	return coord
}

func (r *Recorder) OnTileDisposed(handle any) {
	coord, ok := handle.(world.TileCoordinate)
	if !ok {
		return
	}
	r.write(Entry{Kind: KindTileDisposed, Tile: &coord})
}

func (r *Recorder) PublishPath(curve []world.Vec3) {
	pts := make([][3]float64, len(curve))
	for i, p := range curve {
		pts[i] = [3]float64{p.X, p.Y, p.Z}
	}
	r.write(Entry{Kind: KindPath, Points: pts})
}

// Failed returns how many entries could not be written.
func (r *Recorder) Failed() uint64 { return r.failed.Load() }

// File returns the file currently being written.
func (r *Recorder) File() string { return r.w.File() }

// Close flushes and closes the current file.
func (r *Recorder) Close() error { return r.w.Close() }
