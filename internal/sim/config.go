package sim

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/samdwyer/terrainwalk/internal/entity"
	"github.com/samdwyer/terrainwalk/internal/path"
	"github.com/samdwyer/terrainwalk/internal/world"
)

// ErrInvalidConfig is wrapped by every Config.Validate failure.
var ErrInvalidConfig = errors.New("invalid simulation config")

const (
	// DefaultTileWidth is the tile side length in lattice units.
	DefaultTileWidth = 80
	// DefaultStepInterval throttles simulation steps independently of frame rate.
	DefaultStepInterval = 10 * time.Millisecond
	// DefaultInitialSegments is how many nodes are walked before the first frame.
	DefaultInitialSegments = 5
)

// Config holds every tunable of the simulation.
type Config struct {
	// Seed for the height field. Identical seeds produce identical terrain
	// and paths.
	Seed int64

	TileWidth          int
	StartTile          world.TileCoordinate
	RetentionRingWidth int
	MaxHeight          float64
	NoiseFrequency     float64

	MinSampleDistance           float64
	MaxSampleDistance           float64
	DirectionalToleranceRadians float64
	VerticalPathOffset          float64

	SmoothingWindowSize int
	CurveSampleCount    int
	InitialSegments     int

	CursorStart int
	CursorEnd   int

	StepInterval time.Duration

	// ProbeRecenter moves the tile window by probing the ground under the
	// follower instead of following the path head across tile edges.
	ProbeRecenter bool
}

// DefaultConfig returns the standard configuration: an 80-wide tile centred
// on the origin.
func DefaultConfig() Config {
	return Config{
		TileWidth:                   DefaultTileWidth,
		StartTile:                   world.TileCoordinate{X: -DefaultTileWidth / 2, Y: -DefaultTileWidth / 2},
		RetentionRingWidth:          1,
		MaxHeight:                   world.DefaultMaxHeight,
		NoiseFrequency:              world.DefaultNoiseFrequency,
		MinSampleDistance:           path.DefaultMinDistance,
		MaxSampleDistance:           path.DefaultMaxDistance,
		DirectionalToleranceRadians: path.DefaultTolerance,
		VerticalPathOffset:          path.DefaultVerticalOffset,
		SmoothingWindowSize:         path.DefaultWindowSize,
		CurveSampleCount:            path.DefaultCurveSamples,
		InitialSegments:             DefaultInitialSegments,
		CursorStart:                 entity.DefaultCursorStart,
		CursorEnd:                   entity.DefaultCursorEnd,
		StepInterval:                DefaultStepInterval,
	}
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	switch {
	case c.TileWidth <= 0:
		return fmt.Errorf("%w: tile width %d must be positive", ErrInvalidConfig, c.TileWidth)
	case c.RetentionRingWidth < 1:
		return fmt.Errorf("%w: retention ring %d must be at least 1", ErrInvalidConfig, c.RetentionRingWidth)
	case c.MaxHeight <= 0 || math.IsNaN(c.MaxHeight):
		return fmt.Errorf("%w: max height %v must be positive", ErrInvalidConfig, c.MaxHeight)
	case c.NoiseFrequency <= 0 || math.IsNaN(c.NoiseFrequency):
		return fmt.Errorf("%w: noise frequency %v must be positive", ErrInvalidConfig, c.NoiseFrequency)
	case c.MinSampleDistance < 0:
		return fmt.Errorf("%w: min sample distance %v is negative", ErrInvalidConfig, c.MinSampleDistance)
	case c.MaxSampleDistance <= c.MinSampleDistance:
		return fmt.Errorf("%w: max sample distance %v must exceed min %v", ErrInvalidConfig, c.MaxSampleDistance, c.MinSampleDistance)
	case c.MaxSampleDistance > c.coverage():
		// The eight neighbours must cover the band around any head in the
		// active tile.
		return fmt.Errorf("%w: max sample distance %v exceeds neighbour coverage %.2f", ErrInvalidConfig, c.MaxSampleDistance, c.coverage())
	case c.DirectionalToleranceRadians < 0:
		return fmt.Errorf("%w: directional tolerance %v is negative", ErrInvalidConfig, c.DirectionalToleranceRadians)
	case c.SmoothingWindowSize < 2:
		return fmt.Errorf("%w: smoothing window %d must hold at least 2 nodes", ErrInvalidConfig, c.SmoothingWindowSize)
	case c.CurveSampleCount < 1:
		return fmt.Errorf("%w: curve sample count %d must be positive", ErrInvalidConfig, c.CurveSampleCount)
	case c.InitialSegments < 2:
		return fmt.Errorf("%w: initial segments %d must be at least 2", ErrInvalidConfig, c.InitialSegments)
	case c.CursorStart < 0 || c.CursorEnd < c.CursorStart || c.CursorEnd >= c.CurveSampleCount:
		return fmt.Errorf("%w: cursor range %d..%d must lie inside 0..%d", ErrInvalidConfig, c.CursorStart, c.CursorEnd, c.CurveSampleCount-1)
	case c.StepInterval <= 0:
		return fmt.Errorf("%w: step interval %v must be positive", ErrInvalidConfig, c.StepInterval)
	case c.ProbeRecenter && c.MaxSampleDistance*float64(c.SmoothingWindowSize) > c.coverage():
		return fmt.Errorf("%w: probe recentering needs tiles wider than the smoothing window reach", ErrInvalidConfig)
	}
	return nil
}

// coverage is the shortest world distance from the active tile to the edge
// of its neighbours.
func (c Config) coverage() float64 {
	return float64(c.TileWidth) * math.Min(world.RowSpacing, world.ColSpacing)
}

func (c Config) walkerConfig() path.Config {
	return path.Config{
		MinDistance:    c.MinSampleDistance,
		MaxDistance:    c.MaxSampleDistance,
		Tolerance:      c.DirectionalToleranceRadians,
		VerticalOffset: c.VerticalPathOffset,
		ManualRecenter: c.ProbeRecenter,
	}
}
