package world

import (
	"math"

	"github.com/aquilax/go-perlin"
)

const (
	// DefaultNoiseFrequency scales lattice coordinates before sampling noise.
	DefaultNoiseFrequency = 0.015
	// DefaultMaxHeight is the elevation scale applied to the remapped noise.
	DefaultMaxHeight = 30.0

	heightExponent = 1.2

	// Perlin parameters: smoothing, per-octave frequency step, octave count.
	noiseAlpha   = 2.0
	noiseBeta    = 2.0
	noiseOctaves = 3
)

// HeightField maps lattice coordinates to elevation.
//
// A single noise source is seeded once; every call with the same inputs
// returns the same value.
type HeightField struct {
	noise     *perlin.Perlin
	seed      int64
	frequency float64
	maxHeight float64
}

// NewHeightField creates a height field for the given seed.
// Non-positive frequency or height fall back to the defaults.
func NewHeightField(seed int64, frequency, maxHeight float64) *HeightField {
	if frequency <= 0 {
		frequency = DefaultNoiseFrequency
	}
	if maxHeight <= 0 {
		maxHeight = DefaultMaxHeight
	}
	return &HeightField{
		noise:     perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, seed),
		seed:      seed,
		frequency: frequency,
		maxHeight: maxHeight,
	}
}

// Seed returns the seed the noise source was built with.
func (h *HeightField) Seed() int64 { return h.seed }

// MaxHeight returns the elevation scale.
func (h *HeightField) MaxHeight() float64 { return h.maxHeight }

// Height returns the elevation at lattice point (x, z).
//
// The noise value is remapped twice, each remap raised to 1.2, and the
// product scaled by maxHeight. Peaks come out sharper and valleys flatter
// than the raw noise.
func (h *HeightField) Height(x, z int) float64 {
	n := h.noise.Noise2D(float64(x)*h.frequency, float64(z)*h.frequency)
	n = clamp(n, -1, 1)

	low := math.Pow((n+1.3)*0.3, heightExponent)
	high := math.Pow((n+1)*0.75, heightExponent)
	return low * high * h.maxHeight
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
