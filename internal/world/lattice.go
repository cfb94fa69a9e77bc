package world

import "math"

const (
	// RowSpacing is the world-space distance between lattice columns.
	RowSpacing = 1.68
	// ColSpacing is the world-space distance between lattice rows.
	ColSpacing = 1.535
)

// ToWorld maps a lattice point and its height to a world position.
//
// Odd rows are offset by half a column so neighbouring rows interlock.
// The row parity uses Go's truncated remainder, so odd rows below zero
// shift by -0.5 rather than +0.5.
func ToWorld(latticeX int, height float64, latticeZ int) Vec3 {
	offset := float64(latticeZ%2) * 0.5
	return Vec3{
		X: (float64(latticeX) + offset) * RowSpacing,
		Y: height,
		Z: float64(latticeZ) * ColSpacing,
	}
}

// FromWorld returns the lattice point nearest to the world position (x, z).
func FromWorld(x, z float64) (latticeX, latticeZ int) {
	latticeZ = int(math.Round(z / ColSpacing))
	offset := float64(latticeZ%2) * 0.5
	latticeX = int(math.Round(x/RowSpacing - offset))
	return latticeX, latticeZ
}
