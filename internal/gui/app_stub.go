//go:build !ebiten

package gui

import (
	"context"

	"github.com/samdwyer/terrainwalk/internal/sim"
)

// Run reports that the window is not compiled in.
func Run(context.Context, *sim.Simulation, *Painter, int, int, int) error {
	return ErrUnavailable
}
