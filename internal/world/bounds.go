package world

// Bounds is a lattice rectangle with inclusive edges.
type Bounds struct {
	XFrom, XTo int
	YFrom, YTo int
}

// BoundsAt returns the bounds of the tile with origin c and the given width.
func BoundsAt(c TileCoordinate, width int) Bounds {
	return Bounds{
		XFrom: c.X,
		XTo:   c.X + width,
		YFrom: c.Y,
		YTo:   c.Y + width,
	}
}

// Origin returns the tile coordinate of the lower corner.
func (b Bounds) Origin() TileCoordinate {
	return TileCoordinate{X: b.XFrom, Y: b.YFrom}
}

// Shift moves the rectangle by (dx, dy).
func (b *Bounds) Shift(dx, dy int) {
	b.XFrom += dx
	b.XTo += dx
	b.YFrom += dy
	b.YTo += dy
}

// Contains returns true if the lattice point lies inside the bounds.
func (b Bounds) Contains(x, y int) bool {
	return x >= b.XFrom && x <= b.XTo && y >= b.YFrom && y <= b.YTo
}

// Outside returns true if b reaches past other grown by margin on any side.
func (b Bounds) Outside(other Bounds, margin int) bool {
	return b.XFrom < other.XFrom-margin ||
		b.XTo > other.XTo+margin ||
		b.YFrom < other.YFrom-margin ||
		b.YTo > other.YTo+margin
}
