package model

// Point is a fractional position inside a named world.
// Value type, passed by value (immutable).
type Point struct {
	World string
	X     float64
	Y     float64
	Z     float64
}

// NewPoint creates a Point with the given coordinates.
func NewPoint(world string, x, y, z float64) Point {
	return Point{World: world, X: x, Y: y, Z: z}
}

// Add returns a new Point shifted by the given deltas (immutable pattern).
func (p Point) Add(dx, dy, dz float64) Point {
	p.X += dx
	p.Y += dy
	p.Z += dz
	return p
}

// Block returns the block containing the point.
func (p Point) Block() BlockPos {
	return BlockPos{World: p.World, X: floor(p.X), Y: floor(p.Y), Z: floor(p.Z)}
}

// Vector is a velocity in blocks per tick.
type Vector struct {
	X float64
	Y float64
	Z float64
}

func floor(v float64) int {
	i := int(v)
	if v < float64(i) {
		i--
	}
	return i
}
