package model

import (
	"strconv"
	"strings"
)

// BlockPos is an integer block coordinate inside a named world.
// Value type: comparable, usable as a map key, never mutated in place.
type BlockPos struct {
	World string
	X     int
	Y     int
	Z     int
}

// NewBlockPos creates a BlockPos.
func NewBlockPos(world string, x, y, z int) BlockPos {
	return BlockPos{World: world, X: x, Y: y, Z: z}
}

// Add returns the position shifted by the given deltas.
func (p BlockPos) Add(dx, dy, dz int) BlockPos {
	p.X += dx
	p.Y += dy
	p.Z += dz
	return p
}

// Relative returns the neighbouring block in direction f.
func (p BlockPos) Relative(f Face) BlockPos {
	dx, dy, dz := f.Delta()
	return p.Add(dx, dy, dz)
}

// Up returns the block directly above.
func (p BlockPos) Up() BlockPos {
	return p.Add(0, 1, 0)
}

// Down returns the block directly below.
func (p BlockPos) Down() BlockPos {
	return p.Add(0, -1, 0)
}

// Center returns the point in the middle of the block's floor.
func (p BlockPos) Center() Point {
	return Point{
		World: p.World,
		X:     float64(p.X) + 0.5,
		Y:     float64(p.Y),
		Z:     float64(p.Z) + 0.5,
	}
}

// String encodes the position as "world;x;y;z".
func (p BlockPos) String() string {
	var b strings.Builder
	b.Grow(len(p.World) + 16)
	b.WriteString(p.World)
	b.WriteByte(';')
	b.WriteString(strconv.Itoa(p.X))
	b.WriteByte(';')
	b.WriteString(strconv.Itoa(p.Y))
	b.WriteByte(';')
	b.WriteString(strconv.Itoa(p.Z))
	return b.String()
}

// ParseBlockPos decodes a position produced by String.
// Returns false for a wrong field count or a non-integer coordinate.
func ParseBlockPos(s string) (BlockPos, bool) {
	parts := strings.Split(s, ";")
	if len(parts) != 4 {
		return BlockPos{}, false
	}

	x, err := strconv.Atoi(parts[1])
	if err != nil {
		return BlockPos{}, false
	}
	y, err := strconv.Atoi(parts[2])
	if err != nil {
		return BlockPos{}, false
	}
	z, err := strconv.Atoi(parts[3])
	if err != nil {
		return BlockPos{}, false
	}

	return BlockPos{World: parts[0], X: x, Y: y, Z: z}, true
}
