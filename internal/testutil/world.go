package testutil

import (
	"testing"

	"github.com/udisondev/homestations/internal/model"
	"github.com/udisondev/homestations/internal/world"
)

// TestWorldName is the world used by test fixtures.
const TestWorldName = "world"

// NewTestWorld returns a mirror with TestWorldName registered at the given
// height limit.
func NewTestWorld(tb testing.TB, maxHeight int) *world.Mirror {
	tb.Helper()
	m := world.NewMirror()
	m.SetWorld(TestWorldName, maxHeight)
	return m
}

// StationBlocks returns the six blocks of a default-pattern station whose
// lower trigger is at lower, facing the given direction.
func StationBlocks(lower model.BlockPos, facing model.Face) map[model.BlockPos]model.Block {
	side := lower.Relative(facing)
	button := model.Block{Material: model.MaterialStoneButton, Attached: facing}
	return map[model.BlockPos]model.Block{
		lower:          button,
		lower.Up():     button,
		lower.Down():   {Material: model.MaterialEmeraldBlock},
		side:           {Material: model.MaterialLapisBlock},
		side.Up():      {Material: model.MaterialLapisBlock},
		side.Up().Up(): {Material: model.MaterialRedstoneBlock},
	}
}

// BuildStation places a default-pattern station into m.
func BuildStation(tb testing.TB, m *world.Mirror, lower model.BlockPos, facing model.Face) {
	tb.Helper()
	for pos, b := range StationBlocks(lower, facing) {
		if err := m.SetBlock(pos, b); err != nil {
			tb.Fatalf("building station at %s: %v", lower, err)
		}
	}
}
