// Package station recognizes station structures and keeps the registry of
// spawn stations.
//
// A station is two triggers stacked on a base marker, both attached to a
// column of two side markers topped by a cap marker:
//
//	      [cap]
//	[T]   [side]
//	[T]   [side]
//	[base]
//
// The lower trigger's attachment face is the station facing.
package station

import "github.com/udisondev/homestations/internal/model"

// WorldQuery reads block state from the host world.
// Any error is treated by callers as "no block here".
type WorldQuery interface {
	// Material returns the block material at pos.
	Material(pos model.BlockPos) (model.Material, error)
	// AttachedFace returns the face of the supporting block for attachable
	// blocks such as buttons.
	AttachedFace(pos model.BlockPos) (model.Face, error)
}

// Pattern names the materials a station is built from.
type Pattern struct {
	Trigger model.Material
	Base    model.Material
	Side    model.Material
	Cap     model.Material
}

// DefaultPattern returns the classic button / emerald / lapis / redstone station.
func DefaultPattern() Pattern {
	return Pattern{
		Trigger: model.MaterialStoneButton,
		Base:    model.MaterialEmeraldBlock,
		Side:    model.MaterialLapisBlock,
		Cap:     model.MaterialRedstoneBlock,
	}
}

// Matcher checks station footprints. It is an immutable value and safe for
// concurrent use.
type Matcher struct {
	pattern Pattern
}

// NewMatcher creates a Matcher for the given pattern.
func NewMatcher(p Pattern) Matcher {
	return Matcher{pattern: p}
}

// Pattern returns the materials the matcher checks for.
func (m Matcher) Pattern() Pattern {
	return m.pattern
}

// IsTrigger reports whether the block at pos is a trigger block.
func (m Matcher) IsTrigger(w WorldQuery, pos model.BlockPos) bool {
	return m.is(w, pos, m.pattern.Trigger)
}

// MatchLower reports whether pos is the lower trigger of a complete station
// and returns the station facing.
func (m Matcher) MatchLower(w WorldQuery, pos model.BlockPos) (model.Face, bool) {
	if !m.is(w, pos, m.pattern.Trigger) {
		return 0, false
	}
	if !m.is(w, pos.Down(), m.pattern.Base) {
		return 0, false
	}
	upper := pos.Up()
	if !m.is(w, upper, m.pattern.Trigger) {
		return 0, false
	}

	facing, err := w.AttachedFace(pos)
	if err != nil || !facing.Horizontal() {
		return 0, false
	}
	lowerSide := pos.Relative(facing)
	if !m.is(w, lowerSide, m.pattern.Side) {
		return 0, false
	}

	// The upper trigger is checked along its own attachment face: a rotated
	// upper trigger lands outside the marker column.
	upperFacing, err := w.AttachedFace(upper)
	if err != nil {
		return 0, false
	}
	upperSide := upper.Relative(upperFacing)
	if upperSide != lowerSide.Up() || !m.is(w, upperSide, m.pattern.Side) {
		return 0, false
	}
	if !m.is(w, upperSide.Up(), m.pattern.Cap) {
		return 0, false
	}

	return facing, true
}

// MatchUpper reports whether pos is the upper trigger of a complete station.
func (m Matcher) MatchUpper(w WorldQuery, pos model.BlockPos) (model.Face, bool) {
	return m.MatchLower(w, pos.Down())
}

// IsLower reports whether pos is a valid lower trigger.
func (m Matcher) IsLower(w WorldQuery, pos model.BlockPos) bool {
	_, ok := m.MatchLower(w, pos)
	return ok
}

// IsUpper reports whether pos is a valid upper trigger.
func (m Matcher) IsUpper(w WorldQuery, pos model.BlockPos) bool {
	_, ok := m.MatchUpper(w, pos)
	return ok
}

func (m Matcher) is(w WorldQuery, pos model.BlockPos, want model.Material) bool {
	got, err := w.Material(pos)
	return err == nil && got == want
}
