package station

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/udisondev/homestations/internal/model"
	"github.com/udisondev/homestations/internal/testutil"
)

func TestMatcher_AllFacings(t *testing.T) {
	m := NewMatcher(DefaultPattern())
	lower := model.NewBlockPos(testutil.TestWorldName, 10, 64, -10)

	for _, facing := range []model.Face{model.FaceNorth, model.FaceEast, model.FaceSouth, model.FaceWest} {
		t.Run(facing.String(), func(t *testing.T) {
			w := testutil.NewTestWorld(t, 256)
			testutil.BuildStation(t, w, lower, facing)

			gotLower, okLower := m.MatchLower(w, lower)
			gotUpper, okUpper := m.MatchUpper(w, lower.Up())

			assert.True(t, okLower)
			assert.True(t, okUpper)
			assert.Equal(t, facing, gotLower)
			assert.Equal(t, gotLower, gotUpper)

			// the other half is never matched in the wrong role
			assert.False(t, m.IsLower(w, lower.Up()))
			assert.False(t, m.IsUpper(w, lower))
		})
	}
}

func TestMatcher_AnyMissingBlockBreaksStation(t *testing.T) {
	m := NewMatcher(DefaultPattern())
	lower := model.NewBlockPos(testutil.TestWorldName, 0, 70, 0)

	for pos := range testutil.StationBlocks(lower, model.FaceEast) {
		t.Run(pos.String(), func(t *testing.T) {
			w := testutil.NewTestWorld(t, 256)
			testutil.BuildStation(t, w, lower, model.FaceEast)

			// a non-matching material in place of a required block
			if err := w.SetBlock(pos, model.Block{Material: "DIRT"}); err != nil {
				t.Fatalf("SetBlock() error = %v", err)
			}

			_, okLower := m.MatchLower(w, lower)
			_, okUpper := m.MatchUpper(w, lower.Up())
			assert.False(t, okLower)
			assert.False(t, okUpper)
		})
	}
}

func TestMatcher_RotatedUpperTrigger(t *testing.T) {
	m := NewMatcher(DefaultPattern())
	w := testutil.NewTestWorld(t, 256)
	lower := model.NewBlockPos(testutil.TestWorldName, 0, 70, 0)
	testutil.BuildStation(t, w, lower, model.FaceNorth)

	// upper trigger now attached to a different face
	_ = w.SetBlock(lower.Up(), model.Block{Material: model.MaterialStoneButton, Attached: model.FaceSouth})
	// even with a full marker column on that side
	south := lower.Up().Relative(model.FaceSouth)
	_ = w.SetBlock(south, model.Block{Material: model.MaterialLapisBlock})
	_ = w.SetBlock(south.Up(), model.Block{Material: model.MaterialRedstoneBlock})

	assert.False(t, m.IsLower(w, lower))
}

func TestMatcher_VerticalAttachment(t *testing.T) {
	m := NewMatcher(DefaultPattern())
	w := testutil.NewTestWorld(t, 256)
	lower := model.NewBlockPos(testutil.TestWorldName, 0, 70, 0)
	testutil.BuildStation(t, w, lower, model.FaceWest)

	_ = w.SetBlock(lower, model.Block{Material: model.MaterialStoneButton, Attached: model.FaceDown})

	assert.False(t, m.IsLower(w, lower))
}

func TestMatcher_CustomPattern(t *testing.T) {
	p := Pattern{Trigger: "OAK_BUTTON", Base: "GOLD_BLOCK", Side: "QUARTZ_BLOCK", Cap: "GLOWSTONE"}
	m := NewMatcher(p)
	w := testutil.NewTestWorld(t, 256)
	lower := model.NewBlockPos(testutil.TestWorldName, 5, 5, 5)

	testutil.BuildStation(t, w, lower, model.FaceSouth)
	assert.False(t, m.IsLower(w, lower), "default materials must not match a custom pattern")

	side := lower.Relative(model.FaceSouth)
	blocks := map[model.BlockPos]model.Block{
		lower:          {Material: p.Trigger, Attached: model.FaceSouth},
		lower.Up():     {Material: p.Trigger, Attached: model.FaceSouth},
		lower.Down():   {Material: p.Base},
		side:           {Material: p.Side},
		side.Up():      {Material: p.Side},
		side.Up().Up(): {Material: p.Cap},
	}
	for pos, b := range blocks {
		_ = w.SetBlock(pos, b)
	}

	facing, ok := m.MatchLower(w, lower)
	assert.True(t, ok)
	assert.Equal(t, model.FaceSouth, facing)
}

type failingWorld struct{}

func (failingWorld) Material(model.BlockPos) (model.Material, error) {
	return "", errors.New("chunk not loaded")
}

func (failingWorld) AttachedFace(model.BlockPos) (model.Face, error) {
	return 0, errors.New("chunk not loaded")
}

func TestMatcher_LookupErrorIsNoStation(t *testing.T) {
	m := NewMatcher(DefaultPattern())
	_, ok := m.MatchLower(failingWorld{}, model.NewBlockPos("world", 0, 0, 0))
	assert.False(t, ok)
}
