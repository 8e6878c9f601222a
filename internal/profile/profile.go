// Package profile keeps each player's chosen home and spawn stations.
package profile

import (
	"log/slog"

	"github.com/udisondev/homestations/internal/model"
	"github.com/udisondev/homestations/internal/storage"
)

// Profile holds a player's chosen stations. Nil means not chosen.
type Profile struct {
	Home  *model.BlockPos
	Spawn *model.BlockPos
}

// Empty reports whether neither station is set.
func (p *Profile) Empty() bool {
	return p.Home == nil && p.Spawn == nil
}

// SetHome records the home station.
func (p *Profile) SetHome(pos model.BlockPos) {
	p.Home = &pos
}

// SetSpawn records the spawn station.
func (p *Profile) SetSpawn(pos model.BlockPos) {
	p.Spawn = &pos
}

// Equal reports whether both profiles point at the same stations.
func (p *Profile) Equal(other *Profile) bool {
	return equalPos(p.Home, other.Home) && equalPos(p.Spawn, other.Spawn)
}

// Encode renders the durable form: home on the first line, spawn on the second.
func Encode(p *Profile) []string {
	return []string{encodePos(p.Home), encodePos(p.Spawn)}
}

// Decode parses the durable form. Missing lines and the "not set" marker
// leave a field nil; a malformed line is logged and also leaves it nil.
func Decode(key string, lines []string) *Profile {
	p := &Profile{}
	if len(lines) > 0 {
		p.Home = decodePos(key, "home", lines[0])
	}
	if len(lines) > 1 {
		p.Spawn = decodePos(key, "spawn", lines[1])
	}
	return p
}

func encodePos(pos *model.BlockPos) string {
	if pos == nil {
		return storage.NotSet
	}
	return pos.String()
}

func decodePos(key, field, line string) *model.BlockPos {
	if line == "" || line == storage.NotSet {
		return nil
	}
	pos, ok := model.ParseBlockPos(line)
	if !ok {
		slog.Error("malformed station location in player data",
			"key", key,
			"field", field,
			"value", line)
		return nil
	}
	return &pos
}

func equalPos(a, b *model.BlockPos) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
