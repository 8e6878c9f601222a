package bridge

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/udisondev/homestations/internal/model"
)

// Frame types. Every frame is a JSON object with a "type" field.
const (
	// host -> service
	TypeHello    = "hello"
	TypeWorld    = "world"
	TypeBlocks   = "blocks"
	TypeReady    = "ready"
	TypeJoin     = "join"
	TypeQuit     = "quit"
	TypeInteract = "interact"
	TypeCommand  = "command"

	// service -> host
	TypeWelcome  = "welcome"
	TypeResult   = "result"
	TypeMessage  = "message"
	TypeEffect   = "effect"
	TypeVelocity = "velocity"
	TypeRelocate = "relocate"
)

type envelope struct {
	Type string `json:"type"`
}

// HelloMsg opens a session. Token is checked against the configured hash.
type HelloMsg struct {
	Type  string `json:"type"`
	Token string `json:"token,omitempty"`
}

// WorldMsg registers a world, updates its height limit or removes it.
type WorldMsg struct {
	Type      string `json:"type"`
	Name      string `json:"name"`
	MaxHeight int    `json:"max_height"`
	Removed   bool   `json:"removed,omitempty"`
}

// BlockMsg is one block update. Empty material or AIR clears the block.
type BlockMsg struct {
	World    string `json:"world"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Z        int    `json:"z"`
	Material string `json:"material,omitempty"`
	Attached string `json:"attached,omitempty"`
}

// BlocksMsg carries a batch of block updates.
type BlocksMsg struct {
	Type   string     `json:"type"`
	Blocks []BlockMsg `json:"blocks"`
}

// PointMsg is a fractional position.
type PointMsg struct {
	World string  `json:"world"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
}

// BlockPosMsg is an integer block position.
type BlockPosMsg struct {
	World string `json:"world"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Z     int    `json:"z"`
}

// PlayerState is the host's snapshot of a player, sent with every player
// event so the service never has to ask back.
type PlayerState struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions,omitempty"`
	InVehicle   bool     `json:"in_vehicle,omitempty"`
	Location    PointMsg `json:"location"`
}

// JoinMsg reports a player joining.
type JoinMsg struct {
	Type   string      `json:"type"`
	Player PlayerState `json:"player"`
}

// QuitMsg reports a player leaving.
type QuitMsg struct {
	Type     string `json:"type"`
	PlayerID string `json:"player_id"`
}

// InteractMsg reports a right click on a block. When Ref is set the service
// answers with a ResultMsg.
type InteractMsg struct {
	Type   string      `json:"type"`
	Ref    string      `json:"ref,omitempty"`
	Player PlayerState `json:"player"`
	Block  BlockPosMsg `json:"block"`
}

// CommandMsg carries a /homestations command line split into arguments.
type CommandMsg struct {
	Type   string      `json:"type"`
	Ref    string      `json:"ref,omitempty"`
	Player PlayerState `json:"player"`
	Args   []string    `json:"args"`
}

// WelcomeMsg acknowledges a hello.
type WelcomeMsg struct {
	Type string `json:"type"`
}

// ResultMsg tells the host whether an interact or command was handled.
type ResultMsg struct {
	Type    string `json:"type"`
	Ref     string `json:"ref"`
	Handled bool   `json:"handled"`
}

// MessageMsg sends one chat line to a player.
type MessageMsg struct {
	Type     string `json:"type"`
	PlayerID string `json:"player_id"`
	Text     string `json:"text"`
}

// FireworkMsg describes a firework burst.
type FireworkMsg struct {
	Colors     []string `json:"colors"`
	FadeColors []string `json:"fade_colors,omitempty"`
	Flicker    bool     `json:"flicker,omitempty"`
	Trail      bool     `json:"trail,omitempty"`
}

// EffectMsg plays a firework at a position.
type EffectMsg struct {
	Type     string      `json:"type"`
	At       PointMsg    `json:"at"`
	Firework FireworkMsg `json:"firework"`
}

// VelocityMsg sets a player's velocity.
type VelocityMsg struct {
	Type     string  `json:"type"`
	PlayerID string  `json:"player_id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Z        float64 `json:"z"`
}

// RelocateMsg teleports a player.
type RelocateMsg struct {
	Type     string   `json:"type"`
	PlayerID string   `json:"player_id"`
	To       PointMsg `json:"to"`
	Yaw      float32  `json:"yaw"`
}

func pointMsg(p model.Point) PointMsg {
	return PointMsg{World: p.World, X: p.X, Y: p.Y, Z: p.Z}
}

func (m PointMsg) point() model.Point {
	return model.NewPoint(m.World, m.X, m.Y, m.Z)
}

func (m BlockPosMsg) blockPos() (model.BlockPos, error) {
	if m.World == "" {
		return model.BlockPos{}, errors.New("block position without world")
	}
	return model.NewBlockPos(m.World, m.X, m.Y, m.Z), nil
}

// block converts the update. ok is false when the block is air.
func (m BlockMsg) block() (pos model.BlockPos, b model.Block, ok bool, err error) {
	if m.World == "" {
		return pos, b, false, errors.New("block without world")
	}
	pos = model.NewBlockPos(m.World, m.X, m.Y, m.Z)

	mat := model.Material(strings.ToUpper(strings.TrimSpace(m.Material)))
	if mat == "" || mat == model.MaterialAir {
		return pos, b, false, nil
	}
	b.Material = mat

	if m.Attached != "" {
		face, err := model.ParseFace(m.Attached)
		if err != nil {
			return pos, b, false, fmt.Errorf("block %s: %w", pos, err)
		}
		b.Attached = face
	}
	return pos, b, true, nil
}

func (s PlayerState) id() (uuid.UUID, error) {
	id, err := uuid.Parse(s.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parsing player id %q: %w", s.ID, err)
	}
	return id, nil
}

func fireworkMsg(fw model.Firework) FireworkMsg {
	msg := FireworkMsg{
		Colors:  make([]string, 0, len(fw.Colors)),
		Flicker: fw.Flicker,
		Trail:   fw.Trail,
	}
	for _, c := range fw.Colors {
		msg.Colors = append(msg.Colors, c.String())
	}
	for _, c := range fw.FadeColors {
		msg.FadeColors = append(msg.FadeColors, c.String())
	}
	return msg
}
