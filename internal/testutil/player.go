package testutil

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/udisondev/homestations/internal/model"
)

// Relocation records one FakePlayer.Relocate call.
type Relocation struct {
	To  model.Point
	Yaw float32
}

// FakePlayer is an online player double that records everything sent to it.
type FakePlayer struct {
	mu sync.Mutex

	id    uuid.UUID
	name  string
	perms map[string]bool

	Vehicle bool
	Pos     model.Point

	messages    []string
	velocities  []model.Vector
	relocations []Relocation
}

// NewFakePlayer creates a player with a random id and the given permissions.
func NewFakePlayer(name string, perms ...string) *FakePlayer {
	p := &FakePlayer{
		id:    uuid.New(),
		name:  name,
		perms: make(map[string]bool, len(perms)),
		Pos:   model.NewPoint(TestWorldName, 0.5, 64, 0.5),
	}
	for _, perm := range perms {
		p.perms[perm] = true
	}
	return p
}

func (p *FakePlayer) ID() uuid.UUID { return p.id }
func (p *FakePlayer) Name() string  { return p.name }

func (p *FakePlayer) HasPermission(perm string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.perms[perm]
}

func (p *FakePlayer) InVehicle() bool { return p.Vehicle }

func (p *FakePlayer) Location() model.Point { return p.Pos }

func (p *FakePlayer) SendMessage(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, line)
}

func (p *FakePlayer) SetVelocity(v model.Vector) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.velocities = append(p.velocities, v)
	return nil
}

func (p *FakePlayer) Relocate(to model.Point, yaw float32) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.relocations = append(p.relocations, Relocation{To: to, Yaw: yaw})
	return nil
}

// Messages returns all lines received so far.
func (p *FakePlayer) Messages() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.messages)
}

// Velocities returns all velocity impulses applied so far.
func (p *FakePlayer) Velocities() []model.Vector {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.velocities)
}

// Relocations returns all relocations applied so far.
func (p *FakePlayer) Relocations() []Relocation {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.relocations)
}

// ResetMessages drops recorded messages only.
func (p *FakePlayer) ResetMessages() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = nil
}

// Reset drops every recorded interaction.
func (p *FakePlayer) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = nil
	p.velocities = nil
	p.relocations = nil
}
