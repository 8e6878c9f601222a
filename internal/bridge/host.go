package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/udisondev/homestations/internal/model"
)

var (
	// ErrNotConnected is returned when no game host is attached.
	ErrNotConnected = errors.New("game host not connected")
	// ErrQueueFull is returned when the host does not drain its queue.
	ErrQueueFull = errors.New("host outbound queue full")
)

// Host is the outbound side of the bridge: it queues frames for the
// currently attached game host. Safe for concurrent use.
type Host struct {
	mu  sync.Mutex
	out chan []byte
}

// NewHost creates a Host with no connection attached.
func NewHost() *Host {
	return &Host{}
}

// PlayFirework implements teleport.Effects.
func (h *Host) PlayFirework(at model.Point, fw model.Firework) error {
	return h.send(EffectMsg{Type: TypeEffect, At: pointMsg(at), Firework: fireworkMsg(fw)})
}

func (h *Host) attach(out chan []byte) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.out != nil {
		return false
	}
	h.out = out
	return true
}

// detach never closes out: senders may still hold it.
func (h *Host) detach(out chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.out == out {
		h.out = nil
	}
}

func (h *Host) send(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding frame: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.out == nil {
		return ErrNotConnected
	}
	select {
	case h.out <- b:
		return nil
	default:
		return ErrQueueFull
	}
}

// Player is the service's handle on an online player. State is refreshed
// from every event the host sends; methods are called on the scheduler
// goroutine only.
type Player struct {
	host *Host

	id        uuid.UUID
	name      string
	perms     map[string]struct{}
	inVehicle bool
	loc       model.Point
}

func newPlayer(host *Host, id uuid.UUID) *Player {
	return &Player{host: host, id: id, perms: make(map[string]struct{})}
}

func (p *Player) update(st PlayerState) {
	p.name = st.Name
	p.inVehicle = st.InVehicle
	p.loc = st.Location.point()
	clear(p.perms)
	for _, perm := range st.Permissions {
		p.perms[perm] = struct{}{}
	}
}

func (p *Player) ID() uuid.UUID { return p.id }

func (p *Player) Name() string { return p.name }

// HasPermission reports whether the host granted perm or the "*" wildcard.
func (p *Player) HasPermission(perm string) bool {
	if _, ok := p.perms["*"]; ok {
		return true
	}
	_, ok := p.perms[perm]
	return ok
}

func (p *Player) InVehicle() bool { return p.inVehicle }

func (p *Player) Location() model.Point { return p.loc }

// SendMessage implements messages.Recipient. Undeliverable lines are dropped.
func (p *Player) SendMessage(line string) {
	err := p.host.send(MessageMsg{Type: TypeMessage, PlayerID: p.id.String(), Text: line})
	if err != nil {
		slog.Debug("dropping chat line", "player", p.id, "error", err)
	}
}

// SetVelocity implements teleport.Mover.
func (p *Player) SetVelocity(v model.Vector) error {
	return p.host.send(VelocityMsg{Type: TypeVelocity, PlayerID: p.id.String(), X: v.X, Y: v.Y, Z: v.Z})
}

// Relocate implements teleport.Mover.
func (p *Player) Relocate(to model.Point, yaw float32) error {
	if err := p.host.send(RelocateMsg{Type: TypeRelocate, PlayerID: p.id.String(), To: pointMsg(to), Yaw: yaw}); err != nil {
		return err
	}
	p.loc = to
	return nil
}
