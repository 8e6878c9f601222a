// Package confirm implements "press again to confirm" for sensitive player
// actions: at most one pending request per player, consumed on read.
package confirm

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/homestations/internal/model"
)

// DefaultWindow is how long a pending request stays valid.
const DefaultWindow = 20 * time.Second

// Kind is the action a request confirms.
type Kind uint8

const (
	KindSetStation Kind = iota + 1
	KindTeleportCost
)

func (k Kind) String() string {
	switch k {
	case KindSetStation:
		return "SetStation"
	case KindTeleportCost:
		return "TeleportCost"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Request is a pending confirmation.
type Request struct {
	Kind     Kind
	Location model.BlockPos
	Expires  time.Time
}

// Matches reports whether the request is for the same action and station.
func (r *Request) Matches(kind Kind, loc model.BlockPos) bool {
	return r != nil && r.Kind == kind && r.Location == loc
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithWindow replaces the confirmation window.
func WithWindow(d time.Duration) Option {
	return func(l *Ledger) { l.window = d }
}

// Ledger holds the pending request of every player.
//
// Not safe for concurrent use: owned by the scheduler goroutine.
type Ledger struct {
	window  time.Duration
	now     func() time.Time
	pending map[uuid.UUID]Request
}

// NewLedger creates an empty ledger.
func NewLedger(opts ...Option) *Ledger {
	l := &Ledger{
		window:  DefaultWindow,
		now:     time.Now,
		pending: make(map[uuid.UUID]Request),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Request registers a pending confirmation for the player, replacing any
// previous one.
func (l *Ledger) Request(player uuid.UUID, kind Kind, loc model.BlockPos) {
	l.pending[player] = Request{
		Kind:     kind,
		Location: loc,
		Expires:  l.now().Add(l.window),
	}
}

// Consume removes and returns the player's pending request, or nil.
// The slot is cleared whether or not the request later applies.
func (l *Ledger) Consume(player uuid.UUID) *Request {
	req, ok := l.pending[player]
	if !ok {
		return nil
	}
	delete(l.pending, player)
	return &req
}

// Applies reports whether req confirms kind at loc and has not expired.
func (l *Ledger) Applies(req *Request, kind Kind, loc model.BlockPos) bool {
	return req.Matches(kind, loc) && l.now().Before(req.Expires)
}

// PurgeLocation drops every pending request for loc, whoever made it.
// Returns the number of dropped requests.
func (l *Ledger) PurgeLocation(loc model.BlockPos) int {
	n := 0
	for player, req := range l.pending {
		if req.Location == loc {
			delete(l.pending, player)
			n++
		}
	}
	return n
}

// Forget drops the player's pending request.
func (l *Ledger) Forget(player uuid.UUID) {
	delete(l.pending, player)
}

// Reset drops all pending requests.
func (l *Ledger) Reset() {
	clear(l.pending)
}

// Len returns the number of pending requests.
func (l *Ledger) Len() int {
	return len(l.pending)
}
