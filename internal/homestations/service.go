// Package homestations wires station recognition, player profiles, costs and
// teleport animation into the handlers the game host calls.
package homestations

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/udisondev/homestations/internal/confirm"
	"github.com/udisondev/homestations/internal/economy"
	"github.com/udisondev/homestations/internal/messages"
	"github.com/udisondev/homestations/internal/model"
	"github.com/udisondev/homestations/internal/profile"
	"github.com/udisondev/homestations/internal/station"
	"github.com/udisondev/homestations/internal/teleport"
)

// Permissions checked by the service.
const (
	PermissionUse   = "homestation.use"
	PermissionAdmin = "homestation.admin"
)

// Player is an online player as seen by the service.
type Player interface {
	ID() uuid.UUID
	Name() string
	HasPermission(perm string) bool
	InVehicle() bool
	Location() model.Point

	messages.Recipient
	teleport.Mover
}

// Deps are the collaborators of a Service.
type Deps struct {
	World    station.WorldQuery
	Matcher  station.Matcher
	Registry *station.Registry
	Profiles *profile.Store
	Ledger   *confirm.Ledger
	Gate     *economy.Gate
	Animator *teleport.Animator
	Messages *messages.Catalog
}

// Service handles player events.
//
// Not safe for concurrent use: every method must be called on the scheduler
// goroutine.
type Service struct {
	world    station.WorldQuery
	matcher  station.Matcher
	registry *station.Registry
	profiles *profile.Store
	ledger   *confirm.Ledger
	gate     *economy.Gate
	animator *teleport.Animator
	msgs     *messages.Catalog
	commands *Commands
}

// NewService creates a Service with the admin commands registered.
func NewService(d Deps) *Service {
	s := &Service{
		world:    d.World,
		matcher:  d.Matcher,
		registry: d.Registry,
		profiles: d.Profiles,
		ledger:   d.Ledger,
		gate:     d.Gate,
		animator: d.Animator,
		msgs:     d.Messages,
	}
	s.commands = NewCommands(d.Messages)
	s.commands.Register(&setMainSpawnCommand{svc: s})
	s.commands.Register(&addSpawnCommand{svc: s})
	return s
}

// PostInit validates the spawn stations once the world data is available.
func (s *Service) PostInit(ctx context.Context) {
	removed := s.registry.ValidateAll(ctx, s.world)
	slog.Info("homestations ready", "spawn_stations", s.registry.Len(), "removed", removed)
}

// Shutdown drops pending confirmations.
func (s *Service) Shutdown() {
	s.ledger.Reset()
}

// OnJoin loads the player's profile into the cache.
func (s *Service) OnJoin(ctx context.Context, p Player) {
	s.profiles.Get(ctx, p.ID(), p.Name())
}

// OnQuit drops the player's cached profile and pending confirmation.
func (s *Service) OnQuit(p Player) {
	s.profiles.Evict(p.ID())
	s.ledger.Forget(p.ID())
}

// Command runs an admin command. It returns false for unknown commands.
func (s *Service) Command(ctx context.Context, p Player, args []string) bool {
	return s.commands.Dispatch(ctx, p, args)
}

// OnInteract handles a player pressing the block at pos. It returns true if
// the block is a station trigger and the press was consumed.
func (s *Service) OnInteract(ctx context.Context, p Player, pos model.BlockPos) bool {
	if !s.matcher.IsTrigger(s.world, pos) {
		return false
	}
	if p.InVehicle() {
		return false
	}

	if s.matcher.IsUpper(s.world, pos) {
		if !p.HasPermission(PermissionUse) {
			s.msgs.Send(p, messages.NoPermission)
			return true
		}
		s.teleportFrom(ctx, p, pos.Down())
		return true
	}

	if s.matcher.IsLower(s.world, pos) {
		if !p.HasPermission(PermissionUse) {
			s.msgs.Send(p, messages.NoPermission)
			return true
		}
		s.selectStation(ctx, p, pos)
		return true
	}

	return false
}

// teleportFrom moves the player away from the station whose lower trigger
// is at current: from a spawn station home, from anywhere else to the
// player's spawn station.
func (s *Service) teleportFrom(ctx context.Context, p Player, current model.BlockPos) {
	prof := s.profiles.Get(ctx, p.ID(), p.Name())

	var (
		dest    model.BlockPos
		arrival messages.ID
	)
	if s.registry.IsSpawn(current) {
		if prof.Home == nil {
			s.msgs.Send(p, messages.NoHomeStationSet)
			return
		}
		dest = *prof.Home
		arrival = messages.TeleportToHome
	} else {
		if prof.Spawn == nil {
			s.msgs.Send(p, messages.NoSpawnStationSet)
			main, ok := s.registry.Main()
			if !ok {
				s.msgs.Send(p, messages.NoMainSpawnStationSet)
				return
			}
			prof.SetSpawn(main)
			s.save(ctx, p, prof)
		}
		dest = *prof.Spawn
		arrival = messages.TeleportToSpawn
	}

	facing, ok := s.matcher.MatchLower(s.world, dest)
	if !ok {
		if arrival == messages.TeleportToHome {
			s.msgs.Send(p, messages.HomeStationNotFound)
		} else {
			s.msgs.Send(p, messages.SpawnStationNotFound)
		}
		return
	}

	if !s.gate.Charge(ctx, p, current) {
		return
	}

	slog.Debug("teleporting player",
		"player", p.ID(),
		"from", current.String(),
		"to", dest.String())
	s.msgs.Send(p, arrival)
	s.animator.Teleport(p, p.Location(), dest, facing)
}

// selectStation makes the station at pos the player's spawn station (when
// it is one) or home station, after confirmation.
func (s *Service) selectStation(ctx context.Context, p Player, pos model.BlockPos) {
	prof := s.profiles.Get(ctx, p.ID(), p.Name())
	pending := s.ledger.Consume(p.ID())

	confirmID, doneID := messages.HomeStationSetConfirm, messages.HomeStationSet
	isSpawn := s.registry.IsSpawn(pos)
	if isSpawn {
		confirmID, doneID = messages.SpawnStationSetConfirm, messages.SpawnStationSet
	}

	if s.msgs.Enabled(confirmID) && !s.ledger.Applies(pending, confirm.KindSetStation, pos) {
		s.ledger.Request(p.ID(), confirm.KindSetStation, pos)
		s.msgs.Send(p, confirmID)
		return
	}

	if isSpawn {
		prof.SetSpawn(pos)
	} else {
		prof.SetHome(pos)
	}
	s.msgs.Send(p, doneID)
	s.save(ctx, p, prof)
}

func (s *Service) save(ctx context.Context, p Player, prof *profile.Profile) {
	if err := s.profiles.Save(ctx, p.ID(), prof); err != nil {
		slog.Error("saving player profile", "player", p.ID(), "error", err)
	}
}
