package homestations

import (
	"context"
	"log/slog"
	"strings"

	"github.com/udisondev/homestations/internal/messages"
	"github.com/udisondev/homestations/internal/model"
)

// Command is an admin command (/homestation <name>).
type Command interface {
	// Handle executes the command. args includes the command name at [0].
	Handle(ctx context.Context, p Player, args []string) error
	// Names returns all registered command names.
	Names() []string
	// Permission returns the permission required to run the command.
	Permission() string
}

// Commands dispatches admin commands by name.
// Commands are registered once at startup, then read-only.
type Commands struct {
	msgs *messages.Catalog
	cmds map[string]Command // lowercase name → Command
}

// NewCommands creates an empty command table.
func NewCommands(msgs *messages.Catalog) *Commands {
	return &Commands{msgs: msgs, cmds: make(map[string]Command, 4)}
}

// Register registers cmd under all of its names, case-insensitively.
func (c *Commands) Register(cmd Command) {
	for _, name := range cmd.Names() {
		c.cmds[strings.ToLower(name)] = cmd
	}
}

// Len returns the number of registered names.
func (c *Commands) Len() int {
	return len(c.cmds)
}

// Dispatch runs the command named by args[0].
// Returns false if no such command exists.
func (c *Commands) Dispatch(ctx context.Context, p Player, args []string) bool {
	if len(args) == 0 {
		return false
	}
	name := strings.ToLower(args[0])
	cmd, ok := c.cmds[name]
	if !ok {
		return false
	}

	if !p.HasPermission(cmd.Permission()) {
		c.msgs.Send(p, messages.NoPermission)
		slog.Warn("admin command denied",
			"player", p.Name(),
			"command", name)
		return true
	}

	slog.Info("admin command",
		"player", p.Name(),
		"command", strings.Join(args, " "))

	if err := cmd.Handle(ctx, p, args); err != nil {
		slog.Error("admin command failed",
			"player", p.Name(),
			"command", name,
			"error", err)
	}
	return true
}

// setMainSpawnCommand handles "setMainSpawn": the station the player stands
// in becomes the main spawn station.
type setMainSpawnCommand struct {
	svc *Service
}

func (c *setMainSpawnCommand) Names() []string    { return []string{"setMainSpawn"} }
func (c *setMainSpawnCommand) Permission() string { return PermissionAdmin }

func (c *setMainSpawnCommand) Handle(ctx context.Context, p Player, args []string) error {
	pos, ok := c.svc.stationAt(p)
	if !ok {
		return nil
	}
	err := c.svc.registry.SetMain(ctx, pos)
	c.svc.ledger.PurgeLocation(pos)
	c.svc.msgs.Send(p, messages.MainSpawnStationSet)
	return err
}

// addSpawnCommand handles "addSpawn": the station the player stands in
// becomes a spawn station.
type addSpawnCommand struct {
	svc *Service
}

func (c *addSpawnCommand) Names() []string    { return []string{"addSpawn"} }
func (c *addSpawnCommand) Permission() string { return PermissionAdmin }

func (c *addSpawnCommand) Handle(ctx context.Context, p Player, args []string) error {
	pos, ok := c.svc.stationAt(p)
	if !ok {
		return nil
	}
	err := c.svc.registry.AddSpawn(ctx, pos)
	c.svc.ledger.PurgeLocation(pos)
	c.svc.msgs.Send(p, messages.SpawnStationAdded)
	return err
}

// stationAt returns the lower trigger the player is standing in, or sends
// ThisIsNoStation.
func (s *Service) stationAt(p Player) (model.BlockPos, bool) {
	pos := p.Location().Block()
	if !s.matcher.IsLower(s.world, pos) {
		s.msgs.Send(p, messages.ThisIsNoStation)
		return model.BlockPos{}, false
	}
	return pos, true
}
