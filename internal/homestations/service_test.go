package homestations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/udisondev/homestations/internal/confirm"
	"github.com/udisondev/homestations/internal/economy"
	"github.com/udisondev/homestations/internal/messages"
	"github.com/udisondev/homestations/internal/model"
	"github.com/udisondev/homestations/internal/profile"
	"github.com/udisondev/homestations/internal/scheduler"
	"github.com/udisondev/homestations/internal/station"
	"github.com/udisondev/homestations/internal/storage"
	"github.com/udisondev/homestations/internal/teleport"
	"github.com/udisondev/homestations/internal/testutil"
	"github.com/udisondev/homestations/internal/world"
)

var (
	spawnPos = model.NewBlockPos(testutil.TestWorldName, 0, 64, 0)
	homePos  = model.NewBlockPos(testutil.TestWorldName, 50, 64, 50)
)

// ServiceSuite runs the service against an in-memory world with one spawn
// station (facing north) and one unregistered station (facing east).
type ServiceSuite struct {
	suite.Suite

	ctx      context.Context
	world    *world.Mirror
	stations *testutil.MemoryStationStore
	lines    *testutil.MemoryLineStore
	balances *testutil.MemoryBalanceStore
	registry *station.Registry
	profiles *profile.Store
	ledger   *confirm.Ledger
	loop     *scheduler.Loop
	fx       *testutil.EffectRecorder
	msgs     *messages.Catalog
	svc      *Service

	player *testutil.FakePlayer
	admin  *testutil.FakePlayer
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

// idCatalog renders every message as its own id.
func idCatalog() *messages.Catalog {
	texts := make(map[messages.ID]string, len(messages.All))
	for _, id := range messages.All {
		texts[id] = string(id)
	}
	return messages.NewCatalog(texts)
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.world = testutil.NewTestWorld(s.T(), 256)
	testutil.BuildStation(s.T(), s.world, spawnPos, model.FaceNorth)
	testutil.BuildStation(s.T(), s.world, homePos, model.FaceEast)

	s.stations = testutil.NewMemoryStationStore(storage.StationRecord{
		Spawns: []string{spawnPos.String()},
		Main:   storage.NotSet,
	})
	s.lines = testutil.NewMemoryLineStore()
	s.balances = testutil.NewMemoryBalanceStore()
	s.msgs = idCatalog()
	s.ledger = confirm.NewLedger()
	s.loop = scheduler.NewLoop(0)
	s.fx = &testutil.EffectRecorder{}

	s.registry = station.NewRegistry(s.stations, station.NewMatcher(station.DefaultPattern()))
	s.Require().NoError(s.registry.Load(s.ctx))
	s.profiles = profile.NewStore(s.lines)

	s.svc = s.newService(0)

	s.player = testutil.NewFakePlayer("alice", PermissionUse)
	s.admin = testutil.NewFakePlayer("root", PermissionUse, PermissionAdmin)
}

func (s *ServiceSuite) newService(fee float64) *Service {
	return NewService(Deps{
		World:    s.world,
		Matcher:  station.NewMatcher(station.DefaultPattern()),
		Registry: s.registry,
		Profiles: s.profiles,
		Ledger:   s.ledger,
		Gate:     economy.NewGate(fee, economy.NewBank(s.balances, 10), s.ledger, s.msgs),
		Animator: teleport.NewAnimator(s.loop, s.fx, s.world, teleport.Settings{
			UpVelocity:      2,
			DelayTicks:      15,
			MaxUpRange:      80,
			EffectDistance:  2.5,
			DownOffset:      3,
			TeleportYOffset: 3,
		}),
		Messages: s.msgs,
	})
}

func (s *ServiceSuite) drainMessages(p *testutil.FakePlayer) []string {
	out := p.Messages()
	p.ResetMessages()
	return out
}

func (s *ServiceSuite) runTicks(n int) {
	for range n {
		s.loop.Step()
	}
}

func (s *ServiceSuite) storedProfile(p *testutil.FakePlayer) *profile.Profile {
	lines, err := s.lines.ReadLines(s.ctx, p.ID().String())
	if err != nil {
		return nil
	}
	return profile.Decode(p.ID().String(), lines)
}

func (s *ServiceSuite) setHome(p *testutil.FakePlayer, pos model.BlockPos) {
	prof := s.profiles.Get(s.ctx, p.ID(), p.Name())
	prof.SetHome(pos)
	s.Require().NoError(s.profiles.Save(s.ctx, p.ID(), prof))
}

func (s *ServiceSuite) TestIgnoresNonTriggerBlocks() {
	s.False(s.svc.OnInteract(s.ctx, s.player, spawnPos.Down()))
	s.False(s.svc.OnInteract(s.ctx, s.player, model.NewBlockPos(testutil.TestWorldName, 9, 9, 9)))
	s.Empty(s.player.Messages())
}

func (s *ServiceSuite) TestIgnoresPlayersInVehicles() {
	s.player.Vehicle = true
	s.False(s.svc.OnInteract(s.ctx, s.player, spawnPos))
	s.False(s.svc.OnInteract(s.ctx, s.player, spawnPos.Up()))
	s.Empty(s.player.Messages())
}

func (s *ServiceSuite) TestLooseButtonIsNotConsumed() {
	loose := model.NewBlockPos(testutil.TestWorldName, 20, 64, 20)
	s.Require().NoError(s.world.SetBlock(loose, model.Block{Material: model.MaterialStoneButton, Attached: model.FaceNorth}))

	s.False(s.svc.OnInteract(s.ctx, s.player, loose))
}

func (s *ServiceSuite) TestNoPermission() {
	guest := testutil.NewFakePlayer("guest")

	s.True(s.svc.OnInteract(s.ctx, guest, spawnPos.Up()))
	s.True(s.svc.OnInteract(s.ctx, guest, homePos))
	s.Equal([]string{"NoPermission", "NoPermission"}, guest.Messages())
	s.Zero(s.ledger.Len())
}

func (s *ServiceSuite) TestSetHomeStationNeedsConfirmation() {
	s.True(s.svc.OnInteract(s.ctx, s.player, homePos))
	s.Equal([]string{"HomeStationSetConfirm"}, s.drainMessages(s.player))
	s.Nil(s.storedProfile(s.player))

	s.True(s.svc.OnInteract(s.ctx, s.player, homePos))
	s.Equal([]string{"HomeStationSet"}, s.drainMessages(s.player))

	stored := s.storedProfile(s.player)
	s.Require().NotNil(stored)
	s.Equal(homePos, *stored.Home)
	s.Nil(stored.Spawn)
	s.Zero(s.ledger.Len())
}

func (s *ServiceSuite) TestSetSpawnStation() {
	s.True(s.svc.OnInteract(s.ctx, s.player, spawnPos))
	s.Equal([]string{"SpawnStationSetConfirm"}, s.drainMessages(s.player))

	s.True(s.svc.OnInteract(s.ctx, s.player, spawnPos))
	s.Equal([]string{"SpawnStationSet"}, s.drainMessages(s.player))

	stored := s.storedProfile(s.player)
	s.Require().NotNil(stored)
	s.Equal(spawnPos, *stored.Spawn)
	s.Nil(stored.Home)
}

func (s *ServiceSuite) TestConfirmationIsBoundToStation() {
	s.svc.OnInteract(s.ctx, s.player, homePos)
	s.svc.OnInteract(s.ctx, s.player, spawnPos)
	s.Equal([]string{"HomeStationSetConfirm", "SpawnStationSetConfirm"}, s.drainMessages(s.player))
	s.Nil(s.storedProfile(s.player))
}

func (s *ServiceSuite) TestSetStationWithoutConfirmMessage() {
	s.msgs = messages.NewCatalog(map[messages.ID]string{
		messages.HomeStationSetConfirm: "",
		messages.HomeStationSet:        "done",
	})
	s.svc = s.newService(0)

	s.True(s.svc.OnInteract(s.ctx, s.player, homePos))
	s.Equal([]string{"done"}, s.player.Messages())
	s.Equal(homePos, *s.storedProfile(s.player).Home)
}

func (s *ServiceSuite) TestTeleportHomeWithoutHome() {
	s.True(s.svc.OnInteract(s.ctx, s.player, spawnPos.Up()))
	s.Equal([]string{"NoHomeStationSet"}, s.player.Messages())
	s.Zero(s.loop.Pending())
}

func (s *ServiceSuite) TestTeleportHome() {
	s.setHome(s.player, homePos)

	s.True(s.svc.OnInteract(s.ctx, s.player, spawnPos.Up()))
	s.Equal([]string{"TeleportToHome"}, s.player.Messages())
	s.Equal([]model.Vector{{Y: 2}}, s.player.Velocities())

	s.runTicks(15)
	s.Require().Len(s.player.Relocations(), 1)
	got := s.player.Relocations()[0]
	s.Equal(model.NewPoint(testutil.TestWorldName, 50.5, 67, 50.5), got.To)
	s.Equal(model.InvertYaw(model.FaceEast.Yaw()), got.Yaw)
	s.NotEmpty(s.fx.Played())
}

func (s *ServiceSuite) TestTeleportHomeStationGone() {
	s.setHome(s.player, homePos)
	s.Require().NoError(s.world.ClearBlock(homePos.Down()))

	s.True(s.svc.OnInteract(s.ctx, s.player, spawnPos.Up()))
	s.Equal([]string{"HomeStationNotFound"}, s.player.Messages())
	s.Empty(s.player.Velocities())
}

func (s *ServiceSuite) TestTeleportToSpawnWithoutMain() {
	s.True(s.svc.OnInteract(s.ctx, s.player, homePos.Up()))
	s.Equal([]string{"NoSpawnStationSet", "NoMainSpawnStationSet"}, s.player.Messages())
	s.Empty(s.player.Velocities())
}

func (s *ServiceSuite) TestTeleportToSpawnAdoptsMain() {
	s.Require().NoError(s.registry.SetMain(s.ctx, spawnPos))

	s.True(s.svc.OnInteract(s.ctx, s.player, homePos.Up()))
	s.Equal([]string{"NoSpawnStationSet", "TeleportToSpawn"}, s.drainMessages(s.player))

	stored := s.storedProfile(s.player)
	s.Require().NotNil(stored)
	s.Equal(spawnPos, *stored.Spawn, "main station becomes the player's spawn")

	s.runTicks(15)
	s.Require().Len(s.player.Relocations(), 1)
	s.Equal(model.NewPoint(testutil.TestWorldName, 0.5, 67, 0.5), s.player.Relocations()[0].To)

	// second trip uses the adopted spawn without the notice
	s.svc.OnInteract(s.ctx, s.player, homePos.Up())
	s.Equal([]string{"TeleportToSpawn"}, s.player.Messages())
}

func (s *ServiceSuite) TestTeleportToSpawnStationGone() {
	prof := s.profiles.Get(s.ctx, s.player.ID(), s.player.Name())
	prof.SetSpawn(model.NewBlockPos(testutil.TestWorldName, 500, 64, 500))

	s.True(s.svc.OnInteract(s.ctx, s.player, homePos.Up()))
	s.Equal([]string{"SpawnStationNotFound"}, s.player.Messages())
}

func (s *ServiceSuite) TestTeleportCosts() {
	s.svc = s.newService(5)
	s.setHome(s.player, homePos)

	s.True(s.svc.OnInteract(s.ctx, s.player, spawnPos.Up()))
	s.Equal([]string{"TeleportCostsConfirm"}, s.drainMessages(s.player))
	s.Empty(s.player.Velocities())

	s.True(s.svc.OnInteract(s.ctx, s.player, spawnPos.Up()))
	s.Equal([]string{"TeleportCostsApplied", "TeleportToHome"}, s.drainMessages(s.player))
	s.Equal([]model.Vector{{Y: 2}}, s.player.Velocities())

	s.runTicks(15)
	s.Require().Len(s.player.Relocations(), 1)
	s.Equal(model.NewPoint(testutil.TestWorldName, 50.5, 67, 50.5), s.player.Relocations()[0].To)

	balance, _, err := s.balances.Balance(s.ctx, s.player.ID())
	s.Require().NoError(err)
	s.Equal(5.0, balance)
}

func (s *ServiceSuite) TestTeleportCostsNotEnoughMoney() {
	s.svc = s.newService(5)
	s.setHome(s.player, homePos)
	s.balances.Set(s.player.ID(), 1)

	s.True(s.svc.OnInteract(s.ctx, s.player, spawnPos.Up()))
	s.Equal([]string{"NotEnoughMoney"}, s.player.Messages())
	s.Empty(s.player.Velocities())
}

func (s *ServiceSuite) TestJoinAndQuit() {
	s.svc.OnJoin(s.ctx, s.player)
	s.True(s.profiles.Cached(s.player.ID()))

	s.svc.OnInteract(s.ctx, s.player, homePos)
	s.Equal(1, s.ledger.Len())

	s.svc.OnQuit(s.player)
	s.False(s.profiles.Cached(s.player.ID()))
	s.Zero(s.ledger.Len())
}

func (s *ServiceSuite) TestPostInitDropsBrokenStations() {
	s.Require().NoError(s.registry.SetMain(s.ctx, spawnPos))
	s.Require().NoError(s.world.ClearBlock(spawnPos.Up().Up().Relative(model.FaceNorth)))

	s.svc.PostInit(s.ctx)

	s.False(s.registry.IsSpawn(spawnPos))
	_, ok := s.registry.Main()
	s.False(ok)
	s.Equal(storage.NotSet, s.stations.Record().Main)
}

func (s *ServiceSuite) TestShutdownResetsLedger() {
	s.svc.OnInteract(s.ctx, s.player, homePos)
	s.svc.Shutdown()
	s.Zero(s.ledger.Len())
}
