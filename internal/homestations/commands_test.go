package homestations

import (
	"github.com/udisondev/homestations/internal/confirm"
	"github.com/udisondev/homestations/internal/model"
	"github.com/udisondev/homestations/internal/testutil"
)

func (s *ServiceSuite) TestCommandsRegistered() {
	s.Equal(2, s.svc.commands.Len())
}

func (s *ServiceSuite) TestUnknownCommand() {
	s.False(s.svc.Command(s.ctx, s.admin, []string{"fly"}))
	s.False(s.svc.Command(s.ctx, s.admin, nil))
	s.Empty(s.admin.Messages())
}

func (s *ServiceSuite) TestCommandNeedsAdmin() {
	s.player.Pos = homePos.Center()

	s.True(s.svc.Command(s.ctx, s.player, []string{"addSpawn"}))
	s.Equal([]string{"NoPermission"}, s.player.Messages())
	s.False(s.registry.IsSpawn(homePos))
}

func (s *ServiceSuite) TestAddSpawn() {
	s.admin.Pos = homePos.Center().Add(0.2, 0.3, -0.1)

	s.True(s.svc.Command(s.ctx, s.admin, []string{"ADDSPAWN"}))
	s.Equal([]string{"SpawnStationAdded"}, s.admin.Messages())
	s.True(s.registry.IsSpawn(homePos))
	s.Contains(s.stations.Record().Spawns, homePos.String())
}

func (s *ServiceSuite) TestAddSpawnOutsideStation() {
	s.admin.Pos = model.NewPoint(testutil.TestWorldName, 30.5, 64, 30.5)

	s.True(s.svc.Command(s.ctx, s.admin, []string{"addSpawn"}))
	s.Equal([]string{"ThisIsNoStation"}, s.admin.Messages())
	s.Equal(1, s.registry.Len())
}

func (s *ServiceSuite) TestSetMainSpawnPurgesConfirmations() {
	// alice is about to make homePos her home station
	s.svc.OnInteract(s.ctx, s.player, homePos)
	s.Equal(1, s.ledger.Len())

	other := testutil.NewFakePlayer("bob", PermissionUse)
	s.ledger.Request(other.ID(), confirm.KindSetStation, spawnPos)

	s.admin.Pos = homePos.Center()
	s.True(s.svc.Command(s.ctx, s.admin, []string{"setMainSpawn"}))
	s.Equal([]string{"MainSpawnStationSet"}, s.admin.Messages())

	main, ok := s.registry.Main()
	s.True(ok)
	s.Equal(homePos, main)
	s.True(s.registry.IsSpawn(homePos))
	s.Equal(homePos.String(), s.stations.Record().Main)
	s.Equal(1, s.ledger.Len(), "only the confirmation for the new main station is dropped")

	// the pending home selection is gone, the station is now a spawn station
	s.player.Reset()
	s.svc.OnInteract(s.ctx, s.player, homePos)
	s.Equal([]string{"SpawnStationSetConfirm"}, s.player.Messages())
}

func (s *ServiceSuite) TestCommandPersistFailureStillApplies() {
	s.stations.FailSaves = true
	s.admin.Pos = homePos.Center()

	s.True(s.svc.Command(s.ctx, s.admin, []string{"addSpawn"}))
	s.Equal([]string{"SpawnStationAdded"}, s.admin.Messages())
	s.True(s.registry.IsSpawn(homePos))
}
