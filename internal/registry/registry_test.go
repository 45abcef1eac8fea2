package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mhollis/bounce/internal/dependencies/mocks"
	"github.com/mhollis/bounce/internal/game"
	"github.com/mhollis/bounce/internal/model"
	"github.com/mhollis/bounce/internal/testutil"
)

type RegistrySuite struct {
	suite.Suite
	clock    *mocks.MockClock
	random   *mocks.MockRandom
	registry *Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.registry = New(game.DefaultConfig(), s.clock, s.random, testutil.NopLogger())
}

// checkMembershipInvariant verifies that a connection is indexed iff it is a
// member of exactly one room.
func (s *RegistrySuite) checkMembershipInvariant(conns ...model.ConnID) {
	infos := s.registry.Snapshot()
	for _, c := range conns {
		memberships := 0
		var memberOf model.RoomID
		for _, info := range infos {
			for _, m := range info.Players {
				if m == c {
					memberships++
					memberOf = info.RoomID
				}
			}
		}
		room, indexed := s.registry.RoomOf(c)
		if indexed {
			s.Equal(1, memberships, "indexed conn %s must be in exactly one room", c)
			s.Equal(memberOf, room.ID())
		} else {
			s.Equal(0, memberships, "unindexed conn %s must be in no room", c)
		}
	}
}

// Create tests

func (s *RegistrySuite) TestCreateAllocatesRequestedID() {
	s.random.QueueIntn(3821) // 1000 + 3821 = 4821

	room, err := s.registry.Create("c1")
	s.Require().NoError(err)

	s.Equal(model.RoomID(4821), room.ID())
	s.Equal(model.RoomStatusWaiting, room.Status())
	s.Equal([]model.ConnID{"c1"}, room.Members())
}

func (s *RegistrySuite) TestCreateResamplesOnCollision() {
	s.random.QueueIntn(3821, 3821, 42)

	first, err := s.registry.Create("c1")
	s.Require().NoError(err)
	second, err := s.registry.Create("c2")
	s.Require().NoError(err)

	s.Equal(model.RoomID(4821), first.ID())
	s.Equal(model.RoomID(1042), second.ID())
	s.NotEqual(first.ID(), second.ID())
}

func (s *RegistrySuite) TestCreateFailsWhenAlreadyInRoom() {
	s.random.QueueIntn(3821)
	_, err := s.registry.Create("c1")
	s.Require().NoError(err)

	_, err = s.registry.Create("c1")
	s.ErrorIs(err, model.ErrAlreadyInRoom)
}

// Join tests

func (s *RegistrySuite) TestJoinAppendsMemberInOrder() {
	s.random.QueueIntn(3821)
	_, _ = s.registry.Create("c1")

	room, err := s.registry.Join("c2", 4821)
	s.Require().NoError(err)

	s.Equal([]model.ConnID{"c1", "c2"}, room.Members())
	s.checkMembershipInvariant("c1", "c2")
}

func (s *RegistrySuite) TestJoinFailsWhenRoomNotFound() {
	_, err := s.registry.Join("c1", 9999)
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *RegistrySuite) TestJoinFailsWhenAlreadyInRoom() {
	s.random.QueueIntn(3821, 42)
	_, _ = s.registry.Create("c1")
	_, _ = s.registry.Create("c2")

	_, err := s.registry.Join("c2", 4821)
	s.ErrorIs(err, model.ErrAlreadyInRoom)
}

func (s *RegistrySuite) TestJoinFailsAfterGameStarted() {
	s.random.QueueIntn(3821)
	_, _ = s.registry.Create("c1")
	_, _ = s.registry.Join("c2", 4821)
	_, _, err := s.registry.Start("c1")
	s.Require().NoError(err)

	_, err = s.registry.Join("c3", 4821)
	s.ErrorIs(err, model.ErrGameAlreadyStarted)
}

// Leave tests

func (s *RegistrySuite) TestLeaveUnmappedIsNoOp() {
	_, ok := s.registry.Leave("ghost")
	s.False(ok)
}

func (s *RegistrySuite) TestLeaveKeepsRoomWithRemainingMembers() {
	s.random.QueueIntn(3821)
	_, _ = s.registry.Create("c1")
	_, _ = s.registry.Join("c2", 4821)

	result, ok := s.registry.Leave("c1")
	s.Require().True(ok)

	s.Equal(model.RoomID(4821), result.RoomID)
	s.False(result.Destroyed)
	s.Equal([]model.ConnID{"c2"}, result.Remaining)
	s.checkMembershipInvariant("c1", "c2")
}

func (s *RegistrySuite) TestLeaveLastMemberDestroysRoom() {
	s.random.QueueIntn(3821)
	_, _ = s.registry.Create("c1")

	result, ok := s.registry.Leave("c1")
	s.Require().True(ok)

	s.True(result.Destroyed)
	_, found := s.registry.Get(4821)
	s.False(found)
	s.checkMembershipInvariant("c1")
}

func (s *RegistrySuite) TestLeaveDuringPlayRemovesKinematicState() {
	s.random.QueueIntn(3821)
	_, _ = s.registry.Create("c1")
	_, _ = s.registry.Join("c2", 4821)
	_, _, _ = s.registry.Start("c1")

	_, ok := s.registry.Leave("c2")
	s.Require().True(ok)

	room, found := s.registry.Get(4821)
	s.Require().True(found)
	room.WithState(func(st *game.State) {
		s.False(st.HasPlayer("c2"))
		s.True(st.HasPlayer("c1"))
	})
}

func (s *RegistrySuite) TestLeaveDestroyingRoomCancelsLoop() {
	s.random.QueueIntn(3821)
	_, _ = s.registry.Create("c1")

	cancelled := false
	s.registry.AttachLoop(4821, func() { cancelled = true })

	_, _ = s.registry.Leave("c1")
	s.True(cancelled)
}

func (s *RegistrySuite) TestAttachLoopAfterDestructionCancelsImmediately() {
	cancelled := false
	s.registry.AttachLoop(4821, func() { cancelled = true })
	s.True(cancelled)
}

func (s *RegistrySuite) TestDisconnectCleansUpMembership() {
	s.random.QueueIntn(3821)
	_, _ = s.registry.Create("c1")
	_, _ = s.registry.Join("c2", 4821)

	result, ok := s.registry.Disconnect("c1")
	s.Require().True(ok)
	s.False(result.Destroyed)
	s.checkMembershipInvariant("c1", "c2")
}

// Start tests

func (s *RegistrySuite) TestStartTransitionsAndInitializesPlayers() {
	s.random.QueueIntn(3821)
	_, _ = s.registry.Create("c1")
	_, _ = s.registry.Join("c2", 4821)

	room, snap, err := s.registry.Start("c1")
	s.Require().NoError(err)

	s.Equal(model.RoomStatusPlaying, room.Status())
	s.Require().Len(snap.Players, 2)
	s.Equal(model.Team(0), snap.Players["c1"].Team)
	s.Equal(model.Team(1), snap.Players["c2"].Team)
	s.Equal(model.Vec{X: 150, Y: 112.5}, snap.Players["c1"].Position)
	s.Equal(model.Vec{X: 150, Y: 337.5}, snap.Players["c2"].Position)
}

func (s *RegistrySuite) TestStartFailsWhenNotInRoom() {
	_, _, err := s.registry.Start("ghost")
	s.ErrorIs(err, model.ErrNotInRoom)
}

func (s *RegistrySuite) TestStartTwiceFails() {
	s.random.QueueIntn(3821)
	_, _ = s.registry.Create("c1")
	_, _, err := s.registry.Start("c1")
	s.Require().NoError(err)

	_, _, err = s.registry.Start("c1")
	s.ErrorIs(err, model.ErrGameAlreadyStarted)
}

func (s *RegistrySuite) TestStartWithStaleIndexStillNamesRoom() {
	// Force an index entry whose room is gone; Start must fail and the index
	// must still answer with the room id so callers can report it.
	s.registry.playerIndex["c1"] = 4821

	_, _, err := s.registry.Start("c1")
	s.ErrorIs(err, model.ErrRoomNotFound)

	id, ok := s.registry.RoomIDOf("c1")
	s.Require().True(ok)
	s.Equal(model.RoomID(4821), id)
}

func (s *RegistrySuite) TestRoomIDOfUnmappedConn() {
	_, ok := s.registry.RoomIDOf("ghost")
	s.False(ok)
}

// Snapshot tests

func (s *RegistrySuite) TestSnapshotListsRoomsSortedByID() {
	s.random.QueueIntn(5000, 100)
	_, _ = s.registry.Create("c1")
	_, _ = s.registry.Create("c2")

	infos := s.registry.Snapshot()

	s.Require().Len(infos, 2)
	s.Equal(model.RoomID(1100), infos[0].RoomID)
	s.Equal(model.RoomID(6000), infos[1].RoomID)
}

func (s *RegistrySuite) TestSnapshotIdempotentWithoutMutation() {
	s.random.QueueIntn(3821)
	_, _ = s.registry.Create("c1")
	_, _ = s.registry.Join("c2", 4821)

	first := s.registry.Snapshot()
	second := s.registry.Snapshot()

	s.Equal(first, second)
}

func (s *RegistrySuite) TestSnapshotReflectsStatus() {
	s.random.QueueIntn(3821)
	_, _ = s.registry.Create("c1")
	_, _, _ = s.registry.Start("c1")

	infos := s.registry.Snapshot()
	s.Require().Len(infos, 1)
	s.Equal(model.RoomStatusPlaying, infos[0].Status)
	s.Equal([]model.ConnID{"c1"}, infos[0].Players)
}
