package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mhollis/bounce/internal/model"
)

type RedisDirectorySuite struct {
	suite.Suite
	mini      *miniredis.Miniredis
	directory *Directory
}

func TestRedisDirectorySuite(t *testing.T) {
	suite.Run(t, new(RedisDirectorySuite))
}

func (s *RedisDirectorySuite) SetupTest() {
	mini, err := miniredis.Run()
	s.Require().NoError(err)
	s.mini = mini

	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	s.directory = NewWithClient(client, DefaultConfig())
}

func (s *RedisDirectorySuite) TearDownTest() {
	s.NoError(s.directory.Close())
	s.mini.Close()
}

func (s *RedisDirectorySuite) TestPublishAndList() {
	rooms := []model.RoomInfo{
		{RoomID: 1042, Players: []model.ConnID{"c1"}, Status: model.RoomStatusWaiting},
		{RoomID: 4821, Players: []model.ConnID{"c2", "c3"}, Status: model.RoomStatusPlaying},
	}

	err := s.directory.Publish(context.Background(), rooms)
	s.Require().NoError(err)

	got, err := s.directory.List(context.Background())
	s.Require().NoError(err)
	s.Equal(rooms, got)
}

func (s *RedisDirectorySuite) TestListEmptyWhenNothingPublished() {
	got, err := s.directory.List(context.Background())
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *RedisDirectorySuite) TestPublishReplacesPreviousList() {
	ctx := context.Background()
	err := s.directory.Publish(ctx, []model.RoomInfo{
		{RoomID: 1042, Players: []model.ConnID{"c1"}, Status: model.RoomStatusWaiting},
	})
	s.Require().NoError(err)

	err = s.directory.Publish(ctx, []model.RoomInfo{})
	s.Require().NoError(err)

	got, err := s.directory.List(ctx)
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *RedisDirectorySuite) TestRoomListAgesOut() {
	err := s.directory.Publish(context.Background(), []model.RoomInfo{
		{RoomID: 4821, Players: []model.ConnID{"c1"}, Status: model.RoomStatusWaiting},
	})
	s.Require().NoError(err)

	s.mini.FastForward(DefaultConfig().RoomListTTL + time.Second)

	got, err := s.directory.List(context.Background())
	s.Require().NoError(err)
	s.Empty(got)
}
