package event

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/veldrin/orepay/internal/models"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	mr      *miniredis.Miniredis
	client  *redis.Client
	repo    Repository
	testNow time.Time
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	// Create a new miniredis server for each test
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	repo, err := NewRedis(&Config{
		RedisClient: s.client,
	})
	s.Require().NoError(err)
	s.repo = repo

	s.testNow = time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC)
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) TestSaveAndGetEvent() {
	evt := &models.MiningEvent{
		ID:                "test-event-id",
		GuildID:           "test-guild-id",
		Status:            models.EventStatusActive,
		TrackedChannelIDs: []string{"channel-a", "channel-b"},
		CreatedBy:         "test-user-id",
		StartTime:         s.testNow,
	}

	err := s.repo.SaveEvent(context.Background(), &SaveEventInput{
		Event: evt,
	})
	s.Require().NoError(err)

	retrieved, err := s.repo.GetEvent(context.Background(), &GetEventInput{
		EventID: "test-event-id",
	})
	s.Require().NoError(err)
	s.Require().NotNil(retrieved)

	s.Equal("test-event-id", retrieved.ID)
	s.Equal("test-guild-id", retrieved.GuildID)
	s.Equal(models.EventStatusActive, retrieved.Status)
	s.Equal([]string{"channel-a", "channel-b"}, retrieved.TrackedChannelIDs)
	s.Equal(s.testNow.Unix(), retrieved.StartTime.Unix())
}

func (s *RedisRepositoryTestSuite) TestGetActiveEvent() {
	evt := &models.MiningEvent{
		ID:        "test-event-id",
		GuildID:   "test-guild-id",
		Status:    models.EventStatusActive,
		StartTime: s.testNow,
	}

	err := s.repo.SaveEvent(context.Background(), &SaveEventInput{
		Event: evt,
	})
	s.Require().NoError(err)

	active, err := s.repo.GetActiveEvent(context.Background(), &GetActiveEventInput{
		GuildID: "test-guild-id",
	})
	s.Require().NoError(err)
	s.Equal("test-event-id", active.ID)

	// Completing the event must clear the guild's active pointer
	evt.Status = models.EventStatusCompleted
	evt.EndTime = s.testNow.Add(2 * time.Hour)
	err = s.repo.SaveEvent(context.Background(), &SaveEventInput{
		Event: evt,
	})
	s.Require().NoError(err)

	_, err = s.repo.GetActiveEvent(context.Background(), &GetActiveEventInput{
		GuildID: "test-guild-id",
	})
	s.Require().Error(err)
	s.Equal(ErrEventNotFound, err)
}

func (s *RedisRepositoryTestSuite) TestActivePointerFollowsNewestActiveEvent() {
	first := &models.MiningEvent{
		ID:        "event-1",
		GuildID:   "test-guild-id",
		Status:    models.EventStatusCompleted,
		StartTime: s.testNow,
	}
	second := &models.MiningEvent{
		ID:        "event-2",
		GuildID:   "test-guild-id",
		Status:    models.EventStatusActive,
		StartTime: s.testNow.Add(time.Hour),
	}

	s.Require().NoError(s.repo.SaveEvent(context.Background(), &SaveEventInput{Event: first}))
	s.Require().NoError(s.repo.SaveEvent(context.Background(), &SaveEventInput{Event: second}))

	active, err := s.repo.GetActiveEvent(context.Background(), &GetActiveEventInput{
		GuildID: "test-guild-id",
	})
	s.Require().NoError(err)
	s.Equal("event-2", active.ID)

	// Saving an older, non-active event must not disturb the pointer
	s.Require().NoError(s.repo.SaveEvent(context.Background(), &SaveEventInput{Event: first}))

	active, err = s.repo.GetActiveEvent(context.Background(), &GetActiveEventInput{
		GuildID: "test-guild-id",
	})
	s.Require().NoError(err)
	s.Equal("event-2", active.ID)
}

func (s *RedisRepositoryTestSuite) TestDeleteEvent() {
	evt := &models.MiningEvent{
		ID:        "test-event-id",
		GuildID:   "test-guild-id",
		Status:    models.EventStatusActive,
		StartTime: s.testNow,
	}

	err := s.repo.SaveEvent(context.Background(), &SaveEventInput{
		Event: evt,
	})
	s.Require().NoError(err)

	err = s.repo.DeleteEvent(context.Background(), &DeleteEventInput{
		EventID: "test-event-id",
	})
	s.Require().NoError(err)

	_, err = s.repo.GetEvent(context.Background(), &GetEventInput{
		EventID: "test-event-id",
	})
	s.Require().Error(err)
	s.Equal(ErrEventNotFound, err)

	_, err = s.repo.GetActiveEvent(context.Background(), &GetActiveEventInput{
		GuildID: "test-guild-id",
	})
	s.Require().Error(err)
	s.Equal(ErrEventNotFound, err)
}

func (s *RedisRepositoryTestSuite) TestGetNonExistentEvent() {
	_, err := s.repo.GetEvent(context.Background(), &GetEventInput{
		EventID: "non-existent-event",
	})
	s.Require().Error(err)
	s.Equal(ErrEventNotFound, err)
}
