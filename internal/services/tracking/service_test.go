package tracking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	clockMocks "github.com/veldrin/orepay/internal/common/clock/mocks"
	uuidMocks "github.com/veldrin/orepay/internal/common/uuid/mocks"
	"github.com/veldrin/orepay/internal/models"
	eventRepo "github.com/veldrin/orepay/internal/repositories/event"
	eventMocks "github.com/veldrin/orepay/internal/repositories/event/mocks"
	participationRepo "github.com/veldrin/orepay/internal/repositories/participation"
	participationMocks "github.com/veldrin/orepay/internal/repositories/participation/mocks"
)

type TrackingServiceTestSuite struct {
	suite.Suite
	mockCtrl      *gomock.Controller
	mockEventRepo *eventMocks.MockRepository
	mockPartRepo  *participationMocks.MockRepository
	mockClock     *clockMocks.MockClock
	mockUUID      *uuidMocks.MockUUID
	service       Service
	ctx           context.Context

	// Test data
	testStart   time.Time
	testGuildID string

	// now is the movable clock value returned by the mock
	now time.Time

	// Captured persistence calls
	savedMu       sync.Mutex
	savedSegments []*models.Segment
}

func (s *TrackingServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockEventRepo = eventMocks.NewMockRepository(s.mockCtrl)
	s.mockPartRepo = participationMocks.NewMockRepository(s.mockCtrl)
	s.mockClock = clockMocks.NewMockClock(s.mockCtrl)
	s.mockUUID = uuidMocks.NewMockUUID(s.mockCtrl)

	s.ctx = context.Background()
	s.testStart = time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC)
	s.testGuildID = "test-guild-id"
	s.now = s.testStart
	s.savedSegments = nil

	s.mockClock.EXPECT().Now().DoAndReturn(func() time.Time {
		return s.now
	}).AnyTimes()

	uuidCounter := 0
	s.mockUUID.EXPECT().NewUUID().DoAndReturn(func() string {
		uuidCounter++
		return fmt.Sprintf("uuid-%d", uuidCounter)
	}).AnyTimes()

	svc, err := New(&Config{
		EventRepo:         s.mockEventRepo,
		ParticipationRepo: s.mockPartRepo,
		Clock:             s.mockClock,
		UUIDGenerator:     s.mockUUID,
		SaveRetries:       1,
	})
	s.Require().NoError(err)
	s.service = svc
}

func (s *TrackingServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestTrackingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TrackingServiceTestSuite))
}

// expectNoActiveEvent sets up the event repo for a fresh guild
func (s *TrackingServiceTestSuite) expectNoActiveEvent() {
	s.mockEventRepo.EXPECT().
		GetActiveEvent(gomock.Any(), &eventRepo.GetActiveEventInput{
			GuildID: s.testGuildID,
		}).
		Return(nil, eventRepo.ErrEventNotFound)
}

// expectPersistence captures saved segments and accepts contribution upserts
func (s *TrackingServiceTestSuite) expectPersistence() {
	s.mockPartRepo.EXPECT().
		SaveSegment(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *participationRepo.SaveSegmentInput) error {
			s.savedMu.Lock()
			defer s.savedMu.Unlock()
			s.savedSegments = append(s.savedSegments, input.Segment)
			return nil
		}).
		AnyTimes()

	s.mockPartRepo.EXPECT().
		UpsertContribution(gomock.Any(), gomock.Any()).
		Return(nil).
		AnyTimes()
}

// startEvent starts an event tracking channel-a and channel-b
func (s *TrackingServiceTestSuite) startEvent() *models.MiningEvent {
	s.expectNoActiveEvent()
	s.mockEventRepo.EXPECT().
		SaveEvent(gomock.Any(), gomock.Any()).
		Return(nil).
		AnyTimes()

	output, err := s.service.StartEvent(s.ctx, &StartEventInput{
		GuildID:           s.testGuildID,
		CreatedBy:         "test-officer-id",
		TrackedChannelIDs: []string{"channel-a", "channel-b"},
	})
	s.Require().NoError(err)
	return output.Event
}

// notify feeds one raw voice-state change into the service
func (s *TrackingServiceTestSuite) notify(memberID, from, to string, at time.Time) {
	_, err := s.service.HandleVoiceNotification(s.ctx, &HandleVoiceNotificationInput{
		Notification: &VoiceNotification{
			GuildID:       s.testGuildID,
			MemberID:      memberID,
			MemberName:    "Miner " + memberID,
			FromChannelID: from,
			ToChannelID:   to,
			Timestamp:     at,
		},
	})
	s.Require().NoError(err)
}

func (s *TrackingServiceTestSuite) TestStartEventRejectsSecondActive() {
	evt := s.startEvent()
	s.Equal(models.EventStatusActive, evt.Status)
	s.Equal(s.testStart, evt.StartTime)

	s.mockEventRepo.EXPECT().
		GetActiveEvent(gomock.Any(), gomock.Any()).
		Return(evt, nil)

	_, err := s.service.StartEvent(s.ctx, &StartEventInput{
		GuildID:           s.testGuildID,
		CreatedBy:         "test-officer-id",
		TrackedChannelIDs: []string{"channel-a"},
	})
	s.Require().Error(err)
	s.Equal(ErrActiveEventExists, err)
}

func (s *TrackingServiceTestSuite) TestStartEventRequiresTrackedChannels() {
	_, err := s.service.StartEvent(s.ctx, &StartEventInput{
		GuildID:   s.testGuildID,
		CreatedBy: "test-officer-id",
	})
	s.Require().Error(err)
	s.Equal(ErrNoTrackedChannels, err)
}

func (s *TrackingServiceTestSuite) TestChannelSwitching() {
	s.startEvent()
	s.expectPersistence()

	// Join A at t0, move to B at t0+90m, move back to A and leave at t0+120m.
	// The final stay in A is instantaneous and falls below the threshold.
	s.notify("member-1", "", "channel-a", s.testStart)
	s.notify("member-1", "channel-a", "channel-b", s.testStart.Add(90*time.Minute))
	s.notify("member-1", "channel-b", "channel-a", s.testStart.Add(120*time.Minute))
	s.notify("member-1", "channel-a", "", s.testStart.Add(120*time.Minute))

	s.now = s.testStart.Add(121 * time.Minute)
	output, err := s.service.StopEvent(s.ctx, &StopEventInput{
		GuildID: s.testGuildID,
	})
	s.Require().NoError(err)
	s.Require().Len(output.Contributions, 1)

	contrib := output.Contributions[0]
	s.Equal(int64(90*60), contrib.ChannelSeconds["channel-a"])
	s.Equal(int64(30*60), contrib.ChannelSeconds["channel-b"])
	s.Equal(int64(120*60), contrib.TotalSeconds)
	s.Equal("channel-a", contrib.PrimaryChannelID)

	// Two segments persisted: 90m in A, 30m in B
	s.savedMu.Lock()
	defer s.savedMu.Unlock()
	s.Require().Len(s.savedSegments, 2)
	s.Equal("channel-a", s.savedSegments[0].ChannelID)
	s.Equal("channel-b", s.savedSegments[1].ChannelID)
}

func (s *TrackingServiceTestSuite) TestBelowThresholdSegmentDiscarded() {
	s.startEvent()
	s.expectPersistence()

	s.notify("member-1", "", "channel-a", s.testStart)
	s.notify("member-1", "channel-a", "", s.testStart.Add(20*time.Second))

	s.now = s.testStart.Add(time.Minute)
	output, err := s.service.StopEvent(s.ctx, &StopEventInput{
		GuildID: s.testGuildID,
	})
	s.Require().NoError(err)
	s.Empty(output.Contributions)

	s.savedMu.Lock()
	defer s.savedMu.Unlock()
	s.Empty(s.savedSegments)
}

func (s *TrackingServiceTestSuite) TestOutOfOrderLeaveIgnored() {
	s.startEvent()
	s.expectPersistence()

	// Leave while idle
	s.notify("member-1", "channel-a", "", s.testStart)

	// Join A, then a stale leave for B must not close the open session
	s.notify("member-1", "", "channel-a", s.testStart.Add(time.Minute))
	s.notify("member-1", "channel-b", "", s.testStart.Add(2*time.Minute))
	s.notify("member-1", "channel-a", "", s.testStart.Add(41*time.Minute))

	s.now = s.testStart.Add(time.Hour)
	output, err := s.service.StopEvent(s.ctx, &StopEventInput{
		GuildID: s.testGuildID,
	})
	s.Require().NoError(err)
	s.Require().Len(output.Contributions, 1)
	s.Equal(int64(40*60), output.Contributions[0].TotalSeconds)
}

func (s *TrackingServiceTestSuite) TestUntrackedChannelDropped() {
	s.startEvent()

	output, err := s.service.HandleVoiceNotification(s.ctx, &HandleVoiceNotificationInput{
		Notification: &VoiceNotification{
			GuildID:     s.testGuildID,
			MemberID:    "member-1",
			ToChannelID: "afk-channel",
			Timestamp:   s.testStart,
		},
	})
	s.Require().NoError(err)
	s.Equal(0, output.Applied)
}

func (s *TrackingServiceTestSuite) TestNotificationWithoutActiveEventDropped() {
	output, err := s.service.HandleVoiceNotification(s.ctx, &HandleVoiceNotificationInput{
		Notification: &VoiceNotification{
			GuildID:     "some-other-guild",
			MemberID:    "member-1",
			ToChannelID: "channel-a",
			Timestamp:   s.testStart,
		},
	})
	s.Require().NoError(err)
	s.Equal(0, output.Applied)
}

func (s *TrackingServiceTestSuite) TestZeroTimestampStampedWithoutMutatingInput() {
	s.startEvent()
	s.expectPersistence()

	notification := &VoiceNotification{
		GuildID:     s.testGuildID,
		MemberID:    "member-1",
		MemberName:  "Miner member-1",
		ToChannelID: "channel-a",
	}
	_, err := s.service.HandleVoiceNotification(s.ctx, &HandleVoiceNotificationInput{
		Notification: notification,
	})
	s.Require().NoError(err)

	// The service stamps a copy; the caller's notification stays untouched
	s.True(notification.Timestamp.IsZero())

	// The stamped time is the clock's, visible through the live totals
	s.now = s.testStart.Add(10 * time.Minute)
	output, err := s.service.GetLiveTotals(s.ctx, &GetLiveTotalsInput{
		GuildID: s.testGuildID,
	})
	s.Require().NoError(err)
	s.Require().Len(output.Contributions, 1)
	s.Equal(int64(10*60), output.Contributions[0].TotalSeconds)
}

func (s *TrackingServiceTestSuite) TestStopForceClosesActiveMembers() {
	s.startEvent()
	s.expectPersistence()

	s.notify("member-1", "", "channel-a", s.testStart)
	s.notify("member-2", "", "channel-b", s.testStart.Add(10*time.Minute))

	stopTime := s.testStart.Add(time.Hour)
	s.now = stopTime
	output, err := s.service.StopEvent(s.ctx, &StopEventInput{
		GuildID: s.testGuildID,
	})
	s.Require().NoError(err)
	s.Equal(models.EventStatusCompleted, output.Event.Status)
	s.Equal(stopTime, output.Event.EndTime)
	s.Require().Len(output.Contributions, 2)

	s.Equal(int64(3600), output.Contributions[0].TotalSeconds)
	s.Equal(int64(3000), output.Contributions[1].TotalSeconds)

	// Every trailing segment ends at the stop timestamp
	s.savedMu.Lock()
	for _, seg := range s.savedSegments {
		s.Equal(stopTime, seg.LeaveTime)
	}
	s.savedMu.Unlock()

	// The event is gone; nothing more is accepted
	_, err = s.service.StopEvent(s.ctx, &StopEventInput{
		GuildID: s.testGuildID,
	})
	s.Require().Error(err)
	s.Equal(ErrNoActiveEvent, err)
}

func (s *TrackingServiceTestSuite) TestCancelDiscardsParticipation() {
	evt := s.startEvent()
	s.expectPersistence()

	s.notify("member-1", "", "channel-a", s.testStart)
	s.notify("member-1", "channel-a", "", s.testStart.Add(45*time.Minute))

	s.mockPartRepo.EXPECT().
		DeleteEventData(gomock.Any(), &participationRepo.DeleteEventDataInput{
			EventID: evt.ID,
		}).
		Return(nil)

	s.now = s.testStart.Add(time.Hour)
	output, err := s.service.CancelEvent(s.ctx, &CancelEventInput{
		GuildID: s.testGuildID,
	})
	s.Require().NoError(err)
	s.Equal(models.EventStatusCancelled, output.Event.Status)
}

func (s *TrackingServiceTestSuite) TestPersistenceFailureKeepsLiveTotals() {
	s.startEvent()

	s.mockPartRepo.EXPECT().
		SaveSegment(gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("connection refused")).
		AnyTimes()

	s.notify("member-1", "", "channel-a", s.testStart)
	s.notify("member-1", "channel-a", "", s.testStart.Add(40*time.Minute))

	s.now = s.testStart.Add(time.Hour)
	output, err := s.service.StopEvent(s.ctx, &StopEventInput{
		GuildID: s.testGuildID,
	})
	s.Require().NoError(err)

	// The segment is reported lost but the in-memory aggregate survives
	s.Equal(1, output.LostSegments)
	s.Require().Len(output.Contributions, 1)
	s.Equal(int64(40*60), output.Contributions[0].TotalSeconds)
}

func (s *TrackingServiceTestSuite) TestLiveTotalsIncludeOpenSessions() {
	s.startEvent()
	s.expectPersistence()

	s.notify("member-1", "", "channel-a", s.testStart)

	s.now = s.testStart.Add(15 * time.Minute)
	output, err := s.service.GetLiveTotals(s.ctx, &GetLiveTotalsInput{
		GuildID: s.testGuildID,
	})
	s.Require().NoError(err)
	s.Require().Len(output.Contributions, 1)
	s.Equal(int64(15*60), output.Contributions[0].TotalSeconds)

	// Nothing persisted for the still-open session
	s.savedMu.Lock()
	defer s.savedMu.Unlock()
	s.Empty(s.savedSegments)
}

func (s *TrackingServiceTestSuite) TestConcurrentMembers() {
	s.startEvent()
	s.expectPersistence()

	const memberCount = 20

	var wg sync.WaitGroup
	for i := 0; i < memberCount; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			memberID := fmt.Sprintf("member-%02d", n)
			for _, step := range []struct {
				from, to string
				at       time.Time
			}{
				{"", "channel-a", s.testStart},
				{"channel-a", "channel-b", s.testStart.Add(30 * time.Minute)},
				{"channel-b", "", s.testStart.Add(40 * time.Minute)},
			} {
				_, _ = s.service.HandleVoiceNotification(s.ctx, &HandleVoiceNotificationInput{
					Notification: &VoiceNotification{
						GuildID:       s.testGuildID,
						MemberID:      memberID,
						FromChannelID: step.from,
						ToChannelID:   step.to,
						Timestamp:     step.at,
					},
				})
			}
		}(i)
	}
	wg.Wait()

	s.now = s.testStart.Add(time.Hour)
	output, err := s.service.StopEvent(s.ctx, &StopEventInput{
		GuildID: s.testGuildID,
	})
	s.Require().NoError(err)
	s.Require().Len(output.Contributions, memberCount)

	for _, contrib := range output.Contributions {
		s.Equal(int64(40*60), contrib.TotalSeconds)
		s.Equal(int64(30*60), contrib.ChannelSeconds["channel-a"])
		s.Equal(int64(10*60), contrib.ChannelSeconds["channel-b"])
		s.Equal("channel-a", contrib.PrimaryChannelID)
	}
}
