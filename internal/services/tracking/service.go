package tracking

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/veldrin/orepay/internal/common/clock"
	"github.com/veldrin/orepay/internal/common/uuid"
	"github.com/veldrin/orepay/internal/models"
	eventRepo "github.com/veldrin/orepay/internal/repositories/event"
	participationRepo "github.com/veldrin/orepay/internal/repositories/participation"
)

const (
	// defaultMinSegment is the minimum closed-session duration that counts
	defaultMinSegment = 30 * time.Second

	// defaultSaveRetries bounds the persistence retry attempts per segment
	defaultSaveRetries = 3
)

// service implements the Service interface
type service struct {
	minSegment  time.Duration
	saveRetries uint64

	eventRepo         eventRepo.Repository
	participationRepo participationRepo.Repository
	clock             clock.Clock
	uuidGen           uuid.UUID

	// aggregators holds one aggregator per guild with an active event
	mu          sync.Mutex
	aggregators map[string]*aggregator
}

// New creates a new tracking service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.EventRepo == nil {
		return nil, ErrNilEventRepo
	}

	if cfg.ParticipationRepo == nil {
		return nil, ErrNilParticipationRepo
	}

	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUIDGenerator
	}

	minSegment := cfg.MinSegment
	if minSegment == 0 {
		minSegment = defaultMinSegment
	}

	saveRetries := cfg.SaveRetries
	if saveRetries == 0 {
		saveRetries = defaultSaveRetries
	}

	return &service{
		minSegment:        minSegment,
		saveRetries:       saveRetries,
		eventRepo:         cfg.EventRepo,
		participationRepo: cfg.ParticipationRepo,
		clock:             cfg.Clock,
		uuidGen:           cfg.UUIDGenerator,
		aggregators:       make(map[string]*aggregator),
	}, nil
}

// StartEvent starts a new mining event for a guild
func (s *service) StartEvent(ctx context.Context, input *StartEventInput) (*StartEventOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	if input.GuildID == "" {
		return nil, errors.New("guild ID is required")
	}

	if len(input.TrackedChannelIDs) == 0 {
		return nil, ErrNoTrackedChannels
	}

	// One active event per guild
	existing, err := s.eventRepo.GetActiveEvent(ctx, &eventRepo.GetActiveEventInput{
		GuildID: input.GuildID,
	})
	if err == nil && existing != nil {
		return nil, ErrActiveEventExists
	}
	if err != nil && !errors.Is(err, eventRepo.ErrEventNotFound) {
		return nil, err
	}

	evt := &models.MiningEvent{
		ID:                s.uuidGen.NewUUID(),
		GuildID:           input.GuildID,
		Status:            models.EventStatusActive,
		TrackedChannelIDs: input.TrackedChannelIDs,
		CreatedBy:         input.CreatedBy,
		StartTime:         s.clock.Now(),
	}

	if err := s.eventRepo.SaveEvent(ctx, &eventRepo.SaveEventInput{
		Event: evt,
	}); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.aggregators[input.GuildID] = newAggregator(evt, s.minSegment, s.participationRepo, s.uuidGen, s.saveRetries)
	s.mu.Unlock()

	return &StartEventOutput{
		Event: evt,
	}, nil
}

// HandleVoiceNotification ingests a raw voice-state change. Notifications for
// guilds without an active event, or for untracked channels, are dropped
// silently.
func (s *service) HandleVoiceNotification(ctx context.Context, input *HandleVoiceNotificationInput) (*HandleVoiceNotificationOutput, error) {
	if input == nil || input.Notification == nil {
		return &HandleVoiceNotificationOutput{}, nil
	}

	agg := s.aggregatorFor(input.Notification.GuildID)
	if agg == nil {
		return &HandleVoiceNotificationOutput{}, nil
	}

	notification := input.Notification
	if notification.Timestamp.IsZero() {
		stamped := *notification
		stamped.Timestamp = s.clock.Now()
		notification = &stamped
	}

	events := normalizeNotification(notification, agg.tracked)

	applied := 0
	for _, evt := range events {
		if err := agg.Apply(ctx, evt); err != nil {
			// The event was stopped between lookup and apply; remaining
			// events are dropped like any other post-stop notification.
			if err == ErrEventStopped {
				break
			}
			return nil, err
		}
		applied++
	}

	return &HandleVoiceNotificationOutput{
		Applied: applied,
	}, nil
}

// StopEvent drains in-flight updates, force-closes open sessions and
// finalizes the guild's active event
func (s *service) StopEvent(ctx context.Context, input *StopEventInput) (*StopEventOutput, error) {
	if input == nil || input.GuildID == "" {
		return nil, errors.New("input and guild ID cannot be empty")
	}

	s.mu.Lock()
	agg, ok := s.aggregators[input.GuildID]
	if ok {
		delete(s.aggregators, input.GuildID)
	}
	s.mu.Unlock()

	if !ok {
		return nil, ErrNoActiveEvent
	}

	stopTime := s.clock.Now()
	contributions, lost := agg.Stop(ctx, stopTime)

	evt := agg.event
	evt.Status = models.EventStatusCompleted
	evt.EndTime = stopTime

	if err := s.eventRepo.SaveEvent(ctx, &eventRepo.SaveEventInput{
		Event: evt,
	}); err != nil {
		return nil, err
	}

	return &StopEventOutput{
		Event:         evt,
		Contributions: contributions,
		LostSegments:  lost,
	}, nil
}

// CancelEvent voids the guild's active event. Open sessions are discarded and
// already-persisted participation is purged; nothing counts.
func (s *service) CancelEvent(ctx context.Context, input *CancelEventInput) (*CancelEventOutput, error) {
	if input == nil || input.GuildID == "" {
		return nil, errors.New("input and guild ID cannot be empty")
	}

	s.mu.Lock()
	agg, ok := s.aggregators[input.GuildID]
	if ok {
		delete(s.aggregators, input.GuildID)
	}
	s.mu.Unlock()

	if !ok {
		return nil, ErrNoActiveEvent
	}

	agg.Cancel()

	evt := agg.event
	evt.Status = models.EventStatusCancelled
	evt.EndTime = s.clock.Now()

	if err := s.participationRepo.DeleteEventData(ctx, &participationRepo.DeleteEventDataInput{
		EventID: evt.ID,
	}); err != nil {
		return nil, err
	}

	if err := s.eventRepo.SaveEvent(ctx, &eventRepo.SaveEventInput{
		Event: evt,
	}); err != nil {
		return nil, err
	}

	return &CancelEventOutput{
		Event: evt,
	}, nil
}

// GetLiveTotals returns a snapshot of member totals including open sessions
func (s *service) GetLiveTotals(ctx context.Context, input *GetLiveTotalsInput) (*GetLiveTotalsOutput, error) {
	if input == nil || input.GuildID == "" {
		return nil, errors.New("input and guild ID cannot be empty")
	}

	agg := s.aggregatorFor(input.GuildID)
	if agg == nil {
		return nil, ErrNoActiveEvent
	}

	return &GetLiveTotalsOutput{
		Event:         agg.event,
		Contributions: agg.LiveTotals(s.clock.Now()),
	}, nil
}

// aggregatorFor returns the aggregator for a guild's active event, if any
func (s *service) aggregatorFor(guildID string) *aggregator {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aggregators[guildID]
}
