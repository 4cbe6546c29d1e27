package tracking

import (
	"time"

	"github.com/veldrin/orepay/internal/common/clock"
	"github.com/veldrin/orepay/internal/common/uuid"
	"github.com/veldrin/orepay/internal/models"
	eventRepo "github.com/veldrin/orepay/internal/repositories/event"
	participationRepo "github.com/veldrin/orepay/internal/repositories/participation"
)

// EventKind identifies the type of a canonical presence event
type EventKind string

const (
	// EventKindJoin indicates a member entered a tracked channel
	EventKindJoin EventKind = "join"

	// EventKindLeave indicates a member left a tracked channel
	EventKindLeave EventKind = "leave"
)

// VoiceNotification is a raw voice-state change as reported by the host platform
type VoiceNotification struct {
	// GuildID is the Discord guild the change happened in
	GuildID string

	// MemberID is the Discord user ID of the member
	MemberID string

	// MemberName is the display name of the member
	MemberName string

	// FromChannelID is the channel the member left, empty on a plain join
	FromChannelID string

	// ToChannelID is the channel the member entered, empty on a plain leave
	ToChannelID string

	// Timestamp is when the change occurred
	Timestamp time.Time

	// IsOrgMember indicates whether the member holds the org role
	IsOrgMember bool
}

// PresenceEvent is one canonical join or leave produced by the ingestor
type PresenceEvent struct {
	// MemberID is the Discord user ID of the member
	MemberID string

	// MemberName is the display name of the member
	MemberName string

	// ChannelID is the tracked channel the event refers to
	ChannelID string

	// Kind is join or leave
	Kind EventKind

	// Timestamp is when the event occurred
	Timestamp time.Time

	// IsOrgMember indicates whether the member holds the org role
	IsOrgMember bool
}

// Config holds configuration for the tracking service
type Config struct {
	// MinSegment is the minimum closed-session duration that counts; shorter
	// stays are discarded. Defaults to 30 seconds.
	MinSegment time.Duration

	// SaveRetries bounds the persistence retry attempts per segment
	SaveRetries uint64

	// Repository dependencies
	EventRepo         eventRepo.Repository
	ParticipationRepo participationRepo.Repository

	// Service dependencies
	Clock         clock.Clock
	UUIDGenerator uuid.UUID
}

// StartEventInput contains parameters for starting a mining event
type StartEventInput struct {
	// GuildID is the Discord guild the event belongs to
	GuildID string

	// CreatedBy is the user ID starting the event
	CreatedBy string

	// TrackedChannelIDs are the voice channels counted for this event
	TrackedChannelIDs []string
}

// StartEventOutput contains the result of starting a mining event
type StartEventOutput struct {
	// Event is the newly started event
	Event *models.MiningEvent
}

// StopEventInput contains parameters for stopping a mining event
type StopEventInput struct {
	// GuildID is the Discord guild whose active event is stopped
	GuildID string
}

// StopEventOutput contains the result of stopping a mining event
type StopEventOutput struct {
	// Event is the stopped event
	Event *models.MiningEvent

	// Contributions are the finalized member aggregates with nonzero totals
	Contributions []*models.Contribution

	// LostSegments counts segments that could not be persisted after retries
	LostSegments int
}

// CancelEventInput contains parameters for cancelling a mining event
type CancelEventInput struct {
	// GuildID is the Discord guild whose active event is cancelled
	GuildID string
}

// CancelEventOutput contains the result of cancelling a mining event
type CancelEventOutput struct {
	// Event is the cancelled event
	Event *models.MiningEvent
}

// HandleVoiceNotificationInput contains a raw voice-state change to ingest
type HandleVoiceNotificationInput struct {
	// Notification is the raw voice-state change
	Notification *VoiceNotification
}

// HandleVoiceNotificationOutput reports what the ingestor did with a notification
type HandleVoiceNotificationOutput struct {
	// Applied is the number of canonical events applied to the aggregator
	Applied int
}

// GetLiveTotalsInput contains parameters for querying live totals
type GetLiveTotalsInput struct {
	// GuildID is the Discord guild whose active event is queried
	GuildID string
}

// GetLiveTotalsOutput contains a snapshot of member totals including open sessions
type GetLiveTotalsOutput struct {
	// Event is the active event
	Event *models.MiningEvent

	// Contributions are live member aggregates; open sessions are included in
	// the totals but are not persisted
	Contributions []*models.Contribution
}
