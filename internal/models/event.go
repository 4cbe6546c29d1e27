package models

import (
	"time"
)

// EventStatus represents the current state of a mining event
type EventStatus string

const (
	// EventStatusPlanned indicates an event that has been created but not started
	EventStatusPlanned EventStatus = "planned"

	// EventStatusActive indicates an event currently tracking presence
	EventStatusActive EventStatus = "active"

	// EventStatusCompleted indicates an event that has been stopped
	EventStatusCompleted EventStatus = "completed"

	// EventStatusCancelled indicates an event that was voided mid-session
	EventStatusCancelled EventStatus = "cancelled"
)

// MiningEvent represents one timed mining session in a guild
type MiningEvent struct {
	// ID is the unique identifier for the event
	ID string

	// GuildID is the Discord guild the event belongs to
	GuildID string

	// Status is the current state of the event
	Status EventStatus

	// TrackedChannelIDs are the voice channels counted for this event
	TrackedChannelIDs []string

	// CreatedBy is the user ID that started the event
	CreatedBy string

	// StartTime is when presence tracking began
	StartTime time.Time

	// EndTime is when the event was stopped (zero while active)
	EndTime time.Time

	// TotalValue is the settled payout pool, set after payroll distribution
	TotalValue int64
}

// IsTracked reports whether a channel belongs to the event's tracked set
func (e *MiningEvent) IsTracked(channelID string) bool {
	for _, id := range e.TrackedChannelIDs {
		if id == channelID {
			return true
		}
	}
	return false
}
