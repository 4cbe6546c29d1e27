package event

import (
	"github.com/veldrin/orepay/internal/models"
)

// SaveEventInput contains parameters for persisting an event
type SaveEventInput struct {
	// Event is the event to persist
	Event *models.MiningEvent
}

// GetEventInput contains parameters for retrieving an event by ID
type GetEventInput struct {
	// EventID is the unique identifier for the event
	EventID string
}

// GetActiveEventInput contains parameters for retrieving a guild's active event
type GetActiveEventInput struct {
	// GuildID is the Discord guild to look up
	GuildID string
}

// DeleteEventInput contains parameters for removing an event
type DeleteEventInput struct {
	// EventID is the unique identifier for the event
	EventID string
}
