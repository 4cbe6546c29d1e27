package event

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/veldrin/orepay/internal/repositories/event Repository

import (
	"context"

	"github.com/veldrin/orepay/internal/models"
)

// Repository defines the interface for mining event persistence
type Repository interface {
	// SaveEvent persists an event and maintains the guild's active-event pointer
	SaveEvent(ctx context.Context, input *SaveEventInput) error

	// GetEvent retrieves an event by ID
	GetEvent(ctx context.Context, input *GetEventInput) (*models.MiningEvent, error)

	// GetActiveEvent retrieves the currently active event for a guild
	GetActiveEvent(ctx context.Context, input *GetActiveEventInput) (*models.MiningEvent, error)

	// DeleteEvent removes an event
	DeleteEvent(ctx context.Context, input *DeleteEventInput) error
}
