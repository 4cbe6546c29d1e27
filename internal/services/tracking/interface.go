package tracking

import "context"

// Service defines the interface for presence tracking operations
type Service interface {
	// StartEvent starts a new mining event for a guild
	StartEvent(ctx context.Context, input *StartEventInput) (*StartEventOutput, error)

	// StopEvent drains in-flight updates, force-closes open sessions and
	// finalizes the guild's active event
	StopEvent(ctx context.Context, input *StopEventInput) (*StopEventOutput, error)

	// CancelEvent voids the guild's active event, discarding all participation
	CancelEvent(ctx context.Context, input *CancelEventInput) (*CancelEventOutput, error)

	// HandleVoiceNotification ingests a raw voice-state change
	HandleVoiceNotification(ctx context.Context, input *HandleVoiceNotificationInput) (*HandleVoiceNotificationOutput, error)

	// GetLiveTotals returns a snapshot of member totals including open sessions
	GetLiveTotals(ctx context.Context, input *GetLiveTotalsInput) (*GetLiveTotalsOutput, error)
}
