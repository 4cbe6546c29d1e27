package messaging

import "context"

// Service is the interface for the messaging service
type Service interface {
	// GetEventStartMessage returns an announcement for a mining event starting
	GetEventStartMessage(ctx context.Context, input *GetEventStartMessageInput) (*GetEventStartMessageOutput, error)

	// GetEventStopMessage returns an announcement for a mining event ending
	GetEventStopMessage(ctx context.Context, input *GetEventStopMessageInput) (*GetEventStopMessageOutput, error)

	// GetPayrollSummaryMessage returns a headline for a distributed payroll
	GetPayrollSummaryMessage(ctx context.Context, input *GetPayrollSummaryMessageInput) (*GetPayrollSummaryMessageOutput, error)

	// GetErrorMessage returns a user-friendly error message
	GetErrorMessage(ctx context.Context, input *GetErrorMessageInput) (*GetErrorMessageOutput, error)
}
