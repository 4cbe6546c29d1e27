package messaging

// MessageTone represents the tone of a message
type MessageTone string

const (
	// ToneNeutral is a neutral tone
	ToneNeutral MessageTone = "neutral"

	// ToneFunny is a humorous tone
	ToneFunny MessageTone = "funny"

	// ToneGritty is a hard-bitten miner tone
	ToneGritty MessageTone = "gritty"
)

// ServiceConfig holds configuration for the messaging service
type ServiceConfig struct {
}

// GetEventStartMessageInput contains parameters for a start announcement
type GetEventStartMessageInput struct {
	// ChannelCount is how many voice channels are being tracked
	ChannelCount int

	// PreferredTone is the requested tone, defaults to funny
	PreferredTone MessageTone
}

// GetEventStartMessageOutput contains the start announcement
type GetEventStartMessageOutput struct {
	Message string
	Tone    MessageTone
}

// GetEventStopMessageInput contains parameters for a stop announcement
type GetEventStopMessageInput struct {
	// ParticipantCount is how many members recorded counted time
	ParticipantCount int

	// LostSegments is how many stays could not be persisted
	LostSegments int

	// PreferredTone is the requested tone, defaults to funny
	PreferredTone MessageTone
}

// GetEventStopMessageOutput contains the stop announcement
type GetEventStopMessageOutput struct {
	Message string
	Tone    MessageTone
}

// GetPayrollSummaryMessageInput contains parameters for a payroll headline
type GetPayrollSummaryMessageInput struct {
	// TotalValue is the distributed pool in whole currency units
	TotalValue int64

	// MemberCount is how many members received a payout line
	MemberCount int

	// UnassignedValue is donated value nobody was left to receive
	UnassignedValue int64

	// PreferredTone is the requested tone, defaults to funny
	PreferredTone MessageTone
}

// GetPayrollSummaryMessageOutput contains the payroll headline
type GetPayrollSummaryMessageOutput struct {
	Message string
	Tone    MessageTone
}

// GetErrorMessageInput contains parameters for an error message
type GetErrorMessageInput struct {
	// ErrorType categorizes the failure, e.g. "active_event_exists"
	ErrorType string

	// MemberName is the display name of the member the error is for
	MemberName string
}

// GetErrorMessageOutput contains the error message
type GetErrorMessageOutput struct {
	Title   string
	Message string
}
