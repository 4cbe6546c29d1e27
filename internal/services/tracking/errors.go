package tracking

// TrackingError is a custom error type for presence-tracking errors
type TrackingError string

// Error implements the error interface
func (e TrackingError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrNoActiveEvent        TrackingError = "no active mining event for this guild"
	ErrActiveEventExists    TrackingError = "an active mining event already exists for this guild"
	ErrEventStopped         TrackingError = "mining event is no longer accepting presence events"
	ErrNoTrackedChannels    TrackingError = "at least one tracked channel is required"
	ErrNilConfig            TrackingError = "config cannot be nil"
	ErrNilEventRepo         TrackingError = "event repository cannot be nil"
	ErrNilParticipationRepo TrackingError = "participation repository cannot be nil"
	ErrNilClock             TrackingError = "clock cannot be nil"
	ErrNilUUIDGenerator     TrackingError = "UUID generator cannot be nil"
)
