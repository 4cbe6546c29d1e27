package models

import (
	"time"
)

// Segment represents one closed, continuous stay of a member in one voice channel
type Segment struct {
	// ID is the unique identifier for the segment
	ID string

	// EventID is the mining event this segment belongs to
	EventID string

	// MemberID is the Discord user ID of the participant
	MemberID string

	// ChannelID is the voice channel the member occupied
	ChannelID string

	// JoinTime is when the member entered the channel
	JoinTime time.Time

	// LeaveTime is when the member left the channel
	LeaveTime time.Time
}

// Duration returns the length of the stay, clamped at zero
func (s *Segment) Duration() time.Duration {
	d := s.LeaveTime.Sub(s.JoinTime)
	if d < 0 {
		return 0
	}
	return d
}
