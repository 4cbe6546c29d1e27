package models

// Contribution represents a member's aggregated participation within one event
type Contribution struct {
	// EventID is the mining event this contribution belongs to
	EventID string

	// MemberID is the Discord user ID of the participant
	MemberID string

	// MemberName is the display name of the participant
	MemberName string

	// ChannelSeconds maps channel ID to accumulated seconds in that channel
	ChannelSeconds map[string]int64

	// TotalSeconds is the sum of all per-channel seconds
	TotalSeconds int64

	// PrimaryChannelID is the channel with the most accumulated time
	PrimaryChannelID string

	// IsOrgMember indicates whether the participant holds the org role
	IsOrgMember bool
}
