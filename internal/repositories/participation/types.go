package participation

import (
	"github.com/veldrin/orepay/internal/models"
)

// SaveSegmentInput contains parameters for persisting a closed segment
type SaveSegmentInput struct {
	// Segment is the closed segment to persist
	Segment *models.Segment
}

// UpsertContributionInput contains parameters for saving a member's aggregate
type UpsertContributionInput struct {
	// Contribution is the aggregate to create or replace
	Contribution *models.Contribution
}

// ListSegmentsInput contains parameters for listing an event's segments
type ListSegmentsInput struct {
	// EventID is the event to list segments for
	EventID string
}

// ListSegmentsOutput contains the segments for an event
type ListSegmentsOutput struct {
	// Segments are ordered by join time
	Segments []*models.Segment
}

// ListContributionsInput contains parameters for listing an event's contributions
type ListContributionsInput struct {
	// EventID is the event to list contributions for
	EventID string
}

// ListContributionsOutput contains the contributions for an event
type ListContributionsOutput struct {
	Contributions []*models.Contribution
}

// DeleteEventDataInput contains parameters for purging an event's data
type DeleteEventDataInput struct {
	// EventID is the event whose segments and contributions are removed
	EventID string
}
