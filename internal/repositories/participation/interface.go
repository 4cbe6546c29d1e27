package participation

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/veldrin/orepay/internal/repositories/participation Repository

import (
	"context"
)

// Repository defines the interface for participation persistence
type Repository interface {
	// SaveSegment persists one closed voice channel stay
	SaveSegment(ctx context.Context, input *SaveSegmentInput) error

	// UpsertContribution creates or replaces a member's aggregate for an event
	UpsertContribution(ctx context.Context, input *UpsertContributionInput) error

	// ListSegments retrieves all closed segments for an event, ordered by join time
	ListSegments(ctx context.Context, input *ListSegmentsInput) (*ListSegmentsOutput, error)

	// ListContributions retrieves all member contributions for an event
	ListContributions(ctx context.Context, input *ListContributionsInput) (*ListContributionsOutput, error)

	// DeleteEventData removes all segments and contributions for an event
	DeleteEventData(ctx context.Context, input *DeleteEventDataInput) error
}
