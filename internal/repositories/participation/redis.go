package participation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/veldrin/orepay/internal/models"
)

const (
	// Key prefixes for Redis
	segmentKeyPrefix         = "segment:"
	eventSegmentsPrefix      = "event_segments:"
	eventContributionsPrefix = "event_contributions:"
)

// Config holds configuration for the Redis participation repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed participation repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisRepository{
		client: cfg.RedisClient,
	}, nil
}

// SaveSegment persists one closed voice channel stay
func (r *redisRepository) SaveSegment(ctx context.Context, input *SaveSegmentInput) error {
	if input == nil || input.Segment == nil {
		return errors.New("input and segment cannot be nil")
	}

	segmentJSON, err := json.Marshal(input.Segment)
	if err != nil {
		return fmt.Errorf("failed to marshal segment: %w", err)
	}

	pipe := r.client.Pipeline()

	segmentKey := segmentKeyPrefix + input.Segment.ID
	pipe.Set(ctx, segmentKey, segmentJSON, 0)

	// Index segments per event, scored by join time so listing returns them
	// in chronological order
	eventKey := eventSegmentsPrefix + input.Segment.EventID
	pipe.ZAdd(ctx, eventKey, redis.Z{
		Score:  float64(input.Segment.JoinTime.UnixNano()),
		Member: input.Segment.ID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save segment: %w", err)
	}

	return nil
}

// UpsertContribution creates or replaces a member's aggregate for an event
func (r *redisRepository) UpsertContribution(ctx context.Context, input *UpsertContributionInput) error {
	if input == nil || input.Contribution == nil {
		return errors.New("input and contribution cannot be nil")
	}

	contribJSON, err := json.Marshal(input.Contribution)
	if err != nil {
		return fmt.Errorf("failed to marshal contribution: %w", err)
	}

	contribKey := eventContributionsPrefix + input.Contribution.EventID
	if err := r.client.HSet(ctx, contribKey, input.Contribution.MemberID, contribJSON).Err(); err != nil {
		return fmt.Errorf("failed to upsert contribution: %w", err)
	}

	return nil
}

// ListSegments retrieves all closed segments for an event, ordered by join time
func (r *redisRepository) ListSegments(ctx context.Context, input *ListSegmentsInput) (*ListSegmentsOutput, error) {
	if input == nil || input.EventID == "" {
		return nil, errors.New("input and event ID cannot be empty")
	}

	eventKey := eventSegmentsPrefix + input.EventID
	segmentIDs, err := r.client.ZRange(ctx, eventKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get segment IDs: %w", err)
	}

	if len(segmentIDs) == 0 {
		return &ListSegmentsOutput{
			Segments: []*models.Segment{},
		}, nil
	}

	// Fetch all segments in one pipeline round trip
	pipe := r.client.Pipeline()
	cmds := make([]*redis.StringCmd, 0, len(segmentIDs))
	for _, id := range segmentIDs {
		cmds = append(cmds, pipe.Get(ctx, segmentKeyPrefix+id))
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get segments: %w", err)
	}

	segments := make([]*models.Segment, 0, len(segmentIDs))
	for i, cmd := range cmds {
		segmentJSON, err := cmd.Result()
		if err != nil {
			if err == redis.Nil {
				// Segment was deleted after the index was read
				continue
			}
			return nil, fmt.Errorf("failed to get segment %s: %w", segmentIDs[i], err)
		}

		var segment models.Segment
		if err := json.Unmarshal([]byte(segmentJSON), &segment); err != nil {
			return nil, fmt.Errorf("failed to unmarshal segment %s: %w", segmentIDs[i], err)
		}

		segments = append(segments, &segment)
	}

	return &ListSegmentsOutput{
		Segments: segments,
	}, nil
}

// ListContributions retrieves all member contributions for an event
func (r *redisRepository) ListContributions(ctx context.Context, input *ListContributionsInput) (*ListContributionsOutput, error) {
	if input == nil || input.EventID == "" {
		return nil, errors.New("input and event ID cannot be empty")
	}

	contribKey := eventContributionsPrefix + input.EventID
	entries, err := r.client.HGetAll(ctx, contribKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get contributions: %w", err)
	}

	contributions := make([]*models.Contribution, 0, len(entries))
	for memberID, contribJSON := range entries {
		var contrib models.Contribution
		if err := json.Unmarshal([]byte(contribJSON), &contrib); err != nil {
			return nil, fmt.Errorf("failed to unmarshal contribution for %s: %w", memberID, err)
		}
		contributions = append(contributions, &contrib)
	}

	return &ListContributionsOutput{
		Contributions: contributions,
	}, nil
}

// DeleteEventData removes all segments and contributions for an event
func (r *redisRepository) DeleteEventData(ctx context.Context, input *DeleteEventDataInput) error {
	if input == nil || input.EventID == "" {
		return errors.New("input and event ID cannot be empty")
	}

	eventKey := eventSegmentsPrefix + input.EventID
	segmentIDs, err := r.client.ZRange(ctx, eventKey, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to get segment IDs: %w", err)
	}

	pipe := r.client.Pipeline()

	for _, id := range segmentIDs {
		pipe.Del(ctx, segmentKeyPrefix+id)
	}
	pipe.Del(ctx, eventKey)
	pipe.Del(ctx, eventContributionsPrefix+input.EventID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete event data: %w", err)
	}

	return nil
}
