package participation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veldrin/orepay/internal/models"
)

// PostgresConfig holds configuration for the Postgres participation repository
type PostgresConfig struct {
	// Pool is the pgx connection pool
	Pool *pgxpool.Pool
}

// postgresRepository implements the Repository interface using Postgres
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a new Postgres-backed participation repository
func NewPostgres(ctx context.Context, cfg *PostgresConfig) (*postgresRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Pool == nil {
		return nil, errors.New("connection pool cannot be nil")
	}

	if err := cfg.Pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := &postgresRepository{pool: cfg.Pool}
	if err := repo.migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

// migrate creates the segment and contribution tables if they do not exist
func (r *postgresRepository) migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS segments (
			id TEXT PRIMARY KEY,
			event_id TEXT NOT NULL,
			member_id TEXT NOT NULL,
			channel_id TEXT NOT NULL,
			join_time TIMESTAMPTZ NOT NULL,
			leave_time TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_segments_event_id ON segments(event_id, join_time);

		CREATE TABLE IF NOT EXISTS contributions (
			event_id TEXT NOT NULL,
			member_id TEXT NOT NULL,
			member_name TEXT NOT NULL DEFAULT '',
			channel_seconds JSONB NOT NULL,
			total_seconds BIGINT NOT NULL,
			primary_channel_id TEXT NOT NULL DEFAULT '',
			is_org_member BOOLEAN NOT NULL DEFAULT FALSE,
			PRIMARY KEY (event_id, member_id)
		);
	`)
	return err
}

// SaveSegment persists one closed voice channel stay
func (r *postgresRepository) SaveSegment(ctx context.Context, input *SaveSegmentInput) error {
	if input == nil || input.Segment == nil {
		return errors.New("input and segment cannot be nil")
	}

	seg := input.Segment
	_, err := r.pool.Exec(ctx, `
		INSERT INTO segments (id, event_id, member_id, channel_id, join_time, leave_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`, seg.ID, seg.EventID, seg.MemberID, seg.ChannelID, seg.JoinTime, seg.LeaveTime)
	if err != nil {
		return fmt.Errorf("failed to save segment: %w", err)
	}

	return nil
}

// UpsertContribution creates or replaces a member's aggregate for an event
func (r *postgresRepository) UpsertContribution(ctx context.Context, input *UpsertContributionInput) error {
	if input == nil || input.Contribution == nil {
		return errors.New("input and contribution cannot be nil")
	}

	c := input.Contribution
	channelJSON, err := json.Marshal(c.ChannelSeconds)
	if err != nil {
		return fmt.Errorf("failed to marshal channel seconds: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO contributions (event_id, member_id, member_name, channel_seconds, total_seconds, primary_channel_id, is_org_member)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (event_id, member_id) DO UPDATE SET
			member_name = EXCLUDED.member_name,
			channel_seconds = EXCLUDED.channel_seconds,
			total_seconds = EXCLUDED.total_seconds,
			primary_channel_id = EXCLUDED.primary_channel_id,
			is_org_member = EXCLUDED.is_org_member
	`, c.EventID, c.MemberID, c.MemberName, channelJSON, c.TotalSeconds, c.PrimaryChannelID, c.IsOrgMember)
	if err != nil {
		return fmt.Errorf("failed to upsert contribution: %w", err)
	}

	return nil
}

// ListSegments retrieves all closed segments for an event, ordered by join time
func (r *postgresRepository) ListSegments(ctx context.Context, input *ListSegmentsInput) (*ListSegmentsOutput, error) {
	if input == nil || input.EventID == "" {
		return nil, errors.New("input and event ID cannot be empty")
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, event_id, member_id, channel_id, join_time, leave_time
		FROM segments
		WHERE event_id = $1
		ORDER BY join_time
	`, input.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query segments: %w", err)
	}
	defer rows.Close()

	segments := []*models.Segment{}
	for rows.Next() {
		var seg models.Segment
		if err := rows.Scan(&seg.ID, &seg.EventID, &seg.MemberID, &seg.ChannelID, &seg.JoinTime, &seg.LeaveTime); err != nil {
			return nil, fmt.Errorf("failed to scan segment: %w", err)
		}
		segments = append(segments, &seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read segments: %w", err)
	}

	return &ListSegmentsOutput{
		Segments: segments,
	}, nil
}

// ListContributions retrieves all member contributions for an event
func (r *postgresRepository) ListContributions(ctx context.Context, input *ListContributionsInput) (*ListContributionsOutput, error) {
	if input == nil || input.EventID == "" {
		return nil, errors.New("input and event ID cannot be empty")
	}

	rows, err := r.pool.Query(ctx, `
		SELECT event_id, member_id, member_name, channel_seconds, total_seconds, primary_channel_id, is_org_member
		FROM contributions
		WHERE event_id = $1
	`, input.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contributions: %w", err)
	}
	defer rows.Close()

	contributions := []*models.Contribution{}
	for rows.Next() {
		var contrib models.Contribution
		var channelJSON []byte
		if err := rows.Scan(&contrib.EventID, &contrib.MemberID, &contrib.MemberName, &channelJSON, &contrib.TotalSeconds, &contrib.PrimaryChannelID, &contrib.IsOrgMember); err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		if err := json.Unmarshal(channelJSON, &contrib.ChannelSeconds); err != nil {
			return nil, fmt.Errorf("failed to unmarshal channel seconds: %w", err)
		}
		contributions = append(contributions, &contrib)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read contributions: %w", err)
	}

	return &ListContributionsOutput{
		Contributions: contributions,
	}, nil
}

// DeleteEventData removes all segments and contributions for an event
func (r *postgresRepository) DeleteEventData(ctx context.Context, input *DeleteEventDataInput) error {
	if input == nil || input.EventID == "" {
		return errors.New("input and event ID cannot be empty")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM segments WHERE event_id = $1`, input.EventID); err != nil {
		return fmt.Errorf("failed to delete segments: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM contributions WHERE event_id = $1`, input.EventID); err != nil {
		return fmt.Errorf("failed to delete contributions: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}

	return nil
}
