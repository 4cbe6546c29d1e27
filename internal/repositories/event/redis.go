package event

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
	eventKeyPrefix       = "mining_event:"
	guildActiveKeyPrefix = "guild_active_event:"
)

// ErrEventNotFound is returned when an event is not found
var ErrEventNotFound = errors.New("mining event not found")

// Config holds configuration for the Redis event repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed event repository
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

// SaveEvent persists an event and maintains the guild's active-event pointer
func (r *redisRepository) SaveEvent(ctx context.Context, input *SaveEventInput) error {
	if input == nil || input.Event == nil {
		return errors.New("input and event cannot be nil")
	}

	eventJSON, err := json.Marshal(input.Event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pipe := r.client.Pipeline()

	eventKey := eventKeyPrefix + input.Event.ID
	pipe.Set(ctx, eventKey, eventJSON, 0)

	// The guild pointer only ever references the active event, enforcing the
	// one-active-event-per-guild rule at the storage layer.
	guildKey := guildActiveKeyPrefix + input.Event.GuildID
	if input.Event.Status == models.EventStatusActive {
		pipe.Set(ctx, guildKey, input.Event.ID, 0)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save event: %w", err)
	}

	// Clear the pointer only if it still references this event
	if input.Event.Status != models.EventStatusActive {
		current, err := r.client.Get(ctx, guildKey).Result()
		if err == nil && current == input.Event.ID {
			if err := r.client.Del(ctx, guildKey).Err(); err != nil {
				return fmt.Errorf("failed to clear active event pointer: %w", err)
			}
		}
	}

	return nil
}

// GetEvent retrieves an event by ID from Redis
func (r *redisRepository) GetEvent(ctx context.Context, input *GetEventInput) (*models.MiningEvent, error) {
	if input == nil || input.EventID == "" {
		return nil, errors.New("input and event ID cannot be empty")
	}

	eventKey := eventKeyPrefix + input.EventID
	eventJSON, err := r.client.Get(ctx, eventKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	var evt models.MiningEvent
	if err := json.Unmarshal([]byte(eventJSON), &evt); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	return &evt, nil
}

// GetActiveEvent retrieves the currently active event for a guild
func (r *redisRepository) GetActiveEvent(ctx context.Context, input *GetActiveEventInput) (*models.MiningEvent, error) {
	if input == nil || input.GuildID == "" {
		return nil, errors.New("input and guild ID cannot be empty")
	}

	guildKey := guildActiveKeyPrefix + input.GuildID
	eventID, err := r.client.Get(ctx, guildKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get active event ID: %w", err)
	}

	return r.GetEvent(ctx, &GetEventInput{
		EventID: eventID,
	})
}

// DeleteEvent removes an event from Redis
func (r *redisRepository) DeleteEvent(ctx context.Context, input *DeleteEventInput) error {
	if input == nil || input.EventID == "" {
		return errors.New("input and event ID cannot be empty")
	}

	evt, err := r.GetEvent(ctx, &GetEventInput{
		EventID: input.EventID,
	})
	if err != nil {
		return err
	}

	pipe := r.client.Pipeline()

	pipe.Del(ctx, eventKeyPrefix+input.EventID)

	guildKey := guildActiveKeyPrefix + evt.GuildID
	current, err := r.client.Get(ctx, guildKey).Result()
	if err == nil && current == input.EventID {
		pipe.Del(ctx, guildKey)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	return nil
}
