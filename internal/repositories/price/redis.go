package price

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/veldrin/orepay/internal/common/clock"
)

const (
	// Key prefix for Redis
	priceKeyPrefix = "commodity_price:"

	// defaultMaxAge is how old a price may be before it is reported stale
	defaultMaxAge = 24 * time.Hour
)

// ErrPriceNotFound is returned when no price is stored for a commodity
var ErrPriceNotFound = errors.New("no price stored for commodity")

// Config holds configuration for the Redis price oracle
type Config struct {
	// Redis client
	RedisClient *redis.Client

	// MaxAge is how old a price may be before GetPrice reports it stale
	MaxAge time.Duration

	// Clock is the time source, defaults to the system clock
	Clock clock.Clock
}

// storedPrice is the persisted per-commodity record
type storedPrice struct {
	UnitPrice int64     `json:"unit_price"`
	UpdatedAt time.Time `json:"updated_at"`
}

// redisOracle implements the Oracle interface using Redis
type redisOracle struct {
	client *redis.Client
	maxAge time.Duration
	clock  clock.Clock
}

// NewRedis creates a new Redis-backed price oracle
func NewRedis(cfg *Config) (*redisOracle, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	maxAge := cfg.MaxAge
	if maxAge == 0 {
		maxAge = defaultMaxAge
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	return &redisOracle{
		client: cfg.RedisClient,
		maxAge: maxAge,
		clock:  clk,
	}, nil
}

// GetPrice retrieves the unit price for a commodity and whether it is stale
func (r *redisOracle) GetPrice(ctx context.Context, input *GetPriceInput) (*GetPriceOutput, error) {
	if input == nil || input.Commodity == "" {
		return nil, errors.New("input and commodity cannot be empty")
	}

	key := priceKeyPrefix + normalizeCommodity(input.Commodity)
	priceJSON, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrPriceNotFound
		}
		return nil, fmt.Errorf("failed to get price: %w", err)
	}

	var stored storedPrice
	if err := json.Unmarshal([]byte(priceJSON), &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal price: %w", err)
	}

	return &GetPriceOutput{
		UnitPrice: stored.UnitPrice,
		UpdatedAt: stored.UpdatedAt,
		Stale:     r.clock.Now().Sub(stored.UpdatedAt) > r.maxAge,
	}, nil
}

// SetPrice stores the unit price for a commodity, refreshing its timestamp
func (r *redisOracle) SetPrice(ctx context.Context, input *SetPriceInput) error {
	if input == nil || input.Commodity == "" {
		return errors.New("input and commodity cannot be empty")
	}

	if input.UnitPrice < 0 {
		return errors.New("unit price cannot be negative")
	}

	stored := storedPrice{
		UnitPrice: input.UnitPrice,
		UpdatedAt: r.clock.Now(),
	}

	priceJSON, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal price: %w", err)
	}

	key := priceKeyPrefix + normalizeCommodity(input.Commodity)
	if err := r.client.Set(ctx, key, priceJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set price: %w", err)
	}

	return nil
}

// normalizeCommodity canonicalizes a commodity name for keying
func normalizeCommodity(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
