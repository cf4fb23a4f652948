package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/zndr1991-lab/GanteParts/internal/domain/inventory"
)

// RedisConfig holds Redis connection settings for the cache
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisInventoryCache implements InventoryCache backed by Redis, so the
// snapshot survives process restarts and is shared across instances
type RedisInventoryCache struct {
	client     *redis.Client
	defaultTTL time.Duration
	logger     *zap.Logger
}

// NewRedisInventoryCache creates a Redis-backed inventory cache and verifies
// the connection
func NewRedisInventoryCache(cfg RedisConfig, defaultTTL time.Duration, logger *zap.Logger) (*RedisInventoryCache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisInventoryCache{
		client:     client,
		defaultTTL: defaultTTL,
		logger:     logger,
	}, nil
}

func inventoryCacheKey(ownerID uuid.UUID) string {
	return "inventory:snapshot:" + ownerID.String()
}

// GetItems returns the cached snapshot for an owner
func (c *RedisInventoryCache) GetItems(ctx context.Context, ownerID uuid.UUID) ([]inventory.Item, bool, error) {
	payload, err := c.client.Get(ctx, inventoryCacheKey(ownerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read inventory cache: %w", err)
	}

	var items []inventory.Item
	if err := json.Unmarshal(payload, &items); err != nil {
		// A corrupt entry is dropped rather than surfaced to the caller
		c.logger.Warn("Dropping corrupt inventory cache entry",
			zap.String("owner_id", ownerID.String()),
			zap.Error(err))
		c.client.Del(ctx, inventoryCacheKey(ownerID))
		return nil, false, nil
	}

	return items, true, nil
}

// SetItems stores an owner's snapshot
func (c *RedisInventoryCache) SetItems(ctx context.Context, ownerID uuid.UUID, items []inventory.Item, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode inventory snapshot: %w", err)
	}

	if err := c.client.Set(ctx, inventoryCacheKey(ownerID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write inventory cache: %w", err)
	}
	return nil
}

// Invalidate drops an owner's snapshot
func (c *RedisInventoryCache) Invalidate(ctx context.Context, ownerID uuid.UUID) error {
	if err := c.client.Del(ctx, inventoryCacheKey(ownerID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate inventory cache: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisInventoryCache) Close() error {
	return c.client.Close()
}

// Ensure RedisInventoryCache implements InventoryCache
var _ InventoryCache = (*RedisInventoryCache)(nil)
