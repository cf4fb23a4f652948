package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/zndr1991-lab/GanteParts/internal/infrastructure/config"
)

// InventoryCacheFactory creates inventory caches based on configuration
type InventoryCacheFactory struct {
	cacheConfig           config.CacheConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// InventoryCacheFactoryOption is a functional option for configuring the factory
type InventoryCacheFactoryOption func(*InventoryCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) InventoryCacheFactoryOption {
	return func(f *InventoryCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) InventoryCacheFactoryOption {
	return func(f *InventoryCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewInventoryCacheFactory creates a new factory
func NewInventoryCacheFactory(cacheCfg config.CacheConfig, redisCfg config.RedisConfig, opts ...InventoryCacheFactoryOption) *InventoryCacheFactory {
	f := &InventoryCacheFactory{
		cacheConfig:           cacheCfg,
		redisConfig:           redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateCache creates an inventory cache for the configured backend
func (f *InventoryCacheFactory) CreateCache() (InventoryCache, error) {
	switch f.cacheConfig.Backend {
	case "none":
		return NewNoopInventoryCache(), nil

	case "memory":
		f.logger.Info("using in-memory inventory cache")
		return NewInMemoryInventoryCache(f.cacheConfig.TTL, WithInMemoryLogger(f.logger)), nil

	case "redis":
		store, err := NewRedisInventoryCache(RedisConfig{
			Host:     f.redisConfig.Host,
			Port:     f.redisConfig.Port,
			Password: f.redisConfig.Password,
			DB:       f.redisConfig.DB,
		}, f.cacheConfig.TTL, f.logger)
		if err == nil {
			f.logger.Info("using Redis inventory cache")
			return store, nil
		}

		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("Redis required for inventory cache but unavailable: %w", err)
		}

		f.logger.Warn("Redis unavailable, falling back to in-memory inventory cache. "+
			"Snapshots will not be shared across instances.",
			zap.Error(err),
		)
		return NewInMemoryInventoryCache(f.cacheConfig.TTL, WithInMemoryLogger(f.logger)), nil

	default:
		return nil, fmt.Errorf("unknown cache backend %q", f.cacheConfig.Backend)
	}
}
