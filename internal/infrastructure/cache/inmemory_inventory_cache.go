package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zndr1991-lab/GanteParts/internal/domain/inventory"
)

const defaultCleanupInterval = 30 * time.Second

// InMemoryInventoryCache implements InventoryCache using in-process storage.
// Suitable for single-instance deployments and tests; state is not shared
// across processes.
type InMemoryInventoryCache struct {
	entries    sync.Map // map[uuid.UUID]*snapshotEntry
	defaultTTL time.Duration
	logger     *zap.Logger
	stopCh     chan struct{}
	stopped    int32

	hits   int64
	misses int64
}

type snapshotEntry struct {
	items     []inventory.Item
	expiresAt time.Time
}

func (e *snapshotEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryInventoryCacheOption is a functional option for configuring the cache
type InMemoryInventoryCacheOption func(*InMemoryInventoryCache)

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemoryInventoryCacheOption {
	return func(c *InMemoryInventoryCache) {
		c.logger = logger
	}
}

// NewInMemoryInventoryCache creates a new in-memory inventory cache
func NewInMemoryInventoryCache(defaultTTL time.Duration, opts ...InMemoryInventoryCacheOption) *InMemoryInventoryCache {
	c := &InMemoryInventoryCache{
		defaultTTL: defaultTTL,
		logger:     zap.NewNop(),
		stopCh:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	go c.cleanupExpired()

	return c
}

// GetItems returns the cached snapshot for an owner
func (c *InMemoryInventoryCache) GetItems(ctx context.Context, ownerID uuid.UUID) ([]inventory.Item, bool, error) {
	if value, ok := c.entries.Load(ownerID); ok {
		entry := value.(*snapshotEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			return entry.items, true, nil
		}
		c.entries.Delete(ownerID)
	}

	atomic.AddInt64(&c.misses, 1)
	return nil, false, nil
}

// SetItems stores an owner's snapshot
func (c *InMemoryInventoryCache) SetItems(ctx context.Context, ownerID uuid.UUID, items []inventory.Item, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	c.entries.Store(ownerID, &snapshotEntry{
		items:     items,
		expiresAt: time.Now().Add(ttl),
	})
	return nil
}

// Invalidate drops an owner's snapshot
func (c *InMemoryInventoryCache) Invalidate(ctx context.Context, ownerID uuid.UUID) error {
	c.entries.Delete(ownerID)
	return nil
}

// Close stops the background cleanup goroutine
func (c *InMemoryInventoryCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// GetStats returns cache statistics
func (c *InMemoryInventoryCache) GetStats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// cleanupExpired periodically removes expired entries
func (c *InMemoryInventoryCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			removed := 0
			c.entries.Range(func(key, value any) bool {
				if value.(*snapshotEntry).isExpired() {
					c.entries.Delete(key)
					removed++
				}
				return true
			})
			if removed > 0 {
				c.logger.Debug("Cleaned up expired inventory cache entries",
					zap.Int("removed", removed))
			}
		}
	}
}

// Ensure InMemoryInventoryCache implements InventoryCache
var _ InventoryCache = (*InMemoryInventoryCache)(nil)
