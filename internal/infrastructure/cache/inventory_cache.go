package cache

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/zndr1991-lab/GanteParts/internal/domain/inventory"
)

// InventoryCache is a read-through cache for per-owner inventory snapshots.
// Entries carry a bounded TTL; every inventory mutation and marketplace
// reconciliation invalidates the owner's entry explicitly.
type InventoryCache interface {
	// GetItems returns the cached snapshot for an owner. The second return
	// value reports whether a fresh entry was found.
	GetItems(ctx context.Context, ownerID uuid.UUID) ([]inventory.Item, bool, error)

	// SetItems stores an owner's snapshot. A zero ttl uses the cache default.
	SetItems(ctx context.Context, ownerID uuid.UUID, items []inventory.Item, ttl time.Duration) error

	// Invalidate drops an owner's snapshot
	Invalidate(ctx context.Context, ownerID uuid.UUID) error

	// Close releases any resources held by the cache
	Close() error
}

// NoopInventoryCache disables caching; every read goes to the database
type NoopInventoryCache struct{}

// NewNoopInventoryCache creates a cache that never hits
func NewNoopInventoryCache() *NoopInventoryCache {
	return &NoopInventoryCache{}
}

func (*NoopInventoryCache) GetItems(ctx context.Context, ownerID uuid.UUID) ([]inventory.Item, bool, error) {
	return nil, false, nil
}

func (*NoopInventoryCache) SetItems(ctx context.Context, ownerID uuid.UUID, items []inventory.Item, ttl time.Duration) error {
	return nil
}

func (*NoopInventoryCache) Invalidate(ctx context.Context, ownerID uuid.UUID) error {
	return nil
}

func (*NoopInventoryCache) Close() error {
	return nil
}

var _ InventoryCache = (*NoopInventoryCache)(nil)
