package inventory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zndr1991-lab/GanteParts/internal/domain/audit"
	"github.com/zndr1991-lab/GanteParts/internal/domain/inventory"
	"github.com/zndr1991-lab/GanteParts/internal/domain/shared"
)

type memoryItemRepository struct {
	mu    sync.Mutex
	items map[uuid.UUID]*inventory.Item
}

func newMemoryItemRepository() *memoryItemRepository {
	return &memoryItemRepository{items: make(map[uuid.UUID]*inventory.Item)}
}

func (r *memoryItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item, ok := r.items[id]; ok {
		return item, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memoryItemRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*inventory.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item, ok := r.items[id]; ok && item.OwnerID == ownerID {
		return item, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memoryItemRepository) FindByIDsForOwner(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]inventory.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]inventory.Item, 0, len(ids))
	for _, id := range ids {
		if item, ok := r.items[id]; ok && item.OwnerID == ownerID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *memoryItemRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID) ([]inventory.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []inventory.Item
	for _, item := range r.items {
		if item.OwnerID == ownerID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *memoryItemRepository) FindOwnerByListingID(ctx context.Context, listingID string) (uuid.UUID, error) {
	return uuid.Nil, shared.ErrNotFound
}

func (r *memoryItemRepository) UpdateManyByListingID(ctx context.Context, ownerID uuid.UUID, listingID string, patch inventory.ListingPatch) (int64, error) {
	return 0, nil
}

func (r *memoryItemRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status inventory.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return shared.ErrNotFound
	}
	item.Status = status
	return nil
}

func (r *memoryItemRepository) Save(ctx context.Context, item *inventory.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.ID != item.ID && existing.OwnerID == item.OwnerID && existing.SKUInternal == item.SKUInternal {
			return shared.ErrAlreadyExists
		}
	}
	r.items[item.ID] = item
	return nil
}

func (r *memoryItemRepository) DeleteManyForOwner(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, id := range ids {
		if item, ok := r.items[id]; ok && item.OwnerID == ownerID {
			delete(r.items, id)
			count++
		}
	}
	return count, nil
}

func (r *memoryItemRepository) CountForOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, item := range r.items {
		if item.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

var _ inventory.ItemRepository = (*memoryItemRepository)(nil)

type capturingRecorder struct {
	mu      sync.Mutex
	records []*audit.Record
}

func (r *capturingRecorder) Record(ctx context.Context, record *audit.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}

func (r *capturingRecorder) all() []*audit.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*audit.Record(nil), r.records...)
}

type countingCache struct {
	mu          sync.Mutex
	entries     map[uuid.UUID][]inventory.Item
	invalidates int
}

func newCountingCache() *countingCache {
	return &countingCache{entries: make(map[uuid.UUID][]inventory.Item)}
}

func (c *countingCache) GetItems(ctx context.Context, ownerID uuid.UUID) ([]inventory.Item, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, ok := c.entries[ownerID]
	return items, ok, nil
}

func (c *countingCache) SetItems(ctx context.Context, ownerID uuid.UUID, items []inventory.Item, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[ownerID] = items
	return nil
}

func (c *countingCache) Invalidate(ctx context.Context, ownerID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, ownerID)
	c.invalidates++
	return nil
}

func (c *countingCache) Close() error { return nil }

type serviceFixture struct {
	repo     *memoryItemRepository
	recorder *capturingRecorder
	cache    *countingCache
	service  *ItemService
	ownerID  uuid.UUID
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	repo := newMemoryItemRepository()
	recorder := &capturingRecorder{}
	countCache := newCountingCache()
	return &serviceFixture{
		repo:     repo,
		recorder: recorder,
		cache:    countCache,
		service: NewItemService(ItemServiceConfig{
			Items:          repo,
			Recorder:       recorder,
			InventoryCache: countCache,
			DeletePassword: "delete-me",
			FullLoadLimit:  2000,
			CacheTTL:       30 * time.Second,
		}),
		ownerID: uuid.New(),
	}
}

func TestItemServiceCreate(t *testing.T) {
	f := newServiceFixture(t)
	price := decimal.NewFromFloat(199.90)

	view, err := f.service.Create(context.Background(), f.ownerID, CreateItemInput{
		SKUInternal: "  SKU-001  ",
		Title:       "Brake pad set",
		Price:       &price,
		Stock:       12,
		ListingID:   "mlx123456",
		Status:      "active",
	})
	require.NoError(t, err)

	assert.Equal(t, "SKU-001", view.SKUInternal)
	require.NotNil(t, view.ListingID)
	assert.Equal(t, "MLX123456", *view.ListingID)
	assert.Equal(t, "active", view.Status)
	assert.Equal(t, 12, view.Stock)

	records := f.recorder.all()
	require.Len(t, records, 1)
	assert.Equal(t, audit.ActionInventoryCreate, records[0].Action)
	assert.Equal(t, 1, f.cache.invalidates)
}

func TestItemServiceCreateDuplicateSKU(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.Create(context.Background(), f.ownerID, CreateItemInput{SKUInternal: "SKU-001"})
	require.NoError(t, err)

	_, err = f.service.Create(context.Background(), f.ownerID, CreateItemInput{SKUInternal: "SKU-001"})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	// The same SKU under a different owner is fine.
	_, err = f.service.Create(context.Background(), uuid.New(), CreateItemInput{SKUInternal: "SKU-001"})
	assert.NoError(t, err)
}

func TestItemServiceCreateInvalidStatus(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.Create(context.Background(), f.ownerID, CreateItemInput{
		SKUInternal: "SKU-001",
		Status:      "banana",
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATUS", domainErr.Code)
}

func TestItemServiceListCachesSnapshot(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.service.Create(context.Background(), f.ownerID, CreateItemInput{SKUInternal: "SKU-001"})
	require.NoError(t, err)

	first, err := f.service.List(context.Background(), f.ownerID)
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, int64(1), first.Total)

	second, err := f.service.List(context.Background(), f.ownerID)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Total, second.Total)
}

func TestItemServiceListLimit(t *testing.T) {
	f := newServiceFixture(t)
	f.service.fullLoadLimit = 2

	for _, sku := range []string{"SKU-001", "SKU-002", "SKU-003"} {
		_, err := f.service.Create(context.Background(), f.ownerID, CreateItemInput{SKUInternal: sku})
		require.NoError(t, err)
	}

	result, err := f.service.List(context.Background(), f.ownerID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Total)
}

func TestItemServiceUpdate(t *testing.T) {
	f := newServiceFixture(t)
	created, err := f.service.Create(context.Background(), f.ownerID, CreateItemInput{SKUInternal: "SKU-001"})
	require.NoError(t, err)
	itemID := uuid.MustParse(created.ID)

	stock := 5
	status := "paused"
	listing := "mlx777777"
	view, err := f.service.Update(context.Background(), f.ownerID, itemID, UpdateItemInput{
		Stock:     &stock,
		Status:    &status,
		ListingID: &listing,
	})
	require.NoError(t, err)

	assert.Equal(t, 5, view.Stock)
	assert.Equal(t, "paused", view.Status)
	require.NotNil(t, view.ListingID)
	assert.Equal(t, "MLX777777", *view.ListingID)

	records := f.recorder.all()
	require.Len(t, records, 2)
	assert.Equal(t, audit.ActionInventoryUpdate, records[1].Action)
}

func TestItemServiceUpdateNoFields(t *testing.T) {
	f := newServiceFixture(t)
	created, err := f.service.Create(context.Background(), f.ownerID, CreateItemInput{SKUInternal: "SKU-001"})
	require.NoError(t, err)

	before := f.cache.invalidates
	_, err = f.service.Update(context.Background(), f.ownerID, uuid.MustParse(created.ID), UpdateItemInput{})
	require.NoError(t, err)

	// A no-op update neither audits nor invalidates.
	assert.Len(t, f.recorder.all(), 1)
	assert.Equal(t, before, f.cache.invalidates)
}

func TestItemServiceUpdateForeignItem(t *testing.T) {
	f := newServiceFixture(t)
	created, err := f.service.Create(context.Background(), f.ownerID, CreateItemInput{SKUInternal: "SKU-001"})
	require.NoError(t, err)

	title := "hijacked"
	_, err = f.service.Update(context.Background(), uuid.New(), uuid.MustParse(created.ID), UpdateItemInput{Title: &title})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestItemServiceDelete(t *testing.T) {
	f := newServiceFixture(t)
	created, err := f.service.Create(context.Background(), f.ownerID, CreateItemInput{SKUInternal: "SKU-001"})
	require.NoError(t, err)

	deleted, err := f.service.Delete(context.Background(), f.ownerID, DeleteItemsInput{
		IDs:      []string{created.ID},
		Password: "delete-me",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = f.service.Get(context.Background(), f.ownerID, uuid.MustParse(created.ID))
	assert.ErrorIs(t, err, shared.ErrNotFound)

	records := f.recorder.all()
	require.Len(t, records, 2)
	assert.Equal(t, audit.ActionInventoryDelete, records[1].Action)
}

func TestItemServiceDeleteWrongPassword(t *testing.T) {
	f := newServiceFixture(t)
	created, err := f.service.Create(context.Background(), f.ownerID, CreateItemInput{SKUInternal: "SKU-001"})
	require.NoError(t, err)

	_, err = f.service.Delete(context.Background(), f.ownerID, DeleteItemsInput{
		IDs:      []string{created.ID},
		Password: "guess",
	})
	assert.ErrorIs(t, err, shared.ErrForbidden)

	// Item survives.
	_, err = f.service.Get(context.Background(), f.ownerID, uuid.MustParse(created.ID))
	assert.NoError(t, err)
}

func TestItemServiceDeleteNoPasswordConfigured(t *testing.T) {
	f := newServiceFixture(t)
	f.service.deletePassword = ""
	created, err := f.service.Create(context.Background(), f.ownerID, CreateItemInput{SKUInternal: "SKU-001"})
	require.NoError(t, err)

	deleted, err := f.service.Delete(context.Background(), f.ownerID, DeleteItemsInput{IDs: []string{created.ID}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestItemServiceDeleteNothingOwned(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.Delete(context.Background(), f.ownerID, DeleteItemsInput{
		IDs:      []string{uuid.NewString()},
		Password: "delete-me",
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestItemServiceDeleteMalformedID(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.Delete(context.Background(), f.ownerID, DeleteItemsInput{
		IDs:      []string{"not-a-uuid"},
		Password: "delete-me",
	})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}
