package sync

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/zndr1991-lab/GanteParts/internal/domain/audit"
	"github.com/zndr1991-lab/GanteParts/internal/domain/inventory"
	"github.com/zndr1991-lab/GanteParts/internal/domain/marketplace"
	"github.com/zndr1991-lab/GanteParts/internal/domain/shared"
	"github.com/zndr1991-lab/GanteParts/internal/infrastructure/cache"
)

// fakeCredentialRepository is an in-memory marketplace.CredentialRepository
type fakeCredentialRepository struct {
	mu          sync.Mutex
	byUser      map[uuid.UUID]*marketplace.Credential
	byMeliUser  map[string]*marketplace.Credential
	upsertCalls int32
}

func newFakeCredentialRepository() *fakeCredentialRepository {
	return &fakeCredentialRepository{
		byUser:     make(map[uuid.UUID]*marketplace.Credential),
		byMeliUser: make(map[string]*marketplace.Credential),
	}
}

func (r *fakeCredentialRepository) put(c *marketplace.Credential) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.byUser[c.UserID] = &cp
	r.byMeliUser[c.MeliUserID] = &cp
}

func (r *fakeCredentialRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*marketplace.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.byUser[userID]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, marketplace.ErrCredentialNotFound
}

func (r *fakeCredentialRepository) FindByMeliUserID(ctx context.Context, meliUserID string) (*marketplace.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.byMeliUser[meliUserID]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, marketplace.ErrCredentialNotFound
}

func (r *fakeCredentialRepository) Upsert(ctx context.Context, credential *marketplace.Credential) error {
	atomic.AddInt32(&r.upsertCalls, 1)
	r.put(credential)
	return nil
}

// fakeAPI is a configurable marketplace.API double
type fakeAPI struct {
	refreshCalls   int32
	setStatusCalls int32

	exchangeFn  func(ctx context.Context, code string) (*marketplace.ExchangeResult, error)
	refreshFn   func(ctx context.Context, refreshToken string) (*marketplace.TokenGrant, error)
	fetchFn     func(ctx context.Context, accessToken, listingID string) (*marketplace.RemoteItem, error)
	setStatusFn func(ctx context.Context, accessToken, listingID, status string) error
}

func (a *fakeAPI) AuthorizationURL(state string) string {
	return "https://auth.example.com/authorization?state=" + state
}

func (a *fakeAPI) ExchangeCode(ctx context.Context, code string) (*marketplace.ExchangeResult, error) {
	return a.exchangeFn(ctx, code)
}

func (a *fakeAPI) RefreshGrant(ctx context.Context, refreshToken string) (*marketplace.TokenGrant, error) {
	atomic.AddInt32(&a.refreshCalls, 1)
	return a.refreshFn(ctx, refreshToken)
}

func (a *fakeAPI) FetchItem(ctx context.Context, accessToken, listingID string) (*marketplace.RemoteItem, error) {
	return a.fetchFn(ctx, accessToken, listingID)
}

func (a *fakeAPI) SetItemStatus(ctx context.Context, accessToken, listingID, status string) error {
	atomic.AddInt32(&a.setStatusCalls, 1)
	return a.setStatusFn(ctx, accessToken, listingID, status)
}

var _ marketplace.API = (*fakeAPI)(nil)

// fakeItemRepository is an in-memory inventory.ItemRepository
type fakeItemRepository struct {
	mu    sync.Mutex
	items map[uuid.UUID]*inventory.Item

	updateManyErr error
	updateManyFn  func(ownerID uuid.UUID, listingID string, patch inventory.ListingPatch) int64
}

func newFakeItemRepository() *fakeItemRepository {
	return &fakeItemRepository{items: make(map[uuid.UUID]*inventory.Item)}
}

func (r *fakeItemRepository) put(item *inventory.Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = item
}

func (r *fakeItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item, ok := r.items[id]; ok {
		return item, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeItemRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*inventory.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item, ok := r.items[id]; ok && item.OwnerID == ownerID {
		return item, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeItemRepository) FindByIDsForOwner(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]inventory.Item, error) {
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

func (r *fakeItemRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID) ([]inventory.Item, error) {
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

func (r *fakeItemRepository) FindOwnerByListingID(ctx context.Context, listingID string) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.HasListing() && equalsFold(*item.ListingID, listingID) {
			return item.OwnerID, nil
		}
	}
	return uuid.Nil, shared.ErrNotFound
}

func (r *fakeItemRepository) UpdateManyByListingID(ctx context.Context, ownerID uuid.UUID, listingID string, patch inventory.ListingPatch) (int64, error) {
	if r.updateManyErr != nil {
		return 0, r.updateManyErr
	}
	if r.updateManyFn != nil {
		return r.updateManyFn(ownerID, listingID, patch), nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, item := range r.items {
		if item.OwnerID == ownerID && item.HasListing() && equalsFold(*item.ListingID, listingID) {
			item.Status = patch.Status
			if patch.Stock != nil {
				item.Stock = *patch.Stock
			}
			count++
		}
	}
	return count, nil
}

func (r *fakeItemRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status inventory.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return shared.ErrNotFound
	}
	item.Status = status
	return nil
}

func (r *fakeItemRepository) Save(ctx context.Context, item *inventory.Item) error {
	r.put(item)
	return nil
}

func (r *fakeItemRepository) DeleteManyForOwner(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (int64, error) {
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

func (r *fakeItemRepository) CountForOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
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

var _ inventory.ItemRepository = (*fakeItemRepository)(nil)

func equalsFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'a' <= ca && ca <= 'z' {
			ca -= 'a' - 'A'
		}
		if 'a' <= cb && cb <= 'z' {
			cb -= 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// fakeRecorder collects audit records
type fakeRecorder struct {
	mu      sync.Mutex
	records []*audit.Record
	err     error
}

func (r *fakeRecorder) Record(ctx context.Context, record *audit.Record) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}

func (r *fakeRecorder) all() []*audit.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*audit.Record(nil), r.records...)
}

var _ audit.Recorder = (*fakeRecorder)(nil)

// spyInventoryCache counts invalidations per owner
type spyInventoryCache struct {
	mu          sync.Mutex
	invalidated map[uuid.UUID]int
}

func newSpyInventoryCache() *spyInventoryCache {
	return &spyInventoryCache{invalidated: make(map[uuid.UUID]int)}
}

func (c *spyInventoryCache) GetItems(ctx context.Context, ownerID uuid.UUID) ([]inventory.Item, bool, error) {
	return nil, false, nil
}

func (c *spyInventoryCache) SetItems(ctx context.Context, ownerID uuid.UUID, items []inventory.Item, ttl time.Duration) error {
	return nil
}

func (c *spyInventoryCache) Invalidate(ctx context.Context, ownerID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated[ownerID]++
	return nil
}

func (c *spyInventoryCache) Close() error { return nil }

func (c *spyInventoryCache) invalidations(ownerID uuid.UUID) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidated[ownerID]
}

var _ cache.InventoryCache = (*spyInventoryCache)(nil)
