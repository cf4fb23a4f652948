package inventory

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zndr1991-lab/GanteParts/internal/domain/audit"
	"github.com/zndr1991-lab/GanteParts/internal/domain/inventory"
	"github.com/zndr1991-lab/GanteParts/internal/domain/shared"
	"github.com/zndr1991-lab/GanteParts/internal/infrastructure/cache"
)

// ItemService implements inventory CRUD over owned items. Reads go through the
// per-owner snapshot cache; every mutation invalidates the owner's entry and
// writes an audit record.
type ItemService struct {
	items          inventory.ItemRepository
	recorder       audit.Recorder
	inventoryCache cache.InventoryCache
	deletePassword string
	fullLoadLimit  int
	cacheTTL       time.Duration
	logger         *zap.Logger
}

// ItemServiceConfig contains configuration for ItemService
type ItemServiceConfig struct {
	Items          inventory.ItemRepository
	Recorder       audit.Recorder
	InventoryCache cache.InventoryCache
	DeletePassword string
	FullLoadLimit  int
	CacheTTL       time.Duration
	Logger         *zap.Logger
}

// NewItemService creates a new ItemService
func NewItemService(cfg ItemServiceConfig) *ItemService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	inventoryCache := cfg.InventoryCache
	if inventoryCache == nil {
		inventoryCache = cache.NewNoopInventoryCache()
	}
	return &ItemService{
		items:          cfg.Items,
		recorder:       cfg.Recorder,
		inventoryCache: inventoryCache,
		deletePassword: cfg.DeletePassword,
		fullLoadLimit:  cfg.FullLoadLimit,
		cacheTTL:       cfg.CacheTTL,
		logger:         logger,
	}
}

// List returns the owner's items, most recently updated first, capped at the
// full-load limit. A fresh cache entry short-circuits the database read.
func (s *ItemService) List(ctx context.Context, ownerID uuid.UUID) (*ListResult, error) {
	if items, hit, err := s.inventoryCache.GetItems(ctx, ownerID); err == nil && hit {
		return s.listResult(items, true), nil
	} else if err != nil {
		s.logger.Warn("Inventory cache read failed, falling back to database",
			zap.String("owner_id", ownerID.String()),
			zap.Error(err))
	}

	items, err := s.items.FindAllForOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if s.fullLoadLimit > 0 && len(items) > s.fullLoadLimit {
		items = items[:s.fullLoadLimit]
	}

	if err := s.inventoryCache.SetItems(ctx, ownerID, items, s.cacheTTL); err != nil {
		s.logger.Warn("Inventory cache write failed",
			zap.String("owner_id", ownerID.String()),
			zap.Error(err))
	}

	return s.listResult(items, false), nil
}

// Get returns one owned item
func (s *ItemService) Get(ctx context.Context, ownerID, itemID uuid.UUID) (*ItemView, error) {
	item, err := s.items.FindByIDForOwner(ctx, ownerID, itemID)
	if err != nil {
		return nil, err
	}
	view := itemView(item)
	return &view, nil
}

// Create creates a new item for the owner. A duplicate internal SKU under the
// same owner surfaces as shared.ErrAlreadyExists.
func (s *ItemService) Create(ctx context.Context, ownerID uuid.UUID, input CreateItemInput) (*ItemView, error) {
	item, err := inventory.NewItem(ownerID, input.SKUInternal)
	if err != nil {
		return nil, err
	}

	item.Title = strings.TrimSpace(input.Title)
	item.Price = input.Price
	item.Stock = input.Stock
	item.SellerCustomField = strings.TrimSpace(input.SellerCustomField)
	item.SetListingID(input.ListingID)
	if input.Status != "" {
		status := inventory.Status(input.Status)
		if !status.IsValid() {
			return nil, shared.NewDomainError("INVALID_STATUS", "Status must be active, paused or inactive")
		}
		item.Status = status
	}

	if err := s.items.Save(ctx, item); err != nil {
		return nil, err
	}

	s.invalidate(ctx, ownerID)
	s.audit(ctx, audit.ActionInventoryCreate, ownerID, item.ID.String(), map[string]any{
		"sku": item.SKUInternal,
	})

	view := itemView(item)
	return &view, nil
}

// Update applies the set fields of the input to an owned item
func (s *ItemService) Update(ctx context.Context, ownerID, itemID uuid.UUID, input UpdateItemInput) (*ItemView, error) {
	item, err := s.items.FindByIDForOwner(ctx, ownerID, itemID)
	if err != nil {
		return nil, err
	}

	changed := map[string]any{}
	if input.Title != nil {
		item.Title = strings.TrimSpace(*input.Title)
		changed["title"] = item.Title
	}
	if input.Price != nil {
		item.Price = input.Price
		changed["price"] = input.Price.String()
	}
	if input.Stock != nil {
		item.Stock = *input.Stock
		changed["stock"] = *input.Stock
	}
	if input.SellerCustomField != nil {
		item.SellerCustomField = strings.TrimSpace(*input.SellerCustomField)
		changed["seller_custom_field"] = item.SellerCustomField
	}
	if input.ListingID != nil {
		item.SetListingID(*input.ListingID)
		changed["listing_id"] = *input.ListingID
	}
	if input.Status != nil {
		status := inventory.Status(*input.Status)
		if !status.IsValid() {
			return nil, shared.NewDomainError("INVALID_STATUS", "Status must be active, paused or inactive")
		}
		item.Status = status
		changed["status"] = status.String()
	}

	if len(changed) == 0 {
		view := itemView(item)
		return &view, nil
	}

	item.UpdatedAt = time.Now()
	if err := s.items.Save(ctx, item); err != nil {
		return nil, err
	}

	s.invalidate(ctx, ownerID)
	s.audit(ctx, audit.ActionInventoryUpdate, ownerID, item.ID.String(), changed)

	view := itemView(item)
	return &view, nil
}

// Delete removes the owner's items among ids. When a delete password is
// configured the caller must present it; the comparison is constant-time.
// Returns the number of rows actually deleted.
func (s *ItemService) Delete(ctx context.Context, ownerID uuid.UUID, input DeleteItemsInput) (int64, error) {
	if s.deletePassword != "" &&
		subtle.ConstantTimeCompare([]byte(input.Password), []byte(s.deletePassword)) != 1 {
		return 0, shared.ErrForbidden
	}

	ids, err := parseUUIDs(input.IDs)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, shared.ErrInvalidInput
	}

	deleted, err := s.items.DeleteManyForOwner(ctx, ownerID, ids)
	if err != nil {
		return 0, err
	}
	if deleted == 0 {
		return 0, shared.ErrNotFound
	}

	s.invalidate(ctx, ownerID)
	s.audit(ctx, audit.ActionInventoryDelete, ownerID, "", map[string]any{
		"requested_ids": input.IDs,
		"deleted_count": deleted,
	})

	return deleted, nil
}

// invalidate drops the owner's cached snapshot, logging failures
func (s *ItemService) invalidate(ctx context.Context, ownerID uuid.UUID) {
	if err := s.inventoryCache.Invalidate(ctx, ownerID); err != nil {
		s.logger.Warn("Failed to invalidate inventory cache",
			zap.String("owner_id", ownerID.String()),
			zap.Error(err))
	}
}

// audit writes one record for a mutation, logging but not propagating failures
func (s *ItemService) audit(ctx context.Context, action string, ownerID uuid.UUID, itemID string, meta map[string]any) {
	rec := audit.NewRecord(action).WithUser(ownerID)
	if itemID != "" {
		rec = rec.WithItem(itemID)
	}
	for k, v := range meta {
		rec = rec.WithMeta(k, v)
	}
	if err := s.recorder.Record(ctx, rec); err != nil {
		s.logger.Error("Failed to write inventory audit record",
			zap.String("action", action),
			zap.Error(err))
	}
}

func (s *ItemService) listResult(items []inventory.Item, fromCache bool) *ListResult {
	views := make([]ItemView, len(items))
	for i := range items {
		views[i] = itemView(&items[i])
	}
	return &ListResult{Items: views, Total: int64(len(items)), FromCache: fromCache}
}

func itemView(item *inventory.Item) ItemView {
	return ItemView{
		ID:                item.ID.String(),
		SKUInternal:       item.SKUInternal,
		Title:             item.Title,
		Price:             item.Price,
		Stock:             item.Stock,
		ListingID:         item.ListingID,
		SellerCustomField: item.SellerCustomField,
		Status:            item.Status.String(),
		CreatedAt:         item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:         item.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func parseUUIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(strings.TrimSpace(r))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
