package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zndr1991-lab/GanteParts/internal/domain/audit"
	"github.com/zndr1991-lab/GanteParts/internal/domain/inventory"
	"github.com/zndr1991-lab/GanteParts/internal/domain/marketplace"
	"github.com/zndr1991-lab/GanteParts/internal/domain/shared"
	"github.com/zndr1991-lab/GanteParts/internal/infrastructure/cache"
)

// BatchAction is a bulk operation applied to owned items
type BatchAction string

const (
	// BatchActionPause pauses the listings on the marketplace
	BatchActionPause BatchAction = "pause"
	// BatchActionActivate re-activates the listings on the marketplace
	BatchActionActivate BatchAction = "activate"
)

// IsValid reports whether the action is supported
func (a BatchAction) IsValid() bool {
	return a == BatchActionPause || a == BatchActionActivate
}

// remoteStatus is the listing status written to the marketplace for the action
func (a BatchAction) remoteStatus() string {
	if a == BatchActionActivate {
		return "active"
	}
	return "paused"
}

// localStatus is the inventory status written locally after a remote success
func (a BatchAction) localStatus() inventory.Status {
	if a == BatchActionActivate {
		return inventory.StatusActive
	}
	return inventory.StatusPaused
}

// auditAction maps the batch action to its audit trail action name
func (a BatchAction) auditAction() string {
	if a == BatchActionActivate {
		return audit.ActionActivate
	}
	return audit.ActionPause
}

// BatchActionService applies pause/activate actions to owned items against
// the marketplace. Items are processed strictly sequentially; one item's
// failure never aborts the rest of the batch.
type BatchActionService struct {
	items          inventory.ItemRepository
	api            marketplace.API
	tokens         *TokenService
	recorder       audit.Recorder
	inventoryCache cache.InventoryCache
	logger         *zap.Logger
}

// BatchActionServiceConfig contains configuration for BatchActionService
type BatchActionServiceConfig struct {
	Items          inventory.ItemRepository
	API            marketplace.API
	Tokens         *TokenService
	Recorder       audit.Recorder
	InventoryCache cache.InventoryCache
	Logger         *zap.Logger
}

// NewBatchActionService creates a new BatchActionService
func NewBatchActionService(cfg BatchActionServiceConfig) *BatchActionService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	inventoryCache := cfg.InventoryCache
	if inventoryCache == nil {
		inventoryCache = cache.NewNoopInventoryCache()
	}
	return &BatchActionService{
		items:          cfg.Items,
		api:            cfg.API,
		tokens:         cfg.Tokens,
		recorder:       cfg.Recorder,
		inventoryCache: inventoryCache,
		logger:         logger,
	}
}

// ApplyAction applies the action to the owner's items among ids. IDs that do
// not exist or belong to another owner are silently excluded; shared.ErrNotFound
// is returned only when nothing at all is owned by the caller. One
// summarizing audit record is written per invocation, successes or not.
func (s *BatchActionService) ApplyAction(ctx context.Context, ownerID uuid.UUID, itemIDs []uuid.UUID, action BatchAction) (*BatchResult, error) {
	if !action.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACTION", "Action must be pause or activate")
	}

	items, err := s.items.FindByIDsForOwner(ctx, ownerID, itemIDs)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, shared.ErrNotFound
	}

	result := &BatchResult{
		Status:         SyncStatusFailed,
		RequestedCount: len(itemIDs),
		FailedItems:    make([]SyncFailure, 0),
		SyncedAt:       time.Now(),
	}

	for i := range items {
		item := &items[i]
		if !item.HasListing() {
			result.FailedItems = append(result.FailedItems, SyncFailure{
				ItemID:       item.ID.String(),
				ErrorMessage: "item has no marketplace listing",
			})
			continue
		}

		if err := s.applyToItem(ctx, ownerID, item, action); err != nil {
			result.FailedItems = append(result.FailedItems, SyncFailure{
				ItemID:       item.ID.String(),
				ErrorMessage: err.Error(),
			})
			continue
		}
		result.SuccessCount++
	}

	if result.SuccessCount > 0 {
		if len(result.FailedItems) == 0 {
			result.Status = SyncStatusSuccess
		} else {
			result.Status = SyncStatusPartial
		}
		if err := s.inventoryCache.Invalidate(ctx, ownerID); err != nil {
			s.logger.Warn("Failed to invalidate inventory cache",
				zap.String("owner_id", ownerID.String()),
				zap.Error(err))
		}
	}

	s.record(ctx, ownerID, itemIDs, action, result)
	return result, nil
}

// applyToItem pushes the status to the marketplace and mirrors it locally.
// The local write only happens after the remote accepted the change.
func (s *BatchActionService) applyToItem(ctx context.Context, ownerID uuid.UUID, item *inventory.Item, action BatchAction) error {
	token, err := s.tokens.ValidAccessToken(ctx, ownerID)
	if err != nil {
		return err
	}

	if err := s.api.SetItemStatus(ctx, token, *item.ListingID, action.remoteStatus()); err != nil {
		return err
	}

	return s.items.UpdateStatus(ctx, item.ID, action.localStatus())
}

// record writes the single summarizing audit row for this batch
func (s *BatchActionService) record(ctx context.Context, ownerID uuid.UUID, itemIDs []uuid.UUID, action BatchAction, result *BatchResult) {
	requested := make([]string, len(itemIDs))
	for i, id := range itemIDs {
		requested[i] = id.String()
	}

	rec := audit.NewRecord(action.auditAction()).
		WithUser(ownerID).
		WithMeta("requested_ids", requested).
		WithMeta("success_count", result.SuccessCount).
		WithMeta("failed", result.FailedItems)

	if err := s.recorder.Record(ctx, rec); err != nil {
		s.logger.Error("Failed to write batch audit record", zap.Error(err))
	}
}
