package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zndr1991-lab/GanteParts/internal/domain/inventory"
	"github.com/zndr1991-lab/GanteParts/internal/domain/shared"
)

// GormItemRepository implements inventory.ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByID finds an item by its ID
func (r *GormItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Item, error) {
	var item inventory.Item
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByIDForOwner finds an item by ID scoped to an owner
func (r *GormItemRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*inventory.Item, error) {
	var item inventory.Item
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByIDsForOwner finds items by IDs scoped to an owner. IDs that do not
// exist or belong to another owner are simply absent from the result.
func (r *GormItemRepository) FindByIDsForOwner(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]inventory.Item, error) {
	if len(ids) == 0 {
		return []inventory.Item{}, nil
	}

	var items []inventory.Item
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND id IN ?", ownerID, ids).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindAllForOwner lists all items owned by a user, most recently updated first
func (r *GormItemRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID) ([]inventory.Item, error) {
	var items []inventory.Item
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("updated_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindOwnerByListingID resolves a listing id to the owner of the first
// matching item, matching case-insensitively
func (r *GormItemRepository) FindOwnerByListingID(ctx context.Context, listingID string) (uuid.UUID, error) {
	var item inventory.Item
	if err := r.db.WithContext(ctx).
		Select("owner_id").
		Where("LOWER(listing_id) = ?", strings.ToLower(listingID)).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, shared.ErrNotFound
		}
		return uuid.Nil, err
	}
	return item.OwnerID, nil
}

// UpdateManyByListingID applies a listing patch to every item of the owner
// whose listing id matches case-insensitively. Duplicate listing ids under
// one owner are all updated; the row count is returned.
func (r *GormItemRepository) UpdateManyByListingID(ctx context.Context, ownerID uuid.UUID, listingID string, patch inventory.ListingPatch) (int64, error) {
	updates := map[string]any{
		"status":     patch.Status,
		"updated_at": time.Now(),
	}
	if patch.Stock != nil {
		updates["stock"] = *patch.Stock
	}

	result := r.db.WithContext(ctx).
		Model(&inventory.Item{}).
		Where("owner_id = ? AND LOWER(listing_id) = ?", ownerID, strings.ToLower(listingID)).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// UpdateStatus sets the local status of a single item
func (r *GormItemRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status inventory.Status) error {
	result := r.db.WithContext(ctx).
		Model(&inventory.Item{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Save creates or updates an item
func (r *GormItemRepository) Save(ctx context.Context, item *inventory.Item) error {
	err := r.db.WithContext(ctx).Save(item).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	return err
}

// DeleteManyForOwner deletes the owner's items among ids, returning the count
func (r *GormItemRepository) DeleteManyForOwner(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).
		Where("owner_id = ? AND id IN ?", ownerID, ids).
		Delete(&inventory.Item{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// CountForOwner counts items owned by a user
func (r *GormItemRepository) CountForOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&inventory.Item{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormItemRepository implements ItemRepository
var _ inventory.ItemRepository = (*GormItemRepository)(nil)
