package inventory

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zndr1991-lab/GanteParts/internal/domain/shared"
)

// Item represents a single unit of owned inventory. It is the aggregate root
// for the inventory bounded context; marketplace state (listing id, status,
// stock) is reconciled onto it by the sync subsystem.
type Item struct {
	shared.BaseEntity
	OwnerID           uuid.UUID        `gorm:"type:uuid;not null;index;uniqueIndex:idx_items_owner_sku,priority:1"`
	SKUInternal       string           `gorm:"column:sku_internal;size:128;not null;uniqueIndex:idx_items_owner_sku,priority:2"`
	Title             string           `gorm:"size:256"`
	Price             *decimal.Decimal `gorm:"type:decimal(18,2)"`
	Stock             int              `gorm:"not null;default:0"`
	ListingID         *string          `gorm:"size:64;index"` // MercadoLibre item id, uppercase-normalized
	SellerCustomField string           `gorm:"size:128"`
	Status            Status           `gorm:"size:16;not null;default:'inactive'"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "inventory_items"
}

// NewItem creates a new inventory item owned by the given user
func NewItem(ownerID uuid.UUID, skuInternal string) (*Item, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner ID cannot be empty")
	}
	if strings.TrimSpace(skuInternal) == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "Internal SKU cannot be empty")
	}

	return &Item{
		BaseEntity:  shared.NewBaseEntity(),
		OwnerID:     ownerID,
		SKUInternal: strings.TrimSpace(skuInternal),
		Status:      StatusInactive,
	}, nil
}

// SetListingID normalizes and assigns the remote listing id.
// Listing ids are stored uppercase so lookups can match case-insensitively.
func (i *Item) SetListingID(listingID string) {
	normalized := strings.ToUpper(strings.TrimSpace(listingID))
	if normalized == "" {
		i.ListingID = nil
		return
	}
	i.ListingID = &normalized
}

// HasListing returns true if the item is linked to a remote listing
func (i *Item) HasListing() bool {
	return i.ListingID != nil && *i.ListingID != ""
}
