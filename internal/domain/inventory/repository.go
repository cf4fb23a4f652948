package inventory

import (
	"context"

	"github.com/google/uuid"
)

// ListingPatch is the set of fields a marketplace reconciliation may write.
// Stock is optional because not every remote snapshot reports a quantity.
type ListingPatch struct {
	Status Status
	Stock  *int
}

// ItemRepository defines the persistence port for inventory items
type ItemRepository interface {
	// FindByID finds an item by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)

	// FindByIDForOwner finds an item by ID scoped to an owner
	FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*Item, error)

	// FindByIDsForOwner finds items by IDs scoped to an owner.
	// IDs belonging to another owner are silently absent from the result.
	FindByIDsForOwner(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]Item, error)

	// FindAllForOwner lists all items owned by a user, most recently updated first
	FindAllForOwner(ctx context.Context, ownerID uuid.UUID) ([]Item, error)

	// FindOwnerByListingID resolves a listing id to the owner of the first
	// matching item. Matching is case-insensitive. Returns shared.ErrNotFound
	// when no item carries the listing id.
	FindOwnerByListingID(ctx context.Context, listingID string) (uuid.UUID, error)

	// UpdateManyByListingID applies a listing patch to every item of the owner
	// whose listing id matches case-insensitively, returning the number of
	// rows updated. The set-based update deliberately tolerates duplicate
	// listing ids under one owner.
	UpdateManyByListingID(ctx context.Context, ownerID uuid.UUID, listingID string, patch ListingPatch) (int64, error)

	// UpdateStatus sets the local status of a single item
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error

	// Save creates or updates an item
	Save(ctx context.Context, item *Item) error

	// DeleteManyForOwner deletes the owner's items among ids, returning the count
	DeleteManyForOwner(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (int64, error)

	// CountForOwner counts items owned by a user
	CountForOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
}
