package inventory

import (
	"github.com/shopspring/decimal"
)

// CreateItemInput carries the fields accepted when creating an item
type CreateItemInput struct {
	SKUInternal       string           `json:"skuInternal" binding:"required"`
	Title             string           `json:"title"`
	Price             *decimal.Decimal `json:"price"`
	Stock             int              `json:"stock"`
	ListingID         string           `json:"listingId"`
	SellerCustomField string           `json:"sellerCustomField"`
	Status            string           `json:"status"`
}

// UpdateItemInput carries the updatable fields. Pointer fields distinguish
// "not sent" from "set to zero value".
type UpdateItemInput struct {
	Title             *string          `json:"title"`
	Price             *decimal.Decimal `json:"price"`
	Stock             *int             `json:"stock"`
	ListingID         *string          `json:"listingId"`
	SellerCustomField *string          `json:"sellerCustomField"`
	Status            *string          `json:"status"`
}

// DeleteItemsInput is a bulk delete request gated by the delete password
type DeleteItemsInput struct {
	IDs      []string `json:"ids" binding:"required"`
	Password string   `json:"password"`
}

// ListResult is a page of inventory items with cache provenance
type ListResult struct {
	Items     []ItemView `json:"items"`
	Total     int64      `json:"total"`
	FromCache bool       `json:"fromCache"`
}

// ItemView is the read model served to clients
type ItemView struct {
	ID                string           `json:"id"`
	SKUInternal       string           `json:"skuInternal"`
	Title             string           `json:"title"`
	Price             *decimal.Decimal `json:"price"`
	Stock             int              `json:"stock"`
	ListingID         *string          `json:"listingId"`
	SellerCustomField string           `json:"sellerCustomField"`
	Status            string           `json:"status"`
	CreatedAt         string           `json:"createdAt"`
	UpdatedAt         string           `json:"updatedAt"`
}
