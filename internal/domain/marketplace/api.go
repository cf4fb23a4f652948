package marketplace

import "context"

// RemoteItem is the authoritative listing snapshot fetched from the
// marketplace. AvailableQuantity is nil when the listing type does not
// report a quantity.
type RemoteItem struct {
	ID                string
	Status            string
	AvailableQuantity *int
	Title             string
}

// ExchangeResult is the outcome of an OAuth authorization code exchange
type ExchangeResult struct {
	TokenGrant
	MeliUserID string
}

// API is the outbound port to the marketplace platform
type API interface {
	// AuthorizationURL builds the user-facing OAuth authorization URL for
	// the given opaque state value
	AuthorizationURL(state string) string

	// ExchangeCode trades an authorization code for a token grant
	ExchangeCode(ctx context.Context, code string) (*ExchangeResult, error)

	// RefreshGrant trades a refresh token for a new grant.
	// Returns ErrCredentialInvalid when the marketplace rejects the token.
	RefreshGrant(ctx context.Context, refreshToken string) (*TokenGrant, error)

	// FetchItem retrieves the listing snapshot for a listing id
	FetchItem(ctx context.Context, accessToken, listingID string) (*RemoteItem, error)

	// SetItemStatus updates the listing status on the marketplace
	SetItemStatus(ctx context.Context, accessToken, listingID, status string) error
}
