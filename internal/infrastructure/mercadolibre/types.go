package mercadolibre

import "encoding/json"

// TokenResponse is the token endpoint response for both the authorization
// code exchange and the refresh grant
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope"`
	UserID       int64  `json:"user_id"`
	RefreshToken string `json:"refresh_token"`
}

// ItemResponse is the listing resource returned by GET /items/{id}.
// AvailableQuantity is a raw JSON number because some listing types omit it
// and the zero value must stay distinguishable from absent.
type ItemResponse struct {
	ID                string       `json:"id"`
	Title             string       `json:"title"`
	Status            string       `json:"status"`
	AvailableQuantity *json.Number `json:"available_quantity"`
}

// APIError is the error envelope the MercadoLibre API returns on non-2xx
type APIError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Status  int    `json:"status"`
}
