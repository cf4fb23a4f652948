package mercadolibre

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/zndr1991-lab/GanteParts/internal/domain/marketplace"
)

// maxResponseSize is the maximum allowed response size from the API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// Client implements the marketplace.API port against the MercadoLibre REST API
type Client struct {
	config     *Config
	httpClient *http.Client
}

// NewClient creates a new MercadoLibre client with the given configuration
func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

// AuthorizationURL builds the user-facing OAuth authorization URL for the
// given opaque state value
func (c *Client) AuthorizationURL(state string) string {
	values := url.Values{}
	values.Set("response_type", "code")
	values.Set("client_id", c.config.AppID)
	values.Set("redirect_uri", c.config.RedirectURI)
	values.Set("scope", "read write offline_access")
	values.Set("state", state)
	return c.config.AuthURL + "?" + values.Encode()
}

// ExchangeCode trades an authorization code for a token grant
func (c *Client) ExchangeCode(ctx context.Context, code string) (*marketplace.ExchangeResult, error) {
	values := url.Values{}
	values.Set("grant_type", "authorization_code")
	values.Set("client_id", c.config.AppID)
	values.Set("client_secret", c.config.AppSecret)
	values.Set("code", code)
	values.Set("redirect_uri", c.config.RedirectURI)

	token, err := c.requestToken(ctx, values)
	if err != nil {
		return nil, err
	}
	if token.UserID == 0 {
		return nil, fmt.Errorf("%w: token response missing user_id", marketplace.ErrRemoteInvalidResponse)
	}

	return &marketplace.ExchangeResult{
		TokenGrant: grantFromResponse(token),
		MeliUserID: strconv.FormatInt(token.UserID, 10),
	}, nil
}

// RefreshGrant trades a refresh token for a new grant. A rejection from the
// token endpoint means the stored credential is dead, not a transient fault,
// so it maps to ErrCredentialInvalid.
func (c *Client) RefreshGrant(ctx context.Context, refreshToken string) (*marketplace.TokenGrant, error) {
	values := url.Values{}
	values.Set("grant_type", "refresh_token")
	values.Set("client_id", c.config.AppID)
	values.Set("client_secret", c.config.AppSecret)
	values.Set("refresh_token", refreshToken)

	token, err := c.requestToken(ctx, values)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", marketplace.ErrCredentialInvalid, err)
	}

	grant := grantFromResponse(token)
	return &grant, nil
}

// FetchItem retrieves the authoritative listing snapshot for a listing id
func (c *Client) FetchItem(ctx context.Context, accessToken, listingID string) (*marketplace.RemoteItem, error) {
	respBody, err := c.doRequest(ctx, http.MethodGet, "/items/"+url.PathEscape(listingID), accessToken, nil)
	if err != nil {
		return nil, err
	}

	var item ItemResponse
	if err := json.Unmarshal(respBody, &item); err != nil {
		return nil, fmt.Errorf("%w: failed to parse item: %v", marketplace.ErrRemoteInvalidResponse, err)
	}

	remote := &marketplace.RemoteItem{
		ID:     item.ID,
		Title:  item.Title,
		Status: item.Status,
	}
	if item.AvailableQuantity != nil {
		if qty, err := item.AvailableQuantity.Int64(); err == nil {
			q := int(qty)
			remote.AvailableQuantity = &q
		}
	}
	return remote, nil
}

// SetItemStatus updates the listing status on the marketplace
func (c *Client) SetItemStatus(ctx context.Context, accessToken, listingID, status string) error {
	payload, err := json.Marshal(map[string]string{"status": status})
	if err != nil {
		return fmt.Errorf("mercadolibre: failed to encode status payload: %w", err)
	}

	_, err = c.doRequest(ctx, http.MethodPut, "/items/"+url.PathEscape(listingID), accessToken, payload)
	return err
}

// requestToken posts a form-encoded grant request to the token endpoint
func (c *Client) requestToken(ctx context.Context, values url.Values) (*TokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.APIBaseURL+"/oauth/token",
		strings.NewReader(values.Encode()))
	if err != nil {
		return nil, fmt.Errorf("mercadolibre: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", marketplace.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("mercadolibre: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: token endpoint HTTP %d: %s",
			marketplace.ErrRemoteRequestFailed, resp.StatusCode, apiErrorMessage(body))
	}

	var token TokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("%w: failed to parse token response: %v", marketplace.ErrRemoteInvalidResponse, err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: token response missing access_token", marketplace.ErrRemoteInvalidResponse)
	}

	return &token, nil
}

// doRequest performs an authenticated JSON request against the API
func (c *Client) doRequest(ctx context.Context, method, path, accessToken string, payload []byte) ([]byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = strings.NewReader(string(payload))
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.APIBaseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("mercadolibre: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", marketplace.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("mercadolibre: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: %s %s HTTP %d: %s",
			marketplace.ErrRemoteRequestFailed, method, path, resp.StatusCode, apiErrorMessage(body))
	}

	return body, nil
}

// apiErrorMessage extracts a human-readable message from an API error body
func apiErrorMessage(body []byte) string {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		return apiErr.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 256 {
		msg = msg[:256]
	}
	if msg == "" {
		return "empty error body"
	}
	return msg
}

// grantFromResponse converts a token endpoint response into a domain grant
func grantFromResponse(token *TokenResponse) marketplace.TokenGrant {
	return marketplace.TokenGrant{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Scope:        token.Scope,
		ExpiresIn:    time.Duration(token.ExpiresIn) * time.Second,
	}
}

// Ensure Client implements the marketplace API port
var _ marketplace.API = (*Client)(nil)
