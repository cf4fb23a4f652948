package mercadolibre

import (
	"errors"
	"time"
)

// Config holds configuration for the MercadoLibre API integration
type Config struct {
	// AppID is the application id from the MercadoLibre developer console
	AppID string
	// AppSecret is the application secret
	AppSecret string
	// RedirectURI is the registered OAuth callback URL
	RedirectURI string
	// WebhookSecret signs inbound webhook notifications.
	// Empty disables signature verification.
	WebhookSecret string
	// APIBaseURL is the base URL for the MercadoLibre API
	APIBaseURL string
	// AuthURL is the authorization page users are redirected to
	AuthURL string
	// Timeout is the per-request HTTP timeout
	Timeout time.Duration
}

const (
	// ProductionAPIURL is the production API endpoint
	ProductionAPIURL = "https://api.mercadolibre.com"
	// ProductionAuthURL is the Mexican-site authorization endpoint
	ProductionAuthURL = "https://auth.mercadolibre.com.mx/authorization"
)

// Errors for MercadoLibre configuration
var (
	ErrConfigMissingAppID     = errors.New("mercadolibre: app id is required")
	ErrConfigMissingAppSecret = errors.New("mercadolibre: app secret is required")
)

// NewConfig creates a new MercadoLibre configuration with defaults
func NewConfig(appID, appSecret, redirectURI string) *Config {
	return &Config{
		AppID:       appID,
		AppSecret:   appSecret,
		RedirectURI: redirectURI,
		APIBaseURL:  ProductionAPIURL,
		AuthURL:     ProductionAuthURL,
		Timeout:     15 * time.Second,
	}
}

// Validate validates the configuration and fills defaults
func (c *Config) Validate() error {
	if c.AppID == "" {
		return ErrConfigMissingAppID
	}
	if c.AppSecret == "" {
		return ErrConfigMissingAppSecret
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = ProductionAPIURL
	}
	if c.AuthURL == "" {
		c.AuthURL = ProductionAuthURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	return nil
}
