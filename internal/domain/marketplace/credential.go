package marketplace

import (
	"time"

	"github.com/google/uuid"

	"github.com/zndr1991-lab/GanteParts/internal/domain/shared"
)

// ExpiryBuffer is subtracted from the remote-reported token lifetime before
// storing, so a token is never used in its last seconds of validity.
const ExpiryBuffer = 60 * time.Second

// Credential holds one OAuth credential set linking a local user to a
// MercadoLibre seller account. It is created on the initial code exchange and
// mutated in place on every refresh; the refresh token may rotate.
type Credential struct {
	shared.BaseEntity
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_credentials_user_meli,priority:1"`
	MeliUserID   string    `gorm:"size:64;not null;index;uniqueIndex:idx_credentials_user_meli,priority:2"`
	AccessToken  string    `gorm:"size:512;not null"`
	RefreshToken string    `gorm:"size:512;not null"`
	Scope        *string   `gorm:"size:256"`
	ExpiresAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Credential) TableName() string {
	return "marketplace_credentials"
}

// NewCredential creates a credential from a completed OAuth code exchange
func NewCredential(userID uuid.UUID, meliUserID string, grant TokenGrant) (*Credential, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if meliUserID == "" {
		return nil, shared.NewDomainError("INVALID_MELI_USER", "Marketplace user ID cannot be empty")
	}

	c := &Credential{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		MeliUserID: meliUserID,
	}
	c.ApplyGrant(grant)
	return c, nil
}

// TokenGrant carries the fields of a token endpoint response that the
// credential persists.
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	Scope        string
	ExpiresIn    time.Duration
}

// ApplyGrant updates the credential from a token endpoint response. The
// expiry is stored with a safety buffer; when the remote lifetime is shorter
// than the buffer a minimal window is kept so the token is still usable once.
// An empty rotated refresh token keeps the previous one.
func (c *Credential) ApplyGrant(grant TokenGrant) {
	c.AccessToken = grant.AccessToken
	if grant.RefreshToken != "" {
		c.RefreshToken = grant.RefreshToken
	}
	if grant.Scope != "" {
		scope := grant.Scope
		c.Scope = &scope
	}

	lifetime := grant.ExpiresIn - ExpiryBuffer
	if lifetime < ExpiryBuffer {
		lifetime = ExpiryBuffer
	}
	c.ExpiresAt = time.Now().Add(lifetime)
	c.Touch()
}

// NeedsRefresh reports whether the access token is within the expiry buffer
// and must be refreshed before use.
func (c *Credential) NeedsRefresh(now time.Time) bool {
	return c.ExpiresAt.Sub(now) < ExpiryBuffer
}
