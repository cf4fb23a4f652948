package sync

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zndr1991-lab/GanteParts/internal/domain/audit"
	"github.com/zndr1991-lab/GanteParts/internal/domain/marketplace"
)

// stateLength is the number of random bytes in an OAuth state value
const stateLength = 24

// OAuthService drives the account-linking flow: authorization redirect with
// an opaque state, then code exchange and credential upsert on callback.
type OAuthService struct {
	credentials marketplace.CredentialRepository
	api         marketplace.API
	recorder    audit.Recorder
	logger      *zap.Logger
}

// OAuthServiceConfig contains configuration for OAuthService
type OAuthServiceConfig struct {
	Credentials marketplace.CredentialRepository
	API         marketplace.API
	Recorder    audit.Recorder
	Logger      *zap.Logger
}

// NewOAuthService creates a new OAuthService
func NewOAuthService(cfg OAuthServiceConfig) *OAuthService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OAuthService{
		credentials: cfg.Credentials,
		api:         cfg.API,
		recorder:    cfg.Recorder,
		logger:      logger,
	}
}

// NewState generates a fresh random state value for the authorization flow
func NewState() (string, error) {
	buf := make([]byte, stateLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// AuthorizationURL builds the marketplace authorization URL carrying state
func (s *OAuthService) AuthorizationURL(state string) string {
	return s.api.AuthorizationURL(state)
}

// LinkAccount completes the OAuth flow for a user: exchanges the code,
// creates or refreshes the credential and records the link in the audit
// trail. The caller is responsible for having validated the state value.
func (s *OAuthService) LinkAccount(ctx context.Context, userID uuid.UUID, code string) (*marketplace.Credential, error) {
	result, err := s.api.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	credential, err := marketplace.NewCredential(userID, result.MeliUserID, result.TokenGrant)
	if err != nil {
		return nil, err
	}

	if err := s.credentials.Upsert(ctx, credential); err != nil {
		return nil, err
	}

	rec := audit.NewRecord(audit.ActionAccountLinked).
		WithUser(userID).
		WithMeta("meli_user_id", result.MeliUserID)
	if err := s.recorder.Record(ctx, rec); err != nil {
		s.logger.Error("Failed to write account link audit record", zap.Error(err))
	}

	s.logger.Info("Marketplace account linked",
		zap.String("user_id", userID.String()),
		zap.String("meli_user_id", result.MeliUserID))

	return credential, nil
}
