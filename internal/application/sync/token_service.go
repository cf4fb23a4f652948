package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/zndr1991-lab/GanteParts/internal/domain/marketplace"
)

// TokenService hands out access tokens that are guaranteed usable for at
// least the credential expiry buffer. Refreshes are serialized per credential
// with singleflight so concurrent callers trigger exactly one network call.
type TokenService struct {
	credentials marketplace.CredentialRepository
	api         marketplace.API
	group       singleflight.Group
	now         func() time.Time
}

// NewTokenService creates a new TokenService
func NewTokenService(credentials marketplace.CredentialRepository, api marketplace.API) *TokenService {
	return &TokenService{
		credentials: credentials,
		api:         api,
		now:         time.Now,
	}
}

// ValidAccessToken returns a usable access token for the user's linked
// marketplace account, refreshing it first when it is inside the expiry
// buffer. Returns marketplace.ErrCredentialNotFound when no account is
// linked and marketplace.ErrCredentialInvalid when the refresh is rejected.
func (s *TokenService) ValidAccessToken(ctx context.Context, userID uuid.UUID) (string, error) {
	credential, err := s.credentials.FindByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	return s.freshToken(ctx, credential, func(ctx context.Context) (*marketplace.Credential, error) {
		return s.credentials.FindByUserID(ctx, userID)
	})
}

// ValidAccessTokenByMeliUserID is ValidAccessToken keyed by the marketplace
// seller account instead of the local user
func (s *TokenService) ValidAccessTokenByMeliUserID(ctx context.Context, meliUserID string) (string, error) {
	credential, err := s.credentials.FindByMeliUserID(ctx, meliUserID)
	if err != nil {
		return "", err
	}
	return s.freshToken(ctx, credential, func(ctx context.Context) (*marketplace.Credential, error) {
		return s.credentials.FindByMeliUserID(ctx, meliUserID)
	})
}

// freshToken returns the credential's token, refreshing through singleflight
// when needed. The credential is re-read inside the flight because a
// concurrent flight may have already refreshed and persisted it.
func (s *TokenService) freshToken(ctx context.Context, credential *marketplace.Credential,
	reload func(context.Context) (*marketplace.Credential, error)) (string, error) {

	if !credential.NeedsRefresh(s.now()) {
		return credential.AccessToken, nil
	}

	token, err, _ := s.group.Do(credential.ID.String(), func() (any, error) {
		fresh, err := reload(ctx)
		if err != nil {
			return "", err
		}
		if !fresh.NeedsRefresh(s.now()) {
			return fresh.AccessToken, nil
		}

		grant, err := s.api.RefreshGrant(ctx, fresh.RefreshToken)
		if err != nil {
			return "", err
		}

		fresh.ApplyGrant(*grant)
		if err := s.credentials.Upsert(ctx, fresh); err != nil {
			return "", err
		}
		return fresh.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return token.(string), nil
}
