package marketplace

import (
	"context"

	"github.com/google/uuid"
)

// CredentialRepository defines the persistence port for marketplace credentials
type CredentialRepository interface {
	// FindByUserID finds the credential linked to a local user.
	// Returns ErrCredentialNotFound when the user has no linked account.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Credential, error)

	// FindByMeliUserID finds the credential for a marketplace seller account.
	// Returns ErrCredentialNotFound when the account is not linked locally.
	FindByMeliUserID(ctx context.Context, meliUserID string) (*Credential, error)

	// Upsert creates the credential or updates it in place on the
	// (user_id, meli_user_id) pair. Credentials are never hard-deleted here.
	Upsert(ctx context.Context, credential *Credential) error
}
