package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zndr1991-lab/GanteParts/internal/domain/marketplace"
)

// GormCredentialRepository implements marketplace.CredentialRepository using GORM
type GormCredentialRepository struct {
	db *gorm.DB
}

// NewGormCredentialRepository creates a new GormCredentialRepository
func NewGormCredentialRepository(db *gorm.DB) *GormCredentialRepository {
	return &GormCredentialRepository{db: db}
}

// FindByUserID finds the credential linked to a local user. A user who
// re-links with a different seller account accumulates one row per pair, so
// the most recently refreshed credential wins.
func (r *GormCredentialRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*marketplace.Credential, error) {
	var credential marketplace.Credential
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		First(&credential).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, marketplace.ErrCredentialNotFound
		}
		return nil, err
	}
	return &credential, nil
}

// FindByMeliUserID finds the credential for a marketplace seller account
func (r *GormCredentialRepository) FindByMeliUserID(ctx context.Context, meliUserID string) (*marketplace.Credential, error) {
	var credential marketplace.Credential
	if err := r.db.WithContext(ctx).
		Where("meli_user_id = ?", meliUserID).
		First(&credential).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, marketplace.ErrCredentialNotFound
		}
		return nil, err
	}
	return &credential, nil
}

// Upsert creates the credential or updates the token fields in place when the
// (user_id, meli_user_id) pair already exists
func (r *GormCredentialRepository) Upsert(ctx context.Context, credential *marketplace.Credential) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "meli_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"access_token", "refresh_token", "scope", "expires_at", "updated_at",
			}),
		}).
		Create(credential).Error
}

// Ensure GormCredentialRepository implements CredentialRepository
var _ marketplace.CredentialRepository = (*GormCredentialRepository)(nil)
