package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zndr1991-lab/GanteParts/internal/domain/audit"
)

// GormAuditRepository implements the audit.Recorder and audit.Reader ports
// using GORM. Rows are only ever inserted; there is no update or delete path.
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Record appends an audit record
func (r *GormAuditRepository) Record(ctx context.Context, record *audit.Record) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// FindRecentByUser returns the user's most recent records for the given
// actions, newest first, capped at limit
func (r *GormAuditRepository) FindRecentByUser(ctx context.Context, userID uuid.UUID, actions []string, limit int) ([]audit.Record, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit)
	if len(actions) > 0 {
		query = query.Where("action IN ?", actions)
	}

	var records []audit.Record
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Ensure GormAuditRepository implements both audit ports
var (
	_ audit.Recorder = (*GormAuditRepository)(nil)
	_ audit.Reader   = (*GormAuditRepository)(nil)
)
