package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Actions recorded by the synchronization subsystem and the inventory CRUD
// layer. Every terminal branch of webhook processing and every batch action
// writes exactly one record, so the log is a complete trace of what happened
// to every inbound call.
const (
	ActionWebhook         = "ml:webhook"
	ActionPause           = "ml:pause"
	ActionActivate        = "ml:activate"
	ActionAccountLinked   = "ml:link"
	ActionInventoryCreate = "inventory:create"
	ActionInventoryUpdate = "inventory:update"
	ActionInventoryDelete = "inventory:delete"
)

// Record is one append-only audit row. UserID is nil when the event could not
// be attributed to a local user; ItemID holds a listing id or local item id
// depending on the action.
type Record struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Action    string         `gorm:"size:64;not null;index"`
	UserID    *uuid.UUID     `gorm:"type:uuid;index"`
	ItemID    *string        `gorm:"size:64"`
	Metadata  map[string]any `gorm:"serializer:json"`
	CreatedAt time.Time      `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (Record) TableName() string {
	return "audit_logs"
}

// NewRecord creates an audit record for the given action
func NewRecord(action string) *Record {
	return &Record{
		ID:        uuid.New(),
		Action:    action,
		Metadata:  make(map[string]any),
		CreatedAt: time.Now(),
	}
}

// WithUser attributes the record to a local user
func (r *Record) WithUser(userID uuid.UUID) *Record {
	r.UserID = &userID
	return r
}

// WithItem attaches an item identifier (listing id or local id)
func (r *Record) WithItem(itemID string) *Record {
	r.ItemID = &itemID
	return r
}

// WithMeta sets a metadata key
func (r *Record) WithMeta(key string, value any) *Record {
	r.Metadata[key] = value
	return r
}

// Recorder is the append-only audit port. Implementations must not allow
// updates or deletes through this interface.
type Recorder interface {
	Record(ctx context.Context, record *Record) error
}

// Reader provides read access to the audit trail for operator surfaces
// such as the notifications feed.
type Reader interface {
	// FindRecentByUser returns the user's most recent records for the given
	// actions, newest first, capped at limit.
	FindRecentByUser(ctx context.Context, userID uuid.UUID, actions []string, limit int) ([]Record, error)
}
