package sync

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/zndr1991-lab/GanteParts/internal/domain/inventory"
)

// SyncStatus represents the overall outcome of a batch operation
type SyncStatus string

const (
	// SyncStatusSuccess means every requested item succeeded
	SyncStatusSuccess SyncStatus = "SUCCESS"
	// SyncStatusPartial means some items succeeded and some failed
	SyncStatusPartial SyncStatus = "PARTIAL"
	// SyncStatusFailed means no item succeeded
	SyncStatusFailed SyncStatus = "FAILED"
)

// SyncFailure describes one item that failed within a batch
type SyncFailure struct {
	ItemID       string `json:"id"`
	ErrorMessage string `json:"error"`
}

// BatchResult summarizes a batch action over owned items
type BatchResult struct {
	Status         SyncStatus    `json:"status"`
	RequestedCount int           `json:"requestedCount"`
	SuccessCount   int           `json:"successCount"`
	FailedItems    []SyncFailure `json:"failed"`
	SyncedAt       time.Time     `json:"syncedAt"`
}

// Partial reports whether some but not all items failed
func (r *BatchResult) Partial() bool {
	return r.Status == SyncStatusPartial
}

// WebhookPayload is the notification body MercadoLibre posts. UserID is a raw
// JSON number because the platform sends it unquoted.
type WebhookPayload struct {
	Topic    string      `json:"topic"`
	Resource string      `json:"resource"`
	UserID   json.Number `json:"user_id"`
	Attempts int         `json:"attempts"`
	Sent     string      `json:"sent"`
	Received string      `json:"received"`
}

// Webhook terminal reasons. Every processed notification lands on exactly one.
const (
	ReasonProcessed       = "processed"
	ReasonPayloadInvalid  = "payload_invalid"
	ReasonBadSignature    = "bad_signature"
	ReasonIgnored         = "ignored"
	ReasonNoItemID        = "no_item_id"
	ReasonAccountNotFound = "account_not_found"
	ReasonFetchFailed     = "fetch_failed"
)

// WebhookOutcome is the terminal result of processing one inbound
// notification. Unauthorized selects the 401 response; OK mirrors the ack
// body so the platform knows whether to redeliver.
type WebhookOutcome struct {
	OK           bool
	Unauthorized bool
	Reason       string
	ListingID    string
	UserID       *uuid.UUID
	RemoteStatus string
	MappedStatus inventory.Status
	UpdatedCount int64
	Error        string
}
