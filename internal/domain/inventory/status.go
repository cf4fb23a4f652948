package inventory

import "strings"

// Status is the local listing status of an inventory item
type Status string

const (
	// StatusActive means the listing is live on the marketplace
	StatusActive Status = "active"
	// StatusPaused means the listing exists but is not purchasable
	StatusPaused Status = "paused"
	// StatusInactive means the listing is closed, under review, or unknown
	StatusInactive Status = "inactive"
)

// IsValid returns true if the status is one of the three local statuses
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusPaused, StatusInactive:
		return true
	default:
		return false
	}
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// remoteStatusTable maps the marketplace status vocabulary onto the local
// three-value set. Anything absent from this table maps to inactive, so a
// status the marketplace introduces later can never leave a listing looking
// falsely active.
var remoteStatusTable = map[string]Status{
	"active":           StatusActive,
	"paused":           StatusPaused,
	"closed":           StatusInactive,
	"inactive":         StatusInactive,
	"not_yet_active":   StatusInactive,
	"under_review":     StatusInactive,
	"payment_required": StatusInactive,
}

// MapRemoteStatus maps a remote marketplace status to the local status set.
// Unknown and empty statuses default to inactive.
func MapRemoteStatus(remote string) Status {
	if mapped, ok := remoteStatusTable[strings.ToLower(remote)]; ok {
		return mapped
	}
	return StatusInactive
}
