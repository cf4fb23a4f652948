package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zndr1991-lab/GanteParts/internal/domain/audit"
)

// defaultLimit caps the notification feed when the caller does not ask for a
// specific page size
const defaultLimit = 50

// maxLimit is the hard cap on a single feed read
const maxLimit = 200

// feedActions are the audit actions surfaced as notifications
var feedActions = []string{
	audit.ActionWebhook,
	audit.ActionPause,
	audit.ActionActivate,
	audit.ActionAccountLinked,
}

// Notification is one human-readable entry in the sync activity feed
type Notification struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Message   string    `json:"message"`
	ItemID    *string   `json:"itemId,omitempty"`
	OK        bool      `json:"ok"`
	CreatedAt time.Time `json:"createdAt"`
}

// Service turns the audit trail into a per-user notification feed. It is a
// pure read model over the append-only log; nothing here mutates state.
type Service struct {
	reader audit.Reader
}

// NewService creates a new notification Service
func NewService(reader audit.Reader) *Service {
	return &Service{reader: reader}
}

// Feed returns the user's most recent sync notifications, newest first
func (s *Service) Feed(ctx context.Context, userID uuid.UUID, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	records, err := s.reader.FindRecentByUser(ctx, userID, feedActions, limit)
	if err != nil {
		return nil, err
	}

	feed := make([]Notification, len(records))
	for i := range records {
		feed[i] = notificationFromRecord(&records[i])
	}
	return feed, nil
}

// notificationFromRecord renders one audit record as a feed entry
func notificationFromRecord(record *audit.Record) Notification {
	ok, _ := record.Metadata["ok"].(bool)

	n := Notification{
		ID:        record.ID.String(),
		Action:    record.Action,
		ItemID:    record.ItemID,
		OK:        ok,
		CreatedAt: record.CreatedAt,
	}

	switch record.Action {
	case audit.ActionWebhook:
		n.Message = webhookMessage(record, ok)
	case audit.ActionPause:
		n.Message = batchMessage("Pausa masiva", record)
	case audit.ActionActivate:
		n.Message = batchMessage("Activación masiva", record)
	case audit.ActionAccountLinked:
		n.OK = true
		n.Message = "Cuenta de MercadoLibre vinculada"
	default:
		n.Message = record.Action
	}
	return n
}

func webhookMessage(record *audit.Record, ok bool) string {
	reason, _ := record.Metadata["reason"].(string)
	item := ""
	if record.ItemID != nil {
		item = " " + *record.ItemID
	}

	switch reason {
	case "processed":
		status, _ := record.Metadata["mapped_status"].(string)
		return fmt.Sprintf("Publicación%s sincronizada (%s)", item, status)
	case "bad_signature":
		return "Notificación rechazada: firma inválida"
	case "account_not_found":
		return fmt.Sprintf("Notificación%s sin cuenta vinculada", item)
	default:
		if ok {
			return fmt.Sprintf("Notificación%s ignorada", item)
		}
		return fmt.Sprintf("Error al sincronizar publicación%s", item)
	}
}

func batchMessage(prefix string, record *audit.Record) string {
	success := metadataInt(record.Metadata["success_count"])
	return fmt.Sprintf("%s: %d publicaciones actualizadas", prefix, success)
}

// metadataInt reads a numeric metadata value regardless of how the JSON
// serializer round-tripped it
func metadataInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
