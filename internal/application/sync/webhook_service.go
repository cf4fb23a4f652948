package sync

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/zndr1991-lab/GanteParts/internal/domain/audit"
	"github.com/zndr1991-lab/GanteParts/internal/domain/inventory"
	"github.com/zndr1991-lab/GanteParts/internal/domain/marketplace"
	"github.com/zndr1991-lab/GanteParts/internal/infrastructure/cache"
	"github.com/zndr1991-lab/GanteParts/internal/infrastructure/mercadolibre"
)

// supportedTopics is the set of notification topics that trigger
// reconciliation; everything else is acknowledged and ignored
var supportedTopics = map[string]bool{
	"items": true,
}

// WebhookService reconciles inbound marketplace notifications against local
// inventory. Processing is idempotent: the authoritative remote snapshot is
// re-fetched on every call, so redeliveries converge on the same state.
type WebhookService struct {
	credentials    marketplace.CredentialRepository
	items          inventory.ItemRepository
	api            marketplace.API
	tokens         *TokenService
	recorder       audit.Recorder
	inventoryCache cache.InventoryCache
	webhookSecret  string
	logger         *zap.Logger
}

// WebhookServiceConfig contains configuration for WebhookService
type WebhookServiceConfig struct {
	Credentials    marketplace.CredentialRepository
	Items          inventory.ItemRepository
	API            marketplace.API
	Tokens         *TokenService
	Recorder       audit.Recorder
	InventoryCache cache.InventoryCache
	WebhookSecret  string
	Logger         *zap.Logger
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(cfg WebhookServiceConfig) *WebhookService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	inventoryCache := cfg.InventoryCache
	if inventoryCache == nil {
		inventoryCache = cache.NewNoopInventoryCache()
	}
	return &WebhookService{
		credentials:    cfg.Credentials,
		items:          cfg.Items,
		api:            cfg.API,
		tokens:         cfg.Tokens,
		recorder:       cfg.Recorder,
		inventoryCache: inventoryCache,
		webhookSecret:  cfg.WebhookSecret,
		logger:         logger,
	}
}

// Process handles one inbound notification and returns its terminal outcome.
// Exactly one audit record is written per call, on every branch. The only
// branch that asks the platform to redeliver is a failed remote fetch
// (OK=false); everything else acknowledges so the notification is not
// retried forever.
func (s *WebhookService) Process(ctx context.Context, rawBody []byte, signatureHeader string) *WebhookOutcome {
	outcome := &WebhookOutcome{}
	defer s.record(ctx, outcome)

	var payload WebhookPayload
	parseErr := json.Unmarshal(rawBody, &payload)

	if !mercadolibre.VerifySignature(signatureHeader, s.webhookSecret, rawBody) {
		// Attribution is best-effort and read-only: it feeds the audit row,
		// never the authorization decision.
		outcome.Unauthorized = true
		outcome.Reason = ReasonBadSignature
		if parseErr == nil {
			s.attribute(ctx, outcome, payload.Resource)
		}
		s.logger.Warn("Webhook rejected: bad signature")
		return outcome
	}

	if parseErr != nil {
		outcome.OK = true
		outcome.Reason = ReasonPayloadInvalid
		outcome.Error = parseErr.Error()
		return outcome
	}

	if !supportedTopics[payload.Topic] || payload.Resource == "" || payload.UserID.String() == "" {
		outcome.OK = true
		outcome.Reason = ReasonIgnored
		return outcome
	}

	listingID, found := mercadolibre.ExtractListingID(payload.Resource)
	if !found {
		outcome.OK = true
		outcome.Reason = ReasonNoItemID
		return outcome
	}
	outcome.ListingID = listingID

	credential, err := s.credentials.FindByMeliUserID(ctx, payload.UserID.String())
	if err != nil {
		if errors.Is(err, marketplace.ErrCredentialNotFound) {
			outcome.OK = true
			outcome.Reason = ReasonAccountNotFound
			s.attribute(ctx, outcome, payload.Resource)
			return outcome
		}
		outcome.Reason = ReasonFetchFailed
		outcome.Error = err.Error()
		return outcome
	}
	userID := credential.UserID
	outcome.UserID = &userID

	token, err := s.tokens.ValidAccessTokenByMeliUserID(ctx, credential.MeliUserID)
	if err != nil {
		outcome.Reason = ReasonFetchFailed
		outcome.Error = err.Error()
		return outcome
	}

	remote, err := s.api.FetchItem(ctx, token, listingID)
	if err != nil {
		outcome.Reason = ReasonFetchFailed
		outcome.Error = err.Error()
		s.logger.Warn("Webhook remote fetch failed",
			zap.String("listing_id", listingID),
			zap.Error(err))
		return outcome
	}

	mapped := inventory.MapRemoteStatus(remote.Status)
	outcome.RemoteStatus = remote.Status
	outcome.MappedStatus = mapped

	patch := inventory.ListingPatch{Status: mapped, Stock: remote.AvailableQuantity}
	updated, err := s.items.UpdateManyByListingID(ctx, credential.UserID, listingID, patch)
	if err != nil {
		outcome.Reason = ReasonFetchFailed
		outcome.Error = err.Error()
		return outcome
	}
	outcome.UpdatedCount = updated

	if updated > 0 {
		if err := s.inventoryCache.Invalidate(ctx, credential.UserID); err != nil {
			s.logger.Warn("Failed to invalidate inventory cache",
				zap.String("owner_id", credential.UserID.String()),
				zap.Error(err))
		}
	}

	outcome.OK = true
	outcome.Reason = ReasonProcessed
	s.logger.Info("Webhook processed",
		zap.String("listing_id", listingID),
		zap.String("remote_status", remote.Status),
		zap.String("mapped_status", mapped.String()),
		zap.Int64("updated", updated))
	return outcome
}

// attribute resolves the listing id in the resource to a local owner for the
// audit trail. Failures are swallowed; the outcome simply stays unattributed.
func (s *WebhookService) attribute(ctx context.Context, outcome *WebhookOutcome, resource string) {
	listingID := outcome.ListingID
	if listingID == "" {
		id, found := mercadolibre.ExtractListingID(resource)
		if !found {
			return
		}
		listingID = id
		outcome.ListingID = listingID
	}

	ownerID, err := s.items.FindOwnerByListingID(ctx, listingID)
	if err != nil {
		return
	}
	outcome.UserID = &ownerID
}

// record writes the single audit row for this notification
func (s *WebhookService) record(ctx context.Context, outcome *WebhookOutcome) {
	rec := audit.NewRecord(audit.ActionWebhook).
		WithMeta("ok", outcome.OK).
		WithMeta("reason", outcome.Reason)
	if outcome.UserID != nil {
		rec = rec.WithUser(*outcome.UserID)
	}
	if outcome.ListingID != "" {
		rec = rec.WithItem(outcome.ListingID)
	}
	if outcome.RemoteStatus != "" {
		rec = rec.WithMeta("remote_status", outcome.RemoteStatus).
			WithMeta("mapped_status", outcome.MappedStatus.String()).
			WithMeta("updated_count", outcome.UpdatedCount)
	}
	if outcome.Error != "" {
		rec = rec.WithMeta("error", outcome.Error)
	}

	if err := s.recorder.Record(ctx, rec); err != nil {
		s.logger.Error("Failed to write webhook audit record", zap.Error(err))
	}
}
