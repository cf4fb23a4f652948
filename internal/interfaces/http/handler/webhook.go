package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zndr1991-lab/GanteParts/internal/application/sync"
	"github.com/zndr1991-lab/GanteParts/internal/infrastructure/mercadolibre"
)

// maxWebhookBody bounds inbound notification payloads (1MB)
const maxWebhookBody = 1 << 20

// WebhookHandler receives marketplace notifications
type WebhookHandler struct {
	service *sync.WebhookService
	logger  *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(service *sync.WebhookService, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{service: service, logger: logger}
}

// RegisterRoutes registers webhook routes
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	ml := rg.Group("/mercadolibre")
	{
		ml.GET("/webhook", h.Liveness)
		ml.POST("/webhook", h.Receive)
	}
}

// Liveness handles GET /mercadolibre/webhook, used by the marketplace
// configuration screen to check the endpoint is reachable
func (h *WebhookHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Webhook activo"})
}

// Receive handles POST /mercadolibre/webhook. 401 is reserved for a bad
// signature; every other terminal outcome answers 200 so the marketplace does
// not hammer the endpoint with redeliveries, with ok:false marking failures.
func (h *WebhookHandler) Receive(c *gin.Context) {
	rawBody, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"ok": false, "error": "unreadable body"})
		return
	}

	outcome := h.service.Process(c.Request.Context(), rawBody, signatureHeader(c))

	switch {
	case outcome.Unauthorized:
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid signature"})
	case !outcome.OK:
		c.JSON(http.StatusOK, gin.H{
			"ok":     false,
			"reason": outcome.Reason,
		})
	default:
		c.JSON(http.StatusOK, gin.H{
			"ok":      true,
			"reason":  outcome.Reason,
			"updated": outcome.UpdatedCount,
		})
	}
}

// signatureHeader returns the first populated signature header variant
func signatureHeader(c *gin.Context) string {
	for _, name := range mercadolibre.SignatureHeaders {
		if v := c.GetHeader(name); v != "" {
			return v
		}
	}
	return ""
}
