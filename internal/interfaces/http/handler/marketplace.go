package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zndr1991-lab/GanteParts/internal/application/sync"
	"github.com/zndr1991-lab/GanteParts/internal/domain/shared"
	"github.com/zndr1991-lab/GanteParts/internal/infrastructure/auth"
	"github.com/zndr1991-lab/GanteParts/internal/interfaces/http/middleware"
)

const (
	// stateCookieName holds the OAuth state between redirect and callback
	stateCookieName = "ml_oauth_state"
	// sessionCookieName carries the user's identity across the OAuth redirect,
	// because the marketplace redirects the bare browser without a bearer token
	sessionCookieName = "ml_oauth_session"
	// oauthCookieMaxAge bounds the whole authorization round trip
	oauthCookieMaxAge = 10 * 60

	linkedRedirect     = "/inventory?mlLinked=1"
	linkFailedRedirect = "/inventory?mlLinked=0"
)

// BatchActionRequest is the payload for bulk pause/activate
type BatchActionRequest struct {
	Action string   `json:"action" binding:"required,oneof=pause activate"`
	IDs    []string `json:"ids" binding:"required,min=1"`
}

// MarketplaceHandler serves the OAuth linking flow and batch listing actions
type MarketplaceHandler struct {
	BaseHandler
	oauth      *sync.OAuthService
	batch      *sync.BatchActionService
	jwtService *auth.JWTService
	logger     *zap.Logger
}

// NewMarketplaceHandler creates a new MarketplaceHandler
func NewMarketplaceHandler(oauth *sync.OAuthService, batch *sync.BatchActionService,
	jwtService *auth.JWTService, logger *zap.Logger) *MarketplaceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MarketplaceHandler{
		oauth:      oauth,
		batch:      batch,
		jwtService: jwtService,
		logger:     logger,
	}
}

// RegisterRoutes registers marketplace routes
func (h *MarketplaceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	ml := rg.Group("/mercadolibre")
	{
		ml.GET("/auth", h.Authorize)
		ml.GET("/callback", h.Callback)
		ml.POST("/items/actions", h.BatchAction)
	}
}

// Authorize handles GET /mercadolibre/auth: it parks the state and the user's
// identity in short-lived cookies and sends the browser to the marketplace
func (h *MarketplaceHandler) Authorize(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	state, err := sync.NewState()
	if err != nil {
		h.InternalError(c, "Failed to generate state")
		return
	}

	session, err := h.jwtService.GenerateAccessToken(userID, middleware.GetJWTEmail(c))
	if err != nil {
		h.InternalError(c, "Failed to issue session")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookieName, state, oauthCookieMaxAge, "/", "", false, true)
	c.SetCookie(sessionCookieName, session.AccessToken, oauthCookieMaxAge, "/", "", false, true)

	c.Redirect(http.StatusFound, h.oauth.AuthorizationURL(state))
}

// Callback handles GET /mercadolibre/callback: state check, code exchange,
// credential upsert, then a redirect back to the inventory page
func (h *MarketplaceHandler) Callback(c *gin.Context) {
	defer h.clearOAuthCookies(c)

	code := c.Query("code")
	state := c.Query("state")
	storedState, err := c.Cookie(stateCookieName)
	if code == "" || state == "" || err != nil || state != storedState {
		h.logger.Warn("OAuth callback rejected", zap.Bool("state_mismatch", err == nil))
		c.Redirect(http.StatusFound, linkFailedRedirect)
		return
	}

	session, err := c.Cookie(sessionCookieName)
	if err != nil {
		c.Redirect(http.StatusFound, linkFailedRedirect)
		return
	}
	claims, err := h.jwtService.ValidateAccessToken(session)
	if err != nil {
		c.Redirect(http.StatusFound, linkFailedRedirect)
		return
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.Redirect(http.StatusFound, linkFailedRedirect)
		return
	}

	if _, err := h.oauth.LinkAccount(c.Request.Context(), userID, code); err != nil {
		h.logger.Error("Failed to link marketplace account",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		c.Redirect(http.StatusFound, linkFailedRedirect)
		return
	}

	c.Redirect(http.StatusFound, linkedRedirect)
}

// BatchAction handles POST /mercadolibre/items/actions
func (h *MarketplaceHandler) BatchAction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req BatchActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid item id: "+raw)
			return
		}
		ids = append(ids, id)
	}

	result, err := h.batch.ApplyAction(c.Request.Context(), userID, ids, sync.BatchAction(req.Action))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.NotFound(c, "None of the requested items belong to you")
			return
		}
		h.HandleError(c, err)
		return
	}

	body := gin.H{
		"ok":           result.Status != sync.SyncStatusFailed,
		"status":       result.Status,
		"successCount": result.SuccessCount,
		"failed":       result.FailedItems,
		"partial":      result.Partial(),
	}

	// A batch where nothing went through means the marketplace refused us.
	if result.SuccessCount == 0 {
		c.JSON(http.StatusBadGateway, body)
		return
	}
	c.JSON(http.StatusOK, body)
}

func (h *MarketplaceHandler) clearOAuthCookies(c *gin.Context) {
	c.SetCookie(stateCookieName, "", -1, "/", "", false, true)
	c.SetCookie(sessionCookieName, "", -1, "/", "", false, true)
}
