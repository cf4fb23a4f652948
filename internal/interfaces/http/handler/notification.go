package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zndr1991-lab/GanteParts/internal/application/notification"
)

// NotificationHandler serves the sync activity feed
type NotificationHandler struct {
	BaseHandler
	service *notification.Service
	logger  *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(service *notification.Service, logger *zap.Logger) *NotificationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationHandler{service: service, logger: logger}
}

// RegisterRoutes registers notification routes
func (h *NotificationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/notifications", h.Feed)
}

// Feed handles GET /notifications
func (h *NotificationHandler) Feed(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	feed, err := h.service.Feed(c.Request.Context(), userID, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, feed)
}
