package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zndr1991-lab/GanteParts/internal/application/inventory"
	"github.com/zndr1991-lab/GanteParts/internal/interfaces/http/dto"
	"github.com/zndr1991-lab/GanteParts/internal/interfaces/http/middleware"
)

// InventoryHandler serves inventory CRUD endpoints
type InventoryHandler struct {
	BaseHandler
	service *inventory.ItemService
	logger  *zap.Logger
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(service *inventory.ItemService, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{service: service, logger: logger}
}

// RegisterRoutes registers inventory routes
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	items := rg.Group("/inventory")
	{
		items.GET("", h.List)
		items.POST("", h.Create)
		items.GET("/:id", h.Get)
		items.PATCH("/:id", h.Update)
		items.DELETE("", h.Delete)
	}
}

// List handles GET /inventory
func (h *InventoryHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	result, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.FromCache)
}

// Get handles GET /inventory/:id
func (h *InventoryHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid item id")
		return
	}

	view, err := h.service.Get(c.Request.Context(), userID, uuid.MustParse(req.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Create handles POST /inventory
func (h *InventoryHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var input inventory.CreateItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	view, err := h.service.Create(c.Request.Context(), userID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, view)
}

// Update handles PATCH /inventory/:id
func (h *InventoryHandler) Update(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid item id")
		return
	}

	var input inventory.UpdateItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	view, err := h.service.Update(c.Request.Context(), userID, uuid.MustParse(req.ID), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Delete handles DELETE /inventory. The body carries the item ids and, when
// configured, the delete password.
func (h *InventoryHandler) Delete(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var input inventory.DeleteItemsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	deleted, err := h.service.Delete(c.Request.Context(), userID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"deleted": deleted})
}
