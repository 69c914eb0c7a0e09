package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rentnest/marketplace-backend/internal/models"
	"github.com/rentnest/marketplace-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// CatalogHandler handles property and room HTTP requests
type CatalogHandler struct {
	catalog *services.CatalogService
	logger  *logrus.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog *services.CatalogService, logger *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

// CreateProperty handles POST /api/v1/properties
// Creates the property and all of its rooms in one transaction.
func (h *CatalogHandler) CreateProperty(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.CreatePropertyRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.catalog.CreateProperty(c.Request.Context(), userCtx.UserID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// ListMyProperties handles GET /api/v1/properties/mine
func (h *CatalogHandler) ListMyProperties(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}

	properties, err := h.catalog.ListOwnerProperties(c.Request.Context(), userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"properties": properties, "count": len(properties)})
}

// GetProperty handles GET /api/v1/properties/:id
func (h *CatalogHandler) GetProperty(c *gin.Context) {
	propertyID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.catalog.GetProperty(c.Request.Context(), propertyID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdateProperty handles PUT /api/v1/properties/:id
func (h *CatalogHandler) UpdateProperty(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}
	propertyID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.UpdatePropertyRequest
	if !bindJSON(c, &req) {
		return
	}

	property, err := h.catalog.UpdatePropertyContent(c.Request.Context(), userCtx.UserID, propertyID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, property)
}

// UpdateRoomStatus handles PUT /api/v1/rooms/:id/status
func (h *CatalogHandler) UpdateRoomStatus(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}
	roomID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateRoomStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	room, err := h.catalog.UpdateRoomStatus(c.Request.Context(), userCtx.UserID, roomID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, room)
}

// ListAvailableRooms handles GET /api/v1/rooms/available
func (h *CatalogHandler) ListAvailableRooms(c *gin.Context) {
	rooms, err := h.catalog.ListApprovedRooms(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rooms": rooms, "count": len(rooms)})
}
