package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rentnest/marketplace-backend/internal/database"
	"github.com/rentnest/marketplace-backend/internal/models"
	"github.com/rentnest/marketplace-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// AdminHandler handles admin-related HTTP requests
type AdminHandler struct {
	approvals *services.ApprovalService
	audits    *database.PaymentAuditRepository
	logger    *logrus.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	approvals *services.ApprovalService,
	audits *database.PaymentAuditRepository,
	logger *logrus.Logger,
) *AdminHandler {
	return &AdminHandler{
		approvals: approvals,
		audits:    audits,
		logger:    logger,
	}
}

// ===================================================================
// APPROVAL QUEUES
// ===================================================================

// GetPendingProperties handles GET /api/v1/admin/properties/pending
func (h *AdminHandler) GetPendingProperties(c *gin.Context) {
	properties, err := h.approvals.ListPendingProperties(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"properties": properties, "count": len(properties)})
}

// GetPendingRooms handles GET /api/v1/admin/rooms/pending
func (h *AdminHandler) GetPendingRooms(c *gin.Context) {
	rooms, err := h.approvals.ListPendingRooms(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rooms": rooms, "count": len(rooms)})
}

// ===================================================================
// DECISIONS
// ===================================================================

// SetPropertyApproval handles POST /api/v1/admin/properties/:id/approval
// Body: {"action": "approve"|"reject", "reason": "..."}
func (h *AdminHandler) SetPropertyApproval(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}
	propertyID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.ApprovalRequest
	if !bindJSON(c, &req) {
		return
	}

	property, err := h.approvals.SetPropertyApproval(c.Request.Context(), propertyID, req.Action, userCtx.UserID, req.Reason)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, property)
}

// SetRoomApproval handles POST /api/v1/admin/rooms/:id/approval
func (h *AdminHandler) SetRoomApproval(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}
	roomID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.ApprovalRequest
	if !bindJSON(c, &req) {
		return
	}

	room, err := h.approvals.SetRoomApproval(c.Request.Context(), roomID, req.Action, userCtx.UserID, req.Reason)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, room)
}

// SendOwnerMessage handles POST /api/v1/admin/messages
func (h *AdminHandler) SendOwnerMessage(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.SendOwnerMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	msg, err := h.approvals.SendOwnerMessage(c.Request.Context(), userCtx.UserID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// ===================================================================
// PAYMENT AUDIT TRAIL
// ===================================================================

// GetPaymentAudits handles GET /api/v1/admin/payments/:orderId/audits
func (h *AdminHandler) GetPaymentAudits(c *gin.Context) {
	orderID := strings.TrimSpace(c.Param("orderId"))
	if orderID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "orderId is required"})
		return
	}

	audits, err := h.audits.ListByOrderID(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order_id": orderID, "events": audits, "count": len(audits)})
}
