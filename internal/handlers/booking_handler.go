package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rentnest/marketplace-backend/internal/models"
	"github.com/rentnest/marketplace-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// BookingHandler handles tenant and owner booking requests
type BookingHandler struct {
	bookings *services.BookingService
	logger   *logrus.Logger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookings *services.BookingService, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{bookings: bookings, logger: logger}
}

// ===================================================================
// TENANT
// ===================================================================

// CreateBooking handles POST /api/v1/bookings
// Creates an unpaid booking in payment_pending.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	booking, err := h.bookings.CreateBooking(c.Request.Context(), userCtx.UserID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// CheckBookingStatus handles GET /api/v1/bookings/check-status?roomId=
func (h *BookingHandler) CheckBookingStatus(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}

	roomID, err := uuid.Parse(c.Query("roomId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "roomId query parameter must be a valid UUID",
		})
		return
	}

	status, err := h.bookings.CheckBookingStatus(c.Request.Context(), userCtx.UserID, roomID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// ListMyBookings handles GET /api/v1/bookings/mine
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}

	bookings, err := h.bookings.ListUserBookings(c.Request.Context(), userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

// CancelBooking handles DELETE /api/v1/bookings/:id
// The booking row is deleted; this cannot be undone.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.bookings.CancelBooking(c.Request.Context(), userCtx.UserID, bookingID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Booking cancelled"})
}

// ===================================================================
// OWNER
// ===================================================================

// ListOwnerBookings handles GET /api/v1/owner/bookings
func (h *BookingHandler) ListOwnerBookings(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}

	bookings, err := h.bookings.ListOwnerBookings(c.Request.Context(), userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

// ListPendingApproval handles GET /api/v1/owner/bookings/pending
func (h *BookingHandler) ListPendingApproval(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}

	bookings, err := h.bookings.ListPendingApproval(c.Request.Context(), userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

// ApproveBooking handles POST /api/v1/owner/bookings/:id/approve
func (h *BookingHandler) ApproveBooking(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	booking, tenant, err := h.bookings.ApproveBooking(c.Request.Context(), userCtx.UserID, bookingID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": booking, "tenant": tenant})
}

// RejectBooking handles POST /api/v1/owner/bookings/:id/reject
func (h *BookingHandler) RejectBooking(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	// body is optional
	var req models.RejectBookingRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	booking, err := h.bookings.RejectBooking(c.Request.Context(), userCtx.UserID, bookingID, req.Reason)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// CheckOutTenant handles POST /api/v1/owner/tenants/:id/checkout
func (h *BookingHandler) CheckOutTenant(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}
	tenantID, ok := pathID(c, "id")
	if !ok {
		return
	}

	tenant, err := h.bookings.CheckOutTenant(c.Request.Context(), userCtx.UserID, tenantID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, tenant)
}
