package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rentnest/marketplace-backend/internal/models"
	"github.com/rentnest/marketplace-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// PaymentHandler handles advance-payment requests
type PaymentHandler struct {
	payments *services.PaymentService
	logger   *logrus.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(payments *services.PaymentService, logger *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, logger: logger}
}

// CreateOrder handles POST /api/v1/payments/create-order
// Returns the order handle the client needs to open checkout.
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	handle, err := h.payments.CreatePaymentOrder(c.Request.Context(), userCtx.UserID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, handle)
}

// VerifyPayment handles POST /api/v1/payments/verify
// On a valid signature the booking is created directly in pending_approval.
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.VerifyPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	booking, err := h.payments.VerifyPaymentAndCreateBooking(c.Request.Context(), userCtx.UserID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Payment verified, booking sent to the owner for approval",
		"booking": booking,
	})
}
