package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentnest/marketplace-backend/internal/models"
	"github.com/rentnest/marketplace-backend/pkg/razorpay"
	"github.com/sirupsen/logrus"
)

const (
	modeGateway = "gateway"
	modeDev     = "dev"
)

// PaymentService issues advance-payment orders and turns verified payments into bookings
type PaymentService struct {
	gateway  PaymentGateway
	bookings *BookingService
	audits   PaymentAuditStore
	logger   *logrus.Logger
	now      func() time.Time
}

// NewPaymentService creates a new payment service
func NewPaymentService(gateway PaymentGateway, bookings *BookingService, audits PaymentAuditStore, logger *logrus.Logger) *PaymentService {
	return &PaymentService{
		gateway:  gateway,
		bookings: bookings,
		audits:   audits,
		logger:   logger,
		now:      time.Now,
	}
}

// receiptFor builds a short receipt id: rcpt_<first 8 hex of the room id>_<unix seconds>
func receiptFor(roomID uuid.UUID, at time.Time) string {
	hex := strings.ReplaceAll(roomID.String(), "-", "")
	return fmt.Sprintf("rcpt_%s_%d", hex[:8], at.Unix())
}

// CreatePaymentOrder checks the room and opens a gateway order for the advance.
// Without gateway credentials a local dev order is issued instead.
func (s *PaymentService) CreatePaymentOrder(ctx context.Context, userID uuid.UUID, req *models.CreateOrderRequest) (*models.OrderHandle, error) {
	startTime := time.Now()
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	roomID, _ := uuid.Parse(req.RoomID)
	propertyID, _ := uuid.Parse(req.PropertyID)

	property, room, unpaid, err := s.bookings.resolveBookableFor(ctx, userID, roomID, propertyID)
	if err != nil {
		return nil, err
	}

	cfg := s.bookings.config
	split := s.bookings.priceFor(property, room, unpaid)
	amountMinor := split.AdvanceMinorUnits()

	handle := &models.OrderHandle{
		Receipt:         receiptFor(roomID, s.now()),
		AmountMinor:     amountMinor,
		Currency:        cfg.Currency,
		TotalAmount:     split.Total.InexactFloat64(),
		AdvanceAmount:   split.Advance.InexactFloat64(),
		RemainingAmount: split.Remaining.InexactFloat64(),
		RoomID:          roomID,
		PropertyID:      propertyID,
		Notes: map[string]string{
			"user_id":          userID.String(),
			"room_id":          roomID.String(),
			"property_id":      propertyID.String(),
			"property_name":    property.Label(),
			"room_type":        room.RoomType,
			"total_amount":     split.Total.StringFixed(2),
			"advance_amount":   split.Advance.StringFixed(2),
			"remaining_amount": split.Remaining.StringFixed(2),
		},
	}

	audit := models.NewPaymentAudit(models.PaymentEventOrderCreated, models.PaymentSourceBackend).
		SetUser(userID).
		SetRoom(roomID).
		SetAmount(amountMinor, cfg.Currency)

	if s.gateway != nil && s.gateway.Configured() {
		order, err := s.gateway.CreateOrder(ctx, razorpay.OrderRequest{
			Amount:   amountMinor,
			Currency: cfg.Currency,
			Receipt:  handle.Receipt,
			Notes:    handle.Notes,
		})
		if err != nil {
			audit.EventType = models.PaymentEventOrderFailed
			audit.EventSource = models.PaymentSourceGatewayAPI
			s.audit(ctx, audit.SetError(err).SetProcessingTime(startTime))
			return nil, &UpstreamUnavailableError{Service: "payment gateway", Err: err}
		}
		handle.OrderID = order.ID
		handle.KeyID = s.gateway.KeyID()
		handle.Mode = modeGateway
	} else {
		handle.OrderID = "order_dev_" + uuid.New().String()
		handle.Mode = modeDev
	}

	// verification reads this record back; an order without it cannot be paid
	audit.SetGatewayIDs(handle.OrderID, "").
		SetPayload(map[string]interface{}{"receipt": handle.Receipt, "mode": handle.Mode, "property_id": propertyID.String()}).
		SetProcessingTime(startTime)
	if s.audits == nil {
		return nil, fmt.Errorf("payment audit store is not configured")
	}
	if err := s.audits.Log(ctx, audit); err != nil {
		return nil, fmt.Errorf("failed to record payment order: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":     handle.OrderID,
		"room_id":      roomID,
		"user_id":      userID,
		"amount_minor": amountMinor,
		"mode":         handle.Mode,
	}).Info("Payment order created")

	return handle, nil
}

// VerifyPaymentAndCreateBooking checks the checkout signature and records a paid booking.
// A mismatch is terminal for the attempt and nothing is persisted.
func (s *PaymentService) VerifyPaymentAndCreateBooking(ctx context.Context, userID uuid.UUID, req *models.VerifyPaymentRequest) (*models.Booking, error) {
	startTime := time.Now()
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	roomID, _ := uuid.Parse(req.RoomID)
	propertyID, _ := uuid.Parse(req.PropertyID)

	log := s.logger.WithFields(logrus.Fields{
		"order_id":   req.OrderID,
		"payment_id": req.PaymentID,
		"user_id":    userID,
	})

	if s.gateway == nil || !s.gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		s.audit(ctx, models.NewPaymentAudit(models.PaymentEventSignatureMismatch, models.PaymentSourceClient).
			SetUser(userID).
			SetRoom(roomID).
			SetGatewayIDs(req.OrderID, req.PaymentID).
			SetProcessingTime(startTime))
		log.Warn("Payment signature mismatch")
		return nil, &SignatureMismatchError{OrderID: req.OrderID}
	}

	s.audit(ctx, models.NewPaymentAudit(models.PaymentEventSignatureVerified, models.PaymentSourceClient).
		SetUser(userID).
		SetRoom(roomID).
		SetGatewayIDs(req.OrderID, req.PaymentID))

	booking, err := s.settle(ctx, userID, roomID, propertyID, models.PaymentReceipt{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	})
	if err != nil {
		s.audit(ctx, models.NewPaymentAudit(models.PaymentEventBookingCreateError, models.PaymentSourceBackend).
			SetUser(userID).
			SetRoom(roomID).
			SetGatewayIDs(req.OrderID, req.PaymentID).
			SetError(err).
			SetProcessingTime(startTime))
		log.WithError(err).Error("Verified payment could not be turned into a booking")
		return nil, err
	}

	s.audit(ctx, models.NewPaymentAudit(models.PaymentEventBookingCreated, models.PaymentSourceBackend).
		SetUser(userID).
		SetRoom(roomID).
		SetBooking(booking.ID).
		SetGatewayIDs(req.OrderID, req.PaymentID).
		SetAmount(booking.BookingPayment.AdvanceMinorUnits(), booking.Currency).
		SetProcessingTime(startTime))

	log.WithField("booking_id", booking.ID).Info("Payment verified, booking pending approval")
	return booking, nil
}

// settle checks the payment against the order it was made for and records the booking
func (s *PaymentService) settle(ctx context.Context, userID, roomID, propertyID uuid.UUID, receipt models.PaymentReceipt) (*models.Booking, error) {
	property, room, err := s.bookings.loadRoom(ctx, roomID, propertyID)
	if err != nil {
		return nil, err
	}
	unpaid, err := s.bookings.ownUnpaidBooking(ctx, userID, roomID)
	if err != nil {
		return nil, err
	}

	amountMinor := s.bookings.priceFor(property, room, unpaid).AdvanceMinorUnits()
	if err := s.checkOrder(ctx, receipt.OrderID, userID, roomID, amountMinor); err != nil {
		return nil, err
	}
	return s.bookings.recordPayment(ctx, userID, property, room, unpaid, receipt)
}

// checkOrder requires the order to have been issued by CreatePaymentOrder to this
// user, for this room, at the advance the room costs now
func (s *PaymentService) checkOrder(ctx context.Context, orderID string, userID, roomID uuid.UUID, amountMinor int64) error {
	mismatch := conflict(ReasonOrderMismatch, "This payment does not match the order issued for this room")
	if s.audits == nil {
		return mismatch
	}

	trail, err := s.audits.ListByOrderID(ctx, orderID)
	if err != nil {
		return err
	}

	var issued *models.PaymentAudit
	for _, entry := range trail {
		if entry.EventType == models.PaymentEventOrderCreated {
			issued = entry
			break
		}
	}

	switch {
	case issued == nil:
		return mismatch
	case issued.UserID == nil || *issued.UserID != userID:
		return mismatch
	case issued.RoomID == nil || *issued.RoomID != roomID:
		return mismatch
	case issued.AmountMinor == nil || *issued.AmountMinor != amountMinor:
		return mismatch
	}
	return nil
}

// audit writes are best effort
func (s *PaymentService) audit(ctx context.Context, entry *models.PaymentAudit) {
	if s.audits == nil {
		return
	}
	if err := s.audits.Log(ctx, entry); err != nil {
		s.logger.WithError(err).WithField("event_type", entry.EventType).Warn("Failed to write payment audit")
	}
}
