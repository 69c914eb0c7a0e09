package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rentnest/marketplace-backend/internal/database"
	"github.com/rentnest/marketplace-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// BookingConfig holds booking policy
type BookingConfig struct {
	// AtomicReservation claims the room with a conditional update when an unpaid
	// booking is created. When false, concurrent creates for one room all succeed
	// and exclusivity is settled when the owner confirms.
	AtomicReservation bool
	AdvancePercent    int64
	Currency          string
	// PaymentPendingTTL bounds how long an unpaid booking is kept; zero keeps them forever
	PaymentPendingTTL time.Duration
}

// BookingService drives the booking lifecycle:
// payment_pending -> pending_approval -> confirmed, with rejection and cancel-and-delete
type BookingService struct {
	properties PropertyStore
	rooms      RoomStore
	bookings   BookingStore
	tenants    TenantStore
	snapshots  *SnapshotService
	notifier   *NotificationService
	config     BookingConfig
	logger     *logrus.Logger
	now        func() time.Time
}

// NewBookingService creates a new booking service
func NewBookingService(
	properties PropertyStore,
	rooms RoomStore,
	bookings BookingStore,
	tenants TenantStore,
	snapshots *SnapshotService,
	notifier *NotificationService,
	config BookingConfig,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		properties: properties,
		rooms:      rooms,
		bookings:   bookings,
		tenants:    tenants,
		snapshots:  snapshots,
		notifier:   notifier,
		config:     config,
		logger:     logger,
		now:        time.Now,
	}
}

// ============================================================================
// ROOM RESOLUTION
// ============================================================================

// loadRoom resolves the room and its property. The room must belong to propertyID.
func (s *BookingService) loadRoom(ctx context.Context, roomID, propertyID uuid.UUID) (*models.Property, *models.Room, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}
	if room == nil {
		return nil, nil, notFound("room", roomID)
	}

	property, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, nil, err
	}
	if property == nil || room.PropertyID != property.ID {
		return nil, nil, notFound("property", propertyID)
	}
	return property, room, nil
}

// checkBookable applies the booking preconditions in order; the first failure wins
func checkBookable(property *models.Property, room *models.Room) error {
	switch {
	case room.Status == models.RoomStatusInactive:
		return conflict(ReasonRoomInactive, "This room is currently inactive and cannot be booked")
	case room.Status == models.RoomStatusMaintenance:
		return conflict(ReasonRoomMaintenance, "This room is under maintenance and cannot be booked right now")
	case !room.IsAvailable:
		return conflict(ReasonRoomUnavailable, "This room is not available for booking")
	case room.ApprovalStatus != models.ApprovalApproved || !property.Approved:
		return conflict(ReasonRoomNotApproved, "This room has not been approved for booking yet")
	}
	return nil
}

// resolveBookable loads the room and property and checks that the room can take a booking
func (s *BookingService) resolveBookable(ctx context.Context, roomID, propertyID uuid.UUID) (*models.Property, *models.Room, error) {
	property, room, err := s.loadRoom(ctx, roomID, propertyID)
	if err != nil {
		return nil, nil, err
	}
	if err := checkBookable(property, room); err != nil {
		return nil, nil, err
	}
	return property, room, nil
}

// ownUnpaidBooking returns the user's live payment_pending booking for the room, or nil
func (s *BookingService) ownUnpaidBooking(ctx context.Context, userID, roomID uuid.UUID) (*models.Booking, error) {
	booking, err := s.bookings.FindLive(ctx, userID, roomID)
	if err != nil {
		return nil, err
	}
	if booking == nil || booking.Status != models.BookingPaymentPending {
		return nil, nil
	}
	return booking, nil
}

// resolveBookableFor is resolveBookable for a user who may already hold the room.
// In atomic mode the user's own unpaid booking keeps the room claimed; that claim
// does not count against them. The user's unpaid booking is returned when present.
func (s *BookingService) resolveBookableFor(ctx context.Context, userID, roomID, propertyID uuid.UUID) (*models.Property, *models.Room, *models.Booking, error) {
	property, room, err := s.loadRoom(ctx, roomID, propertyID)
	if err != nil {
		return nil, nil, nil, err
	}
	unpaid, err := s.ownUnpaidBooking(ctx, userID, roomID)
	if err != nil {
		return nil, nil, nil, err
	}

	check := room
	if unpaid != nil && s.config.AtomicReservation && !room.IsAvailable {
		held := *room
		held.IsAvailable = true
		check = &held
	}
	if err := checkBookable(property, check); err != nil {
		return nil, nil, nil, err
	}
	return property, room, unpaid, nil
}

// priceFor returns the amounts a payment for the room must cover. An unpaid booking
// keeps the price it was created with.
func (s *BookingService) priceFor(property *models.Property, room *models.Room, unpaid *models.Booking) models.AmountSplit {
	if unpaid != nil {
		return models.SplitAmounts(unpaid.MonthlyRent, unpaid.SecurityDeposit, s.config.AdvancePercent)
	}
	return models.SplitAmounts(room.Rent, property.SecurityDeposit, s.config.AdvancePercent)
}

// bookingParams gathers amounts and best-effort snapshots for a new booking
func (s *BookingService) bookingParams(ctx context.Context, userID uuid.UUID, property *models.Property, room *models.Room) models.BookingParams {
	return models.BookingParams{
		UserID:        userID,
		Property:      property,
		Room:          room,
		UserSnapshot:  s.snapshots.UserSnapshot(ctx, userID),
		OwnerSnapshot: s.snapshots.UserSnapshot(ctx, property.OwnerID),
		Split:         models.SplitAmounts(room.Rent, property.SecurityDeposit, s.config.AdvancePercent),
		Currency:      s.config.Currency,
	}
}

// ============================================================================
// CREATE
// ============================================================================

// CreateBooking creates an unpaid booking in payment_pending
func (s *BookingService) CreateBooking(ctx context.Context, userID uuid.UUID, req *models.CreateBookingRequest) (*models.Booking, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	roomID, _ := uuid.Parse(req.RoomID)
	propertyID, _ := uuid.Parse(req.PropertyID)

	property, room, err := s.resolveBookable(ctx, roomID, propertyID)
	if err != nil {
		return nil, err
	}

	claimed := false
	if s.config.AtomicReservation {
		ok, err := s.rooms.Claim(ctx, roomID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, conflict(ReasonRoomAlreadyReserved, "This room was just reserved by someone else")
		}
		claimed = true
	}

	booking := models.NewUnpaidBooking(s.bookingParams(ctx, userID, property, room))
	if err := s.bookings.Create(ctx, booking); err != nil {
		if claimed {
			s.releaseRoom(ctx, roomID)
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"room_id":    roomID,
		"user_id":    userID,
		"atomic":     s.config.AtomicReservation,
	}).Info("Booking created (payment pending)")

	s.notifyBookingRequest(ctx, booking)
	return booking, nil
}

// recordPayment attaches a verified advance to the user's unpaid booking, or records
// a new paid booking when there is none. Either way the booking lands in
// pending_approval. Availability is not re-checked: the money is already taken
// and the owner decides at confirmation.
func (s *BookingService) recordPayment(
	ctx context.Context,
	userID uuid.UUID,
	property *models.Property,
	room *models.Room,
	unpaid *models.Booking,
	receipt models.PaymentReceipt,
) (*models.Booking, error) {
	if unpaid != nil {
		booking, err := s.bookings.MarkPaid(ctx, unpaid.ID, receipt, s.now())
		if err != nil {
			return nil, paymentConflict(err)
		}
		if booking != nil {
			s.logger.WithFields(logrus.Fields{
				"booking_id": booking.ID,
				"room_id":    room.ID,
				"user_id":    userID,
				"order_id":   receipt.OrderID,
			}).Info("Unpaid booking paid, pending approval")

			s.notifyBookingRequest(ctx, booking)
			return booking, nil
		}
		// cancelled or expired between lookup and update; the payment still needs a booking
		s.logger.WithField("booking_id", unpaid.ID).Warn("Unpaid booking moved on before payment, recording a new one")
	}

	booking := models.NewPaidBooking(s.bookingParams(ctx, userID, property, room), receipt, s.now())
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, paymentConflict(err)
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"room_id":    room.ID,
		"user_id":    userID,
		"order_id":   receipt.OrderID,
	}).Info("Booking created (advance paid)")

	s.notifyBookingRequest(ctx, booking)
	return booking, nil
}

func paymentConflict(err error) error {
	if errors.Is(err, database.ErrDuplicatePayment) {
		return conflict(ReasonPaymentReused, "This payment has already been used for a booking")
	}
	return err
}

func (s *BookingService) notifyBookingRequest(ctx context.Context, booking *models.Booking) {
	s.notifier.Notify(ctx, models.NewNotificationEvent(booking.OwnerID, models.NotificationBookingRequest).
		WithRelated("bookingId", booking.ID).
		WithRelated("roomId", booking.RoomID).
		WithRelated("propertyId", booking.PropertyID).
		WithMeta("tenantName", booking.UserSnapshot.Name).
		WithMeta("status", booking.Status))
}

func (s *BookingService) releaseRoom(ctx context.Context, roomID uuid.UUID) {
	if err := s.rooms.Release(ctx, roomID); err != nil {
		s.logger.WithError(err).WithField("room_id", roomID).Warn("Failed to release room")
	}
}

// ============================================================================
// QUERIES
// ============================================================================

// CheckBookingStatus reports whether the user holds a live booking for the room.
// It is a UI hint, not a uniqueness guarantee.
func (s *BookingService) CheckBookingStatus(ctx context.Context, userID, roomID uuid.UUID) (*models.BookingStatusResponse, error) {
	booking, err := s.bookings.FindLive(ctx, userID, roomID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return &models.BookingStatusResponse{HasBooking: false}, nil
	}
	return &models.BookingStatusResponse{
		HasBooking: true,
		Status:     &booking.Status,
		BookingID:  &booking.ID,
	}, nil
}

// ListOwnerBookings returns every booking on the owner's properties
func (s *BookingService) ListOwnerBookings(ctx context.Context, ownerID uuid.UUID) ([]models.Booking, error) {
	return s.bookings.ListByOwner(ctx, ownerID)
}

// ListPendingApproval returns paid bookings waiting for the owner
func (s *BookingService) ListPendingApproval(ctx context.Context, ownerID uuid.UUID) ([]models.Booking, error) {
	return s.bookings.ListPendingApprovalByOwner(ctx, ownerID)
}

// ListUserBookings returns the tenant's bookings
func (s *BookingService) ListUserBookings(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

// ============================================================================
// OWNER DECISIONS
// ============================================================================

func (s *BookingService) ownedBooking(ctx context.Context, ownerID, bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, notFound("booking", bookingID)
	}
	if booking.OwnerID != ownerID {
		return nil, &UnauthorizedError{Message: "You are not the owner of this booking's property"}
	}
	return booking, nil
}

// ApproveBooking confirms a pending_approval booking and creates the tenant.
// Only one booking per room can be confirmed while a tenant is active.
func (s *BookingService) ApproveBooking(ctx context.Context, ownerID, bookingID uuid.UUID) (*models.Booking, *models.Tenant, error) {
	booking, err := s.ownedBooking(ctx, ownerID, bookingID)
	if err != nil {
		return nil, nil, err
	}
	if booking.Status != models.BookingPendingApproval {
		return nil, nil, conflict(ReasonBookingState, "Only bookings pending approval can be approved")
	}

	confirmed, tenant, err := s.bookings.ConfirmWithTenant(ctx, bookingID, s.now())
	switch {
	case errors.Is(err, database.ErrRoomAlreadyTaken):
		return nil, nil, conflict(ReasonRoomAlreadyReserved, "This room is already occupied by another tenant")
	case errors.Is(err, database.ErrBookingNotPending):
		return nil, nil, conflict(ReasonBookingState, "Only bookings pending approval can be approved")
	case err != nil:
		return nil, nil, &TransactionAbortError{Op: "approve booking", Err: err}
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"tenant_id":  tenant.ID,
		"room_id":    confirmed.RoomID,
	}).Info("Booking confirmed")

	s.notifier.Notify(ctx, models.NewNotificationEvent(confirmed.UserID, models.NotificationBookingApproved).
		WithRelated("bookingId", confirmed.ID).
		WithRelated("tenantId", tenant.ID).
		WithMeta("propertyName", confirmed.PropertySnapshot.Name))

	return confirmed, tenant, nil
}

// RejectBooking moves a pending_approval booking to rejected
func (s *BookingService) RejectBooking(ctx context.Context, ownerID, bookingID uuid.UUID, reason *string) (*models.Booking, error) {
	booking, err := s.ownedBooking(ctx, ownerID, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingPendingApproval {
		return nil, conflict(ReasonBookingState, "Only bookings pending approval can be rejected")
	}

	rejected, err := s.bookings.Reject(ctx, bookingID, trimmedReason(models.ActionReject, reason))
	if err != nil {
		return nil, err
	}
	if rejected == nil {
		return nil, conflict(ReasonBookingState, "Only bookings pending approval can be rejected")
	}

	// a booking that started unpaid still holds its claim in atomic mode
	if s.config.AtomicReservation && rejected.InitialState == models.InitialUnpaid {
		s.releaseRoom(ctx, rejected.RoomID)
	}

	s.logger.WithField("booking_id", bookingID).Info("Booking rejected")

	event := models.NewNotificationEvent(rejected.UserID, models.NotificationBookingRejected).
		WithRelated("bookingId", rejected.ID).
		WithMeta("propertyName", rejected.PropertySnapshot.Name)
	if rejected.RejectionReason != nil {
		event.WithMeta("reason", *rejected.RejectionReason)
	}
	s.notifier.Notify(ctx, event)

	return rejected, nil
}

// ============================================================================
// CANCEL + CHECKOUT
// ============================================================================

// CancelBooking deletes a booking that has not been confirmed. The row is removed, not flagged.
func (s *BookingService) CancelBooking(ctx context.Context, userID, bookingID uuid.UUID) error {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking == nil {
		return notFound("booking", bookingID)
	}
	if booking.UserID != userID {
		return &UnauthorizedError{Message: "You can only cancel your own bookings"}
	}
	if !booking.Status.CanCancel() {
		return conflict(ReasonBookingState, "Only unconfirmed bookings can be cancelled")
	}

	deleted, err := s.bookings.DeleteCancellable(ctx, bookingID)
	if err != nil {
		return err
	}
	if deleted == nil {
		return conflict(ReasonBookingState, "Only unconfirmed bookings can be cancelled")
	}

	// Unpaid bookings are the only ones that claim the room in atomic mode
	if s.config.AtomicReservation && deleted.InitialState == models.InitialUnpaid {
		s.releaseRoom(ctx, deleted.RoomID)
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"user_id":    userID,
		"status":     deleted.Status,
	}).Info("Booking cancelled and deleted")
	return nil
}

// CheckOutTenant ends an active tenancy and frees the room
func (s *BookingService) CheckOutTenant(ctx context.Context, ownerID, tenantID uuid.UUID) (*models.Tenant, error) {
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, notFound("tenant", tenantID)
	}
	if tenant.OwnerID != ownerID {
		return nil, &UnauthorizedError{Message: "You are not the owner of this tenant's property"}
	}

	checkedOut, err := s.tenants.CheckOut(ctx, tenantID, s.now())
	if err != nil {
		return nil, err
	}
	if checkedOut == nil {
		return nil, conflict(ReasonBookingState, "Tenant has already checked out")
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"room_id":   checkedOut.RoomID,
	}).Info("Tenant checked out")
	return checkedOut, nil
}

// ExpireStaleBookings deletes payment_pending bookings older than the configured TTL
// and, in atomic mode, frees the rooms they were holding
func (s *BookingService) ExpireStaleBookings(ctx context.Context) (int, error) {
	if s.config.PaymentPendingTTL <= 0 {
		return 0, nil
	}

	expired, err := s.bookings.DeleteStalePaymentPending(ctx, s.now().Add(-s.config.PaymentPendingTTL))
	if err != nil {
		return 0, err
	}

	for _, booking := range expired {
		if s.config.AtomicReservation && booking.InitialState == models.InitialUnpaid {
			s.releaseRoom(ctx, booking.RoomID)
		}
		s.logger.WithFields(logrus.Fields{
			"booking_id": booking.ID,
			"room_id":    booking.RoomID,
			"user_id":    booking.UserID,
		}).Info("Expired unpaid booking")
	}
	return len(expired), nil
}
