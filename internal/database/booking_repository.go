package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rentnest/marketplace-backend/internal/models"
)

var (
	// ErrRoomAlreadyTaken is returned when a confirmation finds the room held by another tenant
	ErrRoomAlreadyTaken = errors.New("room already taken")
	// ErrBookingNotPending is returned when a booking left pending_approval before the write
	ErrBookingNotPending = errors.New("booking is not pending approval")
	// ErrDuplicatePayment is returned when a gateway payment id was already used for a booking
	ErrDuplicatePayment = errors.New("payment already used for a booking")
)

const bookingColumns = `
	id, user_id, owner_id, property_id, room_id,
	status, initial_state, rejection_reason,
	monthly_rent, security_deposit, total_amount, advance_amount, remaining_amount, currency,
	gateway_order_id, gateway_payment_id, gateway_signature, payment_status, paid_at,
	user_snapshot, owner_snapshot, property_snapshot, room_snapshot,
	confirmed_at, created_at, updated_at`

// BookingRepository handles booking database operations
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts a booking exactly as built by its constructor
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (
			id, user_id, owner_id, property_id, room_id,
			status, initial_state,
			monthly_rent, security_deposit, total_amount, advance_amount, remaining_amount, currency,
			gateway_order_id, gateway_payment_id, gateway_signature, payment_status, paid_at,
			user_snapshot, owner_snapshot, property_snapshot, room_snapshot,
			created_at, updated_at
		) VALUES (
			:id, :user_id, :owner_id, :property_id, :room_id,
			:status, :initial_state,
			:monthly_rent, :security_deposit, :total_amount, :advance_amount, :remaining_amount, :currency,
			:gateway_order_id, :gateway_payment_id, :gateway_signature, :payment_status, :paid_at,
			:user_snapshot, :owner_snapshot, :property_snapshot, :room_snapshot,
			:created_at, :updated_at
		)`
	if _, err := r.db.NamedExecContext(ctx, query, booking); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicatePayment
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by ID. Returns (nil, nil) when not found.
func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	err := r.db.GetContext(ctx, &booking, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

// ListByOwner returns every booking on the owner's properties, newest first
func (r *BookingRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Booking, error) {
	return r.list(ctx, `WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
}

// ListPendingApprovalByOwner returns paid bookings waiting for the owner's decision, oldest first
func (r *BookingRepository) ListPendingApprovalByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Booking, error) {
	return r.list(ctx, `WHERE owner_id = $1 AND status = 'pending_approval' ORDER BY created_at ASC`, ownerID)
}

// ListByUser returns the tenant's bookings, newest first
func (r *BookingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	return r.list(ctx, `WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *BookingRepository) list(ctx context.Context, where string, args ...interface{}) ([]models.Booking, error) {
	bookings := []models.Booking{}
	query := `SELECT ` + bookingColumns + ` FROM bookings ` + where
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// FindLive returns the user's most recent live booking for a room. Returns (nil, nil) when none exists.
func (r *BookingRepository) FindLive(ctx context.Context, userID, roomID uuid.UUID) (*models.Booking, error) {
	statuses := make([]string, len(models.LiveBookingStatuses))
	for i, s := range models.LiveBookingStatuses {
		statuses[i] = string(s)
	}

	var booking models.Booking
	query := `
		SELECT ` + bookingColumns + ` FROM bookings
		WHERE user_id = $1 AND room_id = $2 AND status::text = ANY($3)
		ORDER BY created_at DESC
		LIMIT 1`
	err := r.db.GetContext(ctx, &booking, query, userID, roomID, pq.Array(statuses))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find live booking: %w", err)
	}
	return &booking, nil
}

// Reject moves a pending_approval booking to rejected.
// Returns (nil, nil) when the booking is missing or no longer pending.
func (r *BookingRepository) Reject(ctx context.Context, id uuid.UUID, reason *string) (*models.Booking, error) {
	var booking models.Booking
	query := `
		UPDATE bookings SET status = 'rejected', rejection_reason = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending_approval'
		RETURNING ` + bookingColumns
	err := r.db.GetContext(ctx, &booking, query, id, reason)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reject booking: %w", err)
	}
	return &booking, nil
}

// MarkPaid records a verified payment on an unpaid booking and moves it to pending_approval.
// Returns (nil, nil) when the booking is missing or no longer payment_pending.
func (r *BookingRepository) MarkPaid(ctx context.Context, id uuid.UUID, receipt models.PaymentReceipt, paidAt time.Time) (*models.Booking, error) {
	var booking models.Booking
	query := `
		UPDATE bookings SET
			status = 'pending_approval', payment_status = 'completed',
			gateway_order_id = $2, gateway_payment_id = $3, gateway_signature = $4,
			paid_at = $5, updated_at = $5
		WHERE id = $1 AND status = 'payment_pending'
		RETURNING ` + bookingColumns
	err := r.db.GetContext(ctx, &booking, query, id, receipt.OrderID, receipt.PaymentID, receipt.Signature, paidAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicatePayment
		}
		return nil, fmt.Errorf("failed to mark booking paid: %w", err)
	}
	return &booking, nil
}

// DeleteCancellable removes a booking that has not been confirmed yet.
// Returns the deleted row, or (nil, nil) when nothing cancellable matched.
func (r *BookingRepository) DeleteCancellable(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	query := `
		DELETE FROM bookings
		WHERE id = $1 AND status IN ('payment_pending', 'pending_approval')
		RETURNING ` + bookingColumns
	err := r.db.GetContext(ctx, &booking, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete booking: %w", err)
	}
	return &booking, nil
}

// DeleteStalePaymentPending removes unpaid bookings created before cutoff and
// returns the deleted rows
func (r *BookingRepository) DeleteStalePaymentPending(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	bookings := []models.Booking{}
	query := `
		DELETE FROM bookings
		WHERE status = 'payment_pending' AND created_at < $1
		RETURNING ` + bookingColumns
	if err := r.db.SelectContext(ctx, &bookings, query, cutoff); err != nil {
		return nil, fmt.Errorf("failed to delete stale bookings: %w", err)
	}
	return bookings, nil
}

// ConfirmWithTenant confirms a pending_approval booking and creates its tenant in one transaction.
// The room is held against every other active tenant; ErrRoomAlreadyTaken is returned
// when someone else already occupies it and ErrBookingNotPending when the booking moved on.
func (r *BookingRepository) ConfirmWithTenant(ctx context.Context, bookingID uuid.UUID, confirmedAt time.Time) (*models.Booking, *models.Tenant, error) {
	var (
		confirmed models.Booking
		tenant    *models.Tenant
	)

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var current models.Booking
		err := tx.GetContext(ctx, &current, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, bookingID)
		if err == sql.ErrNoRows {
			return ErrBookingNotPending
		}
		if err != nil {
			return fmt.Errorf("failed to lock booking: %w", err)
		}
		if current.Status != models.BookingPendingApproval {
			return ErrBookingNotPending
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE rooms SET is_available = FALSE, updated_at = NOW()
			WHERE id = $1
			  AND NOT EXISTS (SELECT 1 FROM tenants t WHERE t.room_id = $1 AND t.status = 'active')`,
			current.RoomID)
		if err != nil {
			return fmt.Errorf("failed to hold room: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		if affected == 0 {
			return ErrRoomAlreadyTaken
		}

		err = tx.GetContext(ctx, &confirmed, `
			UPDATE bookings SET status = 'confirmed', confirmed_at = $2, updated_at = $2
			WHERE id = $1
			RETURNING `+bookingColumns, bookingID, confirmedAt)
		if err != nil {
			return fmt.Errorf("failed to confirm booking: %w", err)
		}

		tenant = models.NewTenantFromBooking(&confirmed, confirmedAt)
		if err := insertTenant(ctx, tx, tenant); err != nil {
			// idx_tenants_active_room backs up the NOT EXISTS check under concurrent confirmations
			if isUniqueViolation(err) {
				return ErrRoomAlreadyTaken
			}
			return fmt.Errorf("failed to create tenant: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &confirmed, tenant, nil
}
