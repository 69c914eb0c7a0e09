package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rentnest/marketplace-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmWithTenant(t *testing.T) {
	ctx := context.Background()
	confirmedAt := time.Now()

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewBookingRepository(db)
		bookingID, userID, roomID := uuid.New(), uuid.New(), uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM bookings WHERE id = \$1 FOR UPDATE`).
			WithArgs(bookingID).
			WillReturnRows(bookingRow(bookingID, userID, roomID, "pending_approval"))
		mock.ExpectExec(`UPDATE rooms SET is_available = FALSE`).
			WithArgs(roomID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`UPDATE bookings SET status = 'confirmed'`).
			WithArgs(bookingID, confirmedAt).
			WillReturnRows(bookingRow(bookingID, userID, roomID, "confirmed"))
		mock.ExpectExec(`INSERT INTO tenants`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		booking, tenant, err := repo.ConfirmWithTenant(ctx, bookingID, confirmedAt)
		require.NoError(t, err)
		assert.Equal(t, models.BookingConfirmed, booking.Status)
		require.NotNil(t, tenant)
		assert.Equal(t, bookingID, tenant.BookingID)
		assert.Equal(t, roomID, tenant.RoomID)
		assert.Equal(t, models.TenantActive, tenant.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Room held by another tenant", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewBookingRepository(db)
		bookingID, roomID := uuid.New(), uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE`).
			WillReturnRows(bookingRow(bookingID, uuid.New(), roomID, "pending_approval"))
		mock.ExpectExec(`UPDATE rooms SET is_available = FALSE`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		booking, tenant, err := repo.ConfirmWithTenant(ctx, bookingID, confirmedAt)
		assert.ErrorIs(t, err, ErrRoomAlreadyTaken)
		assert.Nil(t, booking)
		assert.Nil(t, tenant)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Concurrent confirmation loses on unique index", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewBookingRepository(db)
		bookingID, userID, roomID := uuid.New(), uuid.New(), uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE`).
			WillReturnRows(bookingRow(bookingID, userID, roomID, "pending_approval"))
		mock.ExpectExec(`UPDATE rooms SET is_available = FALSE`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`UPDATE bookings SET status = 'confirmed'`).
			WillReturnRows(bookingRow(bookingID, userID, roomID, "confirmed"))
		mock.ExpectExec(`INSERT INTO tenants`).
			WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})
		mock.ExpectRollback()

		_, _, err := repo.ConfirmWithTenant(ctx, bookingID, confirmedAt)
		assert.ErrorIs(t, err, ErrRoomAlreadyTaken)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Booking no longer pending", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewBookingRepository(db)
		bookingID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE`).
			WillReturnRows(bookingRow(bookingID, uuid.New(), uuid.New(), "rejected"))
		mock.ExpectRollback()

		_, _, err := repo.ConfirmWithTenant(ctx, bookingID, confirmedAt)
		assert.ErrorIs(t, err, ErrBookingNotPending)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingCreate(t *testing.T) {
	ctx := context.Background()
	property := &models.Property{ID: uuid.New(), OwnerID: uuid.New(), Address: "12 MG Road", SecurityDeposit: 10000}
	room := &models.Room{ID: uuid.New(), PropertyID: property.ID, RoomType: "Double", Rent: 3000}
	params := models.BookingParams{
		UserID:   uuid.New(),
		Property: property,
		Room:     room,
		Split:    models.SplitAmounts(room.Rent, property.SecurityDeposit, 10),
		Currency: "INR",
	}

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewBookingRepository(db)

		mock.ExpectExec(`INSERT INTO bookings`).WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Create(ctx, models.NewUnpaidBooking(params))
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Payment id reused", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewBookingRepository(db)

		mock.ExpectExec(`INSERT INTO bookings`).
			WillReturnError(&pq.Error{Code: "23505"})

		booking := models.NewPaidBooking(params, models.PaymentReceipt{OrderID: "order_1", PaymentID: "pay_1", Signature: "sig"}, time.Now())
		err := repo.Create(ctx, booking)
		assert.ErrorIs(t, err, ErrDuplicatePayment)
	})

	t.Run("Database Error", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewBookingRepository(db)

		mock.ExpectExec(`INSERT INTO bookings`).WillReturnError(fmt.Errorf("database error"))

		err := repo.Create(ctx, models.NewUnpaidBooking(params))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create booking")
	})
}

func TestFindLive(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)
	userID, roomID := uuid.New(), uuid.New()

	t.Run("Live booking", func(t *testing.T) {
		bookingID := uuid.New()
		mock.ExpectQuery(`FROM bookings\s+WHERE user_id = \$1 AND room_id = \$2`).
			WillReturnRows(bookingRow(bookingID, userID, roomID, "payment_pending"))

		booking, err := repo.FindLive(ctx, userID, roomID)
		require.NoError(t, err)
		require.NotNil(t, booking)
		assert.Equal(t, bookingID, booking.ID)
		assert.Equal(t, "Asha", booking.UserSnapshot.Name)
		assert.Equal(t, 13000.0, booking.TotalAmount)
	})

	t.Run("None", func(t *testing.T) {
		mock.ExpectQuery(`FROM bookings\s+WHERE user_id = \$1 AND room_id = \$2`).
			WillReturnRows(sqlmock.NewRows(columnNames(bookingColumns)))

		booking, err := repo.FindLive(ctx, userID, roomID)
		assert.NoError(t, err)
		assert.Nil(t, booking)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPaid(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)
	receipt := models.PaymentReceipt{OrderID: "order_1", PaymentID: "pay_1", Signature: "sig"}
	paidAt := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("Moves unpaid booking to pending approval", func(t *testing.T) {
		id := uuid.New()
		mock.ExpectQuery(`(?s)UPDATE bookings SET\s+status = 'pending_approval'.*WHERE id = \$1 AND status = 'payment_pending'`).
			WithArgs(id, "order_1", "pay_1", "sig", paidAt).
			WillReturnRows(bookingRow(id, uuid.New(), uuid.New(), "pending_approval"))

		booking, err := repo.MarkPaid(ctx, id, receipt, paidAt)
		require.NoError(t, err)
		require.NotNil(t, booking)
		assert.Equal(t, models.BookingPendingApproval, booking.Status)
	})

	t.Run("Booking moved on", func(t *testing.T) {
		id := uuid.New()
		mock.ExpectQuery(`UPDATE bookings SET`).
			WithArgs(id, "order_1", "pay_1", "sig", paidAt).
			WillReturnRows(sqlmock.NewRows(columnNames(bookingColumns)))

		booking, err := repo.MarkPaid(ctx, id, receipt, paidAt)
		assert.NoError(t, err)
		assert.Nil(t, booking)
	})

	t.Run("Payment id reused", func(t *testing.T) {
		id := uuid.New()
		mock.ExpectQuery(`UPDATE bookings SET`).
			WithArgs(id, "order_1", "pay_1", "sig", paidAt).
			WillReturnError(&pq.Error{Code: "23505"})

		_, err := repo.MarkPaid(ctx, id, receipt, paidAt)
		assert.ErrorIs(t, err, ErrDuplicatePayment)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCancellable(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	t.Run("Deletes pending booking", func(t *testing.T) {
		id := uuid.New()
		mock.ExpectQuery(`DELETE FROM bookings\s+WHERE id = \$1 AND status IN`).
			WithArgs(id).
			WillReturnRows(bookingRow(id, uuid.New(), uuid.New(), "payment_pending"))

		booking, err := repo.DeleteCancellable(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, booking)
		assert.Equal(t, models.BookingPaymentPending, booking.Status)
	})

	t.Run("Confirmed booking is kept", func(t *testing.T) {
		id := uuid.New()
		mock.ExpectQuery(`DELETE FROM bookings`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(columnNames(bookingColumns)))

		booking, err := repo.DeleteCancellable(ctx, id)
		assert.NoError(t, err)
		assert.Nil(t, booking)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteStalePaymentPending(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)
	cutoff := time.Now().Add(-48 * time.Hour)

	t.Run("Returns deleted rows", func(t *testing.T) {
		roomID := uuid.New()
		mock.ExpectQuery(`DELETE FROM bookings\s+WHERE status = 'payment_pending' AND created_at < \$1`).
			WithArgs(cutoff).
			WillReturnRows(bookingRow(uuid.New(), uuid.New(), roomID, "payment_pending"))

		bookings, err := repo.DeleteStalePaymentPending(ctx, cutoff)
		require.NoError(t, err)
		require.Len(t, bookings, 1)
		assert.Equal(t, roomID, bookings[0].RoomID)
	})

	t.Run("Database error", func(t *testing.T) {
		mock.ExpectQuery(`DELETE FROM bookings`).
			WithArgs(cutoff).
			WillReturnError(fmt.Errorf("connection reset"))

		bookings, err := repo.DeleteStalePaymentPending(ctx, cutoff)
		assert.Error(t, err)
		assert.Nil(t, bookings)
		assert.Contains(t, err.Error(), "failed to delete stale bookings")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
