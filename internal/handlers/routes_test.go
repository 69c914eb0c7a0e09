package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rentnest/marketplace-backend/internal/database"
	"github.com/rentnest/marketplace-backend/internal/models"
	"github.com/rentnest/marketplace-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a mock database for testing
func setupTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func setupBookingService(db *sqlx.DB) *services.BookingService {
	logger := testLogger()
	return services.NewBookingService(
		database.NewPropertyRepository(db),
		database.NewRoomRepository(db),
		database.NewBookingRepository(db),
		database.NewTenantRepository(db),
		services.NewSnapshotService(nil, nil, logger),
		services.NewNotificationService(services.NewLogDispatcher(logger), logger),
		services.BookingConfig{AdvancePercent: 10, Currency: "INR"},
		logger,
	)
}

func TestGetProperty_NotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	handler := NewCatalogHandler(services.NewCatalogService(
		database.NewPropertyRepository(db), database.NewRoomRepository(db), testLogger()), testLogger())

	propertyID := uuid.New()
	mock.ExpectQuery("SELECT .+ FROM properties WHERE id = \\$1").
		WithArgs(propertyID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	router := gin.New()
	router.Use(withUser(uuid.New(), "tenant"))
	router.GET("/properties/:id", handler.GetProperty)

	w := doJSON(t, router, http.MethodGet, "/properties/"+propertyID.String(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decodeError(t, w).Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProperty_ValidationNeverTouchesDB(t *testing.T) {
	db, mock := setupTestDB(t)
	handler := NewCatalogHandler(services.NewCatalogService(
		database.NewPropertyRepository(db), database.NewRoomRepository(db), testLogger()), testLogger())

	router := gin.New()
	router.Use(withUser(uuid.New(), "owner"))
	router.POST("/properties", handler.CreateProperty)

	w := doJSON(t, router, http.MethodPost, "/properties", gin.H{
		"property": gin.H{"name": "Lake View", "address": "   ", "security_deposit": 5000},
		"rooms":    []gin.H{{"room_type": "Double", "rent": 12000}},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", decodeError(t, w).Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveBooking_Routes(t *testing.T) {
	t.Run("invalid id", func(t *testing.T) {
		db, _ := setupTestDB(t)
		router := gin.New()
		router.Use(withUser(uuid.New(), "owner"))
		router.POST("/owner/bookings/:id/approve", NewBookingHandler(setupBookingService(db), testLogger()).ApproveBooking)

		w := doJSON(t, router, http.MethodPost, "/owner/bookings/abc/approve", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown booking", func(t *testing.T) {
		db, mock := setupTestDB(t)
		bookingID := uuid.New()
		mock.ExpectQuery("SELECT .+ FROM bookings WHERE id = \\$1").
			WithArgs(bookingID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		router := gin.New()
		router.Use(withUser(uuid.New(), "owner"))
		router.POST("/owner/bookings/:id/approve", NewBookingHandler(setupBookingService(db), testLogger()).ApproveBooking)

		w := doJSON(t, router, http.MethodPost, "/owner/bookings/"+bookingID.String()+"/approve", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCheckBookingStatus_BadQuery(t *testing.T) {
	db, _ := setupTestDB(t)
	router := gin.New()
	router.Use(withUser(uuid.New(), "tenant"))
	router.GET("/bookings/check-status", NewBookingHandler(setupBookingService(db), testLogger()).CheckBookingStatus)

	w := doJSON(t, router, http.MethodGet, "/bookings/check-status?roomId=nope", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyPayment_SignatureMismatch(t *testing.T) {
	db, mock := setupTestDB(t)
	audits := database.NewPaymentAuditRepository(db, testLogger())
	// no gateway configured: every signature is rejected
	payments := services.NewPaymentService(nil, setupBookingService(db), audits, testLogger())

	mock.ExpectExec("INSERT INTO payment_audits").
		WillReturnResult(sqlmock.NewResult(1, 1))

	router := gin.New()
	router.Use(withUser(uuid.New(), "tenant"))
	router.POST("/payments/verify", NewPaymentHandler(payments, testLogger()).VerifyPayment)

	w := doJSON(t, router, http.MethodPost, "/payments/verify", gin.H{
		"razorpay_order_id":   "order_1",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  "forged",
		"room_id":             uuid.New().String(),
		"property_id":         uuid.New().String(),
	})

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Equal(t, "signature_mismatch", decodeError(t, w).Error)
	// only the audit row was written, no booking
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyPayment_MissingFields(t *testing.T) {
	db, mock := setupTestDB(t)
	payments := services.NewPaymentService(nil, setupBookingService(db),
		database.NewPaymentAuditRepository(db, testLogger()), testLogger())

	router := gin.New()
	router.Use(withUser(uuid.New(), "tenant"))
	router.POST("/payments/verify", NewPaymentHandler(payments, testLogger()).VerifyPayment)

	w := doJSON(t, router, http.MethodPost, "/payments/verify", gin.H{"razorpay_order_id": "order_1"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPaymentAudits(t *testing.T) {
	db, mock := setupTestDB(t)
	audits := database.NewPaymentAuditRepository(db, testLogger())

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "booking_id", "room_id", "order_id", "payment_id",
		"event_type", "event_source", "amount_minor", "currency",
		"payload", "error_message", "processing_time_ms", "created_at",
	}).AddRow(
		uuid.New().String(), nil, nil, nil, "order_1", nil,
		string(models.PaymentEventOrderCreated), string(models.PaymentSourceBackend), int64(130000), "INR",
		nil, nil, nil, time.Now(),
	)
	mock.ExpectQuery("SELECT .+ FROM payment_audits").
		WithArgs("order_1").
		WillReturnRows(rows)

	router := gin.New()
	router.Use(withUser(uuid.New(), "admin"))
	router.GET("/admin/payments/:orderId/audits", NewAdminHandler(nil, audits, testLogger()).GetPaymentAudits)

	w := doJSON(t, router, http.MethodGet, "/admin/payments/order_1/audits", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)
	assert.Contains(t, w.Body.String(), "order_created")
	assert.NoError(t, mock.ExpectationsWereMet())
}
