package database

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/rentnest/marketplace-backend/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestPaymentAuditLog(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPaymentAuditRepository(db, newQuietLogger())

		audit := models.NewPaymentAudit(models.PaymentEventOrderCreated, models.PaymentSourceBackend).
			SetUser(uuid.New()).
			SetGatewayIDs("order_123", "").
			SetAmount(130000, "INR").
			SetPayload(map[string]interface{}{"receipt": "rcpt_1"})

		mock.ExpectExec(`INSERT INTO payment_audits`).WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Log(ctx, audit))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Nil entry", func(t *testing.T) {
		db, _ := newMockDB(t)
		repo := NewPaymentAuditRepository(db, newQuietLogger())

		err := repo.Log(ctx, nil)
		assert.Error(t, err)
	})

	t.Run("Fills id and timestamp", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPaymentAuditRepository(db, newQuietLogger())
		audit := &models.PaymentAudit{EventType: models.PaymentEventSignatureMismatch, EventSource: models.PaymentSourceClient}

		mock.ExpectExec(`INSERT INTO payment_audits`).WillReturnError(fmt.Errorf("database error"))

		err := repo.Log(ctx, audit)
		assert.Error(t, err)
		assert.NotEqual(t, uuid.Nil, audit.ID)
		assert.WithinDuration(t, time.Now(), audit.CreatedAt, time.Minute)
	})
}

func TestPaymentAuditListByOrderID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentAuditRepository(db, newQuietLogger())
	now := time.Now()

	mock.ExpectQuery(`FROM payment_audits\s+WHERE order_id = \$1`).
		WithArgs("order_123").
		WillReturnRows(sqlmock.NewRows(columnNames(paymentAuditColumns)).
			AddRow(uuid.New().String(), nil, nil, nil, "order_123", nil,
				"order_created", "backend", int64(130000), "INR",
				[]byte(`{"receipt":"rcpt_1"}`), nil, 12, now).
			AddRow(uuid.New().String(), nil, nil, nil, "order_123", "pay_9",
				"signature_verified", "client", nil, nil,
				nil, nil, 3, now))

	audits, err := repo.ListByOrderID(context.Background(), "order_123")
	require.NoError(t, err)
	require.Len(t, audits, 2)
	assert.Equal(t, models.PaymentEventOrderCreated, audits[0].EventType)
	assert.Equal(t, "rcpt_1", audits[0].Payload["receipt"])
	assert.Equal(t, "pay_9", *audits[1].PaymentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
