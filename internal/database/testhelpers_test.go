package database

import (
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func columnNames(columns string) []string {
	parts := strings.Split(columns, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		names = append(names, strings.TrimSpace(p))
	}
	return names
}

func propertyRow(id, ownerID uuid.UUID, status string, approvedBy interface{}) *sqlmock.Rows {
	now := time.Now()
	var approvedAt interface{}
	if approvedBy != nil {
		approvedAt = now
	}
	return sqlmock.NewRows(columnNames(propertyColumns)).AddRow(
		id.String(), ownerID.String(), "Lake View", "12 MG Road", "Pune", "MH", "411001", 10000.0,
		[]byte(`{wifi,parking}`), []byte(`{}`), []byte(`{img/1.jpg}`),
		status, status == "approved", approvedAt, approvedBy, nil,
		now, now,
	)
}

func roomRow(id, propertyID uuid.UUID, status string, available bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(columnNames(roomColumns)).AddRow(
		id.String(), propertyID.String(), "Double", 180.0, "Queen", 2, 3000.0, nil, nil,
		[]byte(`{}`), []byte(`{}`), status, available,
		"approved", now, uuid.New().String(), nil,
		now, now,
	)
}

func bookingRow(id, userID, roomID uuid.UUID, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(columnNames(bookingColumns)).AddRow(
		id.String(), userID.String(), uuid.New().String(), uuid.New().String(), roomID.String(),
		status, "paid", nil,
		3000.0, 10000.0, 13000.0, 1300.0, 11700.0, "INR",
		"order_1", "pay_1", "sig", "completed", now,
		[]byte(`{"name":"Asha"}`), []byte(`{}`), []byte(`{"name":"Lake View"}`), []byte(`{"room_type":"Double"}`),
		nil, now, now,
	)
}
