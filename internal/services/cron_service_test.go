package services

import (
	"errors"
	"testing"

	"github.com/rentnest/marketplace-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCronService_InvalidSchedule(t *testing.T) {
	f := newBookingFixture()
	cronSvc := NewCronService(f.service(f.rooms, false), "every now and then", testLogger())

	assert.Error(t, cronSvc.Start())
}

func TestCronService_StartSchedulesSweep(t *testing.T) {
	f := newBookingFixture()
	cronSvc := NewCronService(f.service(f.rooms, false), "0 */15 * * * *", testLogger())

	require.NoError(t, cronSvc.Start())
	defer cronSvc.Stop()

	assert.Len(t, cronSvc.cron.Entries(), 1)
}

func TestCronService_SweepJob(t *testing.T) {
	t.Run("Expires stale bookings", func(t *testing.T) {
		f := newBookingFixture()
		f.bookings.On("DeleteStalePaymentPending", mock.Anything, mock.AnythingOfType("time.Time")).
			Return([]models.Booking{}, nil).Once()

		NewCronService(f.service(f.rooms, false), "0 */15 * * * *", testLogger()).expireStaleBookingsJob()

		f.bookings.AssertExpectations(t)
	})

	t.Run("Storage failure is logged", func(t *testing.T) {
		f := newBookingFixture()
		f.bookings.On("DeleteStalePaymentPending", mock.Anything, mock.Anything).
			Return(nil, errors.New("failed to delete stale bookings: timeout")).Once()

		assert.NotPanics(t, func() {
			NewCronService(f.service(f.rooms, false), "0 */15 * * * *", testLogger()).expireStaleBookingsJob()
		})
		f.bookings.AssertExpectations(t)
	})
}
