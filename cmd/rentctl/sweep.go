package main

import (
	"fmt"
	"os"

	"github.com/rentnest/marketplace-backend/internal/config"
	"github.com/rentnest/marketplace-backend/internal/database"
	"github.com/rentnest/marketplace-backend/internal/services"
	"github.com/rentnest/marketplace-backend/pkg/identity"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete unpaid bookings older than BOOKING_PAYMENT_PENDING_TTL_HOURS once",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logrus.New()
			logger.SetOutput(os.Stderr)

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			db, err := database.NewConnection(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			bookings := services.NewBookingService(
				database.NewPropertyRepository(db.DB),
				database.NewRoomRepository(db.DB),
				database.NewBookingRepository(db.DB),
				database.NewTenantRepository(db.DB),
				services.NewSnapshotService(identity.NewClient(cfg.Identity.BaseURL, cfg.Identity.Timeout), nil, logger),
				services.NewNotificationService(services.NewLogDispatcher(logger), logger),
				services.BookingConfig{
					AtomicReservation: cfg.Booking.AtomicReservation,
					AdvancePercent:    cfg.Payment.AdvancePercent,
					Currency:          cfg.Payment.Currency,
					PaymentPendingTTL: cfg.Booking.PaymentPendingTTL,
				},
				logger,
			)

			removed, err := bookings.ExpireStaleBookings(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "removed %d stale bookings\n", removed)
			return nil
		},
	}
}
