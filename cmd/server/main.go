package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rentnest/marketplace-backend/internal/cache"
	"github.com/rentnest/marketplace-backend/internal/config"
	"github.com/rentnest/marketplace-backend/internal/database"
	"github.com/rentnest/marketplace-backend/internal/handlers"
	"github.com/rentnest/marketplace-backend/internal/kafka"
	"github.com/rentnest/marketplace-backend/internal/middleware"
	"github.com/rentnest/marketplace-backend/internal/services"
	"github.com/rentnest/marketplace-backend/pkg/identity"
	"github.com/rentnest/marketplace-backend/pkg/jwt"
	"github.com/rentnest/marketplace-backend/pkg/razorpay"
	"github.com/sirupsen/logrus"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting rental marketplace backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Repositories
	propertyRepo := database.NewPropertyRepository(db.DB)
	roomRepo := database.NewRoomRepository(db.DB)
	bookingRepo := database.NewBookingRepository(db.DB)
	tenantRepo := database.NewTenantRepository(db.DB)
	messageRepo := database.NewOwnerMessageRepository(db.DB)
	auditRepo := database.NewPaymentAuditRepository(db.DB, logger)

	optionalChecks := map[string]handlers.HealthCheck{}

	// Snapshot cache (optional)
	var snapshotCache services.SnapshotCache
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, cfg.Identity.CacheTTL)
		defer redisCache.Close()
		if err := redisCache.Ping(context.Background()); err != nil {
			logger.WithError(err).Warn("Redis unreachable, snapshots will not be cached until it recovers")
		}
		snapshotCache = redisCache
		optionalChecks["redis"] = redisCache.Ping
		logger.WithField("addr", cfg.Redis.Addr).Info("Snapshot cache enabled")
	}

	// Notification transport
	var dispatcher services.Dispatcher
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, logger)
		defer producer.Close()
		dispatcher = services.NewKafkaDispatcher(producer, cfg.Kafka.NotificationsTopic)
		logger.WithFields(logrus.Fields{
			"brokers": cfg.Kafka.Brokers,
			"topic":   cfg.Kafka.NotificationsTopic,
		}).Info("Kafka notification dispatcher enabled")
	} else {
		dispatcher = services.NewLogDispatcher(logger)
		logger.Info("No Kafka brokers configured, notifications go to the log")
	}

	// Upstream clients
	gateway := razorpay.NewClient(razorpay.Config{
		KeyID:       cfg.Payment.KeyID,
		KeySecret:   cfg.Payment.KeySecret,
		BaseURL:     cfg.Payment.BaseURL,
		HTTPTimeout: cfg.Payment.HTTPTimeout,
	})
	if !gateway.Configured() {
		logger.Warn("Payment gateway credentials missing, issuing local dev orders")
	}
	identityClient := identity.NewClient(cfg.Identity.BaseURL, cfg.Identity.Timeout)
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTokenExpiry)

	// Services
	logger.Info("Initializing services...")
	notifier := services.NewNotificationService(dispatcher, logger)
	snapshots := services.NewSnapshotService(identityClient, snapshotCache, logger)
	catalogService := services.NewCatalogService(propertyRepo, roomRepo, logger)
	approvalService := services.NewApprovalService(propertyRepo, roomRepo, messageRepo, notifier, logger)
	bookingService := services.NewBookingService(
		propertyRepo,
		roomRepo,
		bookingRepo,
		tenantRepo,
		snapshots,
		notifier,
		services.BookingConfig{
			AtomicReservation: cfg.Booking.AtomicReservation,
			AdvancePercent:    cfg.Payment.AdvancePercent,
			Currency:          cfg.Payment.Currency,
			PaymentPendingTTL: cfg.Booking.PaymentPendingTTL,
		},
		logger,
	)
	paymentService := services.NewPaymentService(gateway, bookingService, auditRepo, logger)
	logger.WithField("atomic_reservation", cfg.Booking.AtomicReservation).Info("Booking service initialized")

	// Background jobs
	if cfg.Booking.PaymentPendingTTL > 0 {
		cronService := services.NewCronService(bookingService, cfg.Booking.SweepSchedule, logger)
		if err := cronService.Start(); err != nil {
			logger.Fatalf("Failed to start cron service: %v", err)
		}
		defer cronService.Stop()
	}

	// Handlers
	catalogHandler := handlers.NewCatalogHandler(catalogService, logger)
	adminHandler := handlers.NewAdminHandler(approvalService, auditRepo, logger)
	bookingHandler := handlers.NewBookingHandler(bookingService, logger)
	paymentHandler := handlers.NewPaymentHandler(paymentService, logger)
	healthHandler := handlers.NewHealthHandler(version,
		map[string]handlers.HealthCheck{"database": db.PingContext},
		optionalChecks,
	)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))

	// CORS configuration
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", healthHandler.Health)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(jwtService, logger))
	{
		// Catalog
		properties := v1.Group("/properties")
		{
			properties.POST("", middleware.RequireRole(jwt.RoleOwner), catalogHandler.CreateProperty)
			properties.GET("/mine", middleware.RequireRole(jwt.RoleOwner), catalogHandler.ListMyProperties)
			properties.GET("/:id", catalogHandler.GetProperty)
			properties.PUT("/:id", middleware.RequireRole(jwt.RoleOwner), catalogHandler.UpdateProperty)
		}

		rooms := v1.Group("/rooms")
		{
			rooms.GET("/available", catalogHandler.ListAvailableRooms)
			rooms.PUT("/:id/status", middleware.RequireRole(jwt.RoleOwner), catalogHandler.UpdateRoomStatus)
		}

		// Admin
		admin := v1.Group("/admin")
		admin.Use(middleware.RequireRole(jwt.RoleAdmin))
		{
			admin.GET("/properties/pending", adminHandler.GetPendingProperties)
			admin.GET("/rooms/pending", adminHandler.GetPendingRooms)
			admin.POST("/properties/:id/approval", adminHandler.SetPropertyApproval)
			admin.POST("/rooms/:id/approval", adminHandler.SetRoomApproval)
			admin.POST("/messages", adminHandler.SendOwnerMessage)
			admin.GET("/payments/:orderId/audits", adminHandler.GetPaymentAudits)
		}

		// Tenant bookings
		bookings := v1.Group("/bookings")
		bookings.Use(middleware.RequireRole(jwt.RoleTenant))
		{
			bookings.POST("", bookingHandler.CreateBooking)
			bookings.GET("/check-status", bookingHandler.CheckBookingStatus)
			bookings.GET("/mine", bookingHandler.ListMyBookings)
			bookings.DELETE("/:id", bookingHandler.CancelBooking)
		}

		// Owner decisions
		owner := v1.Group("/owner")
		owner.Use(middleware.RequireRole(jwt.RoleOwner))
		{
			owner.GET("/bookings", bookingHandler.ListOwnerBookings)
			owner.GET("/bookings/pending", bookingHandler.ListPendingApproval)
			owner.POST("/bookings/:id/approve", bookingHandler.ApproveBooking)
			owner.POST("/bookings/:id/reject", bookingHandler.RejectBooking)
			owner.POST("/tenants/:id/checkout", bookingHandler.CheckOutTenant)
		}

		// Payments
		payments := v1.Group("/payments")
		payments.Use(middleware.RequireRole(jwt.RoleTenant))
		{
			payments.POST("/create-order", paymentHandler.CreateOrder)
			payments.POST("/verify", paymentHandler.VerifyPayment)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:           ":" + cfg.Server.Port,
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	// let in-flight notifications reach the broker before the producer closes
	notifier.Wait()

	logger.Info("Server exited")
}
