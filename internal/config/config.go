package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// JWT configuration
	JWT JWTConfig

	// CORS configuration
	CORS CORSConfig

	// Payment gateway configuration
	Payment PaymentConfig

	// Identity service configuration
	Identity IdentityConfig

	// Redis configuration
	Redis RedisConfig

	// Kafka configuration
	Kafka KafkaConfig

	// Booking policy configuration
	Booking BookingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret string
	Issuer string
	// AccessTokenExpiry applies to tokens minted locally by rentctl
	AccessTokenExpiry time.Duration
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// PaymentConfig holds Razorpay configuration
type PaymentConfig struct {
	Mode           string // "dev" or "production" - dev issues local order ids
	KeyID          string // Razorpay key id (safe to expose to the client)
	KeySecret      string // Razorpay key secret (SECRET - signs callbacks)
	BaseURL        string
	Currency       string
	AdvancePercent int64 // share of the total collected online
	HTTPTimeout    time.Duration
}

// IdentityConfig holds the identity service client configuration
type IdentityConfig struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig holds Kafka producer configuration
type KafkaConfig struct {
	Brokers            []string
	NotificationsTopic string
}

// BookingConfig holds booking policy switches
type BookingConfig struct {
	// AtomicReservation claims the room on booking creation with a conditional update.
	// Off by default: concurrent creates for the same room may both succeed.
	AtomicReservation bool
	// PaymentPendingTTL is how long an unpaid booking may wait before the sweeper
	// deletes it. Zero disables the sweep.
	PaymentPendingTTL time.Duration
	SweepSchedule     string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", ""),
			Issuer:            getEnv("JWT_ISSUER", ""),
			AccessTokenExpiry: time.Duration(getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY_MINUTES", 60)) * time.Minute,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
		Payment: PaymentConfig{
			Mode:           getEnv("PAYMENT_MODE", "dev"),
			KeyID:          getEnv("RAZORPAY_KEY_ID", ""),
			KeySecret:      getEnv("RAZORPAY_KEY_SECRET", ""),
			BaseURL:        getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
			Currency:       getEnv("PAYMENT_CURRENCY", "INR"),
			AdvancePercent: int64(getEnvAsInt("PAYMENT_ADVANCE_PERCENT", 10)),
			HTTPTimeout:    time.Duration(getEnvAsInt("RAZORPAY_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Identity: IdentityConfig{
			BaseURL:  getEnv("IDENTITY_SERVICE_URL", "http://localhost:5000/api"),
			Timeout:  time.Duration(getEnvAsInt("IDENTITY_TIMEOUT_SECONDS", 5)) * time.Second,
			CacheTTL: time.Duration(getEnvAsInt("IDENTITY_CACHE_TTL_SECONDS", 300)) * time.Second,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers:            getEnvAsSlice("KAFKA_BROKERS", nil),
			NotificationsTopic: getEnv("KAFKA_NOTIFICATIONS_TOPIC", "rental.notifications"),
		},
		Booking: BookingConfig{
			AtomicReservation: getEnvAsBool("BOOKING_ATOMIC_RESERVATION", false),
			PaymentPendingTTL: time.Duration(getEnvAsInt("BOOKING_PAYMENT_PENDING_TTL_HOURS", 48)) * time.Hour,
			SweepSchedule:     getEnv("BOOKING_SWEEP_SCHEDULE", "0 */15 * * * *"),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Payment.AdvancePercent <= 0 || c.Payment.AdvancePercent > 100 {
		return fmt.Errorf("PAYMENT_ADVANCE_PERCENT must be between 1 and 100, got %d", c.Payment.AdvancePercent)
	}

	// Gateway credentials are only mandatory when charging for real
	switch c.Payment.Mode {
	case "production":
		if c.Payment.KeyID == "" {
			return fmt.Errorf("RAZORPAY_KEY_ID is required in production payment mode")
		}
		if c.Payment.KeySecret == "" {
			return fmt.Errorf("RAZORPAY_KEY_SECRET is required in production payment mode")
		}
	case "dev":
	default:
		return fmt.Errorf("invalid PAYMENT_MODE: %s (must be 'dev' or 'production')", c.Payment.Mode)
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
