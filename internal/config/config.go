package config

import (
	"os"
	"strconv"
	"time"

	"bookmyseat/internal/database"
	"bookmyseat/internal/external"
	"bookmyseat/internal/messaging"
)

// ReservationConfig controls the seat hold lifecycle. HoldTimeout is the
// window during which a held seat stays unavailable to other users;
// SweepInterval is how often the background sweeper reclaims lapsed holds.
type ReservationConfig struct {
	HoldTimeout   time.Duration
	SweepInterval time.Duration
}

type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration
	Currency       string

	Database    database.Config
	NATS        messaging.Config
	Payment     external.PaymentConfig
	Reservation ReservationConfig
}

// Load reads the configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,
		Currency:       getEnv("BOOKING_CURRENCY", "INR"),

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "bookmyseat"),
			Password:           getEnv("DB_PASSWORD", "bookmyseat123"),
			DBName:             getEnv("DB_NAME", "bookmyseat"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 100),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "bookmyseat"),
			ClientID:  getEnv("NATS_CLIENT_ID", "bookmyseat-api"),
		},

		Payment: external.PaymentConfig{
			BaseURL:   getEnv("PAYMENT_GATEWAY_URL", "https://api.razorpay.com"),
			KeyID:     getEnv("PAYMENT_KEY_ID", ""),
			KeySecret: getEnv("PAYMENT_KEY_SECRET", ""),
			Timeout:   time.Duration(getEnvInt("PAYMENT_TIMEOUT_SEC", 30)) * time.Second,
		},

		Reservation: ReservationConfig{
			HoldTimeout:   time.Duration(getEnvInt("RESERVATION_TIMEOUT_MIN", 5)) * time.Minute,
			SweepInterval: time.Duration(getEnvInt("RESERVATION_SWEEP_SEC", 30)) * time.Second,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
