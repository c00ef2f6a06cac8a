package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration, loaded from the environment.
type Config struct {
	Port string

	// Database configuration
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	// Redis configuration (sessions and quote cache)
	RedisAddr     string
	RedisPassword string

	// Quote service
	APIKey string

	// Session configuration
	JWTSecret  string
	SessionTTL time.Duration

	// Cash granted to every new account
	StartingCash decimal.Decimal
}

// Load reads configuration from environment variables. The quote API key and
// the JWT secret have no sane default; the process refuses to start without
// them.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getenv("PORT", "8080"),
		DBHost:        getenv("DB_HOST", "localhost"),
		DBUser:        getenv("DB_USER", "postgres"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        getenv("DB_NAME", "tradesim"),
		DBPort:        getenv("DB_PORT", "5432"),
		RedisAddr:     getenv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		APIKey:        os.Getenv("API_KEY"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		SessionTTL:    24 * time.Hour,
		StartingCash:  decimal.NewFromInt(10000),
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API_KEY is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cash := os.Getenv("STARTING_CASH"); cash != "" {
		parsed, err := decimal.NewFromString(cash)
		if err != nil {
			return nil, fmt.Errorf("invalid STARTING_CASH %q: %w", cash, err)
		}
		cfg.StartingCash = parsed
	}

	return cfg, nil
}

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
