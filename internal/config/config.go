package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Environment
	GoEnv string `envconfig:"GO_ENV" default:"development"`

	// HTTP server
	HTTPHost       string        `envconfig:"HTTP_HOST" default:"0.0.0.0"`
	HTTPPort       int           `envconfig:"HTTP_PORT" default:"8080"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"5s"`

	// Database: a postgres URL/DSN or a path to an sqlite file
	DatabaseURL string `envconfig:"DATABASE_URL" default:"library.db"`

	// Authentication
	JWTSecret                string `envconfig:"JWT_SECRET" required:"true"`
	JWTAlgorithm             string `envconfig:"JWT_ALGORITHM" default:"HS256"`
	AccessTokenExpireMinutes int    `envconfig:"ACCESS_TOKEN_EXPIRE_MINUTES" default:"60"`
	LoginRatePerMinute       int    `envconfig:"LOGIN_RATE_PER_MINUTE" default:"10"`

	// Bootstrap admin, created at startup when all three are set
	AdminUsername string `envconfig:"ADMIN_USERNAME"`
	AdminEmail    string `envconfig:"ADMIN_EMAIL"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`

	// Redis cache, disabled when empty
	RedisURL         string        `envconfig:"REDIS_URL"`
	SettingsCacheTTL time.Duration `envconfig:"SETTINGS_CACHE_TTL" default:"10m"`

	// Kafka lifecycle events, disabled when no brokers are set
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"library.events"`

	// Media
	MediaRoot string `envconfig:"MEDIA_ROOT" default:"./media"`
	MediaURL  string `envconfig:"MEDIA_URL" default:"/media/"`

	// Lifecycle
	BorrowRequireApproval bool   `envconfig:"BORROW_REQUIRE_APPROVAL" default:"true"`
	SweepSchedule         string `envconfig:"SWEEP_SCHEDULE" default:"@daily"`

	// Seed values for the admin settings row
	DefaultBorrowDayLimit    int `envconfig:"DEFAULT_BORROW_DAY_LIMIT" default:"30"`
	DefaultBorrowExtendLimit int `envconfig:"DEFAULT_BORROW_EXTEND_LIMIT" default:"2"`
	DefaultBorrowBookLimit   int `envconfig:"DEFAULT_BORROW_BOOK_LIMIT" default:"5"`
	DefaultBookingDaysLimit  int `envconfig:"DEFAULT_BOOKING_DAYS_LIMIT" default:"30"`

	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

// LoadConfig loads configuration from the environment, reading .env first when present.
func LoadConfig() (*Config, error) {
	// If .env file doesn't exist, that's OK - we can still use system env vars
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	config := &Config{}
	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	config.LogLevel = strings.ToLower(config.LogLevel)
	config.LogFormat = strings.ToLower(config.LogFormat)
	config.JWTAlgorithm = strings.ToUpper(config.JWTAlgorithm)
	return config, nil
}

// Validate performs validation on the loaded configuration
func (c *Config) Validate() error {
	var errors []string

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errors = append(errors, "HTTP_PORT must be between 1 and 65535")
	}
	if c.RequestTimeout <= 0 {
		errors = append(errors, "REQUEST_TIMEOUT must be positive")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: %s", strings.Join(validLogLevels, ", ")))
	}
	validLogFormats := []string{"text", "json"}
	if !slices.Contains(validLogFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: %s", strings.Join(validLogFormats, ", ")))
	}

	// Validate JWT secret length (should be at least 32 characters for security)
	if len(c.JWTSecret) < 32 {
		errors = append(errors, "JWT_SECRET should be at least 32 characters long")
	}
	validAlgorithms := []string{"HS256", "HS384", "HS512"}
	if !slices.Contains(validAlgorithms, c.JWTAlgorithm) {
		errors = append(errors, fmt.Sprintf("JWT_ALGORITHM must be one of: %s", strings.Join(validAlgorithms, ", ")))
	}
	if c.AccessTokenExpireMinutes <= 0 {
		errors = append(errors, "ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	if c.LoginRatePerMinute <= 0 {
		errors = append(errors, "LOGIN_RATE_PER_MINUTE must be positive")
	}

	if c.DefaultBorrowDayLimit <= 0 || c.DefaultBorrowBookLimit <= 0 || c.DefaultBookingDaysLimit <= 0 {
		errors = append(errors, "DEFAULT_BORROW_DAY_LIMIT, DEFAULT_BORROW_BOOK_LIMIT and DEFAULT_BOOKING_DAYS_LIMIT must be positive")
	}
	if c.DefaultBorrowExtendLimit < 0 {
		errors = append(errors, "DEFAULT_BORROW_EXTEND_LIMIT must not be negative")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}

func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

// HasBootstrapAdmin reports whether an admin account should be ensured at startup.
func (c *Config) HasBootstrapAdmin() bool {
	return c.AdminUsername != "" && c.AdminEmail != "" && c.AdminPassword != ""
}
