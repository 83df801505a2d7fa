// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// Server Configuration
	GinMode       string        `mapstructure:"GIN_MODE"`
	ServerHost    string        `mapstructure:"SERVER_HOST"`
	ServerPort    string        `mapstructure:"SERVER_PORT"`
	ServerTimeout time.Duration `mapstructure:"SERVER_TIMEOUT_SECONDS"`

	// Database Configuration
	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            string        `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBSSLMode         string        `mapstructure:"DB_SSL_MODE"`
	DBTimezone        string        `mapstructure:"DB_TIMEZONE"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`
	DBSource          string        `mapstructure:"DB_SOURCE"`

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Auth Configuration
	JWTSecret          string        `mapstructure:"JWT_SECRET"`
	JWTAccessTokenTTL  time.Duration `mapstructure:"JWT_ACCESS_TOKEN_TTL_MINUTES"`
	JWTRefreshTokenTTL time.Duration `mapstructure:"JWT_REFRESH_TOKEN_TTL_HOURS"`

	// Reservation Engine Configuration
	ReservationMinHours      int `mapstructure:"RESERVATION_MIN_HOURS"`
	ReservationMaxHours      int `mapstructure:"RESERVATION_MAX_HOURS"`
	ReservationRetentionDays int `mapstructure:"RESERVATION_RETENTION_DAYS"`

	// Cron Jobs
	ReservationCleanupSchedule string `mapstructure:"RESERVATION_CLEANUP_SCHEDULE"`
}

// Load attempts to load configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()

	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_TIMEOUT_SECONDS", 30)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "marketplace_db")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 60)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ACCESS_TOKEN_TTL_MINUTES", 60)
	v.SetDefault("JWT_REFRESH_TOKEN_TTL_HOURS", 720)

	v.SetDefault("RESERVATION_MIN_HOURS", 1)
	v.SetDefault("RESERVATION_MAX_HOURS", 168)
	v.SetDefault("RESERVATION_RETENTION_DAYS", 30)
	v.SetDefault("RESERVATION_CLEANUP_SCHEDULE", "@daily")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Convert duration fields
	cfg.ServerTimeout = time.Duration(v.GetInt("SERVER_TIMEOUT_SECONDS")) * time.Second
	cfg.DBConnMaxLifetime = time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES")) * time.Minute
	cfg.JWTAccessTokenTTL = time.Duration(v.GetInt("JWT_ACCESS_TOKEN_TTL_MINUTES")) * time.Minute
	cfg.JWTRefreshTokenTTL = time.Duration(v.GetInt("JWT_REFRESH_TOKEN_TTL_HOURS")) * time.Hour

	// GORM DSN is always assembled from the individual DB_* parameters. The
	// DB_SOURCE env var (URL form) is only consumed by migration tooling.
	cfg.DBSource = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode, cfg.DBTimezone)

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("FATAL: JWT_SECRET is not set. This is required for issuing and validating tokens")
	}
	if cfg.ReservationMinHours < 1 || cfg.ReservationMaxHours < cfg.ReservationMinHours {
		return nil, fmt.Errorf("invalid reservation hour bounds: min=%d max=%d", cfg.ReservationMinHours, cfg.ReservationMaxHours)
	}

	return &cfg, nil
}
