package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all configuration for stablewatch
type Config struct {
	// Database configuration
	DBName     string
	DBHost     string
	DBUser     string
	DBPassword string
	DBPort     string
	DBSSLMode  string

	// External sources
	AnalyticsAPIURL string
	SolanaRPCURL    string

	// HTTP server configuration
	ListenAddr   string
	UpdateSecret string

	// Scheduler configuration
	CronSchedule string

	// Aggregate cache configuration
	CacheTTL time.Duration

	// Supply enrichment configuration
	SupplyFetchDelay time.Duration

	// Logging configuration
	LogLevel string

	// Environment ("development" or "production")
	Environment string
}

// Load reads configuration from environment variables and validates it
func Load() (Config, error) {
	cfg := Config{
		DBName:          getEnv("DB_NAME", ""),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBUser:          getEnv("DB_USER", ""),
		DBPassword:      getEnv("DB_PASSWORD", ""),
		DBPort:          getEnv("DB_PORT", "5432"),
		DBSSLMode:       getEnv("DB_SSL_MODE", "disable"),
		AnalyticsAPIURL: getEnv("ANALYTICS_API_URL", ""),
		SolanaRPCURL:    getEnv("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com"),
		ListenAddr:      getEnv("LISTEN_ADDR", ":8080"),
		UpdateSecret:    getEnv("UPDATE_SECRET", "dev-secret"),
		CronSchedule:    getEnv("CRON_SCHEDULE", "0 */6 * * *"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Environment:     getEnv("API_ENV", "development"),
	}

	var err error
	cfg.CacheTTL, err = parseDurationEnv("CACHE_TTL", 5*time.Minute)
	if err != nil {
		return cfg, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}

	cfg.SupplyFetchDelay, err = parseDurationEnv("SUPPLY_FETCH_DELAY", 100*time.Millisecond)
	if err != nil {
		return cfg, fmt.Errorf("invalid SUPPLY_FETCH_DELAY: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks that the configuration is valid
func (c Config) validate() error {
	if c.AnalyticsAPIURL == "" {
		return fmt.Errorf("ANALYTICS_API_URL is required")
	}

	if c.DBName == "" {
		return fmt.Errorf("DB_NAME is required")
	}

	if c.SolanaRPCURL == "" {
		return fmt.Errorf("SOLANA_RPC_URL is required")
	}

	if c.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL must not be negative")
	}

	if c.SupplyFetchDelay < 0 {
		return fmt.Errorf("SUPPLY_FETCH_DELAY must not be negative")
	}

	validLogLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
		"panic": true,
	}

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid LOG_LEVEL: %s (must be one of: trace, debug, info, warn, error, fatal, panic)", c.LogLevel)
	}

	return nil
}

// IsProduction reports whether the service runs in production mode.
// The GET variant of the update trigger is only allowed outside of it.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// DSN builds the postgres connection string for the configured database
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

// getEnv retrieves an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDurationEnv parses a duration environment variable with a default value
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	str := os.Getenv(key)
	if str == "" {
		return defaultValue, nil
	}
	return time.ParseDuration(str)
}
