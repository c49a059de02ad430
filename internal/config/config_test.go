package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ANALYTICS_API_URL", "https://analytics.example.com/api/queries/1/results.json")
	t.Setenv("DB_NAME", "stablewatch")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, "disable", cfg.DBSSLMode)
	assert.Equal(t, "https://api.mainnet-beta.solana.com", cfg.SolanaRPCURL)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "dev-secret", cfg.UpdateSecret)
	assert.Equal(t, "0 */6 * * *", cfg.CronSchedule)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 100*time.Millisecond, cfg.SupplyFetchDelay)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("SUPPLY_FETCH_DELAY", "250ms")
	t.Setenv("UPDATE_SECRET", "prod-secret")
	t.Setenv("API_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 250*time.Millisecond, cfg.SupplyFetchDelay)
	assert.Equal(t, "prod-secret", cfg.UpdateSecret)
	assert.True(t, cfg.IsProduction())
}

func TestLoadRequiresAnalyticsURL(t *testing.T) {
	t.Setenv("ANALYTICS_API_URL", "")
	t.Setenv("DB_NAME", "stablewatch")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANALYTICS_API_URL")
}

func TestLoadRequiresDBName(t *testing.T) {
	t.Setenv("ANALYTICS_API_URL", "https://analytics.example.com")
	t.Setenv("DB_NAME", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_NAME")
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CACHE_TTL", "five minutes")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CACHE_TTL")
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LOG_LEVEL", "verbose")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}

func TestIsProductionCaseInsensitive(t *testing.T) {
	assert.True(t, Config{Environment: "Production"}.IsProduction())
	assert.False(t, Config{Environment: "staging"}.IsProduction())
}

func TestDSN(t *testing.T) {
	cfg := Config{
		DBHost:     "db.internal",
		DBUser:     "svc",
		DBPassword: "pw",
		DBName:     "stablewatch",
		DBPort:     "5433",
		DBSSLMode:  "require",
	}

	assert.Equal(t,
		"host=db.internal user=svc password=pw dbname=stablewatch port=5433 sslmode=require TimeZone=UTC",
		cfg.DSN(),
	)
}
