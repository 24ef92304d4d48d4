package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/realty/internal/models"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret-32-characters-long!")
	t.Setenv("DB_PASSWORD", "test")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, 5*time.Second, cfg.Database.StatementTimeout)
	assert.Equal(t, "realty-api", cfg.Database.ApplicationName)
	assert.Equal(t, []string{"basic", "pro", "enterprise"}, cfg.Subscriptions.Tiers.Names())

	assert.Equal(t, 10, cfg.Listings.PageSizeFor(models.ScopeAdmin))
	assert.Equal(t, 10, cfg.Listings.PageSizeFor(models.ScopeAgency))
	assert.Equal(t, 12, cfg.Listings.PageSizeFor(models.ScopeFavorites))
	assert.Equal(t, 20, cfg.Listings.PageSizeFor(models.ScopePublic))
	assert.Equal(t, 100, cfg.Listings.MaxPageSize)
}

func TestLoad_CustomTimeouts(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_READ_TIMEOUT", "30s")
	t.Setenv("SERVER_WRITE_TIMEOUT", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout, "invalid duration falls back to default")
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_PASSWORD", "test")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_MemoryDriverSkipsDBPassword(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-32-characters-long!")
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
}

func TestLoad_UnknownDriver(t *testing.T) {
	setRequired(t)
	t.Setenv("STORE_DRIVER", "mongo")

	_, err := Load()
	var cfgErr *models.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestLoad_TiersWithoutBasicAbortBoot(t *testing.T) {
	setRequired(t)
	t.Setenv("SUBSCRIPTION_TIERS", "pro:25:5")

	_, err := Load()
	var cfgErr *models.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "SUBSCRIPTION_TIERS", cfgErr.Field)
}

func TestParseTiers(t *testing.T) {
	table, err := ParseTiers(" basic:5:0 , pro:25:5,")
	require.NoError(t, err)

	pro, err := table.Resolve("pro")
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionTier{Name: "pro", MaxListings: 25, MaxFeatured: 5}, pro)

	for _, raw := range []string{"basic:5", "basic:five:0", "basic:5:x", "basic:-1:0"} {
		_, err := ParseTiers(raw)
		assert.Error(t, err, "raw=%q", raw)
	}
}

func TestValidateJWTSecret(t *testing.T) {
	assert.Error(t, validateJWTSecret("short", "development"))
	assert.Error(t, validateJWTSecret("sixteen-chars-ok", "production"))
	assert.NoError(t, validateJWTSecret("sixteen-chars-ok", "development"))
	assert.NoError(t, validateJWTSecret("a-very-long-production-secret-value!", "production"))
}
