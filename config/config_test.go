package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, time.UTC, cfg.App.Location)
	assert.Equal(t, 250, cfg.Points.DefaultDailyGoal)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.True(t, cfg.Redis.Disabled)
	assert.True(t, cfg.IsDevelopment())
}

func TestFromEnv_Validation(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("AUTH_JWT_SECRET", "short")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL is required")
	assert.Contains(t, err.Error(), "at least 32 bytes")
}

func TestFromEnv_BadTimezone(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "Mars/Olympus")

	_, err := FromEnv()
	assert.Error(t, err)
}

func TestLoad_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("HTTP_PORT=9191\nAPP_NAME=from-file\n"), 0o600))
	t.Setenv("APP_NAME", "from-env")
	// Setenv registers the restore; the variable must be absent for the file to apply.
	t.Setenv("HTTP_PORT", "")
	require.NoError(t, os.Unsetenv("HTTP_PORT"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.App.Name)
	assert.Equal(t, 9191, cfg.HTTP.Port)
}

func TestLoad_MissingFileIsIgnored(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}

func TestFeatureFlags(t *testing.T) {
	t.Setenv("FEATURE_SOCIAL_DISCOVERY", "false")
	t.Setenv("FEATURE_REWARDS_REDEMPTION", "0")

	ff := LoadFeatureFlags()
	assert.True(t, ff.IsEnabled(FeatureAuthSignup, ""))
	assert.False(t, ff.IsEnabled(FeatureSocialDiscovery, "u1"))
	assert.False(t, ff.IsEnabled(FeatureRewardsRedemption, "u1"))
	assert.False(t, ff.IsEnabled("unknown.flag", "u1"))

	ff.SetUserOverride("u1", FeatureSocialDiscovery, true)
	assert.True(t, ff.IsEnabled(FeatureSocialDiscovery, "u1"))
	assert.False(t, ff.IsEnabled(FeatureSocialDiscovery, "u2"))

	require.NoError(t, ff.SetRolloutPercent(FeatureRewardsRedemption, 100))
	assert.True(t, ff.IsEnabled(FeatureRewardsRedemption, "u2"))
	assert.Error(t, ff.SetRolloutPercent(FeatureRewardsRedemption, 101))
}

func TestFeatureFlags_RolloutIsStablePerUser(t *testing.T) {
	ff := LoadFeatureFlags()
	require.NoError(t, ff.SetRolloutPercent(FeatureSocialGroupSync, 50))

	for _, id := range []string{"a", "b", "c", "d"} {
		first := ff.IsEnabled(FeatureSocialGroupSync, id)
		assert.Equal(t, first, ff.IsEnabled(FeatureSocialGroupSync, id))
	}
	assert.False(t, ff.IsEnabled(FeatureSocialGroupSync, ""))
}
