package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"PORT", "LOG_LEVEL", "CATALOG_URL", "CART_URL", "DATABASE_URL",
	"SESSION_SECRET", "SESSION_TTL", "TOKEN_TTL", "SESSION_RATE_LIMIT", "METRICS_TOKEN",
	"SHOW_CATEGORY", "RESET_SELECTOR", "TRUSTED_PROXIES",
}

// clearEnv unsets every config key for the test and restores them after.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	for _, k := range keys {
		if v, ok := os.LookupEnv(k); ok {
			t.Cleanup(func() { _ = os.Setenv(k, v) })
		} else {
			t.Cleanup(func() { _ = os.Unsetenv(k) })
		}
		_ = os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	o, err := Load("cart", "8083", nil)
	require.NoError(t, err)

	assert.Equal(t, ":8083", o.Addr())
	assert.Equal(t, "info", o.LogLevel)
	assert.Empty(t, o.CatalogURL)
	assert.Equal(t, 30*time.Minute, o.SessionTTL)
	assert.Equal(t, 12*time.Hour, o.TokenTTL)
	assert.Equal(t, 30, o.SessionRateLimit)
	assert.True(t, o.ShowCategory)
	assert.True(t, o.ResetSelector)
	assert.ErrorIs(t, o.CheckSessionSecret(), ErrWeakSecret)
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("PORT=9000\nLOG_LEVEL=debug\nSESSION_TTL=5m\n"), 0o600))
	t.Setenv("ENV_FILE", envFile)
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("RESET_SELECTOR", "false")
	t.Setenv("TRUSTED_PROXIES", "172.18.0.0/16")

	o, err := Load("cart", "8083", []string{"-port", "9100", "-session-secret", "0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)

	assert.Equal(t, "9100", o.Port, "flag beats .env")
	assert.Equal(t, "warn", o.LogLevel, "environment beats .env")
	assert.Equal(t, 5*time.Minute, o.SessionTTL, ".env fills unset keys")
	assert.False(t, o.ResetSelector)
	require.Len(t, o.TrustedProxies, 1)
	assert.Equal(t, "172.18.0.0/16", o.TrustedProxies[0].String())
	assert.NoError(t, o.CheckSessionSecret())
}

func TestLoad_BadValues(t *testing.T) {
	for _, tc := range []struct{ key, val string }{
		{"SESSION_TTL", "soon"},
		{"SESSION_RATE_LIMIT", "many"},
		{"SHOW_CATEGORY", "maybe"},
		{"TRUSTED_PROXIES", "gateway"},
	} {
		t.Run(tc.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.val)

			_, err := Load("cart", "8083", nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.key)
		})
	}

	clearEnv(t)
	_, err := Load("cart", "8083", []string{"-no-such-flag"})
	require.Error(t, err)
}

func TestLoad_TokenOutlivesIdleTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_TTL", "2h")

	o, err := Load("cart", "8083", nil)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, o.SessionTTL)
	assert.Equal(t, 12*time.Hour, o.TokenTTL)

	_, err = Load("cart", "8083", []string{"-token-ttl", "30m"})
	require.ErrorIs(t, err, ErrTokenTTL)
}
