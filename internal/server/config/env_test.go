package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	t.Setenv(EnvPrefix+"DATABASE_DSN", "file:dev.db")
	t.Setenv(EnvPrefix+"ACCESS_TOKEN_TTL", "90s")
	t.Setenv(EnvPrefix+"RECONCILE_INTERVAL", "0s")
	t.Setenv(EnvPrefix+"CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv(EnvPrefix+"RATE_LIMIT_RPS", "2.5")
	t.Setenv(EnvPrefix+"RATE_LIMIT_BURST", "nope")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, "file:dev.db", c.DatabaseDSN)
	assert.Equal(t, 90*time.Second, c.AccessTokenValidityDuration)
	assert.Equal(t, time.Duration(0), c.ReconcileInterval)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.CORSAllowedOrigins)
	assert.Equal(t, 2.5, c.RateLimitRPS)
	assert.Equal(t, 40, c.RateLimitBurst, "unparsable value keeps default")
}

func TestParseEnv_DotenvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("BOOKLEDGER_ADMIN_EMAIL=root@example.com\n"), 0o600))

	orig := dotenvFiles
	dotenvFiles = []string{path}
	t.Cleanup(func() {
		dotenvFiles = orig
		_ = os.Unsetenv(EnvPrefix + "ADMIN_EMAIL")
	})

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, "root@example.com", c.AdminEmail)
}

func TestParseEnv_ProcessEnvWinsOverDotenv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("BOOKLEDGER_ADMIN_NAME=FromFile\n"), 0o600))

	orig := dotenvFiles
	dotenvFiles = []string{path}
	t.Cleanup(func() { dotenvFiles = orig })
	t.Setenv(EnvPrefix+"ADMIN_NAME", "FromEnv")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, "FromEnv", c.AdminName)
}

func TestLoadEnvConfig(t *testing.T) {
	t.Setenv(EnvPrefix+"DB_DRIVER", "sqlite")

	c := LoadEnvConfig()
	assert.Equal(t, "sqlite", c.DatabaseDriver)
	assert.Equal(t, ":8080", c.EndpointAddrHTTP)
}
