package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/mailpanel/internal/passwd"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DATABASE_URL", "HTTP_LISTEN_ADDR", "LOG_LEVEL", "LOG_FORMAT", "SERVICE_NAME", "PASSWORD_SCHEME",
		"DNS_NAMESERVERS", "DNS_TIMEOUT", "DKIM_REFRESH_CONCURRENCY", "DKIM_LOOKUPS_PER_SECOND",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "", cfg.DatabaseURL)
	assert.Equal(t, ":8090", cfg.HTTPListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "mailpanel-api", cfg.ServiceName)
	assert.Equal(t, "SSHA512", cfg.PasswordScheme)
	assert.Empty(t, cfg.DNSNameservers)
	assert.Equal(t, 5*time.Second, cfg.DNSTimeout)
	assert.Equal(t, 4, cfg.DKIMRefreshConcurrency)
	assert.Equal(t, 10.0, cfg.DKIMLookupsPerSecond)
}

func TestLoad_AllEnvVars(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://mail:5432/mailpanel")
	t.Setenv("HTTP_LISTEN_ADDR", ":7071")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("SERVICE_NAME", "mailpanel-test")
	t.Setenv("PASSWORD_SCHEME", "BLF-CRYPT")
	t.Setenv("DNS_NAMESERVERS", "10.0.0.1:53, 10.0.0.2:53")
	t.Setenv("DNS_TIMEOUT", "2s")
	t.Setenv("DKIM_REFRESH_CONCURRENCY", "8")
	t.Setenv("DKIM_LOOKUPS_PER_SECOND", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://mail:5432/mailpanel", cfg.DatabaseURL)
	assert.Equal(t, ":7071", cfg.HTTPListenAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, "mailpanel-test", cfg.ServiceName)
	assert.Equal(t, "BLF-CRYPT", cfg.PasswordScheme)
	assert.Equal(t, []string{"10.0.0.1:53", "10.0.0.2:53"}, cfg.DNSNameservers)
	assert.Equal(t, 2*time.Second, cfg.DNSTimeout)
	assert.Equal(t, 8, cfg.DKIMRefreshConcurrency)
	assert.Equal(t, 2.5, cfg.DKIMLookupsPerSecond)
}

func TestLoad_InvalidDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("DNS_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DNS_TIMEOUT")
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("PASSWORD_SCHEME=SHA512-CRYPT\nLOG_LEVEL=warn\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "SHA512-CRYPT", cfg.PasswordScheme)
	assert.Equal(t, "error", cfg.LogLevel, "existing environment wins over the file")
}

func TestLoad_MalformedEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "broken.env")
	require.NoError(t, os.WriteFile(path, []byte("LOG_LEVEL=warn\nBAD-KEY=1\n"), 0o600))
	t.Setenv("ENV_FILE", path)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load "+path)
}

func TestLoad_MissingEnvFile(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	assert.NoError(t, err)
}

func TestValidate_API(t *testing.T) {
	cfg := &Config{DatabaseURL: "postgres://x", PasswordScheme: "SSHA256", DNSTimeout: time.Second, DKIMRefreshConcurrency: 1}
	require.NoError(t, cfg.Validate(RoleAPI))
	assert.Equal(t, passwd.SSHA256, cfg.Scheme())
}

func TestValidate_MissingDatabase(t *testing.T) {
	cfg := &Config{PasswordScheme: "SSHA512", DNSTimeout: time.Second, DKIMRefreshConcurrency: 1}
	err := cfg.Validate(RoleAPI)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")

	assert.NoError(t, cfg.Validate(RoleMailctl))
}

func TestValidate_UnknownScheme(t *testing.T) {
	cfg := &Config{DatabaseURL: "postgres://x", PasswordScheme: "ssha512", DNSTimeout: time.Second, DKIMRefreshConcurrency: 1}
	err := cfg.Validate(RoleAPI)
	require.Error(t, err)
	assert.ErrorIs(t, err, passwd.ErrUnknownScheme)
}

func TestValidate_UnknownRole(t *testing.T) {
	cfg := &Config{PasswordScheme: "SSHA512", DNSTimeout: time.Second}
	assert.Error(t, cfg.Validate("worker"))
}

func TestValidate_LogFormat(t *testing.T) {
	cfg := &Config{PasswordScheme: "SSHA512", DNSTimeout: time.Second, LogFormat: "xml"}
	err := cfg.Validate(RoleMailctl)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_FORMAT")

	cfg.LogFormat = "console"
	assert.NoError(t, cfg.Validate(RoleMailctl))
}
