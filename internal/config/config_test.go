package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://localhost/agency")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 20.0, cfg.DefaultCommissionPercent)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9000"
environment: production
database_url: postgres://file/agency
default_commission_percent: 15
auth:
  token_ttl: 2h
documents:
  bucket: contracts
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("APP_PORT", "9100")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "postgres://file/agency", cfg.DatabaseURL)
	assert.Equal(t, 15.0, cfg.DefaultCommissionPercent)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "contracts", cfg.Documents.Bucket)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_Errors(t *testing.T) {
	chdir(t, t.TempDir())

	t.Run("missing database url", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		_, err := Load()
		assert.ErrorContains(t, err, "DATABASE_URL")
	})

	t.Run("bad ttl", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/agency")
		t.Setenv("JWT_TTL", "forever")
		_, err := Load()
		assert.ErrorContains(t, err, "JWT_TTL")
	})

	t.Run("bad commission", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/agency")
		t.Setenv("DEFAULT_COMMISSION_PERCENT", "twenty")
		_, err := Load()
		assert.ErrorContains(t, err, "DEFAULT_COMMISSION_PERCENT")
	})
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
