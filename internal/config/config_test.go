package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("PORT", "")
	t.Setenv("DB_TYPE", "")
	t.Setenv("HISTORY_BACKEND", "")
	t.Setenv("PAGESTORE_BACKEND", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "gorm", cfg.History.Backend)
	assert.Equal(t, "disk", cfg.Pages.Backend)
	assert.False(t, cfg.Pages.UseSSL)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", ":9000")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("HISTORY_BACKEND", "Redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("BARCODE_SERVICE_URL", "http://barcodes.internal/api/")
	t.Setenv("BARCODE_TIMEOUT", "2s")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("RATE_LIMIT_BURST", "not-a-number")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Port)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, "redis", cfg.History.Backend)
	assert.Equal(t, 3, cfg.History.RedisDB)
	assert.Equal(t, "http://barcodes.internal/api", cfg.Render.BarcodeServiceURL)
	assert.Equal(t, 2*time.Second, cfg.Render.BarcodeTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 20, cfg.RateLimit.Burst)
}

func TestFromEnvRejectsUnknownBackends(t *testing.T) {
	tests := map[string]string{
		"DB_TYPE":           "oracle",
		"HISTORY_BACKEND":   "memcached",
		"PAGESTORE_BACKEND": "gcs",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := FromEnv()
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoadDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(file, []byte("JWT_SECRET=from-file\nREDIS_ADDR=redis:6379\n"), 0o600))

	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("REDIS_ADDR", "")
	require.NoError(t, os.Unsetenv("REDIS_ADDR"))

	cfg, err := Load(file, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, "redis:6379", cfg.History.RedisAddr)
}
