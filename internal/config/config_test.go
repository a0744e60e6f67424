package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_DB_CONN_URL", "mongodb://localhost:27017")
	t.Setenv("APP_DB_NAME", "treats")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, "treats", cfg.MongoDB.Database)
	assert.Equal(t, 10*time.Second, cfg.MongoDB.ConnectTimeout)
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 24*time.Hour, cfg.JWT.ExpiresIn)
	assert.Empty(t, cfg.JWT.Secret)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 10*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, "users.created", cfg.NATS.Subject)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("APP_JWT_SECRET", "s3cret")
	t.Setenv("APP_JWT_EXPIRES_IN", "1h")
	t.Setenv("APP_REDIS_ADDR", "localhost:6379")
	t.Setenv("APP_REDIS_DB", "3")
	t.Setenv("APP_CACHE_TTL", "30s")
	t.Setenv("APP_LOG_LEVEL", "DEBUG")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, time.Hour, cfg.JWT.ExpiresIn)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 30*time.Second, cfg.Redis.TTL)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadFromConfigFile(t *testing.T) {
	t.Setenv("APP_DB_CONN_URL", "")
	t.Setenv("APP_DB_NAME", "")
	t.Setenv("APP_PORT", "")
	dir := t.TempDir()
	content := "db_conn_url: mongodb://file:27017\ndb_name: fromfile\nport: \"7000\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "mongodb://file:27017", cfg.MongoDB.URI)
	assert.Equal(t, "fromfile", cfg.MongoDB.Database)
	assert.Equal(t, "7000", cfg.Server.Port)
}

func TestLoadMissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		missing string
	}{
		{name: "no connection url", env: map[string]string{"APP_DB_NAME": "treats"}, missing: "APP_DB_CONN_URL"},
		{name: "no database name", env: map[string]string{"APP_DB_CONN_URL": "mongodb://localhost"}, missing: "APP_DB_NAME"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_DB_CONN_URL", "")
			t.Setenv("APP_DB_NAME", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load(t.TempDir())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingConfig))
			assert.Contains(t, err.Error(), tt.missing)
		})
	}
}
