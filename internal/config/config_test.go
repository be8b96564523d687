package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", secret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddress())
	assert.Equal(t, "sqlite", cfg.StoreDriver)
	assert.Equal(t, "casino.db", cfg.SQLitePath)
	assert.Equal(t, 3*time.Second, cfg.OddsDriftInterval)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, int64(1000), cfg.WelcomeBalance)
	assert.Equal(t, 100*time.Millisecond, cfg.SlotsFrameInterval)
	assert.Equal(t, 3*time.Second, cfg.DepositConfirmInterval)
	assert.Equal(t, 10*time.Second, cfg.SportsResolveDelay)
	assert.Equal(t, 15*time.Minute, cfg.BlackjackIdleTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins())
	assert.True(t, cfg.Development())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", secret)
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORE_DRIVER", "Redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.io, https://b.io,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddress())
	assert.Equal(t, "redis", cfg.StoreDriver)
	assert.Equal(t, 90*time.Minute, cfg.SessionTTL)
	assert.Equal(t, []string{"https://a.io", "https://b.io"}, cfg.CORSOrigins())
	assert.False(t, cfg.Development())
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing secret", env: map[string]string{}},
		{name: "short secret", env: map[string]string{"JWT_SECRET": "short"}},
		{name: "unknown driver", env: map[string]string{"JWT_SECRET": secret, "STORE_DRIVER": "mongo"}},
		{name: "postgres without url", env: map[string]string{"JWT_SECRET": secret, "STORE_DRIVER": "postgres"}},
		{name: "redis without addr", env: map[string]string{"JWT_SECRET": secret, "STORE_DRIVER": "redis"}},
		{name: "bad env", env: map[string]string{"JWT_SECRET": secret, "APP_ENV": "qa"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "casino.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jwt_secret: "+secret+"\nwelcome_balance: 500\nodds_drift_interval: 2s\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("WELCOME_BALANCE", "750")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, secret, cfg.JWTSecret)
	assert.Equal(t, int64(750), cfg.WelcomeBalance)
	assert.Equal(t, 2*time.Second, cfg.OddsDriftInterval)
}

func TestWatchReloadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "casino.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jwt_secret: "+secret+"\nlog_level: info\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	changed := make(chan Config, 16)
	ok, err := Watch(func(c Config) {
		select {
		case changed <- c:
		default:
		}
	}, func(error) {})
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, os.WriteFile(path, []byte("jwt_secret: "+secret+"\nlog_level: debug\n"), 0o600))

	timeout := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-changed:
			if cfg.LogLevel == "debug" {
				return
			}
		case <-timeout:
			t.Fatal("config change not observed")
		}
	}
}

func TestWatchWithoutFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	ok, err := Watch(func(Config) {}, func(error) {})
	require.NoError(t, err)
	assert.False(t, ok)
}
