package configs_test

import (
	"testing"
	"time"

	"github.com/ironforge/gym-membership/configs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CACHE_DRIVER", "")
	t.Setenv("NOTIFY_EXPIRING_WINDOW", "")
	cfg, err := configs.Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, "gymapp_", cfg.Cache.Namespace)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTLMedium)
	assert.Equal(t, 5*24*time.Hour, cfg.Notifications.ExpiringWindow)
	assert.Contains(t, cfg.Database.DSN, "dbname=")
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("CACHE_DRIVER", "sqlite")
	t.Setenv("CACHE_SQLITE_PATH", "/tmp/cache.db")
	t.Setenv("CACHE_TTL_LONG", "20m")
	t.Setenv("NOTIFY_EXPIRING_WINDOW", "72h")
	t.Setenv("REDIS_POOL_SIZE", "not-a-number")

	cfg, err := configs.Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Cache.Driver)
	assert.Equal(t, 20*time.Minute, cfg.Cache.TTLLong)
	assert.Equal(t, 72*time.Hour, cfg.Notifications.ExpiringWindow)
	assert.Equal(t, 10, cfg.Redis.PoolSize, "unparsable values fall back to the default")
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"unknown driver":        {"CACHE_DRIVER", "memcached"},
		"sqlite without path":   {"CACHE_DRIVER", "sqlite"},
		"bad log format":        {"LOG_FORMAT", "xml"},
		"bad sender address":    {"FROM_EMAIL", "not-an-email"},
		"negative reminder run": {"NOTIFY_REMINDER_INTERVAL", "-1m"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("CACHE_SQLITE_PATH", "")
			t.Setenv(kv[0], kv[1])
			_, err := configs.Load()
			assert.Error(t, err)
		})
	}
}
