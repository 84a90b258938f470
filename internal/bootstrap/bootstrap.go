// Package bootstrap builds the shared pieces both binaries wire at startup.
package bootstrap

import (
	"fmt"
	"io"

	"github.com/ironforge/gym-membership/configs"
	"github.com/ironforge/gym-membership/internal/application/cachestore"
	"github.com/ironforge/gym-membership/internal/core/ports"
	"github.com/ironforge/gym-membership/internal/infrastructure/health"
	"github.com/ironforge/gym-membership/internal/infrastructure/memory"
	"github.com/ironforge/gym-membership/internal/infrastructure/redis"
	"github.com/ironforge/gym-membership/internal/infrastructure/sqlite"
	"github.com/sirupsen/logrus"
)

// NewLogger builds a logger from the log section of the configuration.
func NewLogger(cfg configs.LogConfig, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}
	return logger
}

// CacheMedium is the physical store selected by CACHE_DRIVER together with
// its health probe and cleanup.
type CacheMedium struct {
	Cache   ports.Cache
	Checker ports.HealthChecker
	Close   func() error
}

// OpenCacheMedium opens the configured medium.
func OpenCacheMedium(cfg *configs.Config, logger *logrus.Logger) (*CacheMedium, error) {
	switch cfg.Cache.Driver {
	case "memory":
		return &CacheMedium{Cache: memory.NewCache(), Close: func() error { return nil }}, nil
	case "redis":
		client, err := redis.NewRedisClient(&cfg.Redis)
		if err != nil {
			return nil, err
		}
		logger.Info("Connected to Redis successfully")
		return &CacheMedium{
			Cache:   redis.NewRedisCache(client, "appcache"),
			Checker: health.NewRedisHealthChecker(client),
			Close:   client.Close,
		}, nil
	case "sqlite":
		c, err := sqlite.Open(cfg.Cache.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.WithField("path", cfg.Cache.SQLitePath).Info("Opened sqlite cache")
		return &CacheMedium{
			Cache:   c,
			Checker: health.NewPingHealthChecker("cache", c),
			Close:   c.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Cache.Driver)
	}
}

// TTLs converts the configured lifetimes into cache TTL classes.
func TTLs(cfg configs.CacheConfig) cachestore.TTLClasses {
	return cachestore.TTLClasses{
		Short:    cfg.TTLShort,
		Medium:   cfg.TTLMedium,
		Long:     cfg.TTLLong,
		VeryLong: cfg.TTLVeryLong,
	}
}
