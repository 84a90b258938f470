// Package health adapts service dependencies to ports.HealthChecker.
package health

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/ironforge/gym-membership/internal/core/ports"
)

// Pinger is any dependency that can report reachability, such as the
// postgres pool or the sqlite cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

type pingHealthChecker struct {
	name string
	p    Pinger
}

func (c *pingHealthChecker) Name() string                    { return c.name }
func (c *pingHealthChecker) Check(ctx context.Context) error { return c.p.Ping(ctx) }

// NewPingHealthChecker reports p under name.
func NewPingHealthChecker(name string, p Pinger) ports.HealthChecker {
	return &pingHealthChecker{name: name, p: p}
}

type redisHealthChecker struct{ client redis.UniversalClient }

func (r *redisHealthChecker) Name() string                    { return "redis" }
func (r *redisHealthChecker) Check(ctx context.Context) error { return r.client.Ping(ctx).Err() }

// NewRedisHealthChecker creates a health checker for the Redis cache medium.
func NewRedisHealthChecker(client redis.UniversalClient) ports.HealthChecker {
	return &redisHealthChecker{client: client}
}
