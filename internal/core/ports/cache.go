package ports

import (
	"context"
	"time"
)

// Cache defines the physical key-value medium behind the expiring cache store.
// Implementations should degrade gracefully (returning an error without crashing callers)
// so that application logic can fall back to the backend.
type Cache interface {
	// Get returns the raw bytes for key. ok=false if not found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value for key with TTL (0 or negative means no expiration if supported).
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes the key; absence is not an error.
	Delete(ctx context.Context, key string) error
	// Keys lists every stored key starting with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
