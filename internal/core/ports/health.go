package ports

import "context"

// HealthChecker probes one dependency for the /health endpoint. Check returns
// nil while the dependency is usable.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}
