package httpserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
)

type healthResponse struct {
	Status       string            `json:"status"`
	Timestamp    string            `json:"timestamp"`
	Version      string            `json:"version"`
	Service      string            `json:"service"`
	Dependencies map[string]string `json:"dependencies"`
}

// healthCheck probes every dependency in parallel. Any failure reports the
// service as degraded with 503.
func (s *Server) healthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{
		Status:       "healthy",
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Version:      "1.0.0",
		Service:      "gym-membership",
		Dependencies: make(map[string]string),
	}
	var mu sync.Mutex
	var g errgroup.Group
	for _, hc := range s.healthCheckers {
		if hc == nil {
			continue
		}
		g.Go(func() error {
			state := "healthy"
			if err := hc.Check(ctx); err != nil {
				state = "unhealthy"
				if s.logger != nil {
					s.logger.WithField("dependency", hc.Name()).WithError(err).Warn("health check failed")
				}
			}
			mu.Lock()
			resp.Dependencies[hc.Name()] = state
			if state != "healthy" {
				resp.Status = "degraded"
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	code := http.StatusOK
	if resp.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, resp)
}
