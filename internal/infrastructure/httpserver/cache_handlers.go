package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type cacheKeyInfo struct {
	Key        string  `json:"key"`
	AgeSeconds float64 `json:"age_seconds"`
	Valid      bool    `json:"valid"`
}

func (s *Server) listCacheKeys(c echo.Context) error {
	if s.cache == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "cache not configured")
	}
	ctx := c.Request().Context()
	keys := s.cache.Keys(ctx)
	out := make([]cacheKeyInfo, 0, len(keys))
	for _, k := range keys {
		age, ok := s.cache.Age(ctx, k)
		if !ok {
			continue
		}
		out = append(out, cacheKeyInfo{Key: k, AgeSeconds: age.Seconds(), Valid: s.cache.Has(ctx, k)})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"keys": out, "count": len(out)})
}

// clearCache drops keys matching ?pattern=, or the whole namespace without one.
func (s *Server) clearCache(c echo.Context) error {
	if s.cache == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "cache not configured")
	}
	ctx := c.Request().Context()
	if pattern := c.QueryParam("pattern"); pattern != "" {
		s.cache.ClearPattern(ctx, pattern)
		if s.logger != nil {
			s.logger.WithField("pattern", pattern).Info("cache pattern cleared")
		}
	} else {
		s.cache.ClearAll(ctx)
		if s.logger != nil {
			s.logger.Info("cache cleared")
		}
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) removeCacheKey(c echo.Context) error {
	if s.cache == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "cache not configured")
	}
	s.cache.Remove(c.Request().Context(), c.Param("key"))
	return c.NoContent(http.StatusNoContent)
}
