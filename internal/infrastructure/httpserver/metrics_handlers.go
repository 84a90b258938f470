package httpserver

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// newHTTPMetrics creates the request metrics and registers them with reg.
func newHTTPMetrics(reg prometheus.Registerer) (*prometheus.CounterVec, *prometheus.HistogramVec) {
	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "The total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "The HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
	reg.MustRegister(requestsTotal, requestDuration)
	return requestsTotal, requestDuration
}

// LogMetricsInitialization logs the exported metric families
func (s *Server) LogMetricsInitialization() {
	if s.logger == nil {
		return
	}
	s.logger.WithFields(map[string]interface{}{
		"http_requests_total":   "Counter for HTTP requests by method, endpoint, status",
		"http_request_duration": "Histogram for HTTP request duration by method, endpoint",
		"cache_hits_total":      "Counter for cache reads served from a valid entry",
		"cache_errors_total":    "Counter for swallowed cache failures by operation",
		"metrics_endpoint":      "/metrics",
	}).Debug("Available Prometheus metrics")
}

func (s *Server) metricsEndpoint(c echo.Context) error {
	promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}).ServeHTTP(c.Response(), c.Request())
	return nil
}
