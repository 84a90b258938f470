package httpserver

import (
	"time"

	"github.com/ironforge/gym-membership/internal/application/cachestore"
	"github.com/ironforge/gym-membership/internal/core/ports"
	customMiddleware "github.com/ironforge/gym-membership/internal/infrastructure/httpserver/middleware"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	TLSCertFile  string
	TLSKeyFile   string
}

type ServerDeps struct {
	NotificationService ports.NotificationService
	// Cache backs the admin endpoints; nil disables them.
	Cache          *cachestore.Store
	HealthCheckers []ports.HealthChecker
	// Registry receives the HTTP metrics and is served on /metrics. A private
	// registry is created when nil.
	Registry *prometheus.Registry
}

type Server struct {
	echo            *echo.Echo
	config          *ServerConfig
	logger          *logrus.Logger
	notificationSvc ports.NotificationService
	cache           *cachestore.Store
	middleware      *customMiddleware.MiddlewareCollection
	healthCheckers  []ports.HealthChecker
	gatherer        prometheus.Gatherer
}

func NewServer(serverConfig *ServerConfig, logger *logrus.Logger, deps ServerDeps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	requestsTotal, requestDuration := newHTTPMetrics(reg)

	server := &Server{
		echo:            e,
		config:          serverConfig,
		logger:          logger,
		notificationSvc: deps.NotificationService,
		cache:           deps.Cache,
		healthCheckers:  deps.HealthCheckers,
		gatherer:        reg,
		middleware:      customMiddleware.NewMiddlewareCollection(logger, requestsTotal, requestDuration),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}
