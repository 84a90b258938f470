package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/ironforge/gym-membership/configs"
	"github.com/ironforge/gym-membership/internal/application/cachestore"
	"github.com/ironforge/gym-membership/internal/application/services"
	"github.com/ironforge/gym-membership/internal/bootstrap"
	"github.com/ironforge/gym-membership/internal/core/ports"
	"github.com/ironforge/gym-membership/internal/infrastructure/db"
	"github.com/ironforge/gym-membership/internal/infrastructure/email"
	"github.com/ironforge/gym-membership/internal/infrastructure/health"
	"github.com/ironforge/gym-membership/internal/infrastructure/httpserver"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger := bootstrap.NewLogger(cfg.Log, os.Stdout)
	logger.Info("Starting gym membership service...")

	// Initialize database (apply pool settings from config)
	database, err := db.NewDatabaseWithConfig(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	logger.Info("Connected to database successfully")

	// Run migrations
	if version, err := database.Migrate(cfg.Database.MigrationsPath); err != nil {
		logger.Warn("Failed to run migrations:", err)
	} else {
		logger.WithField("version", version).Info("Database schema up to date")
	}

	medium, err := bootstrap.OpenCacheMedium(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open cache:", err)
	}
	defer medium.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// One store per process, shared by every consumer
	store := cachestore.New(medium.Cache, cfg.Cache.Namespace,
		cachestore.WithLogger(logger),
		cachestore.WithMetrics(cachestore.NewMetrics(registry)),
	)

	backend := db.NewBackend(database, logger)
	notifyCfg := services.NotificationConfig{
		ExpiringWindow: cfg.Notifications.ExpiringWindow,
		TTL:            bootstrap.TTLs(cfg.Cache).Medium,
	}
	notificationService := services.NewNotificationService(backend, store, notifyCfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Notifications.ReminderInterval > 0 {
		if cfg.Email.SendGridAPIKey == "" {
			logger.Warn("Reminder interval set but SENDGRID_API_KEY is empty; reminders disabled")
		} else {
			mailer, err := email.NewEmailService(&email.EmailConfig{
				SendGridAPIKey: cfg.Email.SendGridAPIKey,
				FromEmail:      cfg.Email.FromEmail,
				FromName:       cfg.Email.FromName,
				CompanyName:    cfg.Email.CompanyName,
				BaseURL:        cfg.Email.BaseURL,
			}, logger)
			if err != nil {
				logger.Fatal("Failed to initialize email service:", err)
			}
			reminders := services.NewReminderService(backend, notificationService, mailer, notifyCfg, logger)
			go runReminders(ctx, reminders, cfg.Notifications.ReminderInterval)
		}
	}

	hcSlice := []ports.HealthChecker{health.NewPingHealthChecker("database", database)}
	if medium.Checker != nil {
		hcSlice = append(hcSlice, medium.Checker)
	}

	serverConfig := &httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		TLSCertFile:  cfg.Server.TLSCertFile,
		TLSKeyFile:   cfg.Server.TLSKeyFile,
	}

	server := httpserver.NewServer(serverConfig, logger, httpserver.ServerDeps{
		NotificationService: notificationService,
		Cache:               store,
		HealthCheckers:      hcSlice,
		Registry:            registry,
	})

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	logger.Infof("Server started on %s:%s", cfg.Server.Host, cfg.Server.Port)

	<-ctx.Done()

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}

func runReminders(ctx context.Context, reminders ports.ReminderService, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reminders.DispatchExpiringReminders(ctx)
		}
	}
}
