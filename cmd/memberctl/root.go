package main

import (
	"fmt"
	"io"

	"github.com/ironforge/gym-membership/configs"
	"github.com/ironforge/gym-membership/internal/application/cachestore"
	"github.com/ironforge/gym-membership/internal/application/services"
	"github.com/ironforge/gym-membership/internal/bootstrap"
	"github.com/ironforge/gym-membership/internal/core/ports"
	"github.com/ironforge/gym-membership/internal/infrastructure/db"
	"github.com/ironforge/gym-membership/internal/infrastructure/memory"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// app carries the dependencies a subcommand runs against.
type app struct {
	cfg           *configs.Config
	logger        *logrus.Logger
	backend       ports.Backend
	store         *cachestore.Store
	notifications *services.NotificationService
	printer       *printer
	closers       []func() error
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}

type rootOptions struct {
	output string
	demo   bool
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &rootOptions{}
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "memberctl",
		Short: "Membership notification and cache tool",
		Long: `memberctl shows the plan notifications members would see, acknowledges
them, dispatches reminder emails and maintains the expiring cache.

With --demo it runs against an in-memory backend seeded with sample members.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(opts, out, errOut)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "json", "output format: json or yaml")
	rootCmd.PersistentFlags().BoolVar(&opts.demo, "demo", false, "use an in-memory backend with sample members")

	rootCmd.AddCommand(newNotificationsCmd(a))
	rootCmd.AddCommand(newAckCmd(a))
	rootCmd.AddCommand(newCacheCmd(a))
	rootCmd.AddCommand(newRemindersCmd(a))
	return rootCmd
}

func (a *app) init(opts *rootOptions, out, errOut io.Writer) error {
	p, err := newPrinter(opts.output, out)
	if err != nil {
		return err
	}
	a.printer = p

	cfg, err := configs.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = bootstrap.NewLogger(cfg.Log, errOut)

	medium, err := bootstrap.OpenCacheMedium(cfg, a.logger)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	a.closers = append(a.closers, medium.Close)
	a.store = cachestore.New(medium.Cache, cfg.Cache.Namespace, cachestore.WithLogger(a.logger))

	if opts.demo {
		mb := memory.NewBackend()
		seedDemo(mb)
		a.backend = mb
	} else {
		database, err := db.NewDatabaseWithConfig(&cfg.Database)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, database.Close)
		a.backend = db.NewBackend(database, a.logger)
	}

	a.notifications = services.NewNotificationService(a.backend, a.store, a.notificationConfig(), a.logger)
	return nil
}

func (a *app) notificationConfig() services.NotificationConfig {
	return services.NotificationConfig{
		ExpiringWindow: a.cfg.Notifications.ExpiringWindow,
		TTL:            bootstrap.TTLs(a.cfg.Cache).Medium,
	}
}
