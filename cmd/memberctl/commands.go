package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ironforge/gym-membership/internal/application/services"
	"github.com/ironforge/gym-membership/internal/bootstrap"
	"github.com/ironforge/gym-membership/internal/core/domain/notification"
	"github.com/ironforge/gym-membership/internal/infrastructure/email"
	"github.com/spf13/cobra"
)

func parseMemberID(arg string) (string, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return "", fmt.Errorf("invalid member ID %q: %w", arg, err)
	}
	return id.String(), nil
}

func newNotificationsCmd(a *app) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "notifications [member-id]",
		Short: "Show plan notifications for a member, or every notification of one kind",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 1 {
				id, err := parseMemberID(args[0])
				if err != nil {
					return err
				}
				return a.printer.print(a.notifications.UserNotifications(ctx, id))
			}
			switch notification.Kind(kind) {
			case notification.KindExpiringSoon:
				return a.printer.print(a.notifications.ExpiringPlansNotifications(ctx))
			case notification.KindExpired:
				return a.printer.print(a.notifications.ExpiredPlansNotifications(ctx))
			case notification.KindPaymentDue:
				return a.printer.print(a.notifications.PaymentDueNotifications(ctx))
			default:
				return errors.New("give a member ID or --kind expiring_soon|expired|payment_due")
			}
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "list every notification of this kind")
	return cmd
}

func newAckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ack <member-id>",
		Short: "Mark a member's expiring-plan notification as sent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseMemberID(args[0])
			if err != nil {
				return err
			}
			a.notifications.Acknowledge(cmd.Context(), id)
			fmt.Fprintf(cmd.OutOrStdout(), "acknowledged %s\n", id)
			return nil
		},
	}
}

type cacheKeyRow struct {
	Key   string `json:"key" yaml:"key"`
	Age   string `json:"age" yaml:"age"`
	Valid bool   `json:"valid" yaml:"valid"`
}

func newCacheCmd(a *app) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the expiring cache",
	}

	keysCmd := &cobra.Command{
		Use:   "keys",
		Short: "List cached keys with their age",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rows := make([]cacheKeyRow, 0)
			for _, k := range a.store.Keys(ctx) {
				age, ok := a.store.Age(ctx, k)
				if !ok {
					continue
				}
				rows = append(rows, cacheKeyRow{Key: k, Age: age.Round(1e9).String(), Valid: a.store.Has(ctx, k)})
			}
			return a.printer.print(rows)
		},
	}

	var pattern string
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the whole namespace, or keys starting with --pattern",
		RunE: func(cmd *cobra.Command, args []string) error {
			if pattern == "" {
				a.store.ClearAll(cmd.Context())
			} else {
				a.store.ClearPattern(cmd.Context(), pattern)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cache cleared")
			return nil
		},
	}
	clearCmd.Flags().StringVar(&pattern, "pattern", "", "logical key prefix, e.g. notifications_ or profile*")

	ttlsCmd := &cobra.Command{
		Use:   "ttls",
		Short: "Show the configured TTL classes",
		RunE: func(cmd *cobra.Command, args []string) error {
			t := bootstrap.TTLs(a.cfg.Cache)
			return a.printer.print(map[string]string{
				"short":     t.Short.String(),
				"medium":    t.Medium.String(),
				"long":      t.Long.String(),
				"very_long": t.VeryLong.String(),
			})
		},
	}

	cacheCmd.AddCommand(keysCmd, clearCmd, ttlsCmd)
	return cacheCmd
}

func newRemindersCmd(a *app) *cobra.Command {
	remindersCmd := &cobra.Command{
		Use:   "reminders",
		Short: "Reminder email dispatch",
	}
	sendCmd := &cobra.Command{
		Use:   "send",
		Short: "Email every pending expiring-plan reminder and acknowledge it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Email.SendGridAPIKey == "" {
				return errors.New("SENDGRID_API_KEY is not set")
			}
			mailer, err := email.NewEmailService(&email.EmailConfig{
				SendGridAPIKey: a.cfg.Email.SendGridAPIKey,
				FromEmail:      a.cfg.Email.FromEmail,
				FromName:       a.cfg.Email.FromName,
				CompanyName:    a.cfg.Email.CompanyName,
				BaseURL:        a.cfg.Email.BaseURL,
			}, a.logger)
			if err != nil {
				return err
			}
			reminders := services.NewReminderService(a.backend, a.notifications, mailer, a.notificationConfig(), a.logger)
			sent := reminders.DispatchExpiringReminders(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "sent %d reminder(s)\n", sent)
			return nil
		},
	}
	remindersCmd.AddCommand(sendCmd)
	return remindersCmd
}
