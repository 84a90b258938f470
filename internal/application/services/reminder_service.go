package services

import (
	"context"
	"time"

	"github.com/ironforge/gym-membership/internal/core/domain/account"
	"github.com/ironforge/gym-membership/internal/core/ports"
	"github.com/sirupsen/logrus"
)

// ReminderService emails expiring-plan reminders to members who have not been
// notified yet, then acknowledges them through the notification service.
type ReminderService struct {
	backend       ports.Backend
	notifications ports.NotificationService
	mailer        ports.Mailer
	window        time.Duration
	now           func() time.Time
	logger        *logrus.Logger
}

func NewReminderService(backend ports.Backend, notifications ports.NotificationService, mailer ports.Mailer, cfg NotificationConfig, logger *logrus.Logger) *ReminderService {
	if cfg.ExpiringWindow <= 0 {
		cfg.ExpiringWindow = DefaultExpiringWindow
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &ReminderService{
		backend:       backend,
		notifications: notifications,
		mailer:        mailer,
		window:        cfg.ExpiringWindow,
		now:           cfg.Now,
		logger:        logger,
	}
}

// DispatchExpiringReminders mails every pending expiring-plan reminder and
// returns how many were delivered. A failed delivery leaves the account
// pending for the next run.
func (r *ReminderService) DispatchExpiringReminders(ctx context.Context) int {
	now := r.now()
	filters := append(expiringFilters(now, r.window), ports.Eq(account.ColNotificationSent, false))
	rows, err := r.backend.QueryRows(ctx, account.Table, filters, &ports.Ordering{Column: account.ColPlanExpiryDate}, 0)
	if err != nil {
		if r.logger != nil {
			r.logger.WithError(err).Error("failed to query pending reminders")
		}
		return 0
	}

	sent := 0
	for _, row := range rows {
		a, err := account.FromRecord(row)
		if err != nil || a.PlanExpiryDate == nil {
			continue
		}
		if a.Email == "" {
			if r.logger != nil {
				r.logger.WithField("user_id", a.ID).Warn("member has no email, skipping reminder")
			}
			continue
		}
		n := expiringNotification(a, now)
		if err := r.mailer.SendPlanReminder(ctx, a.Email, a.FullName, n); err != nil {
			if r.logger != nil {
				r.logger.WithFields(logrus.Fields{"user_id": a.ID, "email": a.Email}).WithError(err).Error("failed to send plan reminder")
			}
			continue
		}
		r.notifications.Acknowledge(ctx, a.ID)
		sent++
	}
	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"pending": len(rows), "sent": sent}).Info("expiring plan reminders dispatched")
	}
	return sent
}

var _ ports.ReminderService = (*ReminderService)(nil)
