package ports

import (
	"context"

	"github.com/ironforge/gym-membership/internal/core/domain/notification"
)

// NotificationService derives plan alerts from member accounts.
// None of its methods surface backend failures: a failed fetch yields an empty list.
type NotificationService interface {
	ExpiringPlansNotifications(ctx context.Context) []notification.PlanNotification
	ExpiredPlansNotifications(ctx context.Context) []notification.PlanNotification
	PaymentDueNotifications(ctx context.Context) []notification.PlanNotification
	UserNotifications(ctx context.Context, userID string) []notification.PlanNotification
	Acknowledge(ctx context.Context, userID string)
	InvalidateAll(ctx context.Context)
}

// ReminderService mails expiring-plan reminders that have not been sent yet.
type ReminderService interface {
	DispatchExpiringReminders(ctx context.Context) int
}
