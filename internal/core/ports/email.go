package ports

import (
	"context"

	"github.com/ironforge/gym-membership/internal/core/domain/notification"
)

// Mailer delivers a notification to a member's inbox.
type Mailer interface {
	SendPlanReminder(ctx context.Context, toEmail, toName string, n notification.PlanNotification) error
}
