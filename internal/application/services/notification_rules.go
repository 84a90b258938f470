package services

import (
	"fmt"
	"time"

	"github.com/ironforge/gym-membership/internal/core/domain/account"
	"github.com/ironforge/gym-membership/internal/core/domain/notification"
	"github.com/ironforge/gym-membership/internal/core/ports"
	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// expiringFilters selects approved, paid accounts whose plan ends in (now, now+window].
func expiringFilters(now time.Time, window time.Duration) []ports.Filter {
	return []ports.Filter{
		ports.Eq(account.ColApprovalStatus, string(account.ApprovalApproved)),
		ports.Eq(account.ColPaymentStatus, string(account.PaymentPaid)),
		ports.Gt(account.ColPlanExpiryDate, now),
		ports.Lte(account.ColPlanExpiryDate, now.Add(window)),
	}
}

// expiredFilters selects approved accounts explicitly marked expired whose
// expiry date has passed.
func expiredFilters(now time.Time) []ports.Filter {
	return []ports.Filter{
		ports.Eq(account.ColApprovalStatus, string(account.ApprovalApproved)),
		ports.Eq(account.ColPlanStatus, string(account.PlanExpired)),
		ports.Lt(account.ColPlanExpiryDate, now),
	}
}

// paymentDueFilters selects approved accounts with a positive balance due by now.
func paymentDueFilters(now time.Time) []ports.Filter {
	return []ports.Filter{
		ports.Eq(account.ColApprovalStatus, string(account.ApprovalApproved)),
		ports.Lte(account.ColPaymentDueDate, now),
		ports.Gt(account.ColDueAmount, decimal.Zero),
	}
}

// daysUntil rounds the time remaining until t up to whole days. Callers only
// pass future instants, so the result is at least 1.
func daysUntil(now, t time.Time) int {
	d := t.Sub(now)
	days := int(d / day)
	if d%day != 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

func expiringNotification(a account.Account, now time.Time) notification.PlanNotification {
	daysLeft := daysUntil(now, *a.PlanExpiryDate)
	return notification.PlanNotification{
		ID:         notification.NotificationID(notification.KindExpiringSoon, a.ID),
		UserID:     a.ID,
		Kind:       notification.KindExpiringSoon,
		DaysLeft:   &daysLeft,
		ExpiryDate: a.PlanExpiryDate,
		Title:      "Membership Expiring Soon",
		Message:    fmt.Sprintf("Your membership plan expires in %s. Renew now to keep your access.", pluralDays(daysLeft)),
		ActionURL:  notification.ActionRenew,
		CreatedAt:  now,
	}
}

func expiredNotification(a account.Account, now time.Time) notification.PlanNotification {
	msg := "Your membership plan has expired. Renew to regain access."
	if a.PlanExpiryDate != nil {
		msg = fmt.Sprintf("Your membership plan expired on %s. Renew to regain access.", a.PlanExpiryDate.Format("Jan 2, 2006"))
	}
	if a.DueAmount != nil && a.DueAmount.IsPositive() {
		msg += fmt.Sprintf(" Outstanding balance: %s.", a.DueAmount.StringFixed(2))
	}
	return notification.PlanNotification{
		ID:         notification.NotificationID(notification.KindExpired, a.ID),
		UserID:     a.ID,
		Kind:       notification.KindExpired,
		ExpiryDate: a.PlanExpiryDate,
		DueAmount:  a.DueAmount,
		Title:      "Membership Expired",
		Message:    msg,
		ActionURL:  notification.ActionRenew,
		CreatedAt:  now,
	}
}

func paymentDueNotification(a account.Account, now time.Time) notification.PlanNotification {
	amount := decimal.Zero
	if a.DueAmount != nil {
		amount = *a.DueAmount
	}
	return notification.PlanNotification{
		ID:         notification.NotificationID(notification.KindPaymentDue, a.ID),
		UserID:     a.ID,
		Kind:       notification.KindPaymentDue,
		ExpiryDate: a.PlanExpiryDate,
		DueAmount:  a.DueAmount,
		Title:      "Payment Due",
		Message:    fmt.Sprintf("You have an outstanding payment of %s. Please settle it to avoid interruption of your membership.", amount.StringFixed(2)),
		ActionURL:  notification.ActionPayment,
		CreatedAt:  now,
	}
}
