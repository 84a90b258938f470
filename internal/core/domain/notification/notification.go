package notification

import (
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindExpiringSoon Kind = "expiring_soon"
	KindExpired      Kind = "expired"
	KindPaymentDue   Kind = "payment_due"
)

const (
	ActionRenew   = "/membership/renew"
	ActionPayment = "/membership/payment"
)

// PlanNotification is a user-facing alert derived from an account row.
// Records are immutable: a changed condition yields a new record.
type PlanNotification struct {
	ID         string           `json:"id" yaml:"id"`
	UserID     string           `json:"user_id" yaml:"user_id"`
	Kind       Kind             `json:"kind" yaml:"kind"`
	DaysLeft   *int             `json:"days_left,omitempty" yaml:"days_left,omitempty"`
	ExpiryDate *time.Time       `json:"expiry_date,omitempty" yaml:"expiry_date,omitempty"`
	DueAmount  *decimal.Decimal `json:"due_amount,omitempty" yaml:"due_amount,omitempty"`
	Title      string           `json:"title" yaml:"title"`
	Message    string           `json:"message" yaml:"message"`
	ActionURL  string           `json:"action_url,omitempty" yaml:"action_url,omitempty"`
	CreatedAt  time.Time        `json:"created_at" yaml:"created_at"`
}

// NotificationID builds the stable identifier for a user's notification of kind.
func NotificationID(kind Kind, userID string) string {
	return string(kind) + "-" + userID
}

// ForUser returns the notifications owned by userID, preserving order.
func ForUser(all []PlanNotification, userID string) []PlanNotification {
	out := make([]PlanNotification, 0)
	for _, n := range all {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}
