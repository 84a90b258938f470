package cachestore

import "time"

// Logical key names. Each notification condition is cached under its own key
// so one slice can be invalidated without discarding the others.
const (
	KeyNotificationsExpiring   = "notifications_expiring"
	KeyNotificationsExpired    = "notifications_expired"
	KeyNotificationsPaymentDue = "notifications_payment_due"

	// NotificationsPattern matches every notification slice.
	NotificationsPattern = "notifications_"
)

// Key appends an identifier to a logical name, e.g. Key("workout_details", id).
func Key(name, id string) string {
	if id == "" {
		return name
	}
	return name + "_" + id
}

// TTLClasses groups entry lifetimes by data volatility.
type TTLClasses struct {
	Short    time.Duration
	Medium   time.Duration
	Long     time.Duration
	VeryLong time.Duration
}

// DefaultTTLs returns the stock lifetimes.
func DefaultTTLs() TTLClasses {
	return TTLClasses{
		Short:    time.Minute,
		Medium:   5 * time.Minute,
		Long:     10 * time.Minute,
		VeryLong: 15 * time.Minute,
	}
}
