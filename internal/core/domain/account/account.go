package account

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Table holds one row per gym member.
const Table = "member_accounts"

const (
	ColID               = "id"
	ColFullName         = "full_name"
	ColEmail            = "email"
	ColApprovalStatus   = "approval_status"
	ColPaymentStatus    = "payment_status"
	ColPlanStatus       = "plan_status"
	ColPlanStartDate    = "plan_start_date"
	ColPlanExpiryDate   = "plan_expiry_date"
	ColDueAmount        = "due_amount"
	ColPaymentDueDate   = "payment_due_date"
	ColNotificationSent = "notification_sent"
)

// Columns lists every column read for notification derivation, in table order.
var Columns = []string{
	ColID, ColFullName, ColEmail, ColApprovalStatus, ColPaymentStatus, ColPlanStatus,
	ColPlanStartDate, ColPlanExpiryDate, ColDueAmount, ColPaymentDueDate, ColNotificationSent,
}

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

type PlanStatus string

const (
	PlanActive  PlanStatus = "active"
	PlanExpired PlanStatus = "expired"
)

type Account struct {
	ID               string           `json:"id" db:"id"`
	FullName         string           `json:"full_name" db:"full_name"`
	Email            string           `json:"email" db:"email"`
	ApprovalStatus   ApprovalStatus   `json:"approval_status" db:"approval_status"`
	PaymentStatus    PaymentStatus    `json:"payment_status" db:"payment_status"`
	PlanStatus       PlanStatus       `json:"plan_status" db:"plan_status"`
	PlanStartDate    *time.Time       `json:"plan_start_date,omitempty" db:"plan_start_date"`
	PlanExpiryDate   *time.Time       `json:"plan_expiry_date,omitempty" db:"plan_expiry_date"`
	DueAmount        *decimal.Decimal `json:"due_amount,omitempty" db:"due_amount"`
	PaymentDueDate   *time.Time       `json:"payment_due_date,omitempty" db:"payment_due_date"`
	NotificationSent bool             `json:"notification_sent" db:"notification_sent"`
}

// IsApproved returns true if the member has been approved by staff
func (a *Account) IsApproved() bool {
	return a.ApprovalStatus == ApprovalApproved
}

// ToRecord converts the account into a column->value row.
func (a *Account) ToRecord() map[string]any {
	rec := map[string]any{
		ColID:               a.ID,
		ColFullName:         a.FullName,
		ColEmail:            a.Email,
		ColApprovalStatus:   string(a.ApprovalStatus),
		ColPaymentStatus:    string(a.PaymentStatus),
		ColPlanStatus:       string(a.PlanStatus),
		ColNotificationSent: a.NotificationSent,
		ColPlanStartDate:    nil,
		ColPlanExpiryDate:   nil,
		ColDueAmount:        nil,
		ColPaymentDueDate:   nil,
	}
	if a.PlanStartDate != nil {
		rec[ColPlanStartDate] = *a.PlanStartDate
	}
	if a.PlanExpiryDate != nil {
		rec[ColPlanExpiryDate] = *a.PlanExpiryDate
	}
	if a.DueAmount != nil {
		rec[ColDueAmount] = *a.DueAmount
	}
	if a.PaymentDueDate != nil {
		rec[ColPaymentDueDate] = *a.PaymentDueDate
	}
	return rec
}

// FromRecord decodes a backend row. Missing columns decode to zero values;
// values of an unexpected type are an error.
func FromRecord(rec map[string]any) (Account, error) {
	var a Account
	var err error
	if a.ID, err = stringField(rec, ColID); err != nil {
		return Account{}, err
	}
	if a.ID == "" {
		return Account{}, fmt.Errorf("record has no %s", ColID)
	}
	if a.FullName, err = stringField(rec, ColFullName); err != nil {
		return Account{}, err
	}
	if a.Email, err = stringField(rec, ColEmail); err != nil {
		return Account{}, err
	}
	s, err := stringField(rec, ColApprovalStatus)
	if err != nil {
		return Account{}, err
	}
	a.ApprovalStatus = ApprovalStatus(s)
	if s, err = stringField(rec, ColPaymentStatus); err != nil {
		return Account{}, err
	}
	a.PaymentStatus = PaymentStatus(s)
	if s, err = stringField(rec, ColPlanStatus); err != nil {
		return Account{}, err
	}
	a.PlanStatus = PlanStatus(s)
	if a.PlanStartDate, err = timeField(rec, ColPlanStartDate); err != nil {
		return Account{}, err
	}
	if a.PlanExpiryDate, err = timeField(rec, ColPlanExpiryDate); err != nil {
		return Account{}, err
	}
	if a.PaymentDueDate, err = timeField(rec, ColPaymentDueDate); err != nil {
		return Account{}, err
	}
	if a.DueAmount, err = decimalField(rec, ColDueAmount); err != nil {
		return Account{}, err
	}
	if a.NotificationSent, err = boolField(rec, ColNotificationSent); err != nil {
		return Account{}, err
	}
	return a, nil
}

func stringField(rec map[string]any, col string) (string, error) {
	switch v := rec[col].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", fmt.Errorf("column %s: unexpected type %T", col, v)
	}
}

func timeField(rec map[string]any, col string) (*time.Time, error) {
	switch v := rec[col].(type) {
	case nil:
		return nil, nil
	case time.Time:
		return &v, nil
	case *time.Time:
		return v, nil
	case string:
		return parseTime(col, v)
	case []byte:
		return parseTime(col, string(v))
	default:
		return nil, fmt.Errorf("column %s: unexpected type %T", col, v)
	}
}

func parseTime(col, s string) (*time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("column %s: cannot parse time %q", col, s)
}

func decimalField(rec map[string]any, col string) (*decimal.Decimal, error) {
	var d decimal.Decimal
	var err error
	switch v := rec[col].(type) {
	case nil:
		return nil, nil
	case decimal.Decimal:
		d = v
	case *decimal.Decimal:
		return v, nil
	case string:
		d, err = decimal.NewFromString(v)
	case []byte:
		d, err = decimal.NewFromString(string(v))
	case float64:
		d = decimal.NewFromFloat(v)
	case int64:
		d = decimal.NewFromInt(v)
	case int:
		d = decimal.NewFromInt(int64(v))
	default:
		return nil, fmt.Errorf("column %s: unexpected type %T", col, v)
	}
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", col, err)
	}
	return &d, nil
}

func boolField(rec map[string]any, col string) (bool, error) {
	switch v := rec[col].(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case int64:
		return v != 0, nil
	default:
		return false, fmt.Errorf("column %s: unexpected type %T", col, v)
	}
}
