package main

import (
	"time"

	"github.com/google/uuid"
	"github.com/ironforge/gym-membership/internal/core/domain/account"
	"github.com/ironforge/gym-membership/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
)

// Demo member IDs are derived from fixed names so they are stable across runs.
var (
	demoExpiringID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("memberctl-demo-expiring")).String()
	demoExpiredID  = uuid.NewSHA1(uuid.NameSpaceOID, []byte("memberctl-demo-expired")).String()
	demoDueID      = uuid.NewSHA1(uuid.NameSpaceOID, []byte("memberctl-demo-payment-due")).String()
)

func seedDemo(b *memory.Backend) {
	now := time.Now()
	at := func(d time.Duration) *time.Time { t := now.Add(d); return &t }
	amount := func(s string) *decimal.Decimal { d := decimal.RequireFromString(s); return &d }

	members := []account.Account{
		{
			ID: demoExpiringID, FullName: "Avery Stone", Email: "avery@example.com",
			ApprovalStatus: account.ApprovalApproved, PaymentStatus: account.PaymentPaid, PlanStatus: account.PlanActive,
			PlanStartDate: at(-27 * 24 * time.Hour), PlanExpiryDate: at(3 * 24 * time.Hour),
		},
		{
			ID: demoExpiredID, FullName: "Blake Rivera", Email: "blake@example.com",
			ApprovalStatus: account.ApprovalApproved, PaymentStatus: account.PaymentUnpaid, PlanStatus: account.PlanExpired,
			PlanStartDate: at(-32 * 24 * time.Hour), PlanExpiryDate: at(-2 * 24 * time.Hour), DueAmount: amount("50.00"),
		},
		{
			ID: demoDueID, FullName: "Casey Morgan", Email: "casey@example.com",
			ApprovalStatus: account.ApprovalApproved, PaymentStatus: account.PaymentUnpaid, PlanStatus: account.PlanActive,
			PlanStartDate: at(-10 * 24 * time.Hour), PlanExpiryDate: at(20 * 24 * time.Hour),
			PaymentDueDate: at(-24 * time.Hour), DueAmount: amount("20.00"),
		},
	}
	for _, m := range members {
		b.Insert(account.Table, m.ToRecord())
	}
}
