package services_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/ironforge/gym-membership/internal/application/cachestore"
	impl "github.com/ironforge/gym-membership/internal/application/services"
	"github.com/ironforge/gym-membership/internal/core/domain/account"
	"github.com/ironforge/gym-membership/internal/core/domain/notification"
	"github.com/ironforge/gym-membership/internal/core/ports"
	"github.com/ironforge/gym-membership/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseNow = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

const (
	userA = "0b6f5a4e-1111-4c1a-9a51-000000000001"
	userB = "0b6f5a4e-2222-4c1a-9a51-000000000002"
	userC = "0b6f5a4e-3333-4c1a-9a51-000000000003"
)

func ts(d time.Duration) *time.Time {
	t := baseNow.Add(d)
	return &t
}

func money(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fixture struct {
	backend *memory.Backend
	medium  *memory.Cache
	store   *cachestore.Store
	svc     *impl.NotificationService
	now     time.Time
}

func newFixture(t *testing.T, accounts ...account.Account) *fixture {
	t.Helper()
	f := &fixture{backend: memory.NewBackend(), medium: memory.NewCache(), now: baseNow}
	f.backend.Insert(account.Table, (&account.Account{ID: "seed", ApprovalStatus: account.ApprovalRejected}).ToRecord())
	for _, a := range accounts {
		f.backend.Insert(account.Table, a.ToRecord())
	}
	clock := func() time.Time { return f.now }
	f.store = cachestore.New(f.medium, cachestore.DefaultNamespace, cachestore.WithClock(clock))
	f.svc = impl.NewNotificationService(f.backend, f.store, impl.NotificationConfig{Now: clock}, quietLogger())
	return f
}

func expiringAccount(id string, in time.Duration) account.Account {
	return account.Account{
		ID: id, FullName: "Member " + id[len(id)-1:], Email: id[len(id)-1:] + "@example.com",
		ApprovalStatus: account.ApprovalApproved, PaymentStatus: account.PaymentPaid, PlanStatus: account.PlanActive,
		PlanExpiryDate: ts(in),
	}
}

func threeAccounts() []account.Account {
	return []account.Account{
		expiringAccount(userA, 3*24*time.Hour),
		{
			ID: userB, ApprovalStatus: account.ApprovalApproved, PaymentStatus: account.PaymentUnpaid,
			PlanStatus: account.PlanExpired, PlanExpiryDate: ts(-2 * 24 * time.Hour), DueAmount: money("50.00"),
		},
		{
			ID: userC, ApprovalStatus: account.ApprovalApproved, PaymentStatus: account.PaymentUnpaid,
			PlanStatus: account.PlanActive, PlanExpiryDate: ts(20 * 24 * time.Hour),
			PaymentDueDate: ts(-24 * time.Hour), DueAmount: money("20.00"),
		},
	}
}

func TestExpiringPlans_DaysLeftBoundaries(t *testing.T) {
	cases := []struct {
		name     string
		in       time.Duration
		wantDays int
		included bool
	}{
		{"two hours left rounds up to one day", 2 * time.Hour, 1, true},
		{"exactly one day", 24 * time.Hour, 1, true},
		{"just over one day", 24*time.Hour + time.Minute, 2, true},
		{"four days twenty three hours", 4*24*time.Hour + 23*time.Hour, 5, true},
		{"exactly five days", 5 * 24 * time.Hour, 5, true},
		{"five days one hour is outside the window", 5*24*time.Hour + time.Hour, 0, false},
		{"already expired", -time.Hour, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, expiringAccount(userA, tc.in))
			got := f.svc.ExpiringPlansNotifications(context.Background())
			if !tc.included {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			require.NotNil(t, got[0].DaysLeft)
			assert.Equal(t, tc.wantDays, *got[0].DaysLeft)
		})
	}
}

func TestExpiringPlans_MessageWording(t *testing.T) {
	f := newFixture(t, expiringAccount(userA, 2*time.Hour), expiringAccount(userB, 3*24*time.Hour))
	got := f.svc.ExpiringPlansNotifications(context.Background())
	require.Len(t, got, 2)
	assert.Contains(t, got[0].Message, "expires in 1 day.")
	assert.Contains(t, got[1].Message, "expires in 3 days.")
	assert.Equal(t, notification.ActionRenew, got[0].ActionURL)
	assert.Equal(t, "expiring_soon-"+userA, got[0].ID)
}

func TestExpiringPlans_RequiresApprovedAndPaid(t *testing.T) {
	unpaid := expiringAccount(userB, 24*time.Hour)
	unpaid.PaymentStatus = account.PaymentUnpaid
	pending := expiringAccount(userC, 24*time.Hour)
	pending.ApprovalStatus = account.ApprovalPending

	f := newFixture(t, expiringAccount(userA, 24*time.Hour), unpaid, pending)
	got := f.svc.ExpiringPlansNotifications(context.Background())
	require.Len(t, got, 1)
	assert.Equal(t, userA, got[0].UserID)
}

func TestExpiredPlans_CarriesDateAndBalance(t *testing.T) {
	f := newFixture(t, threeAccounts()...)
	got := f.svc.ExpiredPlansNotifications(context.Background())
	require.Len(t, got, 1)
	n := got[0]
	assert.Equal(t, notification.KindExpired, n.Kind)
	assert.Equal(t, userB, n.UserID)
	require.NotNil(t, n.ExpiryDate)
	assert.True(t, n.ExpiryDate.Equal(*ts(-2 * 24 * time.Hour)))
	require.NotNil(t, n.DueAmount)
	assert.True(t, n.DueAmount.Equal(decimal.NewFromInt(50)))
	assert.Nil(t, n.DaysLeft)
	assert.Contains(t, n.Message, "Outstanding balance: 50.00.")
}

func TestExpiredPlans_NullDueAmountIsAbsent(t *testing.T) {
	acc := threeAccounts()[1]
	acc.DueAmount = nil
	f := newFixture(t, acc)
	got := f.svc.ExpiredPlansNotifications(context.Background())
	require.Len(t, got, 1)
	assert.Nil(t, got[0].DueAmount)
	assert.NotContains(t, got[0].Message, "Outstanding")
}

func TestPaymentDue_FormatsAmount(t *testing.T) {
	acc := threeAccounts()[2]
	acc.DueAmount = money("20.5")
	f := newFixture(t, acc)
	got := f.svc.PaymentDueNotifications(context.Background())
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "outstanding payment of 20.50")
	assert.Equal(t, notification.ActionPayment, got[0].ActionURL)
}

func TestPaymentDue_SkipsZeroAndFutureDue(t *testing.T) {
	zero := threeAccounts()[2]
	zero.DueAmount = money("0")
	future := threeAccounts()[2]
	future.ID = userA
	future.PaymentDueDate = ts(24 * time.Hour)
	f := newFixture(t, zero, future)
	assert.Empty(t, f.svc.PaymentDueNotifications(context.Background()))
}

func TestUserNotifications_ThreeMembers(t *testing.T) {
	f := newFixture(t, threeAccounts()...)
	ctx := context.Background()

	a := f.svc.UserNotifications(ctx, userA)
	require.Len(t, a, 1)
	assert.Equal(t, notification.KindExpiringSoon, a[0].Kind)
	assert.Equal(t, 3, *a[0].DaysLeft)

	b := f.svc.UserNotifications(ctx, userB)
	require.Len(t, b, 1)
	assert.Equal(t, notification.KindExpired, b[0].Kind)
	assert.True(t, b[0].DueAmount.Equal(decimal.NewFromInt(50)))

	c := f.svc.UserNotifications(ctx, userC)
	require.Len(t, c, 1)
	assert.Equal(t, notification.KindPaymentDue, c[0].Kind)
	assert.Contains(t, c[0].Message, "20.00")

	assert.Empty(t, f.svc.UserNotifications(ctx, "nobody"))
}

func TestUserNotifications_MergeOrderIsFixed(t *testing.T) {
	// One member matching all three conditions.
	both := account.Account{
		ID: userA, ApprovalStatus: account.ApprovalApproved, PaymentStatus: account.PaymentPaid,
		PlanStatus: account.PlanExpired, PlanExpiryDate: ts(2 * 24 * time.Hour),
		PaymentDueDate: ts(-time.Hour), DueAmount: money("10"),
	}
	expiredRow := account.Account{
		ID: userA, ApprovalStatus: account.ApprovalApproved, PlanStatus: account.PlanExpired,
		PlanExpiryDate: ts(-time.Hour),
	}
	f := newFixture(t, both, expiredRow)

	// Slow down the expiring query so it finishes last.
	f.backend.QueryHook = func(_ string, filters []ports.Filter) error {
		for _, flt := range filters {
			if flt.Column == account.ColPaymentStatus {
				time.Sleep(20 * time.Millisecond)
			}
		}
		return nil
	}

	got := f.svc.UserNotifications(context.Background(), userA)
	kinds := make([]notification.Kind, 0, len(got))
	for _, n := range got {
		kinds = append(kinds, n.Kind)
	}
	want := []notification.Kind{notification.KindExpiringSoon, notification.KindExpired, notification.KindPaymentDue}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("merge order mismatch (-want +got):\n%s", diff)
	}
}

func TestUserNotifications_ExpiringOutageDegradesToOtherConditions(t *testing.T) {
	f := newFixture(t, threeAccounts()...)
	f.backend.QueryHook = func(_ string, filters []ports.Filter) error {
		for _, flt := range filters {
			if flt.Column == account.ColPaymentStatus {
				return errors.New("connection reset")
			}
		}
		return nil
	}
	ctx := context.Background()

	assert.Empty(t, f.svc.UserNotifications(ctx, userA))
	b := f.svc.UserNotifications(ctx, userB)
	require.Len(t, b, 1)
	assert.Equal(t, notification.KindExpired, b[0].Kind)

	assert.False(t, f.store.Has(ctx, cachestore.KeyNotificationsExpiring), "failed load is not cached")
	assert.True(t, f.store.Has(ctx, cachestore.KeyNotificationsExpired))
}

func TestNotifications_ServedFromCacheUntilTTL(t *testing.T) {
	f := newFixture(t, threeAccounts()...)
	ctx := context.Background()

	first := f.svc.ExpiredPlansNotifications(ctx)
	second := f.svc.ExpiredPlansNotifications(ctx)
	assert.Equal(t, 1, f.backend.QueryCount())
	assert.Equal(t, len(first), len(second))

	f.now = f.now.Add(5*time.Minute + time.Second)
	f.svc.ExpiredPlansNotifications(ctx)
	assert.Equal(t, 2, f.backend.QueryCount())
}

func TestNotifications_ConcurrentMissesShareOneQuery(t *testing.T) {
	f := newFixture(t, threeAccounts()...)
	release := make(chan struct{})
	f.backend.QueryHook = func(string, []ports.Filter) error {
		<-release
		return nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.svc.PaymentDueNotifications(context.Background())
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, 1, f.backend.QueryCount())
}

func TestNotifications_ReturnedSliceIsACopy(t *testing.T) {
	f := newFixture(t, threeAccounts()...)
	ctx := context.Background()
	got := f.svc.PaymentDueNotifications(ctx)
	require.Len(t, got, 1)
	got[0].Title = "mutated"
	assert.Equal(t, "Payment Due", f.svc.PaymentDueNotifications(ctx)[0].Title)
}

func TestNotifications_UndecodableRowIsSkipped(t *testing.T) {
	f := newFixture(t, threeAccounts()...)
	bad := threeAccounts()[1].ToRecord()
	bad[account.ColID] = "bad-row"
	bad[account.ColFullName] = 42
	f.backend.Insert(account.Table, bad)

	got := f.svc.ExpiredPlansNotifications(context.Background())
	require.Len(t, got, 1)
	assert.Equal(t, userB, got[0].UserID)
}

func TestAcknowledge_MarksSentAndInvalidatesExpiring(t *testing.T) {
	f := newFixture(t, threeAccounts()...)
	ctx := context.Background()
	f.svc.ExpiringPlansNotifications(ctx)
	f.svc.ExpiredPlansNotifications(ctx)

	f.svc.Acknowledge(ctx, userA)

	assert.False(t, f.store.Has(ctx, cachestore.KeyNotificationsExpiring))
	assert.True(t, f.store.Has(ctx, cachestore.KeyNotificationsExpired), "other conditions stay cached")
	for _, r := range f.backend.Rows(account.Table) {
		if r[account.ColID] == userA {
			assert.Equal(t, true, r[account.ColNotificationSent])
		}
	}
}

func TestAcknowledge_FailedUpdateKeepsCache(t *testing.T) {
	f := newFixture(t, threeAccounts()...)
	ctx := context.Background()
	f.svc.ExpiringPlansNotifications(ctx)
	f.backend.UpdateHook = func(string, ports.RowKey, map[string]any) error { return errors.New("read-only replica") }

	assert.NotPanics(t, func() { f.svc.Acknowledge(ctx, userA) })
	assert.True(t, f.store.Has(ctx, cachestore.KeyNotificationsExpiring))
}

func TestAcknowledge_UnknownMemberIsSwallowed(t *testing.T) {
	f := newFixture(t)
	assert.NotPanics(t, func() { f.svc.Acknowledge(context.Background(), "missing") })
	assert.Equal(t, 1, f.backend.UpdateCount())
}

func TestInvalidateAll_ClearsOnlyNotificationKeys(t *testing.T) {
	f := newFixture(t, threeAccounts()...)
	ctx := context.Background()
	cachestore.Set(ctx, f.store, "dashboard_stats", 1, time.Minute)
	f.svc.UserNotifications(ctx, userA)
	require.Len(t, f.store.Keys(ctx), 4)

	f.svc.InvalidateAll(ctx)

	assert.Equal(t, []string{"dashboard_stats"}, f.store.Keys(ctx))
}

func TestNotificationService_WorksWithoutCacheOrLogger(t *testing.T) {
	b := memory.NewBackend()
	for _, a := range threeAccounts() {
		b.Insert(account.Table, a.ToRecord())
	}
	svc := impl.NewNotificationService(b, nil, impl.NotificationConfig{Now: func() time.Time { return baseNow }}, nil)
	ctx := context.Background()
	assert.Len(t, svc.UserNotifications(ctx, userC), 1)
	svc.Acknowledge(ctx, "missing")
	svc.InvalidateAll(ctx)
	assert.Equal(t, 3, b.QueryCount())
}
