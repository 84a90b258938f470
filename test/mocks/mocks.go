package mocks

import (
	"context"
	"time"

	"github.com/ironforge/gym-membership/internal/core/domain/notification"
	"github.com/ironforge/gym-membership/internal/core/ports"
)

// CacheMock is a lightweight mock for the cache medium
type CacheMock struct {
	GetFn    func(ctx context.Context, key string) ([]byte, bool, error)
	SetFn    func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteFn func(ctx context.Context, key string) error
	KeysFn   func(ctx context.Context, prefix string) ([]string, error)
}

func (m *CacheMock) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, key)
	}
	return nil, false, nil
}
func (m *CacheMock) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.SetFn != nil {
		return m.SetFn(ctx, key, value, ttl)
	}
	return nil
}
func (m *CacheMock) Delete(ctx context.Context, key string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, key)
	}
	return nil
}
func (m *CacheMock) Keys(ctx context.Context, prefix string) ([]string, error) {
	if m.KeysFn != nil {
		return m.KeysFn(ctx, prefix)
	}
	return nil, nil
}

// BackendMock is a lightweight mock for the query backend
type BackendMock struct {
	QueryRowsFn func(ctx context.Context, table string, filters []ports.Filter, order *ports.Ordering, limit int) ([]ports.Record, error)
	UpdateRowFn func(ctx context.Context, table string, key ports.RowKey, fields map[string]any) error
}

func (m *BackendMock) QueryRows(ctx context.Context, table string, filters []ports.Filter, order *ports.Ordering, limit int) ([]ports.Record, error) {
	if m.QueryRowsFn != nil {
		return m.QueryRowsFn(ctx, table, filters, order, limit)
	}
	return nil, nil
}
func (m *BackendMock) UpdateRow(ctx context.Context, table string, key ports.RowKey, fields map[string]any) error {
	if m.UpdateRowFn != nil {
		return m.UpdateRowFn(ctx, table, key, fields)
	}
	return nil
}

// MailerMock records reminders and optionally fails them
type MailerMock struct {
	SendPlanReminderFn func(ctx context.Context, toEmail, toName string, n notification.PlanNotification) error
	Sent               []notification.PlanNotification
}

func (m *MailerMock) SendPlanReminder(ctx context.Context, toEmail, toName string, n notification.PlanNotification) error {
	if m.SendPlanReminderFn != nil {
		if err := m.SendPlanReminderFn(ctx, toEmail, toName, n); err != nil {
			return err
		}
	}
	m.Sent = append(m.Sent, n)
	return nil
}

// NotificationServiceMock is a lightweight mock for NotificationService
type NotificationServiceMock struct {
	ExpiringFn     func(ctx context.Context) []notification.PlanNotification
	ExpiredFn      func(ctx context.Context) []notification.PlanNotification
	PaymentDueFn   func(ctx context.Context) []notification.PlanNotification
	UserFn         func(ctx context.Context, userID string) []notification.PlanNotification
	AcknowledgeFn  func(ctx context.Context, userID string)
	InvalidateFn   func(ctx context.Context)
	Acknowledged   []string
	InvalidateHits int
}

func (m *NotificationServiceMock) ExpiringPlansNotifications(ctx context.Context) []notification.PlanNotification {
	if m.ExpiringFn != nil {
		return m.ExpiringFn(ctx)
	}
	return []notification.PlanNotification{}
}
func (m *NotificationServiceMock) ExpiredPlansNotifications(ctx context.Context) []notification.PlanNotification {
	if m.ExpiredFn != nil {
		return m.ExpiredFn(ctx)
	}
	return []notification.PlanNotification{}
}
func (m *NotificationServiceMock) PaymentDueNotifications(ctx context.Context) []notification.PlanNotification {
	if m.PaymentDueFn != nil {
		return m.PaymentDueFn(ctx)
	}
	return []notification.PlanNotification{}
}
func (m *NotificationServiceMock) UserNotifications(ctx context.Context, userID string) []notification.PlanNotification {
	if m.UserFn != nil {
		return m.UserFn(ctx, userID)
	}
	return []notification.PlanNotification{}
}
func (m *NotificationServiceMock) Acknowledge(ctx context.Context, userID string) {
	m.Acknowledged = append(m.Acknowledged, userID)
	if m.AcknowledgeFn != nil {
		m.AcknowledgeFn(ctx, userID)
	}
}
func (m *NotificationServiceMock) InvalidateAll(ctx context.Context) {
	m.InvalidateHits++
	if m.InvalidateFn != nil {
		m.InvalidateFn(ctx)
	}
}

var (
	_ ports.Cache               = (*CacheMock)(nil)
	_ ports.Backend             = (*BackendMock)(nil)
	_ ports.Mailer              = (*MailerMock)(nil)
	_ ports.NotificationService = (*NotificationServiceMock)(nil)
)
