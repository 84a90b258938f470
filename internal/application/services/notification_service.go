package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/ironforge/gym-membership/internal/application/cachestore"
	"github.com/ironforge/gym-membership/internal/core/domain/account"
	"github.com/ironforge/gym-membership/internal/core/domain/notification"
	"github.com/ironforge/gym-membership/internal/core/ports"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// DefaultExpiringWindow is how far ahead a plan expiry raises an alert.
const DefaultExpiringWindow = 5 * day

type NotificationConfig struct {
	// ExpiringWindow bounds the expiring-soon query to (now, now+window].
	ExpiringWindow time.Duration
	// TTL applies to each cached condition list.
	TTL time.Duration
	// Now replaces time.Now when set.
	Now func() time.Time
}

// NotificationService derives plan alerts from three independent backend
// conditions. Each condition is cached under its own key; backend failures
// degrade to an empty list and are only logged.
type NotificationService struct {
	backend ports.Backend
	cache   *cachestore.Store
	cfg     NotificationConfig
	logger  *logrus.Logger
	sf      singleflight.Group
}

func NewNotificationService(backend ports.Backend, cache *cachestore.Store, cfg NotificationConfig, logger *logrus.Logger) *NotificationService {
	if cfg.ExpiringWindow <= 0 {
		cfg.ExpiringWindow = DefaultExpiringWindow
	}
	if cfg.TTL <= 0 {
		cfg.TTL = cachestore.DefaultTTLs().Medium
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &NotificationService{backend: backend, cache: cache, cfg: cfg, logger: logger}
}

func (s *NotificationService) ExpiringPlansNotifications(ctx context.Context) []notification.PlanNotification {
	return s.cachedList(ctx, cachestore.KeyNotificationsExpiring, func(now time.Time) ([]notification.PlanNotification, error) {
		accounts, err := s.queryAccounts(ctx, expiringFilters(now, s.cfg.ExpiringWindow))
		if err != nil {
			return nil, err
		}
		out := make([]notification.PlanNotification, 0, len(accounts))
		for _, a := range accounts {
			if a.PlanExpiryDate == nil {
				continue
			}
			out = append(out, expiringNotification(a, now))
		}
		return out, nil
	})
}

func (s *NotificationService) ExpiredPlansNotifications(ctx context.Context) []notification.PlanNotification {
	return s.cachedList(ctx, cachestore.KeyNotificationsExpired, func(now time.Time) ([]notification.PlanNotification, error) {
		accounts, err := s.queryAccounts(ctx, expiredFilters(now))
		if err != nil {
			return nil, err
		}
		out := make([]notification.PlanNotification, 0, len(accounts))
		for _, a := range accounts {
			out = append(out, expiredNotification(a, now))
		}
		return out, nil
	})
}

func (s *NotificationService) PaymentDueNotifications(ctx context.Context) []notification.PlanNotification {
	return s.cachedList(ctx, cachestore.KeyNotificationsPaymentDue, func(now time.Time) ([]notification.PlanNotification, error) {
		accounts, err := s.queryAccounts(ctx, paymentDueFilters(now))
		if err != nil {
			return nil, err
		}
		out := make([]notification.PlanNotification, 0, len(accounts))
		for _, a := range accounts {
			out = append(out, paymentDueNotification(a, now))
		}
		return out, nil
	})
}

// UserNotifications merges the three conditions for userID, always in the
// order expiring, expired, payment due, whichever fetch finishes first.
func (s *NotificationService) UserNotifications(ctx context.Context, userID string) []notification.PlanNotification {
	var expiring, expired, due []notification.PlanNotification
	var g errgroup.Group
	g.Go(func() error {
		expiring = s.ExpiringPlansNotifications(ctx)
		return nil
	})
	g.Go(func() error {
		expired = s.ExpiredPlansNotifications(ctx)
		return nil
	})
	g.Go(func() error {
		due = s.PaymentDueNotifications(ctx)
		return nil
	})
	_ = g.Wait()

	all := slices.Concat(expiring, expired, due)
	return notification.ForUser(all, userID)
}

// Acknowledge marks the expiring-plan alert for userID as sent and drops the
// cached expiring list. Failures are logged; the cache is left alone when the
// update did not go through.
func (s *NotificationService) Acknowledge(ctx context.Context, userID string) {
	err := s.backend.UpdateRow(ctx, account.Table,
		ports.RowKey{Column: account.ColID, Value: userID},
		map[string]any{account.ColNotificationSent: true})
	if err != nil {
		if s.logger != nil {
			s.logger.WithField("user_id", userID).WithError(err).Error("failed to mark notification sent")
		}
		return
	}
	s.sf.Forget(cachestore.KeyNotificationsExpiring)
	if s.cache != nil {
		s.cache.Remove(ctx, cachestore.KeyNotificationsExpiring)
	}
	if s.logger != nil {
		s.logger.WithField("user_id", userID).Debug("expiring plan notification acknowledged")
	}
}

// InvalidateAll drops every cached notification list.
func (s *NotificationService) InvalidateAll(ctx context.Context) {
	for _, k := range []string{cachestore.KeyNotificationsExpiring, cachestore.KeyNotificationsExpired, cachestore.KeyNotificationsPaymentDue} {
		s.sf.Forget(k)
	}
	if s.cache != nil {
		s.cache.ClearPattern(ctx, cachestore.NotificationsPattern)
	}
}

// cachedList serves key from cache, coalescing concurrent misses into a single
// load. A failed load is logged, not cached, and yields an empty list.
func (s *NotificationService) cachedList(ctx context.Context, key string, load func(now time.Time) ([]notification.PlanNotification, error)) []notification.PlanNotification {
	if s.cache != nil {
		if v, ok := cachestore.Get[[]notification.PlanNotification](ctx, s.cache, key); ok {
			return v
		}
	}
	res, err, _ := s.sf.Do(key, func() (any, error) {
		if s.cache != nil {
			if v, ok := cachestore.Get[[]notification.PlanNotification](ctx, s.cache, key); ok {
				return v, nil
			}
		}
		list, err := load(s.cfg.Now())
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			cachestore.Set(ctx, s.cache, key, list, s.cfg.TTL)
		}
		return list, nil
	})
	if err != nil {
		if s.logger != nil {
			s.logger.WithField("condition", key).WithError(err).Error("failed to load notifications")
		}
		return []notification.PlanNotification{}
	}
	list, ok := res.([]notification.PlanNotification)
	if !ok {
		return []notification.PlanNotification{}
	}
	return slices.Clone(list)
}

// queryAccounts runs filters against the accounts table. Rows that fail to
// decode are skipped.
func (s *NotificationService) queryAccounts(ctx context.Context, filters []ports.Filter) ([]account.Account, error) {
	rows, err := s.backend.QueryRows(ctx, account.Table, filters, &ports.Ordering{Column: account.ColID}, 0)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", account.Table, err)
	}
	out := make([]account.Account, 0, len(rows))
	for _, r := range rows {
		a, err := account.FromRecord(r)
		if err != nil {
			if s.logger != nil {
				s.logger.WithError(err).Warn("skipping undecodable account row")
			}
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

var _ ports.NotificationService = (*NotificationService)(nil)
