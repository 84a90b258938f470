package cachestore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ironforge/gym-membership/internal/application/cachestore"
	"github.com/ironforge/gym-membership/internal/infrastructure/memory"
	tmocks "github.com/ironforge/gym-membership/test/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newStore(t *testing.T) (*cachestore.Store, *memory.Cache, *clock) {
	t.Helper()
	clk := &clock{t: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	medium := memory.NewCache()
	return cachestore.New(medium, cachestore.DefaultNamespace, cachestore.WithClock(clk.Now)), medium, clk
}

type profile struct {
	Name   string `json:"name"`
	Visits int    `json:"visits"`
}

func TestSetGet_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, medium, _ := newStore(t)

	cachestore.Set(ctx, s, "user_profile", profile{Name: "Avery", Visits: 12}, time.Minute)

	got, ok := cachestore.Get[profile](ctx, s, "user_profile")
	require.True(t, ok)
	assert.Equal(t, profile{Name: "Avery", Visits: 12}, got)

	_, stored, _ := medium.Get(ctx, "gymapp_user_profile")
	assert.True(t, stored, "physical key carries the namespace prefix")
}

func TestSet_OverwritesAndRestampsEntry(t *testing.T) {
	ctx := context.Background()
	s, _, clk := newStore(t)

	cachestore.Set(ctx, s, "k", 1, time.Minute)
	clk.Advance(50 * time.Second)
	cachestore.Set(ctx, s, "k", 2, time.Minute)
	clk.Advance(50 * time.Second)

	got, ok := cachestore.Get[int](ctx, s, "k")
	require.True(t, ok)
	assert.Equal(t, 2, got)
	age, ok := s.Age(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, 50*time.Second, age)
}

func TestGet_MissingKey(t *testing.T) {
	s, _, _ := newStore(t)
	_, ok := cachestore.Get[string](context.Background(), s, "absent")
	assert.False(t, ok)
	assert.False(t, s.Has(context.Background(), "absent"))
}

func TestGet_ExpiredEntryIsPurged(t *testing.T) {
	ctx := context.Background()
	s, medium, clk := newStore(t)

	cachestore.Set(ctx, s, "k", "v", time.Minute)
	clk.Advance(time.Minute)
	_, ok := cachestore.Get[string](ctx, s, "k")
	require.True(t, ok, "entry is valid while age equals ttl")

	clk.Advance(time.Millisecond)
	_, ok = cachestore.Get[string](ctx, s, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, medium.Len(), "expired entry is deleted on read")
}

func TestHas_ExpiredEntryIsPurged(t *testing.T) {
	ctx := context.Background()
	s, medium, clk := newStore(t)

	cachestore.Set(ctx, s, "k", []string{"a"}, time.Second)
	assert.True(t, s.Has(ctx, "k"))
	clk.Advance(2 * time.Second)
	assert.False(t, s.Has(ctx, "k"))
	assert.Equal(t, 0, medium.Len())
}

func TestGet_UndecodableEntryIsAbsent(t *testing.T) {
	ctx := context.Background()
	s, medium, _ := newStore(t)

	require.NoError(t, medium.Set(ctx, "gymapp_broken", []byte("{not json"), 0))
	_, ok := cachestore.Get[string](ctx, s, "broken")
	assert.False(t, ok)

	cachestore.Set(ctx, s, "typed", "text", time.Minute)
	_, ok = cachestore.Get[int](ctx, s, "typed")
	assert.False(t, ok, "payload of the wrong shape is treated as absent")
}

func TestRemove_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newStore(t)

	cachestore.Set(ctx, s, "k", 1, time.Minute)
	s.Remove(ctx, "k")
	s.Remove(ctx, "k")
	assert.False(t, s.Has(ctx, "k"))
}

func TestClearPattern_IsAnchoredPrefix(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newStore(t)

	for _, k := range []string{"profile_data", "profile_avatar", "dashboard_stats", "user_profile"} {
		cachestore.Set(ctx, s, k, k, time.Minute)
	}

	s.ClearPattern(ctx, "profile")

	assert.Equal(t, []string{"dashboard_stats", "user_profile"}, s.Keys(ctx))
}

func TestClearPattern_TrailingGlobIsIgnored(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newStore(t)

	cachestore.Set(ctx, s, "workout_details_1", 1, time.Minute)
	cachestore.Set(ctx, s, "workout_details_2", 2, time.Minute)
	cachestore.Set(ctx, s, "workouts_list", 3, time.Minute)

	s.ClearPattern(ctx, "workout_details*")

	assert.Equal(t, []string{"workouts_list"}, s.Keys(ctx))
}

func TestClearAll_LeavesForeignKeysAlone(t *testing.T) {
	ctx := context.Background()
	s, medium, _ := newStore(t)

	require.NoError(t, medium.Set(ctx, "other_app_key", []byte("x"), 0))
	cachestore.Set(ctx, s, "a", 1, time.Minute)
	cachestore.Set(ctx, s, "b", 2, time.Minute)

	s.ClearAll(ctx)

	assert.Empty(t, s.Keys(ctx))
	_, ok, _ := medium.Get(ctx, "other_app_key")
	assert.True(t, ok)
}

func TestAge_ReportsExpiredEntries(t *testing.T) {
	ctx := context.Background()
	s, _, clk := newStore(t)

	_, ok := s.Age(ctx, "missing")
	assert.False(t, ok)

	cachestore.Set(ctx, s, "k", 1, time.Second)
	clk.Advance(90 * time.Second)

	age, ok := s.Age(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, 90*time.Second, age)
}

func TestStore_SwallowsMediumFailures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("quota exceeded")
	medium := &tmocks.CacheMock{
		GetFn:    func(context.Context, string) ([]byte, bool, error) { return nil, false, boom },
		SetFn:    func(context.Context, string, []byte, time.Duration) error { return boom },
		DeleteFn: func(context.Context, string) error { return boom },
		KeysFn:   func(context.Context, string) ([]string, error) { return nil, boom },
	}
	reg := prometheus.NewRegistry()
	s := cachestore.New(medium, "t_", cachestore.WithMetrics(cachestore.NewMetrics(reg)))

	assert.NotPanics(t, func() {
		cachestore.Set(ctx, s, "k", 1, time.Minute)
		_, ok := cachestore.Get[int](ctx, s, "k")
		assert.False(t, ok)
		s.Remove(ctx, "k")
		s.ClearAll(ctx)
		assert.Nil(t, s.Keys(ctx))
	})

	assert.Equal(t, 5.0, counterSum(t, reg, "cache_errors_total"))
	assert.Equal(t, 1.0, counterSum(t, reg, "cache_misses_total"))
}

func TestMetrics_CountHitsMissesAndExpiry(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Unix(0, 0)}
	reg := prometheus.NewRegistry()
	s := cachestore.New(memory.NewCache(), "", cachestore.WithClock(clk.Now), cachestore.WithMetrics(cachestore.NewMetrics(reg)))

	cachestore.Set(ctx, s, "k", 1, time.Second)
	cachestore.Get[int](ctx, s, "k")
	cachestore.Get[int](ctx, s, "nope")
	clk.Advance(2 * time.Second)
	cachestore.Get[int](ctx, s, "k")

	assert.Equal(t, 1.0, counterSum(t, reg, "cache_hits_total"))
	assert.Equal(t, 2.0, counterSum(t, reg, "cache_misses_total"))
	assert.Equal(t, 1.0, counterSum(t, reg, "cache_expired_total"))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "workout_details_42", cachestore.Key("workout_details", "42"))
	assert.Equal(t, "workout_details", cachestore.Key("workout_details", ""))
}

func TestDefaultTTLs(t *testing.T) {
	ttl := cachestore.DefaultTTLs()
	assert.Equal(t, time.Minute, ttl.Short)
	assert.Equal(t, 5*time.Minute, ttl.Medium)
	assert.Equal(t, 10*time.Minute, ttl.Long)
	assert.Equal(t, 15*time.Minute, ttl.VeryLong)
}

func counterSum(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	var sum float64
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			sum += m.GetCounter().GetValue()
		}
	}
	return sum
}
