// Package cachestore implements the expiring key/value store the application
// consults before every non-trivial backend read.
//
// Entries carry their own creation time and TTL and are purged lazily: an
// expired entry is deleted on the next read of its key, never in the
// background. The store has no capacity bound, so callers that mint one key
// per dynamic identifier must clear those keys themselves (ClearPattern).
package cachestore

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ironforge/gym-membership/internal/core/ports"
	"github.com/sirupsen/logrus"
)

// DefaultNamespace prefixes every key written by a Store unless overridden.
const DefaultNamespace = "gymapp_"

// Entry is a cached payload with its validity window.
type Entry[T any] struct {
	Data      T
	CreatedAt time.Time
	TTL       time.Duration
}

// Valid reports whether the entry is still within its TTL at now.
func (e Entry[T]) Valid(now time.Time) bool {
	return now.Sub(e.CreatedAt) <= e.TTL
}

// envelope is the serialized form of an Entry.
type envelope[T any] struct {
	Data      T         `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	TTLMillis int64     `json:"ttl_ms"`
}

func (e envelope[T]) entry() Entry[T] {
	return Entry[T]{Data: e.Data, CreatedAt: e.CreatedAt, TTL: time.Duration(e.TTLMillis) * time.Millisecond}
}

// Store is the process-wide expiring cache. It is safe for concurrent use;
// one mutex covers every read-modify-write against the medium.
type Store struct {
	medium  ports.Cache
	prefix  string
	logger  *logrus.Logger
	metrics *Metrics
	now     func() time.Time
	mu      sync.Mutex
}

type Option func(*Store)

// WithLogger sets the logger used for swallowed storage failures.
func WithLogger(l *logrus.Logger) Option { return func(s *Store) { s.logger = l } }

// WithMetrics attaches prometheus counters.
func WithMetrics(m *Metrics) Option { return func(s *Store) { s.metrics = m } }

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// New creates a store writing to medium under namespace prefix.
func New(medium ports.Cache, prefix string, opts ...Option) *Store {
	s := &Store{medium: medium, prefix: prefix, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) namespaced(key string) string { return s.prefix + key }

func (s *Store) logFailure(op, key string, err error) {
	s.metrics.failed(op)
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"op": op, "key": key}).WithError(err).Warn("cache operation failed")
	}
}

// Set overwrites key with value stamped now. Failures are logged, never returned.
func Set[T any](ctx context.Context, s *Store, key string, value T, ttl time.Duration) {
	b, err := json.Marshal(envelope[T]{Data: value, CreatedAt: s.now(), TTLMillis: ttl.Milliseconds()})
	if err != nil {
		s.logFailure("set", key, fmt.Errorf("encode entry: %w", err))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.medium.Set(ctx, s.namespaced(key), b, 0); err != nil {
		s.logFailure("set", key, err)
	}
}

// Get returns the payload stored under key while it is valid. Expired entries
// are deleted and reported absent, as are entries that fail to decode.
func Get[T any](ctx context.Context, s *Store, key string) (T, bool) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()
	env, ok := load[T](ctx, s, key)
	if !ok {
		s.metrics.miss()
		return zero, false
	}
	e := env.entry()
	if !e.Valid(s.now()) {
		s.purge(ctx, key)
		s.metrics.miss()
		return zero, false
	}
	s.metrics.hit()
	return e.Data, true
}

// load reads and decodes the raw entry. The caller holds s.mu.
func load[T any](ctx context.Context, s *Store, key string) (envelope[T], bool) {
	var env envelope[T]
	b, ok, err := s.medium.Get(ctx, s.namespaced(key))
	if err != nil {
		s.logFailure("get", key, err)
		return env, false
	}
	if !ok {
		return env, false
	}
	if err := json.Unmarshal(b, &env); err != nil {
		s.logFailure("decode", key, err)
		return env, false
	}
	return env, true
}

// purge deletes an expired entry. The caller holds s.mu.
func (s *Store) purge(ctx context.Context, key string) {
	s.metrics.expire()
	if err := s.medium.Delete(ctx, s.namespaced(key)); err != nil {
		s.logFailure("purge", key, err)
	}
}

// Has reports whether key holds a valid entry, purging it if expired.
func (s *Store) Has(ctx context.Context, key string) bool {
	_, ok := Get[json.RawMessage](ctx, s, key)
	return ok
}

// Remove deletes key. Removing an absent key is a no-op.
func (s *Store) Remove(ctx context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.medium.Delete(ctx, s.namespaced(key)); err != nil {
		s.logFailure("remove", key, err)
	}
}

// ClearAll deletes every entry in this store's namespace.
func (s *Store) ClearAll(ctx context.Context) {
	s.ClearPattern(ctx, "")
}

// ClearPattern deletes every entry whose logical key starts with pattern.
// A trailing "*" is accepted as a glob spelling of the same prefix match.
func (s *Store) ClearPattern(ctx context.Context, pattern string) {
	pattern = strings.TrimSuffix(pattern, "*")
	s.mu.Lock()
	defer s.mu.Unlock()
	keys, err := s.medium.Keys(ctx, s.namespaced(pattern))
	if err != nil {
		s.logFailure("clear", pattern, err)
		return
	}
	for _, k := range keys {
		if err := s.medium.Delete(ctx, k); err != nil {
			s.logFailure("clear", strings.TrimPrefix(k, s.prefix), err)
		}
	}
}

// Age returns the time elapsed since key was written, whether or not it is
// still valid.
func (s *Store) Age(ctx context.Context, key string) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	env, ok := load[json.RawMessage](ctx, s, key)
	if !ok {
		return 0, false
	}
	return s.now().Sub(env.CreatedAt), true
}

// Keys lists the logical names currently stored, expired ones included.
func (s *Store) Keys(ctx context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys, err := s.medium.Keys(ctx, s.prefix)
	if err != nil {
		s.logFailure("keys", "", err)
		return nil
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, strings.TrimPrefix(k, s.prefix))
	}
	slices.Sort(out)
	return out
}
