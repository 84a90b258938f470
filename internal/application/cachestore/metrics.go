package cachestore

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts cache outcomes. A nil *Metrics is valid and records nothing.
type Metrics struct {
	hits     prometheus.Counter
	misses   prometheus.Counter
	expired  prometheus.Counter
	failures *prometheus.CounterVec
}

// NewMetrics creates the cache counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Cache reads served from a valid entry",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Cache reads that found no valid entry",
		}),
		expired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_expired_total",
			Help: "Entries purged on read after their TTL elapsed",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_errors_total",
			Help: "Swallowed cache storage failures by operation",
		}, []string{"op"}),
	}
	if reg != nil {
		reg.MustRegister(m.hits, m.misses, m.expired, m.failures)
	}
	return m
}

func (m *Metrics) hit() {
	if m != nil {
		m.hits.Inc()
	}
}

func (m *Metrics) miss() {
	if m != nil {
		m.misses.Inc()
	}
}

func (m *Metrics) expire() {
	if m != nil {
		m.expired.Inc()
	}
}

func (m *Metrics) failed(op string) {
	if m != nil {
		m.failures.WithLabelValues(op).Inc()
	}
}
