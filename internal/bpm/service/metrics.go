package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks per-provider lookup and cache behaviour.
type Metrics struct {
	Lookups       *prometheus.CounterVec
	Duration      *prometheus.HistogramVec
	CacheRequests *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		Lookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scrolltunes_bpm_lookups_total",
			Help: "Tempo provider lookups by provider and outcome.",
		}, []string{"provider", "outcome"}),
		CacheRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scrolltunes_bpm_cache_requests_total",
			Help: "Tempo cache lookups by outcome.",
		}, []string{"outcome"}),
		Duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scrolltunes_bpm_lookup_duration_seconds",
			Help:    "Tempo provider lookup latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
	}
}

func (m *Metrics) observe(provider, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.Lookups.WithLabelValues(provider, outcome).Inc()
	m.Duration.WithLabelValues(provider).Observe(seconds)
}

func (m *Metrics) observeCache(outcome string) {
	if m == nil {
		return
	}
	m.CacheRequests.WithLabelValues(outcome).Inc()
}
