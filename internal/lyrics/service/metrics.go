package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks cache behaviour for lyrics lookups.
type Metrics struct {
	CacheRequests *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		CacheRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scrolltunes_lyrics_cache_requests_total",
			Help: "Lyrics cache lookups by outcome.",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) observeCache(outcome string) {
	if m == nil {
		return
	}
	m.CacheRequests.WithLabelValues(outcome).Inc()
}
