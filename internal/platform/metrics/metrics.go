// Package metrics registers the application-wide Prometheus metrics.
// Domain packages keep their own focused metrics structs; this one covers
// HTTP traffic and coarse business counters.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the shared Prometheus collectors.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
	RequestsTotal   *prometheus.CounterVec

	UsersCreated    prometheus.Counter
	SongsSubmitted  prometheus.Counter
	SongsApproved   prometheus.Counter
	SongsRejected   prometheus.Counter
	RateLimitDenied *prometheus.CounterVec
}

// New creates and registers all shared metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scrolltunes_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status class.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scrolltunes_http_requests_total",
			Help: "Total HTTP requests by route pattern and status class.",
		}, []string{"route", "method", "status"}),
		UsersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scrolltunes_users_created_total",
			Help: "Total number of user accounts created.",
		}),
		SongsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scrolltunes_songs_submitted_total",
			Help: "Total number of songs submitted to the catalog.",
		}),
		SongsApproved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scrolltunes_songs_approved_total",
			Help: "Total number of songs approved by moderation.",
		}),
		SongsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scrolltunes_songs_rejected_total",
			Help: "Total number of songs rejected by moderation.",
		}),
		RateLimitDenied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scrolltunes_rate_limit_denied_total",
			Help: "Requests denied by the rate limiter, by endpoint class.",
		}, []string{"class"}),
	}
}

// ObserveRequest records one completed HTTP request.
func (m *Metrics) ObserveRequest(route, method, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(route, method, status).Observe(elapsed.Seconds())
	m.RequestsTotal.WithLabelValues(route, method, status).Inc()
}
