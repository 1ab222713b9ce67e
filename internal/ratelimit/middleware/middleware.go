// Package middleware enforces per-class request budgets.
package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"scrolltunes/internal/platform/metrics"
	platformmw "scrolltunes/internal/platform/middleware"
	"scrolltunes/internal/ratelimit/models"
	"scrolltunes/internal/ratelimit/store"
	dErrors "scrolltunes/pkg/domain-errors"
	"scrolltunes/pkg/platform/httputil"
)

// Limiter builds per-class middleware over a shared store.
type Limiter struct {
	store   store.Store
	limits  map[models.EndpointClass]models.Limit
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewLimiter(s store.Store, limits map[models.EndpointClass]models.Limit, m *metrics.Metrics, logger *slog.Logger) *Limiter {
	if limits == nil {
		limits = models.DefaultLimits()
	}
	return &Limiter{store: s, limits: limits, metrics: m, logger: logger}
}

// Limit returns middleware enforcing the class budget. Store failures
// fail open: an unreachable Redis must not take the API down with it.
func (l *Limiter) Limit(class models.EndpointClass) func(http.Handler) http.Handler {
	limit, ok := l.limits[class]
	return func(next http.Handler) http.Handler {
		if l.store == nil || !ok {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := string(class) + ":" + clientKey(r)

			result, err := l.store.Take(r.Context(), key, limit)
			if err != nil {
				l.logger.WarnContext(r.Context(), "rate limit check failed, allowing request",
					"error", err, "class", string(class))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

			if !result.Allowed {
				if l.metrics != nil {
					l.metrics.RateLimitDenied.WithLabelValues(string(class)).Inc()
				}
				w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
				httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey prefers the authenticated user; anonymous traffic is keyed
// by client IP, honoring X-Forwarded-For from the edge proxy.
func clientKey(r *http.Request) string {
	if userID := platformmw.GetUserID(r.Context()); userID != "" {
		return "u:" + userID
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, ok := strings.Cut(fwd, ","); ok {
			return "ip:" + strings.TrimSpace(first)
		}
		return "ip:" + strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "ip:" + r.RemoteAddr
	}
	return "ip:" + host
}
