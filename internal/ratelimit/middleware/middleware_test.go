package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	platformmw "scrolltunes/internal/platform/middleware"
	"scrolltunes/internal/ratelimit/models"
	"scrolltunes/internal/ratelimit/store"
)

type failingStore struct{}

func (failingStore) Take(_ context.Context, _ string, _ models.Limit) (models.Result, error) {
	return models.Result{}, context.DeadlineExceeded
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func newLimiter(s store.Store, limits map[models.EndpointClass]models.Limit) *Limiter {
	return NewLimiter(s, limits, nil, slog.New(slog.DiscardHandler))
}

func TestLimiterAllowsAndDenies(t *testing.T) {
	limits := map[models.EndpointClass]models.Limit{
		models.ClassAuth: {Requests: 2, Window: time.Minute},
	}
	limiter := newLimiter(store.NewMemoryStore(), limits)
	handler := limiter.Limit(models.ClassAuth)(okHandler())

	for range 2 {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestLimiterKeysByIP(t *testing.T) {
	limits := map[models.EndpointClass]models.Limit{
		models.ClassAuth: {Requests: 1, Window: time.Minute},
	}
	limiter := newLimiter(store.NewMemoryStore(), limits)
	handler := limiter.Limit(models.ClassAuth)(okHandler())

	for _, addr := range []string{"10.0.0.1:1", "10.0.0.2:1"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = addr
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "addr %s", addr)
	}
}

func TestLimiterPrefersUserKey(t *testing.T) {
	limits := map[models.EndpointClass]models.Limit{
		models.ClassGeneral: {Requests: 1, Window: time.Minute},
	}
	limiter := newLimiter(store.NewMemoryStore(), limits)
	handler := limiter.Limit(models.ClassGeneral)(okHandler())

	// Same IP, different users: separate budgets.
	for _, user := range []string{"user-a", "user-b"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/songs", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		req = req.WithContext(context.WithValue(req.Context(), platformmw.ContextKeyUserID, user))
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "user %s", user)
	}
}

func TestLimiterHonorsForwardedFor(t *testing.T) {
	limits := map[models.EndpointClass]models.Limit{
		models.ClassAuth: {Requests: 1, Window: time.Minute},
	}
	limiter := newLimiter(store.NewMemoryStore(), limits)
	handler := limiter.Limit(models.ClassAuth)(okHandler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// Same forwarded client from a different proxy hop is still limited.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "10.0.0.99:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.99")
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestLimiterFailsOpen(t *testing.T) {
	limits := map[models.EndpointClass]models.Limit{
		models.ClassAuth: {Requests: 1, Window: time.Minute},
	}
	limiter := newLimiter(failingStore{}, limits)
	handler := limiter.Limit(models.ClassAuth)(okHandler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLimiterNilStoreIsNoop(t *testing.T) {
	limiter := newLimiter(nil, nil)
	handler := limiter.Limit(models.ClassAuth)(okHandler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
