// Package httpapi assembles the full route tree. Handlers register
// themselves; this file only decides which middleware guards which
// group.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminhandler "scrolltunes/internal/admin/handler"
	authhandler "scrolltunes/internal/auth/handler"
	bpmhandler "scrolltunes/internal/bpm/handler"
	favoriteshandler "scrolltunes/internal/favorites/handler"
	lyricshandler "scrolltunes/internal/lyrics/handler"
	"scrolltunes/internal/platform/metrics"
	"scrolltunes/internal/platform/middleware"
	ratelimitmw "scrolltunes/internal/ratelimit/middleware"
	"scrolltunes/internal/ratelimit/models"
	setlisthandler "scrolltunes/internal/setlist/handler"
	songhandler "scrolltunes/internal/song/handler"
	speechhandler "scrolltunes/internal/speech/handler"
	voicegatehandler "scrolltunes/internal/voicegate/handler"
	"scrolltunes/pkg/platform/httputil"
)

// Deps are the wired handlers and cross-cutting services the router
// mounts.
type Deps struct {
	Logger    *slog.Logger
	Auth      *authhandler.Handler
	Songs     *songhandler.Handler
	Favorites *favoriteshandler.Handler
	Setlists  *setlisthandler.Handler
	Lyrics    *lyricshandler.Handler
	BPM       *bpmhandler.Handler
	Speech    *speechhandler.Handler
	Voicegate *voicegatehandler.Handler
	Admin     *adminhandler.Handler

	JWT        middleware.JWTValidator
	Revocation middleware.TokenRevocationChecker
	AdminToken string
	Limiter    *ratelimitmw.Limiter
	Metrics    *metrics.Metrics
}

// NewRouter builds the chi route tree with the standard middleware
// chain.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.Latency(deps.Metrics))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		// Credential endpoints: anonymous, tightly limited.
		r.Group(func(r chi.Router) {
			r.Use(deps.Limiter.Limit(models.ClassAuth))
			deps.Auth.RegisterPublic(r)
		})

		// Everything else under /v1 requires a valid access token.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(deps.JWT, deps.Revocation, deps.Logger))

			r.Group(func(r chi.Router) {
				r.Use(deps.Limiter.Limit(models.ClassGeneral))
				deps.Auth.Register(r)
				deps.Songs.Register(r)
				deps.Favorites.Register(r)
				deps.Setlists.Register(r)
			})

			// Third-party fan-out endpoints get the tighter lookup budget.
			r.Group(func(r chi.Router) {
				r.Use(deps.Limiter.Limit(models.ClassLookup))
				deps.Lyrics.Register(r)
				deps.BPM.Register(r)
				deps.Speech.Register(r)
				deps.Voicegate.Register(r)
			})
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdminToken(deps.AdminToken, deps.Logger))
		deps.Admin.Register(r)
	})

	return r
}
