// Package handler exposes the moderation and operations surface. All
// routes sit behind the admin token middleware.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"scrolltunes/internal/audit"
	"scrolltunes/internal/enrichment"
	"scrolltunes/internal/platform/middleware"
	"scrolltunes/internal/song/models"
	dErrors "scrolltunes/pkg/domain-errors"
	"scrolltunes/pkg/platform/httputil"
)

// SongModeration is the catalog surface moderation needs.
type SongModeration interface {
	Moderation(ctx context.Context, status models.Status, limit, offset int) ([]*models.Song, error)
	Approve(ctx context.Context, songID uuid.UUID) error
	Reject(ctx context.Context, songID uuid.UUID, reason string) error
	Delete(ctx context.Context, userID, songID uuid.UUID) error
	Stats(ctx context.Context) (map[models.Status]int, error)
}

// Enricher triggers manual backfill runs.
type Enricher interface {
	Run(ctx context.Context) (*enrichment.Result, error)
}

// Counter reports a single total for the stats endpoint.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// AuditLog reads back recent events.
type AuditLog interface {
	Tail(ctx context.Context, limit int) ([]audit.Event, error)
}

type Handler struct {
	logger    *slog.Logger
	songs     SongModeration
	enricher  Enricher
	users     Counter
	favorites Counter
	setlists  Counter
	auditLog  AuditLog
	recorder  *audit.Publisher
}

func New(logger *slog.Logger, songs SongModeration, enricher Enricher, users, favorites, setlists Counter, auditLog AuditLog, recorder *audit.Publisher) *Handler {
	return &Handler{
		logger:    logger,
		songs:     songs,
		enricher:  enricher,
		users:     users,
		favorites: favorites,
		setlists:  setlists,
		auditLog:  auditLog,
		recorder:  recorder,
	}
}

// Register mounts the admin routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/songs", h.Queue)
	r.Post("/songs/{songID}/approve", h.Approve)
	r.Post("/songs/{songID}/reject", h.Reject)
	r.Post("/enrich", h.Enrich)
	r.Get("/stats", h.Stats)
	r.Get("/audit", h.Audit)
}

// Queue lists songs in a moderation state, pending by default.
func (h *Handler) Queue(w http.ResponseWriter, r *http.Request) {
	status := models.Status(r.URL.Query().Get("status"))
	if status == "" {
		status = models.StatusPending
	}

	songs, err := h.songs.Moderation(r.Context(), status, queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		h.logServiceError(r.Context(), "list moderation queue", err)
		httputil.WriteError(w, err)
		return
	}
	if songs == nil {
		songs = []*models.Song{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"songs": songs})
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	songID, err := uuid.Parse(chi.URLParam(r, "songID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid song id"))
		return
	}

	if err := h.songs.Approve(r.Context(), songID); err != nil {
		h.logServiceError(r.Context(), "approve song", err)
		httputil.WriteError(w, err)
		return
	}
	h.recorder.Emit(r.Context(), audit.Event{
		Actor:  "admin",
		Action: audit.ActionSongApproved,
		SongID: songID,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	songID, err := uuid.Parse(chi.URLParam(r, "songID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid song id"))
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if strings.TrimSpace(body.Reason) == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "reason is required"))
		return
	}

	if err := h.songs.Reject(r.Context(), songID, body.Reason); err != nil {
		h.logServiceError(r.Context(), "reject song", err)
		httputil.WriteError(w, err)
		return
	}
	h.recorder.Emit(r.Context(), audit.Event{
		Actor:  "admin",
		Action: audit.ActionSongRejected,
		SongID: songID,
		Detail: body.Reason,
	})
	w.WriteHeader(http.StatusNoContent)
}

// Enrich kicks off a manual backfill run and reports its outcome.
func (h *Handler) Enrich(w http.ResponseWriter, r *http.Request) {
	if h.enricher == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "enrichment not configured"))
		return
	}
	h.recorder.Emit(r.Context(), audit.Event{Actor: "admin", Action: audit.ActionEnrichTriggered})

	result, err := h.enricher.Run(r.Context())
	if err != nil {
		h.logServiceError(r.Context(), "run enrichment", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.songs.Stats(r.Context())
	if err != nil {
		h.logServiceError(r.Context(), "collect stats", err)
		httputil.WriteError(w, err)
		return
	}

	totals := map[string]int{}
	for name, counter := range map[string]Counter{
		"users":     h.users,
		"favorites": h.favorites,
		"setlists":  h.setlists,
	} {
		if counter == nil {
			totals[name] = 0
			continue
		}
		n, err := counter.Count(r.Context())
		if err != nil {
			h.logServiceError(r.Context(), "count "+name, err)
			httputil.WriteError(w, err)
			return
		}
		totals[name] = n
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"users":     totals["users"],
		"favorites": totals["favorites"],
		"setlists":  totals["setlists"],
		"songs": map[string]int{
			"pending":  counts[models.StatusPending],
			"approved": counts[models.StatusApproved],
			"rejected": counts[models.StatusRejected],
		},
	})
}

func (h *Handler) Audit(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit")
	if limit <= 0 {
		limit = 100
	}

	events, err := h.auditLog.Tail(r.Context(), limit)
	if err != nil {
		h.logServiceError(r.Context(), "tail audit log", err)
		httputil.WriteError(w, err)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (h *Handler) logServiceError(ctx context.Context, op string, err error) {
	attrs := []any{"error", err, "request_id", middleware.GetRequestID(ctx)}
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, op+" failed", attrs...)
		return
	}
	h.logger.WarnContext(ctx, op+" rejected", attrs...)
}

func queryInt(r *http.Request, key string) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
