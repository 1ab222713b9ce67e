// Package handler exposes the song catalog over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"scrolltunes/internal/platform/middleware"
	"scrolltunes/internal/song/models"
	dErrors "scrolltunes/pkg/domain-errors"
	"scrolltunes/pkg/platform/httputil"
)

// Service is the catalog surface the handler needs.
type Service interface {
	Submit(ctx context.Context, userID uuid.UUID, req models.SubmitRequest) (*models.Song, error)
	Get(ctx context.Context, userID, songID uuid.UUID) (*models.Song, error)
	Search(ctx context.Context, params models.SearchParams) (*models.SearchResult, error)
	Update(ctx context.Context, userID, songID uuid.UUID, req models.SubmitRequest) (*models.Song, error)
	Delete(ctx context.Context, userID, songID uuid.UUID) error
	Recent(ctx context.Context, userID uuid.UUID) ([]models.Summary, error)
}

type Handler struct {
	logger *slog.Logger
	songs  Service
}

func New(logger *slog.Logger, songs Service) *Handler {
	return &Handler{logger: logger, songs: songs}
}

// Register mounts the authenticated catalog routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/songs", h.Submit)
	r.Get("/songs", h.Search)
	r.Get("/songs/{songID}", h.Get)
	r.Put("/songs/{songID}", h.Update)
	r.Delete("/songs/{songID}", h.Delete)
	r.Get("/me/recent", h.Recent)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req models.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	song, err := h.songs.Submit(r.Context(), userID, req)
	if err != nil {
		h.logServiceError(r.Context(), "submit song", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, song)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	songID, err := uuid.Parse(chi.URLParam(r, "songID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid song id"))
		return
	}

	song, err := h.songs.Get(r.Context(), userID, songID)
	if err != nil {
		h.logServiceError(r.Context(), "get song", err)
		httputil.WriteError(w, err)
		return
	}
	if song.Status == models.StatusApproved {
		w.Header().Set("Cache-Control", "private, max-age=300")
	}
	httputil.WriteJSON(w, http.StatusOK, song)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	params := models.SearchParams{
		Query:  r.URL.Query().Get("q"),
		Artist: r.URL.Query().Get("artist"),
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	}

	result, err := h.songs.Search(r.Context(), params)
	if err != nil {
		h.logServiceError(r.Context(), "search songs", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	songID, err := uuid.Parse(chi.URLParam(r, "songID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid song id"))
		return
	}

	var req models.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	song, err := h.songs.Update(r.Context(), userID, songID, req)
	if err != nil {
		h.logServiceError(r.Context(), "update song", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, song)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	songID, err := uuid.Parse(chi.URLParam(r, "songID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid song id"))
		return
	}

	if err := h.songs.Delete(r.Context(), userID, songID); err != nil {
		h.logServiceError(r.Context(), "delete song", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	recent, err := h.songs.Recent(r.Context(), userID)
	if err != nil {
		h.logServiceError(r.Context(), "list recent songs", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"songs": recent})
}

func (h *Handler) logServiceError(ctx context.Context, op string, err error) {
	attrs := []any{"error", err, "request_id", middleware.GetRequestID(ctx)}
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, op+" failed", attrs...)
		return
	}
	h.logger.WarnContext(ctx, op+" rejected", attrs...)
}

func currentUser(ctx context.Context) (uuid.UUID, error) {
	raw := middleware.GetUserID(ctx)
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeUnauthorized, "missing authentication")
	}
	return userID, nil
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
