// Package handler exposes favorites over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"scrolltunes/internal/platform/middleware"
	"scrolltunes/internal/song/models"
	dErrors "scrolltunes/pkg/domain-errors"
	"scrolltunes/pkg/platform/httputil"
)

// Service is the favorites surface the handler needs.
type Service interface {
	Add(ctx context.Context, userID, songID uuid.UUID) error
	Remove(ctx context.Context, userID, songID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]models.Summary, error)
}

type Handler struct {
	logger    *slog.Logger
	favorites Service
}

func New(logger *slog.Logger, favorites Service) *Handler {
	return &Handler{logger: logger, favorites: favorites}
}

// Register mounts the authenticated favorites routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/favorites", h.List)
	r.Put("/favorites/{songID}", h.Add)
	r.Delete("/favorites/{songID}", h.Remove)
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	userID, songID, err := favoriteIDs(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.favorites.Add(r.Context(), userID, songID); err != nil {
		h.logServiceError(r.Context(), "add favorite", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, songID, err := favoriteIDs(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.favorites.Remove(r.Context(), userID, songID); err != nil {
		h.logServiceError(r.Context(), "remove favorite", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	songs, err := h.favorites.List(r.Context(), userID)
	if err != nil {
		h.logServiceError(r.Context(), "list favorites", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"songs": songs})
}

func (h *Handler) logServiceError(ctx context.Context, op string, err error) {
	attrs := []any{"error", err, "request_id", middleware.GetRequestID(ctx)}
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, op+" failed", attrs...)
		return
	}
	h.logger.WarnContext(ctx, op+" rejected", attrs...)
}

func favoriteIDs(r *http.Request) (userID, songID uuid.UUID, err error) {
	userID, err = currentUser(r.Context())
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	songID, err = uuid.Parse(chi.URLParam(r, "songID"))
	if err != nil {
		return uuid.Nil, uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "invalid song id")
	}
	return userID, songID, nil
}

func currentUser(ctx context.Context) (uuid.UUID, error) {
	userID, err := uuid.Parse(middleware.GetUserID(ctx))
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeUnauthorized, "missing authentication")
	}
	return userID, nil
}
