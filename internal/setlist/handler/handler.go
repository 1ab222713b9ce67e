// Package handler exposes setlists over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"scrolltunes/internal/platform/middleware"
	"scrolltunes/internal/setlist/models"
	dErrors "scrolltunes/pkg/domain-errors"
	"scrolltunes/pkg/platform/httputil"
)

// Service is the setlist surface the handler needs.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, req models.CreateRequest) (*models.Setlist, error)
	Get(ctx context.Context, userID, setlistID uuid.UUID) (*models.Setlist, []models.ResolvedEntry, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.Summary, error)
	Update(ctx context.Context, userID, setlistID uuid.UUID, req models.UpdateRequest) (*models.Setlist, error)
	ReplaceSongs(ctx context.Context, userID, setlistID uuid.UUID, entries []models.EntryRequest) (*models.Setlist, error)
	Delete(ctx context.Context, userID, setlistID uuid.UUID) error
}

type Handler struct {
	logger   *slog.Logger
	setlists Service
}

func New(logger *slog.Logger, setlists Service) *Handler {
	return &Handler{logger: logger, setlists: setlists}
}

// Register mounts the authenticated setlist routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/setlists", h.Create)
	r.Get("/setlists", h.List)
	r.Get("/setlists/{setlistID}", h.Get)
	r.Put("/setlists/{setlistID}", h.Update)
	r.Put("/setlists/{setlistID}/songs", h.ReplaceSongs)
	r.Delete("/setlists/{setlistID}", h.Delete)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req models.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	setlist, err := h.setlists.Create(r.Context(), userID, req)
	if err != nil {
		h.logServiceError(r.Context(), "create setlist", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, setlist)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, setlistID, err := setlistIDs(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	setlist, entries, err := h.setlists.Get(r.Context(), userID, setlistID)
	if err != nil {
		h.logServiceError(r.Context(), "get setlist", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"id":         setlist.ID,
		"name":       setlist.Name,
		"entries":    entries,
		"created_at": setlist.CreatedAt,
		"updated_at": setlist.UpdatedAt,
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	setlists, err := h.setlists.List(r.Context(), userID)
	if err != nil {
		h.logServiceError(r.Context(), "list setlists", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"setlists": setlists})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, setlistID, err := setlistIDs(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req models.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	setlist, err := h.setlists.Update(r.Context(), userID, setlistID, req)
	if err != nil {
		h.logServiceError(r.Context(), "update setlist", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, setlist)
}

// ReplaceSongs swaps the whole ordered entry list.
func (h *Handler) ReplaceSongs(w http.ResponseWriter, r *http.Request) {
	userID, setlistID, err := setlistIDs(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req struct {
		Songs []models.EntryRequest `json:"songs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.Songs == nil {
		req.Songs = []models.EntryRequest{}
	}

	setlist, err := h.setlists.ReplaceSongs(r.Context(), userID, setlistID, req.Songs)
	if err != nil {
		h.logServiceError(r.Context(), "replace setlist songs", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, setlist)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, setlistID, err := setlistIDs(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.setlists.Delete(r.Context(), userID, setlistID); err != nil {
		h.logServiceError(r.Context(), "delete setlist", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) logServiceError(ctx context.Context, op string, err error) {
	attrs := []any{"error", err, "request_id", middleware.GetRequestID(ctx)}
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, op+" failed", attrs...)
		return
	}
	h.logger.WarnContext(ctx, op+" rejected", attrs...)
}

func setlistIDs(r *http.Request) (userID, setlistID uuid.UUID, err error) {
	userID, err = currentUser(r.Context())
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	setlistID, err = uuid.Parse(chi.URLParam(r, "setlistID"))
	if err != nil {
		return uuid.Nil, uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "invalid setlist id")
	}
	return userID, setlistID, nil
}

func currentUser(ctx context.Context) (uuid.UUID, error) {
	userID, err := uuid.Parse(middleware.GetUserID(ctx))
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeUnauthorized, "missing authentication")
	}
	return userID, nil
}
