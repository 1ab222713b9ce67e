// Package handler exposes tempo lookup over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"scrolltunes/internal/bpm/models"
	"scrolltunes/internal/platform/middleware"
	dErrors "scrolltunes/pkg/domain-errors"
	"scrolltunes/pkg/platform/httputil"
)

// Service is the tempo surface the handler needs.
type Service interface {
	Lookup(ctx context.Context, params models.LookupParams) (*models.Result, error)
}

type Handler struct {
	logger *slog.Logger
	bpm    Service
}

func New(logger *slog.Logger, bpm Service) *Handler {
	return &Handler{logger: logger, bpm: bpm}
}

// Register mounts the tempo lookup route.
func (h *Handler) Register(r chi.Router) {
	r.Get("/bpm", h.Lookup)
}

func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	params := models.LookupParams{
		Artist: r.URL.Query().Get("artist"),
		Title:  r.URL.Query().Get("title"),
	}

	result, err := h.bpm.Lookup(r.Context(), params)
	if err != nil {
		code := dErrors.CodeOf(err)
		attrs := []any{"error", err, "request_id", middleware.GetRequestID(r.Context())}
		if code == dErrors.CodeInternal {
			h.logger.ErrorContext(r.Context(), "tempo lookup failed", attrs...)
		} else if code != dErrors.CodeNotFound {
			h.logger.WarnContext(r.Context(), "tempo lookup rejected", attrs...)
		}
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	httputil.WriteJSON(w, http.StatusOK, result)
}
