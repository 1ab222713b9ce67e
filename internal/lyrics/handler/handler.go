// Package handler exposes lyrics lookup over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"scrolltunes/internal/lyrics/models"
	"scrolltunes/internal/platform/middleware"
	dErrors "scrolltunes/pkg/domain-errors"
	"scrolltunes/pkg/platform/httputil"
)

// Service is the lyrics surface the handler needs.
type Service interface {
	Lookup(ctx context.Context, params models.LookupParams) (*models.Lyrics, error)
}

type Handler struct {
	logger *slog.Logger
	lyrics Service
}

func New(logger *slog.Logger, lyrics Service) *Handler {
	return &Handler{logger: logger, lyrics: lyrics}
}

// Register mounts the lyrics lookup route.
func (h *Handler) Register(r chi.Router) {
	r.Get("/lyrics", h.Lookup)
}

func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := models.LookupParams{
		Artist: q.Get("artist"),
		Title:  q.Get("title"),
		Album:  q.Get("album"),
	}
	if v := q.Get("duration"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil || d < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid duration"))
			return
		}
		params.Duration = d
	}

	lyrics, err := h.lyrics.Lookup(r.Context(), params)
	if err != nil {
		code := dErrors.CodeOf(err)
		attrs := []any{"error", err, "request_id", middleware.GetRequestID(r.Context())}
		if code == dErrors.CodeInternal {
			h.logger.ErrorContext(r.Context(), "lyrics lookup failed", attrs...)
		} else if code != dErrors.CodeNotFound {
			h.logger.WarnContext(r.Context(), "lyrics lookup rejected", attrs...)
		}
		httputil.WriteError(w, err)
		return
	}

	// Resolved lyrics are immutable for practical purposes.
	w.Header().Set("Cache-Control", "public, max-age=86400")
	httputil.WriteJSON(w, http.StatusOK, lyrics)
}
