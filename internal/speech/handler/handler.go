// Package handler exposes voice transcription over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"scrolltunes/internal/platform/middleware"
	"scrolltunes/internal/speech/service"
	dErrors "scrolltunes/pkg/domain-errors"
	"scrolltunes/pkg/platform/httputil"
)

// Service is the transcription surface the handler needs.
type Service interface {
	Transcribe(ctx context.Context, req service.Request) (*service.Result, error)
}

type Handler struct {
	logger *slog.Logger
	speech Service
}

func New(logger *slog.Logger, speech Service) *Handler {
	return &Handler{logger: logger, speech: speech}
}

// Register mounts the transcription route.
func (h *Handler) Register(r chi.Router) {
	r.Post("/voice/transcribe", h.Transcribe)
}

func (h *Handler) Transcribe(w http.ResponseWriter, r *http.Request) {
	var req service.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.speech.Transcribe(r.Context(), req)
	if err != nil {
		attrs := []any{"error", err, "request_id", middleware.GetRequestID(r.Context())}
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(r.Context(), "transcription failed", attrs...)
		} else {
			h.logger.WarnContext(r.Context(), "transcription rejected", attrs...)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}
