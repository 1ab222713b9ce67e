// Package handler exposes clip analysis over HTTP.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"scrolltunes/internal/voicegate"
	dErrors "scrolltunes/pkg/domain-errors"
	"scrolltunes/pkg/platform/httputil"
)

// maxSamples bounds the clip length (about 10s at 48kHz).
const maxSamples = 480_000

// Request is the POST /v1/voice/analyze body. A clip arrives either as
// normalized floats in [-1, 1] or as base64-encoded little-endian
// 16-bit mono PCM; exactly one of the two must be set.
type Request struct {
	Samples    []float64 `json:"samples,omitempty"`
	PCM16      []byte    `json:"pcm16,omitempty"`
	SampleRate int       `json:"sample_rate"`
	FrameSize  int       `json:"frame_size"`

	AttackFrames  int     `json:"attack_frames"`
	ReleaseFrames int     `json:"release_frames"`
	OpenRatio     float64 `json:"open_ratio"`
}

type Handler struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// Register mounts the analysis route.
func (h *Handler) Register(r chi.Router) {
	r.Post("/voice/analyze", h.Analyze)
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	samples := req.Samples
	switch {
	case len(req.PCM16) > 0 && len(req.Samples) > 0:
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "send either samples or pcm16, not both"))
		return
	case len(req.PCM16) > 0:
		samples = voicegate.DecodePCM16(req.PCM16)
	case len(req.Samples) == 0:
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "samples are required"))
		return
	}
	if len(samples) > maxSamples {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "clip too long"))
		return
	}
	if req.SampleRate <= 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "sample_rate is required"))
		return
	}

	opts := voicegate.Options{
		AttackFrames:  req.AttackFrames,
		ReleaseFrames: req.ReleaseFrames,
		OpenRatio:     req.OpenRatio,
	}
	analysis := voicegate.Analyze(samples, req.SampleRate, req.FrameSize, opts)
	httputil.WriteJSON(w, http.StatusOK, analysis)
}
