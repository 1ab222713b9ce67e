package handler

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scrolltunes/internal/voicegate"
	"scrolltunes/pkg/testutil"
)

func newTestHandler() http.Handler {
	r := chi.NewRouter()
	New(slog.New(slog.DiscardHandler)).Register(r)
	return r
}

// speechClip is 5 quiet frames then 20 frames of a 1kHz tone.
func speechClip(frame int) []float64 {
	var out []float64
	for i := 0; i < 25*frame; i++ {
		amp, freq := 0.005, 100.0
		if i >= 5*frame {
			amp, freq = 0.5, 1000.0
		}
		out = append(out, amp*math.Sin(2*math.Pi*freq*float64(i)/16000))
	}
	return out
}

func pcm16Of(samples []float64) string {
	buf := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(int16(s*32767)))
	}
	return base64.StdEncoding.EncodeToString(buf)
}

func TestAnalyzeFloatSamples(t *testing.T) {
	req := testutil.NewJSONRequest(t, http.MethodPost, "/voice/analyze", map[string]any{
		"samples":     speechClip(480),
		"sample_rate": 16000,
		"frame_size":  480,
	})
	rec := testutil.DoRequest(newTestHandler(), req)
	require.Equal(t, http.StatusOK, rec.Code)

	var analysis voicegate.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	assert.True(t, analysis.VoiceActive)
	assert.Len(t, analysis.Decisions, analysis.Frames)
}

func TestAnalyzePCM16(t *testing.T) {
	req := testutil.NewJSONRequest(t, http.MethodPost, "/voice/analyze", map[string]any{
		"pcm16":       pcm16Of(speechClip(480)),
		"sample_rate": 16000,
		"frame_size":  480,
	})
	rec := testutil.DoRequest(newTestHandler(), req)
	require.Equal(t, http.StatusOK, rec.Code)

	var analysis voicegate.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	assert.True(t, analysis.VoiceActive)
	assert.Positive(t, analysis.ActiveFrames)
}

func TestAnalyzeRejectsBothEncodings(t *testing.T) {
	req := testutil.NewJSONRequest(t, http.MethodPost, "/voice/analyze", map[string]any{
		"samples":     []float64{0, 0.1},
		"pcm16":       pcm16Of([]float64{0, 0.1}),
		"sample_rate": 16000,
	})
	rec := testutil.DoRequest(newTestHandler(), req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeRejectsEmptyClip(t *testing.T) {
	req := testutil.NewJSONRequest(t, http.MethodPost, "/voice/analyze", map[string]any{
		"sample_rate": 16000,
	})
	rec := testutil.DoRequest(newTestHandler(), req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeRequiresSampleRate(t *testing.T) {
	req := testutil.NewJSONRequest(t, http.MethodPost, "/voice/analyze", map[string]any{
		"samples": []float64{0, 0.1, 0.2},
	})
	rec := testutil.DoRequest(newTestHandler(), req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
