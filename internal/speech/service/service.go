// Package service turns short audio clips into teleprompter commands.
package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"scrolltunes/internal/speech/command"
	"scrolltunes/internal/speech/google"
	dErrors "scrolltunes/pkg/domain-errors"
)

// minConfidence below which a transcript is treated as noise rather
// than a command.
const minConfidence = 0.4

// maxAudioBytes bounds the decoded clip size; commands are a second or
// two of audio.
const maxAudioBytes = 1 << 20

// Recognizer is the transcription surface.
type Recognizer interface {
	Recognize(ctx context.Context, audioB64, encoding string, sampleRate int) (*google.Transcript, error)
}

// Request is a transcription request.
type Request struct {
	AudioB64   string `json:"audio"`
	Encoding   string `json:"encoding"`
	SampleRate int    `json:"sample_rate"`
}

// Result carries the transcript and the command it resolved to.
type Result struct {
	Transcript string          `json:"transcript"`
	Confidence float64         `json:"confidence"`
	Command    command.Command `json:"command"`
}

// Service validates clips, transcribes them, and maps the transcript to
// a command.
type Service struct {
	recognizer Recognizer
	logger     *slog.Logger
}

func New(recognizer Recognizer, logger *slog.Logger) *Service {
	return &Service{recognizer: recognizer, logger: logger}
}

// Transcribe runs one clip through recognition. Low-confidence and empty
// transcripts resolve to the None command rather than an error; the
// client treats both the same way.
func (s *Service) Transcribe(ctx context.Context, req Request) (*Result, error) {
	if s.recognizer == nil {
		return nil, dErrors.New(dErrors.CodeUnavailable, "speech recognition not configured")
	}
	if strings.TrimSpace(req.AudioB64) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "audio is required")
	}
	if req.SampleRate <= 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "sample_rate is required")
	}
	if req.Encoding == "" {
		req.Encoding = "LINEAR16"
	}
	if err := checkAudioSize(req.AudioB64); err != nil {
		return nil, err
	}

	transcript, err := s.recognizer.Recognize(ctx, req.AudioB64, req.Encoding, req.SampleRate)
	if err != nil {
		if code := dErrors.CodeOf(err); code != dErrors.CodeInternal {
			return nil, err
		}
		return nil, fmt.Errorf("recognize: %w", err)
	}

	result := &Result{
		Transcript: transcript.Text,
		Confidence: transcript.Confidence,
		Command:    command.None,
	}
	if transcript.Text != "" && transcript.Confidence >= minConfidence {
		result.Command = command.Map(transcript.Text)
	}
	return result, nil
}

func checkAudioSize(audioB64 string) error {
	decoded := base64.StdEncoding.DecodedLen(len(audioB64))
	if decoded > maxAudioBytes {
		return dErrors.New(dErrors.CodeBadRequest, "audio clip too large")
	}
	if _, err := base64.StdEncoding.DecodeString(audioB64[:min(len(audioB64), 64)]); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "audio must be base64 encoded")
	}
	return nil
}
