// Package google is a minimal client for the Google Speech-to-Text REST
// API using API-key auth.
package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	dErrors "scrolltunes/pkg/domain-errors"
)

const speechAPIURL = "https://speech.googleapis.com/v1/speech:recognize"

// Transcript is the best recognition alternative.
type Transcript struct {
	Text       string
	Confidence float64
}

// Client calls the synchronous recognize endpoint.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func New(apiKey string) *Client {
	return &Client{
		baseURL: speechAPIURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// NewWithClient is the test constructor.
func NewWithClient(baseURL, apiKey string, client *http.Client) *Client {
	return &Client{baseURL: baseURL, apiKey: apiKey, http: client}
}

// Recognize transcribes a short audio clip. Audio is base64 content as
// the API expects; sampleRate is in Hz.
func (c *Client) Recognize(ctx context.Context, audioB64, encoding string, sampleRate int) (*Transcript, error) {
	payload := map[string]any{
		"config": map[string]any{
			"encoding":        encoding,
			"sampleRateHertz": sampleRate,
			"languageCode":    "en-US",
			"model":           "command_and_search",
		},
		"audio": map[string]any{"content": audioB64},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal recognize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"?key="+c.apiKey, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build recognize request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recognize request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read recognize response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return nil, dErrors.New(dErrors.CodeBadRequest, "unrecognized audio format")
	case resp.StatusCode >= 500:
		return nil, dErrors.New(dErrors.CodeUnavailable, "speech service unavailable")
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("speech api returned status %d", resp.StatusCode)
	}

	best := gjson.GetBytes(raw, "results.0.alternatives.0")
	return &Transcript{
		Text:       best.Get("transcript").String(),
		Confidence: best.Get("confidence").Float(),
	}, nil
}
