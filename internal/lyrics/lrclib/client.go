// Package lrclib is a minimal client for the LRCLIB lyrics API.
package lrclib

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"scrolltunes/internal/lyrics/models"
	dErrors "scrolltunes/pkg/domain-errors"
)

// ErrNotFound is returned when LRCLIB has no record for the track.
var ErrNotFound = errors.New("track not on lrclib")

const (
	defaultBaseURL = "https://lrclib.net"
	requestTimeout = 10 * time.Second
	maxBodySize    = 1 << 20
)

// Result is a raw API hit. SyncedLRC holds unparsed LRC text.
type Result struct {
	Plain        string
	SyncedLRC    string
	Instrumental bool
}

// Client talks to the LRCLIB /api/get endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// Get fetches lyrics for an exact artist/title (and optionally album and
// duration) match.
func (c *Client) Get(ctx context.Context, params models.LookupParams) (*Result, error) {
	q := url.Values{}
	q.Set("artist_name", params.Artist)
	q.Set("track_name", params.Title)
	if params.Album != "" {
		q.Set("album_name", params.Album)
	}
	if params.Duration > 0 {
		q.Set("duration", strconv.Itoa(params.Duration))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/get?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build lrclib request: %w", err)
	}
	req.Header.Set("User-Agent", "scrolltunes/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lrclib request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode >= 500:
		return nil, dErrors.New(dErrors.CodeUnavailable, "lyrics provider unavailable")
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("lrclib returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read lrclib response: %w", err)
	}

	doc := gjson.ParseBytes(body)
	return &Result{
		Plain:        doc.Get("plainLyrics").String(),
		SyncedLRC:    doc.Get("syncedLyrics").String(),
		Instrumental: doc.Get("instrumental").Bool(),
	}, nil
}
