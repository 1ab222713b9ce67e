package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"scrolltunes/internal/bpm/models"
	dErrors "scrolltunes/pkg/domain-errors"
)

const getSongBPMAPIURL = "https://api.getsongbpm.com"

// GetSongBPM resolves tempo via the GetSongBPM "both" search, which
// matches song and artist in one call. Requires an API key.
type GetSongBPM struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewGetSongBPM(apiKey string) *GetSongBPM {
	return &GetSongBPM{
		baseURL: getSongBPMAPIURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// NewGetSongBPMWithClient is the test constructor.
func NewGetSongBPMWithClient(baseURL, apiKey string, client *http.Client) *GetSongBPM {
	return &GetSongBPM{baseURL: baseURL, apiKey: apiKey, http: client}
}

func (g *GetSongBPM) Name() string { return "getsongbpm" }

func (g *GetSongBPM) Lookup(ctx context.Context, params models.LookupParams) (*models.Result, error) {
	q := url.Values{}
	q.Set("api_key", g.apiKey)
	q.Set("type", "both")
	q.Set("lookup", fmt.Sprintf("song:%s artist:%s", params.Title, params.Artist))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search/?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build getsongbpm request: %w", err)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("getsongbpm request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, dErrors.New(dErrors.CodeUnavailable, "getsongbpm unavailable")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("getsongbpm returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	first := gjson.GetBytes(body, "search.0")
	if !first.Exists() {
		return nil, ErrNotFound
	}
	bpm := first.Get("tempo").Float()
	if bpm <= 0 {
		return nil, ErrNotFound
	}
	return &models.Result{
		BPM:    bpm,
		Key:    first.Get("key_of").String(),
		Source: g.Name(),
	}, nil
}
