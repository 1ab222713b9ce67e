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

const deezerAPIURL = "https://api.deezer.com"

// Deezer resolves tempo via the public Deezer API: a search to find the
// track id, then the track endpoint which carries a bpm field. No
// credentials required.
type Deezer struct {
	baseURL string
	http    *http.Client
}

func NewDeezer() *Deezer {
	return &Deezer{
		baseURL: deezerAPIURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// NewDeezerWithClient is the test constructor.
func NewDeezerWithClient(baseURL string, client *http.Client) *Deezer {
	return &Deezer{baseURL: baseURL, http: client}
}

func (d *Deezer) Name() string { return "deezer" }

func (d *Deezer) Lookup(ctx context.Context, params models.LookupParams) (*models.Result, error) {
	q := url.Values{}
	q.Set("q", fmt.Sprintf(`artist:"%s" track:"%s"`, params.Artist, params.Title))
	q.Set("limit", "1")

	body, err := d.get(ctx, d.baseURL+"/search?"+q.Encode())
	if err != nil {
		return nil, err
	}

	trackID := gjson.GetBytes(body, "data.0.id").Int()
	if trackID == 0 {
		return nil, ErrNotFound
	}

	body, err = d.get(ctx, fmt.Sprintf("%s/track/%d", d.baseURL, trackID))
	if err != nil {
		return nil, err
	}

	bpm := gjson.GetBytes(body, "bpm").Float()
	// Deezer reports 0 for tracks it has not analyzed.
	if bpm <= 0 {
		return nil, ErrNotFound
	}
	return &models.Result{BPM: bpm, Source: d.Name()}, nil
}

func (d *Deezer) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build deezer request: %w", err)
	}

	resp, err := d.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("deezer request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, dErrors.New(dErrors.CodeUnavailable, "deezer unavailable")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("deezer returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	// Deezer signals quota errors inside a 200 body.
	if gjson.GetBytes(body, "error.code").Int() == 4 {
		return nil, dErrors.New(dErrors.CodeUnavailable, "deezer rate limited")
	}
	return body, nil
}
