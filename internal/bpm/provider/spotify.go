package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2/clientcredentials"

	"scrolltunes/internal/bpm/models"
	dErrors "scrolltunes/pkg/domain-errors"
)

const (
	spotifyAPIURL   = "https://api.spotify.com/v1"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
)

// pitchClasses maps Spotify's audio-features key field (0..11) to note
// names; mode 1 is major, 0 minor.
var pitchClasses = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Spotify resolves tempo via track search plus the audio-features
// endpoint, using the client-credentials flow.
type Spotify struct {
	baseURL string
	http    *http.Client
}

// NewSpotify builds the provider. The oauth2 transport refreshes the
// app token transparently.
func NewSpotify(clientID, clientSecret string) *Spotify {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyTokenURL,
	}
	client := cfg.Client(context.Background())
	client.Timeout = 10 * time.Second
	return &Spotify{baseURL: spotifyAPIURL, http: client}
}

// NewSpotifyWithClient is the test constructor.
func NewSpotifyWithClient(baseURL string, client *http.Client) *Spotify {
	return &Spotify{baseURL: baseURL, http: client}
}

func (s *Spotify) Name() string { return "spotify" }

func (s *Spotify) Lookup(ctx context.Context, params models.LookupParams) (*models.Result, error) {
	trackID, err := s.searchTrack(ctx, params)
	if err != nil {
		return nil, err
	}

	body, err := s.get(ctx, s.baseURL+"/audio-features/"+trackID)
	if err != nil {
		return nil, err
	}

	doc := gjson.ParseBytes(body)
	tempo := doc.Get("tempo").Float()
	if tempo <= 0 {
		return nil, ErrNotFound
	}

	result := &models.Result{
		BPM:           tempo,
		TimeSignature: int(doc.Get("time_signature").Int()),
		Source:        s.Name(),
	}
	if key := doc.Get("key").Int(); key >= 0 && key < 12 {
		result.Key = pitchClasses[key]
		if doc.Get("mode").Int() == 0 {
			result.Key += "m"
		}
	}
	return result, nil
}

func (s *Spotify) searchTrack(ctx context.Context, params models.LookupParams) (string, error) {
	q := url.Values{}
	q.Set("q", fmt.Sprintf("track:%s artist:%s", params.Title, params.Artist))
	q.Set("type", "track")
	q.Set("limit", "1")

	body, err := s.get(ctx, s.baseURL+"/search?"+q.Encode())
	if err != nil {
		return "", err
	}

	id := gjson.GetBytes(body, "tracks.items.0.id").String()
	if id == "" {
		return "", ErrNotFound
	}
	return id, nil
}

func (s *Spotify) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build spotify request: %w", err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("spotify request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, dErrors.New(dErrors.CodeUnavailable, "spotify rate limited")
	case resp.StatusCode >= 500:
		return nil, dErrors.New(dErrors.CodeUnavailable, "spotify unavailable")
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("spotify returned status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}
