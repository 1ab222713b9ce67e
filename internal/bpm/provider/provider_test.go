package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scrolltunes/internal/bpm/models"
	dErrors "scrolltunes/pkg/domain-errors"
)

func lookupParams() models.LookupParams {
	return models.LookupParams{Artist: "John Denver", Title: "Take Me Home, Country Roads"}
}

func TestSpotifyLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/search":
			assert.Contains(t, r.URL.Query().Get("q"), "track:")
			w.Write([]byte(`{"tracks":{"items":[{"id":"abc123"}]}}`))
		case r.URL.Path == "/audio-features/abc123":
			w.Write([]byte(`{"tempo":82.5,"key":9,"mode":1,"time_signature":4}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	p := NewSpotifyWithClient(srv.URL, srv.Client())
	result, err := p.Lookup(context.Background(), lookupParams())
	require.NoError(t, err)
	assert.Equal(t, 82.5, result.BPM)
	assert.Equal(t, "A", result.Key)
	assert.Equal(t, 4, result.TimeSignature)
	assert.Equal(t, "spotify", result.Source)
}

func TestSpotifyMinorKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search" {
			w.Write([]byte(`{"tracks":{"items":[{"id":"x"}]}}`))
			return
		}
		w.Write([]byte(`{"tempo":120,"key":4,"mode":0}`))
	}))
	defer srv.Close()

	p := NewSpotifyWithClient(srv.URL, srv.Client())
	result, err := p.Lookup(context.Background(), lookupParams())
	require.NoError(t, err)
	assert.Equal(t, "Em", result.Key)
}

func TestSpotifyNoSearchResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"tracks":{"items":[]}}`))
	}))
	defer srv.Close()

	p := NewSpotifyWithClient(srv.URL, srv.Client())
	_, err := p.Lookup(context.Background(), lookupParams())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSpotifyRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewSpotifyWithClient(srv.URL, srv.Client())
	_, err := p.Lookup(context.Background(), lookupParams())
	require.True(t, dErrors.Is(err, dErrors.CodeUnavailable))
}

func TestDeezerLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			w.Write([]byte(`{"data":[{"id":3135556}]}`))
		case "/track/3135556":
			w.Write([]byte(`{"id":3135556,"bpm":82.4}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	p := NewDeezerWithClient(srv.URL, srv.Client())
	result, err := p.Lookup(context.Background(), lookupParams())
	require.NoError(t, err)
	assert.Equal(t, 82.4, result.BPM)
	assert.Equal(t, "deezer", result.Source)
}

func TestDeezerZeroBPMIsMiss(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search" {
			w.Write([]byte(`{"data":[{"id":1}]}`))
			return
		}
		w.Write([]byte(`{"id":1,"bpm":0}`))
	}))
	defer srv.Close()

	p := NewDeezerWithClient(srv.URL, srv.Client())
	_, err := p.Lookup(context.Background(), lookupParams())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeezerQuotaError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"error":{"type":"Exception","message":"Quota limit exceeded","code":4}}`))
	}))
	defer srv.Close()

	p := NewDeezerWithClient(srv.URL, srv.Client())
	_, err := p.Lookup(context.Background(), lookupParams())
	require.True(t, dErrors.Is(err, dErrors.CodeUnavailable))
}

func TestGetSongBPMLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("api_key"))
		assert.Equal(t, "both", r.URL.Query().Get("type"))
		w.Write([]byte(`{"search":[{"song_id":"x","tempo":"82","key_of":"A"}]}`))
	}))
	defer srv.Close()

	p := NewGetSongBPMWithClient(srv.URL, "secret", srv.Client())
	result, err := p.Lookup(context.Background(), lookupParams())
	require.NoError(t, err)
	assert.Equal(t, 82.0, result.BPM)
	assert.Equal(t, "A", result.Key)
	assert.Equal(t, "getsongbpm", result.Source)
}

func TestGetSongBPMEmptySearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"search":[]}`))
	}))
	defer srv.Close()

	p := NewGetSongBPMWithClient(srv.URL, "secret", srv.Client())
	_, err := p.Lookup(context.Background(), lookupParams())
	require.ErrorIs(t, err, ErrNotFound)
}
