package enrichment

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bpmmodels "scrolltunes/internal/bpm/models"
	songmodels "scrolltunes/internal/song/models"
	songstore "scrolltunes/internal/song/store"
	dErrors "scrolltunes/pkg/domain-errors"
)

type fakeTempo struct {
	mu      sync.Mutex
	results map[string]*bpmmodels.Result
	block   chan struct{}
	calls   int
}

func (f *fakeTempo) Lookup(ctx context.Context, params bpmmodels.LookupParams) (*bpmmodels.Result, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if result, ok := f.results[params.Title]; ok {
		return result, nil
	}
	return nil, dErrors.New(dErrors.CodeNotFound, "tempo not found")
}

type recordingAuditor struct {
	mu       sync.Mutex
	resolved int
	failed   int
	calls    int
}

func (a *recordingAuditor) EmitEnrichment(_ context.Context, resolved, failed int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	a.resolved = resolved
	a.failed = failed
}

func seedMissing(t *testing.T, songs *songstore.MemoryStore, title string) *songmodels.Song {
	t.Helper()
	song := &songmodels.Song{
		ID:        uuid.New(),
		Title:     title,
		Artist:    "Artist",
		Lyrics:    "[G]la",
		Status:    songmodels.StatusApproved,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, songs.Create(context.Background(), song))
	return song
}

func TestRunBackfillsMissingTempos(t *testing.T) {
	songs := songstore.NewMemoryStore()
	found := seedMissing(t, songs, "Found")
	seedMissing(t, songs, "Missing")

	tempo := &fakeTempo{results: map[string]*bpmmodels.Result{
		"Found": {BPM: 120, Source: "spotify"},
	}}
	auditor := &recordingAuditor{}
	enricher := New(songs, tempo, auditor, Options{Workers: 2, RatePerSec: 1000}, slog.New(slog.DiscardHandler))

	result, err := enricher.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Scanned)
	assert.Equal(t, 1, result.Resolved)
	assert.Equal(t, 1, result.Failed)

	got, err := songs.GetByID(context.Background(), found.ID)
	require.NoError(t, err)
	require.NotNil(t, got.BPM)
	assert.Equal(t, 120.0, *got.BPM)
	assert.Equal(t, "spotify", got.BPMSource)

	assert.Equal(t, 1, auditor.calls)
	assert.Equal(t, 1, auditor.resolved)
}

func TestRunSkipsSongsWithTempo(t *testing.T) {
	songs := songstore.NewMemoryStore()
	song := seedMissing(t, songs, "Done")
	require.NoError(t, songs.SetBPM(context.Background(), song.ID, 90, "manual"))

	tempo := &fakeTempo{}
	enricher := New(songs, tempo, nil, Options{RatePerSec: 1000}, slog.New(slog.DiscardHandler))

	result, err := enricher.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Scanned)
	assert.Zero(t, tempo.calls)
}

func TestRunsAreMutuallyExclusive(t *testing.T) {
	songs := songstore.NewMemoryStore()
	seedMissing(t, songs, "Slow")

	block := make(chan struct{})
	tempo := &fakeTempo{block: block}
	enricher := New(songs, tempo, nil, Options{RatePerSec: 1000}, slog.New(slog.DiscardHandler))

	done := make(chan struct{})
	go func() {
		_, _ = enricher.Run(context.Background())
		close(done)
	}()

	// Wait for the first run to claim the flag.
	require.Eventually(t, func() bool {
		return enricher.running.Load()
	}, time.Second, time.Millisecond)

	_, err := enricher.Run(context.Background())
	require.True(t, dErrors.Is(err, dErrors.CodeConflict))

	close(block)
	<-done

	// With the first run finished, a new run is allowed again.
	_, err = enricher.Run(context.Background())
	require.NoError(t, err)
}
