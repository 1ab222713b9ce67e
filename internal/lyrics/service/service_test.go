package service

import (
	"context"
	"log/slog"
	"testing"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scrolltunes/internal/lyrics/index"
	"scrolltunes/internal/lyrics/lrclib"
	"scrolltunes/internal/lyrics/models"
	dErrors "scrolltunes/pkg/domain-errors"
)

type fakeIndex struct {
	result *index.Result
	err    error
	calls  int
}

func (f *fakeIndex) Lookup(_ context.Context, _ models.LookupParams) (*index.Result, error) {
	f.calls++
	return f.result, f.err
}

type fakeRemote struct {
	result *lrclib.Result
	err    error
	calls  int
}

func (f *fakeRemote) Get(_ context.Context, _ models.LookupParams) (*lrclib.Result, error) {
	f.calls++
	return f.result, f.err
}

func params() models.LookupParams {
	return models.LookupParams{Artist: "John Denver", Title: "Take Me Home, Country Roads"}
}

func TestLookupRequiresArtistAndTitle(t *testing.T) {
	svc := New(nil, &fakeRemote{}, nil, nil, slog.New(slog.DiscardHandler))

	_, err := svc.Lookup(context.Background(), models.LookupParams{Artist: " ", Title: "x"})
	require.True(t, dErrors.Is(err, dErrors.CodeBadRequest))
}

func TestLookupPrefersLocalIndex(t *testing.T) {
	idx := &fakeIndex{result: &index.Result{SyncedLRC: "[00:01.00]hello"}}
	remote := &fakeRemote{}
	svc := New(idx, remote, nil, nil, slog.New(slog.DiscardHandler))

	lyrics, err := svc.Lookup(context.Background(), params())
	require.NoError(t, err)
	assert.True(t, lyrics.Synced)
	require.Len(t, lyrics.Lines, 1)
	assert.Equal(t, "hello", lyrics.Lines[0].Text)
	assert.Equal(t, "index", lyrics.Source)
	assert.Zero(t, remote.calls)
}

func TestLookupFallsBackToRemote(t *testing.T) {
	idx := &fakeIndex{err: index.ErrNotFound}
	remote := &fakeRemote{result: &lrclib.Result{Plain: "just words"}}
	svc := New(idx, remote, nil, nil, slog.New(slog.DiscardHandler))

	lyrics, err := svc.Lookup(context.Background(), params())
	require.NoError(t, err)
	assert.False(t, lyrics.Synced)
	assert.Equal(t, "just words", lyrics.Plain)
	assert.Equal(t, "lrclib", lyrics.Source)
	assert.Equal(t, 1, idx.calls)
	assert.Equal(t, 1, remote.calls)
}

func TestLookupIndexErrorStillTriesRemote(t *testing.T) {
	idx := &fakeIndex{err: context.DeadlineExceeded}
	remote := &fakeRemote{result: &lrclib.Result{Plain: "recovered"}}
	svc := New(idx, remote, nil, nil, slog.New(slog.DiscardHandler))

	lyrics, err := svc.Lookup(context.Background(), params())
	require.NoError(t, err)
	assert.Equal(t, "recovered", lyrics.Plain)
}

func TestLookupNotFoundAnywhere(t *testing.T) {
	idx := &fakeIndex{err: index.ErrNotFound}
	remote := &fakeRemote{err: lrclib.ErrNotFound}
	svc := New(idx, remote, nil, nil, slog.New(slog.DiscardHandler))

	_, err := svc.Lookup(context.Background(), params())
	require.True(t, dErrors.Is(err, dErrors.CodeNotFound))
}

func TestLookupRemoteUnavailable(t *testing.T) {
	idx := &fakeIndex{err: index.ErrNotFound}
	remote := &fakeRemote{err: dErrors.New(dErrors.CodeUnavailable, "lyrics provider unavailable")}
	svc := New(idx, remote, nil, nil, slog.New(slog.DiscardHandler))

	_, err := svc.Lookup(context.Background(), params())
	require.True(t, dErrors.Is(err, dErrors.CodeUnavailable))
}

func TestLookupInstrumental(t *testing.T) {
	idx := &fakeIndex{result: &index.Result{Instrumental: true}}
	svc := New(idx, &fakeRemote{}, nil, nil, slog.New(slog.DiscardHandler))

	lyrics, err := svc.Lookup(context.Background(), params())
	require.NoError(t, err)
	assert.True(t, lyrics.Instrumental)
	assert.False(t, lyrics.Synced)
}

func TestLookupNilIndexGoesStraightToRemote(t *testing.T) {
	remote := &fakeRemote{result: &lrclib.Result{Plain: "words"}}
	svc := New(nil, remote, nil, nil, slog.New(slog.DiscardHandler))

	lyrics, err := svc.Lookup(context.Background(), params())
	require.NoError(t, err)
	assert.Equal(t, "lrclib", lyrics.Source)
}

func TestLookupCountsCacheOutcomes(t *testing.T) {
	m := NewMetrics()
	remote := &fakeRemote{result: &lrclib.Result{Plain: "country roads"}}
	svc := New(nil, remote, nil, m, slog.New(slog.DiscardHandler))

	// No cache configured reads as a miss; the remote still resolves.
	lyrics, err := svc.Lookup(context.Background(), params())
	require.NoError(t, err)
	assert.Equal(t, "country roads", lyrics.Plain)
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.CacheRequests.WithLabelValues("miss")))
	assert.Zero(t, promtestutil.ToFloat64(m.CacheRequests.WithLabelValues("hit")))

	m.observeCache("hit")
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.CacheRequests.WithLabelValues("hit")))
}
