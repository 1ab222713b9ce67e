package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"scrolltunes/internal/audit"
	"scrolltunes/internal/song/models"
	songservice "scrolltunes/internal/song/service"
	songstore "scrolltunes/internal/song/store"
)

type fixedCount int

func (c fixedCount) Count(_ context.Context) (int, error) { return int(c), nil }

type testEnv struct {
	router *chi.Mux
	songs  *songservice.Service
	store  *songstore.MemoryStore
	events *audit.MemoryStore
	inbox  chan audit.Event
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	store := songstore.NewMemoryStore()
	songs := songservice.New(store, nil, nil, nil, logger)

	events := audit.NewMemoryStore()
	inbox := make(chan audit.Event, 16)
	recorder := audit.NewPublisher(inbox, logger)

	h := New(logger, songs, nil, fixedCount(7), fixedCount(3), fixedCount(2), events, recorder)
	router := chi.NewRouter()
	router.Route("/admin", h.Register)

	return &testEnv{router: router, songs: songs, store: store, events: events, inbox: inbox}
}

func (e *testEnv) submitPending(t *testing.T, title string) *models.Song {
	t.Helper()
	song, err := e.songs.Submit(context.Background(), uuid.New(), models.SubmitRequest{
		Title:  title,
		Artist: "Artist",
		Lyrics: "[G]la",
	})
	require.NoError(t, err)
	return song
}

func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestQueueDefaultsToPending(t *testing.T) {
	env := newTestEnv(t)
	env.submitPending(t, "Waiting")
	approved := env.submitPending(t, "Done")
	require.NoError(t, env.songs.Approve(context.Background(), approved.ID))

	rec := env.do(http.MethodGet, "/admin/songs", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	songs := gjson.Get(rec.Body.String(), "songs")
	require.Equal(t, int64(1), songs.Get("#").Int())
	assert.Equal(t, "Waiting", songs.Get("0.title").String())
}

func TestQueueRejectsUnknownStatus(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/admin/songs?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApproveEmitsAuditEvent(t *testing.T) {
	env := newTestEnv(t)
	song := env.submitPending(t, "Candidate")

	rec := env.do(http.MethodPost, "/admin/songs/"+song.ID.String()+"/approve", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	got, err := env.store.GetByID(context.Background(), song.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)

	event := <-env.inbox
	assert.Equal(t, audit.ActionSongApproved, event.Action)
	assert.Equal(t, song.ID, event.SongID)
}

func TestRejectRequiresReason(t *testing.T) {
	env := newTestEnv(t)
	song := env.submitPending(t, "Candidate")

	rec := env.do(http.MethodPost, "/admin/songs/"+song.ID.String()+"/reject", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/admin/songs/"+song.ID.String()+"/reject",
		map[string]string{"reason": "duplicate of an existing entry"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	got, err := env.store.GetByID(context.Background(), song.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, got.Status)
	assert.Equal(t, "duplicate of an existing entry", got.RejectReason)
}

func TestApproveUnknownSong(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodPost, "/admin/songs/"+uuid.NewString()+"/approve", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEnrichNotConfigured(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodPost, "/admin/enrich", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStats(t *testing.T) {
	env := newTestEnv(t)
	env.submitPending(t, "One")
	approved := env.submitPending(t, "Two")
	require.NoError(t, env.songs.Approve(context.Background(), approved.ID))

	rec := env.do(http.MethodGet, "/admin/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Equal(t, int64(7), gjson.Get(body, "users").Int())
	assert.Equal(t, int64(3), gjson.Get(body, "favorites").Int())
	assert.Equal(t, int64(2), gjson.Get(body, "setlists").Int())
	assert.Equal(t, int64(1), gjson.Get(body, "songs.pending").Int())
	assert.Equal(t, int64(1), gjson.Get(body, "songs.approved").Int())
}

func TestAuditTail(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.events.Append(context.Background(), audit.Event{Action: audit.ActionSongApproved}))

	rec := env.do(http.MethodGet, "/admin/audit", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), gjson.Get(rec.Body.String(), "events.#").Int())
}
