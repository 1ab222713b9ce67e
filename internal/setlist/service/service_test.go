package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scrolltunes/internal/setlist/models"
	"scrolltunes/internal/setlist/store"
	songmodels "scrolltunes/internal/song/models"
	songstore "scrolltunes/internal/song/store"
	dErrors "scrolltunes/pkg/domain-errors"
)

func newTestService(t *testing.T) (*Service, *songstore.MemoryStore) {
	t.Helper()
	songs := songstore.NewMemoryStore()
	return New(store.NewMemoryStore(), songs), songs
}

func seedApprovedSong(t *testing.T, songs *songstore.MemoryStore, title string) *songmodels.Song {
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

func strptr(s string) *string { return &s }

func TestCreateValidatesName(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), uuid.New(), models.CreateRequest{Name: "   "})
	require.True(t, dErrors.Is(err, dErrors.CodeBadRequest))

	setlist, err := svc.Create(context.Background(), uuid.New(), models.CreateRequest{Name: "  Friday Gig  "})
	require.NoError(t, err)
	assert.Equal(t, "Friday Gig", setlist.Name)
	assert.Empty(t, setlist.Entries)
}

func TestGetHidesOtherUsersSetlists(t *testing.T) {
	svc, _ := newTestService(t)
	owner := uuid.New()

	setlist, err := svc.Create(context.Background(), owner, models.CreateRequest{Name: "Mine"})
	require.NoError(t, err)

	_, _, err = svc.Get(context.Background(), uuid.New(), setlist.ID)
	require.True(t, dErrors.Is(err, dErrors.CodeNotFound))

	got, _, err := svc.Get(context.Background(), owner, setlist.ID)
	require.NoError(t, err)
	assert.Equal(t, setlist.ID, got.ID)
}

func TestUpdateReplacesEntriesWithDensePositions(t *testing.T) {
	svc, songs := newTestService(t)
	owner := uuid.New()

	first := seedApprovedSong(t, songs, "Opener")
	second := seedApprovedSong(t, songs, "Closer")

	setlist, err := svc.Create(context.Background(), owner, models.CreateRequest{Name: "Show"})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), owner, setlist.ID, models.UpdateRequest{
		Entries: []models.EntryRequest{
			{SongID: second.ID, Transpose: -2},
			{SongID: first.ID, ScrollSpeed: 1.5},
		},
	})
	require.NoError(t, err)
	require.Len(t, updated.Entries, 2)
	assert.Equal(t, 0, updated.Entries[0].Position)
	assert.Equal(t, second.ID, updated.Entries[0].SongID)
	assert.Equal(t, -2, updated.Entries[0].Transpose)
	assert.Equal(t, 1, updated.Entries[1].Position)
	assert.Equal(t, first.ID, updated.Entries[1].SongID)
}

func TestUpdateRejectsUnapprovedSongs(t *testing.T) {
	svc, songs := newTestService(t)
	owner := uuid.New()

	pending := &songmodels.Song{
		ID:     uuid.New(),
		Title:  "Pending",
		Artist: "Artist",
		Lyrics: "x",
		Status: songmodels.StatusPending,
	}
	require.NoError(t, songs.Create(context.Background(), pending))

	setlist, err := svc.Create(context.Background(), owner, models.CreateRequest{Name: "Show"})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), owner, setlist.ID, models.UpdateRequest{
		Entries: []models.EntryRequest{{SongID: pending.ID}},
	})
	require.True(t, dErrors.Is(err, dErrors.CodeBadRequest))

	_, err = svc.Update(context.Background(), owner, setlist.ID, models.UpdateRequest{
		Entries: []models.EntryRequest{{SongID: uuid.New()}},
	})
	require.True(t, dErrors.Is(err, dErrors.CodeBadRequest))

	// A failed replace leaves the setlist untouched.
	got, entries, err := svc.Get(context.Background(), owner, setlist.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Entries)
	assert.Empty(t, entries)
}

func TestUpdateEmptyEntriesClearsList(t *testing.T) {
	svc, songs := newTestService(t)
	owner := uuid.New()
	song := seedApprovedSong(t, songs, "Only")

	setlist, err := svc.Create(context.Background(), owner, models.CreateRequest{Name: "Show"})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), owner, setlist.ID, models.UpdateRequest{
		Entries: []models.EntryRequest{{SongID: song.ID}},
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), owner, setlist.ID, models.UpdateRequest{
		Entries: []models.EntryRequest{},
	})
	require.NoError(t, err)
	assert.Empty(t, updated.Entries)
}

func TestUpdateRenameOnlyKeepsEntries(t *testing.T) {
	svc, songs := newTestService(t)
	owner := uuid.New()
	song := seedApprovedSong(t, songs, "Keeper")

	setlist, err := svc.Create(context.Background(), owner, models.CreateRequest{Name: "Before"})
	require.NoError(t, err)
	_, err = svc.Update(context.Background(), owner, setlist.ID, models.UpdateRequest{
		Entries: []models.EntryRequest{{SongID: song.ID}},
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), owner, setlist.ID, models.UpdateRequest{
		Name: strptr("After"),
	})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Name)
	require.Len(t, updated.Entries, 1)
}

func TestReplaceSongsSwapsWholeList(t *testing.T) {
	svc, songs := newTestService(t)
	owner := uuid.New()
	first := seedApprovedSong(t, songs, "First")
	second := seedApprovedSong(t, songs, "Second")

	setlist, err := svc.Create(context.Background(), owner, models.CreateRequest{Name: "Show"})
	require.NoError(t, err)
	_, err = svc.ReplaceSongs(context.Background(), owner, setlist.ID, []models.EntryRequest{
		{SongID: first.ID},
	})
	require.NoError(t, err)

	// The same song may appear twice; positions stay dense.
	updated, err := svc.ReplaceSongs(context.Background(), owner, setlist.ID, []models.EntryRequest{
		{SongID: second.ID, Transpose: 2},
		{SongID: second.ID},
		{SongID: first.ID},
	})
	require.NoError(t, err)
	require.Len(t, updated.Entries, 3)
	assert.Equal(t, second.ID, updated.Entries[0].SongID)
	assert.Equal(t, 2, updated.Entries[0].Transpose)
	assert.Equal(t, 1, updated.Entries[1].Position)
	assert.Equal(t, first.ID, updated.Entries[2].SongID)

	// An empty list clears the setlist.
	updated, err = svc.ReplaceSongs(context.Background(), owner, setlist.ID, []models.EntryRequest{})
	require.NoError(t, err)
	assert.Empty(t, updated.Entries)

	_, err = svc.ReplaceSongs(context.Background(), uuid.New(), setlist.ID, nil)
	require.True(t, dErrors.Is(err, dErrors.CodeNotFound))
}

func TestGetResolvesEntriesToSummaries(t *testing.T) {
	svc, songs := newTestService(t)
	owner := uuid.New()
	song := seedApprovedSong(t, songs, "Resolved")

	setlist, err := svc.Create(context.Background(), owner, models.CreateRequest{Name: "Show"})
	require.NoError(t, err)
	_, err = svc.Update(context.Background(), owner, setlist.ID, models.UpdateRequest{
		Entries: []models.EntryRequest{{SongID: song.ID}},
	})
	require.NoError(t, err)

	// A song deleted after being added still occupies its slot, without a summary.
	require.NoError(t, songs.Delete(context.Background(), song.ID))

	_, entries, err := svc.Get(context.Background(), owner, setlist.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].Song)
}

func TestDeleteOwnerOnly(t *testing.T) {
	svc, _ := newTestService(t)
	owner := uuid.New()

	setlist, err := svc.Create(context.Background(), owner, models.CreateRequest{Name: "Mine"})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), uuid.New(), setlist.ID)
	require.True(t, dErrors.Is(err, dErrors.CodeNotFound))

	require.NoError(t, svc.Delete(context.Background(), owner, setlist.ID))
	_, _, err = svc.Get(context.Background(), owner, setlist.ID)
	require.True(t, dErrors.Is(err, dErrors.CodeNotFound))
}
