//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scrolltunes/internal/song/models"
	"scrolltunes/pkg/testutil/containers"
)

func newSong(title, artist string, status models.Status) *models.Song {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Song{
		ID:        uuid.New(),
		Title:     title,
		Artist:    artist,
		Lyrics:    "[G]la [C]la",
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestPostgresSongStore(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	store := NewPostgresStore(pg.DB)
	ctx := context.Background()

	t.Run("create and get roundtrip", func(t *testing.T) {
		require.NoError(t, pg.Truncate(ctx, "songs"))

		song := newSong("Hallelujah", "Leonard Cohen", models.StatusPending)
		require.NoError(t, store.Create(ctx, song))

		got, err := store.GetByID(ctx, song.ID)
		require.NoError(t, err)
		assert.Equal(t, song.Title, got.Title)
		assert.Equal(t, models.StatusPending, got.Status)
		assert.Nil(t, got.BPM)
		assert.Equal(t, uuid.Nil, got.SubmittedBy)
	})

	t.Run("get unknown returns not found", func(t *testing.T) {
		_, err := store.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("search matches approved only", func(t *testing.T) {
		require.NoError(t, pg.Truncate(ctx, "songs"))

		approved := newSong("Wonderwall", "Oasis", models.StatusApproved)
		pending := newSong("Wonderwall Cover", "Someone", models.StatusPending)
		require.NoError(t, store.Create(ctx, approved))
		require.NoError(t, store.Create(ctx, pending))

		found, err := store.Search(ctx, models.SearchParams{Query: "wonder", Limit: 10})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, approved.ID, found[0].ID)
	})

	t.Run("set bpm clears from missing list", func(t *testing.T) {
		require.NoError(t, pg.Truncate(ctx, "songs"))

		song := newSong("Clocks", "Coldplay", models.StatusApproved)
		require.NoError(t, store.Create(ctx, song))

		missing, err := store.ListMissingBPM(ctx, 10)
		require.NoError(t, err)
		require.Len(t, missing, 1)

		require.NoError(t, store.SetBPM(ctx, song.ID, 131, "deezer"))

		missing, err = store.ListMissingBPM(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, missing)

		got, err := store.GetByID(ctx, song.ID)
		require.NoError(t, err)
		require.NotNil(t, got.BPM)
		assert.InDelta(t, 131, *got.BPM, 0.01)
		assert.Equal(t, "deezer", got.BPMSource)
	})

	t.Run("set status records reason", func(t *testing.T) {
		require.NoError(t, pg.Truncate(ctx, "songs"))

		song := newSong("Untitled", "Unknown", models.StatusPending)
		require.NoError(t, store.Create(ctx, song))
		require.NoError(t, store.SetStatus(ctx, song.ID, models.StatusRejected, "incomplete lyrics"))

		got, err := store.GetByID(ctx, song.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, got.Status)
		assert.Equal(t, "incomplete lyrics", got.RejectReason)
	})

	t.Run("count by status", func(t *testing.T) {
		require.NoError(t, pg.Truncate(ctx, "songs"))

		require.NoError(t, store.Create(ctx, newSong("A", "X", models.StatusPending)))
		require.NoError(t, store.Create(ctx, newSong("B", "X", models.StatusPending)))
		require.NoError(t, store.Create(ctx, newSong("C", "X", models.StatusApproved)))

		counts, err := store.CountByStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, counts[models.StatusPending])
		assert.Equal(t, 1, counts[models.StatusApproved])
	})

	t.Run("delete removes the row", func(t *testing.T) {
		song := newSong("Gone", "X", models.StatusPending)
		require.NoError(t, store.Create(ctx, song))
		require.NoError(t, store.Delete(ctx, song.ID))

		_, err := store.GetByID(ctx, song.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, store.Delete(ctx, song.ID), ErrNotFound)
	})
}
