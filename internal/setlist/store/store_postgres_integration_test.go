//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scrolltunes/internal/setlist/models"
	"scrolltunes/pkg/testutil/containers"
)

func seedUser(t *testing.T, pg *containers.PostgresContainer) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pg.DB.ExecContext(context.Background(), `
		INSERT INTO users (id, email, password_hash)
		VALUES ($1, $2, 'x')`, id, uuid.NewString()+"@example.com")
	require.NoError(t, err)
	return id
}

func seedSong(t *testing.T, pg *containers.PostgresContainer) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pg.DB.ExecContext(context.Background(), `
		INSERT INTO songs (id, title, artist, lyrics, status)
		VALUES ($1, 'Title', 'Artist', '[G]la', 'approved')`, id)
	require.NoError(t, err)
	return id
}

func newSetlist(userID uuid.UUID, name string) *models.Setlist {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Setlist{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestPostgresSetlistStore(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	store := NewPostgresStore(pg.DB)
	ctx := context.Background()

	t.Run("entries come back in position order", func(t *testing.T) {
		userID := seedUser(t, pg)
		first, second := seedSong(t, pg), seedSong(t, pg)

		setlist := newSetlist(userID, "Friday Gig")
		require.NoError(t, store.Create(ctx, setlist))

		require.NoError(t, store.ReplaceEntries(ctx, setlist.ID, []models.Entry{
			{Position: 0, SongID: first, Transpose: -2},
			{Position: 1, SongID: second, ScrollSpeed: 1.2},
		}))

		got, err := store.GetByID(ctx, setlist.ID)
		require.NoError(t, err)
		require.Len(t, got.Entries, 2)
		assert.Equal(t, first, got.Entries[0].SongID)
		assert.Equal(t, -2, got.Entries[0].Transpose)
		assert.InDelta(t, 1.2, got.Entries[1].ScrollSpeed, 0.001)
	})

	t.Run("replace swaps the whole list", func(t *testing.T) {
		userID := seedUser(t, pg)
		old, replacement := seedSong(t, pg), seedSong(t, pg)

		setlist := newSetlist(userID, "Rehearsal")
		require.NoError(t, store.Create(ctx, setlist))
		require.NoError(t, store.ReplaceEntries(ctx, setlist.ID, []models.Entry{
			{Position: 0, SongID: old},
		}))
		require.NoError(t, store.ReplaceEntries(ctx, setlist.ID, []models.Entry{
			{Position: 0, SongID: replacement},
		}))

		got, err := store.GetByID(ctx, setlist.ID)
		require.NoError(t, err)
		require.Len(t, got.Entries, 1)
		assert.Equal(t, replacement, got.Entries[0].SongID)
	})

	t.Run("replace on unknown setlist fails without writing", func(t *testing.T) {
		err := store.ReplaceEntries(ctx, uuid.New(), []models.Entry{
			{Position: 0, SongID: seedSong(t, pg)},
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list summaries carry song counts", func(t *testing.T) {
		userID := seedUser(t, pg)

		empty := newSetlist(userID, "Empty")
		full := newSetlist(userID, "Full")
		require.NoError(t, store.Create(ctx, empty))
		require.NoError(t, store.Create(ctx, full))
		require.NoError(t, store.ReplaceEntries(ctx, full.ID, []models.Entry{
			{Position: 0, SongID: seedSong(t, pg)},
			{Position: 1, SongID: seedSong(t, pg)},
		}))

		summaries, err := store.ListByUser(ctx, userID)
		require.NoError(t, err)
		require.Len(t, summaries, 2)

		counts := map[string]int{}
		for _, s := range summaries {
			counts[s.Name] = s.SongCount
		}
		assert.Equal(t, 0, counts["Empty"])
		assert.Equal(t, 2, counts["Full"])
	})

	t.Run("delete removes entries with the list", func(t *testing.T) {
		userID := seedUser(t, pg)
		setlist := newSetlist(userID, "Short Lived")
		require.NoError(t, store.Create(ctx, setlist))
		require.NoError(t, store.ReplaceEntries(ctx, setlist.ID, []models.Entry{
			{Position: 0, SongID: seedSong(t, pg)},
		}))

		require.NoError(t, store.Delete(ctx, setlist.ID))

		_, err := store.GetByID(ctx, setlist.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		var n int
		require.NoError(t, pg.DB.QueryRowContext(ctx,
			`SELECT count(*) FROM setlist_entries WHERE setlist_id = $1`, setlist.ID).Scan(&n))
		assert.Zero(t, n)
	})
}
