//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scrolltunes/pkg/testutil/containers"
)

// seedUserAndSong inserts the rows the favorites foreign keys point at.
func seedUserAndSong(t *testing.T, pg *containers.PostgresContainer) (userID, songID uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	userID, songID = uuid.New(), uuid.New()

	_, err := pg.DB.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash)
		VALUES ($1, $2, 'x')`, userID, uuid.NewString()+"@example.com")
	require.NoError(t, err)

	_, err = pg.DB.ExecContext(ctx, `
		INSERT INTO songs (id, title, artist, lyrics, status)
		VALUES ($1, 'Title', 'Artist', '[G]la', 'approved')`, songID)
	require.NoError(t, err)
	return userID, songID
}

func TestPostgresFavoritesStore(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	store := NewPostgresStore(pg.DB)
	ctx := context.Background()

	t.Run("add is idempotent", func(t *testing.T) {
		userID, songID := seedUserAndSong(t, pg)

		created, err := store.Add(ctx, userID, songID)
		require.NoError(t, err)
		assert.True(t, created)

		created, err = store.Add(ctx, userID, songID)
		require.NoError(t, err)
		assert.False(t, created)

		exists, err := store.Exists(ctx, userID, songID)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("list is newest first and per user", func(t *testing.T) {
		userID, firstSong := seedUserAndSong(t, pg)
		otherUser, secondSong := seedUserAndSong(t, pg)

		_, err := store.Add(ctx, userID, firstSong)
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)
		_, err = store.Add(ctx, userID, secondSong)
		require.NoError(t, err)
		_, err = store.Add(ctx, otherUser, secondSong)
		require.NoError(t, err)

		favs, err := store.ListByUser(ctx, userID)
		require.NoError(t, err)
		require.Len(t, favs, 2)
		assert.Equal(t, secondSong, favs[0].SongID)
		assert.Equal(t, firstSong, favs[1].SongID)
	})

	t.Run("remove reports whether a row was deleted", func(t *testing.T) {
		userID, songID := seedUserAndSong(t, pg)

		_, err := store.Add(ctx, userID, songID)
		require.NoError(t, err)

		removed, err := store.Remove(ctx, userID, songID)
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = store.Remove(ctx, userID, songID)
		require.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("deleting the song clears the favorite", func(t *testing.T) {
		userID, songID := seedUserAndSong(t, pg)

		_, err := store.Add(ctx, userID, songID)
		require.NoError(t, err)

		_, err = pg.DB.ExecContext(ctx, `DELETE FROM songs WHERE id = $1`, songID)
		require.NoError(t, err)

		exists, err := store.Exists(ctx, userID, songID)
		require.NoError(t, err)
		assert.False(t, exists)
	})
}
