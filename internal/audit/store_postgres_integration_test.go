//go:build integration

package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scrolltunes/pkg/testutil/containers"
)

func TestPostgresAuditStore(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	store := NewPostgresStore(pg.DB)
	ctx := context.Background()

	t.Run("tail returns newest first", func(t *testing.T) {
		require.NoError(t, pg.Truncate(ctx, "audit_events"))

		for _, action := range []string{ActionSongApproved, ActionSongRejected, ActionEnrichCompleted} {
			require.NoError(t, store.Append(ctx, Event{
				Timestamp: time.Now().UTC(),
				Actor:     "admin",
				Action:    action,
			}))
		}

		events, err := store.Tail(ctx, 2)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, ActionEnrichCompleted, events[0].Action)
		assert.Equal(t, ActionSongRejected, events[1].Action)
	})

	t.Run("nil ids roundtrip as empty", func(t *testing.T) {
		require.NoError(t, pg.Truncate(ctx, "audit_events"))

		songID := uuid.New()
		require.NoError(t, store.Append(ctx, Event{
			Timestamp: time.Now().UTC(),
			Actor:     "admin",
			Action:    ActionSongApproved,
			SongID:    songID,
		}))
		require.NoError(t, store.Append(ctx, Event{
			Timestamp: time.Now().UTC(),
			Actor:     "scheduler",
			Action:    ActionEnrichCompleted,
			Detail:    "resolved=3 failed=1",
		}))

		events, err := store.Tail(ctx, 10)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, uuid.Nil, events[0].SongID)
		assert.Equal(t, "resolved=3 failed=1", events[0].Detail)
		assert.Equal(t, songID, events[1].SongID)
	})
}
