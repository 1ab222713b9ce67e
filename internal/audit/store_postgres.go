package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// PostgresStore persists events in the audit_events table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (created_at, actor, action, song_id, user_id, detail)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		event.Timestamp, event.Actor, event.Action,
		nullableUUID(event.SongID), nullableUUID(event.UserID), event.Detail,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) Tail(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, actor, action, song_id, user_id, detail
		FROM audit_events
		ORDER BY id DESC
		LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("tail audit events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var event Event
		var songID, userID sql.Null[uuid.UUID]
		if err := rows.Scan(&event.ID, &event.Timestamp, &event.Actor, &event.Action,
			&songID, &userID, &event.Detail); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		if songID.Valid {
			event.SongID = songID.V
		}
		if userID.Valid {
			event.UserID = userID.V
		}
		out = append(out, event)
	}
	return out, rows.Err()
}

func nullableUUID(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id
}
