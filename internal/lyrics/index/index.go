// Package index queries a read-only SQLite snapshot of the LRCLIB dump.
package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"scrolltunes/internal/lyrics/models"
)

// ErrNotFound is returned when the snapshot has no matching track.
var ErrNotFound = errors.New("track not in index")

// durationTolerance is how far (seconds) a track's duration may deviate
// from the requested one and still count as the same recording.
const durationTolerance = 3

// Result is a raw index hit. SyncedLRC holds unparsed LRC text.
type Result struct {
	Plain        string
	SyncedLRC    string
	Instrumental bool
}

// Index looks tracks up in the local snapshot.
type Index struct {
	db *sql.DB
}

func New(db *sql.DB) *Index {
	return &Index{db: db}
}

// Lookup finds lyrics by normalized artist and title. When a duration is
// given, candidates outside the tolerance are rejected so covers and live
// cuts don't shadow the studio version.
func (i *Index) Lookup(ctx context.Context, params models.LookupParams) (*Result, error) {
	query := `
		SELECT t.duration, l.plain_lyrics, l.synced_lyrics, l.instrumental
		FROM tracks t
		JOIN lyrics l ON l.id = t.last_lyrics_id
		WHERE t.artist_name_lower = ? AND t.name_lower = ?`
	args := []any{normalize(params.Artist), normalize(params.Title)}
	if params.Album != "" {
		query += ` AND t.album_name_lower = ?`
		args = append(args, normalize(params.Album))
	}
	query += ` ORDER BY l.synced_lyrics IS NULL, t.id LIMIT 10`

	rows, err := i.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query lyrics index: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var duration sql.NullFloat64
		var plain, synced sql.NullString
		var instrumental bool
		if err := rows.Scan(&duration, &plain, &synced, &instrumental); err != nil {
			return nil, fmt.Errorf("scan index row: %w", err)
		}
		if params.Duration > 0 && duration.Valid {
			diff := int(duration.Float64) - params.Duration
			if diff < -durationTolerance || diff > durationTolerance {
				continue
			}
		}
		return &Result{Plain: plain.String, SyncedLRC: synced.String, Instrumental: instrumental}, nil
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return nil, ErrNotFound
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
