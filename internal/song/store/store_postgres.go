package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"scrolltunes/internal/song/models"
)

// PostgresStore persists the catalog in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const songColumns = `id, title, artist, album, duration_seconds, bpm, bpm_source, musical_key, lyrics, status, reject_reason, submitted_by, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, song *models.Song) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO songs (`+songColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		song.ID, song.Title, song.Artist, song.Album, song.DurationSeconds, song.BPM, song.BPMSource,
		song.Key, song.Lyrics, song.Status, song.RejectReason, nullableUUID(song.SubmittedBy),
		song.CreatedAt, song.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert song: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Song, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+songColumns+` FROM songs WHERE id = $1`, id)
	song, err := scanSong(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get song: %w", err)
	}
	return song, nil
}

func (s *PostgresStore) Update(ctx context.Context, song *models.Song) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE songs
		SET title = $2, artist = $3, album = $4, duration_seconds = $5, musical_key = $6,
		    lyrics = $7, status = $8, reject_reason = $9, updated_at = now()
		WHERE id = $1`,
		song.ID, song.Title, song.Artist, song.Album, song.DurationSeconds, song.Key,
		song.Lyrics, song.Status, song.RejectReason,
	)
	if err != nil {
		return fmt.Errorf("update song: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM songs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete song: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) Search(ctx context.Context, params models.SearchParams) ([]*models.Song, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+songColumns+` FROM songs
		WHERE status = 'approved'
		  AND ($1 = '' OR title ILIKE '%' || $1 || '%' OR artist ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR artist ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`,
		params.Query, params.Artist, params.Limit, params.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("search songs: %w", err)
	}
	return collectSongs(rows)
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status models.Status, limit, offset int) ([]*models.Song, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+songColumns+` FROM songs
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		status, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list songs by status: %w", err)
	}
	return collectSongs(rows)
}

func (s *PostgresStore) ListMissingBPM(ctx context.Context, limit int) ([]*models.Song, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+songColumns+` FROM songs
		WHERE status = 'approved' AND bpm IS NULL
		ORDER BY created_at ASC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list songs missing bpm: %w", err)
	}
	return collectSongs(rows)
}

func (s *PostgresStore) SetBPM(ctx context.Context, id uuid.UUID, bpm float64, source string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE songs SET bpm = $2, bpm_source = $3, updated_at = now() WHERE id = $1`,
		id, bpm, source,
	)
	if err != nil {
		return fmt.Errorf("set song bpm: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) SetStatus(ctx context.Context, id uuid.UUID, status models.Status, reason string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE songs SET status = $2, reject_reason = $3, updated_at = now() WHERE id = $1`,
		id, status, reason,
	)
	if err != nil {
		return fmt.Errorf("set song status: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) CountByStatus(ctx context.Context) (map[models.Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, count(*) FROM songs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count songs: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Status]int)
	for rows.Next() {
		var status models.Status
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan song count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func scanSong(scan func(...any) error) (*models.Song, error) {
	var song models.Song
	var bpm sql.NullFloat64
	var submittedBy sql.Null[uuid.UUID]
	err := scan(&song.ID, &song.Title, &song.Artist, &song.Album, &song.DurationSeconds,
		&bpm, &song.BPMSource, &song.Key, &song.Lyrics, &song.Status, &song.RejectReason,
		&submittedBy, &song.CreatedAt, &song.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if bpm.Valid {
		song.BPM = &bpm.Float64
	}
	if submittedBy.Valid {
		song.SubmittedBy = submittedBy.V
	}
	return &song, nil
}

func collectSongs(rows *sql.Rows) ([]*models.Song, error) {
	defer rows.Close()
	var out []*models.Song
	for rows.Next() {
		song, err := scanSong(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		out = append(out, song)
	}
	return out, rows.Err()
}

func nullableUUID(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
