package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"scrolltunes/internal/setlist/models"
)

// PostgresStore persists setlists in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, setlist *models.Setlist) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO setlists (id, user_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		setlist.ID, setlist.UserID, setlist.Name, setlist.CreatedAt, setlist.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert setlist: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Setlist, error) {
	var setlist models.Setlist
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, created_at, updated_at
		FROM setlists WHERE id = $1`, id,
	).Scan(&setlist.ID, &setlist.UserID, &setlist.Name, &setlist.CreatedAt, &setlist.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get setlist: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT position, song_id, transpose, scroll_speed
		FROM setlist_entries
		WHERE setlist_id = $1
		ORDER BY position`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("get setlist entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry models.Entry
		if err := rows.Scan(&entry.Position, &entry.SongID, &entry.Transpose, &entry.ScrollSpeed); err != nil {
			return nil, fmt.Errorf("scan setlist entry: %w", err)
		}
		setlist.Entries = append(setlist.Entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &setlist, nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.name, count(e.song_id), s.updated_at
		FROM setlists s
		LEFT JOIN setlist_entries e ON e.setlist_id = s.id
		WHERE s.user_id = $1
		GROUP BY s.id
		ORDER BY s.updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list setlists: %w", err)
	}
	defer rows.Close()

	var out []models.Summary
	for rows.Next() {
		var sum models.Summary
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.SongCount, &sum.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan setlist summary: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Rename(ctx context.Context, id uuid.UUID, name string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE setlists SET name = $2, updated_at = now() WHERE id = $1`,
		id, name,
	)
	if err != nil {
		return fmt.Errorf("rename setlist: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM setlists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete setlist: %w", err)
	}
	return requireRow(res)
}

// ReplaceEntries swaps the entry list inside a single transaction so a
// reader never observes a half-replaced setlist.
func (s *PostgresStore) ReplaceEntries(ctx context.Context, id uuid.UUID, entries []models.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE setlists SET updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("touch setlist: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM setlist_entries WHERE setlist_id = $1`, id); err != nil {
		return fmt.Errorf("clear setlist entries: %w", err)
	}

	for _, entry := range entries {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO setlist_entries (setlist_id, position, song_id, transpose, scroll_speed)
			VALUES ($1, $2, $3, $4, $5)`,
			id, entry.Position, entry.SongID, entry.Transpose, entry.ScrollSpeed,
		); err != nil {
			return fmt.Errorf("insert setlist entry: %w", err)
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM setlists`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count setlists: %w", err)
	}
	return n, nil
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
