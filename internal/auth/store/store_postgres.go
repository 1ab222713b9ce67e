package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"scrolltunes/internal/auth/models"
)

// PostgresUserStore persists accounts in PostgreSQL.
type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) Create(ctx context.Context, user *models.User) error {
	prefs, err := json.Marshal(user.Preferences)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, display_name, is_admin, preferences, created_at, updated_at)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8)`,
		user.ID, user.Email, user.PasswordHash, user.DisplayName, user.IsAdmin, prefs, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		// Unique violation on email surfaces as duplicate registration.
		if strings.Contains(err.Error(), "users_email_key") || strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, display_name, is_admin, preferences, created_at, updated_at
		FROM users WHERE id = $1`, id))
}

func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, display_name, is_admin, preferences, created_at, updated_at
		FROM users WHERE email = lower($1)`, email))
}

func (s *PostgresUserStore) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var prefs []byte
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.IsAdmin, &prefs, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	if len(prefs) > 0 {
		if err := json.Unmarshal(prefs, &u.Preferences); err != nil {
			return nil, fmt.Errorf("unmarshal preferences: %w", err)
		}
	}
	return &u, nil
}

func (s *PostgresUserStore) Update(ctx context.Context, user *models.User) error {
	prefs, err := json.Marshal(user.Preferences)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET display_name = $2, preferences = $3, updated_at = now()
		WHERE id = $1`,
		user.ID, user.DisplayName, prefs,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresUserStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// PostgresSessionStore persists sessions in PostgreSQL.
type PostgresSessionStore struct {
	db *sql.DB
}

func NewPostgresSessionStore(db *sql.DB) *PostgresSessionStore {
	return &PostgresSessionStore{db: db}
}

func (s *PostgresSessionStore) Create(ctx context.Context, session *models.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, refresh_token_hash, device_name, device_os, device_browser, ip, created_at, last_seen_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		session.ID, session.UserID, session.RefreshTokenHash, session.Device, session.DeviceOS,
		session.DeviceBrowser, session.IP, session.CreatedAt, session.LastSeenAt, session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

const sessionColumns = `id, user_id, refresh_token_hash, device_name, device_os, device_browser, ip, created_at, last_seen_at, expires_at, revoked_at`

func (s *PostgresSessionStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	return scanSession(s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id))
}

func (s *PostgresSessionStore) GetByRefreshHash(ctx context.Context, hash string) (*models.Session, error) {
	return scanSession(s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE refresh_token_hash = $1`, hash))
}

func scanSession(row *sql.Row) (*models.Session, error) {
	var sess models.Session
	var revokedAt sql.NullTime
	err := row.Scan(&sess.ID, &sess.UserID, &sess.RefreshTokenHash, &sess.Device, &sess.DeviceOS,
		&sess.DeviceBrowser, &sess.IP, &sess.CreatedAt, &sess.LastSeenAt, &sess.ExpiresAt, &revokedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	if revokedAt.Valid {
		t := revokedAt.Time
		sess.RevokedAt = &t
	}
	return &sess, nil
}

func (s *PostgresSessionStore) Update(ctx context.Context, session *models.Session) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET refresh_token_hash = $2, last_seen_at = $3, expires_at = $4
		WHERE id = $1`,
		session.ID, session.RefreshTokenHash, session.LastSeenAt, session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresSessionStore) Revoke(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`, id, time.Now())
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresSessionStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []*models.Session
	for rows.Next() {
		var sess models.Session
		var revokedAt sql.NullTime
		err := rows.Scan(&sess.ID, &sess.UserID, &sess.RefreshTokenHash, &sess.Device, &sess.DeviceOS,
			&sess.DeviceBrowser, &sess.IP, &sess.CreatedAt, &sess.LastSeenAt, &sess.ExpiresAt, &revokedAt)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if revokedAt.Valid {
			t := revokedAt.Time
			sess.RevokedAt = &t
		}
		out = append(out, &sess)
	}
	return out, rows.Err()
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
