// Package store defines the persistence interfaces for accounts and
// sessions, with memory and Postgres implementations.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"scrolltunes/internal/auth/models"
)

var (
	// ErrNotFound is returned when no row matches.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserStore persists accounts.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
}

// SessionStore persists login sessions.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
	GetByRefreshHash(ctx context.Context, hash string) (*models.Session, error)
	Update(ctx context.Context, session *models.Session) error
	Revoke(ctx context.Context, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Session, error)
}
