// Package models holds the account and session types shared by the auth
// handler, service and stores.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account row. PasswordHash never leaves the service layer.
type User struct {
	ID           uuid.UUID   `json:"id"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	DisplayName  string      `json:"display_name"`
	IsAdmin      bool        `json:"is_admin"`
	Preferences  Preferences `json:"preferences"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Preferences is the teleprompter settings blob stored as JSONB.
type Preferences struct {
	ScrollSpeed float64 `json:"scroll_speed,omitempty"`
	FontSize    int     `json:"font_size,omitempty"`
	ShowChords  bool    `json:"show_chords,omitempty"`
	Capo        int     `json:"capo,omitempty"`
	Theme       string  `json:"theme,omitempty"`
}

// Session is a login session. RefreshTokenHash is the SHA-256 of the opaque
// refresh token; the plaintext is only ever returned once at login.
type Session struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	RefreshTokenHash string
	Device           string
	DeviceOS         string
	DeviceBrowser    string
	IP               string
	CreatedAt        time.Time
	LastSeenAt       time.Time
	ExpiresAt        time.Time
	RevokedAt        *time.Time
}

// Revoked reports whether the session has been explicitly revoked.
func (s *Session) Revoked() bool { return s.RevokedAt != nil }

// Expired reports whether the session's refresh window has passed.
func (s *Session) Expired(now time.Time) bool { return now.After(s.ExpiresAt) }

// SignupRequest is the POST /v1/auth/signup body.
type SignupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest is the POST /v1/auth/login body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest is the POST /v1/auth/refresh body.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// UpdateProfileRequest is the PATCH /v1/me body. Nil fields are unchanged.
type UpdateProfileRequest struct {
	DisplayName *string      `json:"display_name"`
	Preferences *Preferences `json:"preferences"`
}
