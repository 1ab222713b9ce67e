// Package service implements account and session flows: signup, login,
// refresh rotation, logout and profile management.
package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"scrolltunes/internal/auth/device"
	"scrolltunes/internal/auth/models"
	"scrolltunes/internal/auth/store"
	"scrolltunes/internal/auth/store/revocation"
	jwttoken "scrolltunes/internal/jwt_token"
	"scrolltunes/internal/platform/metrics"
	dErrors "scrolltunes/pkg/domain-errors"
)

const minPasswordLength = 8

// Service implements the auth flows against the injected stores.
type Service struct {
	users      store.UserStore
	sessions   store.SessionStore
	revocation revocation.Store
	jwt        *jwttoken.JWTService
	metrics    *metrics.Metrics
	logger     *slog.Logger
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func New(
	users store.UserStore,
	sessions store.SessionStore,
	rev revocation.Store,
	jwt *jwttoken.JWTService,
	m *metrics.Metrics,
	logger *slog.Logger,
	accessTTL, refreshTTL time.Duration,
) *Service {
	return &Service{
		users:      users,
		sessions:   sessions,
		revocation: rev,
		jwt:        jwt,
		metrics:    m,
		logger:     logger,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Signup registers a new account.
func (s *Service) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid email address")
	}
	if len(req.Password) < minPasswordLength {
		return nil, dErrors.New(dErrors.CodeBadRequest, "password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(hash),
		DisplayName:  req.DisplayName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if s.metrics != nil {
		s.metrics.UsersCreated.Inc()
	}
	return user, nil
}

// Login verifies credentials and opens a session. The same error is returned
// for unknown emails and wrong passwords.
func (s *Service) Login(ctx context.Context, req models.LoginRequest, userAgent, ip string) (*models.TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	refreshToken, refreshHash, err := newRefreshToken()
	if err != nil {
		return nil, err
	}

	browser, osName := device.Parts(userAgent)
	now := time.Now()
	session := &models.Session{
		ID:               uuid.New(),
		UserID:           user.ID,
		RefreshTokenHash: refreshHash,
		Device:           device.ParseUserAgent(userAgent),
		DeviceOS:         osName,
		DeviceBrowser:    browser,
		IP:               ip,
		CreatedAt:        now,
		LastSeenAt:       now,
		ExpiresAt:        now.Add(s.refreshTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	accessToken, err := s.jwt.GenerateAccessToken(user.ID, session.ID, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	return &models.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.accessTTL.Seconds()),
	}, nil
}

// Refresh rotates the refresh token and issues a new access token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	session, err := s.sessions.GetByRefreshHash(ctx, hashToken(refreshToken))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, fmt.Errorf("lookup session: %w", err)
	}

	now := time.Now()
	if session.Revoked() || session.Expired(now) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid refresh token")
	}

	newToken, newHash, err := newRefreshToken()
	if err != nil {
		return nil, err
	}
	session.RefreshTokenHash = newHash
	session.LastSeenAt = now
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}

	accessToken, err := s.jwt.GenerateAccessToken(session.UserID, session.ID, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	return &models.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: newToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.accessTTL.Seconds()),
	}, nil
}

// Logout revokes the session and blocks the current access token's jti for
// the remainder of its lifetime.
func (s *Service) Logout(ctx context.Context, sessionID uuid.UUID, jti string) error {
	if err := s.sessions.Revoke(ctx, sessionID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("revoke session: %w", err)
	}
	if s.revocation != nil && jti != "" {
		if err := s.revocation.Revoke(ctx, jti, s.accessTTL); err != nil {
			// Session is already dead; token revocation failure is logged, not fatal.
			s.logger.WarnContext(ctx, "failed to record token revocation", "error", err)
		}
	}
	return nil
}

// Me returns the account profile.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

// UpdateProfile applies partial profile updates.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.Preferences != nil {
		user.Preferences = *req.Preferences
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// DeleteAccount removes the account; owned rows cascade in Postgres.
func (s *Service) DeleteAccount(ctx context.Context, userID, sessionID uuid.UUID, jti string) error {
	if err := s.Logout(ctx, sessionID, jti); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// Sessions lists the user's sessions for the profile page.
func (s *Service) Sessions(ctx context.Context, userID, currentSessionID uuid.UUID) (*models.SessionsResult, error) {
	sessions, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	result := &models.SessionsResult{Sessions: []models.SessionSummary{}}
	for _, sess := range sessions {
		if sess.Revoked() {
			continue
		}
		result.Sessions = append(result.Sessions, models.SessionSummary{
			SessionID:    sess.ID.String(),
			Device:       sess.Device,
			IPAddress:    sess.IP,
			CreatedAt:    sess.CreatedAt,
			LastActivity: sess.LastSeenAt,
			IsCurrent:    sess.ID == currentSessionID,
		})
	}
	return result, nil
}

// IsAdmin reports whether the user has the admin flag.
func (s *Service) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.IsAdmin, nil
}

func newRefreshToken() (token, hash string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generate refresh token: %w", err)
	}
	token = hex.EncodeToString(buf)
	return token, hashToken(token), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
