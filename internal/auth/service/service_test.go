package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scrolltunes/internal/auth/models"
	"scrolltunes/internal/auth/store"
	"scrolltunes/internal/auth/store/revocation"
	jwttoken "scrolltunes/internal/jwt_token"
	dErrors "scrolltunes/pkg/domain-errors"
)

const testUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"

func newTestService() (*Service, *store.MemoryUserStore, *revocation.MemoryStore) {
	users := store.NewMemoryUserStore()
	sessions := store.NewMemorySessionStore()
	rev := revocation.NewMemoryStore()
	jwt := jwttoken.NewJWTService("test-key", "test-issuer", "test-audience")
	svc := New(users, sessions, rev, jwt, nil, slog.Default(), 15*time.Minute, 24*time.Hour)
	return svc, users, rev
}

func signup(t *testing.T, svc *Service) *models.User {
	t.Helper()
	user, err := svc.Signup(context.Background(), models.SignupRequest{
		Email:       "alice@example.com",
		Password:    "correct-horse",
		DisplayName: "Alice",
	})
	require.NoError(t, err)
	return user
}

func TestSignupValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Signup(ctx, models.SignupRequest{Email: "not-an-email", Password: "long-enough"})
	assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))

	_, err = svc.Signup(ctx, models.SignupRequest{Email: "a@example.com", Password: "short"})
	assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()
	signup(t, svc)

	_, err := svc.Signup(context.Background(), models.SignupRequest{
		Email:    "alice@example.com",
		Password: "another-password",
	})
	assert.True(t, dErrors.Is(err, dErrors.CodeConflict))
}

func TestLoginIssuesTokens(t *testing.T) {
	svc, _, _ := newTestService()
	user := signup(t, svc)

	tokens, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    user.Email,
		Password: "correct-horse",
	}, testUserAgent, "203.0.113.9")
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, "Bearer", tokens.TokenType)
	assert.Equal(t, int((15 * time.Minute).Seconds()), tokens.ExpiresIn)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newTestService()
	user := signup(t, svc)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    user.Email,
		Password: "wrong",
	}, testUserAgent, "")
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))

	// Unknown email yields the same error so callers cannot probe accounts.
	_, err2 := svc.Login(context.Background(), models.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever-long",
	}, testUserAgent, "")
	assert.Equal(t, err.Error(), err2.Error())
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _, _ := newTestService()
	user := signup(t, svc)
	ctx := context.Background()

	tokens, err := svc.Login(ctx, models.LoginRequest{Email: user.Email, Password: "correct-horse"}, testUserAgent, "")
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	// Old refresh token must be dead after rotation.
	_, err = svc.Refresh(ctx, tokens.RefreshToken)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))

	// New one still works.
	_, err = svc.Refresh(ctx, rotated.RefreshToken)
	require.NoError(t, err)
}

func TestLogoutRevokesSessionAndJTI(t *testing.T) {
	svc, _, rev := newTestService()
	user := signup(t, svc)
	ctx := context.Background()

	tokens, err := svc.Login(ctx, models.LoginRequest{Email: user.Email, Password: "correct-horse"}, testUserAgent, "")
	require.NoError(t, err)

	jwt := jwttoken.NewJWTService("test-key", "test-issuer", "test-audience")
	claims, err := jwt.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	sessionID := uuid.MustParse(claims.SessionID)

	require.NoError(t, svc.Logout(ctx, sessionID, claims.ID))

	revoked, err := rev.IsTokenRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	// Refresh on a revoked session fails.
	_, err = svc.Refresh(ctx, tokens.RefreshToken)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _ := newTestService()
	user := signup(t, svc)
	ctx := context.Background()

	name := "Alice Onstage"
	updated, err := svc.UpdateProfile(ctx, user.ID, models.UpdateProfileRequest{
		DisplayName: &name,
		Preferences: &models.Preferences{ScrollSpeed: 1.5, FontSize: 28, ShowChords: true},
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Onstage", updated.DisplayName)
	assert.Equal(t, 1.5, updated.Preferences.ScrollSpeed)

	// Partial update leaves preferences alone.
	other := "Alice"
	updated, err = svc.UpdateProfile(ctx, user.ID, models.UpdateProfileRequest{DisplayName: &other})
	require.NoError(t, err)
	assert.Equal(t, 28, updated.Preferences.FontSize)
}

func TestDeleteAccount(t *testing.T) {
	svc, users, _ := newTestService()
	user := signup(t, svc)
	ctx := context.Background()

	require.NoError(t, svc.DeleteAccount(ctx, user.ID, uuid.New(), "some-jti"))

	_, err := users.GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSessionsMarksCurrent(t *testing.T) {
	svc, _, _ := newTestService()
	user := signup(t, svc)
	ctx := context.Background()

	tokens, err := svc.Login(ctx, models.LoginRequest{Email: user.Email, Password: "correct-horse"}, testUserAgent, "198.51.100.7")
	require.NoError(t, err)

	jwt := jwttoken.NewJWTService("test-key", "test-issuer", "test-audience")
	claims, err := jwt.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	current := uuid.MustParse(claims.SessionID)

	result, err := svc.Sessions(ctx, user.ID, current)
	require.NoError(t, err)
	require.Len(t, result.Sessions, 1)
	assert.True(t, result.Sessions[0].IsCurrent)
	assert.Contains(t, result.Sessions[0].Device, "Firefox")
}
