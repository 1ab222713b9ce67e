// Package handler exposes the auth and profile endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"scrolltunes/internal/auth/models"
	"scrolltunes/internal/platform/middleware"
	dErrors "scrolltunes/pkg/domain-errors"
	"scrolltunes/pkg/platform/httputil"
)

// Service defines the auth operations the handler needs.
type Service interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.User, error)
	Login(ctx context.Context, req models.LoginRequest, userAgent, ip string) (*models.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error)
	Logout(ctx context.Context, sessionID uuid.UUID, jti string) error
	Me(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req models.UpdateProfileRequest) (*models.User, error)
	DeleteAccount(ctx context.Context, userID, sessionID uuid.UUID, jti string) error
	Sessions(ctx context.Context, userID, currentSessionID uuid.UUID) (*models.SessionsResult, error)
}

// Handler handles account endpoints.
type Handler struct {
	logger *slog.Logger
	auth   Service
}

// New creates the auth Handler.
func New(auth Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, auth: auth}
}

// RegisterPublic registers the unauthenticated endpoints.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/auth/signup", h.handleSignup)
	r.Post("/auth/login", h.handleLogin)
	r.Post("/auth/refresh", h.handleRefresh)
}

// Register registers the authenticated endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/logout", h.handleLogout)
	r.Get("/me", h.handleMe)
	r.Patch("/me", h.handleUpdateProfile)
	r.Delete("/me", h.handleDeleteAccount)
	r.Get("/me/sessions", h.handleSessions)
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	user, err := h.auth.Signup(ctx, req)
	if err != nil {
		h.logServiceError(ctx, "signup failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, user)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	tokens, err := h.auth.Login(ctx, req, r.UserAgent(), clientIP(r))
	if err != nil {
		h.logServiceError(ctx, "login failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "refresh_token is required"))
		return
	}

	tokens, err := h.auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		h.logServiceError(ctx, "token refresh failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, err := uuid.Parse(middleware.GetSessionID(ctx))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid session"))
		return
	}

	if err := h.auth.Logout(ctx, sessionID, middleware.GetJTI(ctx)); err != nil {
		h.logServiceError(ctx, "logout failed", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "logout failed"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := currentUser(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	user, err := h.auth.Me(ctx, userID)
	if err != nil {
		h.logServiceError(ctx, "profile lookup failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := currentUser(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	user, err := h.auth.UpdateProfile(ctx, userID, req)
	if err != nil {
		h.logServiceError(ctx, "profile update failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := currentUser(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	sessionID, _ := uuid.Parse(middleware.GetSessionID(ctx))

	if err := h.auth.DeleteAccount(ctx, userID, sessionID, middleware.GetJTI(ctx)); err != nil {
		h.logServiceError(ctx, "account deletion failed", err)
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := currentUser(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	sessionID, _ := uuid.Parse(middleware.GetSessionID(ctx))

	result, err := h.auth.Sessions(ctx, userID, sessionID)
	if err != nil {
		h.logServiceError(ctx, "session list failed", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to list sessions"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) logServiceError(ctx context.Context, msg string, err error) {
	attrs := []any{
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	}
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, attrs...)
		return
	}
	h.logger.WarnContext(ctx, msg, attrs...)
}

// currentUser pulls the authenticated user ID out of the context. A missing
// ID means the auth middleware was not applied.
func currentUser(ctx context.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(middleware.GetUserID(ctx))
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInternal, "authentication context error")
	}
	return id, nil
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
