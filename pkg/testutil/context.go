package testutil

import (
	"net/http"

	"scrolltunes/internal/platform/middleware"
)

// WithUser attaches an authenticated user and session to the request context,
// simulating what the auth middleware does for a valid bearer token.
func WithUser(req *http.Request, userID, sessionID string) *http.Request {
	ctx := middleware.WithUser(req.Context(), userID, sessionID)
	return req.WithContext(ctx)
}
