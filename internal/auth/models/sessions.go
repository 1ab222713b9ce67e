package models

import "time"

// SessionSummary is one row in the user's session list.
type SessionSummary struct {
	SessionID    string    `json:"session_id"`
	Device       string    `json:"device"`
	IPAddress    string    `json:"ip_address,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	IsCurrent    bool      `json:"is_current"`
}

// SessionsResult wraps the session list response.
type SessionsResult struct {
	Sessions []SessionSummary `json:"sessions"`
}
