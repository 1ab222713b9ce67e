// Package models holds the song catalog types.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Status is the moderation state of a catalog entry.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Song is a catalog entry. Lyrics contain inline chord markers in square
// brackets, e.g. "[G]Country roads, [Em]take me home".
type Song struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Artist          string    `json:"artist"`
	Album           string    `json:"album,omitempty"`
	DurationSeconds int       `json:"duration_seconds,omitempty"`
	BPM             *float64  `json:"bpm,omitempty"`
	BPMSource       string    `json:"bpm_source,omitempty"`
	Key             string    `json:"key,omitempty"`
	Lyrics          string    `json:"lyrics"`
	Status          Status    `json:"status"`
	RejectReason    string    `json:"reject_reason,omitempty"`
	SubmittedBy     uuid.UUID `json:"submitted_by,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Summary is the compact shape used in lists (search results, favorites,
// setlist entries).
type Summary struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Artist          string    `json:"artist"`
	DurationSeconds int       `json:"duration_seconds,omitempty"`
	BPM             *float64  `json:"bpm,omitempty"`
	Key             string    `json:"key,omitempty"`
}

// Summarize converts a Song to its list shape.
func (s *Song) Summarize() Summary {
	return Summary{
		ID:              s.ID,
		Title:           s.Title,
		Artist:          s.Artist,
		DurationSeconds: s.DurationSeconds,
		BPM:             s.BPM,
		Key:             s.Key,
	}
}

// SubmitRequest is the POST /v1/songs body.
type SubmitRequest struct {
	Title           string `json:"title"`
	Artist          string `json:"artist"`
	Album           string `json:"album"`
	DurationSeconds int    `json:"duration_seconds"`
	Key             string `json:"key"`
	Lyrics          string `json:"lyrics"`
}

// SearchParams filters the approved catalog.
type SearchParams struct {
	Query  string
	Artist string
	Limit  int
	Offset int
}

// SearchResult wraps a search response page.
type SearchResult struct {
	Songs  []Summary `json:"songs"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
}
