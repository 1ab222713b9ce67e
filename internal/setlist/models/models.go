// Package models holds the setlist types.
package models

import (
	"time"

	"github.com/google/uuid"

	songmodels "scrolltunes/internal/song/models"
)

// Setlist is an ordered collection of songs for a performance.
type Setlist struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"-"`
	Name      string    `json:"name"`
	Entries   []Entry   `json:"entries,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Entry is one slot in a setlist. Positions are dense, starting at 0.
type Entry struct {
	Position    int       `json:"position"`
	SongID      uuid.UUID `json:"song_id"`
	Transpose   int       `json:"transpose,omitempty"`
	ScrollSpeed float64   `json:"scroll_speed,omitempty"`
}

// ResolvedEntry is an entry joined with its song summary for responses.
type ResolvedEntry struct {
	Entry
	Song *songmodels.Summary `json:"song,omitempty"`
}

// Summary is the list shape for GET /v1/setlists.
type Summary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	SongCount int       `json:"song_count"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateRequest is the POST /v1/setlists body.
type CreateRequest struct {
	Name string `json:"name"`
}

// UpdateRequest is the PUT /v1/setlists/{id} body. A nil Entries leaves
// the song list untouched; an empty slice clears it.
type UpdateRequest struct {
	Name    *string        `json:"name,omitempty"`
	Entries []EntryRequest `json:"entries"`
}

// EntryRequest is one slot in an update. Order in the slice is the order
// in the setlist.
type EntryRequest struct {
	SongID      uuid.UUID `json:"song_id"`
	Transpose   int       `json:"transpose"`
	ScrollSpeed float64   `json:"scroll_speed"`
}
