// Package audit records privileged and moderation actions.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        int64     `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	SongID    uuid.UUID `json:"song_id,omitempty"`
	UserID    uuid.UUID `json:"user_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// Actions recorded by the moderation and enrichment flows.
const (
	ActionSongApproved    = "song.approved"
	ActionSongRejected    = "song.rejected"
	ActionSongDeleted     = "song.deleted"
	ActionEnrichTriggered = "enrich.triggered"
	ActionEnrichCompleted = "enrich.completed"
	ActionUserDeleted     = "user.deleted"
)
