// Package models holds the lyrics lookup types.
package models

// Line is one synced lyric line with its timestamp in milliseconds.
type Line struct {
	TimeMs int    `json:"time_ms"`
	Text   string `json:"text"`
}

// Lyrics is a lookup result. Synced results carry timestamped lines;
// plain-only results carry just the text.
type Lyrics struct {
	Synced       bool   `json:"synced"`
	Lines        []Line `json:"lines,omitempty"`
	Plain        string `json:"plain,omitempty"`
	Instrumental bool   `json:"instrumental,omitempty"`
	Source       string `json:"source"`
}

// LookupParams identify a track for lookup. Duration is in seconds and
// optional; when present it disambiguates covers and live versions.
type LookupParams struct {
	Artist   string
	Title    string
	Album    string
	Duration int
}
