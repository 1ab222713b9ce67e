// Package models holds the tempo lookup types.
package models

// Result is a resolved tempo. Key and TimeSignature are filled only when
// the provider exposes them.
type Result struct {
	BPM           float64 `json:"bpm"`
	Key           string  `json:"key,omitempty"`
	TimeSignature int     `json:"time_signature,omitempty"`
	Source        string  `json:"source"`
}

// LookupParams identify a track for tempo lookup.
type LookupParams struct {
	Artist string
	Title  string
}
