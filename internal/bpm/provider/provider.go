// Package provider defines the tempo provider interface and its
// implementations.
package provider

import (
	"context"
	"errors"

	"scrolltunes/internal/bpm/models"
)

// ErrNotFound is returned when a provider has no tempo for the track.
var ErrNotFound = errors.New("track not found")

// Provider resolves a track's tempo from one upstream source.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, params models.LookupParams) (*models.Result, error)
}
