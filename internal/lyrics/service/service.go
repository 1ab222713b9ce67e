// Package service resolves lyrics through the local index, the LRCLIB
// API, and a Redis cache.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"scrolltunes/internal/lyrics/cache"
	"scrolltunes/internal/lyrics/index"
	"scrolltunes/internal/lyrics/lrc"
	"scrolltunes/internal/lyrics/lrclib"
	"scrolltunes/internal/lyrics/models"
	dErrors "scrolltunes/pkg/domain-errors"
)

// IndexLookup is the local snapshot surface.
type IndexLookup interface {
	Lookup(ctx context.Context, params models.LookupParams) (*index.Result, error)
}

// RemoteLookup is the LRCLIB API surface.
type RemoteLookup interface {
	Get(ctx context.Context, params models.LookupParams) (*lrclib.Result, error)
}

// Service resolves lyrics: cache, then local index, then remote API.
// Concurrent lookups for the same track collapse into one upstream call.
type Service struct {
	index   IndexLookup
	remote  RemoteLookup
	cache   *cache.Cache
	group   singleflight.Group
	metrics *Metrics
	logger  *slog.Logger
}

func New(idx IndexLookup, remote RemoteLookup, c *cache.Cache, m *Metrics, logger *slog.Logger) *Service {
	return &Service{index: idx, remote: remote, cache: c, metrics: m, logger: logger}
}

// Lookup finds lyrics for a track.
func (s *Service) Lookup(ctx context.Context, params models.LookupParams) (*models.Lyrics, error) {
	params.Artist = strings.TrimSpace(params.Artist)
	params.Title = strings.TrimSpace(params.Title)
	params.Album = strings.TrimSpace(params.Album)
	if params.Artist == "" || params.Title == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "artist and title are required")
	}

	if lyrics, err := s.cache.Get(ctx, params); err == nil {
		s.metrics.observeCache("hit")
		return lyrics, nil
	} else if errors.Is(err, cache.ErrMiss) {
		s.metrics.observeCache("miss")
	} else {
		s.metrics.observeCache("error")
		s.logger.WarnContext(ctx, "lyrics cache read failed", "error", err)
	}

	v, err, _ := s.group.Do(flightKey(params), func() (any, error) {
		return s.resolve(ctx, params)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Lyrics), nil
}

func (s *Service) resolve(ctx context.Context, params models.LookupParams) (*models.Lyrics, error) {
	if s.index != nil {
		hit, err := s.index.Lookup(ctx, params)
		if err == nil {
			lyrics := fromRaw(hit.Plain, hit.SyncedLRC, hit.Instrumental, "index")
			s.store(ctx, params, lyrics)
			return lyrics, nil
		}
		if !errors.Is(err, index.ErrNotFound) {
			s.logger.WarnContext(ctx, "lyrics index lookup failed", "error", err)
		}
	}

	hit, err := s.remote.Get(ctx, params)
	if err != nil {
		if errors.Is(err, lrclib.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "lyrics not found")
		}
		if dErrors.Is(err, dErrors.CodeUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("lrclib lookup: %w", err)
	}

	lyrics := fromRaw(hit.Plain, hit.SyncedLRC, hit.Instrumental, "lrclib")
	s.store(ctx, params, lyrics)
	return lyrics, nil
}

func (s *Service) store(ctx context.Context, params models.LookupParams, lyrics *models.Lyrics) {
	if err := s.cache.Set(ctx, params, lyrics); err != nil {
		s.logger.WarnContext(ctx, "lyrics cache write failed", "error", err)
	}
}

func fromRaw(plain, syncedLRC string, instrumental bool, source string) *models.Lyrics {
	out := &models.Lyrics{Plain: plain, Instrumental: instrumental, Source: source}
	if syncedLRC != "" {
		if lines := lrc.Parse(syncedLRC); len(lines) > 0 {
			out.Synced = true
			out.Lines = lines
		}
	}
	return out
}

func flightKey(params models.LookupParams) string {
	return fmt.Sprintf("%s|%s|%s|%d",
		strings.ToLower(params.Artist), strings.ToLower(params.Title),
		strings.ToLower(params.Album), params.Duration)
}
