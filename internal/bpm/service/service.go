// Package service resolves track tempos through a cascade of providers
// with a shared cache.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"scrolltunes/internal/bpm/cache"
	"scrolltunes/internal/bpm/models"
	"scrolltunes/internal/bpm/provider"
	dErrors "scrolltunes/pkg/domain-errors"
)

// Options tune the cascade.
type Options struct {
	// ProviderTimeout bounds each individual provider call.
	ProviderTimeout time.Duration
	// Race queries all providers concurrently with staggered starts
	// instead of strictly one after another.
	Race bool
	// RaceDelay is the stagger between provider starts in race mode, so
	// the preferred provider usually wins without the others idling.
	RaceDelay time.Duration
	// ProviderRate caps each provider's request rate (requests/second).
	ProviderRate float64
}

func (o Options) withDefaults() Options {
	if o.ProviderTimeout <= 0 {
		o.ProviderTimeout = 4 * time.Second
	}
	if o.RaceDelay <= 0 {
		o.RaceDelay = 800 * time.Millisecond
	}
	if o.ProviderRate <= 0 {
		o.ProviderRate = 5
	}
	return o
}

type limitedProvider struct {
	provider.Provider
	limiter *rate.Limiter
}

// Service runs the tempo lookup cascade. Provider order is preference
// order: earlier providers are tried first (or given a head start in
// race mode).
type Service struct {
	providers []limitedProvider
	cache     *cache.Cache
	opts      Options
	group     singleflight.Group
	metrics   *Metrics
	logger    *slog.Logger
}

func New(providers []provider.Provider, c *cache.Cache, opts Options, m *Metrics, logger *slog.Logger) *Service {
	opts = opts.withDefaults()
	limited := make([]limitedProvider, 0, len(providers))
	for _, p := range providers {
		limited = append(limited, limitedProvider{
			Provider: p,
			limiter:  rate.NewLimiter(rate.Limit(opts.ProviderRate), int(opts.ProviderRate)+1),
		})
	}
	return &Service{providers: limited, cache: c, opts: opts, metrics: m, logger: logger}
}

// Lookup resolves a track's tempo. Concurrent lookups for the same track
// collapse into one pass through the cascade.
func (s *Service) Lookup(ctx context.Context, params models.LookupParams) (*models.Result, error) {
	params.Artist = strings.TrimSpace(params.Artist)
	params.Title = strings.TrimSpace(params.Title)
	if params.Artist == "" || params.Title == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "artist and title are required")
	}
	if len(s.providers) == 0 {
		return nil, dErrors.New(dErrors.CodeUnavailable, "no tempo providers configured")
	}

	if result, err := s.cache.Get(ctx, params); err == nil {
		s.metrics.observeCache("hit")
		return result, nil
	} else if errors.Is(err, cache.ErrMiss) {
		s.metrics.observeCache("miss")
	} else {
		s.metrics.observeCache("error")
		s.logger.WarnContext(ctx, "bpm cache read failed", "error", err)
	}

	key := strings.ToLower(params.Artist) + "|" + strings.ToLower(params.Title)
	v, err, _ := s.group.Do(key, func() (any, error) {
		var result *models.Result
		var err error
		if s.opts.Race {
			result, err = s.race(ctx, params)
		} else {
			result, err = s.cascade(ctx, params)
		}
		if err != nil {
			return nil, err
		}
		if cacheErr := s.cache.Set(ctx, params, result); cacheErr != nil {
			s.logger.WarnContext(ctx, "bpm cache write failed", "error", cacheErr)
		}
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Result), nil
}

// cascade tries providers in order, moving on when one misses or fails.
func (s *Service) cascade(ctx context.Context, params models.LookupParams) (*models.Result, error) {
	sawFailure := false
	for _, p := range s.providers {
		result, err := s.query(ctx, p, params)
		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !errors.Is(err, provider.ErrNotFound) {
			sawFailure = true
			s.logger.WarnContext(ctx, "tempo provider failed",
				"provider", p.Name(), "error", err)
		}
	}
	if sawFailure {
		return nil, dErrors.New(dErrors.CodeUnavailable, "tempo providers unavailable")
	}
	return nil, dErrors.New(dErrors.CodeNotFound, "tempo not found")
}

// race starts every provider with a stagger and takes the first hit.
// Preference still matters: provider i starts i*RaceDelay late, so the
// primary usually answers before the fallbacks fire at all.
func (s *Service) race(ctx context.Context, params models.LookupParams) (*models.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		result *models.Result
		err    error
	}
	results := make(chan outcome, len(s.providers))

	for i, p := range s.providers {
		go func(delay time.Duration, p limitedProvider) {
			if delay > 0 {
				select {
				case <-time.After(delay):
				case <-ctx.Done():
					results <- outcome{err: ctx.Err()}
					return
				}
			}
			result, err := s.query(ctx, p, params)
			results <- outcome{result: result, err: err}
		}(time.Duration(i)*s.opts.RaceDelay, p)
	}

	sawFailure := false
	for range s.providers {
		out := <-results
		if out.err == nil {
			return out.result, nil
		}
		if errors.Is(out.err, provider.ErrNotFound) || errors.Is(out.err, context.Canceled) {
			continue
		}
		sawFailure = true
		s.logger.WarnContext(ctx, "tempo provider failed", "error", out.err)
	}
	if sawFailure {
		return nil, dErrors.New(dErrors.CodeUnavailable, "tempo providers unavailable")
	}
	return nil, dErrors.New(dErrors.CodeNotFound, "tempo not found")
}

func (s *Service) query(ctx context.Context, p limitedProvider, params models.LookupParams) (*models.Result, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.ProviderTimeout)
	defer cancel()

	start := time.Now()
	result, err := p.Lookup(ctx, params)
	elapsed := time.Since(start).Seconds()

	switch {
	case err == nil:
		s.metrics.observe(p.Name(), "hit", elapsed)
		return result, nil
	case errors.Is(err, provider.ErrNotFound):
		s.metrics.observe(p.Name(), "miss", elapsed)
		return nil, err
	default:
		s.metrics.observe(p.Name(), "error", elapsed)
		return nil, fmt.Errorf("%s: %w", p.Name(), err)
	}
}
