// Package enrichment backfills missing song tempos on a schedule.
package enrichment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	bpmmodels "scrolltunes/internal/bpm/models"
	songmodels "scrolltunes/internal/song/models"
	dErrors "scrolltunes/pkg/domain-errors"
)

// batchSize caps how many songs one run processes.
const batchSize = 200

// SongStore is the catalog surface the enricher needs.
type SongStore interface {
	ListMissingBPM(ctx context.Context, limit int) ([]*songmodels.Song, error)
	SetBPM(ctx context.Context, id uuid.UUID, bpm float64, source string) error
}

// TempoLookup is the bpm service surface.
type TempoLookup interface {
	Lookup(ctx context.Context, params bpmmodels.LookupParams) (*bpmmodels.Result, error)
}

// Auditor records run outcomes.
type Auditor interface {
	EmitEnrichment(ctx context.Context, resolved, failed int)
}

// Options tune the backfill.
type Options struct {
	// CronSpec is the run schedule (standard 5-field cron).
	CronSpec string
	// Workers is the lookup concurrency within a run.
	Workers int
	// RatePerSec caps total provider pressure across all workers.
	RatePerSec float64
}

func (o Options) withDefaults() Options {
	if o.CronSpec == "" {
		o.CronSpec = "0 3 * * *"
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.RatePerSec <= 0 {
		o.RatePerSec = 2
	}
	return o
}

// Result summarizes one run.
type Result struct {
	Scanned  int `json:"scanned"`
	Resolved int `json:"resolved"`
	Failed   int `json:"failed"`
}

// Enricher finds approved songs without a tempo and resolves them
// through the provider cascade. Runs are mutually exclusive: a manual
// trigger during the nightly run is rejected rather than doubled up.
type Enricher struct {
	songs   SongStore
	tempo   TempoLookup
	auditor Auditor
	opts    Options
	limiter *rate.Limiter
	logger  *slog.Logger

	cron    *cron.Cron
	running atomic.Bool
}

func New(songs SongStore, tempo TempoLookup, auditor Auditor, opts Options, logger *slog.Logger) *Enricher {
	opts = opts.withDefaults()
	return &Enricher{
		songs:   songs,
		tempo:   tempo,
		auditor: auditor,
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSec), 1),
		logger:  logger,
	}
}

// Start schedules the nightly run. Stop with Stop.
func (e *Enricher) Start() error {
	e.cron = cron.New()
	_, err := e.cron.AddFunc(e.opts.CronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
		defer cancel()
		if _, err := e.Run(ctx); err != nil && !dErrors.Is(err, dErrors.CodeConflict) {
			e.logger.Error("scheduled enrichment failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule enrichment: %w", err)
	}
	e.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running job to finish.
func (e *Enricher) Stop() {
	if e.cron != nil {
		<-e.cron.Stop().Done()
	}
}

// Run executes one backfill pass. Returns CodeConflict if a run is
// already in flight.
func (e *Enricher) Run(ctx context.Context) (*Result, error) {
	if !e.running.CompareAndSwap(false, true) {
		return nil, dErrors.New(dErrors.CodeConflict, "enrichment already running")
	}
	defer e.running.Store(false)

	songs, err := e.songs.ListMissingBPM(ctx, batchSize)
	if err != nil {
		return nil, fmt.Errorf("list songs missing bpm: %w", err)
	}

	result := &Result{Scanned: len(songs)}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for _, song := range songs {
		g.Go(func() error {
			if err := e.limiter.Wait(ctx); err != nil {
				return err
			}
			ok := e.enrichOne(ctx, song)
			mu.Lock()
			if ok {
				result.Resolved++
			} else {
				result.Failed++
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return nil, err
	}

	e.logger.Info("enrichment run finished",
		"scanned", result.Scanned, "resolved", result.Resolved, "failed", result.Failed)
	if e.auditor != nil {
		e.auditor.EmitEnrichment(ctx, result.Resolved, result.Failed)
	}
	return result, nil
}

func (e *Enricher) enrichOne(ctx context.Context, song *songmodels.Song) bool {
	tempo, err := e.tempo.Lookup(ctx, bpmmodels.LookupParams{Artist: song.Artist, Title: song.Title})
	if err != nil {
		if !dErrors.Is(err, dErrors.CodeNotFound) {
			e.logger.Warn("tempo lookup failed during enrichment",
				"song_id", song.ID, "error", err)
		}
		return false
	}
	if err := e.songs.SetBPM(ctx, song.ID, tempo.BPM, tempo.Source); err != nil {
		e.logger.Warn("failed to store tempo", "song_id", song.ID, "error", err)
		return false
	}
	return true
}
