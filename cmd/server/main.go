// main wires configuration, storage, domain services, and the HTTP
// router, then runs the server until interrupted. Business logic lives
// in the internal packages; this file only assembles them.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	adminhandler "scrolltunes/internal/admin/handler"
	"scrolltunes/internal/audit"
	authhandler "scrolltunes/internal/auth/handler"
	authservice "scrolltunes/internal/auth/service"
	authstore "scrolltunes/internal/auth/store"
	"scrolltunes/internal/auth/store/revocation"
	bpmcache "scrolltunes/internal/bpm/cache"
	bpmhandler "scrolltunes/internal/bpm/handler"
	"scrolltunes/internal/bpm/provider"
	bpmservice "scrolltunes/internal/bpm/service"
	"scrolltunes/internal/enrichment"
	favoriteshandler "scrolltunes/internal/favorites/handler"
	favoritesservice "scrolltunes/internal/favorites/service"
	favoritesstore "scrolltunes/internal/favorites/store"
	httpapi "scrolltunes/internal/http"
	jwttoken "scrolltunes/internal/jwt_token"
	lyricscache "scrolltunes/internal/lyrics/cache"
	lyricshandler "scrolltunes/internal/lyrics/handler"
	"scrolltunes/internal/lyrics/index"
	"scrolltunes/internal/lyrics/lrclib"
	lyricsservice "scrolltunes/internal/lyrics/service"
	"scrolltunes/internal/platform/config"
	"scrolltunes/internal/platform/httpserver"
	"scrolltunes/internal/platform/logger"
	"scrolltunes/internal/platform/metrics"
	"scrolltunes/internal/platform/postgres"
	platformredis "scrolltunes/internal/platform/redis"
	"scrolltunes/internal/platform/sqlite"
	ratelimitmw "scrolltunes/internal/ratelimit/middleware"
	ratelimitstore "scrolltunes/internal/ratelimit/store"
	setlisthandler "scrolltunes/internal/setlist/handler"
	setlistservice "scrolltunes/internal/setlist/service"
	setliststore "scrolltunes/internal/setlist/store"
	songhandler "scrolltunes/internal/song/handler"
	songservice "scrolltunes/internal/song/service"
	songstore "scrolltunes/internal/song/store"
	"scrolltunes/internal/speech/google"
	speechhandler "scrolltunes/internal/speech/handler"
	speechservice "scrolltunes/internal/speech/service"
	voicegatehandler "scrolltunes/internal/voicegate/handler"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Env)

	// Storage. Postgres and Redis are both optional: without them the
	// server runs on in-memory stores, which is how tests and local
	// development operate.
	db, err := postgres.Open(cfg.Postgres)
	if err != nil {
		log.Error("failed to open postgres", "error", err)
		os.Exit(1)
	}
	if db != nil {
		if err := postgres.Migrate(cfg.Postgres.URL); err != nil {
			log.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	m := metrics.New()

	// Auth.
	var users authstore.UserStore
	var sessions authstore.SessionStore
	var revocations revocation.Store
	if db != nil {
		users = authstore.NewPostgresUserStore(db)
		sessions = authstore.NewPostgresSessionStore(db)
	} else {
		users = authstore.NewMemoryUserStore()
		sessions = authstore.NewMemorySessionStore()
	}
	if redisClient != nil {
		revocations = revocation.NewRedisStore(redisClient.Client)
	} else {
		revocations = revocation.NewMemoryStore()
	}

	jwtService := jwttoken.NewJWTService(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.Audience)
	authSvc := authservice.New(users, sessions, revocations, jwtService, m, log,
		cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	// Song catalog.
	var songs songstore.Store
	if db != nil {
		songs = songstore.NewPostgresStore(db)
	} else {
		songs = songstore.NewMemoryStore()
	}
	var recents songstore.RecentsStore
	if redisClient != nil {
		recents = songstore.NewRedisRecentsStore(redisClient.Client)
	} else {
		recents = songstore.NewMemoryRecentsStore()
	}
	songSvc := songservice.New(songs, recents, authSvc, m, log)

	// Favorites and setlists.
	var favorites favoritesstore.Store
	if db != nil {
		favorites = favoritesstore.NewPostgresStore(db)
	} else {
		favorites = favoritesstore.NewMemoryStore()
	}
	favoritesSvc := favoritesservice.New(favorites, songs)

	var setlists setliststore.Store
	if db != nil {
		setlists = setliststore.NewPostgresStore(db)
	} else {
		setlists = setliststore.NewMemoryStore()
	}
	setlistSvc := setlistservice.New(setlists, songs)

	// Lyrics: local snapshot first, LRCLIB as fallback.
	var lyricsIndex lyricsservice.IndexLookup
	if cfg.Lyrics.IndexPath != "" {
		indexDB, err := sqlite.OpenReadOnly(cfg.Lyrics.IndexPath)
		if err != nil {
			log.Error("failed to open lyrics index", "error", err, "path", cfg.Lyrics.IndexPath)
			os.Exit(1)
		}
		if indexDB != nil {
			defer indexDB.Close()
			lyricsIndex = index.New(indexDB)
		}
	}
	redisRaw := rawRedis(redisClient)
	lyricsSvc := lyricsservice.New(
		lyricsIndex,
		lrclib.New(cfg.Lyrics.LRCLIBBase),
		lyricscache.New(redisRaw, cfg.Lyrics.CacheTTL),
		lyricsservice.NewMetrics(),
		log,
	)

	// Tempo cascade, in preference order.
	var providers []provider.Provider
	if cfg.Providers.SpotifyClientID != "" && cfg.Providers.SpotifyClientSecret != "" {
		providers = append(providers, provider.NewSpotify(cfg.Providers.SpotifyClientID, cfg.Providers.SpotifyClientSecret))
	}
	providers = append(providers, provider.NewDeezer())
	if cfg.Providers.GetSongBPMKey != "" {
		providers = append(providers, provider.NewGetSongBPM(cfg.Providers.GetSongBPMKey))
	}
	bpmSvc := bpmservice.New(providers, bpmcache.New(redisRaw, cfg.BPM.CacheTTL), bpmservice.Options{
		ProviderTimeout: cfg.BPM.ProviderTimeout,
		Race:            cfg.BPM.Race,
		RaceDelay:       cfg.BPM.RaceDelay,
		ProviderRate:    cfg.BPM.ProviderRate,
	}, bpmservice.NewMetrics(), log)

	// Voice.
	var recognizer speechservice.Recognizer
	if cfg.Providers.GoogleSpeechKey != "" {
		recognizer = google.New(cfg.Providers.GoogleSpeechKey)
	}
	speechSvc := speechservice.New(recognizer, log)

	// Audit pipeline.
	var auditStore audit.Store
	if db != nil {
		auditStore = audit.NewPostgresStore(db)
	} else {
		auditStore = audit.NewMemoryStore()
	}
	var auditSink audit.Sink
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			log.Error("failed to create kafka sink", "error", err)
			os.Exit(1)
		}
		defer kafkaSink.Close()
		auditSink = kafkaSink
	}
	auditInbox := make(chan audit.Event, 256)
	auditPublisher := audit.NewPublisher(auditInbox, log)
	auditWorker := audit.NewWorker(auditStore, auditSink, auditInbox, log)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	workerDone := make(chan struct{})
	go func() {
		auditWorker.Run(workerCtx)
		close(workerDone)
	}()

	// Nightly tempo backfill.
	enricher := enrichment.New(songs, bpmSvc, auditPublisher, enrichment.Options{
		CronSpec:   cfg.Enrichment.CronSpec,
		Workers:    cfg.Enrichment.Workers,
		RatePerSec: cfg.Enrichment.RatePerSec,
	}, log)
	if err := enricher.Start(); err != nil {
		log.Error("failed to start enrichment schedule", "error", err)
		os.Exit(1)
	}
	defer enricher.Stop()

	// Rate limiting: shared window in Redis when available.
	var limiterStore ratelimitstore.Store
	if redisClient != nil {
		limiterStore = ratelimitstore.NewRedisStore(redisClient.Client)
	} else {
		limiterStore = ratelimitstore.NewMemoryStore()
	}
	limiter := ratelimitmw.NewLimiter(limiterStore, nil, m, log)

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:    log,
		Auth:      authhandler.New(authSvc, log),
		Songs:     songhandler.New(log, songSvc),
		Favorites: favoriteshandler.New(log, favoritesSvc),
		Setlists:  setlisthandler.New(log, setlistSvc),
		Lyrics:    lyricshandler.New(log, lyricsSvc),
		BPM:       bpmhandler.New(log, bpmSvc),
		Speech:    speechhandler.New(log, speechSvc),
		Voicegate: voicegatehandler.New(log),
		Admin: adminhandler.New(log, songSvc, enricher,
			userCounter{users}, favorites, setlists, auditStore, auditPublisher),

		JWT:        jwttoken.NewJWTServiceAdapter(jwtService),
		Revocation: revocations,
		AdminToken: cfg.AdminToken,
		Limiter:    limiter,
		Metrics:    m,
	})

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting scrolltunes", "addr", cfg.Addr, "env", cfg.Env)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}

	stopWorker()
	<-workerDone
}

// userCounter adapts the user store to the admin stats surface.
type userCounter struct {
	users authstore.UserStore
}

func (c userCounter) Count(ctx context.Context) (int, error) {
	return c.users.Count(ctx)
}

// rawRedis unwraps the platform client for packages that take the
// go-redis client directly. Nil-safe.
func rawRedis(c *platformredis.Client) *redis.Client {
	if c == nil {
		return nil
	}
	return c.Client
}
