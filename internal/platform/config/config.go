// Package config builds the service configuration. Environment variables are
// the source of truth; an optional TOML file fills in anything the
// environment leaves unset so local development can keep secrets in a file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config captures everything the server needs at startup.
type Config struct {
	Addr       string `toml:"addr"`
	Env        string `toml:"env"`
	AdminToken string `toml:"admin_token"`

	JWT        JWTConfig        `toml:"jwt"`
	Postgres   PostgresConfig   `toml:"postgres"`
	Redis      RedisConfig      `toml:"redis"`
	Lyrics     LyricsConfig     `toml:"lyrics"`
	Providers  ProvidersConfig  `toml:"providers"`
	BPM        BPMConfig        `toml:"bpm"`
	Kafka      KafkaConfig      `toml:"kafka"`
	Enrichment EnrichmentConfig `toml:"enrichment"`
}

// JWTConfig configures access token signing.
type JWTConfig struct {
	SigningKey string        `toml:"signing_key"`
	Issuer     string        `toml:"issuer"`
	Audience   string        `toml:"audience"`
	AccessTTL  time.Duration `toml:"access_ttl"`
	RefreshTTL time.Duration `toml:"refresh_ttl"`
}

// PostgresConfig configures the primary relational store.
type PostgresConfig struct {
	URL          string `toml:"url"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// RedisConfig configures the cache / rate counter store.
type RedisConfig struct {
	URL          string        `toml:"url"`
	PoolSize     int           `toml:"pool_size"`
	MinIdleConns int           `toml:"min_idle_conns"`
	DialTimeout  time.Duration `toml:"dial_timeout"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
}

// LyricsConfig points at the read-only lyrics index and the LRCLIB API.
type LyricsConfig struct {
	IndexPath  string        `toml:"index_path"`
	LRCLIBBase string        `toml:"lrclib_base"`
	CacheTTL   time.Duration `toml:"cache_ttl"`
}

// ProvidersConfig holds credentials for third-party lookups.
type ProvidersConfig struct {
	SpotifyClientID     string `toml:"spotify_client_id"`
	SpotifyClientSecret string `toml:"spotify_client_secret"`
	GetSongBPMKey       string `toml:"getsongbpm_key"`
	GoogleSpeechKey     string `toml:"google_speech_key"`
}

// BPMConfig tunes the tempo lookup cascade.
type BPMConfig struct {
	ProviderTimeout time.Duration `toml:"provider_timeout"`
	Race            bool          `toml:"race"`
	RaceDelay       time.Duration `toml:"race_delay"`
	CacheTTL        time.Duration `toml:"cache_ttl"`
	ProviderRate    float64       `toml:"provider_rate"`
}

// KafkaConfig configures the optional audit event mirror.
type KafkaConfig struct {
	Brokers    []string `toml:"brokers"`
	AuditTopic string   `toml:"audit_topic"`
}

// EnrichmentConfig tunes the scheduled BPM backfill.
type EnrichmentConfig struct {
	CronSpec   string  `toml:"cron_spec"`
	Workers    int     `toml:"workers"`
	RatePerSec float64 `toml:"rate_per_sec"`
}

// FromEnv builds a Config from the environment. A .env file in the working
// directory is loaded first when present; a missing file is not an error.
func FromEnv() Config {
	_ = godotenv.Load()

	cfg := Config{
		Addr:       envStr("SCROLLTUNES_ADDR", ":8080"),
		Env:        envStr("SCROLLTUNES_ENV", "development"),
		AdminToken: os.Getenv("SCROLLTUNES_ADMIN_TOKEN"),
		JWT: JWTConfig{
			SigningKey: envStr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			Issuer:     envStr("JWT_ISSUER", "scrolltunes"),
			Audience:   envStr("JWT_AUDIENCE", "scrolltunes-api"),
			AccessTTL:  envDuration("JWT_ACCESS_TTL", 15*time.Minute),
			RefreshTTL: envDuration("JWT_REFRESH_TTL", 30*24*time.Hour),
		},
		Postgres: PostgresConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Lyrics: LyricsConfig{
			IndexPath:  os.Getenv("LYRICS_INDEX_PATH"),
			LRCLIBBase: envStr("LRCLIB_BASE_URL", "https://lrclib.net"),
			CacheTTL:   envDuration("LYRICS_CACHE_TTL", 7*24*time.Hour),
		},
		Providers: ProvidersConfig{
			SpotifyClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
			SpotifyClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
			GetSongBPMKey:       os.Getenv("GETSONGBPM_API_KEY"),
			GoogleSpeechKey:     os.Getenv("GOOGLE_SPEECH_API_KEY"),
		},
		BPM: BPMConfig{
			ProviderTimeout: envDuration("BPM_PROVIDER_TIMEOUT", 4*time.Second),
			Race:            os.Getenv("BPM_RACE") == "true",
			RaceDelay:       envDuration("BPM_RACE_DELAY", 800*time.Millisecond),
			CacheTTL:        envDuration("BPM_CACHE_TTL", 30*24*time.Hour),
			ProviderRate:    envFloat("BPM_PROVIDER_RATE", 5),
		},
		Kafka: KafkaConfig{
			Brokers:    envList("KAFKA_BROKERS"),
			AuditTopic: envStr("KAFKA_AUDIT_TOPIC", "scrolltunes.audit"),
		},
		Enrichment: EnrichmentConfig{
			CronSpec:   envStr("ENRICHMENT_CRON", "0 3 * * *"),
			Workers:    envInt("ENRICHMENT_WORKERS", 4),
			RatePerSec: envFloat("ENRICHMENT_RATE", 2),
		},
	}

	if path := os.Getenv("SCROLLTUNES_CONFIG"); path != "" {
		// File values fill gaps only; the environment always wins.
		if err := cfg.applyFile(path); err != nil {
			panic(fmt.Sprintf("load config file %s: %v", path, err))
		}
	}

	return cfg
}

// applyFile merges TOML values into unset fields.
func (c *Config) applyFile(path string) error {
	var file Config
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return err
	}
	if c.AdminToken == "" {
		c.AdminToken = file.AdminToken
	}
	if c.Postgres.URL == "" {
		c.Postgres.URL = file.Postgres.URL
	}
	if c.Redis.URL == "" {
		c.Redis.URL = file.Redis.URL
	}
	if c.Lyrics.IndexPath == "" {
		c.Lyrics.IndexPath = file.Lyrics.IndexPath
	}
	if c.Providers.SpotifyClientID == "" {
		c.Providers.SpotifyClientID = file.Providers.SpotifyClientID
	}
	if c.Providers.SpotifyClientSecret == "" {
		c.Providers.SpotifyClientSecret = file.Providers.SpotifyClientSecret
	}
	if c.Providers.GetSongBPMKey == "" {
		c.Providers.GetSongBPMKey = file.Providers.GetSongBPMKey
	}
	if c.Providers.GoogleSpeechKey == "" {
		c.Providers.GoogleSpeechKey = file.Providers.GoogleSpeechKey
	}
	if len(c.Kafka.Brokers) == 0 {
		c.Kafka.Brokers = file.Kafka.Brokers
	}
	return nil
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
