package config

import (
	"os"
	"strconv"
	"time"
)

// Config is the full process configuration. FromEnv builds it from environment
// variables with development defaults so main stays lean.
type Config struct {
	Addr          string
	JWTSigningKey string
	SentryDSN     string

	Redis    RedisConfig
	Postgres PostgresConfig
	Session  SessionConfig
	TextGen  TextGenConfig
	STT      STTConfig
	Report   ReportConfig
	Billing  BillingConfig
	FHIR     FHIRConfig
}

// RedisConfig configures the ephemeral session store connection.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig configures the audit sink. An empty URL switches the audit
// store to the in-memory implementation (non-production).
type PostgresConfig struct {
	URL string
}

// SessionConfig bounds the lifetime of persisted session snapshots.
type SessionConfig struct {
	TTL time.Duration
}

// TextGenConfig configures the text-generation collaborator.
type TextGenConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	// RequestsPerSecond throttles outbound generation calls; zero disables.
	RequestsPerSecond float64
}

// STTConfig selects the speech-to-text backend. "stub" returns a fixed
// placeholder transcription for non-production configurations.
type STTConfig struct {
	Backend string
	BaseURL string
	APIKey  string
}

// ReportConfig configures the external regulatory reporting transmitter.
// An empty URL makes every transmission resolve to manual review.
type ReportConfig struct {
	URL   string
	Token string
}

// BillingConfig configures the external claim transmitter.
type BillingConfig struct {
	URL   string
	Token string
}

// FHIRConfig configures the optional FHIR resource poster.
type FHIRConfig struct {
	BaseURL string
	Token   string
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Addr:          envOr("SCRIBED_ADDR", ":8080"),
		JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		SentryDSN:     os.Getenv("SENTRY_DSN"),
		Redis: RedisConfig{
			URL:          envOr("REDIS_URL", "redis://localhost:6379/0"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Session: SessionConfig{
			TTL: time.Duration(envInt("TRANSCRIPT_TTL", 300)) * time.Second,
		},
		TextGen: TextGenConfig{
			BaseURL:           envOr("TEXTGEN_BASE_URL", "https://api.openai.com"),
			APIKey:            os.Getenv("TEXTGEN_API_KEY"),
			Model:             envOr("TEXTGEN_MODEL", "gpt-4o-mini"),
			RequestsPerSecond: envFloat("TEXTGEN_RPS", 5),
		},
		STT: STTConfig{
			Backend: envOr("STT_BACKEND", "stub"),
			BaseURL: os.Getenv("STT_BASE_URL"),
			APIKey:  os.Getenv("STT_API_KEY"),
		},
		Report: ReportConfig{
			URL:   os.Getenv("MADO_API_URL"),
			Token: os.Getenv("MADO_API_TOKEN"),
		},
		Billing: BillingConfig{
			URL:   os.Getenv("RAMQ_API_URL"),
			Token: os.Getenv("RAMQ_API_TOKEN"),
		},
		FHIR: FHIRConfig{
			BaseURL: os.Getenv("FHIR_BASE_URL"),
			Token:   os.Getenv("FHIR_BEARER_TOKEN"),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
