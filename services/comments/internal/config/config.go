// Package config carries the comments service configuration and policy knobs.
package config

import (
	"time"

	platform "github.com/example/social-pulse/internal/platform/config"
)

type Config struct {
	// DatabaseURL selects the Postgres backend; empty falls back to the
	// in-memory store (development only).
	DatabaseURL string
	// RedisDSN selects the Redis rate-limit backend; empty falls back to
	// in-process counters.
	RedisDSN string
	NATSURL  string
	// JWTSecret signs/validates dashboard bearer tokens (HS256).
	JWTSecret string
	// EncryptionKey is the master key for field encryption at rest.
	EncryptionKey string
	// SemanticURL points at the external similarity scorer; empty disables
	// semantic mode gracefully.
	SemanticURL    string
	SemanticAPIKey string

	// Listing and search limits.
	DefaultLimit int
	MaxLimit     int
	MinQueryLen  int
	MaxQueryLen  int
	// CandidateCap bounds the filtered set fetched for ranking/faceting.
	CandidateCap int

	QueryTimeout time.Duration
	CacheTTL     time.Duration

	// Per-window rate budgets.
	RateWindow   time.Duration
	ReadBudget   int
	WriteBudget  int
	SearchBudget int
}

func Load() Config {
	return Config{
		DatabaseURL:    platform.String("DATABASE_URL", ""),
		RedisDSN:       platform.String("REDIS_DSN", ""),
		NATSURL:        platform.String("NATS_URL", ""),
		JWTSecret:      platform.String("JWT_SECRET", ""),
		EncryptionKey:  platform.String("FIELD_ENCRYPTION_KEY", ""),
		SemanticURL:    platform.String("SEMANTIC_SCORER_URL", ""),
		SemanticAPIKey: platform.String("SEMANTIC_SCORER_API_KEY", ""),

		DefaultLimit: platform.Int("COMMENTS_DEFAULT_LIMIT", 20),
		MaxLimit:     platform.Int("COMMENTS_MAX_LIMIT", 100),
		MinQueryLen:  platform.Int("SEARCH_MIN_QUERY_LEN", 3),
		MaxQueryLen:  platform.Int("SEARCH_MAX_QUERY_LEN", 100),
		CandidateCap: platform.Int("SEARCH_CANDIDATE_CAP", 1000),

		QueryTimeout: platform.Duration("QUERY_TIMEOUT", 5*time.Second),
		CacheTTL:     platform.Duration("SEARCH_CACHE_TTL", 60*time.Second),

		RateWindow:   platform.Duration("RATE_WINDOW", time.Minute),
		ReadBudget:   platform.Int("RATE_READ_BUDGET", 100),
		WriteBudget:  platform.Int("RATE_WRITE_BUDGET", 20),
		SearchBudget: platform.Int("RATE_SEARCH_BUDGET", 30),
	}
}
