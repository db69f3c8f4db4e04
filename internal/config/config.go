// Package config provides application configuration loaded from environment
// variables plus a YAML file describing data types and workflow definitions.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Mode determines whether the binaries use in-memory stand-ins or real backends.
type Mode string

const (
	ModeStub       Mode = "stub"
	ModeProduction Mode = "production"
)

// Config holds all application configuration.
type Config struct {
	Mode     Mode
	LogLevel string

	// Workflow store.
	DatabaseURL string

	// Search index.
	SearchURLs      []string
	SearchUsername  string
	SearchPassword  string
	SearchSigV4     bool
	MaxResultWindow int
	AWSRegion       string
	AWSProfile      string
	SearchRoleARN   string

	// Data type routing and workflow definitions.
	HoldingPenFile string

	// Row cache.
	RedisAddr   string
	CachePrefix string
	RowCacheTTL time.Duration

	// Task queue.
	TemporalAddress   string
	TemporalNamespace string
	WorkerQueues      string
	EngineEndpoint    string

	// Throttling.
	SearchRate   float64
	EngineRate   float64
	BulkBudget   int
	BulkWindow   time.Duration
	ReindexBatch int

	// API server settings.
	APIPort         string
	CORSOrigins     []string
	OIDCIssuer      string
	OIDCAudience    string
	OTelEnabled     bool
	OTelSampleRatio float64
}

// OIDCEnabled reports whether bearer token verification is configured.
func (c Config) OIDCEnabled() bool {
	return c.OIDCIssuer != ""
}

// LoadFromEnv reads configuration from environment variables with sensible defaults.
func LoadFromEnv() (Config, error) {
	cfg := Config{
		Mode:              Mode(envOr("HOLDINGPEN_MODE", "stub")),
		LogLevel:          envOr("HOLDINGPEN_LOG_LEVEL", "info"),
		DatabaseURL:       os.Getenv("HOLDINGPEN_DATABASE_URL"),
		SearchURLs:        splitList(envOr("HOLDINGPEN_SEARCH_URLS", "http://localhost:9200")),
		SearchUsername:    os.Getenv("HOLDINGPEN_SEARCH_USERNAME"),
		SearchPassword:    os.Getenv("HOLDINGPEN_SEARCH_PASSWORD"),
		AWSRegion:         envOr("AWS_REGION", "us-east-1"),
		AWSProfile:        os.Getenv("AWS_PROFILE"),
		SearchRoleARN:     os.Getenv("HOLDINGPEN_SEARCH_ROLE_ARN"),
		HoldingPenFile:    os.Getenv("HOLDINGPEN_CONFIG_FILE"),
		RedisAddr:         os.Getenv("HOLDINGPEN_REDIS_ADDR"),
		CachePrefix:       envOr("HOLDINGPEN_CACHE_PREFIX", "holdingpen::"),
		TemporalAddress:   envOr("TEMPORAL_ADDRESS", "localhost:7233"),
		TemporalNamespace: envOr("TEMPORAL_NAMESPACE", "default"),
		WorkerQueues:      os.Getenv("HOLDINGPEN_WORKER_QUEUES"),
		EngineEndpoint:    os.Getenv("HOLDINGPEN_ENGINE_ENDPOINT"),
		APIPort:           envOr("HOLDINGPEN_API_PORT", "8080"),
		CORSOrigins:       parseCORSOrigins(os.Getenv("HOLDINGPEN_CORS_ORIGINS")),
		OIDCIssuer:        os.Getenv("HOLDINGPEN_OIDC_ISSUER"),
		OIDCAudience:      os.Getenv("HOLDINGPEN_OIDC_AUDIENCE"),
	}

	var err error
	if cfg.SearchSigV4, err = envBool("HOLDINGPEN_SEARCH_SIGV4", false); err != nil {
		return Config{}, err
	}
	if cfg.OTelEnabled, err = envBool("HOLDINGPEN_OTEL_ENABLED", false); err != nil {
		return Config{}, err
	}
	if cfg.MaxResultWindow, err = envInt("HOLDINGPEN_MAX_RESULT_WINDOW", 10000); err != nil {
		return Config{}, err
	}
	if cfg.BulkBudget, err = envInt("HOLDINGPEN_BULK_BUDGET", 20); err != nil {
		return Config{}, err
	}
	if cfg.ReindexBatch, err = envInt("HOLDINGPEN_REINDEX_BATCH", 200); err != nil {
		return Config{}, err
	}
	if cfg.SearchRate, err = envFloat("HOLDINGPEN_SEARCH_RATE", 200); err != nil {
		return Config{}, err
	}
	if cfg.EngineRate, err = envFloat("HOLDINGPEN_ENGINE_RATE", 20); err != nil {
		return Config{}, err
	}
	if cfg.OTelSampleRatio, err = envFloat("HOLDINGPEN_OTEL_SAMPLE_RATIO", 1); err != nil {
		return Config{}, err
	}
	if cfg.RowCacheTTL, err = envDuration("HOLDINGPEN_ROW_CACHE_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.BulkWindow, err = envDuration("HOLDINGPEN_BULK_WINDOW", time.Minute); err != nil {
		return Config{}, err
	}

	if cfg.Mode != ModeStub && cfg.Mode != ModeProduction {
		return Config{}, fmt.Errorf("config: invalid HOLDINGPEN_MODE %q (must be stub or production)", cfg.Mode)
	}
	if cfg.MaxResultWindow <= 0 {
		return Config{}, fmt.Errorf("config: HOLDINGPEN_MAX_RESULT_WINDOW must be positive, got %d", cfg.MaxResultWindow)
	}
	if cfg.ReindexBatch <= 0 {
		return Config{}, fmt.Errorf("config: HOLDINGPEN_REINDEX_BATCH must be positive, got %d", cfg.ReindexBatch)
	}

	if cfg.Mode == ModeProduction {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("config: HOLDINGPEN_DATABASE_URL required in production mode")
		}
		if len(cfg.SearchURLs) == 0 {
			return Config{}, fmt.Errorf("config: HOLDINGPEN_SEARCH_URLS required in production mode")
		}
		if cfg.EngineEndpoint == "" {
			return Config{}, fmt.Errorf("config: HOLDINGPEN_ENGINE_ENDPOINT required in production mode")
		}
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("config: invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func envInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func parseCORSOrigins(raw string) []string {
	origins := splitList(raw)
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
