// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package config

import "time"

// Config holds all application configuration loaded from environment variables.
// This struct uses github.com/caarlos0/env for automatic environment variable parsing.
//
// ============================================================
// DEVELOPER: Add new configuration fields here.
// ============================================================
// Use struct tags to define:
// - `env:"VAR_NAME"` - the environment variable name
// - `env:",required"` - make it required
// - `envDefault:"value"` - set a default value
//
// Example:
//
//	NewFeature bool `env:"ENABLE_NEW_FEATURE" envDefault:"false"`
//
// After adding fields here, update loader.go Validate() if custom
// validation is needed.
// ============================================================
type Config struct {
	// ============================================================
	// Server configuration
	// ============================================================
	GRPCPort    int    `env:"GRPC_PORT" envDefault:"6565"`
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"8000"`
	MetricsPort int    `env:"METRICS_PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"ProgressionEngine"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// ============================================================
	// HTTP API
	// ============================================================
	RateLimitPerMinute int      `env:"RATE_LIMIT_PER_MINUTE" envDefault:"120"`
	AllowedOrigins     []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// ============================================================
	// Storage: redis, postgres or memory
	// ============================================================
	StoreBackend string `env:"STORE_BACKEND" envDefault:"redis"`

	RedisHost       string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort       string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword   string `env:"REDIS_PASSWORD"`
	RedisKeyPrefix  string `env:"REDIS_KEY_PREFIX" envDefault:"progression:"`
	RedisMaxRetries int    `env:"REDIS_MAX_RETRIES" envDefault:"5"`

	DatabaseURL string `env:"DATABASE_URL"`

	// ============================================================
	// Engine configuration
	// ============================================================
	EngineConfigPath    string        `env:"ENGINE_CONFIG_PATH" envDefault:"config/engine.yaml"`
	TimezoneOffsetHours int           `env:"TIMEZONE_OFFSET_HOURS" envDefault:"7"`
	TierCacheSize       int           `env:"TIER_CACHE_SIZE" envDefault:"10000"`
	TierCacheTTL        time.Duration `env:"TIER_CACHE_TTL" envDefault:"1m"`
	MaxClockSkew        time.Duration `env:"MAX_CLOCK_SKEW" envDefault:"5m"`

	// ============================================================
	// AccelByte configuration (rewards run in test mode when disabled)
	// ============================================================
	ABEnabled      bool   `env:"AB_ENABLED" envDefault:"false"`
	ABNamespace    string `env:"AB_NAMESPACE" envDefault:"accelbyte"`
	ABBaseURL      string `env:"AB_BASE_URL"`
	ABClientID     string `env:"AB_CLIENT_ID"`
	ABClientSecret string `env:"AB_CLIENT_SECRET"`

	// ============================================================
	// Telemetry configuration
	// ============================================================
	ZipkinEndpoint   string  `env:"ZIPKIN_ENDPOINT"`
	TraceSampleRatio float64 `env:"TRACE_SAMPLE_RATIO" envDefault:"1"`
}

// Store backends
const (
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)
