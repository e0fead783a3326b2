// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Load reads configuration from environment variables.
// It attempts to load from .env file first (for local development),
// then parses environment variables into the Config struct.
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	// In production (Docker/K8s), environment variables are injected directly
	if err := godotenv.Load(); err != nil {
		logrus.Warnf("no .env file found or error loading it: %v (this is normal in production)", err)
	} else {
		logrus.Infof("loaded environment variables from .env file")
	}

	return Parse()
}

// Parse reads configuration from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config from environment: %w", err)
	}
	return cfg, nil
}

// Validate performs custom validation on the configuration.
//
// ============================================================
// DEVELOPER: Add custom validation logic here.
// ============================================================
// This function is called after environment variables are parsed.
// Add validation for value ranges, cross-field constraints and
// formats here rather than at the call sites.
// ============================================================
func (c *Config) Validate() error {
	for name, port := range map[string]int{
		"GRPC_PORT":    c.GRPCPort,
		"HTTP_PORT":    c.HTTPPort,
		"METRICS_PORT": c.MetricsPort,
	} {
		if port < 1 || port > 65535 {
			return fmt.Errorf("invalid %s: %d (must be 1-65535)", name, port)
		}
	}

	switch c.StoreBackend {
	case StoreRedis, StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_BACKEND=%s", StorePostgres)
		}
	default:
		return fmt.Errorf("invalid STORE_BACKEND: %q (must be redis, postgres or memory)", c.StoreBackend)
	}

	if c.TimezoneOffsetHours < -12 || c.TimezoneOffsetHours > 14 {
		return fmt.Errorf("invalid TIMEZONE_OFFSET_HOURS: %d (must be -12 to 14)", c.TimezoneOffsetHours)
	}

	if c.TierCacheSize < 0 {
		return fmt.Errorf("invalid TIER_CACHE_SIZE: %d (must be non-negative)", c.TierCacheSize)
	}

	if c.MaxClockSkew < 0 {
		return fmt.Errorf("invalid MAX_CLOCK_SKEW: %v (must not be negative)", c.MaxClockSkew)
	}

	if c.TraceSampleRatio < 0 || c.TraceSampleRatio > 1 {
		return fmt.Errorf("invalid TRACE_SAMPLE_RATIO: %v (must be 0-1)", c.TraceSampleRatio)
	}

	// AccelByte credentials are only needed when rewards go to the platform
	if c.ABEnabled {
		if c.ABBaseURL == "" || c.ABClientID == "" || c.ABClientSecret == "" {
			return fmt.Errorf("AB_BASE_URL, AB_CLIENT_ID and AB_CLIENT_SECRET are required when AB_ENABLED=true")
		}
		if c.ABNamespace == "" {
			return fmt.Errorf("AB_NAMESPACE is required")
		}
	}

	return nil
}
