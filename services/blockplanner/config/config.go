// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the block planner's configuration with priority
// env > file > defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/blockplanner/services/blockplanner/planner"
	"github.com/AleutianAI/blockplanner/services/blockplanner/storage/badger"
	"github.com/AleutianAI/blockplanner/services/blockplanner/telemetry"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "BLOCKPLANNER_"

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid config")

var validate = validator.New()

// Config contains all block planner configuration.
//
// Thread Safety: Safe to read concurrently. Not safe to modify after creation.
type Config struct {
	// Search contains per-interpretation search limits.
	Search SearchConfig `json:"search" yaml:"search"`

	// Parallel contains concurrent interpretation settings.
	Parallel ParallelConfig `json:"parallel" yaml:"parallel"`

	// Cache contains plan cache settings.
	Cache CacheConfig `json:"cache" yaml:"cache"`

	// Server contains HTTP server settings.
	Server ServerConfig `json:"server" yaml:"server"`

	// Observability contains logging, tracing and metrics settings.
	Observability ObservabilityConfig `json:"observability" yaml:"observability"`
}

// SearchConfig contains search limits.
type SearchConfig struct {
	Timeout       time.Duration `json:"timeout" yaml:"timeout" validate:"gte=0"`
	MaxExpansions int           `json:"max_expansions" yaml:"max_expansions" validate:"gte=0"`
	ArmInKey      bool          `json:"arm_in_key" yaml:"arm_in_key"`
}

// ParallelConfig contains parallel planning settings.
type ParallelConfig struct {
	Enabled        bool `json:"enabled" yaml:"enabled"`
	MaxConcurrency int  `json:"max_concurrency" yaml:"max_concurrency" validate:"gte=1,lte=256"`
}

// CacheConfig contains plan cache settings.
type CacheConfig struct {
	Enabled  bool          `json:"enabled" yaml:"enabled"`
	Path     string        `json:"path" yaml:"path"`
	InMemory bool          `json:"in_memory" yaml:"in_memory"`
	TTL      time.Duration `json:"ttl" yaml:"ttl" validate:"gte=0"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr" validate:"required"`

	// RateLimit is the sustained request rate per second. Zero disables
	// rate limiting.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit" validate:"gte=0"`
	Burst     int     `json:"burst" yaml:"burst" validate:"gte=0"`

	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gte=0"`
}

// ObservabilityConfig contains observability settings.
type ObservabilityConfig struct {
	TracingEnabled bool   `json:"tracing_enabled" yaml:"tracing_enabled"`
	MetricsEnabled bool   `json:"metrics_enabled" yaml:"metrics_enabled"`
	LogLevel       string `json:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	LogDir         string `json:"log_dir" yaml:"log_dir"`
	JSONLogs       bool   `json:"json_logs" yaml:"json_logs"`
	ServiceName    string `json:"service_name" yaml:"service_name" validate:"required"`
	OTLPEndpoint   string `json:"otlp_endpoint" yaml:"otlp_endpoint"`
	OTLPInsecure   bool   `json:"otlp_insecure" yaml:"otlp_insecure"`
	Environment    string `json:"environment" yaml:"environment"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Search: SearchConfig{
			Timeout: 10 * time.Second,
		},
		Parallel: ParallelConfig{
			Enabled:        false,
			MaxConcurrency: 4,
		},
		Cache: CacheConfig{
			Enabled: false,
			Path:    defaultCachePath(),
			TTL:     24 * time.Hour,
		},
		Server: ServerConfig{
			Addr:            ":8089",
			RateLimit:       20,
			Burst:           40,
			ShutdownTimeout: 10 * time.Second,
		},
		Observability: ObservabilityConfig{
			TracingEnabled: false,
			MetricsEnabled: true,
			LogLevel:       "info",
			ServiceName:    "blockplanner",
			OTLPInsecure:   true,
			Environment:    "development",
		},
	}
}

func defaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".blockplanner/cache"
	}
	return home + "/.blockplanner/cache"
}

// Load loads configuration with priority: env > file > defaults.
//
// Inputs:
//   - path: Path to a YAML or JSON file. Optional; a missing file is ignored.
//
// Outputs:
//   - Config: Merged configuration.
//   - error: Non-nil if the file exists but cannot be parsed, or the result
//     is invalid.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	loadEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
		}
	}
	return nil
}

func loadEnv(cfg *Config) {
	// Search
	envDuration("SEARCH_TIMEOUT", &cfg.Search.Timeout)
	envInt("MAX_EXPANSIONS", &cfg.Search.MaxExpansions)
	envBool("ARM_IN_KEY", &cfg.Search.ArmInKey)

	// Parallel
	envBool("PARALLEL_ENABLED", &cfg.Parallel.Enabled)
	envInt("MAX_CONCURRENCY", &cfg.Parallel.MaxConcurrency)

	// Cache
	envBool("CACHE_ENABLED", &cfg.Cache.Enabled)
	envString("CACHE_PATH", &cfg.Cache.Path)
	envBool("CACHE_IN_MEMORY", &cfg.Cache.InMemory)
	envDuration("CACHE_TTL", &cfg.Cache.TTL)

	// Server
	envString("ADDR", &cfg.Server.Addr)
	if v := os.Getenv(EnvPrefix + "RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Server.RateLimit = f
		}
	}
	envInt("BURST", &cfg.Server.Burst)

	// Observability
	envBool("TRACING_ENABLED", &cfg.Observability.TracingEnabled)
	envBool("METRICS_ENABLED", &cfg.Observability.MetricsEnabled)
	envString("LOG_LEVEL", &cfg.Observability.LogLevel)
	envString("LOG_DIR", &cfg.Observability.LogDir)
	envBool("JSON_LOGS", &cfg.Observability.JSONLogs)
	envString("SERVICE_NAME", &cfg.Observability.ServiceName)
	envString("OTLP_ENDPOINT", &cfg.Observability.OTLPEndpoint)
	envBool("OTLP_INSECURE", &cfg.Observability.OTLPInsecure)
	envString("ENV", &cfg.Observability.Environment)
}

func envString(name string, dst *string) {
	if v := os.Getenv(EnvPrefix + name); v != "" {
		*dst = v
	}
}

func envBool(name string, dst *bool) {
	if v := os.Getenv(EnvPrefix + name); v != "" {
		*dst = v == "true" || v == "1"
	}
}

func envInt(name string, dst *int) {
	if v := os.Getenv(EnvPrefix + name); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*dst = i
		}
	}
}

func envDuration(name string, dst *time.Duration) {
	if v := os.Getenv(EnvPrefix + name); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

// Validate checks that the configuration is valid.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Cache.Enabled && !c.Cache.InMemory && c.Cache.Path == "" {
		return fmt.Errorf("%w: cache.path is required for a persistent cache", ErrInvalidConfig)
	}
	if c.Server.RateLimit > 0 && c.Server.Burst < 1 {
		return fmt.Errorf("%w: server.burst must be >= 1 when rate limiting", ErrInvalidConfig)
	}
	return nil
}

// Planner converts the search and parallel sections to a planner.Config.
func (c Config) Planner() planner.Config {
	concurrency := 1
	if c.Parallel.Enabled {
		concurrency = c.Parallel.MaxConcurrency
	}
	return planner.Config{
		Timeout:        c.Search.Timeout,
		MaxExpansions:  c.Search.MaxExpansions,
		ArmInKey:       c.Search.ArmInKey,
		MaxConcurrency: concurrency,
	}
}

// Badger converts the cache section to a badger.Config.
func (c Config) Badger() badger.Config {
	if c.Cache.InMemory {
		return badger.InMemoryConfig()
	}
	cfg := badger.DefaultConfig()
	cfg.Path = c.Cache.Path
	return cfg
}

// Telemetry converts the observability section to a telemetry.Config.
// Tracing exports over OTLP when an endpoint is set and to stdout otherwise.
func (c Config) Telemetry(version string) telemetry.Config {
	cfg := telemetry.Config{
		ServiceName:    c.Observability.ServiceName,
		ServiceVersion: version,
		Environment:    c.Observability.Environment,
		Traces:         telemetry.ExporterNone,
		Prometheus:     c.Observability.MetricsEnabled,
	}
	if c.Observability.TracingEnabled {
		cfg.Traces = telemetry.ExporterStdout
		if c.Observability.OTLPEndpoint != "" {
			cfg.Traces = telemetry.ExporterOTLP
			cfg.OTLPEndpoint = c.Observability.OTLPEndpoint
			cfg.OTLPInsecure = c.Observability.OTLPInsecure
		}
	}
	return cfg
}
