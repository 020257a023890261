// FundCompass - Mutual Fund Screening and Recommendation Engine
// Copyright 2026 R. Sondhi (rsondhi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rsondhi/fundcompass

// Package config loads the layered application configuration.
//
// Precedence: environment variables > optional YAML file > built-in
// defaults. Nested keys use koanf struct tags; environment variables map
// through an explicit table (FUNDCOMPASS_SERVER_PORT -> server.port) so a
// rename never silently orphans an override.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the config file search order; the first file
// found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/fundcompass/config.yaml",
	"/etc/fundcompass/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "FUNDCOMPASS_CONFIG"

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Ingest   IngestConfig   `koanf:"ingest"`
	Refresh  RefreshConfig  `koanf:"refresh"`
	Engine   EngineConfig   `koanf:"engine"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimit       int           `koanf:"rate_limit"`
	RatePeriod      time.Duration `koanf:"rate_period"`
}

// DatabaseConfig configures the DuckDB scheme store.
type DatabaseConfig struct {
	Path string `koanf:"path"`
}

// IngestConfig configures the mfapi.in client.
type IngestConfig struct {
	BaseURL           string        `koanf:"base_url"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`
}

// RefreshConfig configures the periodic snapshot refresh.
type RefreshConfig struct {
	Interval    time.Duration `koanf:"interval"`
	MaxSchemes  int           `koanf:"max_schemes"`
	Concurrency int           `koanf:"concurrency"`
}

// EngineConfig configures the recommendation pipeline.
type EngineConfig struct {
	DefaultTopN    int           `koanf:"default_top_n"`
	MaxTopN        int           `koanf:"max_top_n"`
	CacheTTL       time.Duration `koanf:"cache_ttl"`
	MinAUMCr       float64       `koanf:"min_aum_cr"`
	ScarcityPolicy string        `koanf:"scarcity_policy"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// defaultConfig returns the built-in defaults, overridden by file and env.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8480,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimit:       120,
			RatePeriod:      time.Minute,
		},
		Database: DatabaseConfig{
			Path: "/data/fundcompass.duckdb",
		},
		Ingest: IngestConfig{
			BaseURL:           "https://api.mfapi.in",
			Timeout:           15 * time.Second,
			RequestsPerSecond: 5,
			Burst:             5,
		},
		Refresh: RefreshConfig{
			Interval:    24 * time.Hour,
			MaxSchemes:  0,
			Concurrency: 4,
		},
		Engine: EngineConfig{
			DefaultTopN:    10,
			MaxTopN:        50,
			CacheTTL:       5 * time.Minute,
			MinAUMCr:       100,
			ScarcityPolicy: "backfill",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Ingest.RequestsPerSecond <= 0 {
		return fmt.Errorf("ingest.requests_per_second must be > 0")
	}
	if c.Refresh.Interval < time.Minute {
		return fmt.Errorf("refresh.interval %s too aggressive for a free provider", c.Refresh.Interval)
	}
	if c.Engine.DefaultTopN < 1 || c.Engine.DefaultTopN > c.Engine.MaxTopN {
		return fmt.Errorf("engine.default_top_n %d out of range (max %d)", c.Engine.DefaultTopN, c.Engine.MaxTopN)
	}
	if c.Engine.MinAUMCr < 0 {
		return fmt.Errorf("engine.min_aum_cr must be >= 0")
	}
	switch c.Engine.ScarcityPolicy {
	case "backfill", "strict":
	default:
		return fmt.Errorf("engine.scarcity_policy %q must be backfill or strict", c.Engine.ScarcityPolicy)
	}
	return nil
}

// Addr returns the server listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envMappings is the explicit environment-variable table. Unknown
// variables are ignored rather than guessed at.
var envMappings = map[string]string{
	"fundcompass_server_host":             "server.host",
	"fundcompass_server_port":             "server.port",
	"fundcompass_server_read_timeout":     "server.read_timeout",
	"fundcompass_server_write_timeout":    "server.write_timeout",
	"fundcompass_server_shutdown_timeout": "server.shutdown_timeout",
	"fundcompass_server_cors_origins":     "server.cors_origins",
	"fundcompass_server_rate_limit":       "server.rate_limit",
	"fundcompass_server_rate_period":      "server.rate_period",
	"fundcompass_database_path":           "database.path",
	"fundcompass_ingest_base_url":         "ingest.base_url",
	"fundcompass_ingest_timeout":          "ingest.timeout",
	"fundcompass_ingest_rps":              "ingest.requests_per_second",
	"fundcompass_ingest_burst":            "ingest.burst",
	"fundcompass_refresh_interval":        "refresh.interval",
	"fundcompass_refresh_max_schemes":     "refresh.max_schemes",
	"fundcompass_refresh_concurrency":     "refresh.concurrency",
	"fundcompass_engine_default_top_n":    "engine.default_top_n",
	"fundcompass_engine_max_top_n":        "engine.max_top_n",
	"fundcompass_engine_cache_ttl":        "engine.cache_ttl",
	"fundcompass_engine_min_aum_cr":       "engine.min_aum_cr",
	"fundcompass_engine_scarcity_policy":  "engine.scarcity_policy",
	"fundcompass_logging_level":           "logging.level",
	"fundcompass_logging_format":          "logging.format",
}

// envTransformFunc maps FUNDCOMPASS_* variables onto koanf paths and
// drops everything else.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
