// Package config loads the ETL configuration from defaults, an optional
// json5 file, a .env file and the process environment, in that order of
// increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"dario.cat/mergo"
	"github.com/Sternrassler/fuel-data-etl/pkg/normalize"
	"github.com/joho/godotenv"
	"github.com/titanous/json5"
)

// Environment variables read by Load.
const (
	EnvAPIKey    = "NREL_API_KEY"
	EnvRedisURL  = "REDIS_URL"
	EnvLogLevel  = "LOG_LEVEL"
	EnvUserAgent = "USER_AGENT"
	EnvPageSize  = "FUEL_ETL_PAGE_SIZE"
)

// ErrMissingAPIKey is returned when the NREL API key is not configured.
var ErrMissingAPIKey = errors.New(EnvAPIKey + " is not set")

// DotEnvFile is loaded by Load if it exists. Variables already set in the
// environment are not overwritten.
var DotEnvFile = ".env"

// DefaultResourceIDs are the California DMV vehicle fuel type datasets.
var DefaultResourceIDs = []string{
	"d304108a-06c1-462f-a144-981dd0109900",
	"4254a06d-9937-4083-9441-65597dd267e8",
	"888bbb6c-09b4-469c-82e6-1b2a47439736",
	"1856386b-a196-4e7c-be81-44174e29ad50",
	"9aa5b4c5-252c-4d68-b1be-ffe19a2f1d26",
	"d599c3d3-87af-4e8c-8694-9c01f49e3d93",
}

// Config is the complete ETL configuration.
type Config struct {
	// NRELAPIKey is only taken from the environment.
	NRELAPIKey string `json:"-"`

	StationsURL    string            `json:"stations_url"`
	StationParams  map[string]string `json:"station_params"`
	StationsOutput string            `json:"stations_output"`

	CKANBaseURL    string            `json:"ckan_base_url"`
	ResourceIDs    []string          `json:"resource_ids"`
	PageSize       int               `json:"page_size"`
	ColumnAliases  []normalize.Alias `json:"column_aliases"`
	VehiclesOutput string            `json:"vehicles_output"`

	UserAgent         string  `json:"user_agent"`
	TimeoutSeconds    float64 `json:"timeout_seconds"`
	RequestsPerSecond float64 `json:"requests_per_second"`

	// RedisURL enables the response cache when set.
	RedisURL        string `json:"redis_url"`
	CacheTTLSeconds int    `json:"cache_ttl_seconds"`

	LogLevel string `json:"log_level"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		StationsURL:     "https://developer.nrel.gov/api/alt-fuel-stations/v1.json",
		StationParams:   map[string]string{},
		StationsOutput:  "alternative_fuels_data.csv",
		CKANBaseURL:     "https://data.ca.gov",
		ResourceIDs:     append([]string(nil), DefaultResourceIDs...),
		PageSize:        5000,
		ColumnAliases:   append([]normalize.Alias(nil), normalize.DefaultAliases...),
		VehiclesOutput:  "vehicle_fuel_type.csv",
		UserAgent:       "fuel-data-etl/1.0",
		TimeoutSeconds:  30,
		CacheTTLSeconds: 3600,
		LogLevel:        "info",
	}
}

// Load builds the configuration. path names an optional json5 file; when
// set it must exist.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		fileCfg, err := readFile(path)
		if err != nil {
			return cfg, err
		}
		if err := mergo.Merge(&cfg, fileCfg, mergo.WithOverride); err != nil {
			return cfg, fmt.Errorf("merge config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load %s: %w", DotEnvFile, err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func readFile(path string) (Config, error) {
	var out Config

	data, err := os.ReadFile(path)
	if err != nil {
		return out, fmt.Errorf("read config: %w", err)
	}
	if err := json5.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("parse config %s: %w", path, err)
	}
	return out, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAPIKey); ok {
		c.NRELAPIKey = v
	}
	if v, ok := lookup(EnvRedisURL); ok {
		c.RedisURL = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvUserAgent); ok && v != "" {
		c.UserAgent = v
	}
	if v, ok := lookup(EnvPageSize); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid page size %q", EnvPageSize, v)
		}
		c.PageSize = n
	}
	return nil
}

// Validate checks the settings shared by all commands. The API key is
// checked separately by RequireAPIKey since only the stations job needs it.
func (c Config) Validate() error {
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be > 0 (got %d)", c.PageSize)
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user_agent is required")
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must be >= 0 (got %g)", c.TimeoutSeconds)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must be >= 0 (got %g)", c.RequestsPerSecond)
	}
	if c.CacheTTLSeconds < 0 {
		return fmt.Errorf("cache_ttl_seconds must be >= 0 (got %d)", c.CacheTTLSeconds)
	}
	for i, a := range c.ColumnAliases {
		if a.From == "" || a.To == "" {
			return fmt.Errorf("column_aliases[%d]: from and to are required", i)
		}
	}
	return nil
}

// RequireAPIKey returns the NREL API key or ErrMissingAPIKey.
func (c Config) RequireAPIKey() (string, error) {
	if c.NRELAPIKey == "" {
		return "", ErrMissingAPIKey
	}
	return c.NRELAPIKey, nil
}

// Timeout returns the per-request timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds * float64(time.Second))
}

// CacheTTL returns the fallback lifetime of cached responses.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}
