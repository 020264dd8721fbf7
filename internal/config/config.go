// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/fifactl.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// --------------------------------------------------------------------------
// Config struct: populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Dataset source: local path, http(s) URL, .xlsx file or postgres:// URL
	DataSource         string        `envconfig:"DATA_SOURCE" default:"./data/players_21.csv"`
	FetchTimeout       time.Duration `envconfig:"FETCH_TIMEOUT" default:"30s"`
	FetchRatePerMinute int           `envconfig:"FETCH_RATE_PER_MINUTE" default:"60"`

	// Background reloads: a ticker (0 disables) and a LISTEN channel for
	// postgres sources (empty disables)
	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"0s"`
	NotifyChannel   string        `envconfig:"DATASET_NOTIFY_CHANNEL"`

	// Static artifacts
	ModelPath       string `envconfig:"MODEL_PATH" default:"assets/model_fifa.json"`
	DescriptionPath string `envconfig:"DESCRIPTION_PATH" default:"assets/dataset_description.html"`

	// Database (optional, enables /health/db)
	DatabaseURL    string        `envconfig:"DATABASE_URL"`
	DBPoolMinConns int           `envconfig:"DB_POOL_MIN_CONNS" default:"1"`
	DBPoolMaxConns int           `envconfig:"DB_POOL_MAX_CONNS" default:"4"`
	DBPoolMaxLife  time.Duration `envconfig:"DB_POOL_MAX_LIFE" default:"30m"`

	// API server
	APIHost     string `envconfig:"API_HOST" default:"0.0.0.0"`
	APIPort     int    `envconfig:"API_PORT" default:"8000"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"` // development, staging, production
	Debug       bool   `envconfig:"DEBUG" default:"false"`

	// CORS
	CORSAllowOrigins []string `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:5173,http://localhost:8501"`

	// Rate limiting
	RateLimitEnabled  bool          `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"100"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"60s"`

	// Cache
	CacheEnabled bool `envconfig:"CACHE_ENABLED" default:"true"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}
	cfg.CORSAllowOrigins = trimList(cfg.CORSAllowOrigins)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) validate() error {
	var errs []error
	if strings.TrimSpace(c.DataSource) == "" {
		errs = append(errs, errors.New("DATA_SOURCE must not be empty"))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, errors.New("FETCH_TIMEOUT must be positive"))
	}
	if c.FetchRatePerMinute <= 0 {
		errs = append(errs, errors.New("FETCH_RATE_PER_MINUTE must be positive"))
	}
	if c.RefreshInterval < 0 {
		errs = append(errs, errors.New("REFRESH_INTERVAL must not be negative"))
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("API_PORT %d out of range", c.APIPort))
	}
	if c.RateLimitEnabled && (c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0) {
		errs = append(errs, errors.New("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive"))
	}
	if c.DBPoolMinConns > c.DBPoolMaxConns {
		errs = append(errs, errors.New("DB_POOL_MIN_CONNS exceeds DB_POOL_MAX_CONNS"))
	}
	return errors.Join(errs...)
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func trimList(in []string) []string {
	result := make([]string, 0, len(in))
	for _, p := range in {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
