// Package config provides runtime configuration for the SafeBridge engine.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the complete application configuration loaded from
// environment variables. Per-entity source configuration is not part of this:
// sources are explicit constructor arguments of the pipeline.
type Config struct {
	Server     ServerConfig     `envPrefix:"SERVER_"`
	Assessment AssessmentConfig `envPrefix:"ASSESS_"`
	Logging    LoggingConfig    `envPrefix:"LOG_"`
}

// ServerConfig contains HTTP server configuration for serve mode.
type ServerConfig struct {
	Host            string        `env:"HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// AssessmentConfig contains the damage-assessment policy knobs.
type AssessmentConfig struct {
	// VerticalThreshold flags a unit when |vertical| exceeds it, in the
	// displacement unit of the inputs (typically mm).
	VerticalThreshold float64 `env:"VERTICAL_THRESHOLD" envDefault:"10"`

	// HorizontalThreshold flags a unit when |horizontal| exceeds it.
	HorizontalThreshold float64 `env:"HORIZONTAL_THRESHOLD" envDefault:"10"`

	// TrendThreshold flags a unit when the second difference of vertical
	// displacement across adjacent units exceeds it (differential
	// settlement rather than uniform seasonal motion).
	TrendThreshold float64 `env:"TREND_THRESHOLD" envDefault:"5"`

	// PairRadius is the maximum separation between an ascending and a
	// descending point to form a decomposition pair, in the computational
	// CRS unit. Zero means half the preprocess buffer distance.
	PairRadius float64 `env:"PAIR_RADIUS" envDefault:"0"`

	// Workers bounds the number of units assessed concurrently.
	Workers int `env:"WORKERS" envDefault:"4"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"text"`
}

// Load parses configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Assessment.VerticalThreshold <= 0 {
		return fmt.Errorf("vertical threshold must be positive, got %g", c.Assessment.VerticalThreshold)
	}
	if c.Assessment.HorizontalThreshold <= 0 {
		return fmt.Errorf("horizontal threshold must be positive, got %g", c.Assessment.HorizontalThreshold)
	}
	if c.Assessment.TrendThreshold <= 0 {
		return fmt.Errorf("trend threshold must be positive, got %g", c.Assessment.TrendThreshold)
	}
	if c.Assessment.PairRadius < 0 {
		return fmt.Errorf("pair radius must not be negative, got %g", c.Assessment.PairRadius)
	}
	if c.Assessment.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Assessment.Workers)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log format must be json or text, got %q", c.Logging.Format)
	}

	return nil
}
