package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Assessment.VerticalThreshold != 10 {
		t.Errorf("expected default vertical threshold 10, got %g", cfg.Assessment.VerticalThreshold)
	}
	if cfg.Assessment.Workers != 4 {
		t.Errorf("expected default workers 4, got %d", cfg.Assessment.Workers)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ASSESS_VERTICAL_THRESHOLD", "25")
	t.Setenv("ASSESS_WORKERS", "8")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Assessment.VerticalThreshold != 25 {
		t.Errorf("expected threshold 25, got %g", cfg.Assessment.VerticalThreshold)
	}
	if cfg.Assessment.Workers != 8 {
		t.Errorf("expected workers 8, got %d", cfg.Assessment.Workers)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected json format, got %q", cfg.Logging.Format)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("failed to load defaults: %v", err)
		}
		return cfg
	}

	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:        "bad port",
			mutate:      func(c *Config) { c.Server.Port = 0 },
			expectError: "port",
		},
		{
			name:        "negative vertical threshold",
			mutate:      func(c *Config) { c.Assessment.VerticalThreshold = -1 },
			expectError: "vertical threshold",
		},
		{
			name:        "zero trend threshold",
			mutate:      func(c *Config) { c.Assessment.TrendThreshold = 0 },
			expectError: "trend threshold",
		},
		{
			name:        "negative pair radius",
			mutate:      func(c *Config) { c.Assessment.PairRadius = -2 },
			expectError: "pair radius",
		},
		{
			name:        "zero workers",
			mutate:      func(c *Config) { c.Assessment.Workers = 0 },
			expectError: "workers",
		},
		{
			name:        "bad log level",
			mutate:      func(c *Config) { c.Logging.Level = "verbose" },
			expectError: "log level",
		},
		{
			name:        "bad log format",
			mutate:      func(c *Config) { c.Logging.Format = "xml" },
			expectError: "log format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.expectError == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.expectError) {
				t.Errorf("expected error mentioning %q, got %q", tt.expectError, err.Error())
			}
		})
	}
}
