package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Port:            "8081",
		ShutdownTimeout: 30 * time.Second,
		RateLimitPerMin: 60,
		LogLevel:        "info",
		LogFormat:       "text",
		ImageAPIURL:     "https://api-css-tools.vercel.app/images",
		ImageMaxBytes:   10 << 20,
		SeedData:        true,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "valid tint format with fetch timeout",
			mutate:  func(c *Config) { c.LogFormat = "tint"; c.ImageFetchTimeout = 5 * time.Second },
			wantErr: false,
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range low",
			mutate:      func(c *Config) { c.Port = "0" },
			wantErr:     true,
			errorString: "invalid port 0: must be between 1 and 65535",
		},
		{
			name:        "invalid port - out of range high",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.LogLevel = "verbose" },
			wantErr:     true,
			errorString: "invalid log level 'verbose'",
		},
		{
			name:        "invalid log format",
			mutate:      func(c *Config) { c.LogFormat = "xml" },
			wantErr:     true,
			errorString: "invalid log format 'xml'",
		},
		{
			name:        "invalid image API URL scheme",
			mutate:      func(c *Config) { c.ImageAPIURL = "ftp://example.com/images" },
			wantErr:     true,
			errorString: "invalid image API URL scheme 'ftp': must be 'http' or 'https'",
		},
		{
			name:        "image API URL without host",
			mutate:      func(c *Config) { c.ImageAPIURL = "https:///images" },
			wantErr:     true,
			errorString: "missing host",
		},
		{
			name:        "negative fetch timeout",
			mutate:      func(c *Config) { c.ImageFetchTimeout = -time.Second },
			wantErr:     true,
			errorString: "invalid image fetch timeout -1s: must not be negative",
		},
		{
			name:        "zero max bytes",
			mutate:      func(c *Config) { c.ImageMaxBytes = 0 },
			wantErr:     true,
			errorString: "invalid image max bytes 0: must be at least 1",
		},
		{
			name:        "zero rate limit",
			mutate:      func(c *Config) { c.RateLimitPerMin = 0 },
			wantErr:     true,
			errorString: "invalid rate limit 0: must be at least 1 per minute",
		},
		{
			name:        "shutdown timeout too short",
			mutate:      func(c *Config) { c.ShutdownTimeout = 500 * time.Millisecond },
			wantErr:     true,
			errorString: "invalid shutdown timeout 500ms: must be at least 1 second",
		},
		{
			name:        "shutdown timeout too long",
			mutate:      func(c *Config) { c.ShutdownTimeout = time.Hour },
			wantErr:     true,
			errorString: "invalid shutdown timeout 1h0m0s: must be at most 5 minutes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Config.Validate() error = nil, wantErr %v", tt.wantErr)
					return
				}
				if tt.errorString != "" && !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("Config.Validate() error = %v, want error containing %v", err.Error(), tt.errorString)
				}
			} else if err != nil {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "abc"
	cfg.LogFormat = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "invalid port") || !strings.Contains(err.Error(), "invalid log format") {
		t.Errorf("expected both problems to be reported, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "LOG_FORMAT", "IMAGE_API_URL", "IMAGE_FETCH_TIMEOUT",
		"IMAGE_MAX_BYTES", "IMAGE_ALLOW_PRIVATE", "RATE_LIMIT_PER_MINUTE", "SEED_DATA", "SHUTDOWN_TIMEOUT",
	} {
		t.Setenv(key, "")
	}

	t.Run("default values", func(t *testing.T) {
		cfg := Load()

		if cfg.Port != "8081" {
			t.Errorf("Load() Port = %v, want 8081", cfg.Port)
		}
		if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
			t.Errorf("Load() logging = %v/%v, want info/text", cfg.LogLevel, cfg.LogFormat)
		}
		if cfg.ImageAPIURL != "https://api-css-tools.vercel.app/images" {
			t.Errorf("Load() ImageAPIURL = %v", cfg.ImageAPIURL)
		}
		if cfg.ImageFetchTimeout != 0 {
			t.Errorf("Load() ImageFetchTimeout = %v, want 0", cfg.ImageFetchTimeout)
		}
		if cfg.ImageMaxBytes != 10<<20 {
			t.Errorf("Load() ImageMaxBytes = %v, want 10MiB", cfg.ImageMaxBytes)
		}
		if !cfg.SeedData {
			t.Errorf("Load() SeedData = false, want true")
		}
		if cfg.ImageAllowPrivate {
			t.Errorf("Load() ImageAllowPrivate = true, want false")
		}
		if cfg.ShutdownTimeout != 30*time.Second {
			t.Errorf("Load() ShutdownTimeout = %v, want 30s", cfg.ShutdownTimeout)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("defaults should validate: %v", err)
		}
	})

	t.Run("environment variables", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("LOG_LEVEL", "DEBUG")
		t.Setenv("LOG_FORMAT", "json")
		t.Setenv("IMAGE_FETCH_TIMEOUT", "15s")
		t.Setenv("RATE_LIMIT_PER_MINUTE", "120")
		t.Setenv("SEED_DATA", "false")
		t.Setenv("IMAGE_ALLOW_PRIVATE", "true")

		cfg := Load()

		if cfg.Port != "9090" {
			t.Errorf("Load() Port = %v, want 9090", cfg.Port)
		}
		if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
			t.Errorf("Load() logging = %v/%v, want debug/json", cfg.LogLevel, cfg.LogFormat)
		}
		if cfg.ImageFetchTimeout != 15*time.Second {
			t.Errorf("Load() ImageFetchTimeout = %v, want 15s", cfg.ImageFetchTimeout)
		}
		if cfg.RateLimitPerMin != 120 {
			t.Errorf("Load() RateLimitPerMin = %v, want 120", cfg.RateLimitPerMin)
		}
		if cfg.SeedData {
			t.Errorf("Load() SeedData = true, want false")
		}
		if !cfg.ImageAllowPrivate {
			t.Errorf("Load() ImageAllowPrivate = false, want true")
		}
	})

	t.Run("invalid environment variables use defaults", func(t *testing.T) {
		t.Setenv("RATE_LIMIT_PER_MINUTE", "invalid")
		t.Setenv("SHUTDOWN_TIMEOUT", "invalid")
		t.Setenv("SEED_DATA", "maybe")

		cfg := Load()

		if cfg.RateLimitPerMin != 60 {
			t.Errorf("Load() RateLimitPerMin = %v, want 60 (default for invalid input)", cfg.RateLimitPerMin)
		}
		if cfg.ShutdownTimeout != 30*time.Second {
			t.Errorf("Load() ShutdownTimeout = %v, want 30s (default for invalid input)", cfg.ShutdownTimeout)
		}
		if !cfg.SeedData {
			t.Errorf("Load() SeedData = false, want true (default for invalid input)")
		}
	})
}
