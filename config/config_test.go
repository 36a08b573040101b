package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"DATA_DIR", "LOCAL_BACKEND", "HTTP_ADDR", "CORS_ORIGINS",
		"SEARCH_PROVIDER", "GEMINI_API_KEY", "API_KEY", "MAX_RETRIES", "MAX_CONCURRENCY",
		"RATE_LIMIT_MS", "SEARCH_TIMEOUT_MS", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()
	if cfg.DataDir != "./data" || cfg.LocalBackend != BackendFile || cfg.HTTPAddr != ":8080" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.SearchProvider != ProviderGemini || cfg.GeminiAPIKey != "" {
		t.Errorf("search defaults: provider=%q key=%q", cfg.SearchProvider, cfg.GeminiAPIKey)
	}
	if cfg.MaxRetries != 2 || cfg.MaxConcurrency != 3 || cfg.RateLimitMs != 0 {
		t.Errorf("pool defaults: %d %d %d", cfg.MaxRetries, cfg.MaxConcurrency, cfg.RateLimitMs)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("CORSOrigins: %v", cfg.CORSOrigins)
	}
	if cfg.SearchTimeout() != 20*time.Second {
		t.Errorf("SearchTimeout: %v", cfg.SearchTimeout())
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("LOCAL_BACKEND", "SQLite")
	t.Setenv("CORS_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "fallback-key")
	t.Setenv("MAX_RETRIES", "not-a-number")
	t.Setenv("SEARCH_TIMEOUT_MS", "1500")

	cfg := FromEnv()
	if cfg.LocalBackend != BackendSQLite {
		t.Errorf("LocalBackend: got %q", cfg.LocalBackend)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Errorf("CORSOrigins: %v", cfg.CORSOrigins)
	}
	if cfg.GeminiAPIKey != "fallback-key" {
		t.Errorf("API_KEY fallback: got %q", cfg.GeminiAPIKey)
	}
	if cfg.MaxRetries != 2 {
		t.Errorf("bad int should fall back: got %d", cfg.MaxRetries)
	}
	if cfg.SearchTimeout() != 1500*time.Millisecond {
		t.Errorf("SearchTimeout: %v", cfg.SearchTimeout())
	}
}

func TestLocation(t *testing.T) {
	tests := []struct {
		name     string
		lat, lng string
		wantNil  bool
	}{
		{"both set", "10.77", "106.70", false},
		{"missing longitude", "10.77", "", true},
		{"malformed", "north", "106.70", true},
		{"out of range", "91", "0", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{SearchLatitude: tt.lat, SearchLongitude: tt.lng}
			got := cfg.Location()
			if (got == nil) != tt.wantNil {
				t.Fatalf("Location() = %v, wantNil %v", got, tt.wantNil)
			}
			if got != nil && got.Latitude != 10.77 {
				t.Errorf("latitude: got %v", got.Latitude)
			}
		})
	}
}
