package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with defaults: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port default: %q", cfg.Port)
	}
	if cfg.DBPath != "underseerr.db" {
		t.Errorf("DBPath default: %q", cfg.DBPath)
	}
	if cfg.Cache.MaxTotalBytes != 100*1024*1024 {
		t.Errorf("MaxTotalBytes default: %d", cfg.Cache.MaxTotalBytes)
	}
	if cfg.Cache.MovieEntryBytes != 5*1024 || cfg.Cache.TvEntryBytes != 5*1024 {
		t.Errorf("entry estimates: %d / %d", cfg.Cache.MovieEntryBytes, cfg.Cache.TvEntryBytes)
	}
	if cfg.Cache.MaxAge != 7*24*time.Hour {
		t.Errorf("MaxAge default: %v", cfg.Cache.MaxAge)
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Errorf("APIBasePath default: %q", cfg.APIBasePath)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode default: %q", cfg.GinMode)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CACHE_MAX_BYTES", "1048576")
	t.Setenv("CACHE_MAX_AGE", "48h")
	t.Setenv("SYNC_RPS", "0.5")
	t.Setenv("UPSTREAM_URL", "https://overseerr.example.com/")
	t.Setenv("LOG_LEVEL", "WARNING")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cache.MaxTotalBytes != 1048576 {
		t.Errorf("MaxTotalBytes: %d", cfg.Cache.MaxTotalBytes)
	}
	if cfg.Cache.MaxAge != 48*time.Hour {
		t.Errorf("MaxAge: %v", cfg.Cache.MaxAge)
	}
	if cfg.Sync.RPS != 0.5 {
		t.Errorf("Sync.RPS: %v", cfg.Sync.RPS)
	}
	if cfg.Upstream.BaseURL != "https://overseerr.example.com" {
		t.Errorf("trailing slash not trimmed: %q", cfg.Upstream.BaseURL)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("warning not normalized: %q", cfg.LogLevel)
	}
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		key, val string
	}{
		{"LOG_LEVEL", "loud"},
		{"CACHE_MAX_BYTES", "-1"},
		{"CACHE_MAX_AGE", "-1h"},
		{"SYNC_RPS", "-2"},
		{"RATE_BURST", "0"},
		{"OTEL_TRACES_SAMPLER_ARG", "1.5"},
	}
	for _, c := range cases {
		t.Run(c.key, func(t *testing.T) {
			t.Setenv(c.key, c.val)
			if _, err := Load(); err == nil {
				t.Fatalf("%s=%s should fail validation", c.key, c.val)
			}
		})
	}
}

func TestLoad_InvalidGinModeFallsBack(t *testing.T) {
	t.Setenv("GIN_MODE", "verbose")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode: %q", cfg.GinMode)
	}
}
