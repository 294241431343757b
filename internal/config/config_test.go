package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RCA_CONSOLE_CONFIG", "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.HTTPAddress != ":8081" {
		t.Fatalf("unexpected http address: %s", cfg.Server.HTTPAddress)
	}
	if cfg.Cache.Enabled || cfg.Cache.Driver != CacheDriverMemory {
		t.Fatalf("cache should default to disabled memory driver: %+v", cfg.Cache)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "console.yaml")
	if err := os.WriteFile(path, []byte(`clients:
  backend:
    baseURL: "http://backend.internal:8080"
    timeout: 3s
cache:
  enabled: true
  driver: redis
  addr: "cache:6379"
`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("RCA_CONSOLE_BACKEND_URL", "http://override:9000")
	t.Setenv("RCA_CONSOLE_CACHE_CATALOG_TTL", "1m")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Clients.Backend.BaseURL != "http://override:9000" {
		t.Fatalf("env override not applied: %s", cfg.Clients.Backend.BaseURL)
	}
	if cfg.Clients.Backend.Timeout != 3*time.Second {
		t.Fatalf("file timeout not applied: %v", cfg.Clients.Backend.Timeout)
	}
	if cfg.Cache.Driver != CacheDriverRedis || cfg.Cache.Addr != "cache:6379" || cfg.Cache.CatalogTTL != time.Minute {
		t.Fatalf("unexpected cache config: %+v", cfg.Cache)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("RCA_CONSOLE_CACHE_DRIVER", "memcached")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected validation error")
	}
}
