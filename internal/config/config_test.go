package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	t.Parallel()

	cfg := Default("/tmp/famjam")
	if cfg.Backend != BackendSQLite {
		t.Errorf("Backend: got %q, want %q", cfg.Backend, BackendSQLite)
	}
	if cfg.SQLite.Path != filepath.Join("/tmp/famjam", "famjam.db") {
		t.Errorf("SQLite.Path: got %q", cfg.SQLite.Path)
	}
	if cfg.SQLite.PollInterval.Duration != DefaultPollInterval {
		t.Errorf("PollInterval: got %s", cfg.SQLite.PollInterval)
	}
	if cfg.Redis.Prefix != DefaultRedisPrefix {
		t.Errorf("Redis.Prefix: got %q", cfg.Redis.Prefix)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_MissingDefaultFileIsFine(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend != BackendSQLite {
		t.Fatalf("Backend: got %q", cfg.Backend)
	}
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(dir, filepath.Join(dir, "nope.toml")); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	body := `
backend = "redis"

[redis]
addr = "redis.internal:6380"
prefix = "home:"

[sqlite]
poll_interval = "1s"

[log]
level = "debug"
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("FAMJAM_REDIS_ADDR", "10.0.0.2:6379")
	t.Setenv("FAMJAM_REDIS_DB", "3")

	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend != BackendRedis {
		t.Errorf("Backend: got %q", cfg.Backend)
	}
	if cfg.Redis.Addr != "10.0.0.2:6379" {
		t.Errorf("env should override file addr; got %q", cfg.Redis.Addr)
	}
	if cfg.Redis.DB != 3 {
		t.Errorf("Redis.DB: got %d", cfg.Redis.DB)
	}
	if cfg.Redis.Prefix != "home:" {
		t.Errorf("Redis.Prefix: got %q", cfg.Redis.Prefix)
	}
	if cfg.SQLite.PollInterval.Duration != time.Second {
		t.Errorf("PollInterval: got %s", cfg.SQLite.PollInterval)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level: got %q", cfg.Log.Level)
	}
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv("FAMJAM_POLL_INTERVAL", "often")
	if _, err := Load(t.TempDir(), ""); err == nil || !strings.Contains(err.Error(), "FAMJAM_POLL_INTERVAL") {
		t.Fatalf("expected poll interval error; got %v", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"redis", func(c *Config) { c.Backend = BackendRedis }, false},
		{"unknown backend", func(c *Config) { c.Backend = "firestore" }, true},
		{"redis without addr", func(c *Config) { c.Backend = BackendRedis; c.Redis.Addr = "" }, true},
		{"sqlite without path", func(c *Config) { c.SQLite.Path = " " }, true},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, true},
	}
	for _, tt := range tests {
		cfg := Default(t.TempDir())
		tt.mutate(cfg)
		if err := cfg.Validate(); (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() err=%v, wantErr=%v", tt.name, err, tt.wantErr)
		}
	}
}
