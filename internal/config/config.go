// Package config resolves famjam settings from defaults, a TOML file and the environment.
// Command-line flags are applied on top by the cli package.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	FileName = "famjam.toml"

	BackendRedis  = "redis"
	BackendSQLite = "sqlite"

	DefaultRedisAddr    = "127.0.0.1:6379"
	DefaultRedisPrefix  = "famjam:"
	DefaultPollInterval = 250 * time.Millisecond
	DefaultWebAddr      = "127.0.0.1:8089"
	DefaultLogLevel     = "info"
)

type Config struct {
	Backend string       `toml:"backend"`
	Redis   RedisConfig  `toml:"redis"`
	SQLite  SQLiteConfig `toml:"sqlite"`
	Log     LogConfig    `toml:"log"`
	Web     WebConfig    `toml:"web"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

type SQLiteConfig struct {
	Path         string   `toml:"path"`
	PollInterval Duration `toml:"poll_interval"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // text|json
	File   string `toml:"file"`
}

type WebConfig struct {
	Addr string `toml:"addr"`
}

// Duration decodes TOML strings such as "500ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings. dir is the famjam config directory.
func Default(dir string) *Config {
	return &Config{
		Backend: BackendSQLite,
		Redis: RedisConfig{
			Addr:   DefaultRedisAddr,
			Prefix: DefaultRedisPrefix,
		},
		SQLite: SQLiteConfig{
			Path:         filepath.Join(dir, "famjam.db"),
			PollInterval: Duration{DefaultPollInterval},
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: "text",
		},
		Web: WebConfig{Addr: DefaultWebAddr},
	}
}

// Load applies, in order: defaults, the TOML file, FAMJAM_* environment variables.
//
// When path is empty the file is dir/famjam.toml and may be absent; an explicit path must exist.
func Load(dir, path string) (*Config, error) {
	cfg := Default(dir)

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = filepath.Join(dir, FileName)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings no backend can run with.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendRedis:
		if strings.TrimSpace(c.Redis.Addr) == "" {
			return errors.New("redis backend requires an address")
		}
	case BackendSQLite:
		if strings.TrimSpace(c.SQLite.Path) == "" {
			return errors.New("sqlite backend requires a database path")
		}
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendRedis, BackendSQLite)
	}
	if c.SQLite.PollInterval.Duration < 0 {
		return fmt.Errorf("poll interval must not be negative: %s", c.SQLite.PollInterval)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", c.Log.Format)
	}
	return nil
}
