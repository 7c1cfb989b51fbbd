package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// loadFromEnv overrides config from FAMJAM_* environment variables.
func loadFromEnv(cfg *Config) error {
	if v := env("FAMJAM_BACKEND"); v != "" {
		cfg.Backend = strings.ToLower(v)
	}
	if v := env("FAMJAM_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := env("FAMJAM_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := env("FAMJAM_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FAMJAM_REDIS_DB: %w", err)
		}
		cfg.Redis.DB = n
	}
	if v, ok := os.LookupEnv("FAMJAM_REDIS_PREFIX"); ok {
		cfg.Redis.Prefix = v
	}
	if v := env("FAMJAM_SQLITE_PATH"); v != "" {
		cfg.SQLite.Path = v
	}
	if v := env("FAMJAM_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("FAMJAM_POLL_INTERVAL: %w", err)
		}
		cfg.SQLite.PollInterval = Duration{d}
	}
	if v := env("FAMJAM_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := env("FAMJAM_LOG_FORMAT"); v != "" {
		cfg.Log.Format = strings.ToLower(v)
	}
	if v := env("FAMJAM_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := env("FAMJAM_WEB_ADDR"); v != "" {
		cfg.Web.Addr = v
	}
	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
