// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

type Options struct {
	Level  string
	Format string // text|json
	File   string // when set, logs are appended here instead of Fallback
	// Fallback receives logs when File is empty. Defaults to stderr.
	Fallback io.Writer
}

// New returns a logger and a close func for the log file (a no-op when logging to Fallback).
func New(opts Options) (*log.Logger, func() error, error) {
	logger := log.New()
	closeFn := func() error { return nil }

	level := log.InfoLevel
	if s := strings.TrimSpace(opts.Level); s != "" {
		lvl, err := log.ParseLevel(s)
		if err != nil {
			return nil, closeFn, fmt.Errorf("log level: %w", err)
		}
		level = lvl
	}
	logger.SetLevel(level)

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "json":
		logger.SetFormatter(&log.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: log.FieldMap{
				log.FieldKeyTime: "ts",
				log.FieldKeyMsg:  "message",
			},
		})
	default:
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	}

	out := opts.Fallback
	if out == nil {
		out = os.Stderr
	}
	if path := strings.TrimSpace(opts.File); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, closeFn, err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, closeFn, err
		}
		out = f
		closeFn = f.Close
	}
	logger.SetOutput(out)
	return logger, closeFn, nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}
