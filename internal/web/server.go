// Package web exposes boards over HTTP: REST actions plus a WebSocket live view.
package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"famjam-cli/internal/dispatch"
	"famjam-cli/internal/remote"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"
)

type ServerConfig struct {
	Addr   string
	Store  remote.Store
	Logger log.FieldLogger
}

type Server struct {
	cfg    ServerConfig
	disp   *dispatch.Dispatcher
	logger log.FieldLogger
	e      *echo.Echo
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("web: missing store")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	s := &Server{
		cfg:    cfg,
		disp:   dispatch.New(cfg.Store, logger),
		logger: logger.WithField("component", "web"),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(s.requestLogger)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	e.GET("/health", s.handleHealth)
	e.GET("/api/normalize", s.handleNormalize)

	boards := e.Group("/api/boards/:board")
	boards.GET("/tasks", s.handleListTasks)
	boards.POST("/tasks", s.handleCreateTask)
	boards.PUT("/tasks/:id/status", s.handleSetStatus)
	boards.DELETE("/tasks/:id", s.handleDeleteTask)
	boards.POST("/clear-done", s.handleClearDone)

	e.GET("/ws", s.handleWS)

	s.e = e
	return s, nil
}

func (s *Server) Addr() string { return strings.TrimSpace(s.cfg.Addr) }

func (s *Server) Handler() http.Handler { return s.e }

// Serve runs until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.e,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		s.logger.WithFields(log.Fields{
			"method":      c.Request().Method,
			"path":        c.Path(),
			"status":      c.Response().Status,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Debug("request completed")
		return nil
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	if err := s.cfg.Store.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{"ok": false, "error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}
