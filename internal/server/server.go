// Package server exposes the snippet builder over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"snippet_find/internal/logging"
	"snippet_find/pkg/snippets"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	e        *echo.Echo
	defaults snippets.Config
	breaker  snippets.Breaker
	logger   *slog.Logger
}

type Options struct {
	// Defaults apply to every request that does not set its own lengths.
	Defaults snippets.Config
	// Breaker overrides the default UAX#29 sentence breaker.
	Breaker snippets.Breaker
	Logger  *slog.Logger
}

// SnippetsRequest is the body of POST /v1/snippets. Zero lengths fall back
// to the server's configured defaults.
type SnippetsRequest struct {
	Text      string   `json:"text"`
	Terms     []string `json:"terms"`
	MinLength int      `json:"min_length,omitempty"`
	MaxLength int      `json:"max_length,omitempty"`
	Lookahead int      `json:"lookahead,omitempty"`
}

type SnippetsResponse struct {
	Snippets []snippets.Snippet `json:"snippets"`
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Server{e: echo.New(), defaults: opts.Defaults, breaker: opts.Breaker, logger: logger}
	s.e.HideBanner = true
	s.e.HidePort = true

	s.e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ctx := c.Request().Context()
			if v.Error == nil {
				logger.InfoContext(ctx, "request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				logger.ErrorContext(ctx, "request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))
	s.e.Use(middleware.Recover())
	s.e.Use(middleware.BodyLimit("8M"))

	s.e.GET("/healthz", s.handleHealth)
	s.e.POST("/v1/snippets", s.handleSnippets)
	return s
}

func (s *Server) Handler() http.Handler { return s.e }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		s.logger.InfoContext(ctx, "starting snippet server", "address", addr)
		if err := s.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("server exited properly")
	return nil
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSnippets(c echo.Context) error {
	var req SnippetsRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	cfg := s.defaults
	if req.MinLength > 0 {
		cfg.MinLength = req.MinLength
	}
	if req.MaxLength > 0 {
		cfg.MaxLength = req.MaxLength
	}
	if req.Lookahead > 0 {
		cfg.Lookahead = req.Lookahead
	}
	b := snippets.New(cfg)
	if s.breaker != nil {
		b = b.WithBreaker(s.breaker)
	}
	out := b.Build(req.Text, req.Terms)
	return c.JSON(http.StatusOK, SnippetsResponse{Snippets: out})
}
