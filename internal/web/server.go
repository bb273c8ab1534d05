// Package web serves the intake conversation and record administration over
// HTTP.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"screening-bot/internal/config"
	"screening-bot/internal/interviewer"
	"screening-bot/internal/metrics"
	"screening-bot/internal/record"
	"screening-bot/internal/storage"
)

//go:embed static/index.html
var static embed.FS

const surface = "web"

type Server struct {
	app      *fiber.App
	svc      *interviewer.Service
	sessions *sessionStore
	metrics  *metrics.Metrics
	logger   *slog.Logger
	port     int
}

func NewServer(cfg config.ServerConfig, svc *interviewer.Service, m *metrics.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		svc:      svc,
		sessions: newSessionStore(cfg.SessionTTL, time.Now),
		metrics:  m,
		logger:   logger.With("component", "web"),
		port:     cfg.Port,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "screening-bot",
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/", s.index)
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})))

	api := s.app.Group("/api")
	api.Post("/sessions", s.startSession)
	api.Get("/sessions/:id", s.getSession)
	api.Post("/sessions/:id/turns", s.postTurn)
	api.Get("/records", s.listRecords)
	api.Get("/records/:id", s.getRecord)
	api.Delete("/records/:id", s.deleteRecord)
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("listening", "addr", addr)
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// RunJanitor expires idle sessions every interval until ctx is done. Expired
// sessions that were still collecting are recorded as terminated.
func (s *Server) RunJanitor(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.expireSessions(ctx)
		}
	}
}

func (s *Server) expireSessions(ctx context.Context) {
	expired := s.sessions.sweep()
	for _, sess := range expired {
		s.svc.Abandon(ctx, sess)
	}
	if len(expired) > 0 {
		s.logger.Info("expired idle sessions", "count", len(expired))
	}
	s.metrics.SetActiveSessions(surface, s.sessions.count())
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := httpStatus(err)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		s.logger.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func httpStatus(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, errSessionNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, record.ErrUnknownFormat), errors.Is(err, errBadRequest):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
