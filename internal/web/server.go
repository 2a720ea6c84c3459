// Package web serves the HTML form and JSON API in front of the optimizer.
package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/spigell/resume-optimizer/internal/agents"
	"github.com/spigell/resume-optimizer/internal/ai"
	"github.com/spigell/resume-optimizer/internal/ai/gemini"
	"github.com/spigell/resume-optimizer/internal/document"
	"github.com/spigell/resume-optimizer/internal/optimizer"
	"github.com/spigell/resume-optimizer/internal/secrets"
)

const (
	DefaultHost           = "0.0.0.0"
	DefaultPort           = 7860
	DefaultRequestTimeout = 5 * time.Minute
	DefaultMaxReports     = 100
	DefaultMaxUploadSize  = 10 << 20

	appName = "AI Resume Optimizer"
)

// GeneratorFactory builds a generator for the API key resolved for one request.
type GeneratorFactory func(ctx context.Context, apiKey string) (ai.Generator, error)

// Config holds the server settings.
type Config struct {
	Host           string        `mapstructure:"name"`
	Port           int           `mapstructure:"port"`
	RequestTimeout time.Duration `mapstructure:"request-timeout"`
	MaxReports     int           `mapstructure:"max-reports"`
	MaxUploadSize  int           `mapstructure:"max-upload-size"`

	// Parallel runs the agents of one request concurrently.
	Parallel bool `mapstructure:"-"`
}

// Deps are the collaborators the server needs.
type Deps struct {
	// APIKey is the server-side key used when a request carries none.
	APIKey       string
	NewGenerator GeneratorFactory
	Logger       *zap.Logger
}

// Server wires fiber routes to the optimizer.
type Server struct {
	app          *fiber.App
	cfg          Config
	apiKey       string
	newGenerator GeneratorFactory
	reports      *reportStore
	validate     *validator.Validate
	logger       *zap.Logger
}

// New builds a server with routes registered. Zero config values fall back to defaults.
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.NewGenerator == nil {
		return nil, errors.New("generator factory is required")
	}

	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	cfg = withDefaults(cfg)

	s := &Server{
		cfg:          cfg,
		apiKey:       deps.APIKey,
		newGenerator: deps.NewGenerator,
		reports:      newReportStore(cfg.MaxReports),
		validate:     validator.New(),
		logger:       log,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               appName,
		BodyLimit:             cfg.MaxUploadSize,
		ReadTimeout:           30 * time.Second,
		ErrorHandler:          s.handleError,
		DisableStartupMessage: true,
	})

	s.app.Use(recover.New())
	s.app.Use(requestLogger(log))

	s.app.Get("/", s.handleForm)

	api := s.app.Group("/api/v1")
	api.Get("/health", s.handleHealth)
	api.Get("/samples", s.handleSamples)
	api.Post("/optimize", s.handleOptimize)
	api.Get("/reports/:id/download", s.handleDownload)

	return s, nil
}

func withDefaults(cfg Config) Config {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port <= 0 {
		cfg.Port = DefaultPort
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.MaxReports <= 0 {
		cfg.MaxReports = DefaultMaxReports
	}
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = DefaultMaxUploadSize
	}
	return cfg
}

// App exposes the underlying fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Addr is the listen address built from the configured host and port.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

// Listen serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Listen(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(s.Addr())
	}()

	s.logger.Info("server started", zap.String("addr", s.Addr()))

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", s.Addr(), err)
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down server")
		if err := s.app.ShutdownWithTimeout(10 * time.Second); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	}
}

// handleError renders every error as {"error", "code"}.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	if code >= fiber.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.Path()), zap.Int("status", code), zap.Error(err))
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}

func statusFor(err error) int {
	var fe *fiber.Error
	var agentErr *agents.Error

	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, gemini.ErrMissingAPIKey), errors.Is(err, secrets.ErrNotConfigured):
		return fiber.StatusUnauthorized
	case errors.Is(err, optimizer.ErrEmptyResume),
		errors.Is(err, document.ErrUnsupported),
		errors.Is(err, document.ErrNoText):
		return fiber.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	case errors.As(err, &agentErr):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func requestLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = statusFor(err)
		}

		log.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		)

		return err
	}
}
