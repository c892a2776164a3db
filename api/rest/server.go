// Package rest provides the REST API for evaluating equations.
package rest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"yqhp/rpncalc/internal/stats"
)

// Server represents the REST API server.
type Server struct {
	app    *fiber.App
	config *Config
	stats  *stats.Recorder
	log    *zap.Logger
}

// Config holds the configuration for the REST API server.
type Config struct {
	// Address is the address to listen on (e.g., ":8080").
	Address string

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration

	// EnableCORS enables Cross-Origin Resource Sharing.
	EnableCORS bool

	// BodyLimit is the maximum request body size in bytes.
	BodyLimit int

	// MaxBatch caps the number of expressions in one batch request.
	MaxBatch int
}

// DefaultConfig returns a default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:      ":8080",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		EnableCORS:   false,
		BodyLimit:    1 << 20,
		MaxBatch:     1000,
	}
}

// NewServer creates a new REST API server. Nil arguments get defaults.
func NewServer(config *Config, recorder *stats.Recorder, log *zap.Logger) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	if recorder == nil {
		recorder = stats.NewRecorder()
	}
	if log == nil {
		log = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:           config.ReadTimeout,
		WriteTimeout:          config.WriteTimeout,
		BodyLimit:             config.BodyLimit,
		ErrorHandler:          customErrorHandler,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		AppName:               "rpncalc",
		DisableStartupMessage: true,
	})

	server := &Server{
		app:    app,
		config: config,
		stats:  recorder,
		log:    log,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.app.Use(fiberrecover.New(fiberrecover.Config{
		EnableStackTrace: true,
	}))

	s.app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))

	s.app.Use(s.requestLogger())

	if s.config.EnableCORS {
		s.app.Use(cors.New(cors.Config{
			AllowOrigins: "*",
			AllowMethods: "GET,POST,OPTIONS",
			AllowHeaders: "Origin,Content-Type,Accept",
			MaxAge:       86400,
		}))
	}
}

// requestLogger logs every request through zap. stdout stays free for results.
func (s *Server) requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		s.log.Info("request",
			zap.String("request_id", c.GetRespHeader(fiber.HeaderXRequestID)),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err))
		return err
	}
}

func (s *Server) setupRoutes() {
	s.app.Get("/health", s.healthCheck)

	api := s.app.Group("/api/v1")
	api.Get("/health", s.healthCheck)
	api.Post("/evaluate", s.evaluate)
	api.Post("/batch", s.evaluateBatch)
	api.Get("/stats", s.getStats)
}

// StartWithContext serves until ctx is done, then shuts down.
func (s *Server) StartWithContext(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		errCh <- s.app.Listen(s.config.Address)
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying Fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   fmt.Sprintf("error_%d", code),
		Message: message,
	})
}
