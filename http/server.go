// Package http exposes the pilot over HTTP using Fiber: study browsing and
// search, checklist responses, and the assistant.
package http

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/pilot"
	"github.com/fwojciec/pilot/assistant"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// DefaultSearchCacheTTL is how long a search response is served from cache.
const DefaultSearchCacheTTL = 10 * time.Minute

// DefaultSearchCacheSize caps the number of cached search responses.
const DefaultSearchCacheSize = 1000

// DefaultAuthCacheTTL is how long a successful authentication is remembered
// before the credentials are checked against the user service again.
const DefaultAuthCacheTTL = 5 * time.Minute

// Server serves the pilot HTTP API.
type Server struct {
	app       *fiber.App
	cache     *cache.Cache
	cacheSize int
	sessions  *cache.Cache

	Index        *pilot.Index
	Assistant    *assistant.Session
	Checklist    pilot.ChecklistService
	ChecklistDef *pilot.Checklist
	Users        pilot.UserService
	Logger       *slog.Logger

	// ChatLimiter limits chat turns per user.
	ChatLimiter *KeyLimiter

	// AuthLimiter limits failed authentications per client address.
	AuthLimiter *KeyLimiter
}

// Option configures a Server.
type Option func(*serverConfig)

type serverConfig struct {
	requestLog io.Writer
	cacheTTL   time.Duration
	cacheSize  int
	authTTL    time.Duration
}

// WithRequestLog writes one access log line per request to w.
func WithRequestLog(w io.Writer) Option {
	return func(c *serverConfig) {
		c.requestLog = w
	}
}

// WithSearchCacheTTL sets how long search responses are cached.
// Defaults to DefaultSearchCacheTTL.
func WithSearchCacheTTL(d time.Duration) Option {
	return func(c *serverConfig) {
		c.cacheTTL = d
	}
}

// WithSearchCacheSize caps the number of cached search responses.
// Defaults to DefaultSearchCacheSize.
func WithSearchCacheSize(n int) Option {
	return func(c *serverConfig) {
		c.cacheSize = n
	}
}

// WithAuthCacheTTL sets how long successful authentications are remembered.
// Defaults to DefaultAuthCacheTTL.
func WithAuthCacheTTL(d time.Duration) Option {
	return func(c *serverConfig) {
		c.authTTL = d
	}
}

// NewServer creates a new Server with its routes registered. Services are
// assigned to the exported fields before serving.
func NewServer(opts ...Option) *Server {
	cfg := &serverConfig{
		cacheTTL:  DefaultSearchCacheTTL,
		cacheSize: DefaultSearchCacheSize,
		authTTL:   DefaultAuthCacheTTL,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &Server{
		cache:     cache.New(cfg.cacheTTL, 2*cfg.cacheTTL),
		cacheSize: cfg.cacheSize,
		sessions:  cache.New(cfg.authTTL, 2*cfg.authTTL),

		// One chat turn per second with bursts of five.
		ChatLimiter: NewKeyLimiter(1, 5),

		// Five failed logins per fifteen minutes.
		AuthLimiter: NewKeyLimiter(rate.Every(3*time.Minute), 5),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "pilot",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	s.app.Use(recover.New())
	if cfg.requestLog != nil {
		s.app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
			TimeFormat: time.RFC3339,
			Output:     cfg.requestLog,
		}))
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	etude := s.app.Group("/etude", s.authenticate)
	etude.Get("/:version", s.handleStudy)
	etude.Get("/:version/section/:id", s.handleSection)

	api := s.app.Group("/api", s.authenticate)
	api.Get("/search", s.handleSearch)

	chat := api.Group("/assistant")
	chat.Post("/message", s.limitChat, s.handleMessage)
	chat.Get("/conversation/:id", s.handleConversation)
	chat.Post("/new", s.handleNewConversation)
	chat.Get("/history", s.handleHistory)

	checklist := api.Group("/checklist")
	checklist.Get("/", s.handleChecklist)
	checklist.Get("/progress", s.handleChecklistProgress)
	checklist.Put("/:fieldId", s.handleSaveChecklistResponse)
	checklist.Delete("/:fieldId", s.handleDeleteChecklistResponse)
}

// App returns the underlying Fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves HTTP on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger().Info("listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}
