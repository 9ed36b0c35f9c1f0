package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/ramonehamilton/EDH-Tracker/internal/api/handlers"
	"github.com/ramonehamilton/EDH-Tracker/internal/collection"
	"github.com/ramonehamilton/EDH-Tracker/internal/friends"
	"github.com/ramonehamilton/EDH-Tracker/internal/metrics"
)

// Server represents the REST API server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	port       int
	admins     []string
	logger     *zap.Logger
	metrics    *metrics.APIMetrics

	services *Services
}

// Config holds configuration for the API server.
type Config struct {
	Port           int
	AllowedOrigins []string
	AdminUsers     []string // User IDs allowed on /admin routes
}

// DefaultConfig returns the default API server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:           8080,
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*", "https://localhost:*"},
	}
}

// Services holds the domain services behind the API.
type Services struct {
	Friends    *friends.Service
	Collection *collection.Service
	Cards      handlers.CardLookup
	Jobs       []handlers.Job // Maintenance jobs runnable from /admin/jobs
}

// NewServer creates a new API server.
func NewServer(cfg *Config, services *Services, logger *zap.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		router:   chi.NewRouter(),
		port:     cfg.Port,
		admins:   cfg.AdminUsers,
		logger:   logger,
		metrics:  metrics.NewAPIMetrics(0),
		services: services,
	}

	s.setupMiddleware(cfg.AllowedOrigins)
	s.setupRoutes()

	return s
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware(allowedOrigins []string) {
	s.router.Use(requestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(recordMetrics(s.metrics))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	if len(allowedOrigins) == 0 {
		allowedOrigins = DefaultConfig().AllowedOrigins
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-User-ID", "X-User-Email"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s.router.Use(jsonContentTypeMiddleware)
}

// jsonContentTypeMiddleware enforces a JSON content type for requests with
// bodies. Gzip bodies are accepted for backup uploads.
func jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if contentType != "application/json" &&
				!strings.HasPrefix(contentType, "application/json;") &&
				contentType != "application/gzip" {
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the API server in a goroutine.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.port, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", zap.Int("port", s.port))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", zap.Error(err))
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("shutting down API server")
	return s.httpServer.Shutdown(ctx)
}

// Port returns the port the server is configured to listen on.
func (s *Server) Port() int {
	return s.port
}

// Metrics returns the request metrics collector.
func (s *Server) Metrics() *metrics.APIMetrics {
	return s.metrics
}
