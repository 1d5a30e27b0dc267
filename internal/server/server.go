package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jonathan/interview-coach/internal/config"
	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/observability"
	"github.com/jonathan/interview-coach/internal/server/middleware"
	"golang.org/x/sync/errgroup"
)

const (
	// maxBodyBytes bounds request bodies; résumé text is the largest payload.
	maxBodyBytes = 1 << 20
	// healthTimeout bounds the store ping behind GET /health.
	healthTimeout = 2 * time.Second
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds server configuration
type Config struct {
	Port            int
	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

// Dependencies are the services the handlers call into.
type Dependencies struct {
	Users      DBClient
	Interviews *interview.Service
	Passwords  *config.PasswordConfig
	JWT        *JWTService
	// Health is optional; without it /health only reports that the process is up.
	Health  Pinger
	Metrics *observability.Metrics
	Logger  *slog.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer      *http.Server
	router          chi.Router
	logger          *slog.Logger
	users           *UserService
	interviews      *interview.Service
	health          Pinger
	authHandler     *AuthHandler
	shutdownTimeout time.Duration
}

// New creates a new server instance
func New(cfg Config, deps Dependencies) (*Server, error) {
	if deps.Users == nil || deps.Interviews == nil || deps.Passwords == nil || deps.JWT == nil {
		return nil, errors.New("server: users, interviews, passwords and jwt are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}

	users := NewUserService(deps.Users, deps.Passwords)
	s := &Server{
		logger:          logger,
		users:           users,
		interviews:      deps.Interviews,
		health:          deps.Health,
		authHandler:     NewAuthHandler(users, deps.JWT, logger),
		shutdownTimeout: cfg.ShutdownTimeout,
	}

	var observer middleware.HTTPObserver
	if deps.Metrics != nil {
		observer = deps.Metrics
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, middleware.RequestLogger(logger, observer), chimw.Recoverer)
	r.Use(chimw.RequestSize(maxBodyBytes))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Post("/auth/register", s.authHandler.Register)
	r.Post("/auth/login", s.authHandler.Login)

	r.Group(func(pr chi.Router) {
		pr.Use(middleware.AuthMiddleware(deps.JWT.AsTokenValidator()))

		pr.Get("/auth/profile", s.authHandler.Profile)
		pr.Post("/resume", s.handleUploadResume)

		pr.Route("/interview", func(ir chi.Router) {
			ir.Post("/", s.handleStartInterview)
			ir.Get("/history", s.handleHistory)
			ir.Get("/statistics", s.handleStatistics)
			ir.Post("/{id}/answer", s.handleSubmitAnswer)
			ir.Get("/{id}/result", s.handleResult)
		})
	})

	s.router = r
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Question generation waits on the model provider
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		s.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		s.logger.Info("server stopped")
		return nil
	})

	return g.Wait()
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := s.health.Ping(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "health check failed", "error", err)
			jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("failed to encode JSON response", "error", err)
	}
}

// errorResponse writes an error JSON response
func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to a status. Storage and unexpected failures are logged
// and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := HTTPStatus(err)
	message := err.Error()

	switch {
	case status == http.StatusInternalServerError:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		message = "internal server error"
	case status >= http.StatusInternalServerError:
		logger.WarnContext(r.Context(), "upstream failure", "path", r.URL.Path, "status", status, "error", err)
	}

	errorResponse(w, status, message)
}
