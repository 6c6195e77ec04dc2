package routes

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/BradenHooton/workout-tracker/internal/auth"
	"github.com/BradenHooton/workout-tracker/internal/handlers"
	middlewareCustom "github.com/BradenHooton/workout-tracker/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultRequestTimeout caps each request handled by the router
const DefaultRequestTimeout = 60 * time.Second

// HealthChecker reports whether the backing store is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// RouterConfig carries everything the HTTP surface is built from
type RouterConfig struct {
	AuthHandler    *handlers.AuthHandler
	WorkoutHandler *handlers.WorkoutHandler
	Tokens         auth.TokenValidator
	Health         HealthChecker
	Logger         *slog.Logger

	Env             string
	AllowedOrigins  []string
	LoginRateLimit  int
	RequestTimeout  time.Duration
	DisableLogging  bool
}

// NewRouter builds the chi router with the global middleware stack and all routes
func NewRouter(cfg RouterConfig) chi.Router {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(cfg.Env))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.AllowedOrigins)))
	if !cfg.DisableLogging && cfg.Logger != nil {
		router.Use(middlewareCustom.SecureLogger(cfg.Logger))
	}
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(cfg.RequestTimeout))

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("API running successfully"))
	})
	router.Get("/health", healthHandler(cfg.Health))

	RegisterRoutes(router, cfg)

	return router
}

// RegisterRoutes mounts the API routes under /api
func RegisterRoutes(router chi.Router, cfg RouterConfig) {
	router.Route("/api", func(r chi.Router) {
		// Public routes - no authentication required
		r.With(middlewareCustom.LoginRateLimit(cfg.LoginRateLimit)).Post("/auth/login", cfg.AuthHandler.Login)

		// Protected routes - authentication required
		r.Group(func(r chi.Router) {
			r.Use(auth.AuthMiddleware(cfg.Tokens))

			r.Get("/workouts", cfg.WorkoutHandler.List)
			r.Post("/workouts", cfg.WorkoutHandler.Create)
			r.Put("/workouts/{id}", cfg.WorkoutHandler.Update)
		})
	})
}

func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			if err := checker.HealthCheck(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	}
}
