package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mvalderrama/ecoquiz/internal/config"
	"github.com/mvalderrama/ecoquiz/internal/logging"
	"github.com/mvalderrama/ecoquiz/internal/session"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, handler *Handler, sessionMW *session.Middleware, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Compress(5))

	r.Get("/health", handleHealth)

	// Public pages
	r.Get("/", handler.Index)
	r.Get("/register", handler.RegisterForm)
	r.Post("/register", handler.Register)
	r.Get("/login", handler.LoginForm)
	r.Post("/login", handler.Login)
	r.Get("/logout", handler.Logout)

	// The menu checks the session itself so its redirect carries a notice
	r.Get("/juego", handler.Menu)

	// Protected pages (silent redirect to /login when anonymous)
	r.Group(func(r chi.Router) {
		r.Use(sessionMW.RequireAuth)
		r.Get("/preguntas", handler.Questions)
		r.Post("/preguntas", handler.SubmitAnswers)
		r.Get("/historial", handler.History)
	})

	return r
}

// handleHealth is a simple liveness endpoint
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
