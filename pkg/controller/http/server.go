package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/kasumi/pkg/usecase"
	"github.com/m-mizutani/kasumi/pkg/utils/safe"
)

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	uc     *usecase.Assistant
}

// Options is a functional option for Server
type Options func(*Server)

// WithUseCase sets the assistant use cases
func WithUseCase(uc *usecase.Assistant) Options {
	return func(s *Server) {
		s.uc = uc
	}
}

// New creates a new HTTP server
func New(opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Apply middleware
	r.Use(loggingMiddleware)
	r.Use(panicRecoveryMiddleware)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", s.handleChat)
		r.Post("/feedback", s.handleSubmitFeedback)
		r.Get("/feedback", s.handleListFeedback)
		r.Post("/improve", s.handleImprove)

		r.Route("/prompt", func(r chi.Router) {
			r.Get("/current", s.handleCurrentPrompt)
			r.Get("/history", s.handlePromptHistory)
			r.Get("/history/{version}", s.handlePromptVersion)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", s.handleListSessions)
			r.Post("/", s.handleStartSession)
			r.Get("/current", s.handleCurrentSession)
			r.Delete("/current", s.handleClearCurrentSession)
			r.Get("/{id}", s.handleGetSession)
			r.Delete("/{id}", s.handleDeleteSession)
		})

		r.Delete("/history", s.handleClearAllHistory)
		r.Get("/stats", s.handleStats)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		safe.Write(r.Context(), w, []byte("OK"))
	})

	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
