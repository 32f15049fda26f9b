// Package httpapi serves the graph and its history over HTTP for the
// desktop front end.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"cortexmap/internal/ports"
)

// Router wires the HTTP routes onto the graph store and the versioner
type Router struct {
	graph         ports.GraphStore
	versioner     ports.Versioner
	logger        *zap.Logger
	allowedOrigin string
}

// NewRouter creates a new router instance
func NewRouter(graph ports.GraphStore, versioner ports.Versioner, logger *zap.Logger, allowedOrigin string) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		graph:         graph,
		versioner:     versioner,
		logger:        logger.Named("http"),
		allowedOrigin: allowedOrigin,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Use(Logger(rt.logger))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{rt.allowedOrigin},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	router.Get("/health", healthCheck)

	state := NewStateHandler(rt.graph, rt.logger)
	router.Get("/state", state.GetState)
	router.Post("/state", state.SaveState)

	commits := NewCommitHandler(rt.versioner, rt.logger)
	router.Route("/commits", func(r chi.Router) {
		r.Get("/", commits.ListCommits)
		r.Post("/", commits.CreateCommit)
		r.Post("/{commitID}/restore", commits.RestoreCommit)
		r.Get("/{commitID}/snapshot", commits.GetSnapshot)
	})

	return router
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("CortexMap API is running"))
}
