// Package server provides the HTTP API wrapping the semantic content store.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/contentarch/semstore/internal/config"
	"github.com/contentarch/semstore/internal/store"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "Content Architect Semantic Store"

// Server is the HTTP server for the semstore API. It is a thin adapter: all
// content semantics live in the store facade.
type Server struct {
	store  *store.Store
	config *config.ServerConfig
	logger *zap.Logger
	server *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(st *store.Store, cfg *config.ServerConfig, logger *zap.Logger) *Server {
	return &Server{
		store:  st,
		config: cfg,
		logger: logger,
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/content", s.handleStoreContent)
	r.Put("/api/v1/content/{id}", s.handleUpdateContent)
	r.Get("/api/v1/content/{id}", s.handleGetContent)
	r.Delete("/api/v1/content/{id}", s.handleDeleteContent)
	r.Post("/api/v1/search", s.handleSearch)
	r.Get("/api/v1/search/keyword", s.handleKeywordSearch)
	r.Get("/api/v1/analytics", s.handleAnalytics)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)

	return r
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
