// Package server exposes the discovery pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/reachwell/creator-scout/internal/crawl"
	"github.com/reachwell/creator-scout/internal/identity"
	"github.com/reachwell/creator-scout/internal/ingest"
	"github.com/reachwell/creator-scout/internal/signals"
	"github.com/reachwell/creator-scout/internal/social"
	"github.com/reachwell/creator-scout/internal/stan"
	"github.com/reachwell/creator-scout/internal/store"
)

// CrawlRequest is the body of POST /api/crawl.
type CrawlRequest struct {
	AgentIDs           []string `json:"agent_ids,omitempty"`
	Engine             string   `json:"engine,omitempty"`
	MaxResultsPerQuery int      `json:"max_results_per_query,omitempty"`
	MaxResultsPerAgent int      `json:"max_results_per_agent,omitempty"`
	RelaxedMatching    bool     `json:"relaxed_matching,omitempty"`
}

// CrawlFunc executes one crawl run. The serve command supplies a closure
// that owns browser and engine setup, so the handler stays transport-only.
type CrawlFunc func(ctx context.Context, req CrawlRequest) (*crawl.Report, error)

// Deps wires the pipeline services into the server.
type Deps struct {
	Store     store.Store
	Crawl     CrawlFunc
	Ingest    *ingest.Service
	Resolver  *identity.Resolver
	Stan      *stan.Enricher
	Social    *social.Enricher
	Extractor *signals.Extractor
}

// Server routes pipeline operations over HTTP.
type Server struct {
	deps   Deps
	router chi.Router
}

// New builds a Server with its routes mounted.
func New(deps Deps) *Server {
	s := &Server{deps: deps}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/crawl", s.handleCrawl)
		r.Post("/ingest", s.handleIngest)
		r.Post("/resolve", s.handleResolve)
		r.Post("/enrich/stan", s.handleEnrichStan)
		r.Post("/enrich/social", s.handleEnrichSocial)
		r.Post("/score", s.handleScore)
		r.Get("/status/{runID}", s.handleStatus)
	})
	s.router = r
	return s
}

// Handler returns the mounted HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("response encode failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
