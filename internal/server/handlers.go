package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/reachwell/creator-scout/internal/compat"
	"github.com/reachwell/creator-scout/internal/ingest"
	"github.com/reachwell/creator-scout/internal/model"
	"github.com/reachwell/creator-scout/internal/social"
	"github.com/reachwell/creator-scout/internal/store"
)

func (s *Server) handleCrawl(w http.ResponseWriter, r *http.Request) {
	if s.deps.Crawl == nil {
		writeError(w, http.StatusServiceUnavailable, "crawling is not configured")
		return
	}
	var req CrawlRequest
	if !decodeBody(w, r, &req) {
		return
	}
	report, err := s.deps.Crawl(r.Context(), req)
	if err != nil {
		zap.L().Error("crawl run failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingest.Request
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Results) == 0 {
		writeError(w, http.StatusBadRequest, "results are required")
		return
	}
	resp, err := s.deps.Ingest.Ingest(r.Context(), req)
	if err != nil {
		zap.L().Error("ingestion failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DiscoveryRunID string `json:"discovery_run_id,omitempty"`
		Limit          int    `json:"limit,omitempty"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.deps.Resolver.Resolve(r.Context(), req.DiscoveryRunID, req.Limit)
	if err != nil {
		zap.L().Error("identity resolution failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEnrichStan(w http.ResponseWriter, r *http.Request) {
	if s.deps.Stan == nil {
		writeError(w, http.StatusServiceUnavailable, "storefront enrichment is not configured")
		return
	}
	var req struct {
		DiscoveryRunID string `json:"discovery_run_id,omitempty"`
		IdentityID     int64  `json:"creator_identity_id,omitempty"`
		StanSlug       string `json:"stan_slug,omitempty"`
		Limit          int    `json:"limit,omitempty"`
		Force          bool   `json:"force,omitempty"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.deps.Stan.EnrichBatch(r.Context(), store.StanSelector{
		DiscoveryRunID: req.DiscoveryRunID,
		IdentityID:     req.IdentityID,
		StanSlug:       req.StanSlug,
		Limit:          req.Limit,
		Force:          req.Force,
	})
	if err != nil {
		zap.L().Error("storefront enrichment failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEnrichSocial(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IdentityID          int64 `json:"creator_identity_id,omitempty"`
		Limit               int   `json:"limit,omitempty"`
		Force               bool  `json:"force,omitempty"`
		MinFollowerEstimate int64 `json:"min_follower_estimate,omitempty"`
		DryRun              bool  `json:"dry_run,omitempty"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.deps.Social.EnrichBatch(r.Context(), social.Request{
		IdentityID:          req.IdentityID,
		Limit:               req.Limit,
		Force:               req.Force,
		MinFollowerEstimate: req.MinFollowerEstimate,
		DryRun:              req.DryRun,
	})
	if err != nil {
		zap.L().Error("social enrichment failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IdentityID int64           `json:"creator_identity_id"`
		Brand      model.BrandSpec `json:"brand"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.IdentityID == 0 {
		writeError(w, http.StatusBadRequest, "creator_identity_id is required")
		return
	}
	fs, err := s.deps.Extractor.FeatureSet(r.Context(), req.IdentityID)
	if err != nil {
		zap.L().Error("feature extraction failed",
			zap.Int64("identity_id", req.IdentityID), zap.Error(err))
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	score := compat.Score(req.Brand, *fs)
	writeJSON(w, http.StatusOK, map[string]any{
		"features": fs,
		"score":    score,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	report, err := s.deps.Ingest.Coverage(r.Context(), runID)
	if err != nil {
		zap.L().Error("coverage lookup failed", zap.String("run_id", runID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}
