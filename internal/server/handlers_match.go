package server

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/jonathan/talent-match/internal/normalize"
	"github.com/jonathan/talent-match/internal/taxonomy"
	"github.com/jonathan/talent-match/internal/types"
)

// MatchRequest are the ranking parameters. Page and Size default to the
// first page of 20 when omitted. Weights, when present, replace the
// configured component weights wholesale for this request.
type MatchRequest struct {
	Page    int                 `json:"page,omitempty"`
	Size    int                 `json:"size,omitempty"`
	Weights *types.MatchWeights `json:"weights,omitempty"`
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	job, err := s.store.GetJob(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if job == nil {
		nf := &ErrNotFound{Kind: "job", ID: id}
		s.errorResponse(w, HTTPStatus(nf), nf.Error())
		return
	}

	req := MatchRequest{Page: 1, Size: 20}
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Size == 0 {
		req.Size = 20
	}

	ranker := s.ranker
	if req.Weights != nil {
		if err := req.Weights.Validate(); err != nil {
			s.errorResponse(w, http.StatusBadRequest, "Invalid weights: "+err.Error())
			return
		}
		ranker = ranker.WithWeights(*req.Weights)
	}

	candidates, err := s.store.AllCandidates(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	page, err := ranker.Rank(r.Context(), job, candidates, req.Page, req.Size)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	s.log.Info("ranking computed",
		zap.String("job_id", id),
		zap.Int("total", page.Total),
		zap.Int("excluded", page.Excluded))

	s.jsonResponse(w, http.StatusOK, page)
}

// handleTaxonomyReload swaps in a freshly loaded taxonomy snapshot. On
// failure the previous snapshot stays active.
func (s *Server) handleTaxonomyReload(w http.ResponseWriter, r *http.Request) {
	if err := s.taxonomy.Reload(r.Context()); err != nil {
		s.log.Error("taxonomy reload failed", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Taxonomy reload failed: "+err.Error())
		return
	}
	snap := s.taxonomy.Current()
	s.log.Info("taxonomy reloaded", zap.Int("entities", snap.Len()))
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":   "reloaded",
		"entities": snap.Len(),
	})
}

// NormalizeRequest is a batch of raw entity names to resolve.
type NormalizeRequest struct {
	Category string   `json:"category"`
	Names    []string `json:"names"`
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	var req NormalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cat := taxonomy.Category(req.Category)
	if cat != taxonomy.CategorySkill && cat != taxonomy.CategoryJobTitle {
		s.errorResponse(w, http.StatusBadRequest, "category must be skill or job_title")
		return
	}
	if len(req.Names) == 0 {
		s.errorResponse(w, http.StatusBadRequest, "names is required")
		return
	}

	results := s.normalizer.NormalizeAll(s.taxonomy.Current(), req.Names, cat)
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"results": results,
		"stats":   normalize.Summarize(results),
	})
}
