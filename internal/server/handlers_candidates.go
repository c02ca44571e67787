package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/talent-match/internal/normalize"
	"github.com/jonathan/talent-match/internal/scoring"
	"github.com/jonathan/talent-match/internal/taxonomy"
	"github.com/jonathan/talent-match/internal/types"
)

// enrichCandidate normalizes a candidate's skills, derives metrics, and
// computes the universal profile score against the current taxonomy
// snapshot. Performed wholesale on every create, update, and recompute.
func (s *Server) enrichCandidate(cand *types.Candidate) []string {
	snap := s.taxonomy.Current()

	cand.NormalizedSkills = cand.NormalizedSkills[:0]
	for _, res := range s.normalizer.NormalizeAll(snap, cand.Skills, taxonomy.CategorySkill) {
		if res.MatchType != normalize.MatchNone {
			cand.NormalizedSkills = append(cand.NormalizedSkills, res.CanonicalID)
		}
	}

	m, warnings := s.calculator.Compute(snap, cand, s.cfg.DomainKeywords)
	cand.Metrics = &m

	score, err := scoring.ComputeUniversalScore(m, s.cfg.ProfileWeights)
	if err != nil {
		warnings = append(warnings, err.Error())
		score = 0
	}
	cand.UniversalScore = score
	return warnings
}

func (s *Server) handleCreateCandidate(w http.ResponseWriter, r *http.Request) {
	var cand types.Candidate
	if err := json.NewDecoder(r.Body).Decode(&cand); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if cand.Name == "" {
		s.errorResponse(w, http.StatusBadRequest, "Name is required")
		return
	}
	if cand.ID == "" {
		cand.ID = uuid.NewString()
	} else if existing, err := s.store.GetCandidate(r.Context(), cand.ID); err == nil && existing != nil {
		err := &ErrConflict{Kind: "candidate", ID: cand.ID}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	warnings := s.enrichCandidate(&cand)

	if err := s.store.SaveCandidate(r.Context(), &cand); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, map[string]any{
		"candidate": cand,
		"warnings":  warnings,
	})
}

func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	cand, err := s.store.GetCandidate(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if cand == nil {
		err := &ErrNotFound{Kind: "candidate", ID: id}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, cand)
}

func (s *Server) handleUpdateCandidate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	existing, err := s.store.GetCandidate(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if existing == nil {
		nf := &ErrNotFound{Kind: "candidate", ID: id}
		s.errorResponse(w, HTTPStatus(nf), nf.Error())
		return
	}

	var cand types.Candidate
	if err := json.NewDecoder(r.Body).Decode(&cand); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	cand.ID = id
	cand.CreatedAt = existing.CreatedAt

	warnings := s.enrichCandidate(&cand)

	if err := s.store.SaveCandidate(r.Context(), &cand); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"candidate": cand,
		"warnings":  warnings,
	})
}

func (s *Server) handleDeleteCandidate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.DeleteCandidate(r.Context(), id); err != nil {
		if err.Error() == "candidate not found: "+id {
			s.errorResponse(w, http.StatusNotFound, "Candidate not found")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", 50)
	offset := parseQueryInt(r, "offset", 0)

	cands, err := s.store.ListCandidates(r.Context(), limit, offset)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if cands == nil {
		cands = []*types.Candidate{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"candidates": cands})
}

// handleRecomputeMetrics re-derives metrics and the universal score from the
// stored work history, e.g. after a taxonomy reload.
func (s *Server) handleRecomputeMetrics(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	cand, err := s.store.GetCandidate(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if cand == nil {
		nf := &ErrNotFound{Kind: "candidate", ID: id}
		s.errorResponse(w, HTTPStatus(nf), nf.Error())
		return
	}

	warnings := s.enrichCandidate(cand)
	if err := s.store.SaveCandidate(r.Context(), cand); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.log.Info("metrics recomputed",
		zap.String("candidate_id", id),
		zap.Int("warnings", len(warnings)))

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"metrics":                 cand.Metrics,
		"universal_profile_score": cand.UniversalScore,
		"warnings":                warnings,
	})
}
