package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/talent-match/internal/normalize"
	"github.com/jonathan/talent-match/internal/taxonomy"
	"github.com/jonathan/talent-match/internal/types"
)

// enrichJob normalizes the job's required skills against the current
// taxonomy snapshot. Skills with no canonical match go into UnmatchedSkills
// and are compared raw during matching.
func (s *Server) enrichJob(job *types.Job) {
	snap := s.taxonomy.Current()
	job.NormalizedSkills = job.NormalizedSkills[:0]
	job.UnmatchedSkills = job.UnmatchedSkills[:0]
	for _, res := range s.normalizer.NormalizeAll(snap, job.RequiredSkills, taxonomy.CategorySkill) {
		if res.MatchType == normalize.MatchNone {
			job.UnmatchedSkills = append(job.UnmatchedSkills, normalize.CleanEntityName(res.Original))
		} else {
			job.NormalizedSkills = append(job.NormalizedSkills, res.CanonicalID)
		}
	}
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var job types.Job
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if job.Title == "" {
		s.errorResponse(w, http.StatusBadRequest, "Title is required")
		return
	}
	if job.MinimumExperienceYears < 0 {
		s.errorResponse(w, http.StatusBadRequest, "minimum_experience_years must be non-negative")
		return
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	} else if existing, err := s.store.GetJob(r.Context(), job.ID); err == nil && existing != nil {
		conflict := &ErrConflict{Kind: "job", ID: job.ID}
		s.errorResponse(w, HTTPStatus(conflict), conflict.Error())
		return
	}

	s.enrichJob(&job)

	if err := s.store.SaveJob(r.Context(), &job); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	s.jsonResponse(w, http.StatusCreated, job)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
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
	s.jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	existing, err := s.store.GetJob(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if existing == nil {
		nf := &ErrNotFound{Kind: "job", ID: id}
		s.errorResponse(w, HTTPStatus(nf), nf.Error())
		return
	}

	var job types.Job
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if job.MinimumExperienceYears < 0 {
		s.errorResponse(w, http.StatusBadRequest, "minimum_experience_years must be non-negative")
		return
	}
	job.ID = id
	job.CreatedAt = existing.CreatedAt

	s.enrichJob(&job)

	if err := s.store.SaveJob(r.Context(), &job); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.DeleteJob(r.Context(), id); err != nil {
		if err.Error() == "job not found: "+id {
			s.errorResponse(w, http.StatusNotFound, "Job not found")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", 50)
	offset := parseQueryInt(r, "offset", 0)

	jobs, err := s.store.ListJobs(r.Context(), limit, offset)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if jobs == nil {
		jobs = []*types.Job{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"jobs": jobs})
}
