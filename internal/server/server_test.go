package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/talent-match/internal/companytier"
	"github.com/jonathan/talent-match/internal/config"
	"github.com/jonathan/talent-match/internal/metrics"
	"github.com/jonathan/talent-match/internal/normalize"
	"github.com/jonathan/talent-match/internal/scoring"
	"github.com/jonathan/talent-match/internal/similarity"
	"github.com/jonathan/talent-match/internal/taxonomy"
	"github.com/jonathan/talent-match/internal/types"
)

// fakeStore is an in-memory Storage implementation.
type fakeStore struct {
	candidates map[string]*types.Candidate
	jobs       map[string]*types.Job
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		candidates: map[string]*types.Candidate{},
		jobs:       map[string]*types.Job{},
	}
}

func (f *fakeStore) SaveCandidate(_ context.Context, cand *types.Candidate) error {
	c := *cand
	f.candidates[cand.ID] = &c
	return nil
}

func (f *fakeStore) GetCandidate(_ context.Context, id string) (*types.Candidate, error) {
	cand, ok := f.candidates[id]
	if !ok {
		return nil, nil
	}
	c := *cand
	return &c, nil
}

func (f *fakeStore) DeleteCandidate(_ context.Context, id string) error {
	if _, ok := f.candidates[id]; !ok {
		return fmt.Errorf("candidate not found: %s", id)
	}
	delete(f.candidates, id)
	return nil
}

func (f *fakeStore) ListCandidates(_ context.Context, limit, offset int) ([]*types.Candidate, error) {
	all, _ := f.AllCandidates(context.Background())
	if offset > len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (f *fakeStore) AllCandidates(_ context.Context) ([]*types.Candidate, error) {
	out := make([]*types.Candidate, 0, len(f.candidates))
	for _, c := range f.candidates {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) SaveJob(_ context.Context, job *types.Job) error {
	j := *job
	f.jobs[job.ID] = &j
	return nil
}

func (f *fakeStore) GetJob(_ context.Context, id string) (*types.Job, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, nil
	}
	j := *job
	return &j, nil
}

func (f *fakeStore) DeleteJob(_ context.Context, id string) error {
	if _, ok := f.jobs[id]; !ok {
		return fmt.Errorf("job not found: %s", id)
	}
	delete(f.jobs, id)
	return nil
}

func (f *fakeStore) ListJobs(_ context.Context, limit, offset int) ([]*types.Job, error) {
	out := make([]*types.Job, 0, len(f.jobs))
	for _, j := range f.jobs {
		out = append(out, j)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset > len(out) {
		return nil, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

// flakyProvider serves a fixed snapshot and can be switched to fail.
type flakyProvider struct {
	entities []taxonomy.CanonicalEntity
	fail     bool
}

func (p *flakyProvider) Load(context.Context) (*taxonomy.Snapshot, error) {
	if p.fail {
		return nil, fmt.Errorf("taxonomy source unavailable")
	}
	return taxonomy.NewSnapshot(p.entities)
}

func testEntities() []taxonomy.CanonicalEntity {
	return []taxonomy.CanonicalEntity{
		{ID: "skill_python", DisplayName: "Python", Aliases: []string{"py"}, Category: taxonomy.CategorySkill},
		{ID: "skill_go", DisplayName: "Go", Aliases: []string{"golang"}, Category: taxonomy.CategorySkill},
		{ID: "title_swe", DisplayName: "Software Engineer", Aliases: []string{"software developer"}, Category: taxonomy.CategoryJobTitle, SeniorityRank: 2},
		{ID: "title_senior_swe", DisplayName: "Senior Software Engineer", Category: taxonomy.CategoryJobTitle, SeniorityRank: 3},
	}
}

func newTestServer(t *testing.T) (*Server, *fakeStore, *flakyProvider) {
	t.Helper()

	cfg := config.Defaults()
	provider := &flakyProvider{entities: testEntities()}
	holder, err := taxonomy.NewHolder(context.Background(), provider)
	require.NoError(t, err)

	norm := normalize.New(cfg.FuzzyThreshold)
	calc := metrics.NewCalculator(norm, companytier.DefaultTable(), nil)
	ranker := scoring.NewRanker(similarity.Neutral{}, cfg.MatchWeights, cfg.LocationPartialCredit, nil)

	st := newFakeStore()
	return New(&cfg, st, holder, norm, calc, ranker, nil), st, provider
}

func doRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestCreateCandidateEnriches(t *testing.T) {
	s, st, _ := newTestServer(t)

	body := map[string]any{
		"name":   "Ada",
		"skills": []string{"Python", "golang", "cobol"},
		"work_experience": []map[string]any{
			{"company_name": "Google", "title": "Software Developer", "start_date": "2018-01-01", "end_date": "2022-01-01"},
		},
	}
	rec := doRequest(t, s, http.MethodPost, "/api/v1/candidates", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Candidate types.Candidate `json:"candidate"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Candidate.ID)
	assert.ElementsMatch(t, []string{"skill_python", "skill_go"}, resp.Candidate.NormalizedSkills)
	require.NotNil(t, resp.Candidate.Metrics)
	assert.InDelta(t, 4.0, resp.Candidate.Metrics.TotalExperienceYears, 0.1)
	assert.Equal(t, types.SeniorityMid, resp.Candidate.Metrics.SeniorityLevel)
	assert.Greater(t, resp.Candidate.UniversalScore, 0.0)

	stored, err := st.GetCandidate(context.Background(), resp.Candidate.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestCreateCandidateValidation(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/candidates", map[string]any{"skills": []string{"go"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateCandidateConflict(t *testing.T) {
	s, _, _ := newTestServer(t)

	body := map[string]any{"id": "cand-1", "name": "Ada"}
	rec := doRequest(t, s, http.MethodPost, "/api/v1/candidates", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/api/v1/candidates", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetCandidateNotFound(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/v1/candidates/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecomputeMetrics(t *testing.T) {
	s, st, _ := newTestServer(t)

	cand := &types.Candidate{
		ID:     "cand-1",
		Name:   "Ada",
		Skills: []string{"py"},
		WorkExperience: []types.WorkExperienceEntry{
			{CompanyName: "Stripe", Title: "Software Engineer", StartDate: "2015-01-01", EndDate: "2021-01-01"},
		},
	}
	require.NoError(t, st.SaveCandidate(context.Background(), cand))

	rec := doRequest(t, s, http.MethodPost, "/api/v1/candidates/cand-1/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored, err := st.GetCandidate(context.Background(), "cand-1")
	require.NoError(t, err)
	require.NotNil(t, stored.Metrics)
	assert.Equal(t, types.SeniorityMid, stored.Metrics.SeniorityLevel)
	assert.Equal(t, []string{"skill_python"}, stored.NormalizedSkills)
}

func TestRecomputeMetricsWarnsOnUnknownCompany(t *testing.T) {
	s, st, _ := newTestServer(t)

	cand := &types.Candidate{
		ID:   "cand-2",
		Name: "Eve",
		WorkExperience: []types.WorkExperienceEntry{
			{CompanyName: "Mystery Startup", Title: "Software Engineer", StartDate: "2018-01-01", EndDate: "2022-01-01"},
		},
	}
	require.NoError(t, st.SaveCandidate(context.Background(), cand))

	rec := doRequest(t, s, http.MethodPost, "/api/v1/candidates/cand-2/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Metrics  *types.CandidateMetrics `json:"metrics"`
		Warnings []string                `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Metrics)
	assert.True(t, resp.Metrics.PrestigeDefaulted)
	require.NotEmpty(t, resp.Warnings)
	assert.Contains(t, resp.Warnings[0], "no company tier signal")
}

func TestCreateJobNormalizesSkills(t *testing.T) {
	s, _, _ := newTestServer(t)

	body := map[string]any{
		"title":           "Backend Engineer",
		"required_skills": []string{"golang", "Python", "COBOL"},
		"remote":          true,
	}
	rec := doRequest(t, s, http.MethodPost, "/api/v1/jobs", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var job types.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.ElementsMatch(t, []string{"skill_go", "skill_python"}, job.NormalizedSkills)
	assert.Equal(t, []string{"cobol"}, job.UnmatchedSkills)
}

func TestMatchEndpoint(t *testing.T) {
	s, st, _ := newTestServer(t)
	ctx := context.Background()

	require.NoError(t, st.SaveJob(ctx, &types.Job{
		ID:               "job-1",
		Title:            "Backend Engineer",
		NormalizedSkills: []string{"skill_go"},
		Remote:           true,
	}))
	require.NoError(t, st.SaveCandidate(ctx, &types.Candidate{
		ID: "cand-a", Name: "Ada", NormalizedSkills: []string{"skill_go"},
	}))
	require.NoError(t, st.SaveCandidate(ctx, &types.Candidate{
		ID: "cand-b", Name: "Bob",
	}))

	rec := doRequest(t, s, http.MethodPost, "/api/v1/jobs/job-1/match", map[string]any{"page": 1, "size": 10})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var page types.RankedPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Items, 2)
	assert.Equal(t, "cand-a", page.Items[0].CandidateID)
	assert.Greater(t, page.Items[0].FinalScore, page.Items[1].FinalScore)
	assert.True(t, page.Items[0].Breakdown.SemanticDefaulted)
}

func TestMatchEndpointEmptyBody(t *testing.T) {
	s, st, _ := newTestServer(t)
	require.NoError(t, st.SaveJob(context.Background(), &types.Job{ID: "job-1", Title: "X", Remote: true}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs/job-1/match", nil)
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestMatchEndpointInvalidSize(t *testing.T) {
	s, st, _ := newTestServer(t)
	require.NoError(t, st.SaveJob(context.Background(), &types.Job{ID: "job-1", Title: "X"}))

	rec := doRequest(t, s, http.MethodPost, "/api/v1/jobs/job-1/match", map[string]any{"page": 1, "size": 500})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMatchEndpointWeightsOverride(t *testing.T) {
	s, st, _ := newTestServer(t)
	ctx := context.Background()

	require.NoError(t, st.SaveJob(ctx, &types.Job{
		ID:               "job-1",
		Title:            "Backend Engineer",
		NormalizedSkills: []string{"skill_go"},
		Remote:           true,
	}))
	require.NoError(t, st.SaveCandidate(ctx, &types.Candidate{
		ID: "cand-a", Name: "Ada", NormalizedSkills: []string{"skill_go"},
	}))

	// All weight on skill overlap. Full overlap plus no experience
	// requirement means a perfect score.
	rec := doRequest(t, s, http.MethodPost, "/api/v1/jobs/job-1/match", map[string]any{
		"weights": map[string]float64{"semantic": 0, "skills": 1, "experience": 0, "location": 0},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var page types.RankedPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Items, 1)
	assert.InDelta(t, 1.0, page.Items[0].FinalScore, 1e-9)
}

func TestMatchEndpointRejectsBadWeights(t *testing.T) {
	s, st, _ := newTestServer(t)
	require.NoError(t, st.SaveJob(context.Background(), &types.Job{ID: "job-1", Title: "X"}))

	rec := doRequest(t, s, http.MethodPost, "/api/v1/jobs/job-1/match", map[string]any{
		"weights": map[string]float64{"semantic": 0.5, "skills": 0.5, "experience": 0.5, "location": 0.5},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid weights")
}

func TestMatchEndpointJobNotFound(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodPost, "/api/v1/jobs/nope/match", map[string]any{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNormalizeEndpoint(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/normalize", map[string]any{
		"category": "skill",
		"names":    []string{"py", "golang", "cobol"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Results []normalize.Result `json:"results"`
		Stats   normalize.Stats    `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 3)
	assert.Equal(t, "skill_python", resp.Results[0].CanonicalID)
	assert.Equal(t, 1, resp.Stats.NoMatches)
}

func TestNormalizeEndpointBadCategory(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodPost, "/api/v1/normalize", map[string]any{
		"category": "company",
		"names":    []string{"x"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTaxonomyReload(t *testing.T) {
	s, _, provider := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/taxonomy/reload", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// A failing reload keeps the previous snapshot active.
	provider.fail = true
	rec = doRequest(t, s, http.MethodPost, "/api/v1/taxonomy/reload", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/api/v1/normalize", map[string]any{
		"category": "skill",
		"names":    []string{"py"},
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x?limit=7&bad=abc", nil)
	assert.Equal(t, 7, parseQueryInt(req, "limit", 50))
	assert.Equal(t, 50, parseQueryInt(req, "missing", 50))
	assert.Equal(t, 50, parseQueryInt(req, "bad", 50))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(&ErrNotFound{Kind: "job", ID: "x"}))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(&ErrValidation{Field: "page", Message: "bad"}))
	assert.Equal(t, http.StatusConflict, HTTPStatus(&ErrConflict{Kind: "job", ID: "x"}))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(fmt.Errorf("boom")))
}
