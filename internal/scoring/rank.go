package scoring

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/talent-match/internal/similarity"
	"github.com/jonathan/talent-match/internal/types"
)

// Pagination bounds.
const (
	MinPageSize = 1
	MaxPageSize = 100
)

const defaultConcurrency = 8

// Ranker scores every candidate against a job and returns pages of results
// ordered by final score. Candidates whose scoring fails are excluded and
// counted, never allowed to abort the whole ranking.
type Ranker struct {
	sim         similarity.Provider
	weights     types.MatchWeights
	partial     float64
	concurrency int
	log         *zap.Logger

	// NeutralScore substitutes for missing similarity scores. Zero means
	// the package default.
	NeutralScore float64
}

// NewRanker builds a Ranker. A nil similarity provider falls back to neutral
// defaults for every candidate; a nil logger falls back to a no-op logger.
func NewRanker(sim similarity.Provider, weights types.MatchWeights, locationPartialCredit float64, log *zap.Logger) *Ranker {
	if sim == nil {
		sim = similarity.Neutral{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Ranker{
		sim:         sim,
		weights:     weights,
		partial:     locationPartialCredit,
		concurrency: defaultConcurrency,
		log:         log,
	}
}

// WithWeights returns a copy of the Ranker using the given component weights.
// The weights must already be validated; they replace the configured set
// wholesale for that copy.
func (r *Ranker) WithWeights(weights types.MatchWeights) *Ranker {
	clone := *r
	clone.weights = weights
	return &clone
}

// Rank scores all candidates against the job in parallel and returns the
// requested page. Ordering is deterministic: final score descending, ties
// broken by candidate ID ascending.
func (r *Ranker) Rank(ctx context.Context, job *types.Job, candidates []*types.Candidate, page, size int) (*types.RankedPage, error) {
	if job == nil {
		return nil, fmt.Errorf("job is required")
	}
	if page < 1 {
		return nil, fmt.Errorf("page must be >= 1, got %d", page)
	}
	if size < MinPageSize || size > MaxPageSize {
		return nil, fmt.Errorf("size must be in [%d,%d], got %d", MinPageSize, MaxPageSize, size)
	}

	ids := make([]string, len(candidates))
	for i, c := range candidates {
		if c != nil {
			ids[i] = c.ID
		}
	}
	raw, err := r.sim.ScoresForJob(ctx, job.ID, ids)
	if err != nil {
		// Similarity is a soft dependency: fall back to neutral scores
		// for every candidate rather than failing the ranking.
		r.log.Warn("semantic similarity unavailable, using neutral defaults",
			zap.String("job_id", job.ID), zap.Error(err))
		raw = nil
	}
	neutral := r.NeutralScore
	if neutral == 0 {
		neutral = similarity.DefaultNeutralScore
	}
	sims := similarity.Resolve(raw, ids, neutral)

	results := make([]*types.MatchResult, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, cand := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if cand == nil {
				return nil
			}
			sc := sims[cand.ID]
			res, err := ComputeMatch(job, cand, MatchInput{
				SemanticSimilarity:    sc.Value,
				SemanticDefaulted:     sc.Defaulted,
				LocationPartialCredit: r.partial,
			}, r.weights)
			if err != nil {
				r.log.Warn("candidate excluded from ranking",
					zap.String("job_id", job.ID),
					zap.String("candidate_id", cand.ID),
					zap.Error(err))
				return nil
			}
			results[i] = &res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	scored := make([]types.MatchResult, 0, len(results))
	excluded := 0
	for i, res := range results {
		if res == nil {
			if candidates[i] != nil {
				excluded++
			}
			continue
		}
		scored = append(scored, *res)
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].FinalScore != scored[j].FinalScore {
			return scored[i].FinalScore > scored[j].FinalScore
		}
		return scored[i].CandidateID < scored[j].CandidateID
	})
	for i := range scored {
		scored[i].Rank = i + 1
	}

	return paginate(scored, page, size, excluded), nil
}

// paginate slices the full ranked list into the requested page. A page past
// the end yields an empty item list, not an error.
func paginate(all []types.MatchResult, page, size, excluded int) *types.RankedPage {
	total := len(all)
	pages := (total + size - 1) / size

	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	items := all[start:end]
	if items == nil {
		items = []types.MatchResult{}
	}

	return &types.RankedPage{
		Items:    items,
		Total:    total,
		Page:     page,
		Size:     size,
		Pages:    pages,
		HasNext:  end < total,
		HasPrev:  page > 1 && total > 0,
		Excluded: excluded,
	}
}
