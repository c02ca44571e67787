// Package similarity defines the contract for the external vector-search
// collaborator that supplies semantic similarity scores between a job and
// candidates. This repository does not compute embeddings or run nearest-
// neighbor search; it consumes scores already produced elsewhere.
package similarity

import "context"

// Score is one candidate's semantic similarity to a job, in [0,1].
// Defaulted is set when the score is a neutral substitute rather than a
// real measurement; it must be surfaced to callers, never hidden.
type Score struct {
	Value     float64
	Defaulted bool
}

// Provider supplies semantic similarity scores for a set of candidates
// against one job. A missing candidate entry means the provider had no
// score for it; callers substitute the neutral default.
type Provider interface {
	ScoresForJob(ctx context.Context, jobID string, candidateIDs []string) (map[string]float64, error)
}

// DefaultNeutralScore is the substitute used when the collaborator is
// unavailable or has no score for a candidate.
const DefaultNeutralScore = 0.5

// Neutral is a Provider that always reports no scores, forcing the neutral
// default for every candidate. Used when no vector-search service is wired.
type Neutral struct{}

// ScoresForJob returns an empty score map.
func (Neutral) ScoresForJob(_ context.Context, _ string, _ []string) (map[string]float64, error) {
	return map[string]float64{}, nil
}

// Static is a Provider backed by a fixed score table, used by the offline
// match command and in tests.
type Static struct {
	Scores map[string]float64
}

// ScoresForJob returns the subset of the table covering the requested
// candidates.
func (s Static) ScoresForJob(_ context.Context, _ string, candidateIDs []string) (map[string]float64, error) {
	out := make(map[string]float64, len(candidateIDs))
	for _, id := range candidateIDs {
		if v, ok := s.Scores[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

// Resolve merges provider output with the neutral default: every requested
// candidate gets a Score, defaulted where the provider had none.
func Resolve(scores map[string]float64, candidateIDs []string, neutral float64) map[string]Score {
	out := make(map[string]Score, len(candidateIDs))
	for _, id := range candidateIDs {
		if v, ok := scores[id]; ok {
			out[id] = Score{Value: v}
		} else {
			out[id] = Score{Value: neutral, Defaulted: true}
		}
	}
	return out
}
