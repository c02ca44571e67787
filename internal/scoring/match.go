package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/talent-match/internal/types"
)

// DefaultLocationPartialCredit is the location component value when the job
// and candidate locations overlap by region but are not an exact match.
const DefaultLocationPartialCredit = 0.5

// MatchInput bundles the per-pair inputs of the hybrid match score.
// SemanticSimilarity must be in [0,1]; SemanticDefaulted marks a neutral
// substitute supplied because the vector-search collaborator was
// unavailable.
type MatchInput struct {
	SemanticSimilarity    float64
	SemanticDefaulted     bool
	LocationPartialCredit float64
}

// ComputeMatch computes the weighted hybrid match score for one (job,
// candidate) pair, with its explainable breakdown. The final score is in
// [0,1]; display scaling is the caller's concern.
func ComputeMatch(job *types.Job, cand *types.Candidate, in MatchInput, weights types.MatchWeights) (types.MatchResult, error) {
	if job == nil || cand == nil {
		return types.MatchResult{}, fmt.Errorf("job and candidate are required")
	}
	if in.SemanticSimilarity < 0 || in.SemanticSimilarity > 1 {
		return types.MatchResult{}, fmt.Errorf("semantic similarity out of range [0,1]: %v", in.SemanticSimilarity)
	}

	sSem := in.SemanticSimilarity
	sSkill, matched := skillOverlap(job, cand)
	sExp := experienceFit(job, cand)
	sLoc := locationMatch(job, cand, in.LocationPartialCredit)

	final := weights.Semantic*sSem +
		weights.Skills*sSkill +
		weights.Experience*sExp +
		weights.Location*sLoc

	return types.MatchResult{
		JobID:       job.ID,
		CandidateID: cand.ID,
		FinalScore:  final,
		Breakdown: types.MatchBreakdown{
			Components: map[string]types.ComponentScore{
				types.ComponentSemantic:   {Value: sSem, Weight: weights.Semantic},
				types.ComponentSkills:     {Value: sSkill, Weight: weights.Skills},
				types.ComponentExperience: {Value: sExp, Weight: weights.Experience},
				types.ComponentLocation:   {Value: sLoc, Weight: weights.Location},
			},
			MatchedSkills:     matched,
			SemanticDefaulted: in.SemanticDefaulted,
			PrestigeDefaulted: cand.Metrics != nil && cand.Metrics.PrestigeDefaulted,
		},
	}, nil
}

// skillOverlap is the fraction of the job's required skills the candidate
// has. Each required skill counts once: by canonical ID when normalization
// resolved it, by raw string when it did not. Jobs that never went through
// normalization compare every skill raw. A job with zero required skills is
// vacuously satisfied at 1.0.
func skillOverlap(job *types.Job, cand *types.Candidate) (float64, []string) {
	required := skillSet(job.NormalizedSkills, job.UnmatchedSkills)
	if len(required) == 0 {
		required = skillSet(nil, job.RequiredSkills)
	}
	if len(required) == 0 {
		return 1.0, nil
	}

	have := skillSet(cand.NormalizedSkills, cand.Skills)
	matched := make([]string, 0, len(required))
	for skill := range required {
		if _, ok := have[skill]; ok {
			matched = append(matched, skill)
		}
	}
	sort.Strings(matched)
	return float64(len(matched)) / float64(len(required)), matched
}

// skillSet folds canonical IDs and raw strings into one lowercase set.
func skillSet(normalized, raw []string) map[string]struct{} {
	out := make(map[string]struct{}, len(normalized)+len(raw))
	for _, s := range normalized {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out[s] = struct{}{}
		}
	}
	for _, s := range raw {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out[s] = struct{}{}
		}
	}
	return out
}

// experienceFit is 1.0 when the candidate meets the job's minimum relevant
// experience, otherwise a linear ramp from 0 at zero years. A job with no
// minimum is satisfied at 1.0.
func experienceFit(job *types.Job, cand *types.Candidate) float64 {
	if job.MinimumExperienceYears <= 0 {
		return 1.0
	}
	relevant := 0.0
	if cand.Metrics != nil {
		relevant = cand.Metrics.RelevantExperienceYears
	}
	if relevant >= job.MinimumExperienceYears {
		return 1.0
	}
	if relevant <= 0 {
		return 0.0
	}
	return relevant / job.MinimumExperienceYears
}

// locationMatch is 1.0 for remote jobs or exact (case-insensitive) location
// matches, the configured partial credit when one location's region token
// appears in the other, and 0 otherwise.
func locationMatch(job *types.Job, cand *types.Candidate, partialCredit float64) float64 {
	if job.Remote {
		return 1.0
	}
	if partialCredit <= 0 {
		partialCredit = DefaultLocationPartialCredit
	}

	jobLoc := strings.ToLower(strings.TrimSpace(job.Location))
	candLoc := strings.ToLower(strings.TrimSpace(cand.Location))
	if jobLoc == "" || candLoc == "" {
		return 0.0
	}
	if jobLoc == candLoc {
		return 1.0
	}
	if regionOverlap(jobLoc, candLoc) {
		return partialCredit
	}
	return 0.0
}

// regionOverlap reports whether any comma-separated segment of one location
// appears in the other, e.g. "Berlin" overlaps "Berlin, Germany".
func regionOverlap(a, b string) bool {
	for _, seg := range strings.Split(a, ",") {
		seg = strings.TrimSpace(seg)
		if seg != "" && strings.Contains(b, seg) {
			return true
		}
	}
	for _, seg := range strings.Split(b, ",") {
		seg = strings.TrimSpace(seg)
		if seg != "" && strings.Contains(a, seg) {
			return true
		}
	}
	return false
}
