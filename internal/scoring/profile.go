// Package scoring implements the job-independent universal profile score,
// the hybrid candidate-job match score, and the ranking orchestrator. Every
// function here is pure arithmetic over already-fetched inputs: no network
// or database calls, so scores are auditable and unit-testable without
// mocking external services.
package scoring

import (
	"fmt"

	"github.com/jonathan/talent-match/internal/types"
)

// ComputeUniversalScore combines the five metric sub-scores into one
// seniority-weighted score in [0,10]. The weight row is selected by the
// candidate's seniority level; the table must have been validated at
// configuration load.
func ComputeUniversalScore(m types.CandidateMetrics, table types.ProfileWeightTable) (float64, error) {
	weights, ok := table[m.SeniorityLevel]
	if !ok {
		return 0, fmt.Errorf("no profile weights for seniority level %q", m.SeniorityLevel)
	}

	score := weights.Experience*m.ExperienceScore +
		weights.Stability*m.StabilityScore +
		weights.Progression*m.ProgressionScore +
		weights.Prestige*m.PrestigeScore +
		weights.Skills*m.SkillDepthScore

	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}
	return score, nil
}
