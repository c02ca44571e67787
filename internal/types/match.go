// Package types provides type definitions for structured data used throughout the talent-match system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Component names used in match breakdowns.
const (
	ComponentSemantic   = "semantic"
	ComponentSkills     = "skills"
	ComponentExperience = "experience"
	ComponentLocation   = "location"
)

// ComponentScore holds one component's raw value and the weight it carried
// in the final score.
type ComponentScore struct {
	Value  float64 `json:"value"`
	Weight float64 `json:"weight"`
}

// MatchBreakdown is the explainable decomposition of a match score.
// SemanticDefaulted is set when the semantic similarity was substituted with
// the neutral default because the vector-search collaborator was unavailable;
// PrestigeDefaulted carries the candidate's missing-company-tier flag so
// neither substitution is silently absorbed.
type MatchBreakdown struct {
	Components        map[string]ComponentScore `json:"components"`
	MatchedSkills     []string                  `json:"matched_skills,omitempty"`
	SemanticDefaulted bool                      `json:"semantic_defaulted,omitempty"`
	PrestigeDefaulted bool                      `json:"prestige_defaulted,omitempty"`
}

// MatchResult is the scored outcome for one (job, candidate) pair. It is
// recomputed on demand and has no lifecycle beyond a single ranking response.
type MatchResult struct {
	JobID       string         `json:"job_id"`
	CandidateID string         `json:"candidate_id"`
	FinalScore  float64        `json:"final_score"` // in [0,1]
	Breakdown   MatchBreakdown `json:"breakdown"`
	Rank        int            `json:"rank,omitempty"` // assigned within a ranked result set only
}

// RankedPage is one page of a ranked candidate list.
type RankedPage struct {
	Items    []MatchResult `json:"items"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	Size     int           `json:"size"`
	Pages    int           `json:"pages"`
	HasNext  bool          `json:"has_next"`
	HasPrev  bool          `json:"has_prev"`
	Excluded int           `json:"excluded,omitempty"` // candidates dropped due to scoring failures
}
