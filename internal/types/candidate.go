// Package types provides type definitions for structured data used throughout the talent-match system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// SeniorityLevel is the coarse experience tier derived from total experience years.
type SeniorityLevel string

// Seniority levels, ordered junior < mid < senior.
const (
	SeniorityJunior SeniorityLevel = "junior"
	SeniorityMid    SeniorityLevel = "mid"
	SenioritySenior SeniorityLevel = "senior"
)

// Candidate represents a candidate profile with normalized skills and derived metrics.
type Candidate struct {
	ID               string                `json:"id"`
	Name             string                `json:"name"`
	Email            string                `json:"email,omitempty"`
	Location         string                `json:"location,omitempty"`
	Skills           []string              `json:"skills,omitempty"`            // raw extracted skill strings
	NormalizedSkills []string              `json:"normalized_skills,omitempty"` // canonical skill IDs
	WorkExperience   []WorkExperienceEntry `json:"work_experience,omitempty"`
	Metrics          *CandidateMetrics     `json:"metrics,omitempty"`
	UniversalScore   float64               `json:"universal_profile_score,omitempty"`
	CreatedAt        time.Time             `json:"created_at,omitempty"`
	UpdatedAt        time.Time             `json:"updated_at,omitempty"`
}

// WorkExperienceEntry represents one role in a candidate's work history.
// EndDate empty means the role is current. NormalizedTitleID is empty when
// title normalization found no canonical match.
type WorkExperienceEntry struct {
	CompanyName       string  `json:"company_name"`
	Title             string  `json:"title"`
	NormalizedTitleID string  `json:"normalized_title_id,omitempty"`
	TitleConfidence   float64 `json:"title_confidence,omitempty"`
	StartDate         string  `json:"start_date"`
	EndDate           string  `json:"end_date,omitempty"`
	DurationMonths    int     `json:"duration_months,omitempty"` // derived, never negative
}

// CandidateMetrics holds derived metrics for a candidate. Recomputed wholesale
// whenever work history changes, never patched incrementally.
type CandidateMetrics struct {
	TotalExperienceYears    float64        `json:"total_experience_years"`
	RelevantExperienceYears float64        `json:"relevant_experience_years"`
	AverageTenureMonths     float64        `json:"average_tenure_months"`
	SeniorityLevel          SeniorityLevel `json:"seniority_level"`

	// Sub-scores, each in [0,10].
	ExperienceScore  float64 `json:"experience_score"`
	StabilityScore   float64 `json:"stability_score"`
	ProgressionScore float64 `json:"progression_score"`
	PrestigeScore    float64 `json:"prestige_score"`
	SkillDepthScore  float64 `json:"skill_depth_score"`

	// PrestigeDefaulted is set when at least one company had no tier signal
	// and the neutral midpoint was substituted.
	PrestigeDefaulted bool `json:"prestige_defaulted,omitempty"`
}

// SeniorityForYears maps total experience years to a seniority level.
// Boundaries are inclusive on the lower bound: <3 junior, 3-8 mid, >8 senior.
func SeniorityForYears(totalYears float64) SeniorityLevel {
	switch {
	case totalYears < 3:
		return SeniorityJunior
	case totalYears <= 8:
		return SeniorityMid
	default:
		return SenioritySenior
	}
}
