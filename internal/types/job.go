// Package types provides type definitions for structured data used throughout the talent-match system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// Job represents a job description with normalized skill requirements.
type Job struct {
	ID                     string    `json:"id"`
	Title                  string    `json:"title"`
	Description            string    `json:"description,omitempty"`
	CompanyName            string    `json:"company_name,omitempty"`
	RequiredSkills         []string  `json:"required_skills,omitempty"`     // raw extracted skill strings
	NormalizedSkills       []string  `json:"normalized_skills,omitempty"`   // canonical skill IDs
	UnmatchedSkills        []string  `json:"unmatched_skills,omitempty"`    // required skills with no canonical match, compared raw
	GoodToHaveSkills       []string  `json:"good_to_have_skills,omitempty"` // not part of the match formula
	MinimumExperienceYears float64   `json:"minimum_experience_years,omitempty"`
	Location               string    `json:"location,omitempty"`
	Remote                 bool      `json:"remote,omitempty"`
	CreatedAt              time.Time `json:"created_at,omitempty"`
	UpdatedAt              time.Time `json:"updated_at,omitempty"`
}

// JobPosting is a job description as fetched from a posting page, before
// normalization and storage.
type JobPosting struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	CompanyName string `json:"company_name,omitempty"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description"`
}
