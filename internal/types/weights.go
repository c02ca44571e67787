// Package types provides type definitions for structured data used throughout the talent-match system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"math"
)

// weightSumEpsilon is the tolerance for weight-sum validation. Weight sets
// that do not sum to 1 within this tolerance are rejected, never renormalized.
const weightSumEpsilon = 1e-9

// MatchWeights are the component weights of the hybrid match score.
// They must sum to 1.
type MatchWeights struct {
	Semantic   float64 `json:"semantic" validate:"gte=0,lte=1"`
	Skills     float64 `json:"skills" validate:"gte=0,lte=1"`
	Experience float64 `json:"experience" validate:"gte=0,lte=1"`
	Location   float64 `json:"location" validate:"gte=0,lte=1"`
}

// Validate checks that all weights are in [0,1] and sum to 1.
func (w MatchWeights) Validate() error {
	for name, v := range map[string]float64{
		ComponentSemantic:   w.Semantic,
		ComponentSkills:     w.Skills,
		ComponentExperience: w.Experience,
		ComponentLocation:   w.Location,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("match weight %q out of range [0,1]: %v", name, v)
		}
	}
	sum := w.Semantic + w.Skills + w.Experience + w.Location
	if math.Abs(sum-1.0) > weightSumEpsilon {
		return fmt.Errorf("match weights must sum to 1, got %v", sum)
	}
	return nil
}

// ProfileWeights are the sub-score weights of the universal profile score
// for one seniority level. They must sum to 1.
type ProfileWeights struct {
	Experience  float64 `json:"experience" validate:"gte=0,lte=1"`
	Stability   float64 `json:"stability" validate:"gte=0,lte=1"`
	Progression float64 `json:"progression" validate:"gte=0,lte=1"`
	Prestige    float64 `json:"prestige" validate:"gte=0,lte=1"`
	Skills      float64 `json:"skills" validate:"gte=0,lte=1"`
}

// Validate checks that all weights are in [0,1] and sum to 1.
func (w ProfileWeights) Validate() error {
	for name, v := range map[string]float64{
		"experience":  w.Experience,
		"stability":   w.Stability,
		"progression": w.Progression,
		"prestige":    w.Prestige,
		"skills":      w.Skills,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("profile weight %q out of range [0,1]: %v", name, v)
		}
	}
	sum := w.Experience + w.Stability + w.Progression + w.Prestige + w.Skills
	if math.Abs(sum-1.0) > weightSumEpsilon {
		return fmt.Errorf("profile weights must sum to 1, got %v", sum)
	}
	return nil
}

// ProfileWeightTable maps each seniority level to its profile weight row.
type ProfileWeightTable map[SeniorityLevel]ProfileWeights

// Validate checks that every seniority level has a valid weight row.
func (t ProfileWeightTable) Validate() error {
	for _, level := range []SeniorityLevel{SeniorityJunior, SeniorityMid, SenioritySenior} {
		row, ok := t[level]
		if !ok {
			return fmt.Errorf("profile weight table missing seniority level %q", level)
		}
		if err := row.Validate(); err != nil {
			return fmt.Errorf("profile weights for %q: %w", level, err)
		}
	}
	return nil
}
