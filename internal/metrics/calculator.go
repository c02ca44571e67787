// Package metrics derives candidate metrics (experience, tenure, seniority,
// and the five profile sub-scores) from a normalized work history. All
// computations are pure over inputs already in memory; malformed entries are
// skipped with a warning, never fatal.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/talent-match/internal/companytier"
	"github.com/jonathan/talent-match/internal/normalize"
	"github.com/jonathan/talent-match/internal/taxonomy"
	"github.com/jonathan/talent-match/internal/types"
)

// DefaultExperienceCapYears is where the experience sub-score saturates.
const DefaultExperienceCapYears = 10.0

// Calculator computes CandidateMetrics. The taxonomy snapshot supplies
// title normalization and seniority ranks; the tier provider supplies the
// prestige signal.
type Calculator struct {
	normalizer *normalize.Normalizer
	tiers      companytier.Provider
	log        *zap.Logger

	// ExperienceCapYears is the relevant-experience saturation point.
	ExperienceCapYears float64

	// now is swappable for tests.
	now func() time.Time
}

// NewCalculator creates a Calculator. tiers may be nil, in which case every
// company falls back to the neutral prestige midpoint.
func NewCalculator(normalizer *normalize.Normalizer, tiers companytier.Provider, log *zap.Logger) *Calculator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Calculator{
		normalizer:         normalizer,
		tiers:              tiers,
		log:                log,
		ExperienceCapYears: DefaultExperienceCapYears,
		now:                time.Now,
	}
}

// validEntry is a work-history entry that passed date validation, with its
// derived duration and resolved title.
type validEntry struct {
	entry          types.WorkExperienceEntry
	start          time.Time
	durationMonths int
	titleID        string
	rank           int
	ranked         bool
}

// Compute derives metrics for a candidate against a taxonomy snapshot.
// Entries with malformed or inverted dates are excluded and reported in the
// returned warnings. An empty (or fully invalid) work history yields zero
// sub-scores except prestige, which stays neutral, and junior seniority.
func (c *Calculator) Compute(snap *taxonomy.Snapshot, cand *types.Candidate, domainKeywords []string) (types.CandidateMetrics, []string) {
	var warnings []string
	now := c.now()

	valid := make([]validEntry, 0, len(cand.WorkExperience))
	for i, entry := range cand.WorkExperience {
		start, ok := parseDate(entry.StartDate)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("entry %d (%s): unparseable start date %q, entry skipped", i, entry.CompanyName, entry.StartDate))
			continue
		}
		end, hasEnd := parseDate(entry.EndDate)
		if !hasEnd {
			if entry.EndDate != "" && !strings.EqualFold(strings.TrimSpace(entry.EndDate), "present") {
				warnings = append(warnings, fmt.Sprintf("entry %d (%s): unparseable end date %q, entry skipped", i, entry.CompanyName, entry.EndDate))
				continue
			}
			end = now
		}
		if start.After(end) {
			warnings = append(warnings, fmt.Sprintf("entry %d (%s): start date after end date, entry skipped", i, entry.CompanyName))
			continue
		}

		ve := validEntry{
			entry:          entry,
			start:          start,
			durationMonths: monthsBetween(start, end),
			titleID:        entry.NormalizedTitleID,
		}
		if ve.titleID == "" && c.normalizer != nil && snap != nil {
			if r := c.normalizer.Normalize(snap, entry.Title, taxonomy.CategoryJobTitle); r.CanonicalID != "" {
				ve.titleID = r.CanonicalID
			}
		}
		if snap != nil && ve.titleID != "" {
			if rank, ok := snap.SeniorityRank(ve.titleID); ok {
				ve.rank = rank
				ve.ranked = true
			}
		}
		valid = append(valid, ve)
	}

	for _, w := range warnings {
		c.log.Warn("work history entry problem", zap.String("candidate_id", cand.ID), zap.String("detail", w))
	}

	m := types.CandidateMetrics{
		SeniorityLevel: types.SeniorityJunior,
		PrestigeScore:  companytier.NeutralScore,
	}
	if len(valid) == 0 {
		return m, warnings
	}

	totalMonths := 0
	relevantMonths := 0
	for _, ve := range valid {
		totalMonths += ve.durationMonths
		if matchesDomain(ve, snap, domainKeywords) {
			relevantMonths += ve.durationMonths
		}
	}

	m.TotalExperienceYears = float64(totalMonths) / 12.0
	m.RelevantExperienceYears = float64(relevantMonths) / 12.0
	m.AverageTenureMonths = float64(totalMonths) / float64(len(valid))
	m.SeniorityLevel = types.SeniorityForYears(m.TotalExperienceYears)

	m.ExperienceScore = c.experienceScore(m.RelevantExperienceYears)
	m.StabilityScore = stabilityScore(m.AverageTenureMonths)
	m.ProgressionScore = progressionScore(valid)
	m.SkillDepthScore = skillDepthScore(cand, snap, c.normalizer)

	prestige, noSignal := c.prestigeScore(valid)
	m.PrestigeScore = prestige
	for _, company := range noSignal {
		m.PrestigeDefaulted = true
		w := fmt.Sprintf("no company tier signal for %q, neutral prestige substituted", company)
		warnings = append(warnings, w)
		c.log.Warn("missing company tier signal", zap.String("candidate_id", cand.ID), zap.String("company", company))
	}

	return m, warnings
}

// matchesDomain reports whether an entry counts toward relevant experience:
// case-insensitive substring containment of any domain keyword in the raw
// title or the canonical title's display name. An entry counts once no
// matter how many keywords match.
func matchesDomain(ve validEntry, snap *taxonomy.Snapshot, keywords []string) bool {
	haystack := strings.ToLower(ve.entry.Title)
	if snap != nil && ve.titleID != "" {
		if e, ok := snap.Entity(ve.titleID); ok {
			haystack += " " + strings.ToLower(e.DisplayName)
		}
	}
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}

// experienceScore saturates linearly in relevant experience years at the
// configured cap.
func (c *Calculator) experienceScore(relevantYears float64) float64 {
	limit := c.ExperienceCapYears
	if limit <= 0 {
		limit = DefaultExperienceCapYears
	}
	return clamp10(relevantYears / limit * 10.0)
}

// stabilityScore shapes average tenure in months: short average tenure
// (job-hopping) is penalized hard, the 3-6 year band is ideal, and very long
// single tenures lose at most two points.
func stabilityScore(avgTenureMonths float64) float64 {
	switch {
	case avgTenureMonths <= 0:
		return 0
	case avgTenureMonths < 36:
		return clamp10(avgTenureMonths / 36.0 * 10.0)
	case avgTenureMonths <= 72:
		return 10.0
	default:
		// Mild decay beyond six years, floored at 8.
		score := 10.0 - (avgTenureMonths-72.0)/60.0
		if score < 8.0 {
			score = 8.0
		}
		return score
	}
}

// progressionScore walks the chronological sequence of ranked titles. A
// non-decreasing sequence keeps the full score; each regression costs
// proportionally to its magnitude, weighted toward recent transitions.
// Fewer than two ranked titles is neutral.
func progressionScore(valid []validEntry) float64 {
	ranked := make([]validEntry, 0, len(valid))
	for _, ve := range valid {
		if ve.ranked {
			ranked = append(ranked, ve)
		}
	}
	if len(ranked) < 2 {
		return 5.0
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].start.Before(ranked[j].start)
	})

	score := 10.0
	steps := len(ranked) - 1
	for i := 1; i < len(ranked); i++ {
		drop := ranked[i-1].rank - ranked[i].rank
		if drop <= 0 {
			continue
		}
		// Recency weight grows from 0.5 for the oldest transition to 1.0
		// for the most recent one.
		recency := 0.5 + 0.5*float64(i)/float64(steps)
		score -= float64(drop) * 2.5 * recency
	}
	return clamp10(score)
}

// prestigeScore averages the company-tier signal across entries. Companies
// without a signal contribute the neutral midpoint and are returned so the
// substitution can be warned about and flagged.
func (c *Calculator) prestigeScore(valid []validEntry) (float64, []string) {
	total := 0.0
	var defaulted []string
	for _, ve := range valid {
		score := companytier.NeutralScore
		known := false
		if c.tiers != nil {
			if s, ok := c.tiers.Tier(ve.entry.CompanyName); ok {
				score = s
				known = true
			}
		}
		if !known {
			defaulted = append(defaulted, ve.entry.CompanyName)
		}
		total += score
	}
	return total / float64(len(valid)), defaulted
}

// skillDepthScore scores the count of distinct normalized skills on a
// saturating ladder.
func skillDepthScore(cand *types.Candidate, snap *taxonomy.Snapshot, normalizer *normalize.Normalizer) float64 {
	distinct := make(map[string]struct{})
	for _, id := range cand.NormalizedSkills {
		if id != "" {
			distinct[id] = struct{}{}
		}
	}
	for _, raw := range cand.Skills {
		key := normalize.CleanEntityName(raw)
		if key == "" {
			continue
		}
		if normalizer != nil && snap != nil {
			if r := normalizer.Normalize(snap, raw, taxonomy.CategorySkill); r.CanonicalID != "" {
				key = r.CanonicalID
			}
		}
		distinct[key] = struct{}{}
	}

	switch n := len(distinct); {
	case n >= 15:
		return 10.0
	case n >= 10:
		return 8.0
	case n >= 5:
		return 6.0
	case n >= 2:
		return 4.0
	case n == 1:
		return 2.0
	default:
		return 0.0
	}
}

func clamp10(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}
