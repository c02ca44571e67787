package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/talent-match/internal/companytier"
	"github.com/jonathan/talent-match/internal/normalize"
	"github.com/jonathan/talent-match/internal/taxonomy"
	"github.com/jonathan/talent-match/internal/types"
)

// fixedNow pins "today" so duration computations are reproducible.
var fixedNow = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func testSnapshot(t *testing.T) *taxonomy.Snapshot {
	t.Helper()
	snap, err := taxonomy.NewSnapshot([]taxonomy.CanonicalEntity{
		{ID: "skill_python", DisplayName: "Python", Aliases: []string{"python3"}, Category: taxonomy.CategorySkill},
		{ID: "skill_go", DisplayName: "Go", Aliases: []string{"golang"}, Category: taxonomy.CategorySkill},
		{ID: "skill_sql", DisplayName: "SQL", Category: taxonomy.CategorySkill},
		{ID: "title_intern", DisplayName: "Engineering Intern", Category: taxonomy.CategoryJobTitle, SeniorityRank: 1},
		{ID: "title_swe", DisplayName: "Software Engineer", Aliases: []string{"swe"}, Category: taxonomy.CategoryJobTitle, SeniorityRank: 2},
		{ID: "title_senior_swe", DisplayName: "Senior Software Engineer", Category: taxonomy.CategoryJobTitle, SeniorityRank: 3},
		{ID: "title_lead", DisplayName: "Lead Engineer", Category: taxonomy.CategoryJobTitle, SeniorityRank: 4},
	})
	require.NoError(t, err)
	return snap
}

func testCalculator() *Calculator {
	c := NewCalculator(normalize.New(0), companytier.DefaultTable(), nil)
	c.now = func() time.Time { return fixedNow }
	return c
}

func TestCompute_EmptyWorkHistory(t *testing.T) {
	c := testCalculator()
	m, warnings := c.Compute(testSnapshot(t), &types.Candidate{ID: "c1"}, []string{"engineer"})

	assert.Empty(t, warnings)
	assert.Equal(t, 0.0, m.TotalExperienceYears)
	assert.Equal(t, 0.0, m.RelevantExperienceYears)
	assert.Equal(t, 0.0, m.AverageTenureMonths)
	assert.Equal(t, types.SeniorityJunior, m.SeniorityLevel)
	assert.Equal(t, 0.0, m.ExperienceScore)
	assert.Equal(t, 0.0, m.StabilityScore)
	assert.Equal(t, 0.0, m.ProgressionScore)
	assert.Equal(t, 0.0, m.SkillDepthScore)
	// Prestige is neutral, never zero.
	assert.Equal(t, companytier.NeutralScore, m.PrestigeScore)
}

func TestCompute_TotalsAndSeniority(t *testing.T) {
	c := testCalculator()
	cand := &types.Candidate{
		ID: "c1",
		WorkExperience: []types.WorkExperienceEntry{
			{CompanyName: "Google", Title: "Software Engineer", StartDate: "2019-01-01", EndDate: "2021-01-01"},
			{CompanyName: "Stripe", Title: "Senior Software Engineer", StartDate: "2021-01-01"}, // current as of fixedNow
		},
	}

	m, warnings := c.Compute(testSnapshot(t), cand, []string{"engineer"})
	assert.Empty(t, warnings)

	// 24 months + 36 months = 60 months = 5 years.
	assert.InDelta(t, 5.0, m.TotalExperienceYears, 0.001)
	assert.InDelta(t, 5.0, m.RelevantExperienceYears, 0.001)
	assert.InDelta(t, 30.0, m.AverageTenureMonths, 0.001)
	assert.Equal(t, types.SeniorityMid, m.SeniorityLevel)

	// 5 relevant years against a 10-year cap.
	assert.InDelta(t, 5.0, m.ExperienceScore, 0.001)
}

func TestCompute_InvalidEntriesSkippedWithWarnings(t *testing.T) {
	c := testCalculator()
	cand := &types.Candidate{
		ID: "c1",
		WorkExperience: []types.WorkExperienceEntry{
			{CompanyName: "Google", Title: "Software Engineer", StartDate: "2020-01-01", EndDate: "2022-01-01"},
			{CompanyName: "BadStart", Title: "Software Engineer", StartDate: "garbage", EndDate: "2022-01-01"},
			{CompanyName: "BadEnd", Title: "Software Engineer", StartDate: "2019-01-01", EndDate: "garbage"},
			{CompanyName: "Inverted", Title: "Software Engineer", StartDate: "2023-01-01", EndDate: "2021-01-01"},
			{CompanyName: "Future", Title: "Software Engineer", StartDate: "2030-01-01"},
		},
	}

	m, warnings := c.Compute(testSnapshot(t), cand, nil)
	require.Len(t, warnings, 4)
	assert.Contains(t, warnings[0], "unparseable start date")
	assert.Contains(t, warnings[1], "unparseable end date")
	assert.Contains(t, warnings[1], "entry skipped")
	assert.Contains(t, warnings[2], "start date after end date")
	assert.Contains(t, warnings[3], "start date after end date")

	// Only the valid entry counts.
	assert.InDelta(t, 2.0, m.TotalExperienceYears, 0.001)
}

func TestCompute_RelevantExperienceKeywords(t *testing.T) {
	c := testCalculator()
	cand := &types.Candidate{
		ID: "c1",
		WorkExperience: []types.WorkExperienceEntry{
			{CompanyName: "A", Title: "Software Engineer", StartDate: "2018-01-01", EndDate: "2020-01-01"},
			{CompanyName: "B", Title: "Barista", StartDate: "2020-01-01", EndDate: "2022-01-01"},
		},
	}

	m, _ := c.Compute(testSnapshot(t), cand, []string{"engineer", "developer"})
	assert.InDelta(t, 4.0, m.TotalExperienceYears, 0.001)
	assert.InDelta(t, 2.0, m.RelevantExperienceYears, 0.001)

	// Relevant never exceeds total even when multiple keywords match.
	m, _ = c.Compute(testSnapshot(t), cand, []string{"engineer", "software"})
	assert.InDelta(t, 2.0, m.RelevantExperienceYears, 0.001)
}

func TestCompute_ProgressionMonotonicIsHighest(t *testing.T) {
	c := testCalculator()
	up := &types.Candidate{
		ID: "up",
		WorkExperience: []types.WorkExperienceEntry{
			{CompanyName: "A", Title: "Engineering Intern", StartDate: "2014-01-01", EndDate: "2015-01-01"},
			{CompanyName: "B", Title: "Software Engineer", StartDate: "2015-01-01", EndDate: "2018-01-01"},
			{CompanyName: "C", Title: "Senior Software Engineer", StartDate: "2018-01-01", EndDate: "2021-01-01"},
			{CompanyName: "D", Title: "Lead Engineer", StartDate: "2021-01-01"},
		},
	}
	down := &types.Candidate{
		ID: "down",
		WorkExperience: []types.WorkExperienceEntry{
			{CompanyName: "A", Title: "Lead Engineer", StartDate: "2014-01-01", EndDate: "2018-01-01"},
			{CompanyName: "B", Title: "Software Engineer", StartDate: "2018-01-01"},
		},
	}

	snap := testSnapshot(t)
	mUp, _ := c.Compute(snap, up, nil)
	mDown, _ := c.Compute(snap, down, nil)

	assert.Equal(t, 10.0, mUp.ProgressionScore)
	assert.Less(t, mDown.ProgressionScore, mUp.ProgressionScore)
}

func TestCompute_ProgressionRecentRegressionCostsMore(t *testing.T) {
	c := testCalculator()
	snap := testSnapshot(t)

	earlyDip := &types.Candidate{
		ID: "early",
		WorkExperience: []types.WorkExperienceEntry{
			{CompanyName: "A", Title: "Senior Software Engineer", StartDate: "2012-01-01", EndDate: "2014-01-01"},
			{CompanyName: "B", Title: "Software Engineer", StartDate: "2014-01-01", EndDate: "2017-01-01"},
			{CompanyName: "C", Title: "Senior Software Engineer", StartDate: "2017-01-01"},
		},
	}
	lateDip := &types.Candidate{
		ID: "late",
		WorkExperience: []types.WorkExperienceEntry{
			{CompanyName: "A", Title: "Software Engineer", StartDate: "2012-01-01", EndDate: "2014-01-01"},
			{CompanyName: "B", Title: "Senior Software Engineer", StartDate: "2014-01-01", EndDate: "2017-01-01"},
			{CompanyName: "C", Title: "Software Engineer", StartDate: "2017-01-01"},
		},
	}

	mEarly, _ := c.Compute(snap, earlyDip, nil)
	mLate, _ := c.Compute(snap, lateDip, nil)
	assert.Greater(t, mEarly.ProgressionScore, mLate.ProgressionScore)
}

func TestCompute_ProgressionNeutralWithoutRankedTitles(t *testing.T) {
	c := testCalculator()
	cand := &types.Candidate{
		ID: "c1",
		WorkExperience: []types.WorkExperienceEntry{
			{CompanyName: "A", Title: "Donut Taster", StartDate: "2018-01-01", EndDate: "2020-01-01"},
			{CompanyName: "B", Title: "Cloud Whisperer", StartDate: "2020-01-01"},
		},
	}
	m, _ := c.Compute(testSnapshot(t), cand, nil)
	assert.Equal(t, 5.0, m.ProgressionScore)
}

func TestCompute_PrestigeFromTierTable(t *testing.T) {
	c := testCalculator()
	cand := &types.Candidate{
		ID: "c1",
		WorkExperience: []types.WorkExperienceEntry{
			{CompanyName: "Google", Title: "Software Engineer", StartDate: "2018-01-01", EndDate: "2020-01-01"},
			{CompanyName: "Totally Unknown LLC", Title: "Software Engineer", StartDate: "2020-01-01"},
		},
	}

	m, warnings := c.Compute(testSnapshot(t), cand, nil)
	// Mean of 10.0 (tier 1) and 5.0 (neutral fallback).
	assert.InDelta(t, 7.5, m.PrestigeScore, 0.001)

	// The substitution is never silent.
	assert.True(t, m.PrestigeDefaulted)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "no company tier signal")
	assert.Contains(t, warnings[0], "Totally Unknown LLC")
}

func TestCompute_NoPrestigeWarningWhenAllCompaniesKnown(t *testing.T) {
	c := testCalculator()
	cand := &types.Candidate{
		ID: "c1",
		WorkExperience: []types.WorkExperienceEntry{
			{CompanyName: "Google", Title: "Software Engineer", StartDate: "2018-01-01", EndDate: "2020-01-01"},
		},
	}

	m, warnings := c.Compute(testSnapshot(t), cand, nil)
	assert.False(t, m.PrestigeDefaulted)
	assert.Empty(t, warnings)
}

func TestCompute_SkillDepthLadder(t *testing.T) {
	c := testCalculator()
	snap := testSnapshot(t)
	history := []types.WorkExperienceEntry{
		{CompanyName: "A", Title: "Software Engineer", StartDate: "2018-01-01"},
	}

	tests := []struct {
		skills []string
		want   float64
	}{
		{nil, 0.0},
		{[]string{"Python"}, 2.0},
		{[]string{"Python", "Go"}, 4.0},
		{[]string{"Python", "Go", "SQL", "Rust", "Kafka"}, 6.0},
	}
	for _, tt := range tests {
		m, _ := c.Compute(snap, &types.Candidate{ID: "c", Skills: tt.skills, WorkExperience: history}, nil)
		assert.Equal(t, tt.want, m.SkillDepthScore, "skills %v", tt.skills)
	}

	// Duplicate raw spellings of one canonical skill count once.
	m, _ := c.Compute(snap, &types.Candidate{
		ID:             "c",
		Skills:         []string{"Python", "python3", "PYTHON"},
		WorkExperience: history,
	}, nil)
	assert.Equal(t, 2.0, m.SkillDepthScore)
}

func TestStabilityScore(t *testing.T) {
	assert.Equal(t, 0.0, stabilityScore(0))
	// Job hopping scores low.
	assert.InDelta(t, 1.67, stabilityScore(6), 0.01)
	// Three to six years of average tenure is ideal.
	assert.Equal(t, 10.0, stabilityScore(36))
	assert.Equal(t, 10.0, stabilityScore(72))
	// Very long tenures decay mildly, never below 8.
	assert.Less(t, stabilityScore(120), 10.0)
	assert.GreaterOrEqual(t, stabilityScore(240), 8.0)
}
