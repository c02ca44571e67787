package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/talent-match/internal/normalize"
	"github.com/jonathan/talent-match/internal/similarity"
	"github.com/jonathan/talent-match/internal/taxonomy"
	"github.com/jonathan/talent-match/internal/types"
)

var matchCommand = &cobra.Command{
	Use:   "match",
	Short: "Rank candidates against a job offline",
	Long:  "Scores every candidate in the candidates file against the job and prints the ranked page as JSON. Semantic similarity scores can be supplied in a separate file; missing scores use the neutral default.",
	RunE:  runMatch,
}

var (
	matchConfigPath     string
	matchJobPath        string
	matchCandidatesPath string
	matchScoresPath     string
	matchPage           int
	matchSize           int
)

func init() {
	matchCommand.Flags().StringVar(&matchConfigPath, "config", "", "Path to config.json file")
	matchCommand.Flags().StringVarP(&matchJobPath, "job", "j", "", "Path to job JSON file (required)")
	matchCommand.Flags().StringVarP(&matchCandidatesPath, "candidates", "c", "", "Path to candidates JSON array file (required)")
	matchCommand.Flags().StringVar(&matchScoresPath, "similarity", "", "Path to JSON file mapping candidate ID to semantic similarity")
	matchCommand.Flags().IntVar(&matchPage, "page", 1, "Result page, starting at 1")
	matchCommand.Flags().IntVar(&matchSize, "size", 20, "Page size, 1 to 100")
	_ = matchCommand.MarkFlagRequired("job")
	_ = matchCommand.MarkFlagRequired("candidates")
	rootCmd.AddCommand(matchCommand)
}

func runMatch(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	sim := similarity.Provider(similarity.Neutral{})
	if matchScoresPath != "" {
		scores, err := loadSimilarityFile(matchScoresPath)
		if err != nil {
			return err
		}
		sim = similarity.Static{Scores: scores}
	}

	c, err := buildComponents(ctx, matchConfigPath, sim)
	if err != nil {
		return err
	}
	defer c.close(ctx)

	var job types.Job
	if err := readJSONFile(matchJobPath, &job); err != nil {
		return err
	}
	var candidates []*types.Candidate
	if err := readJSONFile(matchCandidatesPath, &candidates); err != nil {
		return err
	}

	// Normalize and enrich before scoring, matching the server's flow.
	snap := c.holder.Current()
	job.NormalizedSkills, job.UnmatchedSkills = normalizeSkills(c, snap, job.RequiredSkills)
	for _, cand := range candidates {
		cand.NormalizedSkills, _ = normalizeSkills(c, snap, cand.Skills)
		if cand.Metrics == nil {
			m, _ := c.calculator.Compute(snap, cand, c.cfg.DomainKeywords)
			cand.Metrics = &m
		}
	}

	page, err := c.ranker.Rank(ctx, &job, candidates, matchPage, matchSize)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ranking: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func normalizeSkills(c *components, snap *taxonomy.Snapshot, raw []string) (matched, unmatched []string) {
	for _, res := range c.normalizer.NormalizeAll(snap, raw, taxonomy.CategorySkill) {
		if res.MatchType == normalize.MatchNone {
			unmatched = append(unmatched, normalize.CleanEntityName(res.Original))
		} else {
			matched = append(matched, res.CanonicalID)
		}
	}
	return matched, unmatched
}

func loadSimilarityFile(path string) (map[string]float64, error) {
	var scores map[string]float64
	if err := readJSONFile(path, &scores); err != nil {
		return nil, err
	}
	return scores, nil
}

func readJSONFile(path string, v any) error {
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
