package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/talent-match/internal/normalize"
	"github.com/jonathan/talent-match/internal/schemas"
	"github.com/jonathan/talent-match/internal/scoring"
	"github.com/jonathan/talent-match/internal/similarity"
	"github.com/jonathan/talent-match/internal/taxonomy"
	"github.com/jonathan/talent-match/internal/types"
)

var scoreCommand = &cobra.Command{
	Use:   "score",
	Short: "Score a candidate profile from a JSON file",
	Long:  "Normalizes the candidate's skills and titles, derives metrics, and computes the universal profile score. Prints the enriched candidate as JSON.",
	RunE:  runScore,
}

var (
	scoreConfigPath    string
	scoreCandidatePath string
)

func init() {
	scoreCommand.Flags().StringVar(&scoreConfigPath, "config", "", "Path to config.json file")
	scoreCommand.Flags().StringVarP(&scoreCandidatePath, "candidate", "c", "", "Path to candidate JSON file (required)")
	_ = scoreCommand.MarkFlagRequired("candidate")
	rootCmd.AddCommand(scoreCommand)
}

func runScore(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	c, err := buildComponents(ctx, scoreConfigPath, similarity.Neutral{})
	if err != nil {
		return err
	}
	defer c.close(ctx)

	cand, err := loadCandidateFile(scoreCandidatePath, filepath.Join(c.cfg.SchemaDir, "candidate.schema.json"))
	if err != nil {
		return err
	}

	snap := c.holder.Current()
	cand.NormalizedSkills = nil
	for _, res := range c.normalizer.NormalizeAll(snap, cand.Skills, taxonomy.CategorySkill) {
		if res.MatchType != normalize.MatchNone {
			cand.NormalizedSkills = append(cand.NormalizedSkills, res.CanonicalID)
		}
	}

	m, warnings := c.calculator.Compute(snap, cand, c.cfg.DomainKeywords)
	cand.Metrics = &m

	score, err := scoring.ComputeUniversalScore(m, c.cfg.ProfileWeights)
	if err != nil {
		return err
	}
	cand.UniversalScore = score

	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	out, err := json.MarshalIndent(cand, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal candidate: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// loadCandidateFile reads and schema-validates a candidate JSON document.
func loadCandidateFile(path, schemaPath string) (*types.Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read candidate file: %w", err)
	}

	if resolved := schemas.ResolveSchemaPath(schemaPath); resolved != "" {
		schemaPath = resolved
	}
	if err := schemas.ValidateBytes(schemaPath, data); err != nil {
		return nil, fmt.Errorf("candidate file invalid: %w", err)
	}

	var cand types.Candidate
	if err := json.Unmarshal(data, &cand); err != nil {
		return nil, fmt.Errorf("failed to parse candidate JSON: %w", err)
	}
	return &cand, nil
}
