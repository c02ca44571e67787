package main

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/jonathan/talent-match/internal/companytier"
	"github.com/jonathan/talent-match/internal/config"
	"github.com/jonathan/talent-match/internal/logging"
	"github.com/jonathan/talent-match/internal/metrics"
	"github.com/jonathan/talent-match/internal/normalize"
	"github.com/jonathan/talent-match/internal/scoring"
	"github.com/jonathan/talent-match/internal/similarity"
	"github.com/jonathan/talent-match/internal/taxonomy"
)

// components holds the wired collaborators shared by the commands.
type components struct {
	cfg        *config.Config
	log        *zap.Logger
	holder     *taxonomy.Holder
	normalizer *normalize.Normalizer
	calculator *metrics.Calculator
	ranker     *scoring.Ranker
	closeFns   []func(context.Context) error
}

// buildComponents loads config and wires the taxonomy, normalizer, metrics
// calculator, and ranker. The taxonomy loads from Neo4j when configured,
// otherwise from the taxonomy file.
func buildComponents(ctx context.Context, configPath string, sim similarity.Provider) (*components, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logging.New(cfg.LogJSON, cfg.LogDebug)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	c := &components{cfg: cfg, log: log}

	var provider taxonomy.Provider
	switch {
	case cfg.UseGraph():
		driver, err := taxonomy.ConnectGraph(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to taxonomy graph: %w", err)
		}
		graph := taxonomy.NewGraphProvider(driver, cfg.Neo4jDatabase)
		c.closeFns = append(c.closeFns, graph.Close)
		provider = graph
	case cfg.TaxonomyPath != "":
		provider = taxonomy.NewFileProvider(cfg.TaxonomyPath, filepath.Join(cfg.SchemaDir, "taxonomy.schema.json"))
	default:
		return nil, fmt.Errorf("no taxonomy source configured: set neo4j_uri or taxonomy_path")
	}

	holder, err := taxonomy.NewHolder(ctx, provider)
	if err != nil {
		return nil, fmt.Errorf("failed to load taxonomy: %w", err)
	}
	c.holder = holder

	c.normalizer = normalize.New(cfg.FuzzyThreshold)
	c.calculator = metrics.NewCalculator(c.normalizer, companytier.DefaultTable(), log)
	c.calculator.ExperienceCapYears = cfg.ExperienceCapYears
	c.ranker = scoring.NewRanker(sim, cfg.MatchWeights, cfg.LocationPartialCredit, log)
	c.ranker.NeutralScore = cfg.NeutralSimilarity

	return c, nil
}

// close releases held connections.
func (c *components) close(ctx context.Context) {
	for _, fn := range c.closeFns {
		if err := fn(ctx); err != nil {
			c.log.Warn("closing component", zap.Error(err))
		}
	}
}
