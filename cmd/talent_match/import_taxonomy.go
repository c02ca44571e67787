package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/talent-match/internal/config"
	"github.com/jonathan/talent-match/internal/taxonomy"
)

var importTaxonomyCommand = &cobra.Command{
	Use:   "import-taxonomy",
	Short: "Import a taxonomy file into the Neo4j graph",
	Long:  "Validates a taxonomy JSON file against its schema and imports the canonical entities and alias edges into Neo4j.",
	RunE:  runImportTaxonomy,
}

var (
	importConfigPath string
	importFilePath   string
)

func init() {
	importTaxonomyCommand.Flags().StringVar(&importConfigPath, "config", "", "Path to config.json file")
	importTaxonomyCommand.Flags().StringVarP(&importFilePath, "file", "f", "", "Path to taxonomy JSON file (required)")
	_ = importTaxonomyCommand.MarkFlagRequired("file")
	rootCmd.AddCommand(importTaxonomyCommand)
}

func runImportTaxonomy(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := config.Load(importConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.UseGraph() {
		return fmt.Errorf("neo4j_uri is required to import a taxonomy")
	}

	file := taxonomy.NewFileProvider(importFilePath, filepath.Join(cfg.SchemaDir, "taxonomy.schema.json"))
	snap, err := file.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load taxonomy file: %w", err)
	}

	driver, err := taxonomy.ConnectGraph(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err != nil {
		return fmt.Errorf("failed to connect to taxonomy graph: %w", err)
	}
	graph := taxonomy.NewGraphProvider(driver, cfg.Neo4jDatabase)
	defer func() { _ = graph.Close(ctx) }()

	if err := graph.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to ensure graph schema: %w", err)
	}
	if err := graph.Import(ctx, snap); err != nil {
		return fmt.Errorf("failed to import taxonomy: %w", err)
	}

	fmt.Printf("Imported %d canonical entities\n", snap.Len())
	return nil
}
