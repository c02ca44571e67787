package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/talent-match/internal/server"
	"github.com/jonathan/talent-match/internal/similarity"
	"github.com/jonathan/talent-match/internal/store"
)

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Starts the REST API serving candidate and job CRUD, entity normalization, metric computation, and candidate ranking.",
	RunE:  runServe,
}

var serveConfigPath string

func init() {
	serveCommand.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file")
	rootCmd.AddCommand(serveCommand)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	c, err := buildComponents(ctx, serveConfigPath, similarity.Neutral{})
	if err != nil {
		return err
	}
	defer c.close(ctx)

	if c.cfg.DatabaseURL == "" {
		return fmt.Errorf("database_url is required to serve")
	}
	st, err := store.Connect(ctx, c.cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return err
	}

	srv := server.New(c.cfg, st, c.holder, c.normalizer, c.calculator, c.ranker, c.log)
	return srv.Start()
}
