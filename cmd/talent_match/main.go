// Package main provides the entry point for the talent-match CLI and API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "talent_match",
	Short: "Talent Match candidate-job matching service",
	Long:  "Talent Match normalizes candidate and job entities against a taxonomy, derives candidate metrics and profile scores, and ranks candidates against jobs with an explainable hybrid match score.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
