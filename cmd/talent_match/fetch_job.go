package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/talent-match/internal/fetch"
)

var fetchJobCommand = &cobra.Command{
	Use:   "fetch-job",
	Short: "Fetch a job posting from a URL",
	Long:  "Downloads a job posting page, extracts its title, company, location, and description, and prints the posting as JSON.",
	RunE:  runFetchJob,
}

var fetchJobURL string

func init() {
	fetchJobCommand.Flags().StringVarP(&fetchJobURL, "url", "u", "", "Job posting URL (required)")
	_ = fetchJobCommand.MarkFlagRequired("url")
	rootCmd.AddCommand(fetchJobCommand)
}

func runFetchJob(_ *cobra.Command, _ []string) error {
	posting, err := fetch.JobPosting(context.Background(), fetchJobURL)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(posting, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal posting: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
