package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"finrag/internal/service"
)

var (
	ingestCompany string
	ingestJSON    bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Index report files",
	Long: `Loads every report file under path (.json page arrays, .txt with form-feed
page breaks, .md with <!-- page N --> markers) and indexes it for a company.
Unchanged files are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestCompany, "company", "c", "", "company the reports belong to")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the summary as JSON")
	_ = ingestCmd.MarkFlagRequired("company")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	summary, err := ingestService.IngestPath(cmd.Context(), ingestCompany, args[0])
	if summary != nil {
		if outErr := printIngestSummary(cmd, summary); outErr != nil {
			return outErr
		}
	}
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	return nil
}

func printIngestSummary(cmd *cobra.Command, summary *service.IngestSummary) error {
	if ingestJSON {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal summary: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Files:   %d\n", summary.Files)
	cmd.Printf("Indexed: %d (%d chunks)\n", summary.Indexed, summary.Chunks)
	cmd.Printf("Skipped: %d\n", summary.Skipped)
	cmd.Printf("Failed:  %d\n", summary.Failed)
	for _, fe := range summary.Errors {
		cmd.Printf("  %s: %s\n", fe.Path, fe.Error)
	}
	return nil
}
