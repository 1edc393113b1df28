package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"finrag/internal/app"
	"finrag/internal/config"
	"finrag/internal/contextutil"
	"finrag/internal/service"
)

var (
	retrievalService service.RetrievalService
	ingestService    service.IngestService
	closeApp         func() error
)

var rootCmd = &cobra.Command{
	Use:   "finrag",
	Short: "Index and search financial annual reports",
	Long: `finrag chunks annual reports along their notes to accounts, indexes the
chunks for vector and keyword search, and retrieves the passages that answer
a question about a company's financial statements.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setupServices,
	PersistentPostRunE: closeServices,
}

// setupServices loads configuration and wires the services unless they are
// already set.
func setupServices(cmd *cobra.Command, _ []string) error {
	if retrievalService != nil && ingestService != nil {
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := app.NewLogger(cfg, os.Stderr)
	slog.SetDefault(logger)

	ctx := contextutil.WithLogger(cmd.Context(), logger)
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}

	retrievalService = a.Retrieval
	ingestService = a.Ingest
	closeApp = a.Close
	cmd.SetContext(ctx)
	return nil
}

func closeServices(_ *cobra.Command, _ []string) error {
	if closeApp == nil {
		return nil
	}
	err := closeApp()
	closeApp = nil
	return err
}
