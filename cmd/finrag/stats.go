package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	statsCompany string
	statsJSON    bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVarP(&statsCompany, "company", "c", "", "restrict to one company")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	stats, err := ingestService.Stats(cmd.Context(), statsCompany)
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}

	if statsJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Documents:        %d (%d without chunks)\n", stats.Documents, stats.DocumentsWithoutChunks)
	cmd.Printf("Chunks:           %d\n", stats.Chunks)
	cmd.Printf("Critical chunks:  %d (%.2f%%)\n", stats.CriticalChunks, stats.CriticalShare*100)
	cmd.Printf("Chunk size:       min %d, max %d, mean %.2f, p95 %d\n",
		stats.ChunkSize.Min, stats.ChunkSize.Max, stats.ChunkSize.Mean, stats.ChunkSize.P95)
	cmd.Printf("Chunker version:  %s (max %d bytes)\n", stats.ChunkerVersion, stats.MaxChunkSize)
	cmd.Printf("Index version:    %s\n", stats.IndexVersion)
	return nil
}
