package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"finrag/internal/rag"
)

var (
	queryCompany   string
	queryTopK      int
	queryStatement string
	queryNote      string
	queryNoDedup   bool
	queryInfer     bool
	queryJSON      bool
)

const snippetLength = 240

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Retrieve report passages for a question",
	Long: `Runs hybrid retrieval over a company's indexed reports. Vector and keyword
hits are merged, re-ranked by the sections the question mentions and
de-duplicated before the top results are printed.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryCompany, "company", "c", "", "company whose reports are searched")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results, 0 uses the configured default")
	queryCmd.Flags().StringVar(&queryStatement, "statement", "", "restrict to standalone or consolidated statements")
	queryCmd.Flags().StringVar(&queryNote, "note", "", `restrict to one note, e.g. "Note 12"`)
	queryCmd.Flags().BoolVar(&queryNoDedup, "no-dedup", false, "skip near-duplicate removal")
	queryCmd.Flags().BoolVar(&queryInfer, "infer", false, "infer statement and note filters from the question")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	_ = queryCmd.MarkFlagRequired("company")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	resp, err := retrievalService.Retrieve(cmd.Context(), rag.Request{
		Query:     args[0],
		CompanyID: queryCompany,
		TopK:      queryTopK,
		Filters: rag.Filters{
			StatementType: queryStatement,
			NoteNumber:    queryNote,
		},
		DisableDedup: queryNoDedup,
		InferFilters: queryInfer,
	})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		data, err := json.MarshalIndent(resp.Results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(resp.Results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range resp.Results {
		label := string(r.ChunkType)
		if r.NoteNumber != "" {
			label = r.NoteNumber + " " + label
		}
		cmd.Printf("  [%d] %s pages %s (%.3f, %s)\n", i+1, label, formatPages(r.PageNumbers), r.Score, r.RetrievalTier)
		cmd.Printf("      %s\n", snippet(r.ChunkText))
		cmd.Println()
	}
	return nil
}

func formatPages(pages []int) string {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, ",")
}

func snippet(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= snippetLength {
		return text
	}
	cut := snippetLength
	for cut > 0 && !isRuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
