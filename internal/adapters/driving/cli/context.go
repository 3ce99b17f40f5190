package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	contextTickers []string
	contextLimit   int
	contextJSON    bool
)

var contextCmd = &cobra.Command{
	Use:   "context [query]",
	Short: "Gather ranked context for a financial question",
	Long: `Aggregates search results for a financial question. Each ticker gets a
dedicated company search; the merged results are deduplicated by document,
reranked by confidence and truncated to the limit.`,
	Args: cobra.ExactArgs(1),
	RunE: runContext,
}

func init() {
	contextCmd.Flags().StringSliceVarP(&contextTickers, "tickers", "t", nil, "ticker symbols to prioritise (comma-separated)")
	contextCmd.Flags().IntVarP(&contextLimit, "limit", "n", 5, "maximum number of context snippets")
	contextCmd.Flags().BoolVar(&contextJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(contextCmd)
}

func runContext(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	resp, err := searchService.FinancialContext(cmd.Context(), args[0], contextTickers, contextLimit)
	if err != nil {
		return fmt.Errorf("context aggregation failed: %w", err)
	}

	if contextJSON {
		return outputJSON(cmd, resp)
	}

	if len(resp.Results) == 0 {
		cmd.Println("No context found.")
		return nil
	}

	cmd.Printf("Context (confidence %.2f):\n\n", resp.Confidence)
	return outputSearchTable(cmd, resp.Results)
}
