package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/finsight-labs/finsearch-cli/internal/core/domain"
)

var (
	searchLimit   int
	searchCompany string
	searchFilters []string
	searchJSON    bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Performs semantic search across all indexed documents.
Results are ranked by vector distance and deduplicated so each document
appears at most once. Use --company to scope the search to one ticker,
or --filter for exact-match metadata filters.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 5, "maximum number of results")
	searchCmd.Flags().StringVarP(&searchCompany, "company", "c", "", "restrict to one ticker symbol")
	searchCmd.Flags().StringArrayVarP(&searchFilters, "filter", "f", nil, "metadata filter key=value (repeatable)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	filters, err := parseFilters(searchFilters)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	var resp *domain.SearchResponse
	if searchCompany != "" {
		resp, err = searchService.SearchByCompany(ctx, searchCompany, query, searchLimit)
	} else {
		resp, err = searchService.Search(ctx, query, searchLimit, filters)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputJSON(cmd, resp)
	}
	return outputSearchTable(cmd, resp.Results)
}

// parseFilters turns repeated key=value flags into a metadata filter.
func parseFilters(pairs []string) (domain.Metadata, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	filters := make(domain.Metadata, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q: expected key=value", pair)
		}
		filters[key] = domain.ValueOf(value)
	}
	return filters, nil
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		cmd.Printf("  [%d] document %d, chunk %d (%.2f)\n",
			i+1, results[i].DocumentID, results[i].ChunkID, results[i].Confidence)
		if ticker, ok := results[i].Metadata[domain.KeyTicker]; ok {
			cmd.Printf("      Ticker: %s\n", ticker.String())
		}
		if source, ok := results[i].Metadata[domain.KeySource]; ok {
			cmd.Printf("      Source: %s\n", source.String())
		}
		cmd.Printf("      %s\n", snippet(results[i].Text))
		cmd.Println()
	}
	return nil
}

// snippet truncates long chunk text for table display. Truncation
// counts runes so a multi-byte character is never cut mid-sequence.
func snippet(text string) string {
	const maxLen = 160
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxLen]) + "..."
}
