package cli

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	RunE:  runStats,
}

var getCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show a stored document by id",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all documents from the index",
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(clearCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	stats := indexService.Stats()

	cmd.Println("Index Statistics")
	cmd.Println("================")
	cmd.Printf("  Documents:  %d\n", stats.TotalDocuments)
	cmd.Printf("  Chunks:     %d\n", stats.TotalChunks)
	cmd.Printf("  Model:      %s\n", stats.EmbeddingModel)
	cmd.Printf("  Dimensions: %d\n", stats.Dimensions)

	if len(stats.Sources) > 0 {
		cmd.Println("\n  By source:")
		for _, name := range sortedKeys(stats.Sources) {
			cmd.Printf("    %-16s %d\n", name, stats.Sources[name])
		}
	}
	if len(stats.Companies) > 0 {
		cmd.Println("\n  By company:")
		for _, ticker := range sortedKeys(stats.Companies) {
			cmd.Printf("    %-16s %d\n", ticker, stats.Companies[ticker])
		}
	}
	return nil
}

func runGet(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid document id %q", args[0])
	}

	doc, err := indexService.Document(id)
	if err != nil {
		return fmt.Errorf("get document %d: %w", id, err)
	}

	return outputJSON(cmd, doc)
}

func runClear(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	indexService.Clear()
	cmd.Println("Index cleared.")
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
