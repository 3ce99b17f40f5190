// Package cli wires the retrieval engine to its cobra command surface.
// Services are injected once through Execute; commands read them from
// package state, failing with a clear error when unconfigured.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/finsight-labs/finsearch-cli/internal/core/ports/driven"
	"github.com/finsight-labs/finsearch-cli/internal/core/ports/driving"
	"github.com/finsight-labs/finsearch-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	searchService driving.SearchService
	ingestService driving.IngestService
	indexService  driving.IndexService
	configStore   driven.ConfigStore

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "finsearch",
	Short: "Semantic search over financial documents",
	Long: `finsearch indexes SEC filings, news articles and financial data
snapshots, and answers semantic queries over them.

Documents are chunked, embedded and stored in an in-memory vector index
that can be snapshotted to disk. Search supports exact-match metadata
filters, company scoping by ticker, and multi-ticker context aggregation
for financial questions.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Services bundles everything the commands need.
type Services struct {
	Search driving.SearchService
	Ingest driving.IngestService
	Index  driving.IndexService
	Config driven.ConfigStore
}

// Execute injects the services and runs the root command.
func Execute(s Services) error {
	return ExecuteContext(context.Background(), s)
}

// ExecuteContext runs the root command under ctx so long-running
// commands (serve, watch, mcp serve) stop on interrupt.
func ExecuteContext(ctx context.Context, s Services) error {
	searchService = s.Search
	ingestService = s.Ingest
	indexService = s.Index
	configStore = s.Config
	return rootCmd.ExecuteContext(ctx)
}
