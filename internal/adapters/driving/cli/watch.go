package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/finsight-labs/finsearch-cli/internal/adapters/driving/watch"
)

var watchSettle time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest files dropped into a directory",
	Long: `Watches a directory and ingests files as they appear.

.txt and .md files are indexed as documents; .json files are parsed as
financial-data snapshots. Files already present are ingested on startup.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchSettle, "settle", watch.DefaultSettle,
		"how long a file must stay unchanged before ingestion")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	cmd.Printf("Watching %s (Ctrl-C to stop)\n", args[0])
	return watch.New(ingestService, args[0], watchSettle).Run(cmd.Context())
}
