package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/finsight-labs/finsearch-cli/internal/adapters/driven/config/file"
	"github.com/finsight-labs/finsearch-cli/internal/chunker"
	"github.com/finsight-labs/finsearch-cli/internal/adapters/driven/embedding/hashing"
	"github.com/finsight-labs/finsearch-cli/internal/adapters/driven/vector/flat"
	"github.com/finsight-labs/finsearch-cli/internal/core/services"
)

// setupTestServices wires real services behind the package vars and
// returns the retrieval service for direct seeding.
func setupTestServices(t *testing.T) *services.RetrievalService {
	t.Helper()

	embedder := hashing.New(64)
	index, err := flat.New(embedder.Dimensions())
	require.NoError(t, err)
	svc, err := services.New(embedder, index)
	require.NoError(t, err)

	store, err := file.NewConfigStore(t.TempDir())
	require.NoError(t, err)

	searchService = svc
	ingestService = svc
	indexService = svc
	configStore = store

	t.Cleanup(func() {
		searchService = nil
		ingestService = nil
		indexService = nil
		configStore = nil
	})
	return svc
}

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		resetFlags()
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores flag state between tests. Cobra keeps the Changed
// bit across Execute calls, which trips MarkFlagsMutuallyExclusive.
func resetFlags() {
	for _, cmd := range rootCmd.Commands() {
		cmd.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
	}
	searchLimit = 5
	searchCompany = ""
	searchFilters = nil
	searchJSON = false
	contextTickers = nil
	contextLimit = 5
	contextJSON = false
	ingestAsFiling = false
	ingestAsNews = false
	ingestAsData = false
	ingestTicker = ""
	ingestSource = ""
	ingestForm = ""
	ingestDate = ""
	ingestURL = ""
	ingestTitle = ""
	ingestPublisher = ""
	ingestChunkSize = chunker.DefaultChunkSize
	ingestOverlap = chunker.DefaultChunkOverlap
	verbose = false
}
