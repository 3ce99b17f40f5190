package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/finsight-labs/finsearch-cli/internal/chunker"
	"github.com/finsight-labs/finsearch-cli/internal/core/domain"
)

var (
	ingestAsFiling bool
	ingestAsNews   bool
	ingestAsData   bool

	ingestTicker    string
	ingestSource    string
	ingestForm      string
	ingestDate      string
	ingestURL       string
	ingestTitle     string
	ingestPublisher string
	ingestChunkSize int
	ingestOverlap   int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest a file into the index",
	Long: `Reads a file and adds it to the search index.

By default the file is indexed as a plain document. Use one of the mode
flags to apply source-specific metadata and chunking:

  --filing   SEC filing (use with --ticker, --form, --date, --url)
  --news     news article (use with --ticker, --title, --publisher, --url)
  --data     JSON financial-data snapshot (use with --source)`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestAsFiling, "filing", false, "ingest as an SEC filing")
	ingestCmd.Flags().BoolVar(&ingestAsNews, "news", false, "ingest as a news article")
	ingestCmd.Flags().BoolVar(&ingestAsData, "data", false, "ingest as a JSON financial-data snapshot")
	ingestCmd.MarkFlagsMutuallyExclusive("filing", "news", "data")

	ingestCmd.Flags().StringVarP(&ingestTicker, "ticker", "t", "", "company ticker symbol")
	ingestCmd.Flags().StringVarP(&ingestSource, "source", "s", "", "source name for document or data ingestion")
	ingestCmd.Flags().StringVar(&ingestForm, "form", "", "filing form type, e.g. 10-K")
	ingestCmd.Flags().StringVar(&ingestDate, "date", "", "filing date, e.g. 2024-04-18")
	ingestCmd.Flags().StringVar(&ingestURL, "url", "", "origin URL")
	ingestCmd.Flags().StringVar(&ingestTitle, "title", "", "article title (defaults to the file name)")
	ingestCmd.Flags().StringVar(&ingestPublisher, "publisher", "", "article publisher")
	ingestCmd.Flags().IntVar(&ingestChunkSize, "chunk-size", chunker.DefaultChunkSize, "chunk size in characters")
	ingestCmd.Flags().IntVar(&ingestOverlap, "chunk-overlap", chunker.DefaultChunkOverlap, "chunk overlap in characters")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	ctx := cmd.Context()
	var res domain.IngestResult

	switch {
	case ingestAsFiling:
		res, err = ingestService.AddFiling(ctx, domain.Filing{
			Ticker:     ingestTicker,
			Form:       ingestForm,
			FilingDate: ingestDate,
			URL:        ingestURL,
		}, string(content))

	case ingestAsNews:
		title := ingestTitle
		if title == "" {
			title = filepath.Base(path)
		}
		res, err = ingestService.AddNewsArticle(ctx, domain.Article{
			Title:     title,
			Content:   string(content),
			Ticker:    ingestTicker,
			URL:       ingestURL,
			Publisher: ingestPublisher,
		})

	case ingestAsData:
		var data map[string]any
		if err := json.Unmarshal(content, &data); err != nil {
			return fmt.Errorf("parsing %s as JSON: %w", path, err)
		}
		source := ingestSource
		if source == "" {
			source = "financial_data"
		}
		res, err = ingestService.AddFinancialData(ctx, data, source)

	default:
		metadata := domain.Metadata{"filename": domain.String(filepath.Base(path))}
		if ingestSource != "" {
			metadata[domain.KeySource] = domain.String(ingestSource)
		}
		if ingestTicker != "" {
			metadata[domain.KeyTicker] = domain.String(ingestTicker)
		}
		res, err = ingestService.AddDocument(ctx, string(content), metadata, ingestChunkSize, ingestOverlap)
	}

	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Indexed document %d (%d chunks)\n", res.DocumentID, res.Chunks)
	return nil
}
