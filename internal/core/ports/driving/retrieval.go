package driving

import (
	"context"

	"github.com/finsight-labs/finsearch-cli/internal/core/domain"
)

// SearchService provides semantic search capabilities to external actors.
type SearchService interface {
	// Search performs semantic search across all indexed documents.
	// k <= 0 selects the default result count.
	Search(ctx context.Context, query string, k int, filters domain.Metadata) (*domain.SearchResponse, error)

	// SearchByCompany searches documents scoped to one ticker symbol.
	SearchByCompany(ctx context.Context, ticker, query string, k int) (*domain.SearchResponse, error)

	// FinancialContext aggregates per-ticker and general search results
	// into a single ranked context for a financial question.
	FinancialContext(ctx context.Context, query string, tickers []string, k int) (*domain.ContextResponse, error)
}

// IngestService adds content to the index.
type IngestService interface {
	// AddDocument chunks, embeds and indexes raw text.
	AddDocument(ctx context.Context, text string, metadata domain.Metadata, size, overlap int) (domain.IngestResult, error)

	// AddFinancialData indexes a structured financial-data snapshot.
	AddFinancialData(ctx context.Context, data map[string]any, source string) (domain.IngestResult, error)

	// AddFiling indexes an SEC filing.
	AddFiling(ctx context.Context, filing domain.Filing, content string) (domain.IngestResult, error)

	// AddNewsArticle indexes a news article.
	AddNewsArticle(ctx context.Context, article domain.Article) (domain.IngestResult, error)
}

// IndexService exposes index inspection and administration.
type IndexService interface {
	// Document returns a stored document by id.
	Document(id int) (*domain.Document, error)

	// Stats reports index totals and per-source/per-company breakdowns.
	Stats() domain.Stats

	// Clear removes all documents and vectors.
	Clear()

	// Snapshot persists the current index state.
	Snapshot(ctx context.Context) error

	// Restore loads the persisted index state. Returns false when no
	// snapshot exists.
	Restore(ctx context.Context) (bool, error)
}
