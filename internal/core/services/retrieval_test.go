package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-labs/finsearch-cli/internal/adapters/driven/vector/flat"
	"github.com/finsight-labs/finsearch-cli/internal/chunker"
	"github.com/finsight-labs/finsearch-cli/internal/core/domain"
)

func TestNew_RequiresDependencies(t *testing.T) {
	index, err := flat.New(3)
	require.NoError(t, err)

	_, err = New(nil, index)
	assert.ErrorIs(t, err, domain.ErrEmbedderUnavailable)

	_, err = New(newFakeEmbedder(), nil)
	assert.Error(t, err)
}

func TestAddDocument_AssignsInsertionOrderIDs(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i, text := range []string{
		"semiconductor supply is tightening",
		"earnings beat expectations",
		"dividend raised again",
	} {
		res, err := svc.AddDocument(ctx, text, nil, chunker.DefaultChunkSize, chunker.DefaultChunkOverlap)
		require.NoError(t, err)
		assert.Equal(t, i, res.DocumentID)
		assert.Equal(t, 1, res.Chunks)
	}

	stats := svc.Stats()
	assert.Equal(t, 3, stats.TotalDocuments)
	assert.Equal(t, 3, stats.TotalChunks)
}

func TestAddDocument_EmptyText(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddDocument(context.Background(), "", nil, 512, 128)
	assert.ErrorIs(t, err, domain.ErrEmptyDocument)

	stats := svc.Stats()
	assert.Equal(t, 0, stats.TotalDocuments)
	assert.Equal(t, 0, stats.TotalChunks)
}

func TestAddDocument_InvalidChunking(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddDocument(context.Background(), "some text", nil, 128, 128)
	assert.ErrorIs(t, err, domain.ErrInvalidChunking)
}

func TestAddDocument_EmbeddingFailurePropagates(t *testing.T) {
	svc, embedder := newTestService(t)
	embedder.failWith = errEmbedderDown

	_, err := svc.AddDocument(context.Background(), "some text", nil, 512, 128)
	require.ErrorIs(t, err, errEmbedderDown)

	// A failed ingestion must leave nothing behind.
	stats := svc.Stats()
	assert.Equal(t, 0, stats.TotalDocuments)
	assert.Equal(t, 0, stats.TotalChunks)
}

func TestAddDocument_ChunkMetadata(t *testing.T) {
	svc, _ := newTestService(t)

	text := strings.Repeat("earnings growth across all segments. ", 30)
	res, err := svc.AddDocument(context.Background(), text, domain.Metadata{
		"source": domain.String("sec_filing"),
		"ticker": domain.String("TSM"),
	}, 256, 64)
	require.NoError(t, err)
	require.Greater(t, res.Chunks, 1)

	doc, err := svc.Document(res.DocumentID)
	require.NoError(t, err)
	require.Len(t, doc.ChunkMeta, res.Chunks)
	require.Len(t, doc.Chunks, res.Chunks)

	for i, cm := range doc.ChunkMeta {
		assert.True(t, cm["ticker"].Equal(domain.String("TSM")))
		assert.True(t, cm[domain.KeyChunk].Equal(domain.Number(float64(i))))
	}
	// Document metadata itself carries no chunk ordinal.
	_, hasChunk := doc.Metadata[domain.KeyChunk]
	assert.False(t, hasChunk)
}

func TestAddFinancialData_SerialisesAndTagsTicker(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, WithClock(func() time.Time { return now }))

	res, err := svc.AddFinancialData(context.Background(), map[string]any{
		"symbol":     "TSM",
		"market_cap": 750_000_000_000.0,
	}, "yahoo_finance")
	require.NoError(t, err)

	doc, err := svc.Document(res.DocumentID)
	require.NoError(t, err)
	assert.Contains(t, doc.Text, "\"symbol\": \"TSM\"")
	assert.True(t, doc.Metadata["source"].Equal(domain.String("yahoo_finance")))
	assert.True(t, doc.Metadata["type"].Equal(domain.String("financial_data")))
	assert.True(t, doc.Metadata["ticker"].Equal(domain.String("TSM")))
	assert.True(t, doc.Metadata["date"].Equal(domain.Time(now)))

	stats := svc.Stats()
	assert.Equal(t, 1, stats.Companies["TSM"])
	assert.Equal(t, 1, stats.Sources["yahoo_finance"])
}

func TestAddFiling_Metadata(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.AddFiling(context.Background(), domain.Filing{
		Ticker:     "TSM",
		Form:       "10-K",
		FilingDate: "2024-04-18",
		URL:        "https://example.com/tsm-10k",
	}, "Annual report: semiconductor demand remained strong.")
	require.NoError(t, err)

	doc, err := svc.Document(res.DocumentID)
	require.NoError(t, err)
	assert.True(t, doc.Metadata["source"].Equal(domain.String("sec_filing")))
	assert.True(t, doc.Metadata["filing_type"].Equal(domain.String("10-K")))
	assert.True(t, doc.Metadata["ticker"].Equal(domain.String("TSM")))
}

func TestAddNewsArticle_FallsBackToTitle(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.AddNewsArticle(context.Background(), domain.Article{
		Title:     "Chipmaker posts record earnings",
		Publisher: "newswire",
		Ticker:    "TSM",
	})
	require.NoError(t, err)

	doc, err := svc.Document(res.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, "Chipmaker posts record earnings", doc.Text)
	assert.True(t, doc.Metadata["source"].Equal(domain.String("news")))
	assert.Equal(t, domain.KindTime, doc.Metadata["date"].Kind())
}

func TestDocument_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Document(-1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Document(0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStats_BreakdownsConsistent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddFiling(ctx, domain.Filing{Ticker: "TSM", Form: "10-K"}, "semiconductor capex")
	require.NoError(t, err)
	_, err = svc.AddFiling(ctx, domain.Filing{Ticker: "BABA", Form: "20-F"}, "cloud earnings")
	require.NoError(t, err)
	_, err = svc.AddNewsArticle(ctx, domain.Article{Title: "TSM earnings", Ticker: "TSM"})
	require.NoError(t, err)

	stats := svc.Stats()
	assert.Equal(t, 3, stats.TotalDocuments)

	var bySource, byCompany int
	for _, n := range stats.Sources {
		bySource += n
	}
	for _, n := range stats.Companies {
		byCompany += n
	}
	assert.Equal(t, 3, bySource)
	assert.Equal(t, 3, byCompany)
	assert.Equal(t, 2, stats.Companies["TSM"])

	// Repeated calls with no mutation are identical.
	assert.Equal(t, stats, svc.Stats())
}

func TestClear_ResetsEverything(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.AddFiling(ctx, domain.Filing{Ticker: "TSM", Form: "10-K"}, "semiconductor demand")
	require.NoError(t, err)

	svc.Clear()

	stats := svc.Stats()
	assert.Equal(t, 0, stats.TotalDocuments)
	assert.Equal(t, 0, stats.TotalChunks)
	assert.Empty(t, stats.Sources)
	assert.Empty(t, stats.Companies)

	_, err = svc.Document(res.DocumentID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Search(ctx, "semiconductor", 3, nil)
	assert.ErrorIs(t, err, domain.ErrEmptyIndex)

	// The index accepts new documents after a clear, restarting ids at 0.
	res, err = svc.AddFiling(ctx, domain.Filing{Ticker: "BABA", Form: "20-F"}, "earnings recovered")
	require.NoError(t, err)
	assert.Equal(t, 0, res.DocumentID)
}
