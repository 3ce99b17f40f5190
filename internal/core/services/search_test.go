package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-labs/finsearch-cli/internal/core/domain"
)

func TestSearch_EmptyIndex(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Search(context.Background(), "semiconductor", 5, nil)
	assert.ErrorIs(t, err, domain.ErrEmptyIndex)
}

func TestSearch_RanksByDistance(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// Keyword-count embeddings: distances to the query "semiconductor"
	// ([1,0,0]) are 0, 1 and 2 respectively.
	_, err := svc.AddDocument(ctx, "semiconductor outlook", nil, 512, 128)
	require.NoError(t, err)
	_, err = svc.AddDocument(ctx, "semiconductor semiconductor rally", nil, 512, 128)
	require.NoError(t, err)
	_, err = svc.AddDocument(ctx, "earnings update", nil, 512, 128)
	require.NoError(t, err)

	resp, err := svc.Search(ctx, "semiconductor", 3, nil)
	require.NoError(t, err)
	require.Len(t, resp.Results, 3)

	assert.Equal(t, 0, resp.Results[0].DocumentID)
	assert.Equal(t, 0.0, resp.Results[0].Distance)
	assert.Equal(t, 1.0, resp.Results[0].Confidence)
	assert.Equal(t, 1.0, resp.Confidence)
	assert.Equal(t, 3, resp.TotalChunks)

	// Ascending distance, descending confidence.
	for i := 1; i < len(resp.Results); i++ {
		assert.LessOrEqual(t, resp.Results[i-1].Distance, resp.Results[i].Distance)
		assert.GreaterOrEqual(t, resp.Results[i-1].Confidence, resp.Results[i].Confidence)
	}

	// Confidence stays within (0, 1] and follows 1/(1+d).
	for _, r := range resp.Results {
		assert.Greater(t, r.Confidence, 0.0)
		assert.LessOrEqual(t, r.Confidence, 1.0)
		assert.InDelta(t, 1.0/(1.0+r.Distance), r.Confidence, 1e-12)
	}
}

func TestSearch_AtMostOneResultPerDocument(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// One long filing producing many overlapping chunks that all mention
	// the query term, plus one short unrelated document.
	long := strings.Repeat("semiconductor demand stays elevated this cycle. ", 40)
	res, err := svc.AddDocument(ctx, long, nil, 256, 64)
	require.NoError(t, err)
	require.Greater(t, res.Chunks, 3)

	_, err = svc.AddDocument(ctx, "dividend announcement", nil, 512, 128)
	require.NoError(t, err)

	resp, err := svc.Search(ctx, "semiconductor demand", 5, nil)
	require.NoError(t, err)

	seen := make(map[int]bool)
	for _, r := range resp.Results {
		assert.False(t, seen[r.DocumentID], "document %d returned twice", r.DocumentID)
		seen[r.DocumentID] = true
	}
	assert.LessOrEqual(t, len(resp.Results), 2)
}

func TestSearch_FilterCorrectness(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i, ticker := range []string{"TSM", "BABA", "TSM", "NVDA"} {
		_, err := svc.AddDocument(ctx,
			fmt.Sprintf("semiconductor report %d", i),
			domain.Metadata{"ticker": domain.String(ticker)},
			512, 128)
		require.NoError(t, err)
	}

	filter := domain.Metadata{"ticker": domain.String("TSM")}
	resp, err := svc.Search(ctx, "semiconductor", 10, filter)
	require.NoError(t, err)

	require.Len(t, resp.Results, 2)
	for _, r := range resp.Results {
		assert.True(t, r.Metadata["ticker"].Equal(domain.String("TSM")))
	}
}

func TestSearch_FilterExcludingEverything(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddDocument(ctx, "semiconductor note",
		domain.Metadata{"ticker": domain.String("TSM")}, 512, 128)
	require.NoError(t, err)

	resp, err := svc.Search(ctx, "semiconductor", 5,
		domain.Metadata{"ticker": domain.String("ZZZZ")})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.Equal(t, 0.0, resp.Confidence)
}

func TestSearch_DefaultK(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		_, err := svc.AddDocument(ctx, fmt.Sprintf("earnings report %d", i), nil, 512, 128)
		require.NoError(t, err)
	}

	resp, err := svc.Search(ctx, "earnings", 0, nil)
	require.NoError(t, err)
	assert.Len(t, resp.Results, DefaultK)
}

func TestSearch_EmbeddingFailurePropagates(t *testing.T) {
	svc, embedder := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddDocument(ctx, "earnings report", nil, 512, 128)
	require.NoError(t, err)

	embedder.failWith = errEmbedderDown
	_, err = svc.Search(ctx, "earnings", 5, nil)
	assert.ErrorIs(t, err, errEmbedderDown)
}

func TestSearchByCompany_UnknownTicker(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddDocument(ctx, "general market note", nil, 512, 128)
	require.NoError(t, err)

	_, err = svc.SearchByCompany(ctx, "ZZZZ", "anything", 3)
	assert.ErrorIs(t, err, domain.ErrUnknownCompany)
}

// Scenario from the design review: a 500-word filing under
// {ticker: TSM, source: sec_filing}, searched through the company index.
func TestSearchByCompany_FilingScenario(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	words := make([]string, 500)
	for i := range words {
		switch i % 5 {
		case 0:
			words[i] = "semiconductor"
		case 1:
			words[i] = "demand"
		default:
			words[i] = "steady"
		}
	}
	filing := strings.Join(words, " ")

	_, err := svc.AddDocument(ctx, filing, domain.Metadata{
		"ticker": domain.String("TSM"),
		"source": domain.String("sec_filing"),
	}, 512, 128)
	require.NoError(t, err)

	resp, err := svc.SearchByCompany(ctx, "TSM", "semiconductor demand", 3)
	require.NoError(t, err)

	require.NotEmpty(t, resp.Results)
	assert.LessOrEqual(t, len(resp.Results), 3)
	for i, r := range resp.Results {
		assert.True(t, r.Metadata["ticker"].Equal(domain.String("TSM")))
		assert.Greater(t, r.Confidence, 0.0)
		assert.LessOrEqual(t, r.Confidence, 1.0)
		if i > 0 {
			assert.LessOrEqual(t, resp.Results[i-1].Distance, r.Distance)
		}
	}
}
