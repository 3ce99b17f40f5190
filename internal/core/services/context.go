package services

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/finsight-labs/finsearch-cli/internal/core/domain"
	"github.com/finsight-labs/finsearch-cli/internal/logger"
)

// tickerK is the per-ticker result budget inside context aggregation.
// Each focused sub-search contributes at most two documents; breadth comes
// from the general pass.
const tickerK = 2

// FinancialContext aggregates retrieval context for a query across the
// requested tickers plus a general unfiltered search.
//
// Per-ticker search alone can miss cross-cutting context (macro commentary
// mentioning several tickers) and general search alone can under-rank
// ticker-specific filings, so both passes run and the union is reranked:
// merged results are deduplicated by document id, sorted by confidence
// descending and truncated to k. Sub-search failures (unknown ticker, empty
// index) are skipped, not propagated; the call fails only on context
// cancellation.
func (s *RetrievalService) FinancialContext(
	ctx context.Context, query string, tickers []string, k int,
) (*domain.ContextResponse, error) {
	logger.Section("Financial Context")
	logger.Debug("Query: %q, tickers: %v, k=%d", query, tickers, k)

	if k <= 0 {
		k = DefaultK
	}

	// Ticker sub-searches are read-only and independent, so they fan out
	// concurrently. Slots keep the caller-supplied ticker order.
	perTicker := make([]*domain.SearchResponse, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	for i, ticker := range tickers {
		g.Go(func() error {
			resp, err := s.SearchByCompany(gctx, ticker, query, tickerK)
			if err != nil {
				logger.Warn("Ticker %s skipped: %v", ticker, err)
				return nil
			}
			perTicker[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var merged []domain.SearchResult
	seenDocs := make(map[int]bool)

	for _, resp := range perTicker {
		if resp == nil {
			continue
		}
		for _, r := range resp.Results {
			if seenDocs[r.DocumentID] {
				continue
			}
			seenDocs[r.DocumentID] = true
			merged = append(merged, r)
		}
	}

	// General pass: recall for anything the ticker filters excluded.
	general, err := s.Search(ctx, query, k, nil)
	if err != nil {
		logger.Warn("General search skipped: %v", err)
	} else {
		for _, r := range general.Results {
			if seenDocs[r.DocumentID] {
				continue
			}
			seenDocs[r.DocumentID] = true
			merged = append(merged, r)
		}
	}

	sort.SliceStable(merged, func(a, b int) bool {
		return merged[a].Confidence > merged[b].Confidence
	})
	if len(merged) > k {
		merged = merged[:k]
	}

	confidence := 0.0
	if len(merged) > 0 {
		var sum float64
		for _, r := range merged {
			sum += r.Confidence
		}
		confidence = sum / float64(len(merged))
	}

	logger.Info("Context %q: %d results, confidence %.3f", query, len(merged), confidence)
	return &domain.ContextResponse{
		Query:      query,
		Results:    merged,
		Confidence: confidence,
	}, nil
}
