package services

import (
	"context"
	"fmt"

	"github.com/finsight-labs/finsearch-cli/internal/core/domain"
	"github.com/finsight-labs/finsearch-cli/internal/logger"
)

// DefaultK is the result count used when the caller passes k <= 0.
const DefaultK = 5

// overFetchFloor is the minimum raw candidate count requested from the
// vector index. Filtering and per-document deduplication can discard many
// candidates, so the index is always over-queried.
const overFetchFloor = 50

// Search embeds the query, scans the nearest candidates in ascending
// distance order, applies exact-match metadata filters, keeps at most one
// result per document, and scores each survivor with 1/(1+distance).
//
// Fails with domain.ErrEmptyIndex only when the index holds zero entries.
// Filters that exclude every candidate yield an empty result set with
// confidence 0, not an error.
func (s *RetrievalService) Search(
	ctx context.Context, query string, k int, filters domain.Metadata,
) (*domain.SearchResponse, error) {
	logger.Section("Search")
	logger.Debug("Query: %q (k=%d, %d filters)", query, k, len(filters))

	if s.index.Len() == 0 {
		return nil, domain.ErrEmptyIndex
	}
	if k <= 0 {
		k = DefaultK
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	// Over-fetch so that dedup and filtering still leave k survivors:
	// at least 4k candidates, never fewer than overFetchFloor, capped at
	// the index size.
	fetch := 4 * k
	if fetch < overFetchFloor {
		fetch = overFetchFloor
	}
	if total := s.index.Len(); fetch > total {
		fetch = total
	}

	hits, err := s.index.Search(ctx, vec, fetch)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	logger.Debug("Raw candidates: %d", len(hits))

	results := make([]domain.SearchResult, 0, k)
	seenDocs := make(map[int]bool)

	for _, hit := range hits {
		docID, chunkID, ok := s.resolveEntry(hit.ID)
		if !ok {
			// Entry without a backing chunk means the offset table and the
			// index disagree; skip rather than fabricate a result.
			logger.Warn("Entry %d has no backing chunk", hit.ID)
			continue
		}

		meta := s.docs[docID].ChunkMeta[chunkID]
		if len(filters) > 0 && !meta.Matches(filters) {
			continue
		}

		// At most one result per source document, so near-duplicate
		// overlapping chunks from one filing cannot dominate the result set.
		if seenDocs[docID] {
			continue
		}
		seenDocs[docID] = true

		results = append(results, domain.SearchResult{
			Text:       s.docs[docID].Chunks[chunkID],
			Metadata:   meta.Clone(),
			Distance:   hit.Distance,
			Confidence: 1.0 / (1.0 + hit.Distance),
			DocumentID: docID,
			ChunkID:    chunkID,
		})
		if len(results) >= k {
			break
		}
	}

	confidence := 0.0
	if len(results) > 0 {
		confidence = results[0].Confidence
	}
	logger.Info("Search %q: %d results, confidence %.3f", query, len(results), confidence)

	return &domain.SearchResponse{
		Query:       query,
		Results:     results,
		TotalChunks: s.index.Len(),
		Confidence:  confidence,
	}, nil
}

// SearchByCompany searches documents about a specific company by filtering
// on the ticker metadata key.
//
// Fails with domain.ErrUnknownCompany when no document for the ticker has
// ever been ingested.
func (s *RetrievalService) SearchByCompany(
	ctx context.Context, ticker, query string, k int,
) (*domain.SearchResponse, error) {
	s.mu.RLock()
	known := len(s.companies[ticker]) > 0
	s.mu.RUnlock()

	if !known {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCompany, ticker)
	}

	return s.Search(ctx, query, k, domain.Metadata{
		domain.KeyTicker: domain.String(ticker),
	})
}
