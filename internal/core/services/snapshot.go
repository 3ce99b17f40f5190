package services

import (
	"context"
	"fmt"

	"github.com/finsight-labs/finsearch-cli/internal/core/domain"
	"github.com/finsight-labs/finsearch-cli/internal/core/ports/driven"
	"github.com/finsight-labs/finsearch-cli/internal/logger"
)

// Snapshot persists the entire index state (documents, chunk metadata,
// vectors, dimension) through the configured snapshot store.
func (s *RetrievalService) Snapshot(ctx context.Context) error {
	if s.snapshots == nil {
		return fmt.Errorf("snapshot: no snapshot store configured")
	}

	s.mu.RLock()
	docs := make([]domain.Document, len(s.docs))
	copy(docs, s.docs)
	vectors := s.index.Vectors()
	s.mu.RUnlock()

	snap := &driven.Snapshot{
		Dimensions: s.embedder.Dimensions(),
		Model:      s.embedder.ModelName(),
		Documents:  docs,
		Vectors:    vectors,
	}

	if err := s.snapshots.Save(ctx, snap); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	logger.Info("Snapshot saved: %d documents, %d vectors", len(docs), len(vectors))
	return nil
}

// Restore replaces the whole index state with the stored snapshot.
// Catalogs and the offset table are rebuilt from the documents; the
// restored vector count must equal the sum of all chunk counts.
//
// Returns (false, nil) when no snapshot exists.
func (s *RetrievalService) Restore(ctx context.Context) (bool, error) {
	if s.snapshots == nil {
		return false, fmt.Errorf("restore: no snapshot store configured")
	}

	snap, ok, err := s.snapshots.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load snapshot: %w", err)
	}
	if !ok {
		return false, nil
	}

	if snap.Dimensions != s.embedder.Dimensions() {
		return false, fmt.Errorf("snapshot has dimension %d, embedder %q has %d: %w",
			snap.Dimensions, s.embedder.ModelName(), s.embedder.Dimensions(), domain.ErrDimensionMismatch)
	}
	if snap.Model != "" && snap.Model != s.embedder.ModelName() {
		logger.Warn("Snapshot was built with model %q, current embedder is %q", snap.Model, s.embedder.ModelName())
	}

	var totalChunks int
	for _, doc := range snap.Documents {
		totalChunks += len(doc.Chunks)
	}
	if totalChunks != len(snap.Vectors) {
		return false, fmt.Errorf("restore: snapshot has %d vectors for %d chunks", len(snap.Vectors), totalChunks)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.index.Reset()
	if err := s.index.Append(ctx, snap.Vectors); err != nil {
		// The index was already reset; leave the service empty rather than
		// half-restored.
		s.docs = nil
		s.offsets = nil
		s.sources = make(map[string][]int)
		s.companies = make(map[string][]int)
		return false, fmt.Errorf("restore vectors: %w", err)
	}

	s.docs = snap.Documents
	s.offsets = make([]int, len(snap.Documents))
	s.sources = make(map[string][]int)
	s.companies = make(map[string][]int)

	offset := 0
	for i, doc := range snap.Documents {
		s.offsets[i] = offset
		offset += len(doc.Chunks)

		if v, ok := doc.Metadata[domain.KeySource]; ok && v.Kind() == domain.KindString {
			s.sources[v.Text()] = append(s.sources[v.Text()], doc.ID)
		}
		if v, ok := doc.Metadata[domain.KeyTicker]; ok && v.Kind() == domain.KindString && v.Text() != "" {
			s.companies[v.Text()] = append(s.companies[v.Text()], doc.ID)
		}
	}

	logger.Info("Snapshot restored: %d documents, %d chunks", len(s.docs), totalChunks)
	return true, nil
}
