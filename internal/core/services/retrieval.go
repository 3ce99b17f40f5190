package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/finsight-labs/finsearch-cli/internal/chunker"
	"github.com/finsight-labs/finsearch-cli/internal/core/domain"
	"github.com/finsight-labs/finsearch-cli/internal/core/ports/driven"
	"github.com/finsight-labs/finsearch-cli/internal/core/ports/driving"
	"github.com/finsight-labs/finsearch-cli/internal/logger"
)

// Ensure RetrievalService implements the driving ports.
var (
	_ driving.SearchService = (*RetrievalService)(nil)
	_ driving.IngestService = (*RetrievalService)(nil)
	_ driving.IndexService  = (*RetrievalService)(nil)
)

// RetrievalService owns one retrieval index: the document store, the
// source/company catalogs and the vector index, together with the embedder
// that feeds it.
//
// All mutation (ingest, clear, restore) runs under the write lock; searches
// and stats run under the read lock. Vector appends and offset bookkeeping
// form a single critical section so entry-to-chunk resolution stays
// consistent.
type RetrievalService struct {
	embedder  driven.Embedder
	index     driven.VectorIndex
	snapshots driven.SnapshotStore

	now func() time.Time

	mu        sync.RWMutex
	docs      []domain.Document
	offsets   []int // offsets[i] = entry id of docs[i]'s first chunk
	sources   map[string][]int
	companies map[string][]int
}

// Option configures the retrieval service.
type Option func(*RetrievalService)

// WithSnapshotStore attaches a snapshot store for Save/Restore.
func WithSnapshotStore(store driven.SnapshotStore) Option {
	return func(s *RetrievalService) {
		s.snapshots = store
	}
}

// WithClock overrides the ingestion timestamp source. Useful for testing.
func WithClock(now func() time.Time) Option {
	return func(s *RetrievalService) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a retrieval service bound to an embedder and a vector index.
// Both are required; the snapshot store is optional.
func New(embedder driven.Embedder, index driven.VectorIndex, opts ...Option) (*RetrievalService, error) {
	if embedder == nil {
		return nil, domain.ErrEmbedderUnavailable
	}
	if index == nil {
		return nil, fmt.Errorf("retrieval service: vector index is required")
	}

	s := &RetrievalService{
		embedder:  embedder,
		index:     index,
		now:       time.Now,
		sources:   make(map[string][]int),
		companies: make(map[string][]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AddDocument chunks, embeds and indexes a document.
//
// Fails with domain.ErrInvalidChunking for a bad size/overlap pair and with
// domain.ErrEmptyDocument when chunking yields nothing. Embedding errors
// propagate wrapped and leave the index untouched.
func (s *RetrievalService) AddDocument(
	ctx context.Context, text string, metadata domain.Metadata, size, overlap int,
) (domain.IngestResult, error) {
	logger.Section("Ingestion")

	chunks, err := chunker.Split(text, size, overlap)
	if err != nil {
		return domain.IngestResult{}, err
	}
	if len(chunks) == 0 {
		return domain.IngestResult{}, domain.ErrEmptyDocument
	}
	logger.Debug("Chunked document: %d chunks (size=%d overlap=%d)", len(chunks), size, overlap)

	// Embedding happens outside the lock: it is the slow part and needs no
	// index state. Entry ids are assigned under the lock below.
	vectors, err := s.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return domain.IngestResult{}, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return domain.IngestResult{}, fmt.Errorf("embed chunks: got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	if metadata == nil {
		metadata = domain.Metadata{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docID := len(s.docs)

	chunkMeta := make([]domain.Metadata, len(chunks))
	for i := range chunks {
		cm := metadata.Clone()
		cm[domain.KeyChunk] = domain.Number(float64(i))
		chunkMeta[i] = cm
	}

	// Vector append and offset bookkeeping are atomic: nothing below the
	// append can fail.
	start := s.index.Len()
	if err := s.index.Append(ctx, vectors); err != nil {
		return domain.IngestResult{}, fmt.Errorf("index chunks: %w", err)
	}

	s.docs = append(s.docs, domain.Document{
		ID:        docID,
		Text:      text,
		Metadata:  metadata.Clone(),
		Chunks:    chunks,
		ChunkMeta: chunkMeta,
	})
	s.offsets = append(s.offsets, start)

	if v, ok := metadata[domain.KeySource]; ok && v.Kind() == domain.KindString {
		s.sources[v.Text()] = append(s.sources[v.Text()], docID)
	}
	if v, ok := metadata[domain.KeyTicker]; ok && v.Kind() == domain.KindString && v.Text() != "" {
		s.companies[v.Text()] = append(s.companies[v.Text()], docID)
	}

	logger.Info("Indexed document %d: %d chunks, %d total entries", docID, len(chunks), s.index.Len())
	return domain.IngestResult{DocumentID: docID, Chunks: len(chunks)}, nil
}

// AddFinancialData indexes a structured financial-data snapshot by
// serialising it to JSON text. The ticker is picked up from the snapshot's
// "symbol" field when present.
func (s *RetrievalService) AddFinancialData(
	ctx context.Context, data map[string]any, source string,
) (domain.IngestResult, error) {
	text, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return domain.IngestResult{}, fmt.Errorf("serialise financial data: %w", err)
	}

	metadata := domain.Metadata{
		domain.KeySource: domain.String(source),
		domain.KeyType:   domain.String("financial_data"),
		"date":           domain.Time(s.now()),
	}
	if symbol, ok := data["symbol"].(string); ok && symbol != "" {
		metadata[domain.KeyTicker] = domain.String(symbol)
	}

	return s.AddDocument(ctx, string(text), metadata, chunker.DefaultChunkSize, chunker.DefaultChunkOverlap)
}

// AddFiling indexes an SEC filing.
func (s *RetrievalService) AddFiling(
	ctx context.Context, filing domain.Filing, content string,
) (domain.IngestResult, error) {
	metadata := domain.Metadata{
		domain.KeySource: domain.String("sec_filing"),
		domain.KeyType:   domain.String("filing"),
		"filing_type":    domain.String(filing.Form),
		"filing_date":    domain.String(filing.FilingDate),
		"url":            domain.String(filing.URL),
	}
	if filing.Ticker != "" {
		metadata[domain.KeyTicker] = domain.String(filing.Ticker)
	}

	return s.AddDocument(ctx, content, metadata, chunker.DefaultChunkSize, chunker.DefaultChunkOverlap)
}

// AddNewsArticle indexes a news article with smaller chunks. When the
// article has no body, the title is indexed instead.
func (s *RetrievalService) AddNewsArticle(
	ctx context.Context, article domain.Article,
) (domain.IngestResult, error) {
	content := article.Content
	if content == "" {
		content = article.Title
	}

	date := article.Timestamp
	if date.IsZero() {
		date = s.now()
	}

	metadata := domain.Metadata{
		domain.KeySource: domain.String("news"),
		domain.KeyType:   domain.String("article"),
		"title":          domain.String(article.Title),
		"date":           domain.Time(date),
		"url":            domain.String(article.URL),
		"publisher":      domain.String(article.Publisher),
	}
	if article.Ticker != "" {
		metadata[domain.KeyTicker] = domain.String(article.Ticker)
	}

	return s.AddDocument(ctx, content, metadata, chunker.NewsChunkSize, chunker.DefaultChunkOverlap)
}

// Document returns a document's text and metadata by id.
func (s *RetrievalService) Document(id int) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id < 0 || id >= len(s.docs) {
		return nil, fmt.Errorf("document %d: %w", id, domain.ErrNotFound)
	}
	doc := s.docs[id]
	return &doc, nil
}

// Stats reports index totals and per-source/per-company document counts.
func (s *RetrievalService) Stats() domain.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sources := make(map[string]int, len(s.sources))
	for name, ids := range s.sources {
		sources[name] = len(ids)
	}
	companies := make(map[string]int, len(s.companies))
	for ticker, ids := range s.companies {
		companies[ticker] = len(ids)
	}

	return domain.Stats{
		TotalDocuments: len(s.docs),
		TotalChunks:    s.index.Len(),
		Sources:        sources,
		Companies:      companies,
		EmbeddingModel: s.embedder.ModelName(),
		Dimensions:     s.embedder.Dimensions(),
	}
}

// Clear resets the document store, both catalogs and the vector index to
// the empty state. Irreversible; requires exclusive access.
func (s *RetrievalService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs = nil
	s.offsets = nil
	s.sources = make(map[string][]int)
	s.companies = make(map[string][]int)
	s.index.Reset()

	logger.Info("Index cleared")
}

// resolveEntry maps a global vector entry id back to (document, chunk).
// Caller must hold at least the read lock.
func (s *RetrievalService) resolveEntry(entry int) (docID, chunkID int, ok bool) {
	n := len(s.offsets)
	if n == 0 || entry < 0 {
		return 0, 0, false
	}
	// First document whose offset is beyond the entry, minus one.
	i := sort.Search(n, func(i int) bool { return s.offsets[i] > entry }) - 1
	if i < 0 {
		return 0, 0, false
	}
	chunkID = entry - s.offsets[i]
	if chunkID >= len(s.docs[i].Chunks) {
		return 0, 0, false
	}
	return i, chunkID, true
}
