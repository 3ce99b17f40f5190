package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidChunking indicates a bad chunk size/overlap combination.
	// Overlap must be non-negative and strictly smaller than the chunk size.
	ErrInvalidChunking = errors.New("invalid chunking configuration")

	// ErrEmptyDocument indicates ingestion text produced no chunks.
	// Documents with zero chunks are never admitted to the index.
	ErrEmptyDocument = errors.New("document has no indexable content")

	// ErrNotFound indicates a requested document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrUnknownCompany indicates a ticker with no ingested documents.
	ErrUnknownCompany = errors.New("no data for company")

	// ErrEmptyIndex indicates a search against an index with zero entries.
	ErrEmptyIndex = errors.New("index is empty")

	// ErrDimensionMismatch indicates a vector whose dimension differs from
	// the index's. The index dimension is fixed by the first embedding, so
	// this is a fatal configuration error, not a recoverable one.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmbedderUnavailable indicates no embedding service is configured.
	// Nothing can be ingested or searched without one.
	ErrEmbedderUnavailable = errors.New("embedding service unavailable")
)
