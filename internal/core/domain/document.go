package domain

import "time"

// Metadata keys with structural meaning to the index. Documents carrying a
// "source" key are tracked in the source catalog; documents carrying a
// "ticker" key are tracked in the company catalog.
const (
	KeySource = "source"
	KeyTicker = "ticker"
	KeyType   = "type"
	KeyChunk  = "chunk"
)

// Document is an ingested text with its chunk decomposition.
// Documents are append-only: once created they are never mutated, and they
// are destroyed only by a full index clear.
type Document struct {
	// ID is assigned by insertion order, starting at 0.
	// It is stable for the lifetime of the process (and of a snapshot).
	ID int `json:"id"`

	// Text is the full original text.
	Text string `json:"text"`

	// Metadata is the caller-supplied document metadata.
	Metadata Metadata `json:"metadata,omitempty"`

	// Chunks holds the overlapping windows the text was split into.
	Chunks []string `json:"chunks,omitempty"`

	// ChunkMeta holds one metadata set per chunk: the document metadata
	// plus the chunk's ordinal under KeyChunk.
	ChunkMeta []Metadata `json:"chunk_meta,omitempty"`
}

// IngestResult reports the outcome of one ingestion call.
type IngestResult struct {
	DocumentID int `json:"document_id"`
	Chunks     int `json:"chunks"`
}

// Filing describes an SEC filing being ingested.
type Filing struct {
	Ticker     string `json:"ticker"`
	Form       string `json:"filing_type"`
	FilingDate string `json:"filing_date"`
	URL        string `json:"url"`
}

// Article describes a news article being ingested.
type Article struct {
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Ticker    string    `json:"ticker"`
	URL       string    `json:"url"`
	Publisher string    `json:"publisher"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}
