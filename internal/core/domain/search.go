package domain

// SearchResult is a single accepted search hit.
type SearchResult struct {
	// Text is the matched chunk content.
	Text string `json:"text"`

	// Metadata is the chunk-level metadata (document metadata + chunk ordinal).
	Metadata Metadata `json:"metadata,omitempty"`

	// Distance is the squared Euclidean distance between the query vector
	// and the chunk vector. Smaller is more similar.
	Distance float64 `json:"distance"`

	// Confidence is 1/(1+Distance): always in (0, 1], monotonically
	// decreasing in distance, 1.0 for a perfect match.
	Confidence float64 `json:"confidence"`

	// DocumentID identifies the owning document. A single search never
	// returns two results from the same document.
	DocumentID int `json:"document_id"`

	// ChunkID is the chunk's ordinal within its document.
	ChunkID int `json:"chunk_id"`
}

// SearchResponse is the outcome of one search call.
type SearchResponse struct {
	Query string `json:"query"`

	// Results are ordered by ascending distance (descending confidence).
	Results []SearchResult `json:"results"`

	// TotalChunks is the index entry count at query time.
	TotalChunks int `json:"total_chunks"`

	// Confidence is the confidence of the best result, or 0 with no results.
	Confidence float64 `json:"confidence"`
}

// ContextResponse is the outcome of cross-source context aggregation:
// per-ticker searches merged with a general search, deduplicated by
// document, reranked by confidence.
type ContextResponse struct {
	Query string `json:"query"`

	// Results are ordered by descending confidence.
	Results []SearchResult `json:"results"`

	// Confidence is the arithmetic mean over Results, or 0 with none.
	Confidence float64 `json:"confidence"`
}

// Stats reports index totals and catalog breakdowns.
type Stats struct {
	TotalDocuments int `json:"total_documents"`

	// TotalChunks equals the vector index entry count.
	TotalChunks int `json:"total_chunks"`

	// Sources maps source name to document count.
	Sources map[string]int `json:"sources,omitempty"`

	// Companies maps ticker symbol to document count.
	Companies map[string]int `json:"companies,omitempty"`

	// EmbeddingModel and Dimensions describe the embedder bound to the index.
	EmbeddingModel string `json:"embedding_model"`
	Dimensions     int    `json:"dimensions"`
}
