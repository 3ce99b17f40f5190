// Package services contains the application core: the retrieval service
// orchestrating chunking, embedding, vector search, metadata filtering,
// deduplication and confidence scoring.
package services
