// Package domain contains the core business entities for finsearch.
//
// The domain layer has no dependencies on infrastructure.
// It defines:
//   - Document and chunk-level metadata (the unit of ingestion)
//   - Search and context-aggregation result types
//   - Index statistics
//   - Domain errors shared across all layers
package domain
