package driven

import (
	"context"

	"github.com/finsight-labs/finsearch-cli/internal/core/domain"
)

// Snapshot is a full serialisable copy of the index state: documents with
// their chunk metadata, the flattened chunk vectors, and the embedding
// dimension. Snapshots are saved and restored as a unit; partial or
// streaming persistence is not supported.
type Snapshot struct {
	// Dimensions is the embedding dimension the vectors were produced with.
	Dimensions int

	// Model is the embedding model name, recorded for compatibility checks.
	Model string

	// Documents in insertion order (Document.ID == slice position).
	Documents []domain.Document

	// Vectors holds one vector per chunk in global insertion order.
	Vectors [][]float32
}

// SnapshotStore persists whole-index snapshots.
// Backed by SQLite.
type SnapshotStore interface {
	// Save writes the snapshot, replacing any previous one.
	Save(ctx context.Context, snap *Snapshot) error

	// Load reads the stored snapshot. ok is false when none exists.
	Load(ctx context.Context) (snap *Snapshot, ok bool, err error)

	// Close releases resources.
	Close() error
}
