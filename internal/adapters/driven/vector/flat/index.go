// Package flat provides a brute-force in-memory vector index.
//
// Entries are scanned exhaustively on every query, which is exact rather
// than approximate; for the single-process index sizes this system runs
// (thousands to low millions of chunks) that is fast enough and avoids an
// index build step.
package flat

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/finsight-labs/finsearch-cli/internal/core/domain"
	"github.com/finsight-labs/finsearch-cli/internal/core/ports/driven"
)

// Ensure Index implements the port.
var _ driven.VectorIndex = (*Index)(nil)

// Index is a flat squared-L2 vector index.
type Index struct {
	mu         sync.RWMutex
	dimensions int
	vectors    [][]float32
}

// New creates a flat index with a fixed dimension.
// The dimension comes from the embedder at wiring time and every vector
// appended or queried must match it.
func New(dimensions int) (*Index, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("flat: invalid dimension %d", dimensions)
	}
	return &Index{dimensions: dimensions}, nil
}

// Dimensions returns the fixed vector dimension.
func (ix *Index) Dimensions() int {
	return ix.dimensions
}

// Append adds vectors in order, assigning sequential entry ids.
// The whole batch is validated before anything is stored, so a dimension
// mismatch appends nothing.
func (ix *Index) Append(_ context.Context, vectors [][]float32) error {
	for i, v := range vectors {
		if len(v) != ix.dimensions {
			return fmt.Errorf("flat: vector %d has dimension %d, index has %d: %w",
				i, len(v), ix.dimensions, domain.ErrDimensionMismatch)
		}
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.vectors = append(ix.vectors, vectors...)
	return nil
}

// Search returns up to k entries nearest to query, ascending by squared
// L2 distance. Ties preserve insertion order.
func (ix *Index) Search(_ context.Context, query []float32, k int) ([]driven.Hit, error) {
	if len(query) != ix.dimensions {
		return nil, fmt.Errorf("flat: query has dimension %d, index has %d: %w",
			len(query), ix.dimensions, domain.ErrDimensionMismatch)
	}
	if k <= 0 {
		return nil, nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	hits := make([]driven.Hit, len(ix.vectors))
	for i, v := range ix.vectors {
		hits[i] = driven.Hit{ID: i, Distance: squaredL2(query, v)}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Distance < hits[b].Distance
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the total entry count.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.vectors)
}

// Reset removes all entries, retaining the dimension.
func (ix *Index) Reset() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.vectors = nil
}

// Vectors returns a copy of all stored vectors in entry order, for
// snapshot persistence.
func (ix *Index) Vectors() [][]float32 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([][]float32, len(ix.vectors))
	for i, v := range ix.vectors {
		cp := make([]float32, len(v))
		copy(cp, v)
		out[i] = cp
	}
	return out
}

// squaredL2 computes the squared Euclidean distance between two vectors of
// equal length. The square root is never taken: ordering is identical and
// confidence scoring is defined on this scale.
func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
