package driven

import "context"

// VectorIndex stores chunk vectors and answers approximate k-nearest-neighbour
// queries.
//
// Entries receive implicit sequential ids in append order, flattened across
// all documents: entry i is the i-th chunk ever inserted. The index has no
// deletion operation; the only way to shrink it is Reset.
//
// The distance metric is squared Euclidean (L2): smaller is more similar.
// Confidence scoring in the retrieval service assumes this metric's scale.
type VectorIndex interface {
	// Append adds vectors to the index in order, assigning them the next
	// sequential entry ids. All vectors must match the index dimension;
	// a mismatch fails with domain.ErrDimensionMismatch and appends nothing.
	Append(ctx context.Context, vectors [][]float32) error

	// Search returns up to k entries nearest to the query vector, ordered
	// by ascending distance.
	Search(ctx context.Context, query []float32, k int) ([]Hit, error)

	// Len returns the total entry count.
	Len() int

	// Reset removes all entries. The dimension is retained.
	Reset()

	// Vectors returns a copy of all stored vectors in entry order.
	// Used for whole-index snapshot persistence.
	Vectors() [][]float32
}

// Hit is a single nearest-neighbour match.
type Hit struct {
	// ID is the global entry id (insertion order across all documents).
	ID int

	// Distance is the squared L2 distance to the query vector.
	Distance float64
}
