// Package hashing provides a deterministic local embedder that needs no
// model server. It hashes tokens into a fixed number of buckets and
// L2-normalises the counts, so similar texts land near each other while
// ingestion stays fully offline. Useful for tests, demos and air-gapped
// setups; not a substitute for a real embedding model.
package hashing

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/finsight-labs/finsearch-cli/internal/core/ports/driven"
)

// Ensure Embedder implements the port.
var _ driven.Embedder = (*Embedder)(nil)

// DefaultDimensions is the bucket count used when none is configured.
const DefaultDimensions = 256

// ModelID identifies hashing vectors in stats output and snapshots, so a
// restore can detect when the index was built by a different embedder.
const ModelID = "hashing-v1"

// Embedder maps texts to bag-of-words vectors via feature hashing.
type Embedder struct {
	dimensions int
}

// New creates a hashing embedder with the given vector size.
func New(dimensions int) *Embedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &Embedder{dimensions: dimensions}
}

// Embed generates a vector embedding for the given text.
func (e *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dimensions)

	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, tok := range tokens {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[int(h.Sum32())%e.dimensions]++
	}

	// L2-normalise so distances depend on token distribution, not length.
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec, nil
}

// EmbedBatch generates embeddings for multiple texts.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vecs[i] = vec
	}
	return vecs, nil
}

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// ModelName returns the embedder identifier.
func (e *Embedder) ModelName() string {
	return ModelID
}

// Ping always succeeds; there is no remote service to reach.
func (e *Embedder) Ping(context.Context) error {
	return nil
}

// Close releases resources.
func (e *Embedder) Close() error {
	return nil
}
