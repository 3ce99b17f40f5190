package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/finsight-labs/finsearch-cli/internal/adapters/driven/vector/flat"
	"github.com/finsight-labs/finsearch-cli/internal/core/ports/driven"
)

// fakeEmbedder embeds text as keyword counts: one dimension per tracked
// keyword. Deterministic, and distances are easy to reason about in tests.
type fakeEmbedder struct {
	keywords []string
	failWith error
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{keywords: []string{"semiconductor", "earnings", "dividend"}}
}

func (e *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.failWith != nil {
		return nil, e.failWith
	}
	vec := make([]float32, len(e.keywords))
	lower := strings.ToLower(text)
	for i, kw := range e.keywords {
		vec[i] = float32(strings.Count(lower, kw))
	}
	return vec, nil
}

func (e *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (e *fakeEmbedder) Dimensions() int              { return len(e.keywords) }
func (e *fakeEmbedder) ModelName() string            { return "fake-keyword-counts" }
func (e *fakeEmbedder) Ping(context.Context) error   { return nil }
func (e *fakeEmbedder) Close() error                 { return nil }

// memSnapshotStore keeps the latest snapshot in memory.
type memSnapshotStore struct {
	mu   sync.Mutex
	snap *driven.Snapshot
}

func (m *memSnapshotStore) Save(_ context.Context, snap *driven.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = snap
	return nil
}

func (m *memSnapshotStore) Load(context.Context) (*driven.Snapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap == nil {
		return nil, false, nil
	}
	return m.snap, true, nil
}

func (m *memSnapshotStore) Close() error { return nil }

var errEmbedderDown = errors.New("embedder down")

func newTestService(t *testing.T, opts ...Option) (*RetrievalService, *fakeEmbedder) {
	t.Helper()

	embedder := newFakeEmbedder()
	index, err := flat.New(embedder.Dimensions())
	require.NoError(t, err)

	svc, err := New(embedder, index, opts...)
	require.NoError(t, err)
	return svc, embedder
}
